// Package importer loads compliance records from CSV exports into the store.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"charityprep/internal/logger"
	"charityprep/internal/models"
	"charityprep/internal/repository"

	"github.com/google/uuid"
)

// Kind selects which record type a CSV file holds
type Kind string

const (
	KindSafeguarding Kind = "safeguarding"
	KindOverseas     Kind = "overseas"
	KindIncome       Kind = "income"
)

// ParseKind accepts a kind name in any case
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindSafeguarding, KindOverseas, KindIncome:
		return k, nil
	}
	return "", fmt.Errorf("unknown import kind %q (want safeguarding, overseas or income)", s)
}

type kindSpec struct {
	required []string
	parse    func(r row, orgID uuid.UUID) (models.Record, error)
}

var kinds = map[Kind]kindSpec{
	KindSafeguarding: {
		required: []string{"person_name"},
		parse:    parseSafeguarding,
	},
	KindOverseas: {
		required: []string{"country_code", "activity_type", "amount_gbp", "transfer_method", "transfer_date", "financial_year"},
		parse:    parseOverseas,
	},
	KindIncome: {
		required: []string{"amount", "date_received", "financial_year"},
		parse:    parseIncome,
	},
}

// Progress tracks one import run
type Progress struct {
	TotalRows   int        `json:"total_rows"`
	Imported    int        `json:"imported"`
	Skipped     int        `json:"skipped"`
	Failed      int        `json:"failed"`
	Errors      []RowError `json:"errors,omitempty"`
	StartTime   time.Time  `json:"start_time"`
	TimeElapsed string     `json:"time_elapsed,omitempty"`
}

// Config holds import tuning
type Config struct {
	BatchSize int
	// MaxErrors caps how many row errors are kept in Progress
	MaxErrors int
	// OnProgress is called after every committed or failed batch
	OnProgress func(Progress)
}

// Importer writes parsed rows to the store in batched transactions
type Importer struct {
	store    *repository.Store
	config   Config
	progress Progress
}

func New(store *repository.Store, config Config) *Importer {
	if config.BatchSize <= 0 {
		config.BatchSize = 500
	}
	if config.MaxErrors <= 0 {
		config.MaxErrors = 100
	}
	return &Importer{store: store, config: config}
}

// ImportFile imports the CSV at path
func (i *Importer) ImportFile(ctx context.Context, kind Kind, orgID uuid.UUID, path string) (Progress, error) {
	file, err := os.Open(path)
	if err != nil {
		return Progress{}, fmt.Errorf("failed to open %s file: %w", kind, err)
	}
	defer file.Close()

	logger.Info("Starting import", "kind", kind, "file", path, "organization_id", orgID)
	return i.Import(ctx, kind, orgID, file)
}

// Import reads CSV rows from r. Rows that fail validation are skipped and
// counted; a batch that fails to insert is rolled back and counted as failed.
// Only unreadable input, missing columns and cancellation abort the run.
func (i *Importer) Import(ctx context.Context, kind Kind, orgID uuid.UUID, r io.Reader) (Progress, error) {
	spec, ok := kinds[kind]
	if !ok {
		return Progress{}, fmt.Errorf("unknown import kind %q", kind)
	}

	i.progress = Progress{StartTime: time.Now()}

	reader, err := newCSVReader(r)
	if err != nil {
		return i.progress, err
	}
	if missing := reader.missing(spec.required); len(missing) > 0 {
		return i.progress, fmt.Errorf("%w: missing columns %s", ErrMissingHeader, strings.Join(missing, ", "))
	}

	batch := make([]models.Record, 0, i.config.BatchSize)
	for {
		if err := ctx.Err(); err != nil {
			return i.progress, err
		}

		line, err := reader.next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			i.progress.TotalRows++
			i.skip(RowError{Line: line.line, Message: err.Error()})
			continue
		}
		if line.isEmpty() {
			continue
		}
		i.progress.TotalRows++

		record, err := spec.parse(line, orgID)
		if err != nil {
			var rowErr RowError
			if !errors.As(err, &rowErr) {
				rowErr = RowError{Line: line.line, Message: err.Error()}
			}
			i.skip(rowErr)
			continue
		}

		batch = append(batch, record)
		if len(batch) >= i.config.BatchSize {
			i.flush(ctx, batch)
			batch = batch[:0]
		}
	}

	if len(batch) > 0 {
		i.flush(ctx, batch)
	}

	i.progress.TimeElapsed = time.Since(i.progress.StartTime).Round(time.Millisecond).String()
	logger.Info("Import complete",
		"kind", kind,
		"total", i.progress.TotalRows,
		"imported", i.progress.Imported,
		"skipped", i.progress.Skipped,
		"failed", i.progress.Failed,
		"elapsed", i.progress.TimeElapsed,
	)
	return i.progress, nil
}

// GetProgress returns the current import progress
func (i *Importer) GetProgress() Progress {
	return i.progress
}

func (i *Importer) skip(err RowError) {
	i.progress.Skipped++
	logger.Debug("Skipping row", "line", err.Line, "column", err.Column, "reason", err.Message)
	if len(i.progress.Errors) < i.config.MaxErrors {
		i.progress.Errors = append(i.progress.Errors, err)
	}
}

// flush inserts batch in a single transaction
func (i *Importer) flush(ctx context.Context, batch []models.Record) {
	err := i.store.WithTx(ctx, func(tx *repository.Store) error {
		for _, record := range batch {
			if err := insert(ctx, tx, record); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		logger.Error("Failed to insert batch", "size", len(batch), "error", err)
		i.progress.Failed += len(batch)
	} else {
		i.progress.Imported += len(batch)
	}

	if i.config.OnProgress != nil {
		i.config.OnProgress(i.progress)
	}
}

func insert(ctx context.Context, tx *repository.Store, record models.Record) error {
	switch r := record.(type) {
	case models.SafeguardingRecord:
		return tx.InsertSafeguardingRecord(ctx, &r)
	case models.OverseasActivity:
		return tx.InsertOverseasActivity(ctx, &r)
	case models.IncomeRecord:
		return tx.InsertIncomeRecord(ctx, &r)
	default:
		panic(fmt.Sprintf("importer: unhandled record type %T", record))
	}
}
