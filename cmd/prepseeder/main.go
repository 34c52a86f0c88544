package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"charityprep/internal/compliance"
	"charityprep/internal/database"
	"charityprep/internal/importer"
	"charityprep/internal/logger"
	"charityprep/internal/models"
	"charityprep/internal/repository"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/schollz/progressbar/v3"
)

type Config struct {
	Mode             string // "import" or "score"
	DBType           string
	DBURL            string
	MigrationsPath   string
	OrganizationID   string
	OrganizationName string
	CharityNumber    string
	IncomeBand       string
	YearEnd          string
	SafeguardingFile string
	OverseasFile     string
	IncomeFile       string
	BatchSize        int
	Verbose          bool
}

func main() {
	config := parseFlags()
	logger.Setup(config.Verbose, "text")

	if err := run(config); err != nil {
		logger.Error("Fatal error", "error", err)
		os.Exit(1)
	}
}

func parseFlags() *Config {
	_ = godotenv.Load()
	config := &Config{}

	flag.StringVar(&config.Mode, "mode", "import", "Mode: 'import' (load CSV files for one organisation) or 'score' (snapshot every organisation)")
	flag.StringVar(&config.DBType, "db-type", envOr("DATABASE_TYPE", "sqlite"), "Database type: sqlite, mysql or postgres")
	flag.StringVar(&config.DBURL, "db", envOr("DATABASE_URL", "charityprep.db"), "Database DSN or sqlite path")
	flag.StringVar(&config.MigrationsPath, "migrations", "", "Read migrations from this directory instead of the embedded set")
	flag.StringVar(&config.OrganizationID, "org", "", "Organisation UUID to import into (import mode)")
	flag.StringVar(&config.OrganizationName, "org-name", "", "Create the organisation with this name if -org does not exist yet")
	flag.StringVar(&config.CharityNumber, "charity-number", "", "Registered charity number for a new organisation")
	flag.StringVar(&config.IncomeBand, "income-band", "", "Income band label for a new organisation")
	flag.StringVar(&config.YearEnd, "year-end", "03-31", "Financial year end (MM-DD) for a new organisation")
	flag.StringVar(&config.SafeguardingFile, "safeguarding", "", "Path to safeguarding CSV")
	flag.StringVar(&config.OverseasFile, "overseas", "", "Path to overseas activities CSV")
	flag.StringVar(&config.IncomeFile, "income", "", "Path to income CSV")
	flag.IntVar(&config.BatchSize, "batch-size", 500, "Rows per insert transaction")
	flag.BoolVar(&config.Verbose, "verbose", false, "Enable verbose logging")

	flag.Parse()

	if config.Mode != "import" && config.Mode != "score" {
		fmt.Fprintf(os.Stderr, "Invalid mode: %s (must be 'import' or 'score')\n", config.Mode)
		os.Exit(2)
	}
	return config
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func run(config *Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(config.DBType, config.DBURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if config.MigrationsPath != "" {
		err = db.MigrateWithPath(config.MigrationsPath)
	} else {
		err = db.Migrate()
	}
	if err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	store := repository.New(db)
	if config.Mode == "score" {
		return runScore(ctx, store)
	}
	return runImport(ctx, config, store)
}

func runImport(ctx context.Context, config *Config, store *repository.Store) error {
	orgID, err := resolveOrganization(ctx, config, store)
	if err != nil {
		return err
	}

	files := []struct {
		kind importer.Kind
		path string
	}{
		{importer.KindSafeguarding, config.SafeguardingFile},
		{importer.KindOverseas, config.OverseasFile},
		{importer.KindIncome, config.IncomeFile},
	}

	var todo int
	for _, f := range files {
		if f.path != "" {
			todo++
		}
	}
	if todo == 0 {
		return errors.New("nothing to import: pass at least one of -safeguarding, -overseas or -income")
	}

	step := 0
	for _, f := range files {
		if f.path == "" {
			continue
		}
		step++

		total, err := countRows(f.path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f.path, err)
		}

		bar := newBar(total, fmt.Sprintf("[cyan][%d/%d][reset] Importing %s...", step, todo, f.kind), "rows")
		imp := importer.New(store, importer.Config{
			BatchSize: config.BatchSize,
			OnProgress: func(p importer.Progress) {
				_ = bar.Set(p.Imported + p.Skipped + p.Failed)
			},
		})

		progress, err := imp.ImportFile(ctx, f.kind, orgID, f.path)
		_ = bar.Finish()
		if err != nil {
			return fmt.Errorf("failed to import %s: %w", f.kind, err)
		}

		fmt.Printf("%s: %d imported, %d skipped, %d failed in %s\n",
			f.kind, progress.Imported, progress.Skipped, progress.Failed, progress.TimeElapsed)
		for _, rowErr := range progress.Errors {
			fmt.Printf("  %s\n", rowErr.Error())
		}
	}

	fmt.Printf("\nImport complete for organisation %s\n", orgID)
	return nil
}

// resolveOrganization returns the target organisation, creating it when a
// name is supplied
func resolveOrganization(ctx context.Context, config *Config, store *repository.Store) (uuid.UUID, error) {
	var orgID uuid.UUID
	if config.OrganizationID != "" {
		id, err := uuid.Parse(config.OrganizationID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("invalid -org: %w", err)
		}
		orgID = id
	}

	if config.OrganizationName == "" {
		if orgID == uuid.Nil {
			return uuid.Nil, errors.New("either -org or -org-name is required in import mode")
		}
		if _, err := store.GetOrganization(ctx, orgID); err != nil {
			return uuid.Nil, err
		}
		return orgID, nil
	}

	org := &models.Organization{
		ID:               orgID,
		Name:             config.OrganizationName,
		CharityNumber:    config.CharityNumber,
		IncomeBand:       config.IncomeBand,
		FinancialYearEnd: config.YearEnd,
	}
	if err := store.CreateOrganization(ctx, org); err != nil {
		return uuid.Nil, err
	}
	logger.Info("Using organisation", "organization_id", org.ID, "name", org.Name)
	return org.ID, nil
}

func runScore(ctx context.Context, store *repository.Store) error {
	ids, err := store.ListOrganizationIDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("No organisations to score")
		return nil
	}

	svc := compliance.NewService(store, nil)
	bar := newBar(len(ids), "[cyan][1/1][reset] Scoring organisations...", "orgs")

	var failed int
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := svc.Evaluate(ctx, id, nil); err != nil {
			logger.Warn("Failed to score organisation", "organization_id", id, "error", err)
			failed++
		}
		_ = bar.Add(1)
	}

	fmt.Printf("\nScored %d organisations (%d failed)\n", len(ids)-failed, failed)
	return nil
}

func newBar(total int, description, unit string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(false),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString(unit),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			fmt.Println()
		}),
	)
}

// countRows returns the number of lines after the header. Quoted fields with
// embedded newlines make this an estimate.
func countRows(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	lines := 0
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines++
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	return max(lines-1, 0), nil
}
