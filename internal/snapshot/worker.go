// Package snapshot periodically re-scores every organisation so the score
// history has regular points for trend calculation.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"charityprep/internal/compliance"
	"charityprep/internal/logger"

	"github.com/google/uuid"
)

var ErrRunInProgress = errors.New("snapshot run already in progress")

// Lister enumerates organisations to snapshot
type Lister interface {
	ListOrganizationIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Evaluator scores one organisation and records its snapshot
type Evaluator interface {
	Evaluate(ctx context.Context, orgID uuid.UUID, year *int) (*compliance.Report, error)
}

// Result summarises one run
type Result struct {
	Organizations int           `json:"organizations"`
	Succeeded     int           `json:"succeeded"`
	Failed        int           `json:"failed"`
	Duration      time.Duration `json:"duration_ns"`
}

type Worker struct {
	lister    Lister
	evaluator Evaluator
	interval  time.Duration
	running   sync.Mutex
}

func NewWorker(lister Lister, evaluator Evaluator, interval time.Duration) *Worker {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Worker{lister: lister, evaluator: evaluator, interval: interval}
}

// Start runs a snapshot pass every interval until ctx is cancelled
func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Starting snapshot worker", "interval", w.interval.String())

	for {
		select {
		case <-ctx.Done():
			logger.Info("Snapshot worker stopped")
			return
		case <-ticker.C:
			if _, err := w.RunOnce(ctx); err != nil {
				logger.Error("Snapshot run failed", "error", err)
			}
		}
	}
}

// RunOnce evaluates every organisation once. A failing organisation is logged
// and counted; only listing failures, cancellation or an overlapping run
// return an error.
func (w *Worker) RunOnce(ctx context.Context) (Result, error) {
	if !w.running.TryLock() {
		return Result{}, ErrRunInProgress
	}
	defer w.running.Unlock()

	start := time.Now()
	ids, err := w.lister.ListOrganizationIDs(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("failed to list organizations: %w", err)
	}

	result := Result{Organizations: len(ids)}
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(start)
			return result, err
		}
		if _, err := w.evaluator.Evaluate(ctx, id, nil); err != nil {
			logger.Warn("Failed to snapshot organization", "organization_id", id, "error", err)
			result.Failed++
			continue
		}
		result.Succeeded++
	}
	result.Duration = time.Since(start)

	logger.Info("Snapshot run complete",
		"organizations", result.Organizations,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"duration", result.Duration.String(),
	)
	return result, nil
}
