package compliance

import (
	"context"

	"charityprep/internal/models"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// RecordReader is the query interface the pipeline reads through. Results
// must be organisation-scoped and exclude soft-deleted rows.
type RecordReader interface {
	ListSafeguardingRecords(ctx context.Context, orgID uuid.UUID) ([]models.SafeguardingRecord, error)
	ListOverseasActivities(ctx context.Context, orgID uuid.UUID, year *int) ([]models.OverseasActivity, error)
	ListIncomeRecords(ctx context.Context, orgID uuid.UUID, year *int) ([]models.IncomeRecord, error)
	ListCountries(ctx context.Context) ([]models.Country, error)
}

// RecordSet holds everything one organisation's score is computed from
type RecordSet struct {
	Safeguarding []models.SafeguardingRecord
	Overseas     []models.OverseasActivity
	Income       []models.IncomeRecord
	Countries    []models.Country
}

// FetchRecords reads the three record categories and the country list in
// parallel. The first error wins and is returned unchanged.
func FetchRecords(ctx context.Context, reader RecordReader, orgID uuid.UUID, year *int) (*RecordSet, error) {
	var set RecordSet
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		records, err := reader.ListSafeguardingRecords(gctx, orgID)
		set.Safeguarding = records
		return err
	})
	g.Go(func() error {
		activities, err := reader.ListOverseasActivities(gctx, orgID, year)
		set.Overseas = activities
		return err
	})
	g.Go(func() error {
		records, err := reader.ListIncomeRecords(gctx, orgID, year)
		set.Income = records
		return err
	})
	g.Go(func() error {
		countries, err := reader.ListCountries(gctx)
		set.Countries = countries
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &set, nil
}
