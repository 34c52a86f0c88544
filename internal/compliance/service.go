package compliance

import (
	"context"
	"time"

	"charityprep/internal/logger"
	"charityprep/internal/models"

	"github.com/google/uuid"
)

// historyDepth is how many snapshots are read for trend calculation
const historyDepth = 12

// Store is everything Service needs from persistence
type Store interface {
	RecordReader
	GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	ListScoreHistory(ctx context.Context, orgID uuid.UUID, limit int) ([]models.ComplianceScoreSnapshot, error)
	InsertScoreSnapshot(ctx context.Context, snap *models.ComplianceScoreSnapshot) error
}

// Report is the dashboard view of one organisation's compliance
type Report struct {
	OrganizationID uuid.UUID    `json:"organization_id"`
	FinancialYear  *int         `json:"financial_year"`
	Score          Score        `json:"score"`
	Trends         Trends       `json:"trends"`
	ActionItems    []ActionItem `json:"action_items"`
	GeneratedAt    time.Time    `json:"generated_at"`
}

// Service runs the scoring pipeline for one organisation at a time
type Service struct {
	store Store
	calc  *Calculator
	now   func() time.Time
}

func NewService(store Store, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, calc: NewCalculator(now), now: now}
}

// Evaluate fetches the organisation's records, scores them, compares with
// history, derives action items and appends a new snapshot. Fetch errors are
// returned; history problems only cost the trend.
//
// The score history tracks the all-years score only. A year-scoped
// evaluation neither reads nor appends snapshots and reports empty trends.
func (s *Service) Evaluate(ctx context.Context, orgID uuid.UUID, year *int) (*Report, error) {
	if _, err := s.store.GetOrganization(ctx, orgID); err != nil {
		return nil, err
	}

	set, err := FetchRecords(ctx, s.store, orgID, year)
	if err != nil {
		return nil, err
	}

	score := s.calc.Calculate(set.Safeguarding, set.Overseas, set.Income, set.Countries)

	var trends Trends
	if year == nil {
		trends = s.trends(ctx, orgID, score.Overall)
	}

	actions := s.calc.ActionItems(score, set.Safeguarding, set.Overseas, set.Income)
	if actions == nil {
		actions = []ActionItem{}
	}

	if year == nil {
		s.StoreComplianceScore(ctx, orgID, score.Overall)
	}

	return &Report{
		OrganizationID: orgID,
		FinancialYear:  year,
		Score:          score,
		Trends:         trends,
		ActionItems:    actions,
		GeneratedAt:    s.now().UTC(),
	}, nil
}

func (s *Service) trends(ctx context.Context, orgID uuid.UUID, current int) Trends {
	history, err := s.store.ListScoreHistory(ctx, orgID, historyDepth)
	if err != nil {
		logger.WarnContext(ctx, "Failed to read score history, reporting without trend",
			"organization_id", orgID, "error", err)
		return Trends{}
	}
	return CalculateTrends(HistoryFromSnapshots(history), current)
}

// StoreComplianceScore appends a snapshot to the score history. History is
// best effort: failures are logged and never returned.
func (s *Service) StoreComplianceScore(ctx context.Context, orgID uuid.UUID, score int) {
	snap := &models.ComplianceScoreSnapshot{
		OrganizationID: orgID,
		Score:          score,
		CreatedAt:      s.now().UTC(),
	}
	if err := s.store.InsertScoreSnapshot(ctx, snap); err != nil {
		logger.ErrorContext(ctx, "Failed to store compliance score",
			"organization_id", orgID, "score", score, "error", err)
		return
	}
	logger.Debug("Stored compliance score", "organization_id", orgID, "score", score)
}
