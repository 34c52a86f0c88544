// Package testutil holds record factories and an in-memory store for tests.
package testutil

import (
	"context"
	"sort"
	"sync"

	apperrors "charityprep/internal/errors"
	"charityprep/internal/models"

	"github.com/google/uuid"
)

// MemoryStore is a concurrency-safe in-memory implementation of the
// pipeline's store interfaces. Set the *Err fields to force failures.
type MemoryStore struct {
	mu sync.Mutex

	Organizations map[uuid.UUID]models.Organization
	Safeguarding  []models.SafeguardingRecord
	Overseas      []models.OverseasActivity
	Income        []models.IncomeRecord
	Countries     []models.Country
	History       []models.ComplianceScoreSnapshot

	FetchErr   error
	HistoryErr error
	InsertErr  error
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{Organizations: make(map[uuid.UUID]models.Organization)}
}

// AddOrganization registers org and returns its ID
func (s *MemoryStore) AddOrganization(org models.Organization) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	s.Organizations[org.ID] = org
	return org.ID
}

func (s *MemoryStore) GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}
	org, ok := s.Organizations[id]
	if !ok {
		return nil, apperrors.OrganizationNotFoundError{ID: id}
	}
	return &org, nil
}

func (s *MemoryStore) ListOrganizationIDs(ctx context.Context) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}
	ids := make([]uuid.UUID, 0, len(s.Organizations))
	for id := range s.Organizations {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })
	return ids, nil
}

func (s *MemoryStore) ListSafeguardingRecords(ctx context.Context, orgID uuid.UUID) ([]models.SafeguardingRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}
	var out []models.SafeguardingRecord
	for _, r := range s.Safeguarding {
		if r.OrganizationID == orgID && r.IsActive() {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListOverseasActivities(ctx context.Context, orgID uuid.UUID, year *int) ([]models.OverseasActivity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}
	var out []models.OverseasActivity
	for _, a := range s.Overseas {
		if a.OrganizationID == orgID && a.IsActive() && (year == nil || a.FinancialYear == *year) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListIncomeRecords(ctx context.Context, orgID uuid.UUID, year *int) ([]models.IncomeRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}
	var out []models.IncomeRecord
	for _, r := range s.Income {
		if r.OrganizationID == orgID && r.IsActive() && (year == nil || r.FinancialYear == *year) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MemoryStore) ListCountries(ctx context.Context) ([]models.Country, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FetchErr != nil {
		return nil, s.FetchErr
	}
	return append([]models.Country(nil), s.Countries...), nil
}

// ListScoreHistory returns snapshots for orgID newest first, later inserts
// first within one timestamp
func (s *MemoryStore) ListScoreHistory(ctx context.Context, orgID uuid.UUID, limit int) ([]models.ComplianceScoreSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.HistoryErr != nil {
		return nil, s.HistoryErr
	}
	var out []models.ComplianceScoreSnapshot
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].OrganizationID == orgID {
			out = append(out, s.History[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *MemoryStore) InsertScoreSnapshot(ctx context.Context, snap *models.ComplianceScoreSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.InsertErr != nil {
		return s.InsertErr
	}
	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	s.History = append(s.History, *snap)
	return nil
}

// Snapshots returns a copy of every stored snapshot for orgID in insert order
func (s *MemoryStore) Snapshots(orgID uuid.UUID) []models.ComplianceScoreSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.ComplianceScoreSnapshot
	for _, h := range s.History {
		if h.OrganizationID == orgID {
			out = append(out, h)
		}
	}
	return out
}
