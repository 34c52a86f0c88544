package repository

import (
	"context"
	"fmt"
	"time"

	"charityprep/internal/models"

	"github.com/google/uuid"
)

// ListScoreHistory returns the most recent snapshots, newest first. Snapshot
// IDs are time-ordered, so id breaks ties within one timestamp.
func (s *Store) ListScoreHistory(ctx context.Context, orgID uuid.UUID, limit int) ([]models.ComplianceScoreSnapshot, error) {
	if limit <= 0 {
		limit = 12
	}

	rows, err := s.query(ctx, `
		SELECT id, organization_id, score, created_at
		FROM compliance_score_history
		WHERE organization_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, orgID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list score history: %w", err)
	}
	defer rows.Close()

	var history []models.ComplianceScoreSnapshot
	for rows.Next() {
		var snap models.ComplianceScoreSnapshot
		if err := rows.Scan(&snap.ID, &snap.OrganizationID, &snap.Score, &snap.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score snapshot: %w", err)
		}
		history = append(history, snap)
	}
	return history, rows.Err()
}

// InsertScoreSnapshot appends one row to the score history. Rows are never updated.
func (s *Store) InsertScoreSnapshot(ctx context.Context, snap *models.ComplianceScoreSnapshot) error {
	if snap.ID == uuid.Nil {
		id, err := uuid.NewV7()
		if err != nil {
			return fmt.Errorf("failed to generate snapshot id: %w", err)
		}
		snap.ID = id
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now().UTC()
	}

	err := s.exec(ctx, `
		INSERT INTO compliance_score_history (id, organization_id, score, created_at)
		VALUES (?, ?, ?, ?)
	`, snap.ID, snap.OrganizationID, snap.Score, snap.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert score snapshot: %w", err)
	}
	return nil
}
