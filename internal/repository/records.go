package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"charityprep/internal/models"

	"github.com/google/uuid"
)

const safeguardingColumns = `id, organization_id, person_name, role, works_with_children,
	works_with_vulnerable_adults, dbs_certificate_number, expiry_date, training_completed,
	reference_checks_completed, created_at, deleted_at`

// ListSafeguardingRecords returns active safeguarding records. DBS status is
// current state, so records are not bucketed by financial year.
func (s *Store) ListSafeguardingRecords(ctx context.Context, orgID uuid.UUID) ([]models.SafeguardingRecord, error) {
	rows, err := s.query(ctx, `
		SELECT `+safeguardingColumns+`
		FROM safeguarding_records
		WHERE organization_id = ? AND deleted_at IS NULL
		ORDER BY created_at, id
	`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list safeguarding records: %w", err)
	}
	defer rows.Close()

	var records []models.SafeguardingRecord
	for rows.Next() {
		var r models.SafeguardingRecord
		var dbs sql.NullString
		var expiry, deleted sql.NullTime
		if err := rows.Scan(
			&r.ID, &r.OrganizationID, &r.PersonName, &r.Role, &r.WorksWithChildren,
			&r.WorksWithVulnerableAdults, &dbs, &expiry, &r.TrainingCompleted,
			&r.ReferenceChecksCompleted, &r.CreatedAt, &deleted,
		); err != nil {
			return nil, fmt.Errorf("failed to scan safeguarding record: %w", err)
		}
		if dbs.Valid {
			r.DBSCertificateNumber = &dbs.String
		}
		r.ExpiryDate = nullTime(expiry)
		r.DeletedAt = nullTime(deleted)
		records = append(records, r)
	}
	return records, rows.Err()
}

// ListOverseasActivities returns active overseas activities, optionally for one financial year
func (s *Store) ListOverseasActivities(ctx context.Context, orgID uuid.UUID, year *int) ([]models.OverseasActivity, error) {
	query, args := yearFilter(`
		SELECT id, organization_id, country_code, activity_type, description, amount_gbp,
			transfer_method, transfer_date, financial_year, created_at, deleted_at
		FROM overseas_activities
		WHERE organization_id = ? AND deleted_at IS NULL`, []any{orgID}, year)

	rows, err := s.query(ctx, query+" ORDER BY transfer_date, id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list overseas activities: %w", err)
	}
	defer rows.Close()

	var activities []models.OverseasActivity
	for rows.Next() {
		var a models.OverseasActivity
		var deleted sql.NullTime
		if err := rows.Scan(
			&a.ID, &a.OrganizationID, &a.CountryCode, &a.ActivityType, &a.Description, &a.AmountGBP,
			&a.TransferMethod, &a.TransferDate, &a.FinancialYear, &a.CreatedAt, &deleted,
		); err != nil {
			return nil, fmt.Errorf("failed to scan overseas activity: %w", err)
		}
		a.DeletedAt = nullTime(deleted)
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// ListIncomeRecords returns active income records, optionally for one financial year
func (s *Store) ListIncomeRecords(ctx context.Context, orgID uuid.UUID, year *int) ([]models.IncomeRecord, error) {
	query, args := yearFilter(`
		SELECT id, organization_id, category, description, amount, date_received, is_related_party,
			donor_type, fundraising_method, professional_fundraiser, gift_aid_claimed,
			financial_year, created_at, deleted_at
		FROM income_records
		WHERE organization_id = ? AND deleted_at IS NULL`, []any{orgID}, year)

	rows, err := s.query(ctx, query+" ORDER BY date_received, id", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list income records: %w", err)
	}
	defer rows.Close()

	var records []models.IncomeRecord
	for rows.Next() {
		var r models.IncomeRecord
		var deleted sql.NullTime
		if err := rows.Scan(
			&r.ID, &r.OrganizationID, &r.Category, &r.Description, &r.Amount, &r.DateReceived,
			&r.IsRelatedParty, &r.DonorType, &r.FundraisingMethod, &r.ProfessionalFundraiser,
			&r.GiftAidClaimed, &r.FinancialYear, &r.CreatedAt, &deleted,
		); err != nil {
			return nil, fmt.Errorf("failed to scan income record: %w", err)
		}
		r.DeletedAt = nullTime(deleted)
		records = append(records, r)
	}
	return records, rows.Err()
}

// InsertSafeguardingRecord stores a new safeguarding record
func (s *Store) InsertSafeguardingRecord(ctx context.Context, r *models.SafeguardingRecord) error {
	stampNew(&r.ID, &r.CreatedAt)
	err := s.exec(ctx, `
		INSERT INTO safeguarding_records (`+safeguardingColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.OrganizationID, r.PersonName, r.Role, r.WorksWithChildren,
		r.WorksWithVulnerableAdults, r.DBSCertificateNumber, r.ExpiryDate, r.TrainingCompleted,
		r.ReferenceChecksCompleted, r.CreatedAt, r.DeletedAt)
	if err != nil {
		return fmt.Errorf("failed to insert safeguarding record: %w", err)
	}
	return nil
}

// InsertOverseasActivity stores a new overseas activity
func (s *Store) InsertOverseasActivity(ctx context.Context, a *models.OverseasActivity) error {
	stampNew(&a.ID, &a.CreatedAt)
	err := s.exec(ctx, `
		INSERT INTO overseas_activities (id, organization_id, country_code, activity_type, description,
			amount_gbp, transfer_method, transfer_date, financial_year, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.OrganizationID, a.CountryCode, a.ActivityType, a.Description,
		a.AmountGBP, a.TransferMethod, a.TransferDate, a.FinancialYear, a.CreatedAt, a.DeletedAt)
	if err != nil {
		return fmt.Errorf("failed to insert overseas activity: %w", err)
	}
	return nil
}

// InsertIncomeRecord stores a new income record
func (s *Store) InsertIncomeRecord(ctx context.Context, r *models.IncomeRecord) error {
	stampNew(&r.ID, &r.CreatedAt)
	err := s.exec(ctx, `
		INSERT INTO income_records (id, organization_id, category, description, amount, date_received,
			is_related_party, donor_type, fundraising_method, professional_fundraiser, gift_aid_claimed,
			financial_year, created_at, deleted_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.OrganizationID, r.Category, r.Description, r.Amount, r.DateReceived,
		r.IsRelatedParty, r.DonorType, r.FundraisingMethod, r.ProfessionalFundraiser, r.GiftAidClaimed,
		r.FinancialYear, r.CreatedAt, r.DeletedAt)
	if err != nil {
		return fmt.Errorf("failed to insert income record: %w", err)
	}
	return nil
}

func stampNew(id *uuid.UUID, createdAt *time.Time) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	if createdAt.IsZero() {
		*createdAt = time.Now().UTC()
	}
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
