package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"charityprep/internal/database"
	apperrors "charityprep/internal/errors"
	"charityprep/internal/models"

	"github.com/google/uuid"
)

// queryable is satisfied by both *sql.DB and *sql.Tx
type queryable interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store reads and writes compliance data. Every read is organisation-scoped
// and excludes soft-deleted rows.
type Store struct {
	db      *database.DB
	q       queryable
	dialect database.Dialect
}

// New creates a store over a connection pool
func New(db *database.DB) *Store {
	return &Store{db: db, q: db.DB, dialect: db.Dialect}
}

// WithTx runs fn against a store bound to a single transaction. The
// transaction commits if fn returns nil and rolls back otherwise.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: failed to begin transaction: %w", apperrors.ErrDatabaseError, err)
	}

	if err := fn(&Store{db: s.db, q: tx, dialect: s.dialect}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: failed to commit transaction: %w", apperrors.ErrDatabaseError, err)
	}
	return nil
}

func (s *Store) exec(ctx context.Context, query string, args ...any) error {
	_, err := s.q.ExecContext(ctx, s.dialect.Rebind(query), args...)
	return err
}

func (s *Store) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.q.QueryContext(ctx, s.dialect.Rebind(query), args...)
}

func (s *Store) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.q.QueryRowContext(ctx, s.dialect.Rebind(query), args...)
}

// GetOrganization loads one organisation
func (s *Store) GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	err := s.queryRow(ctx, `
		SELECT id, name, charity_number, income_band, financial_year_end, created_at
		FROM organizations WHERE id = ?
	`, id).Scan(&org.ID, &org.Name, &org.CharityNumber, &org.IncomeBand, &org.FinancialYearEnd, &org.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.OrganizationNotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization %s: %w", id, err)
	}
	return &org, nil
}

// ListOrganizationIDs returns every organisation ID in a stable order
func (s *Store) ListOrganizationIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.query(ctx, `SELECT id FROM organizations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan organization id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// CreateOrganization inserts an organisation if its ID is not already present
func (s *Store) CreateOrganization(ctx context.Context, org *models.Organization) error {
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	if org.CreatedAt.IsZero() {
		org.CreatedAt = time.Now().UTC()
	}

	var exists int
	err := s.queryRow(ctx, `SELECT COUNT(*) FROM organizations WHERE id = ?`, org.ID).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check organization %s: %w", org.ID, err)
	}
	if exists > 0 {
		return nil
	}

	err = s.exec(ctx, `
		INSERT INTO organizations (id, name, charity_number, income_band, financial_year_end, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, org.ID, org.Name, org.CharityNumber, org.IncomeBand, org.FinancialYearEnd, org.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create organization %s: %w", org.ID, err)
	}
	return nil
}

// ListCountries returns the reference country table
func (s *Store) ListCountries(ctx context.Context) ([]models.Country, error) {
	rows, err := s.query(ctx, `
		SELECT code, name, is_high_risk, requires_due_diligence
		FROM countries ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list countries: %w", err)
	}
	defer rows.Close()

	var countries []models.Country
	for rows.Next() {
		var c models.Country
		if err := rows.Scan(&c.Code, &c.Name, &c.IsHighRisk, &c.RequiresDueDiligence); err != nil {
			return nil, fmt.Errorf("failed to scan country: %w", err)
		}
		countries = append(countries, c)
	}
	return countries, rows.Err()
}

// yearFilter appends a financial_year condition when year is set
func yearFilter(query string, args []any, year *int) (string, []any) {
	if year == nil {
		return query, args
	}
	return query + " AND financial_year = ?", append(args, *year)
}
