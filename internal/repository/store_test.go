package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"sort"
	"testing"
	"time"

	"charityprep/internal/database"
	apperrors "charityprep/internal/errors"
	"charityprep/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T, dialect database.Dialect) (*Store, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	return New(database.Wrap(mockDB, dialect)), mock
}

func TestStore_GetOrganization(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("found", func(t *testing.T) {
		store, mock := newMockStore(t, database.Postgres)
		created := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(regexp.QuoteMeta("FROM organizations WHERE id = $1")).
			WithArgs(orgID).
			WillReturnRows(sqlmock.NewRows([]string{
				"id", "name", "charity_number", "income_band", "financial_year_end", "created_at",
			}).AddRow(orgID.String(), "Hope Trust", "1234567", "100k-250k", "03-31", created))

		org, err := store.GetOrganization(ctx, orgID)
		require.NoError(t, err)
		assert.Equal(t, orgID, org.ID)
		assert.Equal(t, "Hope Trust", org.Name)
		assert.Equal(t, "03-31", org.FinancialYearEnd)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing organization maps to not found", func(t *testing.T) {
		store, mock := newMockStore(t, database.SQLite)

		mock.ExpectQuery(regexp.QuoteMeta("FROM organizations WHERE id = ?")).
			WithArgs(orgID).
			WillReturnError(sql.ErrNoRows)

		org, err := store.GetOrganization(ctx, orgID)
		assert.Nil(t, org)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)

		var notFound apperrors.OrganizationNotFoundError
		require.True(t, errors.As(err, &notFound))
		assert.Equal(t, orgID, notFound.ID)
	})
}

func TestStore_ListSafeguardingRecords(t *testing.T) {
	store, mock := newMockStore(t, database.Postgres)
	orgID := uuid.New()
	created := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	expiry := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	cols := []string{
		"id", "organization_id", "person_name", "role", "works_with_children",
		"works_with_vulnerable_adults", "dbs_certificate_number", "expiry_date", "training_completed",
		"reference_checks_completed", "created_at", "deleted_at",
	}
	mock.ExpectQuery(regexp.QuoteMeta("WHERE organization_id = $1 AND deleted_at IS NULL")).
		WithArgs(orgID).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow(uuid.NewString(), orgID.String(), "Ada", "Volunteer", true, false, "001234567890", expiry, true, true, created, nil).
			AddRow(uuid.NewString(), orgID.String(), "Ben", "Trustee", false, true, nil, nil, false, false, created, nil))

	records, err := store.ListSafeguardingRecords(context.Background(), orgID)
	require.NoError(t, err)
	require.Len(t, records, 2)

	require.NotNil(t, records[0].ExpiryDate)
	assert.True(t, expiry.Equal(*records[0].ExpiryDate))
	require.NotNil(t, records[0].DBSCertificateNumber)
	assert.Equal(t, "001234567890", *records[0].DBSCertificateNumber)

	assert.Nil(t, records[1].ExpiryDate, "missing expiry stays nil so the record reads as pending")
	assert.Nil(t, records[1].DBSCertificateNumber)
	assert.True(t, records[1].IsPending())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ListIncomeRecords_YearFilter(t *testing.T) {
	orgID := uuid.New()
	cols := []string{
		"id", "organization_id", "category", "description", "amount", "date_received", "is_related_party",
		"donor_type", "fundraising_method", "professional_fundraiser", "gift_aid_claimed",
		"financial_year", "created_at", "deleted_at",
	}
	received := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	t.Run("with year", func(t *testing.T) {
		store, mock := newMockStore(t, database.Postgres)
		year := 2024

		mock.ExpectQuery(regexp.QuoteMeta("deleted_at IS NULL AND financial_year = $2 ORDER BY date_received, id")).
			WithArgs(orgID, year).
			WillReturnRows(sqlmock.NewRows(cols).
				AddRow(uuid.NewString(), orgID.String(), "donations_legacies", "Spring appeal", "250.50", received,
					false, "individual", "events", false, true, 2024, received, nil))

		records, err := store.ListIncomeRecords(context.Background(), orgID, &year)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, models.IncomeDonationsLegacies, records[0].Category)
		assert.True(t, decimal.RequireFromString("250.50").Equal(records[0].Amount))
		assert.Equal(t, models.DonorIndividual, records[0].DonorType)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("without year", func(t *testing.T) {
		store, mock := newMockStore(t, database.SQLite)

		mock.ExpectQuery(regexp.QuoteMeta("WHERE organization_id = ? AND deleted_at IS NULL ORDER BY date_received, id")).
			WithArgs(orgID).
			WillReturnRows(sqlmock.NewRows(cols))

		records, err := store.ListIncomeRecords(context.Background(), orgID, nil)
		require.NoError(t, err)
		assert.Empty(t, records)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_ListOverseasActivities(t *testing.T) {
	store, mock := newMockStore(t, database.MySQL)
	orgID := uuid.New()
	when := time.Date(2024, 8, 12, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("FROM overseas_activities")).
		WithArgs(orgID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "organization_id", "country_code", "activity_type", "description", "amount_gbp",
			"transfer_method", "transfer_date", "financial_year", "created_at", "deleted_at",
		}).AddRow(uuid.NewString(), orgID.String(), "KE", "education", "School kits", []byte("1200.00"),
			"cash", when, 2024, when, nil))

	activities, err := store.ListOverseasActivities(context.Background(), orgID, nil)
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, models.TransferCash, activities[0].TransferMethod)
	assert.Equal(t, "1200", activities[0].AmountGBP.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_ScoreHistory(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("list newest first with default limit", func(t *testing.T) {
		store, mock := newMockStore(t, database.Postgres)
		t1 := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
		t2 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

		mock.ExpectQuery(regexp.QuoteMeta("ORDER BY created_at DESC, id DESC")).
			WithArgs(orgID, 12).
			WillReturnRows(sqlmock.NewRows([]string{"id", "organization_id", "score", "created_at"}).
				AddRow(uuid.NewString(), orgID.String(), 82, t1).
				AddRow(uuid.NewString(), orgID.String(), 78, t2))

		history, err := store.ListScoreHistory(ctx, orgID, 0)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, 82, history[0].Score)
		assert.Equal(t, 78, history[1].Score)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert stamps id and time", func(t *testing.T) {
		store, mock := newMockStore(t, database.Postgres)

		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO compliance_score_history (id, organization_id, score, created_at)")).
			WithArgs(sqlmock.AnyArg(), orgID, 64, sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(1, 1))

		snap := &models.ComplianceScoreSnapshot{OrganizationID: orgID, Score: 64}
		require.NoError(t, store.InsertScoreSnapshot(ctx, snap))
		assert.NotEqual(t, uuid.Nil, snap.ID)
		assert.Equal(t, uuid.Version(7), snap.ID.Version())
		assert.False(t, snap.CreatedAt.IsZero())
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("ids sort in insert order within one timestamp", func(t *testing.T) {
		store, mock := newMockStore(t, database.SQLite)
		created := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

		var ids []string
		for i := 0; i < 3; i++ {
			mock.ExpectExec(regexp.QuoteMeta("INSERT INTO compliance_score_history")).
				WillReturnResult(sqlmock.NewResult(1, 1))
			snap := &models.ComplianceScoreSnapshot{OrganizationID: orgID, Score: 50, CreatedAt: created}
			require.NoError(t, store.InsertScoreSnapshot(ctx, snap))
			ids = append(ids, snap.ID.String())
		}
		assert.True(t, sort.StringsAreSorted(ids))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_WithTx(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()

	t.Run("commits on success", func(t *testing.T) {
		store, mock := newMockStore(t, database.SQLite)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO income_records")).
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		err := store.WithTx(ctx, func(tx *Store) error {
			return tx.InsertIncomeRecord(ctx, &models.IncomeRecord{
				OrganizationID: orgID,
				Category:       models.IncomeInvestments,
				Amount:         decimal.NewFromInt(40),
				DateReceived:   time.Now(),
				FinancialYear:  2025,
			})
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		store, mock := newMockStore(t, database.SQLite)

		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO safeguarding_records")).
			WillReturnError(errors.New("constraint failed"))
		mock.ExpectRollback()

		err := store.WithTx(ctx, func(tx *Store) error {
			return tx.InsertSafeguardingRecord(ctx, &models.SafeguardingRecord{
				OrganizationID: orgID,
				PersonName:     "Cara",
			})
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "constraint failed")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure is a database error", func(t *testing.T) {
		store, mock := newMockStore(t, database.SQLite)

		mock.ExpectBegin().WillReturnError(errors.New("database is locked"))

		called := false
		err := store.WithTx(ctx, func(tx *Store) error {
			called = true
			return nil
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrDatabaseError)
		assert.False(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestStore_CreateOrganization_SkipsExisting(t *testing.T) {
	store, mock := newMockStore(t, database.SQLite)
	org := &models.Organization{ID: uuid.New(), Name: "Existing"}

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM organizations WHERE id = ?")).
		WithArgs(org.ID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	require.NoError(t, store.CreateOrganization(context.Background(), org))
	assert.NoError(t, mock.ExpectationsWereMet())
}
