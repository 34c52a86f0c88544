package importer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"charityprep/internal/database"
	"charityprep/internal/models"
	"charityprep/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockImporter(t *testing.T, config Config) (*Importer, sqlmock.Sqlmock) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	store := repository.New(database.Wrap(mockDB, database.SQLite))
	return New(store, config), mock
}

const incomeCSV = `amount,date_received,financial_year,category,donor_type,gift_aid_claimed
100.00,2024-05-01,2024,donations_legacies,individual,true
250.50,2024-06-01,2024,,corporate,false
not-a-number,2024-06-02,2024,other,,
75,2024-07-01,2024,investments,,
`

func TestImport_Income(t *testing.T) {
	var updates []Progress
	imp, mock := newMockImporter(t, Config{
		BatchSize:  2,
		OnProgress: func(p Progress) { updates = append(updates, p) },
	})

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO income_records").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO income_records").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO income_records").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	progress, err := imp.Import(context.Background(), KindIncome, uuid.New(), strings.NewReader(incomeCSV))
	require.NoError(t, err)

	assert.Equal(t, 4, progress.TotalRows)
	assert.Equal(t, 3, progress.Imported)
	assert.Equal(t, 1, progress.Skipped)
	assert.Equal(t, 0, progress.Failed)
	require.Len(t, progress.Errors, 1)
	assert.Equal(t, 4, progress.Errors[0].Line)
	assert.Equal(t, "amount", progress.Errors[0].Column)
	assert.NotEmpty(t, progress.TimeElapsed)

	require.Len(t, updates, 2)
	assert.Equal(t, 2, updates[0].Imported)
	assert.Equal(t, 3, updates[1].Imported)
	assert.Equal(t, progress, imp.GetProgress())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImport_BatchFailureRollsBack(t *testing.T) {
	imp, mock := newMockImporter(t, Config{BatchSize: 10})

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO income_records").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO income_records").WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	csv := "amount,date_received,financial_year\n1,2024-01-01,2024\n2,2024-01-02,2024\n"
	progress, err := imp.Import(context.Background(), KindIncome, uuid.New(), strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 0, progress.Imported)
	assert.Equal(t, 2, progress.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImport_SafeguardingHeadersAndBOM(t *testing.T) {
	imp, mock := newMockImporter(t, Config{})

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO safeguarding_records").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	csv := "\xEF\xBB\xBFPerson Name, Role ,Expiry Date,Works With Children\n" +
		"Alex Morgan,Youth leader,2026-03-31,yes\n" +
		"Sam Patel,Trustee,,false\n" +
		",,,\n"

	progress, err := imp.Import(context.Background(), KindSafeguarding, uuid.New(), strings.NewReader(csv))
	require.NoError(t, err)

	// "yes" is not a boolean so Alex is skipped; the blank line is ignored
	assert.Equal(t, 2, progress.TotalRows)
	assert.Equal(t, 1, progress.Imported)
	assert.Equal(t, 1, progress.Skipped)
	require.Len(t, progress.Errors, 1)
	assert.Equal(t, "works_with_children", progress.Errors[0].Column)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestImport_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty file", func(t *testing.T) {
		imp, _ := newMockImporter(t, Config{})
		_, err := imp.Import(ctx, KindIncome, uuid.New(), strings.NewReader(""))
		assert.ErrorIs(t, err, ErrEmptyFile)
	})

	t.Run("missing columns", func(t *testing.T) {
		imp, _ := newMockImporter(t, Config{})
		_, err := imp.Import(ctx, KindOverseas, uuid.New(), strings.NewReader("country_code,amount_gbp\nKE,10\n"))
		require.ErrorIs(t, err, ErrMissingHeader)
		assert.Contains(t, err.Error(), "transfer_method")
	})

	t.Run("unknown kind", func(t *testing.T) {
		imp, _ := newMockImporter(t, Config{})
		_, err := imp.Import(ctx, Kind("donors"), uuid.New(), strings.NewReader("a\n1\n"))
		assert.Error(t, err)
	})

	t.Run("cancelled", func(t *testing.T) {
		imp, _ := newMockImporter(t, Config{})
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := imp.Import(cctx, KindIncome, uuid.New(), strings.NewReader(incomeCSV))
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("missing file", func(t *testing.T) {
		imp, _ := newMockImporter(t, Config{})
		_, err := imp.ImportFile(ctx, KindIncome, uuid.New(), "/nonexistent/income.csv")
		assert.Error(t, err)
	})
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind(" Overseas ")
	require.NoError(t, err)
	assert.Equal(t, KindOverseas, kind)

	_, err = ParseKind("trustees")
	assert.Error(t, err)
}

func rowOf(line int, data map[string]string) row {
	return row{line: line, data: data}
}

func TestParseOverseas(t *testing.T) {
	org := uuid.New()

	valid := map[string]string{
		"country_code":    "ke",
		"activity_type":   "Healthcare",
		"amount_gbp":      "1200.456",
		"transfer_method": "cash",
		"transfer_date":   "2024-08-14",
		"financial_year":  "2024",
	}
	rec, err := parseOverseas(rowOf(2, valid), org)
	require.NoError(t, err)

	activity, ok := rec.(models.OverseasActivity)
	require.True(t, ok)
	assert.Equal(t, org, activity.OrganizationID)
	assert.Equal(t, "KE", activity.CountryCode)
	assert.Equal(t, models.ActivityHealthcare, activity.ActivityType)
	assert.Equal(t, models.TransferCash, activity.TransferMethod)
	assert.True(t, decimal.RequireFromString("1200.46").Equal(activity.AmountGBP))
	assert.Equal(t, 2024, activity.FinancialYear)

	tests := []struct {
		name   string
		column string
		value  string
	}{
		{"unknown country", "country_code", "XX"},
		{"unknown activity", "activity_type", "tourism"},
		{"negative amount", "amount_gbp", "-5"},
		{"unknown method", "transfer_method", "crypto"},
		{"bad date", "transfer_date", "14/08/2024"},
		{"short year", "financial_year", "24"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := make(map[string]string, len(valid))
			for k, v := range valid {
				data[k] = v
			}
			data[tt.column] = tt.value

			_, err := parseOverseas(rowOf(3, data), org)
			var rowErr RowError
			require.ErrorAs(t, err, &rowErr)
			assert.Equal(t, 3, rowErr.Line)
			assert.Equal(t, tt.column, rowErr.Column)
		})
	}
}

func TestParseIncome_Defaults(t *testing.T) {
	rec, err := parseIncome(rowOf(2, map[string]string{
		"amount":         "40",
		"date_received":  "2024-11-30",
		"financial_year": "2024",
	}), uuid.New())
	require.NoError(t, err)

	income := rec.(models.IncomeRecord)
	assert.Equal(t, models.IncomeUncategorized, income.Category)
	assert.Equal(t, models.DonorUnknown, income.DonorType)
	assert.False(t, income.GiftAidClaimed)
}

func TestParseSafeguarding_Pending(t *testing.T) {
	rec, err := parseSafeguarding(rowOf(2, map[string]string{
		"person_name":            "Jo Blake",
		"dbs_certificate_number": "001234567890",
		"training_completed":     "1",
	}), uuid.New())
	require.NoError(t, err)

	record := rec.(models.SafeguardingRecord)
	assert.True(t, record.IsPending())
	require.NotNil(t, record.DBSCertificateNumber)
	assert.Equal(t, "001234567890", *record.DBSCertificateNumber)
	assert.True(t, record.TrainingCompleted)
}

func TestRowError_Error(t *testing.T) {
	assert.Equal(t, "line 3, column 'amount': bad", RowError{Line: 3, Column: "amount", Message: "bad"}.Error())
	assert.Equal(t, "line 3: bad", RowError{Line: 3, Message: "bad"}.Error())
}
