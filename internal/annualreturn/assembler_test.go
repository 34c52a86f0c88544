package annualreturn

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "charityprep/internal/errors"
	"charityprep/internal/models"
	"charityprep/internal/testutil"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func seededStore(t *testing.T) (*testutil.MemoryStore, uuid.UUID) {
	t.Helper()

	store := testutil.NewMemoryStore()
	store.Countries = testutil.TestCountries()
	org := store.AddOrganization(models.Organization{
		Name:             "Harbour Lights Foundation",
		CharityNumber:    "1123456",
		IncomeBand:       "100k-500k",
		FinancialYearEnd: "03-31",
	})

	donation := testutil.CreateTestIncomeRecord(org, models.IncomeDonationsLegacies, 5000)
	donation.DonorType = models.DonorCorporate
	donation.FundraisingMethod = "Events"
	donation.GiftAidClaimed = true

	smallGift := testutil.CreateTestIncomeRecord(org, models.IncomeDonationsLegacies, 250)
	smallGift.DonorType = models.DonorIndividual
	smallGift.FundraisingMethod = "online"

	bigGift := testutil.CreateTestIncomeRecord(org, models.IncomeDonationsLegacies, 1200)
	bigGift.DonorType = models.DonorIndividual
	bigGift.FundraisingMethod = "events"
	bigGift.IsRelatedParty = true
	bigGift.ProfessionalFundraiser = true

	trading := testutil.CreateTestIncomeRecord(org, models.IncomeOtherTrading, 800)
	loose := testutil.CreateTestIncomeRecord(org, models.IncomeUncategorized, 100)

	lastYear := testutil.CreateTestIncomeRecord(org, models.IncomeInvestments, 9999)
	lastYear.FinancialYear = 2023

	store.Income = []models.IncomeRecord{donation, smallGift, bigGift, trading, loose, lastYear}

	store.Overseas = []models.OverseasActivity{
		testutil.CreateTestOverseasActivity(org, "ke", 1000, models.TransferBank),
		testutil.CreateTestOverseasActivity(org, "SO", 300, models.TransferCash),
		testutil.CreateTestOverseasActivity(org, "KE", 200, models.TransferWire),
	}

	adult := testutil.CreateTestSafeguardingRecord(org, testutil.Ptr(testutil.Date(2026, 1, 1)))
	adult.WorksWithChildren = false
	adult.WorksWithVulnerableAdults = true
	store.Safeguarding = []models.SafeguardingRecord{
		adult,
		testutil.CreateTestSafeguardingRecord(org, testutil.Ptr(testutil.Date(2024, 1, 1))),
		testutil.CreateTestSafeguardingRecord(org, nil),
	}

	return store, org
}

func TestAssemble(t *testing.T) {
	store, org := seededStore(t)

	ar, err := NewAssembler(store, fixedClock).Assemble(context.Background(), org, 2024)
	require.NoError(t, err)

	assert.Equal(t, 2024, ar.FinancialYear)
	assert.Equal(t, fixedNow, ar.GeneratedAt)
	assert.Equal(t, "Harbour Lights Foundation", ar.Organization.Name)

	agg := ar.Aggregates
	assert.True(t, decimal.NewFromInt(7350).Equal(agg.TotalIncome), agg.TotalIncome.String())
	assert.True(t, decimal.NewFromInt(6450).Equal(agg.IncomeBreakdown[models.IncomeDonationsLegacies]))
	assert.True(t, decimal.NewFromInt(800).Equal(agg.IncomeBreakdown[models.IncomeOtherTrading]))
	assert.True(t, decimal.NewFromInt(100).Equal(agg.IncomeBreakdown[models.IncomeOther]), "uncategorized income is reported as other")
	assert.True(t, agg.IncomeBreakdown[models.IncomeInvestments].IsZero(), "other years are excluded")

	assert.True(t, decimal.NewFromInt(5000).Equal(agg.HighestCorporateDonation))
	assert.True(t, decimal.NewFromInt(1200).Equal(agg.HighestIndividualDonation))
	assert.True(t, decimal.NewFromInt(5000).Equal(agg.GiftAidIncome))
	assert.True(t, agg.RelatedPartyTransactions)
	assert.True(t, decimal.NewFromInt(1200).Equal(agg.RelatedPartyTotal))
	assert.Equal(t, []string{"events", "online"}, agg.FundraisingMethods)
	assert.True(t, agg.UsesProfessionalFundraiser)

	assert.True(t, decimal.NewFromInt(1500).Equal(agg.OverseasSpend))
	assert.Equal(t, []string{"KE", "SO"}, agg.OverseasCountries)
	assert.Equal(t, []string{"SO"}, agg.HighRiskCountries)
	assert.Equal(t, 1, agg.NonBankTransferCount)
	assert.True(t, decimal.NewFromInt(300).Equal(agg.NonBankTransferTotal))

	assert.Equal(t, 1, agg.DBSValid)
	assert.Equal(t, 1, agg.DBSExpired)
	assert.Equal(t, 1, agg.DBSPending)
	assert.Equal(t, 2, agg.WorkingWithChildren)
	assert.Equal(t, 1, agg.WorkingWithVulnerableAdults)
	assert.Equal(t, 3, agg.TrainingCompleted)
}

func TestAssemble_FieldTable(t *testing.T) {
	store, org := seededStore(t)

	ar, err := NewAssembler(store, fixedClock).Assemble(context.Background(), org, 2024)
	require.NoError(t, err)

	codes := make([]string, len(ar.Fields))
	for i, f := range ar.Fields {
		codes[i] = f.Code
	}
	assert.Equal(t, FieldCodes(), codes, "fields follow the table order")

	name, ok := ar.Field("A1_CharityName")
	require.True(t, ok)
	assert.Equal(t, SourceOrganization, name.Source)
	assert.Equal(t, "Harbour Lights Foundation", name.Value)

	total, ok := ar.Field("B1_TotalIncome")
	require.True(t, ok)
	assert.Equal(t, "7350.00", total.Display())

	countries, ok := ar.Field("D2_OverseasCountries")
	require.True(t, ok)
	assert.Equal(t, "KE, SO", countries.Display())

	children, ok := ar.Field("H1_WorkingWithChildren")
	require.True(t, ok)
	assert.Equal(t, true, children.Value)
	assert.Equal(t, "Yes", children.Display())

	for _, f := range ar.Fields {
		if f.Source == SourcePlaceholder {
			assert.Nil(t, f.Value, f.Code)
			assert.Empty(t, f.Display(), f.Code)
		} else {
			assert.NotNil(t, f.Value, f.Code)
		}
	}

	_, ok = ar.Field("Z9_Unknown")
	assert.False(t, ok)
}

func TestAssemble_EmptyOrganization(t *testing.T) {
	store := testutil.NewMemoryStore()
	org := store.AddOrganization(models.Organization{Name: "New Charity"})

	ar, err := NewAssembler(store, fixedClock).Assemble(context.Background(), org, 2024)
	require.NoError(t, err)

	assert.True(t, ar.Aggregates.TotalIncome.IsZero())
	assert.Len(t, ar.Aggregates.IncomeBreakdown, len(models.IncomeCategories))
	assert.NotNil(t, ar.Aggregates.OverseasCountries)
	assert.Empty(t, ar.Aggregates.OverseasCountries)

	children, _ := ar.Field("H1_WorkingWithChildren")
	assert.Equal(t, false, children.Value)
	related, _ := ar.Field("C6_RelatedPartyTransactions")
	assert.Equal(t, "No", related.Display())
}

func TestAssemble_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown organization", func(t *testing.T) {
		store := testutil.NewMemoryStore()
		_, err := NewAssembler(store, fixedClock).Assemble(ctx, uuid.New(), 2024)
		assert.ErrorIs(t, err, apperrors.ErrNotFound)
	})

	t.Run("invalid year", func(t *testing.T) {
		store := testutil.NewMemoryStore()
		_, err := NewAssembler(store, fixedClock).Assemble(ctx, uuid.New(), 24)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("fetch failure", func(t *testing.T) {
		store := testutil.NewMemoryStore()
		org := store.AddOrganization(models.Organization{Name: "Broken"})
		boom := errors.New("connection reset")
		store.FetchErr = boom
		_, err := NewAssembler(store, fixedClock).Assemble(ctx, org, 2024)
		assert.ErrorIs(t, err, boom)
	})
}

func TestField_Display(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{"nil", nil, ""},
		{"string", "03-31", "03-31"},
		{"true", true, "Yes"},
		{"false", false, "No"},
		{"int", 4, "4"},
		{"money", decimal.RequireFromString("12.5"), "12.50"},
		{"list", []string{"KE", "SO"}, "KE, SO"},
		{"empty list", []string{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Field{Value: tt.value}.Display())
		})
	}
}
