package testutil

import (
	"time"

	"charityprep/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Date returns midnight UTC on the given day
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Ptr returns a pointer to v
func Ptr[T any](v T) *T {
	return &v
}

// CreateTestSafeguardingRecord creates a record for orgID with the given DBS expiry
func CreateTestSafeguardingRecord(orgID uuid.UUID, expiry *time.Time) models.SafeguardingRecord {
	return models.SafeguardingRecord{
		ID:                       uuid.New(),
		OrganizationID:           orgID,
		PersonName:               "Test Person",
		Role:                     "Volunteer",
		WorksWithChildren:        true,
		ExpiryDate:               expiry,
		TrainingCompleted:        true,
		ReferenceChecksCompleted: true,
		CreatedAt:                time.Now(),
	}
}

// CreateTestOverseasActivity creates an activity for orgID
func CreateTestOverseasActivity(orgID uuid.UUID, country string, amount int64, method models.TransferMethod) models.OverseasActivity {
	return models.OverseasActivity{
		ID:             uuid.New(),
		OrganizationID: orgID,
		CountryCode:    country,
		ActivityType:   models.ActivityDevelopment,
		AmountGBP:      decimal.NewFromInt(amount),
		TransferMethod: method,
		TransferDate:   Date(2024, 9, 1),
		FinancialYear:  2024,
		CreatedAt:      time.Now(),
	}
}

// CreateTestIncomeRecord creates an income record for orgID
func CreateTestIncomeRecord(orgID uuid.UUID, category models.IncomeCategory, amount int64) models.IncomeRecord {
	return models.IncomeRecord{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Category:       category,
		Amount:         decimal.NewFromInt(amount),
		DateReceived:   Date(2024, 10, 1),
		FinancialYear:  2024,
		CreatedAt:      time.Now(),
	}
}

// TestCountries is a small reference table
func TestCountries() []models.Country {
	return []models.Country{
		{Code: "GB", Name: "United Kingdom"},
		{Code: "KE", Name: "Kenya", RequiresDueDiligence: true},
		{Code: "SO", Name: "Somalia", IsHighRisk: true, RequiresDueDiligence: true},
		{Code: "SY", Name: "Syria", IsHighRisk: true, RequiresDueDiligence: true},
	}
}
