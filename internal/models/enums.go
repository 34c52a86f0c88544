package models

// ActivityType classifies an overseas activity
type ActivityType string

const (
	ActivityDevelopment      ActivityType = "development"
	ActivityEducation        ActivityType = "education"
	ActivityHealthcare       ActivityType = "healthcare"
	ActivityEmergencyRelief  ActivityType = "emergency_relief"
	ActivityCapacityBuilding ActivityType = "capacity_building"
	ActivityOther            ActivityType = "other"
)

func (t ActivityType) Valid() bool {
	switch t {
	case ActivityDevelopment, ActivityEducation, ActivityHealthcare,
		ActivityEmergencyRelief, ActivityCapacityBuilding, ActivityOther:
		return true
	}
	return false
}

// TransferMethod is how overseas funds left the charity
type TransferMethod string

const (
	TransferBank   TransferMethod = "bank_transfer"
	TransferWire   TransferMethod = "wire_transfer"
	TransferCash   TransferMethod = "cash"
	TransferInKind TransferMethod = "in_kind"
	TransferOther  TransferMethod = "other"
)

func (m TransferMethod) Valid() bool {
	switch m {
	case TransferBank, TransferWire, TransferCash, TransferInKind, TransferOther:
		return true
	}
	return false
}

// IsBanked reports whether the method goes through the regulated banking system
func (m TransferMethod) IsBanked() bool {
	return m == TransferBank || m == TransferWire
}

// IncomeCategory follows the Annual Return income breakdown
type IncomeCategory string

const (
	IncomeDonationsLegacies    IncomeCategory = "donations_legacies"
	IncomeCharitableActivities IncomeCategory = "charitable_activities"
	IncomeOtherTrading         IncomeCategory = "other_trading"
	IncomeInvestments          IncomeCategory = "investments"
	IncomeOther                IncomeCategory = "other"
	IncomeUncategorized        IncomeCategory = ""
)

// IncomeCategories lists the five reportable categories in form order
var IncomeCategories = []IncomeCategory{
	IncomeDonationsLegacies,
	IncomeCharitableActivities,
	IncomeOtherTrading,
	IncomeInvestments,
	IncomeOther,
}

func (c IncomeCategory) Valid() bool {
	for _, known := range IncomeCategories {
		if c == known {
			return true
		}
	}
	return false
}

// DonorType identifies who gave a donation
type DonorType string

const (
	DonorIndividual DonorType = "individual"
	DonorCorporate  DonorType = "corporate"
	DonorTrust      DonorType = "trust"
	DonorGovernment DonorType = "government"
	DonorUnknown    DonorType = ""
)

func (d DonorType) Valid() bool {
	switch d {
	case DonorIndividual, DonorCorporate, DonorTrust, DonorGovernment, DonorUnknown:
		return true
	}
	return false
}
