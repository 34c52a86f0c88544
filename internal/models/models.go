package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Organization is the read-only charity context used by the Annual Return
type Organization struct {
	ID               uuid.UUID `json:"id" db:"id"`
	Name             string    `json:"name" db:"name"`
	CharityNumber    string    `json:"charity_number" db:"charity_number"`
	IncomeBand       string    `json:"income_band" db:"income_band"`
	FinancialYearEnd string    `json:"financial_year_end" db:"financial_year_end"` // MM-DD
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
}

// SafeguardingRecord is one person's DBS and safeguarding status
type SafeguardingRecord struct {
	ID                        uuid.UUID  `json:"id" db:"id"`
	OrganizationID            uuid.UUID  `json:"organization_id" db:"organization_id"`
	PersonName                string     `json:"person_name" db:"person_name"`
	Role                      string     `json:"role" db:"role"`
	WorksWithChildren         bool       `json:"works_with_children" db:"works_with_children"`
	WorksWithVulnerableAdults bool       `json:"works_with_vulnerable_adults" db:"works_with_vulnerable_adults"`
	DBSCertificateNumber      *string    `json:"dbs_certificate_number" db:"dbs_certificate_number"`
	ExpiryDate                *time.Time `json:"expiry_date" db:"expiry_date"` // nil = pending, never expired
	TrainingCompleted         bool       `json:"training_completed" db:"training_completed"`
	ReferenceChecksCompleted  bool       `json:"reference_checks_completed" db:"reference_checks_completed"`
	CreatedAt                 time.Time  `json:"created_at" db:"created_at"`
	DeletedAt                 *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// OverseasActivity is money or goods sent abroad, always expressed in GBP
type OverseasActivity struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	OrganizationID uuid.UUID       `json:"organization_id" db:"organization_id"`
	CountryCode    string          `json:"country_code" db:"country_code"`
	ActivityType   ActivityType    `json:"activity_type" db:"activity_type"`
	Description    string          `json:"description" db:"description"`
	AmountGBP      decimal.Decimal `json:"amount_gbp" db:"amount_gbp"`
	TransferMethod TransferMethod  `json:"transfer_method" db:"transfer_method"`
	TransferDate   time.Time       `json:"transfer_date" db:"transfer_date"`
	FinancialYear  int             `json:"financial_year" db:"financial_year"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	DeletedAt      *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
}

// IncomeRecord is a single receipt of income or a fundraising donation
type IncomeRecord struct {
	ID                     uuid.UUID       `json:"id" db:"id"`
	OrganizationID         uuid.UUID       `json:"organization_id" db:"organization_id"`
	Category               IncomeCategory  `json:"category" db:"category"` // empty = uncategorized
	Description            string          `json:"description" db:"description"`
	Amount                 decimal.Decimal `json:"amount" db:"amount"`
	DateReceived           time.Time       `json:"date_received" db:"date_received"`
	IsRelatedParty         bool            `json:"is_related_party" db:"is_related_party"`
	DonorType              DonorType       `json:"donor_type" db:"donor_type"`
	FundraisingMethod      string          `json:"fundraising_method" db:"fundraising_method"`
	ProfessionalFundraiser bool            `json:"professional_fundraiser" db:"professional_fundraiser"`
	GiftAidClaimed         bool            `json:"gift_aid_claimed" db:"gift_aid_claimed"`
	FinancialYear          int             `json:"financial_year" db:"financial_year"`
	CreatedAt              time.Time       `json:"created_at" db:"created_at"`
	DeletedAt              *time.Time      `json:"deleted_at,omitempty" db:"deleted_at"`
}

// Country is reference data for overseas risk
type Country struct {
	Code                 string `json:"code" db:"code"`
	Name                 string `json:"name" db:"name"`
	IsHighRisk           bool   `json:"is_high_risk" db:"is_high_risk"`
	RequiresDueDiligence bool   `json:"requires_due_diligence" db:"requires_due_diligence"`
}

// ComplianceScoreSnapshot is one append-only history row
type ComplianceScoreSnapshot struct {
	ID             uuid.UUID `json:"id" db:"id"`
	OrganizationID uuid.UUID `json:"organization_id" db:"organization_id"`
	Score          int       `json:"score" db:"score"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// IsExpired reports whether the DBS check lapsed before now. Records without
// an expiry date are pending and never expired.
func (r SafeguardingRecord) IsExpired(now time.Time) bool {
	return r.ExpiryDate != nil && r.ExpiryDate.Before(now)
}

// IsExpiringWithin reports expiry in (now, now+window]
func (r SafeguardingRecord) IsExpiringWithin(now time.Time, window time.Duration) bool {
	if r.ExpiryDate == nil {
		return false
	}
	return r.ExpiryDate.After(now) && !r.ExpiryDate.After(now.Add(window))
}

// IsPending reports a record still waiting on its DBS certificate
func (r SafeguardingRecord) IsPending() bool {
	return r.ExpiryDate == nil
}

func (r SafeguardingRecord) IsActive() bool { return r.DeletedAt == nil }
func (a OverseasActivity) IsActive() bool   { return a.DeletedAt == nil }
func (r IncomeRecord) IsActive() bool       { return r.DeletedAt == nil }
