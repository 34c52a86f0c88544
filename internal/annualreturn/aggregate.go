package annualreturn

import (
	"sort"
	"strings"
	"time"

	"charityprep/internal/compliance"
	"charityprep/internal/models"

	"github.com/shopspring/decimal"
)

// Aggregates are the derived totals the Annual Return fields are read from
type Aggregates struct {
	TotalIncome     decimal.Decimal                           `json:"total_income"`
	IncomeBreakdown map[models.IncomeCategory]decimal.Decimal `json:"income_breakdown"`
	GiftAidIncome   decimal.Decimal                           `json:"gift_aid_income"`

	HighestCorporateDonation   decimal.Decimal `json:"highest_corporate_donation"`
	HighestIndividualDonation  decimal.Decimal `json:"highest_individual_donation"`
	RelatedPartyTransactions   bool            `json:"related_party_transactions"`
	RelatedPartyTotal          decimal.Decimal `json:"related_party_total"`
	FundraisingMethods         []string        `json:"fundraising_methods"`
	UsesProfessionalFundraiser bool            `json:"uses_professional_fundraiser"`

	OverseasSpend        decimal.Decimal `json:"overseas_spend"`
	OverseasCountries    []string        `json:"overseas_countries"`
	HighRiskCountries    []string        `json:"high_risk_countries"`
	NonBankTransferCount int             `json:"non_bank_transfer_count"`
	NonBankTransferTotal decimal.Decimal `json:"non_bank_transfer_total"`

	DBSValid                    int `json:"dbs_valid"`
	DBSExpired                  int `json:"dbs_expired"`
	DBSPending                  int `json:"dbs_pending"`
	WorkingWithChildren         int `json:"working_with_children"`
	WorkingWithVulnerableAdults int `json:"working_with_vulnerable_adults"`
	TrainingCompleted           int `json:"training_completed"`
}

// Aggregate derives the Annual Return totals from one financial year's records.
// Uncategorized income counts towards the total and is reported under "other"
// so the breakdown always sums to the total.
func Aggregate(set *compliance.RecordSet, now time.Time) Aggregates {
	agg := Aggregates{
		IncomeBreakdown:    make(map[models.IncomeCategory]decimal.Decimal, len(models.IncomeCategories)),
		FundraisingMethods: []string{},
		OverseasCountries:  []string{},
		HighRiskCountries:  []string{},
	}
	for _, c := range models.IncomeCategories {
		agg.IncomeBreakdown[c] = decimal.Zero
	}

	methods := make(map[string]bool)
	for _, r := range set.Income {
		if !r.IsActive() {
			continue
		}
		agg.TotalIncome = agg.TotalIncome.Add(r.Amount)

		category := r.Category
		if !category.Valid() {
			category = models.IncomeOther
		}
		agg.IncomeBreakdown[category] = agg.IncomeBreakdown[category].Add(r.Amount)

		if r.GiftAidClaimed {
			agg.GiftAidIncome = agg.GiftAidIncome.Add(r.Amount)
		}

		switch r.DonorType {
		case models.DonorCorporate:
			agg.HighestCorporateDonation = decimal.Max(agg.HighestCorporateDonation, r.Amount)
		case models.DonorIndividual:
			agg.HighestIndividualDonation = decimal.Max(agg.HighestIndividualDonation, r.Amount)
		}

		if r.IsRelatedParty {
			agg.RelatedPartyTransactions = true
			agg.RelatedPartyTotal = agg.RelatedPartyTotal.Add(r.Amount)
		}

		if method := strings.TrimSpace(strings.ToLower(r.FundraisingMethod)); method != "" {
			methods[method] = true
		}
		if r.ProfessionalFundraiser {
			agg.UsesProfessionalFundraiser = true
		}
	}
	agg.FundraisingMethods = sortedKeys(methods)

	highRisk := make(map[string]bool)
	for _, c := range set.Countries {
		if c.IsHighRisk {
			highRisk[strings.ToUpper(c.Code)] = true
		}
	}

	countries := make(map[string]bool)
	riskyCountries := make(map[string]bool)
	for _, a := range set.Overseas {
		if !a.IsActive() {
			continue
		}
		code := strings.ToUpper(a.CountryCode)
		agg.OverseasSpend = agg.OverseasSpend.Add(a.AmountGBP)
		countries[code] = true
		if highRisk[code] {
			riskyCountries[code] = true
		}
		if !a.TransferMethod.IsBanked() {
			agg.NonBankTransferCount++
			agg.NonBankTransferTotal = agg.NonBankTransferTotal.Add(a.AmountGBP)
		}
	}
	agg.OverseasCountries = sortedKeys(countries)
	agg.HighRiskCountries = sortedKeys(riskyCountries)

	for _, r := range set.Safeguarding {
		if !r.IsActive() {
			continue
		}
		switch {
		case r.IsPending():
			agg.DBSPending++
		case r.IsExpired(now):
			agg.DBSExpired++
		default:
			agg.DBSValid++
		}
		if r.WorksWithChildren {
			agg.WorkingWithChildren++
		}
		if r.WorksWithVulnerableAdults {
			agg.WorkingWithVulnerableAdults++
		}
		if r.TrainingCompleted {
			agg.TrainingCompleted++
		}
	}

	return agg
}

func sortedKeys(m map[string]bool) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
