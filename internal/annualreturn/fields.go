package annualreturn

import (
	"fmt"
	"strconv"
	"strings"

	"charityprep/internal/models"

	"github.com/shopspring/decimal"
)

// FieldSource says where a field's value comes from
type FieldSource string

const (
	SourceOrganization FieldSource = "organization"
	SourceComputed     FieldSource = "computed"
	SourcePlaceholder  FieldSource = "placeholder"
)

// Field is one Annual Return answer keyed by its official field code
type Field struct {
	Code    string      `json:"code"`
	Section string      `json:"section"`
	Label   string      `json:"label"`
	Value   any         `json:"value"`
	Source  FieldSource `json:"source"`
}

// Display renders the value for exports. Money is shown to two decimal places.
func (f Field) Display() string {
	switch v := f.Value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	case int:
		return strconv.Itoa(v)
	case decimal.Decimal:
		return v.StringFixed(2)
	case []string:
		return strings.Join(v, ", ")
	default:
		return fmt.Sprint(v)
	}
}

// fieldInput is what a field value is read from
type fieldInput struct {
	org  *models.Organization
	year int
	agg  *Aggregates
}

type fieldDef struct {
	code    string
	section string
	label   string
	source  FieldSource
	value   func(in fieldInput) any // nil for placeholders
}

func orgField(code, section, label string, value func(in fieldInput) any) fieldDef {
	return fieldDef{code: code, section: section, label: label, source: SourceOrganization, value: value}
}

func computed(code, section, label string, value func(in fieldInput) any) fieldDef {
	return fieldDef{code: code, section: section, label: label, source: SourceComputed, value: value}
}

func placeholder(code, section, label string) fieldDef {
	return fieldDef{code: code, section: section, label: label, source: SourcePlaceholder}
}

func incomeIn(category models.IncomeCategory) func(in fieldInput) any {
	return func(in fieldInput) any { return in.agg.IncomeBreakdown[category] }
}

// fieldTable is the complete, ordered field mapping. Fields without a data
// source yet stay in the table as placeholders so the contract is stable.
var fieldTable = []fieldDef{
	orgField("A1_CharityName", "A", "Charity name", func(in fieldInput) any { return in.org.Name }),
	orgField("A2_CharityNumber", "A", "Registered charity number", func(in fieldInput) any { return in.org.CharityNumber }),
	orgField("A3_FinancialYearEnd", "A", "Financial year end", func(in fieldInput) any { return in.org.FinancialYearEnd }),
	orgField("A4_IncomeBand", "A", "Income band", func(in fieldInput) any { return in.org.IncomeBand }),
	computed("A5_FinancialYear", "A", "Financial year reported", func(in fieldInput) any { return in.year }),

	computed("B1_TotalIncome", "B", "Total income", func(in fieldInput) any { return in.agg.TotalIncome }),
	computed("B2_DonationsLegacies", "B", "Donations and legacies", incomeIn(models.IncomeDonationsLegacies)),
	computed("B3_CharitableActivities", "B", "Income from charitable activities", incomeIn(models.IncomeCharitableActivities)),
	computed("B4_OtherTrading", "B", "Other trading activities", incomeIn(models.IncomeOtherTrading)),
	computed("B5_Investments", "B", "Investments", incomeIn(models.IncomeInvestments)),
	computed("B6_OtherIncome", "B", "Other income", incomeIn(models.IncomeOther)),
	placeholder("B7_GovernmentGrants", "B", "Income from government grants"),
	computed("B8_GiftAidIncome", "B", "Donations with Gift Aid claimed", func(in fieldInput) any { return in.agg.GiftAidIncome }),

	computed("C1_FundraisingMethods", "C", "Fundraising methods used", func(in fieldInput) any { return in.agg.FundraisingMethods }),
	computed("C2_ProfessionalFundraiser", "C", "Professional fundraiser or commercial participator used", func(in fieldInput) any { return in.agg.UsesProfessionalFundraiser }),
	computed("C3_HighestCorporateDonation", "C", "Highest single corporate donation", func(in fieldInput) any { return in.agg.HighestCorporateDonation }),
	computed("C4_HighestIndividualDonation", "C", "Highest single individual donation", func(in fieldInput) any { return in.agg.HighestIndividualDonation }),
	placeholder("C5_FundraisingComplaints", "C", "Fundraising complaints received"),
	computed("C6_RelatedPartyTransactions", "C", "Related party transactions", func(in fieldInput) any { return in.agg.RelatedPartyTransactions }),
	computed("C7_RelatedPartyTotal", "C", "Related party transactions total", func(in fieldInput) any { return in.agg.RelatedPartyTotal }),

	computed("D1_OverseasSpend", "D", "Overseas expenditure", func(in fieldInput) any { return in.agg.OverseasSpend }),
	computed("D2_OverseasCountries", "D", "Countries where funds were spent", func(in fieldInput) any { return in.agg.OverseasCountries }),
	computed("D3_OverseasCountryCount", "D", "Number of countries", func(in fieldInput) any { return len(in.agg.OverseasCountries) }),
	computed("D4_HighRiskCountries", "D", "High-risk countries", func(in fieldInput) any { return in.agg.HighRiskCountries }),
	computed("D5_NonBankTransfers", "D", "Funds sent other than by bank transfer", func(in fieldInput) any { return in.agg.NonBankTransferTotal }),
	placeholder("D6_OverseasPartners", "D", "Overseas partner organisations"),

	placeholder("E1_TotalExpenditure", "E", "Total expenditure"),
	placeholder("F1_Employees", "F", "Number of employees"),
	placeholder("F2_Volunteers", "F", "Number of volunteers"),
	placeholder("F3_Trustees", "F", "Number of trustees"),

	computed("H1_WorkingWithChildren", "H", "Works with children", func(in fieldInput) any { return in.agg.WorkingWithChildren > 0 }),
	computed("H2_WorkingWithVulnerableAdults", "H", "Works with adults at risk", func(in fieldInput) any { return in.agg.WorkingWithVulnerableAdults > 0 }),
	computed("H3_DBSChecksValid", "H", "DBS checks in date", func(in fieldInput) any { return in.agg.DBSValid }),
	computed("H4_DBSChecksExpired", "H", "DBS checks expired", func(in fieldInput) any { return in.agg.DBSExpired }),
	computed("H5_DBSChecksPending", "H", "DBS checks pending", func(in fieldInput) any { return in.agg.DBSPending }),
	computed("H6_SafeguardingTrainingCompleted", "H", "People with safeguarding training", func(in fieldInput) any { return in.agg.TrainingCompleted }),
	placeholder("H7_SafeguardingPolicy", "H", "Safeguarding policy reviewed"),
	placeholder("H8_SeriousIncidents", "H", "Serious incidents reported"),
}

// FieldCodes lists every field code in form order
func FieldCodes() []string {
	codes := make([]string, len(fieldTable))
	for i, def := range fieldTable {
		codes[i] = def.code
	}
	return codes
}

// BuildFields projects the organisation and aggregates onto the field table
func BuildFields(org *models.Organization, year int, agg *Aggregates) []Field {
	in := fieldInput{org: org, year: year, agg: agg}

	fields := make([]Field, 0, len(fieldTable))
	for _, def := range fieldTable {
		f := Field{Code: def.code, Section: def.section, Label: def.label, Source: def.source}
		if def.value != nil {
			f.Value = def.value(in)
		}
		fields = append(fields, f)
	}
	return fields
}
