package importer

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"charityprep/internal/models"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var validate = newValidator()

// newValidator reports failures by CSV column name
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		return field.Tag.Get("csv")
	})
	return v
}

// RowError describes why a line was skipped
type RowError struct {
	Line    int    `json:"line"`
	Column  string `json:"column,omitempty"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("line %d, column '%s': %s", e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

type safeguardingRow struct {
	PersonName                string `csv:"person_name" validate:"required,max=255"`
	Role                      string `csv:"role" validate:"max=255"`
	WorksWithChildren         string `csv:"works_with_children" validate:"omitempty,boolean"`
	WorksWithVulnerableAdults string `csv:"works_with_vulnerable_adults" validate:"omitempty,boolean"`
	DBSCertificateNumber      string `csv:"dbs_certificate_number" validate:"omitempty,alphanum,max=32"`
	ExpiryDate                string `csv:"expiry_date" validate:"omitempty,datetime=2006-01-02"`
	TrainingCompleted         string `csv:"training_completed" validate:"omitempty,boolean"`
	ReferenceChecksCompleted  string `csv:"reference_checks_completed" validate:"omitempty,boolean"`
}

type overseasRow struct {
	CountryCode    string `csv:"country_code" validate:"required,iso3166_1_alpha2"`
	ActivityType   string `csv:"activity_type" validate:"required,oneof=development education healthcare emergency_relief capacity_building other"`
	Description    string `csv:"description" validate:"max=1024"`
	AmountGBP      string `csv:"amount_gbp" validate:"required,numeric"`
	TransferMethod string `csv:"transfer_method" validate:"required,oneof=bank_transfer wire_transfer cash in_kind other"`
	TransferDate   string `csv:"transfer_date" validate:"required,datetime=2006-01-02"`
	FinancialYear  string `csv:"financial_year" validate:"required,number,len=4"`
}

type incomeRow struct {
	Category               string `csv:"category" validate:"omitempty,oneof=donations_legacies charitable_activities other_trading investments other"`
	Description            string `csv:"description" validate:"max=1024"`
	Amount                 string `csv:"amount" validate:"required,numeric"`
	DateReceived           string `csv:"date_received" validate:"required,datetime=2006-01-02"`
	IsRelatedParty         string `csv:"is_related_party" validate:"omitempty,boolean"`
	DonorType              string `csv:"donor_type" validate:"omitempty,oneof=individual corporate trust government"`
	FundraisingMethod      string `csv:"fundraising_method" validate:"max=128"`
	ProfessionalFundraiser string `csv:"professional_fundraiser" validate:"omitempty,boolean"`
	GiftAidClaimed         string `csv:"gift_aid_claimed" validate:"omitempty,boolean"`
	FinancialYear          string `csv:"financial_year" validate:"required,number,len=4"`
}

// checkRow validates v and converts the first failure into a RowError
func checkRow(line int, v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return RowError{Line: line, Column: fe.Field(), Message: fmt.Sprintf("failed %q check", fe.Tag())}
	}
	return RowError{Line: line, Message: err.Error()}
}

func parseBool(s string) bool {
	v, _ := strconv.ParseBool(s)
	return v
}

func parseAmount(line int, column, s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, RowError{Line: line, Column: column, Message: "not a decimal amount"}
	}
	if d.IsNegative() {
		return decimal.Zero, RowError{Line: line, Column: column, Message: "amount must not be negative"}
	}
	return d.Round(2), nil
}

func parseSafeguarding(r row, orgID uuid.UUID) (models.Record, error) {
	in := safeguardingRow{
		PersonName:                r.get("person_name"),
		Role:                      r.get("role"),
		WorksWithChildren:         r.get("works_with_children"),
		WorksWithVulnerableAdults: r.get("works_with_vulnerable_adults"),
		DBSCertificateNumber:      r.get("dbs_certificate_number"),
		ExpiryDate:                r.get("expiry_date"),
		TrainingCompleted:         r.get("training_completed"),
		ReferenceChecksCompleted:  r.get("reference_checks_completed"),
	}
	if err := checkRow(r.line, in); err != nil {
		return nil, err
	}

	rec := models.SafeguardingRecord{
		OrganizationID:            orgID,
		PersonName:                in.PersonName,
		Role:                      in.Role,
		WorksWithChildren:         parseBool(in.WorksWithChildren),
		WorksWithVulnerableAdults: parseBool(in.WorksWithVulnerableAdults),
		TrainingCompleted:         parseBool(in.TrainingCompleted),
		ReferenceChecksCompleted:  parseBool(in.ReferenceChecksCompleted),
	}
	if in.DBSCertificateNumber != "" {
		rec.DBSCertificateNumber = &in.DBSCertificateNumber
	}
	if in.ExpiryDate != "" {
		expiry, _ := time.Parse(dateLayout, in.ExpiryDate)
		rec.ExpiryDate = &expiry
	}
	return rec, nil
}

func parseOverseas(r row, orgID uuid.UUID) (models.Record, error) {
	in := overseasRow{
		CountryCode:    strings.ToUpper(r.get("country_code")),
		ActivityType:   strings.ToLower(r.get("activity_type")),
		Description:    r.get("description"),
		AmountGBP:      r.get("amount_gbp"),
		TransferMethod: strings.ToLower(r.get("transfer_method")),
		TransferDate:   r.get("transfer_date"),
		FinancialYear:  r.get("financial_year"),
	}
	if err := checkRow(r.line, in); err != nil {
		return nil, err
	}

	amount, err := parseAmount(r.line, "amount_gbp", in.AmountGBP)
	if err != nil {
		return nil, err
	}
	transferDate, _ := time.Parse(dateLayout, in.TransferDate)
	year, _ := strconv.Atoi(in.FinancialYear)

	return models.OverseasActivity{
		OrganizationID: orgID,
		CountryCode:    in.CountryCode,
		ActivityType:   models.ActivityType(in.ActivityType),
		Description:    in.Description,
		AmountGBP:      amount,
		TransferMethod: models.TransferMethod(in.TransferMethod),
		TransferDate:   transferDate,
		FinancialYear:  year,
	}, nil
}

func parseIncome(r row, orgID uuid.UUID) (models.Record, error) {
	in := incomeRow{
		Category:               strings.ToLower(r.get("category")),
		Description:            r.get("description"),
		Amount:                 r.get("amount"),
		DateReceived:           r.get("date_received"),
		IsRelatedParty:         r.get("is_related_party"),
		DonorType:              strings.ToLower(r.get("donor_type")),
		FundraisingMethod:      r.get("fundraising_method"),
		ProfessionalFundraiser: r.get("professional_fundraiser"),
		GiftAidClaimed:         r.get("gift_aid_claimed"),
		FinancialYear:          r.get("financial_year"),
	}
	if err := checkRow(r.line, in); err != nil {
		return nil, err
	}

	amount, err := parseAmount(r.line, "amount", in.Amount)
	if err != nil {
		return nil, err
	}
	received, _ := time.Parse(dateLayout, in.DateReceived)
	year, _ := strconv.Atoi(in.FinancialYear)

	return models.IncomeRecord{
		OrganizationID:         orgID,
		Category:               models.IncomeCategory(in.Category),
		Description:            in.Description,
		Amount:                 amount,
		DateReceived:           received,
		IsRelatedParty:         parseBool(in.IsRelatedParty),
		DonorType:              models.DonorType(in.DonorType),
		FundraisingMethod:      in.FundraisingMethod,
		ProfessionalFundraiser: parseBool(in.ProfessionalFundraiser),
		GiftAidClaimed:         parseBool(in.GiftAidClaimed),
		FinancialYear:          year,
	}, nil
}
