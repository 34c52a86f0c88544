// Package annualreturn projects an organisation's compliance records onto
// the Charity Commission Annual Return. It aggregates and maps; it does not
// check Commission business rules.
package annualreturn

import (
	"context"
	"fmt"
	"time"

	"charityprep/internal/compliance"
	apperrors "charityprep/internal/errors"
	"charityprep/internal/models"

	"github.com/google/uuid"
)

// Reader is the data the assembler needs
type Reader interface {
	compliance.RecordReader
	GetOrganization(ctx context.Context, id uuid.UUID) (*models.Organization, error)
}

// AnnualReturn is one organisation's field-mapped return for a financial year
type AnnualReturn struct {
	Organization  models.Organization `json:"organization"`
	FinancialYear int                 `json:"financial_year"`
	Aggregates    Aggregates          `json:"aggregates"`
	Fields        []Field             `json:"fields"`
	GeneratedAt   time.Time           `json:"generated_at"`
}

// Field returns the field with the given code
func (ar *AnnualReturn) Field(code string) (Field, bool) {
	for _, f := range ar.Fields {
		if f.Code == code {
			return f, true
		}
	}
	return Field{}, false
}

type Assembler struct {
	reader Reader
	now    func() time.Time
}

func NewAssembler(reader Reader, now func() time.Time) *Assembler {
	if now == nil {
		now = time.Now
	}
	return &Assembler{reader: reader, now: now}
}

// Assemble reads the organisation and its records for year, aggregates them
// and maps them onto the field table in one pass.
func (a *Assembler) Assemble(ctx context.Context, orgID uuid.UUID, year int) (*AnnualReturn, error) {
	if year < 1900 || year > 9999 {
		return nil, apperrors.ValidationError{Field: "year", Message: fmt.Sprintf("%d is not a valid financial year", year)}
	}

	org, err := a.reader.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	set, err := compliance.FetchRecords(ctx, a.reader, orgID, &year)
	if err != nil {
		return nil, err
	}

	now := a.now()
	agg := Aggregate(set, now)

	return &AnnualReturn{
		Organization:  *org,
		FinancialYear: year,
		Aggregates:    agg,
		Fields:        BuildFields(org, year, &agg),
		GeneratedAt:   now.UTC(),
	}, nil
}
