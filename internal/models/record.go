package models

import "github.com/google/uuid"

// Category is one of the three scored compliance areas
type Category string

const (
	CategorySafeguarding Category = "safeguarding"
	CategoryOverseas     Category = "overseas"
	CategoryIncome       Category = "income"
)

// Record is the closed set of compliance record kinds. Only the types in this
// package implement it; switches over Record are expected to cover all three.
type Record interface {
	Kind() Category
	Organization() uuid.UUID
	isRecord()
}

func (SafeguardingRecord) Kind() Category { return CategorySafeguarding }
func (OverseasActivity) Kind() Category   { return CategoryOverseas }
func (IncomeRecord) Kind() Category       { return CategoryIncome }

func (r SafeguardingRecord) Organization() uuid.UUID { return r.OrganizationID }
func (a OverseasActivity) Organization() uuid.UUID   { return a.OrganizationID }
func (r IncomeRecord) Organization() uuid.UUID       { return r.OrganizationID }

func (SafeguardingRecord) isRecord() {}
func (OverseasActivity) isRecord()   {}
func (IncomeRecord) isRecord()       {}
