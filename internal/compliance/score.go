package compliance

import (
	"math"
	"time"

	"charityprep/internal/models"
)

// Category weights in the overall score
const (
	SafeguardingWeight = 0.4
	OverseasWeight     = 0.3
	IncomeWeight       = 0.3
)

// incomeDiversityTarget is the number of distinct income categories that earns a full income score
const incomeDiversityTarget = 3

// Score is an overall 0-100 compliance score with one sub-score per category
type Score struct {
	Overall      int `json:"overall"`
	Safeguarding int `json:"safeguarding"`
	Overseas     int `json:"overseas"`
	Income       int `json:"income"`
}

// Calculator computes scores against a fixed clock reading
type Calculator struct {
	now func() time.Time
}

// NewCalculator returns a calculator using now as its clock. A nil clock uses time.Now.
func NewCalculator(now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{now: now}
}

// CalculateComplianceScore scores the current state of an organisation using
// the wall clock. See Calculator.Calculate.
func CalculateComplianceScore(
	safeguarding []models.SafeguardingRecord,
	overseas []models.OverseasActivity,
	income []models.IncomeRecord,
	countries []models.Country,
) Score {
	return NewCalculator(nil).Calculate(safeguarding, overseas, income, countries)
}

// Calculate turns the three record sets into a weighted score.
//
// Safeguarding scores the share of active records that are not expired and is
// left out of the weighting when there are none. Overseas is a presence check
// that scores 100 whether or not activities exist. Income rewards spread
// across at least three categories. Overall divides by the weight actually
// applied, and is 0 when the organisation has no active records at all.
//
// countries is accepted for risk weighting of overseas activity, which the
// presence check does not use yet.
func (c *Calculator) Calculate(
	safeguarding []models.SafeguardingRecord,
	overseas []models.OverseasActivity,
	income []models.IncomeRecord,
	countries []models.Country,
) Score {
	now := c.now()

	var score Score
	var weighted, totalWeight float64

	activeSafeguarding, validSafeguarding := 0, 0
	for _, r := range safeguarding {
		if !r.IsActive() {
			continue
		}
		activeSafeguarding++
		if !r.IsExpired(now) {
			validSafeguarding++
		}
	}
	if activeSafeguarding > 0 {
		score.Safeguarding = percent(float64(validSafeguarding) / float64(activeSafeguarding))
		weighted += float64(score.Safeguarding) * SafeguardingWeight
		totalWeight += SafeguardingWeight
	}

	activeOverseas := countActive(overseas)
	activeIncome := countActive(income)

	// Zero activities reports "not applicable" as compliant; so does any activity.
	score.Overseas = 100
	if activeSafeguarding+activeOverseas+activeIncome > 0 {
		weighted += float64(score.Overseas) * OverseasWeight
		totalWeight += OverseasWeight
	}

	if activeIncome > 0 {
		diversity := float64(distinctIncomeCategories(income)) / incomeDiversityTarget
		score.Income = percent(math.Min(diversity, 1))
		weighted += float64(score.Income) * IncomeWeight
		totalWeight += IncomeWeight
	}

	if totalWeight > 0 {
		score.Overall = clamp(int(math.Round(weighted / totalWeight)))
	}

	return score
}

// distinctIncomeCategories counts known categories with a positive amount
func distinctIncomeCategories(income []models.IncomeRecord) int {
	seen := make(map[models.IncomeCategory]bool)
	for _, r := range income {
		if !r.IsActive() || !r.Category.Valid() || !r.Amount.IsPositive() {
			continue
		}
		seen[r.Category] = true
	}
	return len(seen)
}

func countActive[T interface{ IsActive() bool }](records []T) int {
	n := 0
	for _, r := range records {
		if r.IsActive() {
			n++
		}
	}
	return n
}

func percent(ratio float64) int {
	return clamp(int(math.Round(ratio * 100)))
}

func clamp(v int) int {
	return max(0, min(100, v))
}
