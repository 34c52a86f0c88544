package compliance

import (
	"fmt"
	"slices"
	"time"

	"charityprep/internal/models"
)

// Priority orders action items, most urgent first
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Rank is the sort position of a priority; unknown priorities sort last
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	}
	return 3
}

// ActionThreshold is the sub-score below which a category's rules fire
const ActionThreshold = 80

// ExpiryWarningWindow is how far ahead DBS expiries are flagged
const ExpiryWarningWindow = 30 * 24 * time.Hour

// ActionItem is one remediation task for the dashboard
type ActionItem struct {
	Category    models.Category `json:"category"`
	Priority    Priority        `json:"priority"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Count       int             `json:"count,omitempty"`
}

// tally counts rule hits per record kind
type tally struct {
	expiredDBS    int
	expiringDBS   int
	riskyTransfer int
	uncategorized int
}

// GenerateActionItems derives remediation tasks using the wall clock
func GenerateActionItems(
	score Score,
	safeguarding []models.SafeguardingRecord,
	overseas []models.OverseasActivity,
	income []models.IncomeRecord,
) []ActionItem {
	return NewCalculator(nil).ActionItems(score, safeguarding, overseas, income)
}

// ActionItems derives remediation tasks from the raw records. A category's
// rules only fire while its sub-score is below ActionThreshold. Items are
// stably sorted by priority, so equal priorities keep rule order.
func (c *Calculator) ActionItems(
	score Score,
	safeguarding []models.SafeguardingRecord,
	overseas []models.OverseasActivity,
	income []models.IncomeRecord,
) []ActionItem {
	now := c.now()

	gated := map[models.Category]bool{
		models.CategorySafeguarding: score.Safeguarding < ActionThreshold,
		models.CategoryOverseas:     score.Overseas < ActionThreshold,
		models.CategoryIncome:       score.Income < ActionThreshold,
	}

	records := make([]models.Record, 0, len(safeguarding)+len(overseas)+len(income))
	for _, r := range safeguarding {
		records = append(records, r)
	}
	for _, a := range overseas {
		records = append(records, a)
	}
	for _, r := range income {
		records = append(records, r)
	}

	var t tally
	for _, rec := range records {
		if !gated[rec.Kind()] {
			continue
		}
		t.add(rec, now)
	}

	var items []ActionItem
	if t.expiredDBS > 0 {
		items = append(items, ActionItem{
			Category:    models.CategorySafeguarding,
			Priority:    PriorityHigh,
			Title:       "Renew expired DBS checks",
			Description: fmt.Sprintf("%s expired. People in regulated activity must not continue without a current check.", plural(t.expiredDBS, "DBS check has", "DBS checks have")),
			Count:       t.expiredDBS,
		})
	}
	if t.expiringDBS > 0 {
		items = append(items, ActionItem{
			Category:    models.CategorySafeguarding,
			Priority:    PriorityMedium,
			Title:       "DBS checks expiring soon",
			Description: fmt.Sprintf("%s within the next 30 days. Start renewals now.", plural(t.expiringDBS, "DBS check expires", "DBS checks expire")),
			Count:       t.expiringDBS,
		})
	}
	if t.riskyTransfer > 0 {
		items = append(items, ActionItem{
			Category:    models.CategoryOverseas,
			Priority:    PriorityHigh,
			Title:       "Review non-bank overseas transfers",
			Description: fmt.Sprintf("%s moved money outside bank or wire transfer. Record the due diligence carried out.", plural(t.riskyTransfer, "overseas activity", "overseas activities")),
			Count:       t.riskyTransfer,
		})
	}
	if t.uncategorized > 0 {
		items = append(items, ActionItem{
			Category:    models.CategoryIncome,
			Priority:    PriorityMedium,
			Title:       "Categorise income records",
			Description: fmt.Sprintf("%s no category. The Annual Return needs income split by source.", plural(t.uncategorized, "income record has", "income records have")),
			Count:       t.uncategorized,
		})
	}

	slices.SortStableFunc(items, func(a, b ActionItem) int {
		return a.Priority.Rank() - b.Priority.Rank()
	})
	return items
}

func (t *tally) add(rec models.Record, now time.Time) {
	switch r := rec.(type) {
	case models.SafeguardingRecord:
		if !r.IsActive() {
			return
		}
		if r.IsExpired(now) {
			t.expiredDBS++
		} else if r.IsExpiringWithin(now, ExpiryWarningWindow) {
			t.expiringDBS++
		}
	case models.OverseasActivity:
		if r.IsActive() && !r.TransferMethod.IsBanked() {
			t.riskyTransfer++
		}
	case models.IncomeRecord:
		if r.IsActive() && r.Category == models.IncomeUncategorized {
			t.uncategorized++
		}
	default:
		panic(fmt.Sprintf("compliance: unhandled record type %T", rec))
	}
}

func plural(n int, one, many string) string {
	if n == 1 {
		return "1 " + one
	}
	return fmt.Sprintf("%d %s", n, many)
}
