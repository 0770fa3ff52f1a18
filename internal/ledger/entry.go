package ledger

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Entry is one append-only financial row. Positive amounts are income,
// negative amounts are expenses.
type Entry struct {
	ClubID    uuid.UUID       `json:"club_id"`
	TurnID    uuid.UUID       `json:"turn_id"`
	Kind      Kind            `json:"kind"`
	Amount    decimal.Decimal `json:"amount"`
	Meta      map[string]any  `json:"meta,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// Posting is an entry that has not yet been bound to a club and turn.
type Posting struct {
	Kind   Kind
	Amount decimal.Decimal
	Meta   map[string]any
}

func Income(c Category, amount decimal.Decimal, meta map[string]any) Posting {
	return Posting{Kind: Of(c), Amount: amount.Abs(), Meta: meta}
}

func Expense(c Category, amount decimal.Decimal, meta map[string]any) Posting {
	return Posting{Kind: Of(c), Amount: amount.Abs().Neg(), Meta: meta}
}

// Quantize rounds a money amount to two decimal places with banker's rounding.
func Quantize(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(2)
}

func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Kind.less(entries[j].Kind)
	})
}

// Sum adds the amounts of entries, optionally restricted to the given categories.
func Sum(entries []Entry, categories ...Category) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		if len(categories) > 0 && !containsCategory(categories, e.Kind.Category) {
			continue
		}
		total = total.Add(e.Amount)
	}
	return total
}

func containsCategory(list []Category, c Category) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}
