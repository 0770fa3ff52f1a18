package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Snapshot is the per-turn rollup of a club's cash position.
type Snapshot struct {
	ClubID     uuid.UUID       `json:"club_id"`
	SeasonID   uuid.UUID       `json:"season_id"`
	TurnID     uuid.UUID       `json:"turn_id"`
	MonthIndex int             `json:"month_index"`
	Opening    decimal.Decimal `json:"opening_balance"`
	Income     decimal.Decimal `json:"income_total"`
	Expense    decimal.Decimal `json:"expense_total"`
	Closing    decimal.Decimal `json:"closing_balance"`
}

// Totals splits entries into the sum of positive and the sum of negative amounts.
func Totals(entries []Entry) (income, expense decimal.Decimal) {
	income, expense = decimal.Zero, decimal.Zero
	for _, e := range entries {
		if e.Amount.IsPositive() {
			income = income.Add(e.Amount)
		} else {
			expense = expense.Add(e.Amount)
		}
	}
	return income, expense
}

func NewSnapshot(clubID, seasonID, turnID uuid.UUID, month int, opening decimal.Decimal, entries []Entry) Snapshot {
	income, expense := Totals(entries)
	return Snapshot{
		ClubID:     clubID,
		SeasonID:   seasonID,
		TurnID:     turnID,
		MonthIndex: month,
		Opening:    opening,
		Income:     income,
		Expense:    expense,
		Closing:    opening.Add(income).Add(expense),
	}
}

func (s Snapshot) Balanced() bool {
	return s.Closing.Equal(s.Opening.Add(s.Income).Add(s.Expense))
}
