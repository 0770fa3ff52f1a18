package econ

import (
	"github.com/shopspring/decimal"

	"pitchside/internal/ledger"
)

var twelve = decimal.NewFromInt(12)

// MonthlyReinforcement is the reinforcement spend for month: a twelfth of the
// annual budget plus an even share of any additional budget over the
// amortization window.
func MonthlyReinforcement(p ReinforcementParams, s ReinforcementState, month int) decimal.Decimal {
	cost := s.AnnualBudget.Div(twelve)
	if s.AdditionalBudget.IsPositive() && month >= p.AdditionalFrom && month <= p.AdditionalTo {
		parts := decimal.NewFromInt(int64(p.AdditionalTo - p.AdditionalFrom + 1))
		cost = cost.Add(s.AdditionalBudget.Div(parts))
	}
	return cost
}

// ReinforcementPostings books the month's reinforcement cost and the team
// operation cost derived from it.
func ReinforcementPostings(p ReinforcementParams, s ReinforcementState, month int) []ledger.Posting {
	cost := MonthlyReinforcement(p, s, month)
	if !cost.IsPositive() {
		return nil
	}
	op := cost.Mul(decimal.NewFromFloat(p.TeamOperationPct))
	return []ledger.Posting{
		ledger.Expense(ledger.CategoryReinforcementCost, cost, map[string]any{
			"annual_budget":     s.AnnualBudget.String(),
			"additional_budget": s.AdditionalBudget.String(),
			"month":             month,
		}),
		ledger.Expense(ledger.CategoryTeamOperationCost, op, map[string]any{
			"rate": p.TeamOperationPct,
		}),
	}
}

// PlanNextSeason records the next-season budget submitted in month 11 or 12.
func (s *ReinforcementState) PlanNextSeason(month int, amount decimal.Decimal) {
	if month < 11 || month > 12 {
		return
	}
	s.NextSeasonParts[month-11] = amount
}

func (s ReinforcementState) NextSeasonBudget() decimal.Decimal {
	return s.NextSeasonParts[0].Add(s.NextSeasonParts[1])
}

// SeasonBudget is the reinforcement figure that drives team power.
func (s ReinforcementState) SeasonBudget() decimal.Decimal {
	return s.AnnualBudget.Add(s.AdditionalBudget)
}
