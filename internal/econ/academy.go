package econ

import (
	"math"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pitchside/internal/ledger"
	"pitchside/internal/sim"
)

// AcademyMonth books a twelfth of the academy budget and adds it to the
// cumulative investment.
func AcademyMonth(s AcademyState) (AcademyState, ledger.Posting, bool) {
	monthly := ledger.Quantize(s.AnnualBudget.Div(twelve))
	if !monthly.IsPositive() {
		return s, ledger.Posting{}, false
	}
	s.Cumulative = s.Cumulative.Add(monthly)
	return s, ledger.Expense(ledger.CategoryAcademyCost, monthly, map[string]any{
		"cumulative": s.Cumulative.String(),
	}), true
}

// TransferProbability is the chance an academy graduate is sold this season.
func TransferProbability(p AcademyParams, cumulative decimal.Decimal) float64 {
	ratio := cumulative.Div(decimal.NewFromInt(p.ProbabilityScale)).InexactFloat64()
	return math.Min(p.ProbabilityCap, math.Max(0, ratio*p.ProbabilityRate))
}

// AcademyTransfer draws the season's transfer sale. Both the success draw and
// the fee come from the (club, season) key.
func AcademyTransfer(p AcademyParams, s AcademyState, clubID, seasonID uuid.UUID) (AcademyState, ledger.Posting, bool) {
	if s.TransferResolved {
		return s, ledger.Posting{}, false
	}
	s.TransferResolved = true
	prob := TransferProbability(p, s.Cumulative)
	r := sim.NewKey("academy", clubID, seasonID).Rand("transfer")
	if r.Float64() >= prob {
		return s, ledger.Posting{}, false
	}
	fee := p.TransferMin + r.Int64N(p.TransferMax-p.TransferMin+1)
	return s, ledger.Income(ledger.CategoryAcademyTransferFee, decimal.NewFromInt(fee), map[string]any{
		"probability": prob,
	}), true
}
