package econ

import (
	"math"

	"github.com/shopspring/decimal"
)

func NewSales(p SalesParams) SalesState {
	s := SalesState{}
	for i := range s.Allocation {
		s.Allocation[i] = p.DefaultRhoNew
	}
	return s
}

// Quarter maps a month index to its quarter, 0..3.
func Quarter(month int) int {
	if month < 1 {
		return 0
	}
	return min((month-1)/3, 3)
}

// IsQuarterStart reports whether the sales allocation may be changed this month.
func IsQuarterStart(month int) bool {
	return month == 1 || month == 4 || month == 7 || month == 10
}

func (s SalesState) RhoNew(month int) float64 {
	return s.Allocation[Quarter(month)]
}

func (s *SalesState) SetAllocation(month int, rho float64) {
	s.Allocation[Quarter(month)] = math.Min(math.Max(rho, 0), 1)
}

// StepSales folds this month's sales staff and spend into the retention and
// acquisition effort accumulators.
func StepSales(p SalesParams, s SalesState, month, salesStaff int, spend decimal.Decimal) SalesState {
	rho := s.RhoNew(month)
	staff := float64(salesStaff)
	money := math.Max(0, spend.InexactFloat64()) / 1e6

	eRet := p.StaffWeightRet*(1-rho)*staff + p.MoneyWeightRet*(1-rho)*money
	eNew := p.StaffWeightNew*rho*staff + p.MoneyWeightNew*rho*money

	s.CumRet = (1-p.LambdaRet)*s.CumRet + p.LambdaRet*eRet
	s.CumNew = (1-p.LambdaNew)*s.CumNew + p.LambdaNew*eNew
	return s
}
