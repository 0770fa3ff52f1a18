package decision

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"pitchside/internal/econ"
)

var ErrInvalid = errors.New("invalid decision")

// ValidationError names the offending field. It unwraps to ErrInvalid.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

// Payload is what a club submits for one month. Absent money fields mean zero.
type Payload struct {
	SalesExpense            decimal.Decimal `json:"sales_expense"`
	PromoExpense            decimal.Decimal `json:"promo_expense"`
	HometownExpense         decimal.Decimal `json:"hometown_expense"`
	NextHomePromo           decimal.Decimal `json:"next_home_promo"`
	AdditionalReinforcement decimal.Decimal `json:"additional_reinforcement"`
	ReinforcementBudget     decimal.Decimal `json:"reinforcement_budget"`
	AcademyBudget           decimal.Decimal `json:"academy_budget"`
	SalesAllocationNew      *float64        `json:"sales_allocation_new,omitempty"`
	StaffPlan               map[string]int  `json:"staff_plan,omitempty"`
}

// Context is what the validator needs to know about the club and month.
type Context struct {
	Month                   int
	HasHomeFixtureNextMonth bool
	IsBankrupt              bool
}

const (
	additionalReinforcementMonth = 5
	staffPlanMonth               = 10
	academyBudgetMonth           = 12
	lastMatchMonth               = 10
)

func Validate(p Payload, c Context) error {
	var errs []error
	fail := func(field, reason string) {
		errs = append(errs, &ValidationError{Field: field, Reason: reason})
	}

	money := []struct {
		field string
		v     decimal.Decimal
	}{
		{"sales_expense", p.SalesExpense},
		{"promo_expense", p.PromoExpense},
		{"hometown_expense", p.HometownExpense},
		{"next_home_promo", p.NextHomePromo},
		{"additional_reinforcement", p.AdditionalReinforcement},
		{"reinforcement_budget", p.ReinforcementBudget},
		{"academy_budget", p.AcademyBudget},
	}
	for _, m := range money {
		if m.v.IsNegative() {
			fail(m.field, "must not be negative")
		}
	}

	if c.Month < 1 || c.Month > 12 {
		fail("month", fmt.Sprintf("month %d out of range", c.Month))
		return errors.Join(errs...)
	}

	if p.NextHomePromo.IsPositive() {
		if c.Month+1 > lastMatchMonth {
			fail("next_home_promo", "no match month follows")
		} else if !c.HasHomeFixtureNextMonth {
			fail("next_home_promo", "no home fixture next month")
		}
	}
	if p.AdditionalReinforcement.IsPositive() {
		if c.Month != additionalReinforcementMonth {
			fail("additional_reinforcement", "only accepted in December")
		}
		if c.IsBankrupt {
			fail("additional_reinforcement", "club is bankrupt")
		}
	}
	if p.ReinforcementBudget.IsPositive() && c.Month != 11 && c.Month != 12 {
		fail("reinforcement_budget", "only accepted in June and July")
	}
	if p.AcademyBudget.IsPositive() && c.Month != academyBudgetMonth {
		fail("academy_budget", "only accepted in July")
	}
	if p.SalesAllocationNew != nil {
		if !econ.IsQuarterStart(c.Month) {
			fail("sales_allocation_new", "only accepted at the start of a quarter")
		}
		if v := *p.SalesAllocationNew; v < 0 || v > 1 {
			fail("sales_allocation_new", "must be within [0,1]")
		}
	}
	if len(p.StaffPlan) > 0 {
		if c.Month != staffPlanMonth {
			fail("staff_plan", "only accepted in May")
		}
		roles := make([]string, 0, len(p.StaffPlan))
		for r := range p.StaffPlan {
			roles = append(roles, r)
		}
		sort.Strings(roles)
		for _, r := range roles {
			if _, err := econ.ParseRole(r); err != nil {
				fail("staff_plan", err.Error())
				continue
			}
			if p.StaffPlan[r] < 1 {
				fail("staff_plan", fmt.Sprintf("%s count must be at least 1", r))
			}
		}
	}
	return errors.Join(errs...)
}

// Plan converts the staff plan into typed roles. Call after Validate.
func (p Payload) Plan() map[econ.Role]int {
	if len(p.StaffPlan) == 0 {
		return nil
	}
	out := make(map[econ.Role]int, len(p.StaffPlan))
	for r, n := range p.StaffPlan {
		out[econ.Role(r)] = n
	}
	return out
}

func (p Payload) Spend() econ.Spend {
	return econ.Spend{
		Sales:         p.SalesExpense,
		Promo:         p.PromoExpense,
		Hometown:      p.HometownExpense,
		NextHomePromo: p.NextHomePromo,
	}
}
