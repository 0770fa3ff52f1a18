package econ

import (
	"fmt"

	"github.com/shopspring/decimal"

	"pitchside/internal/ledger"
)

type Role string

const (
	RoleDirector Role = "director"
	RoleCoach    Role = "coach"
	RoleScout    Role = "scout"
	RoleSales    Role = "sales"
)

var Roles = []Role{RoleDirector, RoleCoach, RoleScout, RoleSales}

func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown staff role %q", s)
}

func NewStaff(p StaffParams) StaffState {
	counts := make(map[Role]int, len(Roles))
	for _, r := range Roles {
		counts[r] = p.InitialCount
	}
	return StaffState{Counts: counts}
}

// ApplyPendingStaff makes last season's plan effective. It runs in month 1.
func ApplyPendingStaff(s StaffState) StaffState {
	if len(s.NextCounts) == 0 {
		return s
	}
	counts := copyCounts(s.Counts)
	if counts == nil {
		counts = make(map[Role]int, len(s.NextCounts))
	}
	for r, n := range s.NextCounts {
		counts[r] = n
	}
	return StaffState{Counts: counts}
}

func (s StaffState) Count(r Role, fallback int) int {
	if n, ok := s.Counts[r]; ok {
		return n
	}
	return fallback
}

func (s StaffState) Headcount() int {
	total := 0
	for _, n := range s.Counts {
		total += n
	}
	return total
}

func StaffCost(p StaffParams, s StaffState) (ledger.Posting, bool) {
	head := s.Headcount()
	if head <= 0 {
		return ledger.Posting{}, false
	}
	monthly := decimal.NewFromInt(p.AnnualSalary).Mul(decimal.NewFromInt(int64(head))).Div(twelve)
	return ledger.Expense(ledger.CategoryStaffCost, monthly, map[string]any{"headcount": head}), true
}

// PlanStaff stores next season's headcount plan and prices severance for the
// roles it reduces. The plan only takes effect in month 1.
func PlanStaff(p StaffParams, s StaffState, plan map[Role]int) (StaffState, ledger.Posting, bool) {
	next := copyCounts(s.Counts)
	if next == nil {
		next = make(map[Role]int, len(plan))
	}
	for r, n := range plan {
		next[r] = n
	}
	salary := decimal.NewFromInt(p.AnnualSalary)
	factor := decimal.NewFromFloat(p.SeveranceFactor)
	total := decimal.Zero
	detail := map[string]any{}
	for _, r := range Roles {
		diff := s.Count(r, 0) - next[r]
		if diff <= 0 {
			continue
		}
		amount := salary.Mul(decimal.NewFromInt(int64(diff))).Mul(factor)
		detail[string(r)] = map[string]any{"released": diff, "amount": amount.String()}
		total = total.Add(amount)
	}
	out := StaffState{Counts: copyCounts(s.Counts), NextCounts: next}
	if total.IsZero() {
		return out, ledger.Posting{}, false
	}
	return out, ledger.Expense(ledger.CategoryStaffSeverance, total, map[string]any{"roles": detail}), true
}
