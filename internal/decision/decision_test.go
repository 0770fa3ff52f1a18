package decision

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func ptr(v float64) *float64 { return &v }

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		payload Payload
		ctx     Context
		field   string
	}{
		{"empty ok", Payload{}, Context{Month: 3}, ""},
		{"negative spend", Payload{SalesExpense: decimal.NewFromInt(-1)}, Context{Month: 3}, "sales_expense"},
		{"promo without home game", Payload{NextHomePromo: decimal.NewFromInt(1)}, Context{Month: 3}, "next_home_promo"},
		{"promo with home game", Payload{NextHomePromo: decimal.NewFromInt(1)}, Context{Month: 3, HasHomeFixtureNextMonth: true}, ""},
		{"promo after last match month", Payload{NextHomePromo: decimal.NewFromInt(1)}, Context{Month: 10, HasHomeFixtureNextMonth: true}, "next_home_promo"},
		{"additional outside december", Payload{AdditionalReinforcement: decimal.NewFromInt(1)}, Context{Month: 6}, "additional_reinforcement"},
		{"additional while bankrupt", Payload{AdditionalReinforcement: decimal.NewFromInt(1)}, Context{Month: 5, IsBankrupt: true}, "additional_reinforcement"},
		{"additional in december", Payload{AdditionalReinforcement: decimal.NewFromInt(1)}, Context{Month: 5}, ""},
		{"budget too early", Payload{ReinforcementBudget: decimal.NewFromInt(1)}, Context{Month: 10}, "reinforcement_budget"},
		{"budget in june", Payload{ReinforcementBudget: decimal.NewFromInt(1)}, Context{Month: 11}, ""},
		{"academy outside july", Payload{AcademyBudget: decimal.NewFromInt(1)}, Context{Month: 11}, "academy_budget"},
		{"allocation mid quarter", Payload{SalesAllocationNew: ptr(0.4)}, Context{Month: 2}, "sales_allocation_new"},
		{"allocation out of range", Payload{SalesAllocationNew: ptr(1.4)}, Context{Month: 4}, "sales_allocation_new"},
		{"allocation at quarter start", Payload{SalesAllocationNew: ptr(0.4)}, Context{Month: 7}, ""},
		{"staff plan wrong month", Payload{StaffPlan: map[string]int{"coach": 2}}, Context{Month: 9}, "staff_plan"},
		{"staff plan unknown role", Payload{StaffPlan: map[string]int{"physio": 2}}, Context{Month: 10}, "staff_plan"},
		{"staff plan zero", Payload{StaffPlan: map[string]int{"coach": 0}}, Context{Month: 10}, "staff_plan"},
		{"staff plan ok", Payload{StaffPlan: map[string]int{"coach": 2, "sales": 3}}, Context{Month: 10}, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.payload, tc.ctx)
			if tc.field == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("expected ErrInvalid, got %v", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tc.field {
				t.Fatalf("expected field %s, got %v", tc.field, err)
			}
		})
	}
}

func TestPayloadJSON(t *testing.T) {
	var p Payload
	raw := `{"sales_expense":"1500000","promo_expense":2000000,"staff_plan":{"coach":2}}`
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !p.SalesExpense.Equal(decimal.NewFromInt(1_500_000)) || !p.PromoExpense.Equal(decimal.NewFromInt(2_000_000)) {
		t.Fatalf("money fields wrong: %+v", p)
	}
	if p.Plan()["coach"] != 2 {
		t.Fatalf("staff plan wrong: %+v", p.Plan())
	}
	if got := p.Spend(); !got.Sales.Equal(p.SalesExpense) || !got.NextHomePromo.IsZero() {
		t.Fatalf("spend wrong: %+v", got)
	}
}
