package ledger

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestParseCategoryRoundTrip(t *testing.T) {
	for c := CategoryDistribution; c < categoryCount; c++ {
		got, err := ParseCategory(c.String())
		if err != nil {
			t.Fatalf("parse %s: %v", c, err)
		}
		if got != c {
			t.Fatalf("got %s want %s", got, c)
		}
	}
	if _, err := ParseCategory("ticket_rev_123"); err == nil {
		t.Fatalf("expected unknown category to fail")
	}
}

func TestKindValidate(t *testing.T) {
	fixture := uuid.New()
	tests := []struct {
		kind Kind
		ok   bool
	}{
		{kind: Of(CategoryDistribution), ok: true},
		{kind: ForFixture(CategoryTicketRevenue, fixture), ok: true},
		{kind: Of(CategoryTicketRevenue), ok: false},
		{kind: ForFixture(CategoryTax, fixture), ok: false},
		{kind: Kind{}, ok: false},
	}
	for _, tc := range tests {
		err := tc.kind.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.kind, err)
		}
		if !tc.ok && err == nil {
			t.Fatalf("%s: expected error", tc.kind)
		}
	}
}

func TestKindJSON(t *testing.T) {
	k := ForFixture(CategoryMerchandiseCost, uuid.MustParse("7f1d5a52-0d5d-4c37-a1a6-2d0c0c8f6e11"))
	raw, err := json.Marshal(k)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"category":"merchandise_cost","correlation_id":"7f1d5a52-0d5d-4c37-a1a6-2d0c0c8f6e11"}`
	if string(raw) != want {
		t.Fatalf("got %s want %s", raw, want)
	}
	var back Kind
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != k {
		t.Fatalf("got %v want %v", back, k)
	}
}

func TestBookSkipsExistingKinds(t *testing.T) {
	club, turn := uuid.New(), uuid.New()
	fixture := uuid.New()
	existing := []Entry{{
		ClubID: club,
		TurnID: turn,
		Kind:   Of(CategoryDistribution),
		Amount: decimal.NewFromInt(50_000_000),
	}}
	book := NewBook(club, turn, existing, time.Unix(0, 0))

	created, err := book.Post(Income(CategoryDistribution, decimal.NewFromInt(50_000_000), nil))
	if err != nil || created {
		t.Fatalf("expected duplicate kind to be skipped, created=%v err=%v", created, err)
	}
	created, err = book.Post(Posting{Kind: ForFixture(CategoryTicketRevenue, fixture), Amount: decimal.NewFromInt(1000)})
	if err != nil || !created {
		t.Fatalf("expected ticket entry, created=%v err=%v", created, err)
	}
	created, _ = book.Post(Posting{Kind: ForFixture(CategoryTicketRevenue, fixture), Amount: decimal.NewFromInt(1000)})
	if created {
		t.Fatalf("second post of the same fixture kind must be skipped")
	}
	created, _ = book.Post(Expense(CategoryAdminCost, decimal.RequireFromString("0.001"), nil))
	if created {
		t.Fatalf("zero amount after rounding must be skipped")
	}
	if len(book.Pending()) != 1 {
		t.Fatalf("pending=%d want 1", len(book.Pending()))
	}
	if len(book.All()) != 2 {
		t.Fatalf("all=%d want 2", len(book.All()))
	}
}

func TestExpenseIsNegative(t *testing.T) {
	p := Expense(CategoryStaffCost, decimal.NewFromInt(100), nil)
	if !p.Amount.Equal(decimal.NewFromInt(-100)) {
		t.Fatalf("got %s", p.Amount)
	}
	p = Expense(CategoryStaffCost, decimal.NewFromInt(-100), nil)
	if !p.Amount.Equal(decimal.NewFromInt(-100)) {
		t.Fatalf("expense sign must not flip twice, got %s", p.Amount)
	}
}

func TestSnapshotBalances(t *testing.T) {
	entries := []Entry{
		{Kind: Of(CategoryDistribution), Amount: decimal.NewFromInt(50_000_000)},
		{Kind: Of(CategoryStaffCost), Amount: decimal.RequireFromString("-1666666.67")},
		{Kind: Of(CategoryAdminCost), Amount: decimal.NewFromInt(-250_000)},
	}
	opening := decimal.RequireFromString("1000.50")
	s := NewSnapshot(uuid.New(), uuid.New(), uuid.New(), 1, opening, entries)
	if !s.Balanced() {
		t.Fatalf("snapshot not balanced: %+v", s)
	}
	if !s.Income.Equal(decimal.NewFromInt(50_000_000)) {
		t.Fatalf("income=%s", s.Income)
	}
	if !s.Expense.Equal(decimal.RequireFromString("-1916666.67")) {
		t.Fatalf("expense=%s", s.Expense)
	}
	if !s.Closing.Equal(decimal.RequireFromString("48084333.83")) {
		t.Fatalf("closing=%s", s.Closing)
	}
}

func TestQuantizeUsesBankersRounding(t *testing.T) {
	tests := []struct{ in, want string }{
		{"1.005", "1"},
		{"1.015", "1.02"},
		{"-2.345", "-2.34"},
	}
	for _, tc := range tests {
		got := Quantize(decimal.RequireFromString(tc.in))
		if !got.Equal(decimal.RequireFromString(tc.want)) {
			t.Fatalf("quantize %s got %s want %s", tc.in, got, tc.want)
		}
	}
}
