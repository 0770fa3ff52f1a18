package econ

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"pitchside/internal/ledger"
)

func Distribution(p RevenueParams, month int) (ledger.Posting, bool) {
	if month != p.DistributionMonth || p.Distribution <= 0 {
		return ledger.Posting{}, false
	}
	return ledger.Income(ledger.CategoryDistribution, decimal.NewFromInt(p.Distribution), nil), true
}

// Matchday books the home club's gate, merchandise and operating cost for
// one fixture.
func Matchday(p RevenueParams, fixtureID uuid.UUID, attendance int, ticketPrice decimal.Decimal) []ledger.Posting {
	people := decimal.NewFromInt(int64(attendance))
	meta := map[string]any{"attendance": attendance}
	merch := people.Mul(decimal.NewFromInt(p.MerchPerPerson))
	return []ledger.Posting{
		{
			Kind:   ledger.ForFixture(ledger.CategoryTicketRevenue, fixtureID),
			Amount: people.Mul(ticketPrice),
			Meta:   map[string]any{"attendance": attendance, "ticket_price": ticketPrice.String()},
		},
		{
			Kind:   ledger.ForFixture(ledger.CategoryMerchandiseRevenue, fixtureID),
			Amount: merch,
			Meta:   meta,
		},
		{
			Kind:   ledger.ForFixture(ledger.CategoryMerchandiseCost, fixtureID),
			Amount: merch.Mul(decimal.NewFromFloat(p.MerchCostRate)).Neg(),
			Meta:   map[string]any{"rate": p.MerchCostRate},
		},
		{
			Kind:   ledger.ForFixture(ledger.CategoryMatchOperationCost, fixtureID),
			Amount: decimal.NewFromInt(p.MatchOperation).Neg(),
		},
	}
}

// Prize pays the top finishers of the table as it stood before the prize month.
func Prize(p RevenueParams, month, rank int) (ledger.Posting, bool) {
	if month != p.PrizeMonth || rank < 1 || rank > len(p.Prizes) {
		return ledger.Posting{}, false
	}
	return ledger.Income(ledger.CategoryPrize, decimal.NewFromInt(p.Prizes[rank-1]), map[string]any{"rank": rank}), true
}

// Tax charges on last season's profit, when there was one.
func Tax(p RevenueParams, month int, priorProfit decimal.Decimal) (ledger.Posting, bool) {
	if month != p.TaxMonth || !priorProfit.IsPositive() {
		return ledger.Posting{}, false
	}
	amount := priorProfit.Mul(decimal.NewFromFloat(p.TaxRate))
	return ledger.Expense(ledger.CategoryTax, amount, map[string]any{
		"prior_profit": priorProfit.String(),
		"rate":         p.TaxRate,
	}), true
}

func SponsorBase(amount decimal.Decimal) (ledger.Posting, bool) {
	if !amount.IsPositive() {
		return ledger.Posting{}, false
	}
	return ledger.Income(ledger.CategorySponsorBase, amount, nil), true
}

func AdminCost(amount decimal.Decimal) (ledger.Posting, bool) {
	if !amount.IsPositive() {
		return ledger.Posting{}, false
	}
	return ledger.Expense(ledger.CategoryAdminCost, amount, nil), true
}

// Spend is the money side of a club decision.
type Spend struct {
	Sales         decimal.Decimal
	Promo         decimal.Decimal
	Hometown      decimal.Decimal
	NextHomePromo decimal.Decimal
}

func DecisionExpenses(s Spend) []ledger.Posting {
	var out []ledger.Posting
	add := func(c ledger.Category, v decimal.Decimal) {
		if v.IsPositive() {
			out = append(out, ledger.Expense(c, v, nil))
		}
	}
	add(ledger.CategorySalesExpense, s.Sales)
	add(ledger.CategoryPromoExpense, s.Promo)
	add(ledger.CategoryHometownExpense, s.Hometown)
	add(ledger.CategoryNextHomePromoExpense, s.NextHomePromo)
	return out
}
