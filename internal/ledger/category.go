package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Category is the closed set of financial entry types a club can book.
type Category uint8

const (
	CategoryUnknown Category = iota
	CategoryDistribution
	CategoryTicketRevenue
	CategoryMerchandiseRevenue
	CategoryMerchandiseCost
	CategoryMatchOperationCost
	CategoryPrize
	CategoryTax
	CategorySponsorRevenue
	CategorySponsorBase
	CategoryAdminCost
	CategoryReinforcementCost
	CategoryTeamOperationCost
	CategoryStaffCost
	CategoryStaffSeverance
	CategoryAcademyCost
	CategoryAcademyTransferFee
	CategorySalesExpense
	CategoryPromoExpense
	CategoryHometownExpense
	CategoryNextHomePromoExpense

	categoryCount
)

var ErrUnknownCategory = errors.New("unknown ledger category")

var categoryNames = [categoryCount]string{
	CategoryUnknown:              "unknown",
	CategoryDistribution:         "distribution",
	CategoryTicketRevenue:        "ticket_revenue",
	CategoryMerchandiseRevenue:   "merchandise_revenue",
	CategoryMerchandiseCost:      "merchandise_cost",
	CategoryMatchOperationCost:   "match_operation_cost",
	CategoryPrize:                "prize",
	CategoryTax:                  "tax",
	CategorySponsorRevenue:       "sponsor_revenue",
	CategorySponsorBase:          "sponsor_base",
	CategoryAdminCost:            "admin_cost",
	CategoryReinforcementCost:    "reinforcement_cost",
	CategoryTeamOperationCost:    "team_operation_cost",
	CategoryStaffCost:            "staff_cost",
	CategoryStaffSeverance:       "staff_severance",
	CategoryAcademyCost:          "academy_cost",
	CategoryAcademyTransferFee:   "academy_transfer_fee",
	CategorySalesExpense:         "sales_expense",
	CategoryPromoExpense:         "promo_expense",
	CategoryHometownExpense:      "hometown_expense",
	CategoryNextHomePromoExpense: "next_home_promo_expense",
}

func (c Category) String() string {
	if c >= categoryCount {
		return fmt.Sprintf("category(%d)", uint8(c))
	}
	return categoryNames[c]
}

func ParseCategory(s string) (Category, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i := Category(1); i < categoryCount; i++ {
		if categoryNames[i] == s {
			return i, nil
		}
	}
	return CategoryUnknown, fmt.Errorf("%w: %q", ErrUnknownCategory, s)
}

// PerFixture reports whether entries of this category are booked once per
// home fixture rather than once per turn.
func (c Category) PerFixture() bool {
	switch c {
	case CategoryTicketRevenue, CategoryMerchandiseRevenue, CategoryMerchandiseCost, CategoryMatchOperationCost:
		return true
	default:
		return false
	}
}

func (c Category) MarshalText() ([]byte, error) {
	if c == CategoryUnknown || c >= categoryCount {
		return nil, fmt.Errorf("%w: %d", ErrUnknownCategory, uint8(c))
	}
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(b []byte) error {
	v, err := ParseCategory(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Kind identifies a ledger entry within one (club, turn). Correlation is the
// fixture for per-fixture categories and uuid.Nil otherwise.
type Kind struct {
	Category    Category  `json:"category"`
	Correlation uuid.UUID `json:"correlation_id"`
}

func Of(c Category) Kind {
	return Kind{Category: c}
}

func ForFixture(c Category, fixtureID uuid.UUID) Kind {
	return Kind{Category: c, Correlation: fixtureID}
}

func (k Kind) Validate() error {
	if k.Category == CategoryUnknown || k.Category >= categoryCount {
		return fmt.Errorf("%w: %d", ErrUnknownCategory, uint8(k.Category))
	}
	if k.Category.PerFixture() && k.Correlation == uuid.Nil {
		return fmt.Errorf("ledger kind %s requires a fixture correlation", k.Category)
	}
	if !k.Category.PerFixture() && k.Correlation != uuid.Nil {
		return fmt.Errorf("ledger kind %s does not take a correlation", k.Category)
	}
	return nil
}

func (k Kind) String() string {
	if k.Correlation == uuid.Nil {
		return k.Category.String()
	}
	return k.Category.String() + "/" + k.Correlation.String()
}

func (k Kind) less(o Kind) bool {
	if k.Category != o.Category {
		return k.Category < o.Category
	}
	return k.Correlation.String() < o.Correlation.String()
}
