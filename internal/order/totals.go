package order

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every price on the menu.
const CurrencySymbol = "$"

type Totals struct {
	Items int             `json:"items"`
	Price decimal.Decimal `json:"price"`
}

// Display formats the price the way the page shows it, e.g. "$25.50".
func (t Totals) Display() string {
	return CurrencySymbol + t.Price.StringFixed(2)
}

// ParsePrice reads a menu price such as "$12.99". Anything other than a
// plain unsigned decimal counts as zero.
func ParsePrice(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimPrefix(s, CurrencySymbol))
	if strings.ContainsAny(s, "+-eE") {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func ComputeTotals(cart []CartEntry) Totals {
	t := Totals{Price: decimal.Zero}
	for _, e := range cart {
		t.Items += e.Quantity
		t.Price = t.Price.Add(ParsePrice(e.Price).Mul(decimal.NewFromInt(int64(e.Quantity))))
	}
	return t
}
