// Package format holds the pure display-formatting helpers consumed by the
// presentation layer. Nothing here performs I/O or holds state; the core
// only ever hands these functions numeric decimals and raw strings.
package format

import (
	"github.com/shopspring/decimal"
)

const currencySymbol = "₪"

// Price renders a price in shekels with two decimal places, e.g. "₪29.90".
func Price(p decimal.Decimal) string {
	return currencySymbol + p.StringFixed(2)
}

// UnitPricePer100 renders a nullable per-100-unit price, or "" when the
// backend had no unit price for the item.
func UnitPricePer100(p *decimal.Decimal) string {
	if p == nil {
		return ""
	}
	return Price(*p) + " per 100"
}

// PromoLabel renders the promotion badge text for an item. Items without a
// promotion get no label; promoted items without a reward description get a
// generic one.
func PromoLabel(hasPromo bool, rewardTypes *string) string {
	if !hasPromo {
		return ""
	}
	if rewardTypes == nil || *rewardTypes == "" {
		return "On promotion"
	}
	return *rewardTypes
}

// DateLabel renders a price point's x-axis label. Points whose observation
// timestamp could not be truncated to a date carry an empty Date and get no
// label.
func DateLabel(date string) string {
	if len(date) != 10 {
		return ""
	}
	return date
}
