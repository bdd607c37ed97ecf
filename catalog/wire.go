package catalog

import (
	"bytes"
	"fmt"

	"github.com/shopspring/decimal"
)

// Wire shapes for the catalog backend's JSON responses. Nullable columns
// come through as JSON null; all numeric fields are decoded as pointers so
// the normalizer can distinguish "absent" from zero.

// promoFlag decodes the backend's has_promo column, which arrives either as
// a JSON bool or as a 0/1 integer depending on how the row was stored.
type promoFlag bool

func (f *promoFlag) UnmarshalJSON(data []byte) error {
	switch {
	case bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("0")), bytes.Equal(data, []byte("false")):
		*f = false
	case bytes.Equal(data, []byte("true")):
		*f = true
	default:
		// Any non-zero number counts as set.
		var n float64
		if _, err := fmt.Sscanf(string(data), "%g", &n); err != nil {
			return fmt.Errorf("has_promo: unexpected value %s", data)
		}
		*f = n != 0
	}
	return nil
}

type searchResponse struct {
	Results []searchRow `json:"results"`
	Count   int         `json:"count"`
}

type searchRow struct {
	Barcode         string           `json:"barcode"`
	Name            string           `json:"name"`
	Price           *decimal.Decimal `json:"price"`
	UnitPricePer100 *decimal.Decimal `json:"unit_price_per100"`
	QtyUnit         *string          `json:"qty_unit"`
	HasPromo        promoFlag        `json:"has_promo"`
	RewardTypes     *string          `json:"reward_types"`
}

type detailResponse struct {
	Product      *productRow `json:"product"`
	CurrentPrice *priceRow   `json:"current_price"`
}

type productRow struct {
	Barcode  string  `json:"barcode"`
	Name     string  `json:"name"`
	Brand    *string `json:"brand"`
	Quantity *string `json:"quantity"`
	QtyUnit  *string `json:"qty_unit"`
}

type priceRow struct {
	Price           *decimal.Decimal `json:"price"`
	UnitPricePer100 *decimal.Decimal `json:"unit_price_per100"`
	HasPromo        promoFlag        `json:"has_promo"`
	RewardTypes     *string          `json:"reward_types"`
	LastSeenAt      string           `json:"last_seen_at"`
}

type historyResponse struct {
	History []observationRow `json:"history"`
	Count   int              `json:"count"`
}

type observationRow struct {
	ObservedAt      string           `json:"observed_at"`
	Price           *decimal.Decimal `json:"price"`
	UnitPricePer100 *decimal.Decimal `json:"unit_price_per100"`
	HasPromo        promoFlag        `json:"has_promo"`
}

type healthResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}
