package domain

import (
	"github.com/shopspring/decimal"
)

// CatalogItem represents one product's price/listing snapshot at a store,
// as shown in a search-result row.
// The json tags correspond to the fields expected by presentation consumers.
type CatalogItem struct {
	Barcode         string           `json:"barcode"`
	Name            string           `json:"name"`
	Price           decimal.Decimal  `json:"price"`
	UnitPricePer100 *decimal.Decimal `json:"unit_price_per100,omitempty"` // Pointer for nullable fields, omitempty to exclude if nil
	QtyUnit         *string          `json:"qty_unit,omitempty"`
	HasPromo        bool             `json:"has_promo"`
	RewardTypes     *string          `json:"reward_types,omitempty"` // Only meaningful when HasPromo is true
}

// Product is the static part of a catalog entry, independent of any store's
// current pricing.
type Product struct {
	Barcode  string  `json:"barcode"`
	Name     string  `json:"name"`
	Brand    *string `json:"brand,omitempty"`
	Quantity *string `json:"quantity,omitempty"`
	QtyUnit  *string `json:"qty_unit,omitempty"`
}

// CurrentPrice is a store's latest observed price for a product.
type CurrentPrice struct {
	Price           decimal.Decimal  `json:"price"`
	UnitPricePer100 *decimal.Decimal `json:"unit_price_per100,omitempty"`
	HasPromo        bool             `json:"has_promo"`
	RewardTypes     *string          `json:"reward_types,omitempty"`
	LastSeenAt      string           `json:"last_seen_at"` // Raw timestamp string as returned by the server
}

// ItemDetail is the full view of a selected item: the product record plus
// its current price at the queried store.
type ItemDetail struct {
	Product      Product      `json:"product"`
	CurrentPrice CurrentPrice `json:"current_price"`
}

// PricePoint is one day's observed price. Date is a "YYYY-MM-DD" calendar
// day derived from the observation timestamp; it is empty when the server
// timestamp was absent or too short to truncate, in which case the point is
// still kept and the presentation layer renders it without an axis label.
type PricePoint struct {
	Date            string           `json:"date,omitempty"`
	Price           decimal.Decimal  `json:"price"`
	UnitPricePer100 *decimal.Decimal `json:"unit_price_per100,omitempty"`
	HasPromo        bool             `json:"has_promo"`
}

// PriceHistory is an ordered sequence of PricePoint in server order.
// The backend returns observations in ascending observed_at order; no
// client-side re-sort is applied.
type PriceHistory []PricePoint
