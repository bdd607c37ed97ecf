package catalog

import (
	"github.com/shopspring/decimal"

	"price-catalog-client/domain"
)

// Normalization maps raw wire rows into the stable domain shapes. Every
// mapping function is total over the documented nullable fields: a null
// numeric stays a nil pointer (never zero, which would corrupt currency
// display), and an absent reward string is fine when has_promo is false.

func normalizeItem(row searchRow) domain.CatalogItem {
	return domain.CatalogItem{
		Barcode:         row.Barcode,
		Name:            row.Name,
		Price:           derefPrice(row.Price),
		UnitPricePer100: row.UnitPricePer100,
		QtyUnit:         row.QtyUnit,
		HasPromo:        bool(row.HasPromo),
		RewardTypes:     row.RewardTypes,
	}
}

func normalizeItems(rows []searchRow) []domain.CatalogItem {
	items := make([]domain.CatalogItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, normalizeItem(row))
	}
	return items
}

func normalizeDetail(resp detailResponse) *domain.ItemDetail {
	detail := &domain.ItemDetail{}
	if resp.Product != nil {
		detail.Product = domain.Product{
			Barcode:  resp.Product.Barcode,
			Name:     resp.Product.Name,
			Brand:    resp.Product.Brand,
			Quantity: resp.Product.Quantity,
			QtyUnit:  resp.Product.QtyUnit,
		}
	}
	if resp.CurrentPrice != nil {
		detail.CurrentPrice = domain.CurrentPrice{
			Price:           derefPrice(resp.CurrentPrice.Price),
			UnitPricePer100: resp.CurrentPrice.UnitPricePer100,
			HasPromo:        bool(resp.CurrentPrice.HasPromo),
			RewardTypes:     resp.CurrentPrice.RewardTypes,
			LastSeenAt:      resp.CurrentPrice.LastSeenAt,
		}
	}
	return detail
}

func normalizeHistory(rows []observationRow) domain.PriceHistory {
	history := make(domain.PriceHistory, 0, len(rows))
	for _, row := range rows {
		history = append(history, domain.PricePoint{
			Date:            truncateToDate(row.ObservedAt),
			Price:           derefPrice(row.Price),
			UnitPricePer100: row.UnitPricePer100,
			HasPromo:        bool(row.HasPromo),
		})
	}
	return history
}

// truncateToDate derives a calendar day from an ISO-8601-like timestamp by
// taking its first 10 characters ("2024-05-01T10:00:00Z" -> "2024-05-01").
// Shorter or absent timestamps yield an empty date; the point is kept.
func truncateToDate(observedAt string) string {
	if len(observedAt) < 10 {
		return ""
	}
	return observedAt[:10]
}

func derefPrice(p *decimal.Decimal) decimal.Decimal {
	if p == nil {
		return decimal.Zero
	}
	return *p
}
