package session

import (
	"context"

	"price-catalog-client/catalog"
	"price-catalog-client/domain"
)

// Catalog defines the remote operations the controllers need. *catalog.Client
// satisfies it; tests substitute mocks or gated fakes.
type Catalog interface {
	Search(ctx context.Context, params catalog.SearchParams) ([]domain.CatalogItem, error)
	FetchDetail(ctx context.Context, params catalog.DetailParams) (*domain.ItemDetail, error)
	FetchHistory(ctx context.Context, params catalog.HistoryParams) (domain.PriceHistory, error)
}
