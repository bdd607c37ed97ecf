package session

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"price-catalog-client/catalog"
	"price-catalog-client/domain"
)

// MockCatalog is a testify mock implementation of Catalog for straightline
// transition tests.
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) Search(ctx context.Context, params catalog.SearchParams) ([]domain.CatalogItem, error) {
	args := m.Called(ctx, params)
	var items []domain.CatalogItem
	if arg0 := args.Get(0); arg0 != nil {
		items = arg0.([]domain.CatalogItem)
	}
	return items, args.Error(1)
}

func (m *MockCatalog) FetchDetail(ctx context.Context, params catalog.DetailParams) (*domain.ItemDetail, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ItemDetail), args.Error(1)
}

func (m *MockCatalog) FetchHistory(ctx context.Context, params catalog.HistoryParams) (domain.PriceHistory, error) {
	args := m.Called(ctx, params)
	var history domain.PriceHistory
	if arg0 := args.Get(0); arg0 != nil {
		history = arg0.(domain.PriceHistory)
	}
	return history, args.Error(1)
}

// gatedCatalog is a hand-rolled fake whose responses block on per-key gates,
// so tests can force out-of-order completion deterministically.
type gatedCatalog struct {
	mu sync.Mutex

	searchGates   map[string]chan struct{} // keyed by query
	searchResults map[string][]domain.CatalogItem
	searchErrs    map[string]error

	detailGates   map[string]chan struct{} // keyed by barcode
	detailResults map[string]*domain.ItemDetail
	detailErrs    map[string]error
	detailCalls   map[string]int

	historyGates   map[string]chan struct{}
	historyResults map[string]domain.PriceHistory
	historyErrs    map[string]error
}

func newGatedCatalog() *gatedCatalog {
	return &gatedCatalog{
		searchGates:    make(map[string]chan struct{}),
		searchResults:  make(map[string][]domain.CatalogItem),
		searchErrs:     make(map[string]error),
		detailGates:    make(map[string]chan struct{}),
		detailResults:  make(map[string]*domain.ItemDetail),
		detailErrs:     make(map[string]error),
		detailCalls:    make(map[string]int),
		historyGates:   make(map[string]chan struct{}),
		historyResults: make(map[string]domain.PriceHistory),
		historyErrs:    make(map[string]error),
	}
}

func (f *gatedCatalog) gateSearch(query string) chan struct{} {
	gate := make(chan struct{})
	f.mu.Lock()
	f.searchGates[query] = gate
	f.mu.Unlock()
	return gate
}

func (f *gatedCatalog) gateDetail(barcode string) chan struct{} {
	gate := make(chan struct{})
	f.mu.Lock()
	f.detailGates[barcode] = gate
	f.mu.Unlock()
	return gate
}

func (f *gatedCatalog) gateHistory(barcode string) chan struct{} {
	gate := make(chan struct{})
	f.mu.Lock()
	f.historyGates[barcode] = gate
	f.mu.Unlock()
	return gate
}

func (f *gatedCatalog) Search(ctx context.Context, params catalog.SearchParams) ([]domain.CatalogItem, error) {
	f.mu.Lock()
	gate := f.searchGates[params.Query]
	items, err := f.searchResults[params.Query], f.searchErrs[params.Query]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return items, err
}

func (f *gatedCatalog) FetchDetail(ctx context.Context, params catalog.DetailParams) (*domain.ItemDetail, error) {
	f.mu.Lock()
	gate := f.detailGates[params.Barcode]
	detail, err := f.detailResults[params.Barcode], f.detailErrs[params.Barcode]
	f.detailCalls[params.Barcode]++
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return detail, err
}

func (f *gatedCatalog) FetchHistory(ctx context.Context, params catalog.HistoryParams) (domain.PriceHistory, error) {
	f.mu.Lock()
	gate := f.historyGates[params.Barcode]
	history, err := f.historyResults[params.Barcode], f.historyErrs[params.Barcode]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	return history, err
}

func (f *gatedCatalog) detailCallCount(barcode string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detailCalls[barcode]
}

// ptrTo returns a pointer to v, for optional fields in fixtures.
func ptrTo[T any](v T) *T {
	return &v
}
