package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"price-catalog-client/catalog"
	"price-catalog-client/domain"
)

// SearchStatus is the state of the current search session.
type SearchStatus string

const (
	SearchIdle    SearchStatus = "idle"
	SearchLoading SearchStatus = "loading"
	SearchSuccess SearchStatus = "success"
	SearchError   SearchStatus = "error"
)

// SearchSession is a snapshot of the search state machine. Results always
// reflect the most recently completed search that was applied; a failed
// refresh keeps the previous result set so a transient blip does not blank
// the table.
type SearchSession struct {
	Query   string
	Status  SearchStatus
	Results []domain.CatalogItem
}

// SearchConfig holds the dependencies for a SearchController.
type SearchConfig struct {
	Catalog  Catalog
	StoreID  string
	Limit    int // defaults to 50
	Logger   *zap.Logger
	// OnChange is invoked with a snapshot after each applied transition.
	// Deliveries are serialized in application order and the callback must
	// not call back into the controller.
	OnChange func(SearchSession)
}

const defaultSearchLimit = 50

// SearchController owns the search session state machine. Each triggered
// search is tagged with a monotonically increasing sequence number; a
// completion is applied only if its sequence number is the highest yet
// observed to complete, so a slow superseded response can never overwrite
// the results of a later, faster one. State is mutated only by the
// controller itself.
type SearchController struct {
	catalog  Catalog
	storeID  string
	limit    int
	logger   *zap.Logger
	onChange func(SearchSession)

	// notifyMu serializes OnChange deliveries: it is held from the moment a
	// transition is applied until the callback returns, so consumers always
	// receive snapshots in application order. The state mutex stays free
	// while the callback runs.
	notifyMu sync.Mutex

	mu         sync.Mutex
	seq        uint64 // last issued sequence number
	appliedSeq uint64 // highest sequence number applied or discarded
	session    SearchSession
}

// NewSearchController creates a SearchController in the idle state.
func NewSearchController(cfg SearchConfig) (*SearchController, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("session: SearchConfig.Catalog is required")
	}
	limit := cfg.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchController{
		catalog:  cfg.Catalog,
		storeID:  cfg.StoreID,
		limit:    limit,
		logger:   logger,
		onChange: cfg.OnChange,
		session:  SearchSession{Status: SearchIdle},
	}, nil
}

// Search triggers a new catalog search. It moves the session to loading
// synchronously, issues the remote query asynchronously, and returns a
// channel that is closed once the completion has been applied or discarded.
// Triggering again while a search is in flight is permitted; the in-flight
// request is not aborted, only its effect suppressed if it loses the race.
func (c *SearchController) Search(ctx context.Context, query string) <-chan struct{} {
	c.notifyMu.Lock()
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.session.Query = query
	c.session.Status = SearchLoading
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
	c.notifyMu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		items, err := c.catalog.Search(ctx, catalog.SearchParams{
			Query:   query,
			Limit:   c.limit,
			StoreID: c.storeID,
		})
		c.complete(seq, items, err)
	}()
	return done
}

// complete applies a search completion under the sequence-number guard.
func (c *SearchController) complete(seq uint64, items []domain.CatalogItem, err error) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.mu.Lock()
	if seq <= c.appliedSeq {
		c.mu.Unlock()
		c.logger.Debug("discarding stale search completion",
			zap.Uint64("seq", seq))
		return
	}
	c.appliedSeq = seq

	if err != nil {
		// Previous results stay untouched on failure.
		c.session.Status = SearchError
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.logger.Warn("search failed", zap.Uint64("seq", seq), zap.Error(err))
		c.notify(snap)
		return
	}

	c.session.Results = items
	c.session.Status = SearchSuccess
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// Session returns a snapshot of the current search session.
func (c *SearchController) Session() SearchSession {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *SearchController) snapshotLocked() SearchSession {
	snap := c.session
	if c.session.Results != nil {
		snap.Results = make([]domain.CatalogItem, len(c.session.Results))
		copy(snap.Results, c.session.Results)
	}
	return snap
}

func (c *SearchController) notify(snap SearchSession) {
	if c.onChange != nil {
		c.onChange(snap)
	}
}
