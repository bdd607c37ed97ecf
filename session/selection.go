package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"price-catalog-client/catalog"
	"price-catalog-client/domain"
)

// SelectionStatus is the state of the selection/detail state machine.
type SelectionStatus string

const (
	SelectionNone      SelectionStatus = "none"
	SelectionSelecting SelectionStatus = "selecting"
	SelectionReady     SelectionStatus = "ready"
	SelectionError     SelectionStatus = "error"
)

// Selection is a snapshot of the currently inspected item. At most one
// selection is active; switching selections clears Detail and History before
// the new fetches resolve, so stale data never flashes in the drawer.
type Selection struct {
	Status  SelectionStatus
	Item    *domain.CatalogItem
	Detail  *domain.ItemDetail
	History domain.PriceHistory
}

// SelectionConfig holds the dependencies for a SelectionController.
type SelectionConfig struct {
	Catalog     Catalog
	StoreID     string
	HistoryDays int // defaults to 60
	Logger      *zap.Logger
	// OnChange is invoked with a snapshot after each applied transition.
	// Deliveries are serialized in application order and the callback must
	// not call back into the controller.
	OnChange func(Selection)
}

const defaultHistoryDays = 60

// SelectionController owns the selection state machine. Every Select and
// Deselect bumps a generation counter; detail and history responses carry
// the generation they were issued under and are discarded on arrival when
// the selection has moved on. History is best-effort: its failure never
// demotes a ready selection, since a detail view with a missing chart is
// still useful.
type SelectionController struct {
	catalog     Catalog
	storeID     string
	historyDays int
	logger      *zap.Logger
	onChange    func(Selection)

	// notifyMu serializes OnChange deliveries: it is held from the moment a
	// transition is applied until the callback returns, so consumers always
	// receive snapshots in application order. The state mutex stays free
	// while the callback runs.
	notifyMu sync.Mutex

	mu  sync.Mutex
	gen uint64
	sel Selection
}

// NewSelectionController creates a SelectionController with no selection.
func NewSelectionController(cfg SelectionConfig) (*SelectionController, error) {
	if cfg.Catalog == nil {
		return nil, errors.New("session: SelectionConfig.Catalog is required")
	}
	days := cfg.HistoryDays
	if days <= 0 {
		days = defaultHistoryDays
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SelectionController{
		catalog:     cfg.Catalog,
		storeID:     cfg.StoreID,
		historyDays: days,
		logger:      logger,
		onChange:    cfg.OnChange,
		sel:         Selection{Status: SelectionNone},
	}, nil
}

// Select makes item the active selection. Any prior Detail/History is
// cleared synchronously before the detail fetch is issued; the history fetch
// follows a successful detail fetch. Selecting an already-selected barcode
// refetches. The returned channel closes when the detail+history sequence
// has fully settled (applied, failed, or discarded as stale).
func (c *SelectionController) Select(ctx context.Context, item domain.CatalogItem) <-chan struct{} {
	c.notifyMu.Lock()
	c.mu.Lock()
	c.gen++
	gen := c.gen
	picked := item
	c.sel = Selection{Status: SelectionSelecting, Item: &picked}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
	c.notifyMu.Unlock()

	done := make(chan struct{})
	go func() {
		defer close(done)
		detail, err := c.catalog.FetchDetail(ctx, catalog.DetailParams{
			Barcode: item.Barcode,
			StoreID: c.storeID,
		})
		if !c.applyDetail(gen, detail, err) {
			return
		}
		history, herr := c.catalog.FetchHistory(ctx, catalog.HistoryParams{
			Barcode: item.Barcode,
			StoreID: c.storeID,
			Days:    c.historyDays,
		})
		c.applyHistory(gen, item.Barcode, history, herr)
	}()
	return done
}

// Deselect clears the selection. In-flight responses for the prior
// selection are discarded when they arrive.
func (c *SelectionController) Deselect() {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.mu.Lock()
	c.gen++
	c.sel = Selection{Status: SelectionNone}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// applyDetail applies a detail completion under the generation guard.
// It reports whether the history fetch should proceed.
func (c *SelectionController) applyDetail(gen uint64, detail *domain.ItemDetail, err error) bool {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.logger.Debug("discarding stale detail response", zap.Uint64("gen", gen))
		return false
	}

	if err != nil {
		// The selection stays open; the presentation layer shows a
		// non-fatal fallback instead of closing the drawer.
		c.sel.Status = SelectionError
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.logger.Warn("detail fetch failed", zap.Error(err))
		c.notify(snap)
		return false
	}

	c.sel.Status = SelectionReady
	c.sel.Detail = detail
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
	return true
}

// applyHistory applies a history completion under the generation guard.
// Failures are swallowed here: status is untouched and History stays empty.
func (c *SelectionController) applyHistory(gen uint64, barcode string, history domain.PriceHistory, err error) {
	c.notifyMu.Lock()
	defer c.notifyMu.Unlock()
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.logger.Debug("discarding stale history response", zap.Uint64("gen", gen))
		return
	}

	if err != nil {
		c.mu.Unlock()
		c.logger.Debug("history fetch failed, keeping selection ready",
			zap.String("barcode", barcode),
			zap.Error(err))
		return
	}

	c.sel.History = history
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

// Selection returns a snapshot of the current selection state.
func (c *SelectionController) Selection() Selection {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *SelectionController) snapshotLocked() Selection {
	snap := c.sel
	if c.sel.Item != nil {
		item := *c.sel.Item
		snap.Item = &item
	}
	if c.sel.Detail != nil {
		detail := *c.sel.Detail
		snap.Detail = &detail
	}
	if c.sel.History != nil {
		snap.History = make(domain.PriceHistory, len(c.sel.History))
		copy(snap.History, c.sel.History)
	}
	return snap
}

func (c *SelectionController) notify(snap Selection) {
	if c.onChange != nil {
		c.onChange(snap)
	}
}
