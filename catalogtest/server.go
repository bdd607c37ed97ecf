// Package catalogtest provides an in-process fake of the price catalog
// backend for tests: a chi router over fixture data serving the same
// endpoints and payload shapes as the real service, with injectable failure
// statuses. Consumers point a catalog.Client at Server.URL.
package catalogtest

import (
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// Observation is one historical price row for a fixture.
type Observation struct {
	ObservedAt      string
	Price           float64
	UnitPricePer100 *float64
	HasPromo        bool
}

// Fixture is one product with its current price and optional history.
type Fixture struct {
	Barcode         string
	Name            string
	Brand           string
	Quantity        string
	QtyUnit         string
	Price           float64
	UnitPricePer100 *float64
	HasPromo        bool
	RewardTypes     string
	LastSeenAt      string
	History         []Observation
}

// Server is a running fake catalog backend.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	fixtures  []Fixture
	byBarcode map[string]Fixture
	forced    map[string]int // route name -> status code to force
	unhealthy bool
}

// Route names accepted by ForceStatus.
const (
	RouteSearch  = "search"
	RouteDetail  = "detail"
	RouteHistory = "history"
)

// NewServer starts a fake catalog backend serving the given fixtures.
// Callers must Close it.
func NewServer(fixtures ...Fixture) *Server {
	s := &Server{
		fixtures:  fixtures,
		byBarcode: make(map[string]Fixture, len(fixtures)),
		forced:    make(map[string]int),
	}
	for _, f := range fixtures {
		s.byBarcode[f.Barcode] = f
	}

	router := chi.NewRouter()
	router.Get("/health", s.handleHealth)
	router.Get("/search", s.handleSearch)
	router.Get("/item/{barcode}", s.handleDetail)
	router.Get("/item/{barcode}/history", s.handleHistory)

	s.Server = httptest.NewServer(router)
	return s
}

// ForceStatus makes the named route respond with the given HTTP status
// instead of its normal payload. A code of 0 restores normal behavior.
func (s *Server) ForceStatus(route string, code int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if code == 0 {
		delete(s.forced, route)
		return
	}
	s.forced[route] = code
}

// SetUnhealthy controls the /health payload.
func (s *Server) SetUnhealthy(unhealthy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.unhealthy = unhealthy
}

func (s *Server) forcedStatus(route string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	code, ok := s.forced[route]
	return code, ok
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	unhealthy := s.unhealthy
	s.mu.Unlock()
	if unhealthy {
		respondWithJSON(w, http.StatusOK, map[string]any{"ok": false, "error": "DB not found"})
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if code, ok := s.forcedStatus(RouteSearch); ok {
		respondWithError(w, code, "forced failure")
		return
	}

	q := strings.ToLower(r.URL.Query().Get("q"))
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 50
	}

	s.mu.Lock()
	matched := make([]Fixture, 0, len(s.fixtures))
	for _, f := range s.fixtures {
		if q == "" || strings.Contains(strings.ToLower(f.Name), q) {
			matched = append(matched, f)
		}
	}
	s.mu.Unlock()

	// Same ordering as the real backend: cheapest comparable price first,
	// name as tiebreaker.
	sort.SliceStable(matched, func(i, j int) bool {
		pi, pj := comparablePrice(matched[i]), comparablePrice(matched[j])
		if pi != pj {
			return pi < pj
		}
		return matched[i].Name < matched[j].Name
	})
	if len(matched) > limit {
		matched = matched[:limit]
	}

	rows := make([]map[string]any, 0, len(matched))
	for _, f := range matched {
		rows = append(rows, map[string]any{
			"barcode":           f.Barcode,
			"name":              f.Name,
			"price":             f.Price,
			"unit_price_per100": nullableFloat(f.UnitPricePer100),
			"qty_unit":          nullableString(f.QtyUnit),
			"has_promo":         boolToInt(f.HasPromo),
			"reward_types":      nullableString(f.RewardTypes),
			"last_seen_at":      f.LastSeenAt,
		})
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"results": rows, "count": len(rows)})
}

func (s *Server) handleDetail(w http.ResponseWriter, r *http.Request) {
	if code, ok := s.forcedStatus(RouteDetail); ok {
		respondWithError(w, code, "forced failure")
		return
	}

	barcode := chi.URLParam(r, "barcode")
	s.mu.Lock()
	f, ok := s.byBarcode[barcode]
	s.mu.Unlock()
	if !ok {
		respondWithError(w, http.StatusNotFound, "barcode not found")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"product": map[string]any{
			"barcode":  f.Barcode,
			"name":     f.Name,
			"brand":    nullableString(f.Brand),
			"quantity": nullableString(f.Quantity),
			"qty_unit": nullableString(f.QtyUnit),
		},
		"current_price": map[string]any{
			"price":             f.Price,
			"unit_price_per100": nullableFloat(f.UnitPricePer100),
			"has_promo":         boolToInt(f.HasPromo),
			"reward_types":      nullableString(f.RewardTypes),
			"last_seen_at":      f.LastSeenAt,
		},
	})
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if code, ok := s.forcedStatus(RouteHistory); ok {
		respondWithError(w, code, "forced failure")
		return
	}

	days, err := strconv.Atoi(r.URL.Query().Get("days"))
	if err != nil || days <= 0 {
		days = 30
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	barcode := chi.URLParam(r, "barcode")
	s.mu.Lock()
	f, ok := s.byBarcode[barcode]
	s.mu.Unlock()
	if !ok {
		// The real backend serves an empty history for unknown barcodes.
		respondWithJSON(w, http.StatusOK, map[string]any{"history": []any{}, "count": 0})
		return
	}

	rows := make([]map[string]any, 0, len(f.History))
	for _, obs := range f.History {
		if ts, perr := parseObservedAt(obs.ObservedAt); perr == nil && ts.Before(cutoff) {
			continue
		}
		rows = append(rows, map[string]any{
			"observed_at":       obs.ObservedAt,
			"price":             obs.Price,
			"unit_price_per100": nullableFloat(obs.UnitPricePer100),
			"has_promo":         boolToInt(obs.HasPromo),
		})
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"history": rows, "count": len(rows)})
}

func parseObservedAt(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	return time.Parse("2006-01-02T15:04:05", s)
}

func comparablePrice(f Fixture) float64 {
	if f.UnitPricePer100 != nil {
		return *f.UnitPricePer100
	}
	return f.Price
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]any{"detail": message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("catalogtest: failed to encode JSON response: %v", err)
	}
}
