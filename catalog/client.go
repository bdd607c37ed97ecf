package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"price-catalog-client/domain"
)

// Predefined errors for remote catalog operations. Callers discriminate
// with errors.Is; every returned error wraps exactly one of these.
var (
	ErrNetwork       = errors.New("catalog: network failure")
	ErrDecode        = errors.New("catalog: malformed response")
	ErrNotFound      = errors.New("catalog: barcode not found")
	ErrInvalidParams = errors.New("catalog: invalid request parameters")
)

const defaultTimeout = 10 * time.Second

// SearchParams are the inputs to Client.Search. An empty Query is valid and
// returns the backend's default browse listing.
type SearchParams struct {
	Query   string
	Limit   int    `validate:"gt=0"`
	StoreID string `validate:"required"`
}

// DetailParams are the inputs to Client.FetchDetail.
type DetailParams struct {
	Barcode string `validate:"required"`
	StoreID string `validate:"required"`
}

// HistoryParams are the inputs to Client.FetchHistory.
type HistoryParams struct {
	Barcode string `validate:"required"`
	StoreID string `validate:"required"`
	Days    int    `validate:"gt=0"`
}

// Config holds the dependencies for constructing a Client. BaseURL is the
// only required field; it is injected here rather than read from ambient
// process state so the client can be pointed at a stub in tests.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Client issues read-only queries against the remote price catalog. It
// performs a single attempt per call: retry policy belongs to callers.
type Client struct {
	base     *url.URL
	http     *http.Client
	logger   *zap.Logger
	validate *validator.Validate
}

// New creates a Client for the given configuration.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: base URL %q", ErrInvalidParams, cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultTimeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		base:     base,
		http:     httpClient,
		logger:   logger,
		validate: validator.New(),
	}, nil
}

// Search runs a catalog search and returns the normalized result rows in
// server order. A well-formed response with no results field decodes to an
// empty slice, never an error.
func (c *Client) Search(ctx context.Context, params SearchParams) ([]domain.CatalogItem, error) {
	if err := c.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	query := url.Values{}
	query.Set("q", params.Query)
	query.Set("limit", strconv.Itoa(params.Limit))
	query.Set("store_id", params.StoreID)

	body, err := c.get(ctx, "/search", query)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: search: %v", ErrDecode, err)
	}
	return normalizeItems(resp.Results), nil
}

// FetchDetail retrieves the product record and current price for a barcode.
// Returns ErrNotFound when the server signals an unknown barcode.
func (c *Client) FetchDetail(ctx context.Context, params DetailParams) (*domain.ItemDetail, error) {
	if err := c.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	query := url.Values{}
	query.Set("store_id", params.StoreID)

	body, err := c.get(ctx, "/item/"+url.PathEscape(params.Barcode), query)
	if err != nil {
		return nil, err
	}

	var resp detailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: item detail: %v", ErrDecode, err)
	}
	return normalizeDetail(resp), nil
}

// FetchHistory retrieves up to params.Days of price observations for a
// barcode, normalized to calendar-day points in server order. A response
// with no history field decodes to an empty history, never an error.
func (c *Client) FetchHistory(ctx context.Context, params HistoryParams) (domain.PriceHistory, error) {
	if err := c.validate.Struct(params); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}

	query := url.Values{}
	query.Set("days", strconv.Itoa(params.Days))
	query.Set("store_id", params.StoreID)

	body, err := c.get(ctx, "/item/"+url.PathEscape(params.Barcode)+"/history", query)
	if err != nil {
		return nil, err
	}

	var resp historyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: history: %v", ErrDecode, err)
	}
	return normalizeHistory(resp.History), nil
}

// Health reports whether the backend is reachable and has its data loaded.
func (c *Client) Health(ctx context.Context) error {
	body, err := c.get(ctx, "/health", nil)
	if err != nil {
		return err
	}

	var resp healthResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%w: health: %v", ErrDecode, err)
	}
	if !resp.OK {
		return fmt.Errorf("%w: backend unhealthy: %s", ErrNetwork, resp.Error)
	}
	return nil
}

// get issues a single GET against the configured base endpoint and returns
// the response body. Callers pass an already-escaped path; setting RawPath
// alongside Path keeps URL.String from escaping it a second time. Transport
// failures and unexpected statuses map to ErrNetwork; a 404 maps to
// ErrNotFound.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := *c.base
	rawPath := joinPath(c.base.EscapedPath(), path)
	unescaped, err := url.PathUnescape(rawPath)
	if err != nil {
		return nil, fmt.Errorf("%w: path %q", ErrInvalidParams, rawPath)
	}
	u.Path, u.RawPath, u.RawQuery = unescaped, rawPath, query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrNetwork, err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("catalog request failed",
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: GET %s: %v", ErrNetwork, path, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrNetwork, err)
	}

	c.logger.Debug("catalog request",
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", res.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	switch {
	case res.StatusCode == http.StatusOK:
		return body, nil
	case res.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: GET %s", ErrNotFound, path)
	default:
		return nil, fmt.Errorf("%w: GET %s: unexpected status %d", ErrNetwork, path, res.StatusCode)
	}
}

func joinPath(base, path string) string {
	if base == "" || base == "/" {
		return path
	}
	if base[len(base)-1] == '/' {
		base = base[:len(base)-1]
	}
	return base + path
}
