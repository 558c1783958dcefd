// Package upstream talks to the tmapi.top aggregator that fronts the 1688
// marketplace catalog.
package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	endpointSearch = "ali/search/search-items"
	endpointDetail = "ali/item-detail/get-item-detail-by-id"
)

// Sort orders accepted by the search endpoint.
const (
	SortRelevance = 0
	SortPriceAsc  = 1
	SortPriceDesc = 2
)

// ErrTokenMissing is returned when no aggregator token is configured.
var ErrTokenMissing = errors.New("upstream: token not configured")

// ErrBadResponse wraps non-2xx and non-JSON upstream replies.
var ErrBadResponse = errors.New("upstream: bad response")

// SearchResult is the portion of the search reply the service consumes.
type SearchResult struct {
	Items      []map[string]any `json:"items"`
	TotalCount int              `json:"totalCount"`
}

// Client issues single-attempt requests against the aggregator. The token
// travels as a query parameter; failures surface to the caller unretried.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// New constructs a Client with a fixed per-request timeout.
func New(baseURL, token string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Search queries the catalog. sortType follows the aggregator convention:
// 0 relevance, 1 price ascending, 2 price descending.
func (c *Client) Search(ctx context.Context, keywords string, page, pageSize, sortType int) (*SearchResult, error) {
	params := url.Values{}
	params.Set("keywords", keywords)
	params.Set("page", fmt.Sprint(page))
	params.Set("pageSize", fmt.Sprint(pageSize))
	params.Set("sortType", fmt.Sprint(sortType))

	var reply struct {
		Data *SearchResult `json:"data"`
	}
	if err := c.get(ctx, endpointSearch, params, &reply); err != nil {
		return nil, err
	}
	if reply.Data == nil {
		return &SearchResult{}, nil
	}
	return reply.Data, nil
}

// ItemDetail fetches a single item record, or nil when the id is unknown.
func (c *Client) ItemDetail(ctx context.Context, itemID string) (map[string]any, error) {
	params := url.Values{}
	params.Set("itemId", itemID)

	var reply struct {
		Data map[string]any `json:"data"`
	}
	if err := c.get(ctx, endpointDetail, params, &reply); err != nil {
		return nil, err
	}
	return reply.Data, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, target any) error {
	if c.token == "" {
		return ErrTokenMissing
	}
	params.Set("token", c.token)

	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("upstream: build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("upstream: %s: %w", endpoint, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		if c.logger != nil {
			c.logger.Error("upstream error response",
				slog.String("endpoint", endpoint),
				slog.Int("status", resp.StatusCode),
				slog.String("body", string(snippet)))
		}
		return fmt.Errorf("%w: %s returned %s", ErrBadResponse, endpoint, resp.Status)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		return fmt.Errorf("%w: expected JSON, got %s", ErrBadResponse, contentType)
	}

	if err := json.NewDecoder(resp.Body).Decode(target); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrBadResponse, err)
	}
	return nil
}
