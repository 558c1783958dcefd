package marketplace

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/optomall/optomall/internal/catalog"
	"github.com/optomall/optomall/internal/platform/httpx"
	"github.com/optomall/optomall/internal/upstream"
)

// TopProductKeywords rotate on the homepage top-products feed.
var TopProductKeywords = []string{
	"wholesale electronics",
	"popular gadgets",
	"best sellers",
}

const topProductsLimit = 20

// UpstreamClient is the slice of the aggregator client the service uses.
type UpstreamClient interface {
	Search(ctx context.Context, keywords string, page, pageSize, sortType int) (*upstream.SearchResult, error)
	ItemDetail(ctx context.Context, itemID string) (map[string]any, error)
}

// Service orchestrates upstream calls, caching and normalization for the
// marketplace endpoints.
type Service struct {
	client UpstreamClient
	cache  *upstream.Cache
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(client UpstreamClient, cache *upstream.Cache, logger *slog.Logger) *Service {
	return &Service{client: client, cache: cache, logger: logger}
}

func sortType(sortBy string) int {
	switch sortBy {
	case "price_asc":
		return upstream.SortPriceAsc
	case "price_desc":
		return upstream.SortPriceDesc
	default:
		return upstream.SortRelevance
	}
}

// Search runs a catalog search, serving repeats from the response cache.
func (s *Service) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	req.applyDefaults()
	st := sortType(req.SortBy)

	key, err := s.cache.SearchKey(ctx, req.Keyword, req.PageNo, req.PageSize, st)
	if err != nil {
		return nil, err
	}

	var result upstream.SearchResult
	err = s.cache.FetchJSON(ctx, key, 0, &result, func(ctx context.Context) (any, error) {
		return s.client.Search(ctx, req.Keyword, req.PageNo, req.PageSize, st)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrUpstream, err)
	}

	products := make([]catalog.Product, 0, len(result.Items))
	for _, item := range result.Items {
		p := catalog.Normalize(item)
		if !priceInRange(p.Price, req.MinPrice, req.MaxPrice) {
			continue
		}
		if req.MinOrder > 0 && p.MinOrder > req.MinOrder {
			continue
		}
		products = append(products, p)
	}

	return &SearchResponse{
		Products: products,
		Total:    result.TotalCount,
		PageNo:   req.PageNo,
		PageSize: req.PageSize,
	}, nil
}

func priceInRange(price decimal.Decimal, min, max *float64) bool {
	if min != nil && price.LessThan(decimal.NewFromFloat(*min)) {
		return false
	}
	if max != nil && price.GreaterThan(decimal.NewFromFloat(*max)) {
		return false
	}
	return true
}

// ProductDetail resolves one product. Ids that cannot be item numbers (the
// client's local mock ids, for instance) short-circuit to not-found without
// touching the aggregator.
func (s *Service) ProductDetail(ctx context.Context, id string) (*catalog.Product, error) {
	if !numericID(id) {
		return nil, fmt.Errorf("%w: product %q", httpx.ErrNotFound, id)
	}

	item, err := s.fetchDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: product %q", httpx.ErrNotFound, id)
	}

	p := catalog.Normalize(item)
	if p.ID == "" {
		p.ID = id
	}
	return &p, nil
}

func (s *Service) fetchDetail(ctx context.Context, id string) (map[string]any, error) {
	key, err := s.cache.DetailKey(ctx, id)
	if err != nil {
		return nil, err
	}
	var item map[string]any
	err = s.cache.FetchJSON(ctx, key, s.cache.DetailTTL(), &item, func(ctx context.Context) (any, error) {
		return s.client.ItemDetail(ctx, id)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", httpx.ErrUpstream, err)
	}
	return item, nil
}

// TopProducts returns up to twenty products for the homepage, searching a
// rotating keyword so the feed varies between cache bumps.
func (s *Service) TopProducts(ctx context.Context) ([]catalog.Product, error) {
	keyword := TopProductKeywords[rand.Intn(len(TopProductKeywords))]
	return s.TopProductsFor(ctx, keyword)
}

// TopProductsFor fills the feed for one keyword; the cache warmup job uses
// it to preload every rotation candidate.
func (s *Service) TopProductsFor(ctx context.Context, keyword string) ([]catalog.Product, error) {
	resp, err := s.Search(ctx, SearchRequest{Keyword: keyword, PageNo: 1, PageSize: topProductsLimit})
	if err != nil {
		return nil, err
	}
	products := resp.Products
	if len(products) > topProductsLimit {
		products = products[:topProductsLimit]
	}
	return products, nil
}

func numericID(id string) bool {
	if id == "" {
		return false
	}
	_, err := strconv.ParseUint(id, 10, 64)
	return err == nil
}
