// Package imageproxy serves upstream product images from the same origin so
// the browser never makes cross-origin image fetches.
package imageproxy

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

	"github.com/redis/go-redis/v9"

	"github.com/optomall/optomall/internal/platform/httpx"
)

const (
	cacheKeyPrefix = "imgproxy:"
	cacheTTL       = 7 * 24 * time.Hour
	maxImageBytes  = 10 << 20
)

// cachedImage is the redis representation of a proxied image.
type cachedImage struct {
	ContentType string `json:"ct"`
	Body        []byte `json:"body"`
}

// Proxy fetches and caches upstream images.
type Proxy struct {
	logger  *slog.Logger
	client  *http.Client
	cache   *redis.Client
	timeout time.Duration
}

// New builds a Proxy. A nil redis client disables caching.
func New(logger *slog.Logger, cache *redis.Client, timeout time.Duration) *Proxy {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Proxy{
		logger:  logger,
		client:  &http.Client{Timeout: timeout},
		cache:   cache,
		timeout: timeout,
	}
}

// Handle serves GET /api/alibaba/image?url=. Responses carry a one week
// cache header; timeouts surface as 504.
func (p *Proxy) Handle(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	if target == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "url query parameter is required")
		return
	}

	parsed, err := url.Parse(target)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "url must be absolute http(s)")
		return
	}

	if img, ok := p.fromCache(r.Context(), target); ok {
		p.write(w, img)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), p.timeout)
	defer cancel()

	img, err := p.fetch(ctx, target)
	if err != nil {
		if isTimeout(err) {
			httpx.Problem(w, http.StatusGatewayTimeout, "Gateway Timeout", "image fetch timed out")
			return
		}
		p.logger.Warn("image proxy fetch", slog.String("url", target), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Bad Gateway", "image fetch failed")
		return
	}

	p.store(r.Context(), target, img)
	p.write(w, img)
}

func (p *Proxy) fetch(ctx context.Context, target string) (*cachedImage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("imageproxy: upstream returned %s", resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, err
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	return &cachedImage{ContentType: contentType, Body: body}, nil
}

func (p *Proxy) fromCache(ctx context.Context, target string) (*cachedImage, bool) {
	if p.cache == nil {
		return nil, false
	}
	payload, err := p.cache.Get(ctx, cacheKeyPrefix+target).Bytes()
	if err != nil {
		return nil, false
	}
	var img cachedImage
	if err := json.Unmarshal(payload, &img); err != nil {
		return nil, false
	}
	return &img, true
}

func (p *Proxy) store(ctx context.Context, target string, img *cachedImage) {
	if p.cache == nil {
		return
	}
	payload, err := json.Marshal(img)
	if err != nil {
		return
	}
	if err := p.cache.Set(ctx, cacheKeyPrefix+target, payload, cacheTTL).Err(); err != nil {
		p.logger.Warn("image proxy cache store", slog.Any("error", err))
	}
}

func (p *Proxy) write(w http.ResponseWriter, img *cachedImage) {
	w.Header().Set("Content-Type", img.ContentType)
	w.Header().Set("Cache-Control", "public, max-age=604800")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Body)
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "Client.Timeout")
}
