package orders

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

const defaultChartBase = "https://chart.googleapis.com/chart"

// QRGenerator renders an order QR code through the chart API and stores the
// PNG under the media directory. When fetching or storing fails the chart
// URL itself is returned, so the order always ends up with a usable link.
type QRGenerator struct {
	client   *http.Client
	chartURL string
	mediaDir string
	logger   *slog.Logger
}

// NewQRGenerator builds QRGenerator instance.
func NewQRGenerator(mediaDir string, logger *slog.Logger) *QRGenerator {
	return &QRGenerator{
		client:   &http.Client{Timeout: 15 * time.Second},
		chartURL: defaultChartBase,
		mediaDir: mediaDir,
		logger:   logger,
	}
}

// BuildChartURL returns the chart API URL encoding the payload as a QR code.
func (g *QRGenerator) BuildChartURL(payload string) string {
	q := url.Values{}
	q.Set("chs", "300x300")
	q.Set("cht", "qr")
	q.Set("chl", payload)
	q.Set("choe", "UTF-8")
	return g.chartURL + "?" + q.Encode()
}

// Generate fetches the QR PNG and writes it to media/qr/<orderID>.png,
// returning the stored path. Any failure falls back to the chart URL.
func (g *QRGenerator) Generate(ctx context.Context, orderID, payload string) (string, error) {
	chartURL := g.BuildChartURL(payload)

	png, err := g.fetch(ctx, chartURL)
	if err != nil {
		g.logger.Warn("qr fetch failed, falling back to chart url",
			slog.String("order_id", orderID), slog.Any("error", err))
		return chartURL, nil
	}

	dir := filepath.Join(g.mediaDir, "qr")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		g.logger.Warn("qr storage failed, falling back to chart url",
			slog.String("order_id", orderID), slog.Any("error", err))
		return chartURL, nil
	}
	path := filepath.Join(dir, orderID+".png")
	if err := os.WriteFile(path, png, 0o644); err != nil {
		g.logger.Warn("qr storage failed, falling back to chart url",
			slog.String("order_id", orderID), slog.Any("error", err))
		return chartURL, nil
	}

	return "/media/qr/" + orderID + ".png", nil
}

func (g *QRGenerator) fetch(ctx context.Context, chartURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, chartURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("orders: chart api status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}
