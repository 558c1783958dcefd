package jobs

import (
	"context"
	"log/slog"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/optomall/optomall/internal/marketplace"
)

// WarmTopProductsJob fills the search cache for every homepage keyword so
// the rotating feed never pays the aggregator latency on a user request.
type WarmTopProductsJob struct {
	service *marketplace.Service
	logger  *slog.Logger
}

// NewWarmTopProductsJob builds WarmTopProductsJob instance.
func NewWarmTopProductsJob(service *marketplace.Service, logger *slog.Logger) *WarmTopProductsJob {
	return &WarmTopProductsJob{service: service, logger: logger}
}

// Handle processes TaskWarmTopProducts tasks.
func (j *WarmTopProductsJob) Handle(ctx context.Context, t *asynq.Task) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, keyword := range marketplace.TopProductKeywords {
		g.Go(func() error {
			products, err := j.service.TopProductsFor(ctx, keyword)
			if err != nil {
				return err
			}
			j.logger.Info("warmed top products",
				slog.String("keyword", keyword), slog.Int("count", len(products)))
			return nil
		})
	}
	return g.Wait()
}
