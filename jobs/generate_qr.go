package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/optomall/optomall/internal/orders"
	"github.com/optomall/optomall/internal/platform/httpx"
)

// GenerateQRJob renders order QR codes off the webhook path.
type GenerateQRJob struct {
	service *orders.Service
	logger  *slog.Logger
}

// NewGenerateQRJob builds GenerateQRJob instance.
func NewGenerateQRJob(service *orders.Service, logger *slog.Logger) *GenerateQRJob {
	return &GenerateQRJob{service: service, logger: logger}
}

// Handle processes TaskGenerateQR tasks.
func (j *GenerateQRJob) Handle(ctx context.Context, t *asynq.Task) error {
	var payload GenerateQRPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	if payload.OrderID == "" {
		return asynq.SkipRetry
	}

	qrURL, err := j.service.GenerateQR(ctx, payload.OrderID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			j.logger.Warn("qr job for unknown order", slog.String("order_id", payload.OrderID))
			return asynq.SkipRetry
		}
		return err
	}

	j.logger.Info("order qr generated",
		slog.String("order_id", payload.OrderID), slog.String("qr_url", qrURL))
	return nil
}
