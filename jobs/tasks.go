// Package jobs holds the background task definitions and the Asynq worker
// plumbing shared by the API and worker binaries.
package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskWarmTopProducts preloads the search cache for every homepage
	// keyword rotation candidate.
	TaskWarmTopProducts = "marketplace:warm_top_products"
	// TaskGenerateQR renders and stores the QR code for a paid order.
	TaskGenerateQR = "orders:generate_qr"
	// TaskFlushSessions mirrors dirty redis cart sessions into Postgres.
	TaskFlushSessions = "shop:flush_sessions"
)

// GenerateQRPayload identifies the order to render.
type GenerateQRPayload struct {
	OrderID string `json:"order_id"`
}

// NewWarmTopProductsTask builds the cache warmup task.
func NewWarmTopProductsTask() *asynq.Task {
	return asynq.NewTask(TaskWarmTopProducts, nil, asynq.Queue(QueueDefault))
}

// NewGenerateQRTask builds a QR generation task for one order.
func NewGenerateQRTask(orderID string) (*asynq.Task, error) {
	body, err := json.Marshal(GenerateQRPayload{OrderID: orderID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGenerateQR, body, asynq.Queue(QueueDefault)), nil
}

// NewFlushSessionsTask builds the session mirror task.
func NewFlushSessionsTask() *asynq.Task {
	return asynq.NewTask(TaskFlushSessions, nil, asynq.Queue(QueueDefault))
}
