package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/optomall/optomall/internal/platform/httpx"
)

// TaskEnqueuer submits background work. The jobs client satisfies it; a nil
// enqueuer degrades to synchronous-only behavior.
type TaskEnqueuer interface {
	EnqueueGenerateQR(ctx context.Context, orderID string) error
}

// WebhookRequest is the payment provider notification body.
type WebhookRequest struct {
	Provider          string          `json:"provider" validate:"required"`
	ProviderPaymentID string          `json:"provider_payment_id" validate:"required"`
	OrderID           string          `json:"order_id" validate:"required"`
	Amount            decimal.Decimal `json:"amount"`
	Currency          string          `json:"currency"`
	Status            string          `json:"status" validate:"required"`
}

// BulkActionRequest drives the admin bulk endpoint.
type BulkActionRequest struct {
	Entity  string   `json:"entity" validate:"required,oneof=products shipments"`
	Action  string   `json:"action" validate:"required,oneof=update_status delete"`
	IDs     []string `json:"ids" validate:"required,min=1"`
	Payload struct {
		Status string `json:"status"`
	} `json:"payload"`
}

// Service handles payment settlement, QR generation and bulk actions.
type Service struct {
	repo   Repository
	qr     *QRGenerator
	tasks  TaskEnqueuer
	logger *slog.Logger
}

// NewService builds a Service instance.
func NewService(repo Repository, qr *QRGenerator, tasks TaskEnqueuer, logger *slog.Logger) *Service {
	return &Service{repo: repo, qr: qr, tasks: tasks, logger: logger}
}

// HandlePayment records the provider notification and settles the order when
// the status is terminal. Duplicate notifications are acknowledged without
// side effects so provider retries stay idempotent.
func (s *Service) HandlePayment(ctx context.Context, req WebhookRequest) error {
	payment := Payment{
		ID:                uuid.NewString(),
		OrderID:           req.OrderID,
		Provider:          req.Provider,
		ProviderPaymentID: req.ProviderPaymentID,
		Status:            req.Status,
		Amount:            req.Amount,
		Currency:          req.Currency,
		ReceivedAt:        time.Now().UTC(),
	}

	settle := paidStatuses[req.Status]
	if err := s.repo.RecordPayment(ctx, payment, settle); err != nil {
		if errors.Is(err, httpx.ErrDuplicate) {
			s.logger.Info("duplicate payment notification ignored",
				slog.String("provider_payment_id", req.ProviderPaymentID))
			return nil
		}
		return err
	}

	if !settle {
		return nil
	}

	if s.tasks != nil {
		if err := s.tasks.EnqueueGenerateQR(ctx, req.OrderID); err != nil {
			s.logger.Warn("enqueue qr generation",
				slog.String("order_id", req.OrderID), slog.Any("error", err))
		}
	}
	return nil
}

// GenerateQR renders and stores the QR code for an order and saves the
// resulting URL on the order row.
func (s *Service) GenerateQR(ctx context.Context, orderID string) (string, error) {
	order, err := s.repo.GetOrder(ctx, orderID)
	if err != nil {
		return "", err
	}

	payload := fmt.Sprintf("optomall://orders/%s", order.ID)
	qrURL, err := s.qr.Generate(ctx, order.ID, payload)
	if err != nil {
		return "", err
	}

	if err := s.repo.SetOrderQR(ctx, order.ID, qrURL); err != nil {
		return "", err
	}
	return qrURL, nil
}

// BulkAction applies one admin action across the selected rows and returns
// the affected count.
func (s *Service) BulkAction(ctx context.Context, req BulkActionRequest) (int64, error) {
	switch req.Action {
	case "update_status":
		if req.Payload.Status == "" {
			return 0, fmt.Errorf("%w: payload.status required for update_status", httpx.ErrValidation)
		}
		return s.repo.BulkUpdateStatus(ctx, req.Entity, req.IDs, req.Payload.Status)
	case "delete":
		return s.repo.BulkDelete(ctx, req.Entity, req.IDs)
	default:
		return 0, fmt.Errorf("%w: action %q", httpx.ErrValidation, req.Action)
	}
}
