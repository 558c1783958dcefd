package orders

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/optomall/optomall/internal/platform/httpx"
)

// Handler exposes the payment webhook and the admin order endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountWebhookRoutes registers provider-facing routes under /api/webhooks.
func (h *Handler) MountWebhookRoutes(r chi.Router) {
	r.Post("/payments", h.paymentWebhook)
}

// MountAdminRoutes registers admin routes; callers wrap them in the admin
// gate before mounting.
func (h *Handler) MountAdminRoutes(r chi.Router) {
	r.Post("/orders/{id}/qr", h.generateQR)
	r.Post("/bulk-actions", h.bulkAction)
}

func (h *Handler) paymentWebhook(w http.ResponseWriter, r *http.Request) {
	var req WebhookRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	if err := h.service.HandlePayment(r.Context(), req); err != nil {
		if !errors.Is(err, httpx.ErrNotFound) {
			h.logger.Error("payment webhook",
				slog.String("order_id", req.OrderID), slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"received": true})
}

func (h *Handler) generateQR(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	qrURL, err := h.service.GenerateQR(r.Context(), id)
	if err != nil {
		if !errors.Is(err, httpx.ErrNotFound) {
			h.logger.Error("generate qr", slog.String("order_id", id), slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"qrUrl": qrURL})
}

func (h *Handler) bulkAction(w http.ResponseWriter, r *http.Request) {
	var req BulkActionRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	affected, err := h.service.BulkAction(r.Context(), req)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]any{"affected": affected})
}
