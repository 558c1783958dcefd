package currency

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/optomall/optomall/internal/platform/httpx"
)

// Handler exposes the currency endpoints under /api/currency.
type Handler struct{}

// NewHandler builds Handler instance.
func NewHandler() *Handler {
	return &Handler{}
}

// MountRoutes registers currency routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/rates", h.rates)
	r.Get("/convert", h.convert)
}

func (h *Handler) rates(w http.ResponseWriter, r *http.Request) {
	httpx.OK(w, Rates())
}

func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	amountParam := r.URL.Query().Get("amount")
	toParam := r.URL.Query().Get("to")
	if amountParam == "" || toParam == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "amount and to query parameters are required")
		return
	}

	amount, err := decimal.NewFromString(amountParam)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "amount must be a number")
		return
	}

	to := Code(toParam)
	converted, err := Convert(amount, to)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	formatted, err := Format(amount, to)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}

	httpx.OK(w, map[string]any{
		"amount":    amount,
		"currency":  to,
		"converted": converted,
		"formatted": formatted,
	})
}
