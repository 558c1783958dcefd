package shop

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/optomall/optomall/internal/platform/httpx"
)

// Mirror reads back mirrored session state. *Repository satisfies it; nil
// disables restoration.
type Mirror interface {
	GetSnapshot(ctx context.Context, sessionKey string) (*Snapshot, error)
}

// Handler exposes cart and favorites endpoints under /api/shop.
type Handler struct {
	logger   *slog.Logger
	store    *Store
	mirror   Mirror
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, store *Store, mirror Mirror) *Handler {
	return &Handler{
		logger:   logger,
		store:    store,
		mirror:   mirror,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers shop routes. SessionMiddleware must run upstream of
// these handlers.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/cart", h.listCart)
	r.Post("/cart", h.addToCart)
	r.Delete("/cart", h.clearCart)
	r.Delete("/cart/{productId}", h.removeFromCart)
	r.Get("/cart/export", h.exportCart)
	r.Get("/favorites", h.listFavorites)
	r.Post("/favorites/{productId}/toggle", h.toggleFavorite)
	r.Get("/favorites/{productId}/contains", h.containsFavorite)
}

type addToCartRequest struct {
	ProductID string          `json:"productId" validate:"required"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty" validate:"omitempty,min=1"`
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := SessionKeyFromContext(r.Context())
	if key == "" {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "session not established")
		return "", false
	}
	return key, true
}

// hydrate restores a returning device's state from the Postgres mirror when
// redis has nothing for the session. Best effort: failures leave the session
// empty, never error the request.
func (h *Handler) hydrate(r *http.Request, key string) {
	if h.mirror == nil {
		return
	}
	seen, err := h.store.Seen(r.Context(), key)
	if err != nil || seen {
		return
	}
	snap, err := h.mirror.GetSnapshot(r.Context(), key)
	if err != nil {
		return
	}
	if err := h.store.Restore(r.Context(), snap); err != nil {
		h.logger.Warn("restore session mirror", slog.Any("error", err))
	}
}

func (h *Handler) listCart(w http.ResponseWriter, r *http.Request) {
	key, ok := h.session(w, r)
	if !ok {
		return
	}
	h.hydrate(r, key)
	lines, err := h.store.Cart(r.Context(), key)
	if err != nil {
		h.logger.Error("list cart", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if lines == nil {
		lines = []CartLine{}
	}
	httpx.OK(w, lines)
}

func (h *Handler) addToCart(w http.ResponseWriter, r *http.Request) {
	key, ok := h.session(w, r)
	if !ok {
		return
	}
	var req addToCartRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	lines, err := h.store.AddToCart(r.Context(), key, CartLine{
		ProductID: req.ProductID,
		Name:      req.Name,
		Price:     req.Price,
		Qty:       req.Qty,
	})
	if err != nil {
		h.logger.Error("add to cart", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, lines)
}

func (h *Handler) removeFromCart(w http.ResponseWriter, r *http.Request) {
	key, ok := h.session(w, r)
	if !ok {
		return
	}
	lines, err := h.store.RemoveFromCart(r.Context(), key, chi.URLParam(r, "productId"))
	if err != nil {
		h.logger.Error("remove from cart", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if lines == nil {
		lines = []CartLine{}
	}
	httpx.OK(w, lines)
}

func (h *Handler) clearCart(w http.ResponseWriter, r *http.Request) {
	key, ok := h.session(w, r)
	if !ok {
		return
	}
	if err := h.store.ClearCart(r.Context(), key); err != nil {
		h.logger.Error("clear cart", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, []CartLine{})
}

func (h *Handler) exportCart(w http.ResponseWriter, r *http.Request) {
	key, ok := h.session(w, r)
	if !ok {
		return
	}
	lines, err := h.store.Cart(r.Context(), key)
	if err != nil {
		h.logger.Error("export cart", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="cart.csv"`)
	if err := WriteCartCSV(w, lines); err != nil {
		h.logger.Error("write cart csv", slog.Any("error", err))
	}
}

func (h *Handler) listFavorites(w http.ResponseWriter, r *http.Request) {
	key, ok := h.session(w, r)
	if !ok {
		return
	}
	h.hydrate(r, key)
	ids, err := h.store.Favorites(r.Context(), key)
	if err != nil {
		h.logger.Error("list favorites", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	httpx.OK(w, ids)
}

func (h *Handler) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	key, ok := h.session(w, r)
	if !ok {
		return
	}
	favorite, err := h.store.ToggleFavorite(r.Context(), key, chi.URLParam(r, "productId"))
	if err != nil {
		h.logger.Error("toggle favorite", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]bool{"favorite": favorite})
}

func (h *Handler) containsFavorite(w http.ResponseWriter, r *http.Request) {
	key, ok := h.session(w, r)
	if !ok {
		return
	}
	favorite, err := h.store.IsFavorite(r.Context(), key, chi.URLParam(r, "productId"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, map[string]bool{"favorite": favorite})
}
