package http

import (
	"log/slog"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/inteiros/GoStack-GoMarketplace/internal/cart"
	"github.com/inteiros/GoStack-GoMarketplace/internal/domain"
	apperrors "github.com/inteiros/GoStack-GoMarketplace/pkg/errors"
	"github.com/inteiros/GoStack-GoMarketplace/pkg/httputil"
	"github.com/inteiros/GoStack-GoMarketplace/pkg/validator"
)

// CartHandler handles HTTP requests for cart endpoints.
type CartHandler struct {
	logger *slog.Logger
}

// NewCartHandler creates a new cart HTTP handler.
func NewCartHandler(logger *slog.Logger) *CartHandler {
	return &CartHandler{logger: logger}
}

// AddItemRequest is the JSON request body for adding a product to the cart.
type AddItemRequest struct {
	ID       string  `json:"id" validate:"required,max=200"`
	Title    string  `json:"title" validate:"max=500"`
	ImageURL string  `json:"image_url" validate:"omitempty,url"`
	Price    float64 `json:"price" validate:"gte=0"`
}

// CartResponse is the data half of every cart response.
type CartResponse struct {
	Products  domain.Cart `json:"products"`
	ItemCount int         `json:"item_count"`
}

func newCartResponse(c domain.Cart) CartResponse {
	return CartResponse{Products: c, ItemCount: c.ItemCount()}
}

// GetCart handles GET /api/v1/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newCartResponse(store.Products())})
}

// AddItem handles POST /api/v1/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}

	var req AddItemRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	store.AddToCart(r.Context(), domain.Product{
		ID:       req.ID,
		Title:    req.Title,
		ImageURL: req.ImageURL,
		Price:    req.Price,
	})
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newCartResponse(store.Products())})
}

// Increment handles POST /api/v1/cart/items/{id}/increment
func (h *CartHandler) Increment(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	store.Increment(r.Context(), id)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newCartResponse(store.Products())})
}

// Decrement handles POST /api/v1/cart/items/{id}/decrement
func (h *CartHandler) Decrement(w http.ResponseWriter, r *http.Request) {
	store, ok := h.store(w, r)
	if !ok {
		return
	}
	id, ok := h.itemID(w, r)
	if !ok {
		return
	}
	store.Decrement(r.Context(), id)
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: newCartResponse(store.Products())})
}

func (h *CartHandler) store(w http.ResponseWriter, r *http.Request) (*cart.Store, bool) {
	store, err := cart.FromContext(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return nil, false
	}
	return store, true
}

// itemID returns the decoded {id} path segment. chi matches on the escaped
// path whenever the URL carries one, so ids like "sku/42" arrive still encoded.
func (h *CartHandler) itemID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if r.URL.RawPath == "" {
		return id, true
	}
	decoded, err := url.PathUnescape(id)
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidInput("malformed product id"), h.logger)
		return "", false
	}
	return decoded, true
}
