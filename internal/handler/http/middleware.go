package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/inteiros/GoStack-GoMarketplace/internal/cart"
	"github.com/inteiros/GoStack-GoMarketplace/pkg/httputil"
)

// CartProvider hands out the store of the open provider lifetime.
type CartProvider interface {
	Cart() (*cart.Store, error)
}

// WithCart stores the active cart in the request context. Requests arriving
// outside a provider lifetime get 503 CART_UNAVAILABLE.
func WithCart(provider CartProvider, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			store, err := provider.Cart()
			if err != nil {
				httputil.WriteError(w, r, err, logger)
				return
			}
			next.ServeHTTP(w, r.WithContext(cart.NewContext(r.Context(), store)))
		})
	}
}

// ContentTypeJSON rejects bodies that are not declared as JSON.
func ContentTypeJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.ContentLength > 0 {
			ct := r.Header.Get("Content-Type")
			if ct != "" && !strings.HasPrefix(ct, "application/json") {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType, httputil.Response{
					Error: &httputil.ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Content-Type must be application/json"},
				})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
