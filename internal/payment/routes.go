package payment

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes serves the payment link pages; mount it at /payment.
func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.Missing)
	r.Get("/{key}", h.Show)
	r.Get("/{key}/pay", h.Pay)

	return r
}
