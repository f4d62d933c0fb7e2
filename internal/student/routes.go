package student

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes serves the student pages; mount it at /student.
func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/payment-lists", h.List)
	r.Get("/payment-lists/{id}", h.Detail)
	r.Get("/payment-lists/{id}/pay", h.Pay)

	return r
}
