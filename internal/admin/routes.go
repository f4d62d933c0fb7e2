package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes serves the staff pages; mount it at /admin. The admin sign-in
// page is registered by the auth package.
func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Get("/dashboard", h.Dashboard)
	r.Get("/transactions", h.Transactions)

	return r
}
