package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes registers the sign-in pages at their policy paths and logout
// under /api/auth. throttle wraps the credential posts.
func SetupRoutes(r chi.Router, h *Handler, throttle func(http.Handler) http.Handler) {
	r.Get(h.policy.SignIn, h.SignInPage)
	r.Get(h.policy.AdminSignIn, h.AdminSignInPage)

	r.Group(func(r chi.Router) {
		r.Use(throttle)
		r.Post(h.policy.SignIn, h.SignIn)
		r.Post(h.policy.AdminSignIn, h.AdminSignIn)
	})

	r.Route("/api/auth", func(r chi.Router) {
		r.Get("/logout", h.Logout)
		r.Post("/logout", h.Logout)
	})
}
