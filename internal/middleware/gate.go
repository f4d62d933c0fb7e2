package middleware

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/cakrabuana/payment-portal/internal/access"
	"github.com/cakrabuana/payment-portal/internal/utils"
)

// AccessGate runs every non-excluded request through policy. Redirect
// decisions end the request; passing requests carry the cookie session in
// their context.
func AccessGate(policy access.Policy, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if policy.Excludes(path) {
				next.ServeHTTP(w, r)
				return
			}

			token := utils.CookieValue(r, utils.TokenCookie)
			role := utils.CookieValue(r, utils.RoleCookie)

			d := policy.Evaluate(path, token, role)
			gateDecisions.WithLabelValues(d.Outcome.String()).Inc()

			if d.Redirects() {
				logger.Debug("gate redirect",
					zap.String("path", path),
					zap.String("role", role),
					zap.Bool("has_token", token != ""),
					zap.Stringer("outcome", d.Outcome),
					zap.String("location", d.Location),
				)
				http.Redirect(w, r, d.Location, redirectStatus(r.Method))
				return
			}

			ctx := utils.WithSession(r.Context(), utils.Session{Token: token, Role: role})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// redirectStatus keeps the method for safe requests and turns form posts
// into a GET on the target page.
func redirectStatus(method string) int {
	if method == http.MethodGet || method == http.MethodHead {
		return http.StatusTemporaryRedirect
	}
	return http.StatusSeeOther
}
