package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cakrabuana/payment-portal/internal/access"
	"github.com/cakrabuana/payment-portal/internal/admin"
	"github.com/cakrabuana/payment-portal/internal/auth"
	"github.com/cakrabuana/payment-portal/internal/billing"
	"github.com/cakrabuana/payment-portal/internal/cache"
	"github.com/cakrabuana/payment-portal/internal/middleware"
	"github.com/cakrabuana/payment-portal/internal/payment"
	"github.com/cakrabuana/payment-portal/internal/profile"
	"github.com/cakrabuana/payment-portal/internal/render"
	"github.com/cakrabuana/payment-portal/internal/student"
)

// BillingAPI is every billing call the portal makes. *billing.Client
// implements it.
type BillingAPI interface {
	auth.API
	student.API
	payment.API
	billing.InstructionSource
}

type Deps struct {
	API      BillingAPI
	Cache    cache.Store
	Policy   access.Policy
	Renderer *render.Renderer
	Logger   *zap.Logger

	AllowedOrigins      []string
	CookieSecure        bool
	TrustProxy          bool
	InstructionCacheTTL time.Duration
	SignInRatePerMin    int
	SignInBurst         int
}

// NewRouter assembles the portal: standard middleware, the access gate and
// every page.
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	store := d.Cache
	if store == nil {
		store = cache.NewMemoryStore()
	}

	instructions := billing.NewInstructionCache(d.API, store, d.InstructionCacheTTL, logger.Named("cache"))

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	if d.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(logger.Named("http")))
	r.Use(chimw.RedirectSlashes)
	r.Use(middleware.CORS(d.AllowedOrigins))
	r.Use(middleware.AccessGate(d.Policy, logger.Named("gate")))

	r.Get("/healthz", Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Handle("/static/*", http.StripPrefix("/static", render.Static()))

	authHandler := auth.NewHandler(d.API, d.Policy, d.Renderer, logger.Named("auth"), d.CookieSecure)
	auth.SetupRoutes(r, authHandler, middleware.RateLimit(d.SignInRatePerMin, d.SignInBurst, logger.Named("ratelimit")))

	r.Mount("/student", student.SetupRoutes(student.NewHandler(d.API, instructions, d.Renderer, d.Policy, logger.Named("student"))))
	r.Mount("/admin", admin.SetupRoutes(admin.NewHandler(d.API, d.Renderer, d.Policy, logger.Named("admin"))))
	r.Mount("/profile", profile.SetupRoutes(profile.NewHandler(d.API, d.Renderer, d.Policy, logger.Named("profile"))))
	r.Mount("/payment", payment.SetupRoutes(payment.NewHandler(d.API, d.Renderer, logger.Named("payment"))))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		d.Renderer.Error(w, r, http.StatusNotFound, "Halaman tidak ditemukan.")
	})

	return r
}

// Health is the liveness probe.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	_, _ = w.Write([]byte("ok\n"))
}

// Run serves srv until ctx is cancelled, then shuts it down within
// shutdownTimeout.
func Run(ctx context.Context, srv *http.Server, shutdownTimeout time.Duration, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("server is shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	logger.Info("server stopped gracefully")
	return nil
}
