package profile

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cakrabuana/payment-portal/internal/access"
	"github.com/cakrabuana/payment-portal/internal/billing"
	"github.com/cakrabuana/payment-portal/internal/render"
	"github.com/cakrabuana/payment-portal/internal/theme"
	"github.com/cakrabuana/payment-portal/internal/utils"
)

type API interface {
	Me(ctx context.Context, token string) (billing.Account, error)
}

type Handler struct {
	api      API
	renderer *render.Renderer
	policy   access.Policy
	logger   *zap.Logger
}

func NewHandler(api API, renderer *render.Renderer, policy access.Policy, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{api: api, renderer: renderer, policy: policy, logger: logger}
}

type View struct {
	render.Frame
	Account  billing.Account `json:"account"`
	RoleName string          `json:"role_name"`
}

func roleName(role access.Role) string {
	switch role {
	case access.RoleStaff:
		return "Staf Administrasi"
	case access.RoleStudent:
		return "Siswa / Wali Murid"
	default:
		return "-"
	}
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	s, ok := utils.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, h.policy.SignIn, http.StatusSeeOther)
		return
	}

	acct, err := h.api.Me(r.Context(), s.Token)
	if errors.Is(err, billing.ErrUnauthorized) {
		utils.ExpireSession(w, r, h.policy.SignIn)
		return
	}
	if err != nil {
		h.logger.Error("load account", zap.Error(err))
		h.renderer.Error(w, r, http.StatusBadGateway, billing.MessageOf(err, "Gagal memuat akun."))
		return
	}

	role := access.Role(acct.RoleID.String())
	h.renderer.Page(w, r, http.StatusOK, "profile", View{
		Frame:    render.NewFrame(r, "Setting Akun", access.Role(s.Role), theme.CakraBuana),
		Account:  acct,
		RoleName: roleName(role),
	})
}

// SetupRoutes serves the account page; mount it at /profile.
func SetupRoutes(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/", h.Show)
	return r
}
