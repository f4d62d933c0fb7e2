package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/cakrabuana/payment-portal/internal/access"
	"github.com/cakrabuana/payment-portal/internal/billing"
	"github.com/cakrabuana/payment-portal/internal/render"
	"github.com/cakrabuana/payment-portal/internal/theme"
	"github.com/cakrabuana/payment-portal/internal/utils"
)

// API is the part of the billing client sign-in needs.
type API interface {
	Login(ctx context.Context, in billing.LoginRequest) (billing.Session, error)
	Me(ctx context.Context, token string) (billing.Account, error)
}

type Handler struct {
	api           API
	policy        access.Policy
	renderer      *render.Renderer
	validate      *validator.Validate
	logger        *zap.Logger
	secureCookies bool
}

func NewHandler(api API, policy access.Policy, renderer *render.Renderer, logger *zap.Logger, secureCookies bool) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		api:           api,
		policy:        policy,
		renderer:      renderer,
		validate:      newValidator(),
		logger:        logger,
		secureCookies: secureCookies,
	}
}

// SignInView is the sign-in page model.
type SignInView struct {
	render.Frame
	Heading string            `json:"heading"`
	Action  string            `json:"action"`
	Email   string            `json:"email"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// SignedIn is the JSON answer to a successful sign-in.
type SignedIn struct {
	Role     string `json:"role"`
	Redirect string `json:"redirect"`
}

var errLoginFailed = &render.Alert{
	Kind:    "error",
	Title:   "Login Gagal",
	Message: "Email atau password yang Anda masukkan salah.",
}

func (h *Handler) view(admin bool) SignInView {
	v := SignInView{
		Frame:   render.Frame{Title: "Sign In", Theme: theme.CakraBuana},
		Heading: "Welcome Back!",
		Action:  h.policy.SignIn,
	}
	if admin {
		v.Heading = "Admin Portal"
		v.Action = h.policy.AdminSignIn
	}
	return v
}

func (h *Handler) SignInPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Page(w, r, http.StatusOK, "signin", h.view(false))
}

func (h *Handler) AdminSignInPage(w http.ResponseWriter, r *http.Request) {
	h.renderer.Page(w, r, http.StatusOK, "signin", h.view(true))
}

func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	h.signIn(w, r, h.view(false))
}

func (h *Handler) AdminSignIn(w http.ResponseWriter, r *http.Request) {
	h.signIn(w, r, h.view(true))
}

func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, view SignInView) {
	form, err := readForm(r)
	if err != nil {
		h.renderer.Error(w, r, http.StatusBadRequest, "Invalid Request Format")
		return
	}
	view.Email = form.Email

	if errs := validateForm(h.validate, form); len(errs) > 0 {
		view.Errors = errs
		h.renderer.Page(w, r, http.StatusUnprocessableEntity, "signin", view)
		return
	}

	session, err := h.api.Login(r.Context(), billing.LoginRequest{
		Email:     form.Email,
		Password:  form.Password,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		status := http.StatusUnauthorized
		view.Alert = errLoginFailed
		var apiErr *billing.APIError
		if !errors.Is(err, billing.ErrUnauthorized) && !errors.As(err, &apiErr) {
			status = http.StatusBadGateway
			view.Alert = &render.Alert{Kind: "error", Title: "Login Gagal", Message: "Terjadi kesalahan koneksi."}
			h.logger.Error("login request failed", zap.Error(err))
		}
		h.renderer.Page(w, r, status, "signin", view)
		return
	}

	role := session.User.RoleID.String()
	if acct, err := h.api.Me(r.Context(), session.Token); err == nil {
		role = acct.RoleID.String()
	} else {
		h.logger.Warn("auth/me after login failed, using login role", zap.Error(err))
	}

	utils.SetSessionCookies(w, session.Token, role, h.secureCookies)
	home := h.policy.Home(access.Role(role))
	h.logger.Info("signed in", zap.String("role", role), zap.String("home", home))

	if render.WantsJSON(r) {
		h.renderer.JSON(w, http.StatusOK, SignedIn{Role: role, Redirect: home})
		return
	}
	http.Redirect(w, r, home, http.StatusSeeOther)
}

// Logout drops both session cookies and returns to the sign-in page.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	utils.ExpireSession(w, r, h.policy.SignIn)
}

func readForm(r *http.Request) (SignInForm, error) {
	var f SignInForm
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err := json.NewDecoder(r.Body).Decode(&f)
		f.Email = strings.TrimSpace(f.Email)
		return f, err
	}
	if err := r.ParseForm(); err != nil {
		return f, err
	}
	f.Email = strings.TrimSpace(r.PostForm.Get("email"))
	f.Password = r.PostForm.Get("password")
	return f, nil
}
