package admin

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/cakrabuana/payment-portal/internal/access"
	"github.com/cakrabuana/payment-portal/internal/billing"
	"github.com/cakrabuana/payment-portal/internal/render"
	"github.com/cakrabuana/payment-portal/internal/theme"
	"github.com/cakrabuana/payment-portal/internal/utils"
)

const transactionsPath = "/admin/transactions"

type API interface {
	Me(ctx context.Context, token string) (billing.Account, error)
	History(ctx context.Context, token string, q billing.HistoryQuery) (billing.HistoryPage, error)
}

// Handler serves the staff pages.
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

type DashboardView struct {
	render.Frame
	Account billing.Account `json:"account"`
}

type TransactionsView struct {
	render.Frame
	SchoolName string                `json:"school_name"`
	Items      []billing.Transaction `json:"items"`
	PageInfo   billing.PageInfo      `json:"page_info"`
	Query      billing.HistoryQuery  `json:"-"`
	PrevURL    string                `json:"prev_url,omitempty"`
	NextURL    string                `json:"next_url,omitempty"`
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if errors.Is(err, billing.ErrUnauthorized) {
		utils.ExpireSession(w, r, h.policy.AdminSignIn)
		return
	}
	h.logger.Error("billing call failed", zap.String("path", r.URL.Path), zap.Error(err))
	h.renderer.Error(w, r, http.StatusBadGateway, billing.MessageOf(err, fallback))
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	s, ok := utils.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, h.policy.AdminSignIn, http.StatusSeeOther)
		return
	}

	acct, err := h.api.Me(r.Context(), s.Token)
	if err != nil {
		h.fail(w, r, err, "Gagal memuat akun.")
		return
	}

	h.renderer.Page(w, r, http.StatusOK, "dashboard", DashboardView{
		Frame:   render.NewFrame(r, "Dashboard", access.Role(s.Role), theme.CakraBuana),
		Account: acct,
	})
}

func (h *Handler) Transactions(w http.ResponseWriter, r *http.Request) {
	s, ok := utils.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, h.policy.AdminSignIn, http.StatusSeeOther)
		return
	}

	q := billing.ParseHistoryQuery(r.URL.Query())
	page, err := h.api.History(r.Context(), s.Token, q)
	if err != nil {
		h.fail(w, r, err, "Gagal memuat data transaksi.")
		return
	}

	view := TransactionsView{
		Frame:      render.NewFrame(r, "Transaksi", access.Role(s.Role), theme.ForSchool(page.SchoolName, theme.CakraBuana)),
		SchoolName: page.SchoolName,
		Items:      page.Items,
		PageInfo:   page.PageInfo,
		Query:      q,
	}
	if page.PageInfo.HasPrev() {
		view.PrevURL = transactionsPath + "?" + q.WithPage(page.PageInfo.CurrentPage-1).Values().Encode()
	}
	if page.PageInfo.HasNext() {
		view.NextURL = transactionsPath + "?" + q.WithPage(page.PageInfo.CurrentPage+1).Values().Encode()
	}
	h.renderer.Page(w, r, http.StatusOK, "transactions", view)
}
