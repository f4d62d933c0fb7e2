package student

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

const listPath = "/student/payment-lists"

type API interface {
	History(ctx context.Context, token string, q billing.HistoryQuery) (billing.HistoryPage, error)
	InvoiceDetail(ctx context.Context, token, invoiceNo string) (billing.InvoiceDetail, error)
}

// InstructionSource serves the virtual account instructions, usually through
// billing.InstructionCache.
type InstructionSource interface {
	Get(ctx context.Context, token string) ([]billing.InstructionMethod, error)
}

type Handler struct {
	api          API
	instructions InstructionSource
	renderer     *render.Renderer
	policy       access.Policy
	logger       *zap.Logger
}

func NewHandler(api API, instructions InstructionSource, renderer *render.Renderer, policy access.Policy, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{api: api, instructions: instructions, renderer: renderer, policy: policy, logger: logger}
}

// Row is one invoice in the list, with the id its detail URL uses.
type Row struct {
	ID string `json:"id"`
	billing.Transaction
}

type ListView struct {
	render.Frame
	SchoolName string               `json:"school_name"`
	Rows       []Row                `json:"rows"`
	PageInfo   billing.PageInfo     `json:"page_info"`
	Query      billing.HistoryQuery `json:"-"`
	PrevURL    string               `json:"prev_url,omitempty"`
	NextURL    string               `json:"next_url,omitempty"`
}

type DetailView struct {
	render.Frame
	ID       string                `json:"id"`
	Invoice  billing.InvoiceDetail `json:"invoice"`
	State    billing.State         `json:"state"`
	PayLabel string                `json:"pay_label"`
}

type VirtualAccountView struct {
	render.Frame
	ID                string                      `json:"id"`
	InvoiceNo         string                      `json:"invoice_no"`
	StudentName       string                      `json:"student_name"`
	Total             billing.FlexString          `json:"total"`
	VirtualAccount    string                      `json:"virtual_account"`
	Instructions      []billing.InstructionMethod `json:"instructions"`
	InstructionsError string                      `json:"instructions_error,omitempty"`
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (utils.Session, bool) {
	s, ok := utils.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, h.policy.SignIn, http.StatusSeeOther)
	}
	return s, ok
}

// fail maps a billing error to a response. A rejected token ends the session.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	if errors.Is(err, billing.ErrUnauthorized) {
		utils.ExpireSession(w, r, h.policy.SignIn)
		return
	}
	var apiErr *billing.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		h.renderer.Error(w, r, http.StatusNotFound, billing.MessageOf(err, fallback))
		return
	}
	h.logger.Error("billing call failed", zap.String("path", r.URL.Path), zap.Error(err))
	h.renderer.Error(w, r, http.StatusBadGateway, billing.MessageOf(err, fallback))
}

func pageURL(q billing.HistoryQuery, page int) string {
	return listPath + "?" + q.WithPage(page).Values().Encode()
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}

	q := billing.ParseHistoryQuery(r.URL.Query())
	page, err := h.api.History(r.Context(), s.Token, q)
	if err != nil {
		h.fail(w, r, err, "Gagal memuat data transaksi.")
		return
	}

	view := ListView{
		Frame:      render.NewFrame(r, "Riwayat Tagihan", access.Role(s.Role), theme.ForSchool(page.SchoolName, theme.CakraBuana)),
		SchoolName: page.SchoolName,
		Rows:       make([]Row, 0, len(page.Items)),
		PageInfo:   page.PageInfo,
		Query:      q,
	}
	for _, tx := range page.Items {
		view.Rows = append(view.Rows, Row{ID: EncodeInvoiceID(tx.InvoiceNo), Transaction: tx})
	}
	if page.PageInfo.HasPrev() {
		view.PrevURL = pageURL(q, page.PageInfo.CurrentPage-1)
	}
	if page.PageInfo.HasNext() {
		view.NextURL = pageURL(q, page.PageInfo.CurrentPage+1)
	}

	h.renderer.Page(w, r, http.StatusOK, "payment_lists", view)
}

// loadInvoice decodes the {id} parameter and fetches the invoice it names.
func (h *Handler) loadInvoice(w http.ResponseWriter, r *http.Request, s utils.Session) (string, billing.InvoiceDetail, bool) {
	id := chi.URLParam(r, "id")
	invoiceNo, err := DecodeInvoiceID(id)
	if err != nil {
		h.renderer.Error(w, r, http.StatusBadRequest, "ID Tagihan tidak valid")
		return "", billing.InvoiceDetail{}, false
	}

	detail, err := h.api.InvoiceDetail(r.Context(), s.Token, invoiceNo)
	if err != nil {
		h.fail(w, r, err, "Gagal memuat detail.")
		return "", billing.InvoiceDetail{}, false
	}
	return EncodeInvoiceID(invoiceNo), detail, true
}

func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	id, detail, ok := h.loadInvoice(w, r, s)
	if !ok {
		return
	}

	label := "Bayar Sekarang"
	if detail.PayAction().Kind == billing.PayVirtualAccount {
		label = "Lihat Virtual Account"
	}

	h.renderer.Page(w, r, http.StatusOK, "invoice_detail", DetailView{
		Frame:    render.NewFrame(r, "Detail Tagihan", access.Role(s.Role), theme.ForSchool(detail.Bill.School, theme.Neutral)),
		ID:       id,
		Invoice:  detail,
		State:    detail.State(),
		PayLabel: label,
	})
}

// Pay runs the invoice's pay action: a gateway redirect, the virtual account
// page, or a notice when neither exists. Paid invoices go back to the detail.
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	id, detail, ok := h.loadInvoice(w, r, s)
	if !ok {
		return
	}
	detailURL := listPath + "/" + id

	if detail.State() == billing.Paid {
		http.Redirect(w, r, detailURL, http.StatusSeeOther)
		return
	}

	th := theme.ForSchool(detail.Bill.School, theme.Neutral)
	action := detail.PayAction()
	switch action.Kind {
	case billing.PayGateway:
		h.logger.Info("redirecting to payment gateway", zap.String("invoice", detail.InvoiceNo))
		http.Redirect(w, r, action.URL, http.StatusSeeOther)

	case billing.PayVirtualAccount:
		view := VirtualAccountView{
			Frame:          render.NewFrame(r, "Virtual Account", access.Role(s.Role), th),
			ID:             id,
			InvoiceNo:      detail.InvoiceNo,
			StudentName:    detail.StudentName,
			Total:          detail.Total,
			VirtualAccount: action.VirtualAccount,
		}
		methods, err := h.instructions.Get(r.Context(), s.Token)
		switch {
		case errors.Is(err, billing.ErrUnauthorized):
			utils.ExpireSession(w, r, h.policy.SignIn)
			return
		case err != nil:
			h.logger.Warn("load payment instructions", zap.Error(err))
			view.InstructionsError = "Gagal memuat instruksi pembayaran."
		default:
			view.Instructions = methods
		}
		h.renderer.Page(w, r, http.StatusOK, "virtual_account", view)

	default:
		h.renderer.Notice(w, r, http.StatusOK, render.Notice{
			Frame:     render.NewFrame(r, "Pembayaran", access.Role(s.Role), th),
			Heading:   "Pembayaran",
			Message:   "Metode pembayaran belum tersedia.",
			BackURL:   detailURL,
			BackLabel: "Kembali ke detail",
		})
	}
}
