package payment

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/cakrabuana/payment-portal/internal/billing"
	"github.com/cakrabuana/payment-portal/internal/render"
	"github.com/cakrabuana/payment-portal/internal/theme"
)

type API interface {
	DetailByKey(ctx context.Context, key string) (billing.KeyedInvoice, error)
}

// Handler serves the public payment links. Nothing here reads the session.
type Handler struct {
	api      API
	renderer *render.Renderer
	logger   *zap.Logger
}

func NewHandler(api API, renderer *render.Renderer, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{api: api, renderer: renderer, logger: logger}
}

type KeyView struct {
	render.Frame
	Key     string               `json:"key"`
	Invoice billing.KeyedInvoice `json:"invoice"`
	Paid    bool                 `json:"paid"`
}

func frame(title string) render.Frame {
	return render.Frame{Title: title, Theme: theme.Portal}
}

func (h *Handler) notice(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.renderer.Notice(w, r, status, render.Notice{
		Frame:   frame("Pembayaran"),
		Heading: "Pembayaran",
		Message: message,
	})
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) (string, billing.KeyedInvoice, bool) {
	key := strings.TrimSpace(chi.URLParam(r, "key"))
	if key == "" {
		h.notice(w, r, http.StatusNotFound, "Link pembayaran tidak valid.")
		return "", billing.KeyedInvoice{}, false
	}

	inv, err := h.api.DetailByKey(r.Context(), key)
	if err != nil {
		var apiErr *billing.APIError
		if errors.As(err, &apiErr) {
			h.notice(w, r, http.StatusNotFound, billing.MessageOf(err, "Data tagihan tidak ditemukan."))
			return "", billing.KeyedInvoice{}, false
		}
		h.logger.Error("detail by key failed", zap.Error(err))
		h.notice(w, r, http.StatusBadGateway, "Terjadi kesalahan koneksi.")
		return "", billing.KeyedInvoice{}, false
	}
	return key, inv, true
}

// Show renders the invoice behind a payment link.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	key, inv, ok := h.load(w, r)
	if !ok {
		return
	}
	h.renderer.Page(w, r, http.StatusOK, "payment_key", KeyView{
		Frame:   frame("Tagihan " + inv.StudentName),
		Key:     key,
		Invoice: inv,
		Paid:    inv.Paid(),
	})
}

// Pay forwards to the link's checkout URL.
func (h *Handler) Pay(w http.ResponseWriter, r *http.Request) {
	key, inv, ok := h.load(w, r)
	if !ok {
		return
	}
	if inv.Paid() {
		http.Redirect(w, r, "/payment/"+key, http.StatusSeeOther)
		return
	}
	action := inv.PayAction()
	if action.Kind != billing.PayGateway {
		h.notice(w, r, http.StatusOK, "Link pembayaran belum tersedia, silakan hubungi admin.")
		return
	}
	http.Redirect(w, r, action.URL, http.StatusSeeOther)
}

// Missing answers /payment without a key.
func (h *Handler) Missing(w http.ResponseWriter, r *http.Request) {
	h.notice(w, r, http.StatusNotFound, "Link pembayaran tidak valid.")
}
