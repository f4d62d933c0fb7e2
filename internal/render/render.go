package render

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/cakrabuana/payment-portal/internal/access"
	"github.com/cakrabuana/payment-portal/internal/format"
	"github.com/cakrabuana/payment-portal/internal/menu"
	"github.com/cakrabuana/payment-portal/internal/theme"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Pages lists every template the renderer knows.
var Pages = []string{
	"signin",
	"payment_lists",
	"invoice_detail",
	"virtual_account",
	"payment_key",
	"notice",
	"dashboard",
	"transactions",
	"profile",
	"error",
}

// Alert is a dismissable banner shown above the page content.
type Alert struct {
	Kind    string `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Frame is the chrome shared by every page. Page views embed it.
type Frame struct {
	Title string      `json:"title"`
	Path  string      `json:"-"`
	Menu  []menu.Item `json:"menu,omitempty"`
	Theme theme.Theme `json:"theme"`
	Alert *Alert      `json:"alert,omitempty"`
}

// NewFrame builds the frame for a signed-in page.
func NewFrame(r *http.Request, title string, role access.Role, th theme.Theme) Frame {
	return Frame{
		Title: title,
		Path:  r.URL.Path,
		Menu:  menu.ForRole(role),
		Theme: th,
	}
}

// Notice is a one-message page: unavailable payment methods, bad links.
type Notice struct {
	Frame
	Heading   string `json:"heading"`
	Message   string `json:"message"`
	BackURL   string `json:"back_url,omitempty"`
	BackLabel string `json:"back_label,omitempty"`
}

type errorView struct {
	Frame
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Renderer executes the embedded page templates.
type Renderer struct {
	pages  map[string]*template.Template
	logger *zap.Logger
}

var funcs = template.FuncMap{
	"rupiah":  func(v any) string { return format.Rupiah(fmt.Sprint(v)) },
	"period":  format.Period,
	"dueDate": format.DueDate,
	"paidOn":  format.PaidOn,
	"add":     func(a, b int) int { return a + b },
}

func New(logger *zap.Logger) (*Renderer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(Pages)), logger: logger}
	for _, name := range Pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// WantsJSON reports whether the client asked for the JSON view model.
func WantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

// Page writes view through the named template, or as JSON when the client
// asked for it.
func (rd *Renderer) Page(w http.ResponseWriter, r *http.Request, status int, name string, view any) {
	if WantsJSON(r) {
		rd.JSON(w, status, view)
		return
	}

	t, ok := rd.pages[name]
	if !ok {
		rd.logger.Error("unknown template", zap.String("template", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", view); err != nil {
		rd.logger.Error("render template", zap.String("template", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (rd *Renderer) JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		rd.logger.Warn("encode json response", zap.Error(err))
	}
}

// Notice renders a notice page.
func (rd *Renderer) Notice(w http.ResponseWriter, r *http.Request, status int, n Notice) {
	if n.Title == "" {
		n.Title = n.Heading
	}
	rd.Page(w, r, status, "notice", n)
}

// Error renders the error page with message.
func (rd *Renderer) Error(w http.ResponseWriter, r *http.Request, status int, message string) {
	rd.Page(w, r, status, "error", errorView{
		Frame:   Frame{Title: http.StatusText(status), Theme: theme.Neutral},
		Status:  status,
		Message: message,
	})
}

// Static serves the embedded stylesheet and images.
func Static() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.FileServer(http.FS(sub))
}
