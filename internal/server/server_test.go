package server_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cakrabuana/payment-portal/internal/access"
	"github.com/cakrabuana/payment-portal/internal/billing"
	"github.com/cakrabuana/payment-portal/internal/billing/billingtest"
	"github.com/cakrabuana/payment-portal/internal/render"
	"github.com/cakrabuana/payment-portal/internal/server"
	"github.com/cakrabuana/payment-portal/internal/student"
	"github.com/cakrabuana/payment-portal/internal/utils"
)

func newPortal(t *testing.T, burst int) http.Handler {
	t.Helper()
	return newPortalWith(t, billingtest.Seeded(), burst, false)
}

func newPortalWith(t *testing.T, api *billingtest.Fake, burst int, trustProxy bool) http.Handler {
	t.Helper()
	rd, err := render.New(zap.NewNop())
	require.NoError(t, err)

	return server.NewRouter(server.Deps{
		API:                 api,
		TrustProxy:          trustProxy,
		Policy:              access.DefaultPolicy(),
		Renderer:            rd,
		Logger:              zap.NewNop(),
		AllowedOrigins:      []string{"http://localhost:3000"},
		InstructionCacheTTL: time.Minute,
		SignInRatePerMin:    60,
		SignInBurst:         burst,
	})
}

type client struct {
	t       *testing.T
	h       http.Handler
	cookies map[string]string
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	for name, value := range c.cookies {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
	rec := httptest.NewRecorder()
	c.h.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
		} else {
			c.cookies[ck.Name] = ck.Value
		}
	}
	return rec
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) signIn(path, email, password string) *httptest.ResponseRecorder {
	form := url.Values{"email": {email}, "password": {password}}
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

func newClient(t *testing.T, h http.Handler) *client {
	return &client{t: t, h: h, cookies: map[string]string{}}
}

func TestRootGoesToSignIn(t *testing.T) {
	c := newClient(t, newPortal(t, 5))

	rec := c.get("/")
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/signin", rec.Header().Get("Location"))

	rec = c.get("/signin")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestStudentJourney(t *testing.T) {
	c := newClient(t, newPortal(t, 5))

	rec := c.signIn("/signin", "wali@cakrabuana.sch.id", "siswa123")
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/student/payment-lists", rec.Header().Get("Location"))
	assert.Equal(t, billingtest.StudentToken, c.cookies[utils.TokenCookie])

	rec = c.get("/student/payment-lists")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "INV-001")

	// Signed-in users never see the sign-in pages.
	rec = c.get("/signin")
	assert.Equal(t, "/student/payment-lists", rec.Header().Get("Location"))

	// Staff pages send a student home.
	rec = c.get("/admin/dashboard")
	assert.Equal(t, http.StatusTemporaryRedirect, rec.Code)
	assert.Equal(t, "/student/payment-lists", rec.Header().Get("Location"))

	rec = c.get("/profile")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.get("/api/auth/logout")
	assert.Equal(t, "/signin", rec.Header().Get("Location"))
	assert.Empty(t, c.cookies[utils.TokenCookie])

	rec = c.get("/student/payment-lists")
	assert.Equal(t, "/signin", rec.Header().Get("Location"))
}

func TestStaffJourney(t *testing.T) {
	c := newClient(t, newPortal(t, 5))

	rec := c.get("/admin/transactions")
	assert.Equal(t, "/admin/signin", rec.Header().Get("Location"))

	rec = c.signIn("/admin/signin", "tu@cakrabuana.sch.id", "admin123")
	require.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))

	rec = c.get("/admin/dashboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Tata Usaha")

	rec = c.get("/admin/transactions")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = c.get("/student/payment-lists")
	assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))

	rec = c.get("/admin/signin")
	assert.Equal(t, "/admin/dashboard", rec.Header().Get("Location"))
}

func TestPaymentLinkIsPublic(t *testing.T) {
	c := newClient(t, newPortal(t, 5))

	rec := c.get("/payment/abc123")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "INV-101")

	c.cookies[utils.TokenCookie] = "whatever"
	c.cookies[utils.RoleCookie] = "9"
	rec = c.get("/payment/abc123/pay")
	assert.Equal(t, "https://checkout.example/pay/101", rec.Header().Get("Location"))
}

func TestStaleRoleCanSignInAgain(t *testing.T) {
	c := newClient(t, newPortal(t, 5))
	c.cookies[utils.TokenCookie] = "leftover"

	rec := c.get("/student/payment-lists")
	assert.Equal(t, "/signin", rec.Header().Get("Location"))

	rec = c.get("/signin")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTrailingSlashIsNormalised(t *testing.T) {
	c := newClient(t, newPortal(t, 5))

	rec := c.get("/student/payment-lists/")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.True(t, strings.HasSuffix(rec.Header().Get("Location"), "/student/payment-lists"), rec.Header().Get("Location"))
}

func TestOperationalEndpointsBypassGate(t *testing.T) {
	c := newClient(t, newPortal(t, 5))

	rec := c.get("/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)

	c.get("/")
	rec = c.get("/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "portal_gate_decisions_total")

	rec = c.get("/static/app.css")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignInIsRateLimited(t *testing.T) {
	c := newClient(t, newPortal(t, 1))

	rec := c.signIn("/signin", "wali@cakrabuana.sch.id", "salah123")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = c.signIn("/signin", "wali@cakrabuana.sch.id", "salah123")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func forwardedSignIn(h http.Handler, forwardedFor string) int {
	form := url.Values{"email": {"wali@cakrabuana.sch.id"}, "password": {"salah123"}}
	req := httptest.NewRequest(http.MethodPost, "/signin", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.RemoteAddr = "192.0.2.10:5000"
	req.Header.Set("X-Forwarded-For", forwardedFor)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func TestSignInLimitIgnoresForwardedForByDefault(t *testing.T) {
	api := billingtest.Seeded()
	h := newPortalWith(t, api, 1, false)

	var codes []int
	for i := 0; i < 5; i++ {
		codes = append(codes, forwardedSignIn(h, fmt.Sprintf("10.0.0.%d", i)))
	}

	assert.Equal(t, []int{401, 429, 429, 429, 429}, codes)
	assert.Equal(t, 1, api.CallCount("Login"))
}

func TestSignInLimitUsesForwardedForBehindTrustedProxy(t *testing.T) {
	api := billingtest.Seeded()
	h := newPortalWith(t, api, 1, true)

	assert.Equal(t, http.StatusUnauthorized, forwardedSignIn(h, "203.0.113.1"))
	assert.Equal(t, http.StatusTooManyRequests, forwardedSignIn(h, "203.0.113.1"))
	assert.Equal(t, http.StatusUnauthorized, forwardedSignIn(h, "203.0.113.2"))
	assert.Equal(t, 2, api.CallCount("Login"))
}

func TestInvoiceIDSurvivesSlashNormalisation(t *testing.T) {
	api := billingtest.Seeded()
	api.Invoices["F0?"] = billing.InvoiceDetail{Transaction: billing.Transaction{InvoiceNo: "F0?", Total: "1000", PaymentStatus: "Belum Lunas"}}

	c := newClient(t, newPortalWith(t, api, 5, false))
	c.cookies[utils.TokenCookie] = billingtest.StudentToken
	c.cookies[utils.RoleCookie] = "2"

	rec := c.get("/student/payment-lists/" + student.EncodeInvoiceID("F0?"))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "F0?")
}

func TestUnknownPageForSignedInUser(t *testing.T) {
	c := newClient(t, newPortal(t, 5))
	c.cookies[utils.TokenCookie] = billingtest.StaffToken
	c.cookies[utils.RoleCookie] = "1"

	rec := c.get("/admin/nothing-here")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Halaman tidak ditemukan.")
}
