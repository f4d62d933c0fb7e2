package profile_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cakrabuana/payment-portal/internal/access"
	"github.com/cakrabuana/payment-portal/internal/billing/billingtest"
	"github.com/cakrabuana/payment-portal/internal/profile"
	"github.com/cakrabuana/payment-portal/internal/render"
	"github.com/cakrabuana/payment-portal/internal/utils"
)

func serve(t *testing.T, token, role string) *httptest.ResponseRecorder {
	t.Helper()
	rd, err := render.New(zap.NewNop())
	require.NoError(t, err)

	r := chi.NewRouter()
	r.Mount("/profile", profile.SetupRoutes(profile.NewHandler(billingtest.Seeded(), rd, access.DefaultPolicy(), zap.NewNop())))

	req := httptest.NewRequest(http.MethodGet, "/profile", nil)
	req = req.WithContext(utils.WithSession(req.Context(), utils.Session{Token: token, Role: role}))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestShow_Student(t *testing.T) {
	rec := serve(t, billingtest.StudentToken, "2")

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "wali@cakrabuana.sch.id")
	assert.Contains(t, body, "Siswa / Wali Murid")
	assert.Contains(t, body, `href="/api/auth/logout"`)
}

func TestShow_Staff(t *testing.T) {
	rec := serve(t, billingtest.StaffToken, "1")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Staf Administrasi")
}

func TestShow_StaleToken(t *testing.T) {
	rec := serve(t, "gone", "2")
	assert.Equal(t, "/signin", rec.Header().Get("Location"))
}
