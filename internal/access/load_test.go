package access_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cakrabuana/payment-portal/internal/access"
)

func writePolicy(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "access.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadPolicy_EmptyPathReturnsDefaults(t *testing.T) {
	p, err := access.LoadPolicy("")
	require.NoError(t, err)
	assert.Equal(t, access.DefaultPolicy(), p)
}

func TestLoadPolicy_OverridesRoles(t *testing.T) {
	path := writePolicy(t, `
roles:
  - role: "1"
    home: /admin/dashboard
    prefixes: [/admin, /profile, /reports]
  - role: "2"
    home: /student/payment-lists
    prefixes: [/student, /profile]
`)

	p, err := access.LoadPolicy(path)
	require.NoError(t, err)

	assert.Equal(t, "/signin", p.SignIn)
	assert.Equal(t, "/payment", p.PaymentPrefix)
	assert.Equal(t, access.Pass, p.Evaluate("/reports/monthly", "tok", "1").Outcome)
	assert.Equal(t, "/student/payment-lists", p.Evaluate("/reports/monthly", "tok", "2").Location)
}

func TestLoadPolicy_RejectsInconsistentTables(t *testing.T) {
	path := writePolicy(t, `
roles:
  - role: "2"
    home: /dashboard
    prefixes: [/student]
`)

	_, err := access.LoadPolicy(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, access.ErrHomeNotPermitted)
}

func TestLoadPolicy_MissingFile(t *testing.T) {
	_, err := access.LoadPolicy(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestPolicyYAMLRoundTrip(t *testing.T) {
	raw, err := access.DefaultPolicy().YAML()
	require.NoError(t, err)

	path := writePolicy(t, string(raw))
	p, err := access.LoadPolicy(path)
	require.NoError(t, err)
	assert.Equal(t, access.DefaultPolicy(), p)
}
