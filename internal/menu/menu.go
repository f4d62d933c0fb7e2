package menu

import (
	"slices"
	"strings"

	"github.com/cakrabuana/payment-portal/internal/access"
)

type Item struct {
	Name  string        `json:"name"`
	Icon  string        `json:"icon"`
	Path  string        `json:"path"`
	Roles []access.Role `json:"-"`
}

// Main is the sidebar navigation. Sign Out points at the logout endpoint,
// which sits outside the access gate.
var Main = []Item{
	{Name: "Dashboard", Icon: "dashboard", Path: "/admin/dashboard", Roles: []access.Role{access.RoleStaff}},
	{Name: "Transaksi", Icon: "receipt", Path: "/admin/transactions", Roles: []access.Role{access.RoleStaff}},
	{Name: "Riwayat Tagihan", Icon: "receipt", Path: "/student/payment-lists", Roles: []access.Role{access.RoleStudent}},
	{Name: "Setting Akun", Icon: "settings", Path: "/profile", Roles: []access.Role{access.RoleStudent}},
	{Name: "Sign Out", Icon: "logout", Path: "/api/auth/logout", Roles: []access.Role{access.RoleStaff, access.RoleStudent}},
}

// ForRole returns the items role may see, in menu order.
func ForRole(role access.Role) []Item {
	var out []Item
	for _, item := range Main {
		if slices.Contains(item.Roles, role) {
			out = append(out, item)
		}
	}
	return out
}

// Active reports whether item should be highlighted for the current path.
func (i Item) Active(path string) bool {
	return path == i.Path || strings.HasPrefix(path, i.Path+"/")
}
