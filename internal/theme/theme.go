package theme

import "strings"

// Theme is the colour set a page is drawn with. Values are CSS colours.
type Theme struct {
	Name    string `json:"name"`
	Primary string `json:"primary"`
	Hover   string `json:"hover"`
	Light   string `json:"light"`
	Border  string `json:"border"`
	Pending string `json:"pending"`
}

var (
	CakraBuana = Theme{Name: "cakra-buana", Primary: "#007A33", Hover: "#006b2c", Light: "#f0fdf4", Border: "#dcfce7", Pending: "#c2410c"}
	Bintara    = Theme{Name: "bintara", Primary: "#1d4ed8", Hover: "#1e40af", Light: "#eff6ff", Border: "#dbeafe", Pending: "#a16207"}
	Neutral    = Theme{Name: "neutral", Primary: "#1f2937", Hover: "#111827", Light: "#f9fafb", Border: "#e5e7eb", Pending: "#c2410c"}
	// Portal is used on the public payment link pages.
	Portal = Theme{Name: "portal", Primary: "#A61C23", Hover: "#85161C", Light: "#fef2f2", Border: "#fee2e2", Pending: "#c2410c"}
)

// ForSchool picks the theme whose school name appears in name
// (case-insensitive), or fallback.
func ForSchool(name string, fallback Theme) Theme {
	school := strings.ToLower(name)
	switch {
	case strings.Contains(school, "cakra buana"):
		return CakraBuana
	case strings.Contains(school, "bintara"):
		return Bintara
	default:
		return fallback
	}
}
