package access

import (
	"errors"
	"fmt"
	"strings"
)

// Role identifies an account type as issued by the billing API ("role_id").
type Role string

const (
	RoleStaff   Role = "1"
	RoleStudent Role = "2"
)

// Outcome is the navigation result of evaluating a request against a Policy.
type Outcome int

const (
	Pass Outcome = iota
	RedirectSignIn
	RedirectAdminSignIn
	RedirectHome
)

func (o Outcome) String() string {
	switch o {
	case Pass:
		return "pass"
	case RedirectSignIn:
		return "signin"
	case RedirectAdminSignIn:
		return "admin_signin"
	case RedirectHome:
		return "home"
	default:
		return "unknown"
	}
}

// Decision is what the gate tells the caller to do with a request.
// Location is empty when Outcome is Pass.
type Decision struct {
	Outcome  Outcome `json:"outcome"`
	Location string  `json:"location,omitempty"`
}

// Redirects reports whether the decision sends the client elsewhere.
func (d Decision) Redirects() bool { return d.Outcome != Pass }

// Class is the route classification of a request path.
type Class int

const (
	ClassRoot Class = iota
	ClassPublic
	ClassPayment
	ClassRestricted
)

func (c Class) String() string {
	switch c {
	case ClassRoot:
		return "root"
	case ClassPublic:
		return "public"
	case ClassPayment:
		return "payment"
	default:
		return "restricted"
	}
}

// RoleRoute binds a role to its landing page and the path prefixes it may view.
type RoleRoute struct {
	Role     Role     `yaml:"role" json:"role"`
	Home     string   `yaml:"home" json:"home"`
	Prefixes []string `yaml:"prefixes" json:"prefixes"`
}

// Permits reports whether path starts with one of the route's prefixes.
func (rr RoleRoute) Permits(path string) bool {
	for _, prefix := range rr.Prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Policy holds the route tables the access gate evaluates against.
// Roles is ordered; the first entry for a role wins.
type Policy struct {
	SignIn        string      `yaml:"signin" json:"signin"`
	AdminSignIn   string      `yaml:"admin_signin" json:"admin_signin"`
	AdminPrefix   string      `yaml:"admin_prefix" json:"admin_prefix"`
	PaymentPrefix string      `yaml:"payment_prefix" json:"payment_prefix"`
	Public        []string    `yaml:"public" json:"public"`
	Roles         []RoleRoute `yaml:"roles" json:"roles"`
	// Excluded paths never reach the gate (assets, health, the JSON API).
	Excluded []string `yaml:"excluded" json:"excluded"`
}

// DefaultPolicy returns the portal's built-in route tables.
func DefaultPolicy() Policy {
	return Policy{
		SignIn:        "/signin",
		AdminSignIn:   "/admin/signin",
		AdminPrefix:   "/admin",
		PaymentPrefix: "/payment",
		Public:        []string{"/signin", "/admin/signin"},
		Roles: []RoleRoute{
			{Role: RoleStaff, Home: "/admin/dashboard", Prefixes: []string{"/admin", "/profile"}},
			{Role: RoleStudent, Home: "/student/payment-lists", Prefixes: []string{"/student", "/profile"}},
		},
		Excluded: []string{"/api", "/static", "/images", "/favicon.ico", "/metrics", "/healthz"},
	}
}

var (
	ErrMissingSignIn     = errors.New("access: signin and admin_signin paths are required")
	ErrMissingPayment    = errors.New("access: payment_prefix is required")
	ErrSignInNotPublic   = errors.New("access: signin paths must be listed as public")
	ErrDuplicateRole     = errors.New("access: role listed more than once")
	ErrHomeNotPermitted  = errors.New("access: role home is outside its own prefixes")
	ErrHomeIsPublic      = errors.New("access: role home must not be a public path")
	ErrRelativeRoutePath = errors.New("access: route paths must start with '/'")
)

// Validate checks that the tables are internally consistent, so that following
// the gate's own redirects always settles on a page that passes.
func (p Policy) Validate() error {
	if p.SignIn == "" || p.AdminSignIn == "" {
		return ErrMissingSignIn
	}
	if p.PaymentPrefix == "" {
		return ErrMissingPayment
	}
	for _, path := range append([]string{p.SignIn, p.AdminSignIn, p.AdminPrefix, p.PaymentPrefix}, p.Public...) {
		if path != "" && !strings.HasPrefix(path, "/") {
			return fmt.Errorf("%w: %q", ErrRelativeRoutePath, path)
		}
	}
	if !p.isPublic(p.SignIn) || !p.isPublic(p.AdminSignIn) {
		return ErrSignInNotPublic
	}

	seen := make(map[Role]struct{}, len(p.Roles))
	for _, rr := range p.Roles {
		if _, dup := seen[rr.Role]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateRole, rr.Role)
		}
		seen[rr.Role] = struct{}{}

		if !strings.HasPrefix(rr.Home, "/") {
			return fmt.Errorf("%w: home %q", ErrRelativeRoutePath, rr.Home)
		}
		if p.isPublic(rr.Home) {
			return fmt.Errorf("%w: role %q", ErrHomeIsPublic, rr.Role)
		}
		if !rr.Permits(rr.Home) && !strings.HasPrefix(rr.Home, p.PaymentPrefix) {
			return fmt.Errorf("%w: role %q home %q", ErrHomeNotPermitted, rr.Role, rr.Home)
		}
	}
	return nil
}

// Classify places path in exactly one route class.
// Order is root, public, payment, restricted.
func (p Policy) Classify(path string) Class {
	switch {
	case path == "/" || path == "":
		return ClassRoot
	case p.isPublic(path):
		return ClassPublic
	case strings.HasPrefix(path, p.PaymentPrefix):
		return ClassPayment
	default:
		return ClassRestricted
	}
}

// Excludes reports whether path bypasses the gate entirely.
func (p Policy) Excludes(path string) bool {
	for _, prefix := range p.Excluded {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Route looks up the table entry for role.
func (p Policy) Route(role Role) (RoleRoute, bool) {
	if role == "" {
		return RoleRoute{}, false
	}
	for _, rr := range p.Roles {
		if rr.Role == role {
			return rr, true
		}
	}
	return RoleRoute{}, false
}

// Home returns the landing page for role, or the general sign-in page when
// the role is not in the table.
func (p Policy) Home(role Role) string {
	if rr, ok := p.Route(role); ok {
		return rr.Home
	}
	return p.SignIn
}

// Evaluate decides what to do with a request for path given the session token
// and role read from the caller's cookies. It performs no I/O.
func (p Policy) Evaluate(path, token, role string) Decision {
	class := p.Classify(path)
	if class == ClassRoot {
		return Decision{Outcome: RedirectSignIn, Location: p.SignIn}
	}

	if token == "" {
		switch {
		case class == ClassPublic || class == ClassPayment:
			return Decision{Outcome: Pass}
		case p.AdminPrefix != "" && strings.HasPrefix(path, p.AdminPrefix):
			return Decision{Outcome: RedirectAdminSignIn, Location: p.AdminSignIn}
		default:
			return Decision{Outcome: RedirectSignIn, Location: p.SignIn}
		}
	}

	route, known := p.Route(Role(role))
	switch class {
	case ClassPublic:
		if known {
			return Decision{Outcome: RedirectHome, Location: route.Home}
		}
		// A stale token without a usable role must still be able to sign in again.
		if path == p.SignIn {
			return Decision{Outcome: Pass}
		}
		return Decision{Outcome: RedirectSignIn, Location: p.SignIn}
	case ClassPayment:
		return Decision{Outcome: Pass}
	}

	if !known {
		return Decision{Outcome: RedirectSignIn, Location: p.SignIn}
	}
	if route.Permits(path) {
		return Decision{Outcome: Pass}
	}
	return Decision{Outcome: RedirectHome, Location: route.Home}
}

func (p Policy) isPublic(path string) bool {
	for _, public := range p.Public {
		if path == public {
			return true
		}
	}
	return false
}
