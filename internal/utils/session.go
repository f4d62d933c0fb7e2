package utils

import (
	"net/http"
)

// Cookie names shared with the billing API's web clients.
const (
	TokenCookie = "cookieKey"
	RoleCookie  = "role"
)

// SetSessionCookies stores the billing API token and the account role.
func SetSessionCookies(w http.ResponseWriter, token, role string, secure bool) {
	for _, kv := range [][2]string{{TokenCookie, token}, {RoleCookie, role}} {
		http.SetCookie(w, &http.Cookie{
			Name:     kv[0],
			Value:    kv[1],
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   secure,
		})
	}
}

// ClearSessionCookies expires both session cookies.
func ClearSessionCookies(w http.ResponseWriter) {
	for _, name := range []string{TokenCookie, RoleCookie} {
		http.SetCookie(w, &http.Cookie{
			Name:   name,
			Value:  "",
			Path:   "/",
			MaxAge: -1,
		})
	}
}

// ExpireSession drops the session and sends the browser to signInPath. Used
// when the billing API no longer accepts the stored token.
func ExpireSession(w http.ResponseWriter, r *http.Request, signInPath string) {
	ClearSessionCookies(w)
	http.Redirect(w, r, signInPath, http.StatusSeeOther)
}

// CookieValue returns the named cookie's value, or "" when absent.
func CookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
