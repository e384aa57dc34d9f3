package middleware

import (
	"net/http"
	"net/url"

	"tripmate/templates"
)

// SessionState is what the guard needs to know about the session.
type SessionState interface {
	IsLoading() bool
	IsAuthenticated() bool
}

// RouteGuard protects pages that need a logged-in user. It is evaluated on
// every request, so a logout takes effect on the very next page.
func RouteGuard(session SessionState, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session.IsLoading() {
				WriteWaiting(w)
				return
			}
			if !session.IsAuthenticated() {
				http.Redirect(w, r, LoginURL(loginPath, r.URL.RequestURI()), http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// WriteWaiting renders the neutral page shown while the session is still
// being resolved. The browser retries on its own.
func WriteWaiting(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "1")
	w.Header().Set("Refresh", "1")
	w.Header().Set("Cache-Control", "no-store")
	templates.Render(w, http.StatusServiceUnavailable, "waiting.html", templates.Page{Title: "Loading"})
}

// LoginURL is loginPath carrying the page to return to after login.
func LoginURL(loginPath, next string) string {
	if next == "" {
		return loginPath
	}
	return loginPath + "?next=" + url.QueryEscape(next)
}

// SafeNext returns next if it is a local path, otherwise fallback.
func SafeNext(next, fallback string) string {
	if next == "" || next[0] != '/' || (len(next) > 1 && (next[1] == '/' || next[1] == '\\')) {
		return fallback
	}
	return next
}
