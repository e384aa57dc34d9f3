package middleware

import (
	stderrors "errors"
	"log"
	"net/http"
	"runtime/debug"

	"tripmate/templates"
	"tripmate/utils/errors"
)

// ErrorData is rendered by error.html.
type ErrorData struct {
	Status  int
	Message string
}

// ErrorMiddleware turns a panic into the error page.
func ErrorMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Printf("Panic recovered on %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
					WriteError(w, errors.ErrInternal)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// WriteError renders err as the error page with its status.
func WriteError(w http.ResponseWriter, err error) {
	var apiErr *errors.APIError
	if !stderrors.As(err, &apiErr) {
		apiErr = errors.Wrap(err, "UNKNOWN_ERROR", errors.GenericMessage, errors.ErrInternal.Status)
	}
	if apiErr.Status >= 500 {
		log.Printf("Server error %s (Details: %s)", apiErr.Error(), apiErr.Details)
	}
	templates.Render(w, apiErr.Status, "error.html", templates.Page{
		Title: http.StatusText(apiErr.Status),
		Data:  ErrorData{Status: apiErr.Status, Message: apiErr.Message},
	})
}

// NotFound sends page loads for unknown local routes to home. Any other
// method gets the error page.
func NotFound(home string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet || r.Method == http.MethodHead {
			http.Redirect(w, r, home, http.StatusFound)
			return
		}
		WriteError(w, errors.NewAPIError("NOT_FOUND", "Page not found", http.StatusNotFound))
	})
}
