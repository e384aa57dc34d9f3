package handlers

import (
	"net/http"
	"strings"

	"tripmate/middleware"
	"tripmate/models"
	"tripmate/templates"
	"tripmate/utils/errors"
	"tripmate/views"
)

type LoginData struct {
	Username string
	Next     string
}

type RegisterData struct {
	Form   views.RegisterForm
	Errors views.FieldErrors
}

// AuthHandler drops the trip list whenever the user changes, so the next
// list view is fetched with the new identity.
type AuthHandler struct {
	base
	list     *views.TripListState
	inflight *views.InFlight
}

func NewAuthHandler(session Session, list *views.TripListState, inflight *views.InFlight) *AuthHandler {
	return &AuthHandler{base: base{session: session}, list: list, inflight: inflight}
}

func (h *AuthHandler) LoginPage(w http.ResponseWriter, r *http.Request) {
	next := middleware.SafeNext(r.URL.Query().Get("next"), "")
	if !h.session.IsLoading() && h.session.IsAuthenticated() {
		http.Redirect(w, r, middleware.SafeNext(next, "/trips"), http.StatusSeeOther)
		return
	}
	templates.Render(w, http.StatusOK, "login.html", h.page(w, r, "Log In", LoginData{Next: next}))
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	data := LoginData{
		Username: r.PostForm.Get("username"),
		Next:     middleware.SafeNext(r.PostForm.Get("next"), ""),
	}
	creds := models.LoginCredentials{Username: data.Username, Password: r.PostForm.Get("password")}
	if strings.TrimSpace(creds.Username) == "" || creds.Password == "" {
		p := h.page(w, r, "Log In", data)
		p.Error = "Username and password are required"
		templates.Render(w, http.StatusUnprocessableEntity, "login.html", p)
		return
	}

	done, err := h.inflight.Begin("auth")
	if err == nil {
		defer done()
		err = h.session.Login(remoteContext(r), creds)
	}
	if err != nil {
		p := h.page(w, r, "Log In", data)
		p.Error = errors.Message(err, "Login failed. Please check your credentials.")
		templates.Render(w, statusOf(err), "login.html", p)
		return
	}
	h.list.Invalidate()
	http.Redirect(w, r, middleware.SafeNext(data.Next, "/trips"), http.StatusSeeOther)
}

func (h *AuthHandler) RegisterPage(w http.ResponseWriter, r *http.Request) {
	if !h.session.IsLoading() && h.session.IsAuthenticated() {
		http.Redirect(w, r, "/trips", http.StatusSeeOther)
		return
	}
	templates.Render(w, http.StatusOK, "register.html", h.page(w, r, "Sign Up", RegisterData{}))
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	form := views.RegisterForm{
		Username:        r.PostForm.Get("username"),
		Password:        r.PostForm.Get("password"),
		ConfirmPassword: r.PostForm.Get("confirm_password"),
		FullName:        r.PostForm.Get("full_name"),
		Bio:             r.PostForm.Get("bio"),
		Preferences:     r.PostForm.Get("preferences"),
	}
	if fe := form.Validate(); len(fe) > 0 {
		templates.Render(w, http.StatusUnprocessableEntity, "register.html", h.page(w, r, "Sign Up", RegisterData{Form: form, Errors: fe}))
		return
	}

	done, err := h.inflight.Begin("auth")
	if err == nil {
		defer done()
		err = h.session.Register(remoteContext(r), form.Data())
	}
	if err != nil {
		p := h.page(w, r, "Sign Up", RegisterData{Form: form})
		p.Error = errors.Message(err, "Registration failed. Please try again.")
		templates.Render(w, statusOf(err), "register.html", p)
		return
	}
	h.list.Invalidate()
	http.Redirect(w, r, "/trips", http.StatusSeeOther)
}

// Logout always succeeds, whatever state the session is in.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.session.Logout(remoteContext(r))
	h.list.Invalidate()
	h.succeed(w, r, "You have been logged out.", "/")
}
