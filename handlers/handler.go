package handlers

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"tripmate/middleware"
	"tripmate/models"
	"tripmate/templates"
	"tripmate/utils/errors"
)

// LoginPath is where the guard sends anonymous users.
const LoginPath = "/login"

const (
	flashCookie = "tripmate_flash"
	flashNotice = "notice"
	flashError  = "error"
)

// Session is the session state the pages read and drive.
type Session interface {
	IsLoading() bool
	IsAuthenticated() bool
	CurrentUser() (models.User, bool)
	Login(ctx context.Context, creds models.LoginCredentials) error
	Register(ctx context.Context, data models.RegistrationData) error
	Logout(ctx context.Context)
}

// TripAPI is the part of the remote service the trip pages use.
type TripAPI interface {
	ListTrips(ctx context.Context) ([]models.Trip, error)
	GetTrip(ctx context.Context, tripID int) (models.Trip, error)
	CreateTrip(ctx context.Context, data models.TripFormData) (models.Trip, error)
	UpdateTrip(ctx context.Context, tripID int, patch models.TripPatch) (models.Trip, error)
	DeleteTrip(ctx context.Context, tripID int) error
	JoinTrip(ctx context.Context, tripID int) (models.StatusResponse, error)
	LeaveTrip(ctx context.Context, tripID int) (models.StatusResponse, error)
	ListItinerary(ctx context.Context, tripID int) ([]models.ItineraryItem, error)
	CreateItineraryItem(ctx context.Context, tripID int, data models.ItineraryItemFormData) (models.ItineraryItem, error)
	DeleteItineraryItem(ctx context.Context, tripID, itemID int) error
	ListMessages(ctx context.Context, tripID int) ([]models.Message, error)
	CreateMessage(ctx context.Context, tripID int, data models.MessageFormData) (models.Message, error)
}

type base struct {
	session Session
}

// page assembles the common page data and consumes any pending flash.
func (b base) page(w http.ResponseWriter, r *http.Request, title string, data any) templates.Page {
	p := templates.Page{Title: title, Data: data}
	p.User, p.Authenticated = b.session.CurrentUser()
	kind, msg := takeFlash(w, r)
	switch kind {
	case flashNotice:
		p.Flash = msg
	case flashError:
		p.Error = msg
	}
	return p
}

// requireUser is the guard for POST actions: they cannot be replayed after a
// login, so anonymous users are sent to log in and come back to back.
func (b base) requireUser(w http.ResponseWriter, r *http.Request, back string) (models.User, bool) {
	if b.session.IsLoading() {
		middleware.WriteWaiting(w)
		return models.User{}, false
	}
	user, ok := b.session.CurrentUser()
	if !ok {
		http.Redirect(w, r, middleware.LoginURL(LoginPath, back), http.StatusSeeOther)
		return models.User{}, false
	}
	return user, true
}

// expired applies the stale-token rule: a 401 from the remote while logged in
// means the stored token is no longer accepted, so the session is dropped and
// the user is sent to log in again. It reports whether it handled the
// response.
func (b base) expired(w http.ResponseWriter, r *http.Request, err error, back string) bool {
	if !errors.IsUnauthorized(err) || !b.session.IsAuthenticated() {
		return false
	}
	b.session.Logout(context.WithoutCancel(r.Context()))
	setFlash(w, flashError, "Your session has expired. Please log in again.")
	http.Redirect(w, r, middleware.LoginURL(LoginPath, back), http.StatusSeeOther)
	return true
}

// fail reports a failed action on the page it came from.
func (b base) fail(w http.ResponseWriter, r *http.Request, err error, fallback, back string) {
	if b.expired(w, r, err, back) {
		return
	}
	setFlash(w, flashError, errors.Message(err, fallback))
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func (b base) succeed(w http.ResponseWriter, r *http.Request, notice, back string) {
	if notice != "" {
		setFlash(w, flashNotice, notice)
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

func setFlash(w http.ResponseWriter, kind, msg string) {
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    url.QueryEscape(kind + ":" + msg),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func takeFlash(w http.ResponseWriter, r *http.Request) (kind, msg string) {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return "", ""
	}
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Path: "/", MaxAge: -1})
	raw, err := url.QueryUnescape(c.Value)
	if err != nil {
		return "", ""
	}
	kind, msg, _ = strings.Cut(raw, ":")
	return kind, msg
}

// statusOf is the HTTP status to render err with.
func statusOf(err error) int {
	var apiErr *errors.APIError
	if stderrors.As(err, &apiErr) && apiErr.Status >= 400 {
		return apiErr.Status
	}
	return http.StatusInternalServerError
}

func pathInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(mux.Vars(r)[name])
	return n
}

func tripURL(id int) string {
	return "/trips/" + strconv.Itoa(id)
}

// remoteContext detaches remote calls from the browser request so leaving
// the page does not abort a mutation that is already on its way.
func remoteContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}
