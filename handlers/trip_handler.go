package handlers

import (
	"net/http"
	"strconv"

	"golang.org/x/sync/errgroup"
	"tripmate/middleware"
	"tripmate/models"
	"tripmate/templates"
	"tripmate/utils/errors"
	"tripmate/views"
)

type TripListData struct {
	Heading string
	Action  string
	Trips   []models.Trip
	Total   int
	Filter  views.TripFilter
	Empty   string
}

type TripDetailData struct {
	Trip          models.Trip
	Itinerary     []models.ItineraryItem
	Messages      []views.MessageLine
	IsOwner       bool
	IsParticipant bool
}

type WizardData struct {
	Wizard *views.TripWizard
	// Step is the form shown; Posted is the wizard state sent back with it.
	Step   string
	Posted string
}

type EditData struct {
	Trip   models.Trip
	Form   views.TripForm
	Errors views.FieldErrors
}

type TripHandler struct {
	base
	api      TripAPI
	list     *views.TripListState
	inflight *views.InFlight
}

func NewTripHandler(session Session, api TripAPI, list *views.TripListState, inflight *views.InFlight) *TripHandler {
	return &TripHandler{base: base{session: session}, api: api, list: list, inflight: inflight}
}

func filterFrom(r *http.Request) views.TripFilter {
	q := r.URL.Query()
	return views.TripFilter{
		Search:    q.Get("search"),
		Location:  q.Get("location"),
		StartFrom: q.Get("start_date"),
	}
}

// filtering reports whether r came from the filter form rather than from
// navigating to the page.
func filtering(r *http.Request) bool {
	q := r.URL.Query()
	return q.Has("search") || q.Has("location") || q.Has("start_date")
}

// ListTrips fetches the list on every visit. Changing a filter reads the
// last fetched list unless a reload is asked for.
func (h *TripHandler) ListTrips(w http.ResponseWriter, r *http.Request) {
	filter := filterFrom(r)
	status := http.StatusOK
	var loadErr string
	if !h.list.Loaded() || !filtering(r) || r.URL.Query().Has("reload") {
		if err := h.list.Reload(remoteContext(r), h.api); err != nil {
			if h.expired(w, r, err, "/trips") {
				return
			}
			loadErr = errors.Message(err, "Failed to load trips")
			if !h.list.Loaded() {
				status = statusOf(err)
			}
		}
	}

	data := TripListData{Heading: "Explore Trips", Action: "/trips", Filter: filter, Empty: views.EmptyMessage(filter)}
	data.Trips, data.Total = h.list.View(filter)
	p := h.page(w, r, "Explore Trips", data)
	if loadErr != "" {
		p.Error = loadErr
	}
	templates.Render(w, status, "trips.html", p)
}

// MyTrips lists the trips the current user owns or has joined.
func (h *TripHandler) MyTrips(w http.ResponseWriter, r *http.Request) {
	user, _ := h.session.CurrentUser()
	filter := filterFrom(r)
	data := TripListData{Heading: "My Trips", Action: "/my-trips", Filter: filter, Empty: views.EmptyMessage(filter)}

	trips, err := h.api.ListTrips(remoteContext(r))
	if err != nil {
		if h.expired(w, r, err, "/my-trips") {
			return
		}
		p := h.page(w, r, "My Trips", data)
		p.Error = errors.Message(err, "Failed to load trips")
		templates.Render(w, statusOf(err), "trips.html", p)
		return
	}
	mine := views.InvolvedIn(trips, user.ID)
	data.Trips, data.Total = filter.Apply(mine), len(mine)
	if len(mine) == 0 && !filter.Active() {
		data.Empty = "You have not created or joined any trips yet."
	}
	templates.Render(w, http.StatusOK, "trips.html", h.page(w, r, "My Trips", data))
}

// TripDetail loads the trip, its itinerary and its messages concurrently.
func (h *TripHandler) TripDetail(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "id")
	var (
		trip      models.Trip
		itinerary []models.ItineraryItem
		messages  []models.Message
	)
	g, ctx := errgroup.WithContext(remoteContext(r))
	g.Go(func() (err error) {
		trip, err = h.api.GetTrip(ctx, id)
		return err
	})
	g.Go(func() (err error) {
		itinerary, err = h.api.ListItinerary(ctx, id)
		return err
	})
	g.Go(func() (err error) {
		messages, err = h.api.ListMessages(ctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		if h.expired(w, r, err, tripURL(id)) {
			return
		}
		middleware.WriteError(w, errors.Wrap(err, "LOAD_FAILED", "Failed to load trip data", http.StatusBadGateway))
		return
	}

	user, authed := h.session.CurrentUser()
	data := TripDetailData{
		Trip:      trip,
		Itinerary: views.SortItinerary(itinerary),
		Messages:  views.NewMessageThread(trip, messages).Lines(user, authed),
	}
	if authed {
		data.IsOwner = trip.OwnerID == user.ID
		data.IsParticipant = trip.HasParticipant(user.ID)
	}
	templates.Render(w, http.StatusOK, "trip_detail.html", h.page(w, r, trip.Title, data))
}

func (h *TripHandler) wizardPage(w http.ResponseWriter, r *http.Request, status int, wiz *views.TripWizard) {
	data := WizardData{Wizard: wiz, Step: views.StepDetails.String(), Posted: wiz.Step.String()}
	if wiz.Step != views.StepDetails {
		data.Step = views.StepRoute.String()
	}
	p := h.page(w, r, "Create Trip", data)
	if wiz.Step == views.StepFailed {
		p.Error = wiz.Reason
	}
	templates.Render(w, status, "trip_create.html", p)
}

func (h *TripHandler) CreateTripPage(w http.ResponseWriter, r *http.Request) {
	h.wizardPage(w, r, http.StatusOK, views.NewTripWizard())
}

// CreateTrip drives the two-step wizard. Each post carries the whole form and
// the step it was sent from.
func (h *TripHandler) CreateTrip(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	wiz := &views.TripWizard{
		Step:   views.ParseWizardStep(r.PostForm.Get("step")),
		Form:   tripFormFrom(r),
		Errors: views.FieldErrors{},
	}
	if wiz.Step == views.StepSubmitting {
		wiz.Step = views.StepRoute
	}

	if r.PostForm.Get("action") == "back" {
		wiz.Back()
		h.wizardPage(w, r, http.StatusOK, wiz)
		return
	}
	if err := wiz.Next(); err != nil {
		h.wizardPage(w, r, http.StatusUnprocessableEntity, wiz)
		return
	}
	if wiz.Step != views.StepSubmitting {
		h.wizardPage(w, r, http.StatusOK, wiz)
		return
	}

	done, err := h.inflight.Begin("create-trip")
	if err != nil {
		wiz.Fail(errors.Message(err, ""))
		h.wizardPage(w, r, http.StatusConflict, wiz)
		return
	}
	defer done()
	trip, err := h.api.CreateTrip(remoteContext(r), wiz.Form.Data())
	if err != nil {
		if h.expired(w, r, err, "/trips/create") {
			return
		}
		wiz.Fail(errors.Message(err, "Failed to create trip"))
		h.wizardPage(w, r, statusOf(err), wiz)
		return
	}
	h.list.Invalidate()
	http.Redirect(w, r, tripURL(trip.ID), http.StatusSeeOther)
}

func tripFormFrom(r *http.Request) views.TripForm {
	return views.TripForm{
		Title:        r.PostForm.Get("title"),
		Description:  r.PostForm.Get("description"),
		StartDate:    r.PostForm.Get("start_date"),
		EndDate:      r.PostForm.Get("end_date"),
		Origin:       r.PostForm.Get("origin"),
		Destination:  r.PostForm.Get("destination"),
		DurationDays: r.PostForm.Get("duration_days"),
	}
}

// ownedTrip loads the trip and checks the current user owns it. It writes
// the response itself when it returns false.
func (h *TripHandler) ownedTrip(w http.ResponseWriter, r *http.Request, user models.User, id int) (models.Trip, bool) {
	trip, err := h.api.GetTrip(remoteContext(r), id)
	if err != nil {
		if !h.expired(w, r, err, tripURL(id)) {
			middleware.WriteError(w, errors.Wrap(err, "LOAD_FAILED", "Failed to load trip data", http.StatusBadGateway))
		}
		return models.Trip{}, false
	}
	if trip.OwnerID != user.ID {
		middleware.WriteError(w, errors.NewAPIError("FORBIDDEN", "Only the trip owner can do that", http.StatusForbidden))
		return models.Trip{}, false
	}
	return trip, true
}

func (h *TripHandler) EditTripPage(w http.ResponseWriter, r *http.Request) {
	user, _ := h.session.CurrentUser()
	trip, ok := h.ownedTrip(w, r, user, pathInt(r, "id"))
	if !ok {
		return
	}
	data := EditData{Trip: trip, Form: views.TripFormFrom(trip), Errors: views.FieldErrors{}}
	templates.Render(w, http.StatusOK, "trip_edit.html", h.page(w, r, "Edit Trip", data))
}

// EditTrip sends only the fields that changed.
func (h *TripHandler) EditTrip(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		middleware.WriteError(w, errors.ErrInvalidInput)
		return
	}
	user, _ := h.session.CurrentUser()
	id := pathInt(r, "id")
	trip, ok := h.ownedTrip(w, r, user, id)
	if !ok {
		return
	}
	form := tripFormFrom(r)
	if fe := form.Validate(); len(fe) > 0 {
		templates.Render(w, http.StatusUnprocessableEntity, "trip_edit.html", h.page(w, r, "Edit Trip", EditData{Trip: trip, Form: form, Errors: fe}))
		return
	}
	patch := trip.Diff(form.Data())
	if patch.Empty() {
		h.succeed(w, r, "No changes to save.", tripURL(id))
		return
	}
	if _, err := h.api.UpdateTrip(remoteContext(r), id, patch); err != nil {
		if h.expired(w, r, err, tripURL(id)+"/edit") {
			return
		}
		p := h.page(w, r, "Edit Trip", EditData{Trip: trip, Form: form, Errors: views.FieldErrors{}})
		p.Error = errors.Message(err, "Failed to update trip")
		templates.Render(w, statusOf(err), "trip_edit.html", p)
		return
	}
	h.list.Invalidate()
	h.succeed(w, r, "Trip updated.", tripURL(id))
}

// DeleteTripPage asks for confirmation before anything is deleted.
func (h *TripHandler) DeleteTripPage(w http.ResponseWriter, r *http.Request) {
	user, _ := h.session.CurrentUser()
	trip, ok := h.ownedTrip(w, r, user, pathInt(r, "id"))
	if !ok {
		return
	}
	templates.Render(w, http.StatusOK, "trip_delete.html", h.page(w, r, "Delete Trip", trip))
}

func (h *TripHandler) DeleteTrip(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "id")
	user, ok := h.requireUser(w, r, tripURL(id))
	if !ok {
		return
	}
	if r.PostFormValue("confirm") != "yes" {
		http.Redirect(w, r, tripURL(id)+"/delete", http.StatusSeeOther)
		return
	}
	if _, ok := h.ownedTrip(w, r, user, id); !ok {
		return
	}
	done, err := h.inflight.Begin("delete:" + strconv.Itoa(id))
	if err != nil {
		h.fail(w, r, err, "", tripURL(id))
		return
	}
	defer done()
	if err := h.api.DeleteTrip(remoteContext(r), id); err != nil {
		h.fail(w, r, err, "Failed to delete trip", tripURL(id))
		return
	}
	h.list.Invalidate()
	h.succeed(w, r, "Trip deleted.", "/trips")
}

// JoinTrip sends anonymous users to log in first and back to the trip after.
func (h *TripHandler) JoinTrip(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "id")
	if _, ok := h.requireUser(w, r, tripURL(id)); !ok {
		return
	}
	done, err := h.inflight.Begin("membership:" + strconv.Itoa(id))
	if err != nil {
		h.fail(w, r, err, "", tripURL(id))
		return
	}
	defer done()
	if _, err := h.api.JoinTrip(remoteContext(r), id); err != nil {
		h.fail(w, r, err, "Failed to join trip", tripURL(id))
		return
	}
	h.list.Invalidate()
	h.succeed(w, r, "You joined this trip.", tripURL(id))
}

func (h *TripHandler) LeaveTrip(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "id")
	if _, ok := h.requireUser(w, r, tripURL(id)); !ok {
		return
	}
	done, err := h.inflight.Begin("membership:" + strconv.Itoa(id))
	if err != nil {
		h.fail(w, r, err, "", tripURL(id))
		return
	}
	defer done()
	if _, err := h.api.LeaveTrip(remoteContext(r), id); err != nil {
		h.fail(w, r, err, "Failed to leave trip", tripURL(id))
		return
	}
	h.list.Invalidate()
	h.succeed(w, r, "You left this trip.", tripURL(id))
}
