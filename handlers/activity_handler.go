package handlers

import (
	stderrors "errors"
	"net/http"
	"sort"
	"strconv"

	"tripmate/views"
)

// PostMessage sends one chat message. Blank messages go nowhere.
func (h *TripHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "id")
	back := tripURL(id) + "#messages"
	if _, ok := h.requireUser(w, r, tripURL(id)); !ok {
		return
	}
	done, err := h.inflight.Begin("message:" + strconv.Itoa(id))
	if err != nil {
		h.fail(w, r, err, "", back)
		return
	}
	defer done()

	thread := &views.MessageThread{TripID: id}
	if _, err := thread.Send(remoteContext(r), h.api, r.PostFormValue("content")); err != nil {
		var fe views.FieldErrors
		if stderrors.As(err, &fe) {
			http.Redirect(w, r, back, http.StatusSeeOther)
			return
		}
		h.fail(w, r, err, "Failed to send message", back)
		return
	}
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// AddItineraryItem is for the trip owner; the remote enforces it.
func (h *TripHandler) AddItineraryItem(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "id")
	if _, ok := h.requireUser(w, r, tripURL(id)); !ok {
		return
	}
	form := views.ItineraryForm{
		DayNumber:   r.PostFormValue("day_number"),
		Location:    r.PostFormValue("location"),
		Description: r.PostFormValue("description"),
	}
	if fe := form.Validate(); len(fe) > 0 {
		h.fail(w, r, fe, firstFieldError(fe), tripURL(id))
		return
	}
	if _, err := h.api.CreateItineraryItem(remoteContext(r), id, form.Data()); err != nil {
		h.fail(w, r, err, "Failed to add itinerary item", tripURL(id))
		return
	}
	h.succeed(w, r, "Added to itinerary.", tripURL(id))
}

func (h *TripHandler) DeleteItineraryItem(w http.ResponseWriter, r *http.Request) {
	id := pathInt(r, "id")
	if _, ok := h.requireUser(w, r, tripURL(id)); !ok {
		return
	}
	if err := h.api.DeleteItineraryItem(remoteContext(r), id, pathInt(r, "itemID")); err != nil {
		h.fail(w, r, err, "Failed to remove itinerary item", tripURL(id))
		return
	}
	h.succeed(w, r, "Removed from itinerary.", tripURL(id))
}

func firstFieldError(fe views.FieldErrors) string {
	keys := make([]string, 0, len(fe))
	for k := range fe {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	if len(keys) == 0 {
		return ""
	}
	return fe[keys[0]]
}
