package handlers

import (
	"encoding/json"
	"net/http"

	"tripmate/templates"
)

// featuredDestinations link to a location-filtered trip list.
var featuredDestinations = []string{
	"Paris, France",
	"Tokyo, Japan",
	"Bali, Indonesia",
	"New York, USA",
	"Rome, Italy",
	"Sydney, Australia",
}

type HomeHandler struct {
	base
}

func NewHomeHandler(session Session) *HomeHandler {
	return &HomeHandler{base: base{session: session}}
}

func (h *HomeHandler) Home(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, http.StatusOK, "home.html", h.page(w, r, "", featuredDestinations))
}

type HealthResponse struct {
	Status  string `json:"status"`
	Session string `json:"session"`
}

// Health reports liveness and the session state, never the token.
func (h *HomeHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok", Session: "anonymous"}
	switch {
	case h.session.IsLoading():
		resp.Session = "loading"
	case h.session.IsAuthenticated():
		resp.Session = "authenticated"
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
