package handlers

import (
	"github.com/gorilla/mux"
	"tripmate/middleware"
	"tripmate/views"
)

// Routes registers every page of the local UI on r.
func Routes(r *mux.Router, session Session, api TripAPI) {
	inflight := &views.InFlight{}
	homeHandler := NewHomeHandler(session)
	list := &views.TripListState{}
	authHandler := NewAuthHandler(session, list, inflight)
	tripHandler := NewTripHandler(session, api, list, inflight)

	r.NotFoundHandler = middleware.NotFound("/")

	r.HandleFunc("/", homeHandler.Home).Methods("GET")
	r.HandleFunc("/healthz", homeHandler.Health).Methods("GET")

	// Auth routes
	r.HandleFunc(LoginPath, authHandler.LoginPage).Methods("GET")
	r.HandleFunc(LoginPath, authHandler.Login).Methods("POST")
	r.HandleFunc("/register", authHandler.RegisterPage).Methods("GET")
	r.HandleFunc("/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/logout", authHandler.Logout).Methods("GET", "POST")

	// Public trip pages
	r.HandleFunc("/trips", tripHandler.ListTrips).Methods("GET")
	r.HandleFunc("/trips/{id:[0-9]+}", tripHandler.TripDetail).Methods("GET")

	// Actions check the session themselves so they can return to the trip
	r.HandleFunc("/trips/{id:[0-9]+}/join", tripHandler.JoinTrip).Methods("POST")
	r.HandleFunc("/trips/{id:[0-9]+}/leave", tripHandler.LeaveTrip).Methods("POST")
	r.HandleFunc("/trips/{id:[0-9]+}/delete", tripHandler.DeleteTrip).Methods("POST")
	r.HandleFunc("/trips/{id:[0-9]+}/messages", tripHandler.PostMessage).Methods("POST")
	r.HandleFunc("/trips/{id:[0-9]+}/itinerary", tripHandler.AddItineraryItem).Methods("POST")
	r.HandleFunc("/trips/{id:[0-9]+}/itinerary/{itemID:[0-9]+}/delete", tripHandler.DeleteItineraryItem).Methods("POST")

	// Protected pages
	protected := r.NewRoute().Subrouter()
	protected.Use(middleware.RouteGuard(session, LoginPath))
	protected.HandleFunc("/my-trips", tripHandler.MyTrips).Methods("GET")
	protected.HandleFunc("/trips/create", tripHandler.CreateTripPage).Methods("GET")
	protected.HandleFunc("/trips/create", tripHandler.CreateTrip).Methods("POST")
	protected.HandleFunc("/trips/{id:[0-9]+}/edit", tripHandler.EditTripPage).Methods("GET")
	protected.HandleFunc("/trips/{id:[0-9]+}/edit", tripHandler.EditTrip).Methods("POST")
	protected.HandleFunc("/trips/{id:[0-9]+}/delete", tripHandler.DeleteTripPage).Methods("GET")
}
