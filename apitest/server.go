// Package apitest runs an in-memory stand-in for the remote trip API so the
// client can be exercised end to end in tests.
package apitest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"
	"tripmate/models"
)

type contextKey string

const userIDKey contextKey = "user_id"

// Request is one call the fake remote received.
type Request struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
	RequestID     string
}

type account struct {
	user models.User
	hash []byte
}

// Server is the fake remote. All state is guarded by mu.
type Server struct {
	*httptest.Server
	Secret []byte

	mu           sync.Mutex
	accounts     map[int]*account
	byName       map[string]int
	trips        map[int]*models.Trip
	participants map[int][]int
	itinerary    map[int][]models.ItineraryItem
	messages     map[int][]models.Message
	nextID       int
	requests     []Request
	rejectTokens bool
	embedSender  bool
}

// NewServer starts the fake remote. Callers must Close it.
func NewServer() *Server {
	s := &Server{
		Secret:       []byte("apitest-secret"),
		accounts:     make(map[int]*account),
		byName:       make(map[string]int),
		trips:        make(map[int]*models.Trip),
		participants: make(map[int][]int),
		itinerary:    make(map[int][]models.ItineraryItem),
		messages:     make(map[int][]models.Message),
	}
	s.Server = httptest.NewServer(s.router())
	return s
}

func (s *Server) router() http.Handler {
	r := mux.NewRouter()
	r.Use(s.record)

	r.HandleFunc("/register", s.register).Methods("POST")
	r.HandleFunc("/login", s.login).Methods("POST")
	r.HandleFunc("/trips", s.listTrips).Methods("GET")
	r.HandleFunc("/trips/{id:[0-9]+}", s.getTrip).Methods("GET")
	r.HandleFunc("/trips/{id:[0-9]+}/itinerary", s.listItinerary).Methods("GET")
	r.HandleFunc("/trips/{id:[0-9]+}/messages", s.listMessages).Methods("GET")

	authed := r.NewRoute().Subrouter()
	authed.Use(s.requireToken)
	authed.HandleFunc("/trips", s.createTrip).Methods("POST")
	authed.HandleFunc("/trips/{id:[0-9]+}", s.updateTrip).Methods("PATCH")
	authed.HandleFunc("/trips/{id:[0-9]+}", s.deleteTrip).Methods("DELETE")
	authed.HandleFunc("/trips/{id:[0-9]+}/join", s.joinTrip).Methods("POST")
	authed.HandleFunc("/trips/{id:[0-9]+}/leave", s.leaveTrip).Methods("DELETE")
	authed.HandleFunc("/trips/{id:[0-9]+}/itinerary", s.createItineraryItem).Methods("POST")
	authed.HandleFunc("/trips/{id:[0-9]+}/itinerary/{itemID:[0-9]+}", s.deleteItineraryItem).Methods("DELETE")
	authed.HandleFunc("/trips/{id:[0-9]+}/messages", s.createMessage).Methods("POST")
	return r
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// Count returns how many requests matched method and path.
func (s *Server) Count(method, path string) int {
	n := 0
	for _, r := range s.Requests() {
		if r.Method == method && r.Path == path {
			n++
		}
	}
	return n
}

// ResetRequests forgets the request log.
func (s *Server) ResetRequests() {
	s.mu.Lock()
	s.requests = nil
	s.mu.Unlock()
}

// RejectTokens makes every authenticated endpoint answer 401, as if the
// stored token had expired or been revoked.
func (s *Server) RejectTokens(reject bool) {
	s.mu.Lock()
	s.rejectTokens = reject
	s.mu.Unlock()
}

// EmbedSender controls whether message responses carry the sender embed.
func (s *Server) EmbedSender(embed bool) {
	s.mu.Lock()
	s.embedSender = embed
	s.mu.Unlock()
}

// AddUser registers an account directly.
func (s *Server) AddUser(username, password string) models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	u := models.User{ID: s.nextID, Username: username}
	s.accounts[u.ID] = &account{user: u, hash: hash}
	s.byName[username] = u.ID
	return u
}

// AddTrip creates a trip owned by ownerID.
func (s *Server) AddTrip(ownerID int, data models.TripFormData) models.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t := tripFromForm(s.nextID, ownerID, data)
	s.trips[t.ID] = &t
	return s.embedLocked(t)
}

// AddParticipant puts userID on the trip without a request.
func (s *Server) AddParticipant(tripID, userID int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participants[tripID] = append(s.participants[tripID], userID)
}

// AddMessage appends a chat message without a request.
func (s *Server) AddMessage(tripID, senderID int, content string) models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendMessageLocked(tripID, senderID, content)
}

// Trip returns the stored trip with embeds.
func (s *Server) Trip(id int) (models.Trip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[id]
	if !ok {
		return models.Trip{}, false
	}
	return s.embedLocked(*t), true
}

// Messages returns the stored chat for a trip.
func (s *Server) Messages(tripID int) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.messages[tripID]...)
}

// TokenFor signs an access token for userID the way the remote does.
func (s *Server) TokenFor(userID int) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(s.Secret)
	if err != nil {
		panic(err)
	}
	return signed
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, Request{
			Method:        r.Method,
			Path:          r.URL.Path,
			Authorization: r.Header.Get("Authorization"),
			ContentType:   r.Header.Get("Content-Type"),
			RequestID:     r.Header.Get("X-Request-ID"),
		})
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		reject := s.rejectTokens
		s.mu.Unlock()

		authHeader := r.Header.Get("Authorization")
		if reject || !strings.HasPrefix(authHeader, "Bearer ") {
			writeDetail(w, http.StatusUnauthorized, "Not authenticated")
			return
		}
		token, err := jwt.Parse(strings.TrimPrefix(authHeader, "Bearer "), func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return s.Secret, nil
		})
		if err != nil || !token.Valid {
			writeDetail(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		id, ok := claims["user_id"].(float64)
		if !ok {
			writeDetail(w, http.StatusUnauthorized, "Invalid token")
			return
		}
		s.mu.Lock()
		_, exists := s.accounts[int(id)]
		s.mu.Unlock()
		if !exists {
			writeDetail(w, http.StatusNotFound, "User not found")
			return
		}
		ctx := context.WithValue(r.Context(), userIDKey, int(id))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var input models.RegistrationData
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Username == "" || input.Password == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"msg": "field required"}},
		})
		return
	}
	s.mu.Lock()
	_, taken := s.byName[input.Username]
	s.mu.Unlock()
	if taken {
		writeDetail(w, http.StatusBadRequest, "Username already registered")
		return
	}
	u := s.AddUser(input.Username, input.Password)
	s.mu.Lock()
	acc := s.accounts[u.ID]
	acc.user.FullName = input.FullName
	acc.user.Bio = input.Bio
	acc.user.Preferences = input.Preferences
	u = acc.user
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusBadRequest, "Invalid form")
		return
	}
	username, password := r.PostForm.Get("username"), r.PostForm.Get("password")
	s.mu.Lock()
	id, ok := s.byName[username]
	var acc *account
	if ok {
		acc = s.accounts[id]
	}
	s.mu.Unlock()
	if acc == nil || bcrypt.CompareHashAndPassword(acc.hash, []byte(password)) != nil {
		writeDetail(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, models.TokenResponse{AccessToken: s.TokenFor(id), TokenType: "bearer"})
}

func (s *Server) listTrips(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	ids := make([]int, 0, len(s.trips))
	for id := range s.trips {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	trips := make([]models.Trip, 0, len(ids))
	for _, id := range ids {
		trips = append(trips, s.embedLocked(*s.trips[id]))
	}
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, trips)
}

func (s *Server) getTrip(w http.ResponseWriter, r *http.Request) {
	trip, ok := s.Trip(pathID(r, "id"))
	if !ok {
		writeDetail(w, http.StatusNotFound, "Trip not found")
		return
	}
	writeJSON(w, http.StatusOK, trip)
}

func (s *Server) createTrip(w http.ResponseWriter, r *http.Request) {
	var input models.TripFormData
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid trip")
		return
	}
	writeJSON(w, http.StatusOK, s.AddTrip(currentUser(r), input))
}

func (s *Server) updateTrip(w http.ResponseWriter, r *http.Request) {
	var patch models.TripPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid trip")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.trips[pathID(r, "id")]
	if !ok || t.OwnerID != currentUser(r) {
		writeDetail(w, http.StatusNotFound, "Trip not found or access denied")
		return
	}
	applyPatch(t, patch)
	writeJSON(w, http.StatusOK, s.embedLocked(*t))
}

func (s *Server) deleteTrip(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := pathID(r, "id")
	t, ok := s.trips[id]
	if !ok || t.OwnerID != currentUser(r) {
		writeDetail(w, http.StatusNotFound, "Trip not found or access denied")
		return
	}
	delete(s.trips, id)
	delete(s.participants, id)
	delete(s.itinerary, id)
	delete(s.messages, id)
	writeJSON(w, http.StatusOK, models.StatusResponse{Status: "deleted"})
}

func (s *Server) joinTrip(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := pathID(r, "id")
	if _, ok := s.trips[id]; !ok {
		writeDetail(w, http.StatusNotFound, "Trip not found")
		return
	}
	uid := currentUser(r)
	for _, p := range s.participants[id] {
		if p == uid {
			writeDetail(w, http.StatusBadRequest, "Already a participant")
			return
		}
	}
	s.participants[id] = append(s.participants[id], uid)
	writeJSON(w, http.StatusOK, models.StatusResponse{Status: "joined"})
}

func (s *Server) leaveTrip(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, uid := pathID(r, "id"), currentUser(r)
	kept := s.participants[id][:0]
	found := false
	for _, p := range s.participants[id] {
		if p == uid {
			found = true
			continue
		}
		kept = append(kept, p)
	}
	if !found {
		writeDetail(w, http.StatusNotFound, "Not a participant")
		return
	}
	s.participants[id] = kept
	writeJSON(w, http.StatusOK, models.StatusResponse{Status: "left"})
}

func (s *Server) listItinerary(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	items := append([]models.ItineraryItem{}, s.itinerary[pathID(r, "id")]...)
	s.mu.Unlock()
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) createItineraryItem(w http.ResponseWriter, r *http.Request) {
	var input models.ItineraryItemFormData
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid item")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := pathID(r, "id")
	t, ok := s.trips[id]
	if !ok || t.OwnerID != currentUser(r) {
		writeDetail(w, http.StatusForbidden, "Access denied")
		return
	}
	s.nextID++
	item := models.ItineraryItem{ID: s.nextID, TripID: id, DayNumber: input.DayNumber, Location: input.Location, Description: input.Description}
	s.itinerary[id] = append(s.itinerary[id], item)
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) deleteItineraryItem(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, itemID := pathID(r, "id"), pathID(r, "itemID")
	items := s.itinerary[id]
	idx := -1
	for i, it := range items {
		if it.ID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		writeDetail(w, http.StatusNotFound, "Item not found")
		return
	}
	if t := s.trips[id]; t == nil || t.OwnerID != currentUser(r) {
		writeDetail(w, http.StatusForbidden, "Access denied")
		return
	}
	s.itinerary[id] = append(items[:idx:idx], items[idx+1:]...)
	writeJSON(w, http.StatusOK, models.StatusResponse{Status: "deleted"})
}

func (s *Server) listMessages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Messages(pathID(r, "id")))
}

func (s *Server) createMessage(w http.ResponseWriter, r *http.Request) {
	var input models.MessageFormData
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "Invalid message")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id := pathID(r, "id")
	if _, ok := s.trips[id]; !ok {
		writeDetail(w, http.StatusNotFound, "Trip not found")
		return
	}
	writeJSON(w, http.StatusOK, s.appendMessageLocked(id, currentUser(r), input.Content))
}

func (s *Server) appendMessageLocked(tripID, senderID int, content string) models.Message {
	s.nextID++
	msg := models.Message{
		ID:        s.nextID,
		TripID:    tripID,
		SenderID:  senderID,
		Content:   content,
		Timestamp: time.Now().UTC().Format("2006-01-02 15:04:05.000000"),
	}
	if s.embedSender {
		if acc, ok := s.accounts[senderID]; ok {
			u := acc.user
			msg.Sender = &u
		}
	}
	s.messages[tripID] = append(s.messages[tripID], msg)
	return msg
}

func (s *Server) embedLocked(t models.Trip) models.Trip {
	if acc, ok := s.accounts[t.OwnerID]; ok {
		owner := acc.user
		t.Owner = &owner
	}
	t.Participants = nil
	for _, id := range s.participants[t.ID] {
		if acc, ok := s.accounts[id]; ok {
			t.Participants = append(t.Participants, acc.user)
		}
	}
	return t
}

func tripFromForm(id, ownerID int, data models.TripFormData) models.Trip {
	return models.Trip{
		ID:           id,
		Title:        data.Title,
		Description:  data.Description,
		StartDate:    data.StartDate,
		EndDate:      data.EndDate,
		Origin:       data.Origin,
		Destination:  data.Destination,
		DurationDays: data.DurationDays,
		OwnerID:      ownerID,
	}
}

func applyPatch(t *models.Trip, p models.TripPatch) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&t.Title, p.Title)
	set(&t.Description, p.Description)
	set(&t.StartDate, p.StartDate)
	set(&t.EndDate, p.EndDate)
	set(&t.Origin, p.Origin)
	set(&t.Destination, p.Destination)
	if p.DurationDays != nil {
		d := *p.DurationDays
		t.DurationDays = &d
	}
}

func currentUser(r *http.Request) int {
	id, _ := r.Context().Value(userIDKey).(int)
	return id
}

func pathID(r *http.Request, name string) int {
	id, _ := strconv.Atoi(mux.Vars(r)[name])
	return id
}

func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
