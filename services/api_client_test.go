package services

import (
	"context"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tripmate/apitest"
	"tripmate/models"
	"tripmate/utils/errors"
)

type staticToken string

func (s staticToken) Token() string { return string(s) }

func newTestClient(t *testing.T) (*apitest.Server, *APIClient) {
	t.Helper()
	srv := apitest.NewServer()
	t.Cleanup(srv.Close)
	return srv, NewAPIClient(srv.URL+"/", srv.Client())
}

func TestBearerHeaderFollowsToken(t *testing.T) {
	t.Parallel()
	srv, client := newTestClient(t)
	ctx := context.Background()

	if _, err := client.ListTrips(ctx); err != nil {
		t.Fatalf("ListTrips() error = %v", err)
	}
	reqs := srv.Requests()
	if got := reqs[len(reqs)-1].Authorization; got != "" {
		t.Fatalf("Authorization = %q, want none without a token", got)
	}

	client.SetTokenSource(staticToken("abc"))
	if _, err := client.ListTrips(ctx); err != nil {
		t.Fatalf("ListTrips() error = %v", err)
	}
	reqs = srv.Requests()
	last := reqs[len(reqs)-1]
	if last.Authorization != "Bearer abc" {
		t.Fatalf("Authorization = %q, want %q", last.Authorization, "Bearer abc")
	}
	if last.RequestID == "" {
		t.Fatal("X-Request-ID not sent")
	}
	if last.Path != "/trips" {
		t.Fatalf("Path = %q, want /trips", last.Path)
	}
}

func TestLoginIsFormEncodedAndPublic(t *testing.T) {
	t.Parallel()
	srv, client := newTestClient(t)
	srv.AddUser("ana", "secret1")
	client.SetTokenSource(staticToken("stale"))

	resp, err := client.Login(context.Background(), models.LoginCredentials{Username: "ana", Password: "secret1"})
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if resp.AccessToken == "" {
		t.Fatal("AccessToken empty")
	}
	req := srv.Requests()[0]
	if req.ContentType != "application/x-www-form-urlencoded" {
		t.Fatalf("Content-Type = %q", req.ContentType)
	}
	if req.Authorization != "" {
		t.Fatalf("Authorization = %q, want none on login", req.Authorization)
	}
}

func TestLoginFailureIsAuthKind(t *testing.T) {
	t.Parallel()
	srv, client := newTestClient(t)
	srv.AddUser("ana", "secret1")

	_, err := client.Login(context.Background(), models.LoginCredentials{Username: "ana", Password: "wrong"})
	if !errors.IsKind(err, errors.KindAuth) {
		t.Fatalf("Login() error = %v, want auth kind", err)
	}
	if got := errors.Message(err, ""); got != "Invalid credentials" {
		t.Fatalf("message = %q, want %q", got, "Invalid credentials")
	}
}

func TestRegisterDuplicateUsesDetail(t *testing.T) {
	t.Parallel()
	srv, client := newTestClient(t)
	srv.AddUser("ana", "secret1")

	_, err := client.Register(context.Background(), models.RegistrationData{Username: "ana", Password: "secret1"})
	if !errors.IsKind(err, errors.KindAuth) {
		t.Fatalf("Register() error = %v, want auth kind", err)
	}
	if got := errors.Message(err, ""); got != "Username already registered" {
		t.Fatalf("message = %q", got)
	}
}

func TestErrorMessageFallback(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		status int
		body   string
		want   string
		code   string
	}{
		{name: "detail string", status: http.StatusNotFound, body: `{"detail":"Trip not found"}`, want: "Trip not found", code: errors.ErrNotFound.Code},
		{name: "detail list", status: http.StatusUnprocessableEntity, body: `{"detail":[{"msg":"field required"}]}`, want: errors.GenericMessage, code: errors.ErrInvalidInput.Code},
		{name: "not json", status: http.StatusInternalServerError, body: `<html>oops</html>`, want: errors.GenericMessage, code: "SERVER_ERROR"},
		{name: "empty detail", status: http.StatusBadRequest, body: `{"detail":"  "}`, want: errors.GenericMessage, code: errors.ErrInvalidInput.Code},
		{name: "stale token", status: http.StatusUnauthorized, body: `{"detail":"Invalid token"}`, want: "Invalid token", code: errors.ErrUnauthorized.Code},
		{name: "conflict", status: http.StatusConflict, body: `{"detail":"Already a participant"}`, want: "Already a participant", code: errors.ErrConflict.Code},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewAPIClient(srv.URL, srv.Client()).GetTrip(context.Background(), 1)
			if got := errors.Message(err, ""); got != tt.want {
				t.Fatalf("message = %q, want %q", got, tt.want)
			}
			if !errors.IsKind(err, errors.KindRequest) {
				t.Fatalf("kind = %q, want request", errors.KindOf(err))
			}
			var apiErr *errors.APIError
			if !stderrors.As(err, &apiErr) || apiErr.Code != tt.code {
				t.Fatalf("error = %v, want code %q", err, tt.code)
			}
		})
	}
}

func TestNetworkErrorIsGeneric(t *testing.T) {
	t.Parallel()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewAPIClient(url, nil).ListTrips(context.Background())
	if got := errors.Message(err, ""); got != errors.GenericMessage {
		t.Fatalf("message = %q, want %q", got, errors.GenericMessage)
	}
}

func TestTripLifecycle(t *testing.T) {
	t.Parallel()
	srv, client := newTestClient(t)
	owner := srv.AddUser("owner", "secret1")
	client.SetTokenSource(staticToken(srv.TokenFor(owner.ID)))
	ctx := context.Background()

	trip, err := client.CreateTrip(ctx, models.TripFormData{
		Title: "Alps", StartDate: "2025-06-01", EndDate: "2025-06-10", Origin: "Munich", Destination: "Zermatt",
	})
	if err != nil {
		t.Fatalf("CreateTrip() error = %v", err)
	}
	if trip.OwnerID != owner.ID {
		t.Fatalf("OwnerID = %d, want %d", trip.OwnerID, owner.ID)
	}

	title := "Alps again"
	updated, err := client.UpdateTrip(ctx, trip.ID, models.TripPatch{Title: &title})
	if err != nil {
		t.Fatalf("UpdateTrip() error = %v", err)
	}
	if updated.Title != title || updated.Origin != "Munich" {
		t.Fatalf("updated = %+v", updated)
	}

	if _, err := client.CreateItineraryItem(ctx, trip.ID, models.ItineraryItemFormData{DayNumber: 1, Location: "Zermatt"}); err != nil {
		t.Fatalf("CreateItineraryItem() error = %v", err)
	}
	items, err := client.ListItinerary(ctx, trip.ID)
	if err != nil || len(items) != 1 {
		t.Fatalf("ListItinerary() = %v, %v", items, err)
	}
	if err := client.DeleteItineraryItem(ctx, trip.ID, items[0].ID); err != nil {
		t.Fatalf("DeleteItineraryItem() error = %v", err)
	}

	if err := client.DeleteTrip(ctx, trip.ID); err != nil {
		t.Fatalf("DeleteTrip() error = %v", err)
	}
	_, err = client.GetTrip(ctx, trip.ID)
	if got := errors.Message(err, ""); got != "Trip not found" {
		t.Fatalf("GetTrip() after delete message = %q", got)
	}
}

func TestJoinLeaveAndMessages(t *testing.T) {
	t.Parallel()
	srv, client := newTestClient(t)
	owner := srv.AddUser("owner", "secret1")
	guest := srv.AddUser("guest", "secret1")
	trip := srv.AddTrip(owner.ID, models.TripFormData{Title: "Coast", StartDate: "2025-07-01", EndDate: "2025-07-05", Origin: "A", Destination: "B"})
	client.SetTokenSource(staticToken(srv.TokenFor(guest.ID)))
	ctx := context.Background()

	if st, err := client.JoinTrip(ctx, trip.ID); err != nil || st.Status != "joined" {
		t.Fatalf("JoinTrip() = %v, %v", st, err)
	}
	got, err := client.GetTrip(ctx, trip.ID)
	if err != nil {
		t.Fatalf("GetTrip() error = %v", err)
	}
	if !got.HasParticipant(guest.ID) {
		t.Fatalf("participants = %+v, want guest", got.Participants)
	}

	msg, err := client.CreateMessage(ctx, trip.ID, models.MessageFormData{Content: "Hello"})
	if err != nil {
		t.Fatalf("CreateMessage() error = %v", err)
	}
	if msg.SenderID != guest.ID || msg.Content != "Hello" {
		t.Fatalf("message = %+v", msg)
	}

	if st, err := client.LeaveTrip(ctx, trip.ID); err != nil || st.Status != "left" {
		t.Fatalf("LeaveTrip() = %v, %v", st, err)
	}
	_, err = client.LeaveTrip(ctx, trip.ID)
	if got := errors.Message(err, ""); got != "Not a participant" {
		t.Fatalf("second LeaveTrip() message = %q", got)
	}

	err = client.DeleteTrip(ctx, trip.ID)
	if got := errors.Message(err, ""); got != "Trip not found or access denied" {
		t.Fatalf("DeleteTrip() by guest message = %q", got)
	}
}

func TestRejectedTokenIsUnauthorized(t *testing.T) {
	t.Parallel()
	srv, client := newTestClient(t)
	u := srv.AddUser("ana", "secret1")
	trip := srv.AddTrip(u.ID, models.TripFormData{Title: "T", StartDate: "2025-01-01", EndDate: "2025-01-02", Origin: "A", Destination: "B"})
	client.SetTokenSource(staticToken(srv.TokenFor(u.ID)))
	srv.RejectTokens(true)

	_, err := client.JoinTrip(context.Background(), trip.ID)
	if !errors.IsUnauthorized(err) {
		t.Fatalf("JoinTrip() error = %v, want unauthorized", err)
	}
}
