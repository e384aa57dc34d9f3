package views

import (
	"context"
	stderrors "errors"
	"testing"

	"tripmate/models"
	"tripmate/utils/errors"
)

func TestRegisterFormValidate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		form RegisterForm
		want FieldErrors
	}{
		{
			name: "valid",
			form: RegisterForm{Username: "ana", Password: "secret1", ConfirmPassword: "secret1"},
			want: FieldErrors{},
		},
		{
			name: "blank username",
			form: RegisterForm{Username: "   ", Password: "secret1", ConfirmPassword: "secret1"},
			want: FieldErrors{"username": "Username is required"},
		},
		{
			name: "short password",
			form: RegisterForm{Username: "ana", Password: "abc", ConfirmPassword: "abc"},
			want: FieldErrors{"password": "Password must be at least 6 characters"},
		},
		{
			name: "short password in cyrillic",
			form: RegisterForm{Username: "ana", Password: "абв", ConfirmPassword: "абв"},
			want: FieldErrors{"password": "Password must be at least 6 characters"},
		},
		{
			name: "six cyrillic characters",
			form: RegisterForm{Username: "ana", Password: "пароль", ConfirmPassword: "пароль"},
			want: FieldErrors{},
		},
		{
			name: "mismatch",
			form: RegisterForm{Username: "ana", Password: "secret1", ConfirmPassword: "secret2"},
			want: FieldErrors{"confirm_password": "Passwords do not match"},
		},
		{
			name: "empty",
			form: RegisterForm{},
			want: FieldErrors{"username": "Username is required", "password": "Password is required"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.form.Validate()
			if len(got) != len(tt.want) {
				t.Fatalf("Validate() = %v, want %v", got, tt.want)
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Fatalf("Validate()[%q] = %q, want %q", k, got[k], v)
				}
			}
		})
	}
}

func TestRegisterFormDataTrims(t *testing.T) {
	t.Parallel()
	data := RegisterForm{Username: " ana ", Password: " pw ", FullName: "  "}.Data()
	if data.Username != "ana" || data.Password != " pw " || data.FullName != "" {
		t.Fatalf("Data() = %+v", data)
	}
}

func TestWizardRejectsEndBeforeStart(t *testing.T) {
	t.Parallel()
	w := NewTripWizard()
	w.Form = TripForm{Title: "Alps", StartDate: "2025-06-01", EndDate: "2025-05-20"}

	err := w.Next()
	var fe FieldErrors
	if !stderrors.As(err, &fe) {
		t.Fatalf("Next() error = %v, want FieldErrors", err)
	}
	if fe["end_date"] != "End date cannot be before start date" {
		t.Fatalf("end_date error = %q", fe["end_date"])
	}
	if w.Step != StepDetails {
		t.Fatalf("Step = %v, want %v", w.Step, StepDetails)
	}
}

func TestWizardHappyPath(t *testing.T) {
	t.Parallel()
	w := NewTripWizard()
	w.Form = TripForm{Title: "Alps", StartDate: "2025-06-01", EndDate: "2025-06-01"}
	if err := w.Next(); err != nil {
		t.Fatalf("Next() step 1 error = %v", err)
	}
	if w.Step != StepRoute {
		t.Fatalf("Step = %v, want %v", w.Step, StepRoute)
	}

	w.Form.Origin = "Munich"
	w.Form.Destination = "Zermatt"
	w.Form.DurationDays = "0"
	if err := w.Next(); err == nil || w.Step != StepRoute {
		t.Fatalf("Next() with duration 0 = %v, step %v", err, w.Step)
	}

	w.Form.DurationDays = "5"
	if err := w.Next(); err != nil {
		t.Fatalf("Next() step 2 error = %v", err)
	}
	if w.Step != StepSubmitting {
		t.Fatalf("Step = %v, want %v", w.Step, StepSubmitting)
	}
	if err := w.Next(); !stderrors.Is(err, errors.ErrInFlight) {
		t.Fatalf("Next() while submitting = %v, want ErrInFlight", err)
	}

	w.Fail("Something went wrong")
	if w.Step != StepFailed || w.Reason != "Something went wrong" {
		t.Fatalf("after Fail step = %v reason = %q", w.Step, w.Reason)
	}
	if err := w.Next(); err != nil || w.Step != StepSubmitting {
		t.Fatalf("retry = %v, step %v", err, w.Step)
	}

	data := w.Form.Data()
	if data.DurationDays == nil || *data.DurationDays != 5 {
		t.Fatalf("DurationDays = %v, want 5", data.DurationDays)
	}
}

func TestWizardRevalidatesDetailsOnSubmit(t *testing.T) {
	t.Parallel()
	w := &TripWizard{Step: StepRoute, Form: TripForm{Origin: "A", Destination: "B"}}
	if err := w.Next(); err == nil {
		t.Fatal("Next() = nil with missing details")
	}
	if w.Step != StepDetails {
		t.Fatalf("Step = %v, want %v", w.Step, StepDetails)
	}
	if w.Errors["title"] == "" {
		t.Fatalf("Errors = %v, want title error", w.Errors)
	}
}

func TestWizardBack(t *testing.T) {
	t.Parallel()
	w := &TripWizard{Step: StepRoute, Errors: FieldErrors{"origin": "x"}}
	w.Back()
	if w.Step != StepDetails || len(w.Errors) != 0 {
		t.Fatalf("after Back step = %v errors = %v", w.Step, w.Errors)
	}
	if ParseWizardStep("route") != StepRoute || ParseWizardStep("bogus") != StepDetails {
		t.Fatal("ParseWizardStep mismatch")
	}
}

var sampleTrips = []models.Trip{
	{ID: 1, Title: "Paris weekend", Origin: "London", Destination: "Paris", StartDate: "2025-05-01"},
	{ID: 2, Title: "Alps", Description: "Hiking near the PARk", Origin: "Munich", Destination: "Zermatt", StartDate: "2025-07-01"},
	{ID: 3, Title: "Coast", Origin: "Lisbon", Destination: "Porto", StartDate: "2025-08-15"},
	{ID: 4, Title: "Odd", Origin: "X", Destination: "Y", StartDate: "soon"},
}

func ids(trips []models.Trip) []int {
	out := make([]int, 0, len(trips))
	for _, t := range trips {
		out = append(out, t.ID)
	}
	return out
}

func equalIDs(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestTripFilter(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		filter TripFilter
		want   []int
	}{
		{name: "none", filter: TripFilter{}, want: []int{1, 2, 3, 4}},
		{name: "location par", filter: TripFilter{Location: "par"}, want: []int{1}},
		{name: "search description", filter: TripFilter{Search: "park"}, want: []int{2}},
		{name: "location origin", filter: TripFilter{Location: "LISBON"}, want: []int{3}},
		{name: "start from", filter: TripFilter{StartFrom: "2025-07-01"}, want: []int{2, 3}},
		{name: "bad filter date", filter: TripFilter{StartFrom: "July"}, want: []int{}},
		{name: "combined", filter: TripFilter{Search: "a", StartFrom: "2025-06-01"}, want: []int{2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ids(tt.filter.Apply(sampleTrips)); !equalIDs(got, tt.want) {
				t.Fatalf("Apply() = %v, want %v", got, tt.want)
			}
		})
	}
}

type countingLister struct {
	calls int
	trips []models.Trip
	err   error
}

func (c *countingLister) ListTrips(context.Context) ([]models.Trip, error) {
	c.calls++
	return c.trips, c.err
}

func TestTripListStateFiltersWithoutRefetch(t *testing.T) {
	t.Parallel()
	var state TripListState
	lister := &countingLister{trips: sampleTrips}
	if state.Loaded() {
		t.Fatal("Loaded() = true before Reload")
	}
	if err := state.Reload(context.Background(), lister); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}

	got, total := state.View(TripFilter{Location: "par"})
	if !equalIDs(ids(got), []int{1}) || total != 4 {
		t.Fatalf("View() = %v, %d", ids(got), total)
	}
	state.View(TripFilter{Search: "alps"})
	if lister.calls != 1 {
		t.Fatalf("ListTrips calls = %d, want 1", lister.calls)
	}

	lister.err = errors.ErrInternal
	if err := state.Reload(context.Background(), lister); err == nil {
		t.Fatal("Reload() error = nil")
	}
	if _, total := state.View(TripFilter{}); total != 4 {
		t.Fatalf("snapshot lost on failed reload, total = %d", total)
	}
}

func TestEmptyMessage(t *testing.T) {
	t.Parallel()
	if EmptyMessage(TripFilter{}) == EmptyMessage(TripFilter{Search: "x"}) {
		t.Fatal("EmptyMessage does not distinguish filtered from empty")
	}
}

func TestInvolvedIn(t *testing.T) {
	t.Parallel()
	trips := []models.Trip{
		{ID: 1, OwnerID: 7},
		{ID: 2, OwnerID: 8, Participants: []models.User{{ID: 7}}},
		{ID: 3, OwnerID: 8},
	}
	if got := ids(InvolvedIn(trips, 7)); !equalIDs(got, []int{1, 2}) {
		t.Fatalf("InvolvedIn() = %v", got)
	}
}

func TestInFlight(t *testing.T) {
	t.Parallel()
	var f InFlight
	done, err := f.Begin("message:1")
	if err != nil {
		t.Fatalf("Begin() error = %v", err)
	}
	if _, err := f.Begin("message:1"); !stderrors.Is(err, errors.ErrInFlight) {
		t.Fatalf("second Begin() = %v, want ErrInFlight", err)
	}
	if _, err := f.Begin("message:2"); err != nil {
		t.Fatalf("Begin() other key error = %v", err)
	}
	done()
	done()
	if f.Pending("message:1") {
		t.Fatal("Pending() = true after done")
	}
}

type recordingPoster struct {
	calls int
}

func (r *recordingPoster) CreateMessage(_ context.Context, tripID int, data models.MessageFormData) (models.Message, error) {
	r.calls++
	return models.Message{ID: 100 + r.calls, TripID: tripID, SenderID: 7, Content: data.Content}, nil
}

func TestMessageThreadSend(t *testing.T) {
	t.Parallel()
	thread := &MessageThread{TripID: 3}
	poster := &recordingPoster{}
	ctx := context.Background()

	for _, blank := range []string{"", "   ", "\n\t"} {
		if _, err := thread.Send(ctx, poster, blank); err == nil {
			t.Fatalf("Send(%q) error = nil", blank)
		}
	}
	if poster.calls != 0 {
		t.Fatalf("CreateMessage calls = %d, want 0", poster.calls)
	}

	if _, err := thread.Send(ctx, poster, "  Hello "); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if poster.calls != 1 || len(thread.Messages) != 1 {
		t.Fatalf("calls = %d, messages = %d, want 1 and 1", poster.calls, len(thread.Messages))
	}
	if thread.Messages[0].Content != "Hello" {
		t.Fatalf("Content = %q, want %q", thread.Messages[0].Content, "Hello")
	}
}

func TestMessageThreadLines(t *testing.T) {
	t.Parallel()
	owner := models.User{ID: 1, Username: "owner"}
	trip := models.Trip{ID: 3, Owner: &owner, Participants: []models.User{{ID: 2, Username: "guest"}}}
	thread := NewMessageThread(trip, []models.Message{
		{ID: 1, SenderID: 2, Content: "hi"},
		{ID: 2, SenderID: 1, Content: "hey"},
		{ID: 3, SenderID: 9, Content: "?"},
		{ID: 4, SenderID: 9, Content: "!", Sender: &models.User{ID: 9, Username: "ghost"}},
	})

	lines := thread.Lines(models.User{ID: 1, Username: "owner"}, true)
	want := []string{"guest", "You", "Unknown User", "ghost"}
	for i, w := range want {
		if lines[i].Author != w {
			t.Fatalf("line %d author = %q, want %q", i, lines[i].Author, w)
		}
	}
	if !lines[1].Mine || lines[0].Mine {
		t.Fatal("Mine flags wrong")
	}

	anon := thread.Lines(models.User{}, false)
	if anon[1].Author != "owner" {
		t.Fatalf("anonymous author = %q, want owner", anon[1].Author)
	}
}

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()
	if got := FormatTimestamp("2025-06-01 14:05:00.123456"); got != "Jun 1, 02:05 PM" {
		t.Fatalf("FormatTimestamp() = %q", got)
	}
	if got := FormatTimestamp("yesterday"); got != "yesterday" {
		t.Fatalf("FormatTimestamp() = %q", got)
	}
}

func TestSortItineraryStable(t *testing.T) {
	t.Parallel()
	items := []models.ItineraryItem{
		{ID: 1, DayNumber: 3},
		{ID: 2, DayNumber: 1},
		{ID: 3, DayNumber: 3},
		{ID: 4, DayNumber: 2},
	}
	got := SortItinerary(items)
	wantIDs := []int{2, 4, 1, 3}
	for i, id := range wantIDs {
		if got[i].ID != id {
			t.Fatalf("SortItinerary()[%d].ID = %d, want %d", i, got[i].ID, id)
		}
	}
	if items[0].ID != 1 {
		t.Fatal("input modified")
	}
}
