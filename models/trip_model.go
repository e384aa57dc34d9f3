package models

// DateLayout is the wire format of trip start and end dates.
const DateLayout = "2006-01-02"

// Trip is a planned journey. Owner, Participants, ItineraryItems and Messages
// are embeds the remote includes when it has them.
type Trip struct {
	ID             int             `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description,omitempty"`
	StartDate      string          `json:"start_date"`
	EndDate        string          `json:"end_date"`
	Origin         string          `json:"origin"`
	Destination    string          `json:"destination"`
	DurationDays   *int            `json:"duration_days,omitempty"`
	OwnerID        int             `json:"owner_id"`
	Owner          *User           `json:"owner,omitempty"`
	Participants   []User          `json:"participants,omitempty"`
	ItineraryItems []ItineraryItem `json:"itinerary_items,omitempty"`
	Messages       []Message       `json:"messages,omitempty"`
}

// HasParticipant reports whether userID is in the embedded participant list.
func (t Trip) HasParticipant(userID int) bool {
	for _, p := range t.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// TripFormData is the body of POST /trips.
type TripFormData struct {
	Title        string `json:"title"`
	Description  string `json:"description,omitempty"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	Origin       string `json:"origin"`
	Destination  string `json:"destination"`
	DurationDays *int   `json:"duration_days,omitempty"`
}

// TripPatch is the body of PATCH /trips/{id}. Nil fields are left unchanged.
type TripPatch struct {
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	StartDate    *string `json:"start_date,omitempty"`
	EndDate      *string `json:"end_date,omitempty"`
	Origin       *string `json:"origin,omitempty"`
	Destination  *string `json:"destination,omitempty"`
	DurationDays *int    `json:"duration_days,omitempty"`
}

// Diff returns the fields of next that differ from the current trip.
func (t Trip) Diff(next TripFormData) TripPatch {
	var p TripPatch
	str := func(cur, nxt string) *string {
		if cur == nxt {
			return nil
		}
		return &nxt
	}
	p.Title = str(t.Title, next.Title)
	p.Description = str(t.Description, next.Description)
	p.StartDate = str(t.StartDate, next.StartDate)
	p.EndDate = str(t.EndDate, next.EndDate)
	p.Origin = str(t.Origin, next.Origin)
	p.Destination = str(t.Destination, next.Destination)
	if next.DurationDays != nil && (t.DurationDays == nil || *t.DurationDays != *next.DurationDays) {
		d := *next.DurationDays
		p.DurationDays = &d
	}
	return p
}

// Empty reports whether the patch changes nothing.
func (p TripPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.StartDate == nil && p.EndDate == nil &&
		p.Origin == nil && p.Destination == nil && p.DurationDays == nil
}
