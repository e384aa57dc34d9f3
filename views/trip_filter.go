package views

import (
	"context"
	"strings"
	"sync"
	"time"

	"tripmate/models"
)

// TripFilter narrows the fetched trip list. Empty fields match everything.
type TripFilter struct {
	Search    string
	Location  string
	StartFrom string
}

func (f TripFilter) Active() bool {
	return f.Search != "" || f.Location != "" || f.StartFrom != ""
}

// Match reports whether t passes every set criterion. Search looks at the
// title and description, Location at origin and destination, both
// case-insensitive. A trip whose start date cannot be read never passes a
// start-date filter, and neither does anything when the filter date itself
// is unreadable.
func (f TripFilter) Match(t models.Trip) bool {
	if f.Search != "" {
		term := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), term) &&
			!strings.Contains(strings.ToLower(t.Description), term) {
			return false
		}
	}
	if f.Location != "" {
		loc := strings.ToLower(f.Location)
		if !strings.Contains(strings.ToLower(t.Destination), loc) &&
			!strings.Contains(strings.ToLower(t.Origin), loc) {
			return false
		}
	}
	if f.StartFrom != "" {
		from, err := time.Parse(models.DateLayout, f.StartFrom)
		if err != nil {
			return false
		}
		start, err := time.Parse(models.DateLayout, t.StartDate)
		if err != nil || start.Before(from) {
			return false
		}
	}
	return true
}

// Apply returns the matching trips in their original order.
func (f TripFilter) Apply(trips []models.Trip) []models.Trip {
	out := make([]models.Trip, 0, len(trips))
	for _, t := range trips {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// TripLister fetches the full trip list.
type TripLister interface {
	ListTrips(ctx context.Context) ([]models.Trip, error)
}

// TripListState is the last fetched trip list. Changing a filter reads the
// snapshot; only Reload goes back to the remote.
type TripListState struct {
	mu     sync.RWMutex
	trips  []models.Trip
	loaded bool
}

// Reload replaces the snapshot. On failure the previous snapshot is kept.
func (s *TripListState) Reload(ctx context.Context, lister TripLister) error {
	trips, err := lister.ListTrips(ctx)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.trips = trips
	s.loaded = true
	s.mu.Unlock()
	return nil
}

func (s *TripListState) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Invalidate forces the next view to reload, after a mutation elsewhere.
func (s *TripListState) Invalidate() {
	s.mu.Lock()
	s.loaded = false
	s.mu.Unlock()
}

// View returns the trips passing f and the size of the whole snapshot.
func (s *TripListState) View(f TripFilter) ([]models.Trip, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return f.Apply(s.trips), len(s.trips)
}

// EmptyMessage is shown when a view has no trips to list.
func EmptyMessage(f TripFilter) string {
	if f.Active() {
		return "No trips match your filters. Try adjusting your search criteria."
	}
	return "There are no trips available at the moment. Check back later or create your own trip!"
}

// InvolvedIn returns the trips userID owns or takes part in.
func InvolvedIn(trips []models.Trip, userID int) []models.Trip {
	out := make([]models.Trip, 0)
	for _, t := range trips {
		if t.OwnerID == userID || t.HasParticipant(userID) {
			out = append(out, t)
		}
	}
	return out
}
