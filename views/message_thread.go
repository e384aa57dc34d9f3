package views

import (
	"context"
	"sort"
	"strings"
	"time"

	"tripmate/models"
)

// MessagePoster sends one chat message to the remote.
type MessagePoster interface {
	CreateMessage(ctx context.Context, tripID int, data models.MessageFormData) (models.Message, error)
}

// MessageThread is a trip chat in arrival order. Users resolves senders the
// remote did not embed.
type MessageThread struct {
	TripID   int
	Messages []models.Message
	Users    []models.User
}

// NewMessageThread builds the thread shown on a trip page. Senders are looked
// up among the participants and then the owner.
func NewMessageThread(trip models.Trip, messages []models.Message) *MessageThread {
	users := append([]models.User(nil), trip.Participants...)
	if trip.Owner != nil {
		users = append(users, *trip.Owner)
	}
	return &MessageThread{TripID: trip.ID, Messages: messages, Users: users}
}

// Send posts content and appends the message the remote echoed back. Blank
// content is rejected without a request.
func (t *MessageThread) Send(ctx context.Context, poster MessagePoster, content string) (models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return models.Message{}, FieldErrors{"content": "Message cannot be empty"}
	}
	msg, err := poster.CreateMessage(ctx, t.TripID, models.MessageFormData{Content: content})
	if err != nil {
		return models.Message{}, err
	}
	t.Messages = append(t.Messages, msg)
	return msg, nil
}

// Sender returns the embedded sender, else the known user with that id,
// else models.UnknownUser.
func (t *MessageThread) Sender(m models.Message) models.User {
	if m.Sender != nil {
		return *m.Sender
	}
	for _, u := range t.Users {
		if u.ID == m.SenderID {
			return u
		}
	}
	return models.UnknownUser
}

// MessageLine is one message ready to render.
type MessageLine struct {
	models.Message
	Author string
	Mine   bool
	Time   string
}

// Lines labels each message, showing "You" for the current user's own.
func (t *MessageThread) Lines(current models.User, authenticated bool) []MessageLine {
	lines := make([]MessageLine, 0, len(t.Messages))
	for _, m := range t.Messages {
		line := MessageLine{Message: m, Author: t.Sender(m).Username, Time: FormatTimestamp(m.Timestamp)}
		if authenticated && m.SenderID == current.ID {
			line.Author = "You"
			line.Mine = true
		}
		lines = append(lines, line)
	}
	return lines
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999",
	"2006-01-02T15:04:05",
}

// FormatTimestamp renders a remote timestamp as "Jan 2, 03:04 PM", or returns
// it unchanged when it cannot be read.
func FormatTimestamp(ts string) string {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.Format("Jan 2, 03:04 PM")
		}
	}
	return ts
}

// SortItinerary orders items by day number, keeping the remote's order within
// a day. The input is not modified.
func SortItinerary(items []models.ItineraryItem) []models.ItineraryItem {
	out := append([]models.ItineraryItem(nil), items...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DayNumber < out[j].DayNumber
	})
	return out
}
