package models

// Message is a trip chat entry. Sender is embedded when the remote has it.
type Message struct {
	ID        int    `json:"id"`
	TripID    int    `json:"trip_id"`
	SenderID  int    `json:"sender_id"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	Sender    *User  `json:"sender,omitempty"`
}

type MessageFormData struct {
	Content string `json:"content"`
}
