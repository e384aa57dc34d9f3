package models

type ItineraryItem struct {
	ID          int    `json:"id"`
	TripID      int    `json:"trip_id"`
	DayNumber   int    `json:"day_number"`
	Location    string `json:"location"`
	Description string `json:"description,omitempty"`
}

type ItineraryItemFormData struct {
	DayNumber   int    `json:"day_number"`
	Location    string `json:"location"`
	Description string `json:"description,omitempty"`
}
