package views

import (
	"strconv"
	"strings"

	"tripmate/models"
)

// ItineraryForm is the owner's "add stop" form on a trip page.
type ItineraryForm struct {
	DayNumber   string
	Location    string
	Description string
}

func (f ItineraryForm) Validate() FieldErrors {
	errs := FieldErrors{}
	if n, err := strconv.Atoi(strings.TrimSpace(f.DayNumber)); err != nil || n <= 0 {
		errs["day_number"] = "Day must be a positive number"
	}
	if strings.TrimSpace(f.Location) == "" {
		errs["location"] = "Location is required"
	}
	return errs
}

// Data is the create payload. Call it only on a form that validated.
func (f ItineraryForm) Data() models.ItineraryItemFormData {
	day, _ := strconv.Atoi(strings.TrimSpace(f.DayNumber))
	return models.ItineraryItemFormData{
		DayNumber:   day,
		Location:    strings.TrimSpace(f.Location),
		Description: strings.TrimSpace(f.Description),
	}
}
