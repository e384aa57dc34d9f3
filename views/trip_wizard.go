package views

import (
	"strconv"
	"strings"
	"time"

	"tripmate/models"
	"tripmate/utils/errors"
)

// WizardStep is where the trip creation wizard currently is.
type WizardStep int

const (
	StepDetails WizardStep = iota + 1
	StepRoute
	StepSubmitting
	StepFailed
)

func (s WizardStep) String() string {
	switch s {
	case StepDetails:
		return "details"
	case StepRoute:
		return "route"
	case StepSubmitting:
		return "submitting"
	case StepFailed:
		return "failed"
	}
	return "unknown"
}

// ParseWizardStep reads the step a page posted back. Anything unknown starts
// over at StepDetails.
func ParseWizardStep(s string) WizardStep {
	for _, step := range []WizardStep{StepDetails, StepRoute, StepSubmitting, StepFailed} {
		if step.String() == s {
			return step
		}
	}
	return StepDetails
}

// TripForm is the raw trip form as typed. DurationDays is kept as text so a
// bad value can be shown back to the user.
type TripForm struct {
	Title        string
	Description  string
	StartDate    string
	EndDate      string
	Origin       string
	Destination  string
	DurationDays string
}

// TripFormFrom fills a form from an existing trip, for editing.
func TripFormFrom(t models.Trip) TripForm {
	f := TripForm{
		Title:       t.Title,
		Description: t.Description,
		StartDate:   t.StartDate,
		EndDate:     t.EndDate,
		Origin:      t.Origin,
		Destination: t.Destination,
	}
	if t.DurationDays != nil {
		f.DurationDays = strconv.Itoa(*t.DurationDays)
	}
	return f
}

// ValidateDetails checks the first wizard step.
func (f TripForm) ValidateDetails() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Title) == "" {
		errs["title"] = "Title is required"
	}
	if f.StartDate == "" {
		errs["start_date"] = "Start date is required"
	}
	if f.EndDate == "" {
		errs["end_date"] = "End date is required"
	} else if f.StartDate != "" && endsBeforeStart(f.StartDate, f.EndDate) {
		errs["end_date"] = "End date cannot be before start date"
	}
	return errs
}

// ValidateRoute checks the second wizard step.
func (f TripForm) ValidateRoute() FieldErrors {
	errs := FieldErrors{}
	if strings.TrimSpace(f.Origin) == "" {
		errs["origin"] = "Origin is required"
	}
	if strings.TrimSpace(f.Destination) == "" {
		errs["destination"] = "Destination is required"
	}
	if d := strings.TrimSpace(f.DurationDays); d != "" {
		if n, err := strconv.Atoi(d); err != nil || n <= 0 {
			errs["duration_days"] = "Duration must be a positive number"
		}
	}
	return errs
}

// Validate checks every field.
func (f TripForm) Validate() FieldErrors {
	errs := f.ValidateDetails()
	for k, v := range f.ValidateRoute() {
		errs[k] = v
	}
	return errs
}

// Data is the create payload. Call it only on a form that validated.
func (f TripForm) Data() models.TripFormData {
	data := models.TripFormData{
		Title:       strings.TrimSpace(f.Title),
		Description: strings.TrimSpace(f.Description),
		StartDate:   f.StartDate,
		EndDate:     f.EndDate,
		Origin:      strings.TrimSpace(f.Origin),
		Destination: strings.TrimSpace(f.Destination),
	}
	if n, err := strconv.Atoi(strings.TrimSpace(f.DurationDays)); err == nil {
		data.DurationDays = &n
	}
	return data
}

// endsBeforeStart compares calendar dates. Unparseable dates are left for
// the remote to reject.
func endsBeforeStart(start, end string) bool {
	s, err := time.Parse(models.DateLayout, start)
	if err != nil {
		return false
	}
	e, err := time.Parse(models.DateLayout, end)
	if err != nil {
		return false
	}
	return e.Before(s)
}

// TripWizard walks StepDetails -> StepRoute -> StepSubmitting. A failed
// submission lands in StepFailed, from which Next retries.
type TripWizard struct {
	Step   WizardStep
	Form   TripForm
	Errors FieldErrors
	Reason string
}

func NewTripWizard() *TripWizard {
	return &TripWizard{Step: StepDetails, Errors: FieldErrors{}}
}

// Next advances one step. It returns the field errors that kept the wizard
// where it is, or errors.ErrInFlight while a submission is pending.
func (w *TripWizard) Next() error {
	switch w.Step {
	case StepDetails:
		w.Errors = w.Form.ValidateDetails()
		if len(w.Errors) == 0 {
			w.Step = StepRoute
		}
	case StepRoute:
		w.Errors = w.Form.ValidateRoute()
		if len(w.Errors) == 0 {
			w.submitOrRewind()
		}
	case StepFailed:
		w.submitOrRewind()
	case StepSubmitting:
		return errors.ErrInFlight
	}
	return w.Errors.Err()
}

// submitOrRewind re-checks the whole form before submitting, sending the user
// back to the first step that has a problem.
func (w *TripWizard) submitOrRewind() {
	w.Errors = w.Form.Validate()
	switch {
	case len(w.Form.ValidateDetails()) > 0:
		w.Step = StepDetails
	case len(w.Errors) > 0:
		w.Step = StepRoute
	default:
		w.Step = StepSubmitting
		w.Reason = ""
	}
}

// Back returns to the details step from the route or failed step.
func (w *TripWizard) Back() {
	if w.Step == StepRoute || w.Step == StepFailed {
		w.Step = StepDetails
		w.Errors = FieldErrors{}
	}
}

// Fail records a rejected submission.
func (w *TripWizard) Fail(reason string) {
	if w.Step == StepSubmitting {
		w.Step = StepFailed
		w.Reason = reason
	}
}
