package wizard

import (
	"errors"
	"fmt"
	"time"

	"lavapp/pkg/models"
)

// PickupWindowDays is how far ahead a collection may be booked.
const PickupWindowDays = 30

// Shift is one of the fixed collection windows.
type Shift string

const (
	ShiftMorning   Shift = "morning"
	ShiftAfternoon Shift = "afternoon"
	ShiftEvening   Shift = "evening"
)

var shiftLabels = map[Shift]string{
	ShiftMorning:   "🌅 Manhã (8h-12h)",
	ShiftAfternoon: "☀️ Tarde (13h-17h)",
	ShiftEvening:   "🌙 Noite (18h-22h)",
}

// legacy form values
var shiftAliases = map[string]Shift{
	"manha": ShiftMorning,
	"tarde": ShiftAfternoon,
	"noite": ShiftEvening,
}

// Shifts lists the windows in display order.
var Shifts = []Shift{ShiftMorning, ShiftAfternoon, ShiftEvening}

// ParseShift accepts a shift key or its legacy alias.
func ParseShift(s string) (Shift, bool) {
	if _, ok := shiftLabels[Shift(s)]; ok {
		return Shift(s), true
	}
	shift, ok := shiftAliases[s]
	return shift, ok
}

func (s Shift) Label() string {
	return shiftLabels[s]
}

// Pickup is the collection slot chosen at checkout.
type Pickup struct {
	Date  string `json:"date"`
	Shift string `json:"shift"`
}

// FieldError reports a missing or invalid checkout field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// FieldErrors extracts every FieldError joined into err.
func FieldErrors(err error) []*FieldError {
	var out []*FieldError
	var fe *FieldError
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			out = append(out, FieldErrors(e)...)
		}
		return out
	}
	if errors.As(err, &fe) {
		out = append(out, fe)
	}
	return out
}

func dayStart(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// validate checks the slot against the booking window starting at now's date.
// It returns the parsed date and shift, or the joined field errors.
func (p Pickup) validate(now time.Time) (time.Time, Shift, error) {
	var errs []error
	var date time.Time
	var shift Shift

	if p.Date == "" {
		errs = append(errs, &FieldError{Field: "pickupDate", Message: "pickup date is required"})
	} else if parsed, err := time.ParseInLocation(models.DateLayout, p.Date, now.Location()); err != nil {
		errs = append(errs, &FieldError{Field: "pickupDate", Message: "pickup date must be YYYY-MM-DD"})
	} else {
		today := dayStart(now)
		if parsed.Before(today) || parsed.After(today.AddDate(0, 0, PickupWindowDays)) {
			errs = append(errs, &FieldError{
				Field:   "pickupDate",
				Message: fmt.Sprintf("pickup date must be within the next %d days", PickupWindowDays),
			})
		}
		date = parsed
	}

	if p.Shift == "" {
		errs = append(errs, &FieldError{Field: "pickupShift", Message: "pickup shift is required"})
	} else if s, ok := ParseShift(p.Shift); !ok {
		errs = append(errs, &FieldError{Field: "pickupShift", Message: "unknown pickup shift"})
	} else {
		shift = s
	}

	if len(errs) > 0 {
		return time.Time{}, "", errors.Join(errs...)
	}
	return date, shift, nil
}

// CollectionTime formats a slot the way orders store it, e.g. "02/05/2024 - 🌅 Manhã (8h-12h)".
func CollectionTime(date time.Time, shift Shift) string {
	return date.Format("02/01/2006") + " - " + shift.Label()
}
