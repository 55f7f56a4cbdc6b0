package submission

import (
	"fmt"
	"time"

	"github.com/csg33k/timeoff-request/internal/domain"
)

// User-facing messages.
const (
	MsgBlocked       = "Submission blocked."
	MsgMissingField  = "Please complete all required fields."
	MsgDateOrder     = "End Date cannot be earlier than Start Date"
	MsgTimeOrder     = "End Time cannot be earlier than Start Time when dates are the same"
	MsgNotConfigured = "Form backend not configured. Set TIMEOFF_ENDPOINT_URL to your Apps Script web app URL."
	MsgSubmitting    = "Submitting…"
	MsgBusy          = "A submission is already in progress."
	MsgFailedPrefix  = "Submission failed: "
)

// Validate applies the local rules in order and stops at the first failure:
// honeypot, required fields, date order, then time order on same-day requests.
func Validate(f domain.FormFields) domain.ValidationResult {
	if f.Get(domain.FieldWebsite) != "" {
		return domain.ValidationResult{Message: MsgBlocked, Err: domain.ErrSpamBlocked}
	}
	for _, name := range domain.RequiredFields {
		if f.Get(name) == "" {
			return domain.ValidationResult{
				Field:   name,
				Message: MsgMissingField,
				Err:     fmt.Errorf("%s: %w", name, domain.ErrMissingField),
			}
		}
	}
	if !datesOrdered(f.Get(domain.FieldStartDate), f.Get(domain.FieldEndDate)) {
		return domain.ValidationResult{Message: MsgDateOrder, Err: domain.ErrDateOrder}
	}
	if !timesOrdered(f) {
		return domain.ValidationResult{Message: MsgTimeOrder, Err: domain.ErrTimeOrder}
	}
	return domain.ValidationResult{}
}

// datesOrdered compares calendar dates. Missing or unparseable values are not
// comparable and pass.
func datesOrdered(start, end string) bool {
	if start == "" || end == "" {
		return true
	}
	s, err := time.Parse(domain.DateLayout, start)
	if err != nil {
		return true
	}
	e, err := time.Parse(domain.DateLayout, end)
	if err != nil {
		return true
	}
	return !e.Before(s)
}

// timesOrdered only applies when both dates are the same string.
func timesOrdered(f domain.FormFields) bool {
	startDate, endDate := f.Get(domain.FieldStartDate), f.Get(domain.FieldEndDate)
	startTime, endTime := f.Get(domain.FieldStartTime), f.Get(domain.FieldEndTime)
	if startDate == "" || startDate != endDate || startTime == "" || endTime == "" {
		return true
	}
	s, ok := timestamp(startDate, startTime)
	if !ok {
		return true
	}
	e, ok := timestamp(endDate, endTime)
	if !ok {
		return true
	}
	return !e.Before(s)
}

// timestamp joins a date and an HH:MM time with seconds fixed at zero.
func timestamp(date, clock string) (time.Time, bool) {
	t, err := time.Parse(domain.DateLayout+"T"+domain.TimeLayout+":05", date+"T"+clock+":00")
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
