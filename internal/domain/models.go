package domain

import "time"

// Form field names. They double as the multipart part names posted to the
// backend and the input names rendered by the web form.
const (
	FieldName        = "name"
	FieldEmail       = "email"
	FieldStartDate   = "startDate"
	FieldStartTime   = "startTime"
	FieldEndDate     = "endDate"
	FieldEndTime     = "endTime"
	FieldAbsenceType = "absenceType"
	FieldReason      = "reason"

	// FieldWebsite is the honeypot. Humans never see it, so any value means
	// the form was filled by a bot.
	FieldWebsite = "website"

	// FieldFormSecret carries the anti-automation token.
	FieldFormSecret = "formSecret"
)

// Layouts used by the date and time inputs.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// RequiredFields lists the fields that must be non-empty, in the order they
// are checked. The first empty one receives focus.
var RequiredFields = []string{
	FieldName,
	FieldEmail,
	FieldStartDate,
	FieldStartTime,
	FieldEndDate,
	FieldEndTime,
	FieldAbsenceType,
	FieldReason,
}

// AllFields is every field the form carries, in wire order.
var AllFields = append(append([]string{}, RequiredFields...), FieldWebsite, FieldFormSecret)

// AbsenceTypes are the options offered for absenceType.
var AbsenceTypes = []string{
	"Vacation",
	"Sick Leave",
	"Personal",
	"Bereavement",
	"Jury Duty",
	"Unpaid Leave",
	"Other",
}

// FormFields maps field name to its current string value.
type FormFields map[string]string

// Get returns the value for name, or "" when absent.
func (f FormFields) Get(name string) string {
	if f == nil {
		return ""
	}
	return f[name]
}

// Clone returns an independent copy.
func (f FormFields) Clone() FormFields {
	out := make(FormFields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// StatusStyle is the visual tag attached to a status message.
type StatusStyle string

const (
	StyleNone    StatusStyle = ""
	StyleSuccess StatusStyle = "success"
	StyleError   StatusStyle = "error"
)

// Status is what the status region currently shows.
type Status struct {
	Message string
	Style   StatusStyle
}

// IsZero reports whether the status region is empty.
func (s Status) IsZero() bool { return s.Message == "" && s.Style == StyleNone }

// ValidationResult is Valid when Err is nil. Otherwise it names the first
// failing rule, the field that should receive focus (if any) and the message
// to display.
type ValidationResult struct {
	Field   string
	Message string
	Err     error
}

// Valid reports whether every rule passed.
func (v ValidationResult) Valid() bool { return v.Err == nil }

// OutcomeKind tags a SubmissionOutcome.
type OutcomeKind int

const (
	OutcomeFailure OutcomeKind = iota
	OutcomeSuccess
)

func (k OutcomeKind) String() string {
	if k == OutcomeSuccess {
		return "success"
	}
	return "failure"
}

// Outcome is the terminal result of one HandleSubmit call. For failures Err
// carries the classified cause and Message the text shown to the user.
type Outcome struct {
	Kind    OutcomeKind
	Message string
	Err     error
}

// Succeeded reports whether the submission was accepted by the backend.
func (o Outcome) Succeeded() bool { return o.Kind == OutcomeSuccess }

// Success builds a successful outcome.
func Success(message string) Outcome {
	return Outcome{Kind: OutcomeSuccess, Message: message}
}

// Failure builds a failed outcome.
func Failure(message string, err error) Outcome {
	return Outcome{Kind: OutcomeFailure, Message: message, Err: err}
}

// BackendReply is the decoded body of a 2xx backend response.
type BackendReply struct {
	Success bool
	Message string
}

// Attempt is one journaled submission attempt. Fields never include the
// honeypot or the token.
type Attempt struct {
	ID          int64
	Name        string
	Email       string
	StartDate   string
	StartTime   string
	EndDate     string
	EndTime     string
	AbsenceType string
	Reason      string
	Outcome     OutcomeKind
	ErrorKind   ErrorKind
	Message     string
	CreatedAt   time.Time
}

// NewAttempt captures fields and outcome into a journal record.
func NewAttempt(f FormFields, o Outcome, at time.Time) *Attempt {
	return &Attempt{
		Name:        f.Get(FieldName),
		Email:       f.Get(FieldEmail),
		StartDate:   f.Get(FieldStartDate),
		StartTime:   f.Get(FieldStartTime),
		EndDate:     f.Get(FieldEndDate),
		EndTime:     f.Get(FieldEndTime),
		AbsenceType: f.Get(FieldAbsenceType),
		Reason:      f.Get(FieldReason),
		Outcome:     o.Kind,
		ErrorKind:   KindOf(o.Err),
		Message:     o.Message,
		CreatedAt:   at,
	}
}
