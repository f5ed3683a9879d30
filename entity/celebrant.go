package entity

import (
	"churchhelper/internal/lib/validate"
	"net/http"
	"time"
)

type EventType string

const (
	EventBirthday    EventType = "birthday"
	EventAnniversary EventType = "anniversary"
)

// Celebrant is a person tracked for a yearly birthday or anniversary event.
// EventDate holds the recurring date in MM-DD form; Year is the birth or
// marriage year when known (0 means unknown).
type Celebrant struct {
	Id            int64     `json:"id,omitempty" bson:"id,omitempty"`
	Name          string    `json:"name" validate:"required,max=255"`
	EventType     EventType `json:"event_type" validate:"required,oneof=birthday anniversary"`
	EventDate     string    `json:"event_date" validate:"required,len=5"`
	Year          int       `json:"year,omitempty"`
	Spouse        string    `json:"spouse,omitempty" validate:"omitempty,max=255"`
	ContactHandle string    `json:"contact_handle,omitempty" validate:"omitempty,max=32"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

func (c *Celebrant) Bind(_ *http.Request) error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	return ValidateEventDate(c.EventDate)
}

// YearsSince returns the age (birthdays) or years married (anniversaries)
// as of the given year, or 0 when the base year is unknown.
func (c *Celebrant) YearsSince(year int) int {
	if c.Year == 0 || year < c.Year {
		return 0
	}
	return year - c.Year
}

// ValidateEventDate checks the MM-DD recurring date format, including
// day-of-month ranges.
func ValidateEventDate(s string) error {
	_, err := time.Parse("01-02", s)
	return err
}

// DateString formats a calendar date in the recurring MM-DD form.
func DateString(t time.Time) string {
	return t.Format("01-02")
}

// CelebrationSummary is the outcome of one daily broadcast run.
type CelebrationSummary struct {
	Success           bool   `json:"success"`
	Message           string `json:"message,omitempty"`
	SentCount         int    `json:"sent_count"`
	FailedCount       int    `json:"failed_count"`
	TotalCelebrations int    `json:"total_celebrations"`
	Error             string `json:"error,omitempty"`
}
