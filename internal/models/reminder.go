package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Frequency is the recurrence class of a reminder.
type Frequency string

const (
	FrequencyNever Frequency = "NEVER"
	FrequencyMonth Frequency = "MONTH"
	FrequencyYear  Frequency = "YEAR"
)

// ParseFrequency accepts exactly NEVER, MONTH or YEAR. There is no default.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	if !f.Valid() {
		return "", fmt.Errorf("invalid frequency %q: must be one of NEVER, MONTH, YEAR", s)
	}
	return f, nil
}

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyNever, FrequencyMonth, FrequencyYear:
		return true
	}
	return false
}

// ShouldExpire reports whether reminders of this frequency go stale once
// their date passes. Only one-time reminders do.
func (f Frequency) ShouldExpire() bool {
	return f == FrequencyNever
}

// ReminderStatus is the display classification of a reminder.
type ReminderStatus string

const (
	StatusActive    ReminderStatus = "active"
	StatusCompleted ReminderStatus = "completed"
)

// Reminder is a dated note with a recurrence frequency.
//
// ShouldExpire is derived from Frequency and is only assigned through
// SetFrequency; it never comes from a request body.
type Reminder struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	ProfileID      *string   `json:"profile_id"`
	Title          string    `json:"title"`
	Description    *string   `json:"description"`
	DateToRemember Date      `json:"date_to_remember"`
	Completed      bool      `json:"completed"`
	Frequency      Frequency `json:"frequency"`
	ShouldExpire   bool      `json:"should_expire"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SetFrequency assigns the frequency and re-derives ShouldExpire.
func (r *Reminder) SetFrequency(f Frequency) {
	r.Frequency = f
	r.ShouldExpire = f.ShouldExpire()
}

// Status classifies the reminder for display. It depends on Completed only;
// ShouldExpire is a recurrence hint and plays no part.
func (r *Reminder) Status() ReminderStatus {
	if r.Completed {
		return StatusCompleted
	}
	return StatusActive
}

// ReminderWithProfile is a reminder joined with its (optional) profile
type ReminderWithProfile struct {
	Reminder
	ProfileName   *string `json:"profile_name"`
	ProfileImgURL *string `json:"profile_img_url"`
}

const dateLayout = "2006-01-02"

// Date is a calendar date without a time of day, encoded as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
