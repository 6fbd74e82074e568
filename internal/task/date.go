package task

import (
	"errors"
	"strings"
	"time"
)

const (
	DateLayout      = "2006-01-02"
	TimestampLayout = "2006-01-02 15:04:05"
)

// Date is a calendar day with no time of day or zone. The zero Date means
// "unset".
type Date struct {
	t time.Time // always midnight UTC
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day t falls on in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

func ParseDate(s string) (Date, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return Date{}, &FormatError{Field: "due date", Input: s, Err: errors.New("expected YYYY-MM-DD")}
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return Date{}, &FormatError{Field: "due date", Input: s, Err: errors.New("expected YYYY-MM-DD")}
	}
	return Date{t: t}, nil
}

func (d Date) IsZero() bool { return d.t.IsZero() }

func (d Date) Before(o Date) bool { return d.t.Before(o.t) }

func (d Date) Equal(o Date) bool { return d.t.Equal(o.t) }

func (d Date) Compare(o Date) int { return d.t.Compare(o.t) }

func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(DateLayout)
}

func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp reads a "YYYY-MM-DD HH:MM:SS" string as local time.
func ParseTimestamp(s string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, s, time.Local)
}
