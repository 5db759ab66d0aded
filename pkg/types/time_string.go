package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
)

// timeLayout is the wall-clock layout used by TimeString ("HH:MM", 24-hour).
const timeLayout = "15:04"

// EndOfDay is midnight at the end of the day. It is valid only as the end of a window.
const EndOfDay TimeString = "24:00"

// ErrInvalidTimeString is returned when a value is not a valid "HH:MM" wall-clock time.
var ErrInvalidTimeString = errors.New("invalid time string format")

// TimeString is a wall-clock time of day in "HH:MM" form, without date or location.
// The zero value is the empty string and means "not set".
type TimeString string

// NewTimeString takes the hour and minute of t in t's own location.
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format(timeLayout))
}

// NewTimeStringFromString parses and validates s.
func NewTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(strings.TrimSpace(s))
	if err := ts.Validate(); err != nil {
		return "", err
	}
	return ts, nil
}

// NewEndTimeStringFromString is NewTimeStringFromString that also accepts "24:00".
func NewEndTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(strings.TrimSpace(s))
	if err := ts.ValidateEnd(); err != nil {
		return "", err
	}
	return ts, nil
}

// MustTimeString panics on invalid input. Intended for tests and constants.
func MustTimeString(s string) TimeString {
	ts, err := NewTimeStringFromString(s)
	if err != nil {
		panic(err)
	}
	return ts
}

// String returns the "HH:MM" representation.
func (t TimeString) String() string {
	return string(t)
}

// IsZero reports whether the value is unset.
func (t TimeString) IsZero() bool {
	return t == ""
}

// Validate checks the strict "HH:MM" form (two digits each, 00:00..23:59).
func (t TimeString) Validate() error {
	s := string(t)
	if len(s) != len(timeLayout) || s[2] != ':' {
		return ErrInvalidTimeString
	}
	if _, err := time.Parse(timeLayout, s); err != nil {
		return ErrInvalidTimeString
	}
	return nil
}

// ValidateEnd is Validate that also accepts EndOfDay.
func (t TimeString) ValidateEnd() error {
	if t == EndOfDay {
		return nil
	}
	return t.Validate()
}

// IsEndOfDay reports whether t is "24:00".
func (t TimeString) IsEndOfDay() bool {
	return t == EndOfDay
}

// Clock returns hour and minute. EndOfDay yields 24, 0.
func (t TimeString) Clock() (hour, minute int, err error) {
	if t == EndOfDay {
		return 24, 0, nil
	}
	if err := t.Validate(); err != nil {
		return 0, 0, err
	}
	parsed, _ := time.Parse(timeLayout, string(t))
	return parsed.Hour(), parsed.Minute(), nil
}

// Minutes returns the number of minutes since midnight.
func (t TimeString) Minutes() (int, error) {
	h, m, err := t.Clock()
	if err != nil {
		return 0, err
	}
	return h*60 + m, nil
}

// IsBefore reports whether t is strictly earlier than other. Invalid values compare as false.
func (t TimeString) IsBefore(other TimeString) bool {
	a, errA := t.Minutes()
	b, errB := other.Minutes()
	return errA == nil && errB == nil && a < b
}

// IsAfter reports whether t is strictly later than other. Invalid values compare as false.
func (t TimeString) IsAfter(other TimeString) bool {
	a, errA := t.Minutes()
	b, errB := other.Minutes()
	return errA == nil && errB == nil && a > b
}

// On places the wall-clock time on the calendar date of date in loc.
// It fails when the local time does not exist on that date (DST gap).
// A local time that occurs twice (DST fall-back) resolves to its first occurrence.
// EndOfDay is the first instant of the next calendar day.
func (t TimeString) On(date time.Time, loc *time.Location) (time.Time, error) {
	h, m, err := t.Clock()
	if err != nil {
		return time.Time{}, err
	}
	y, mon, d := date.Date()
	if t == EndOfDay {
		return time.Date(y, mon, d+1, 0, 0, 0, 0, loc), nil
	}

	at := time.Date(y, mon, d, h, m, 0, 0, loc)
	if at.Hour() != h || at.Minute() != m {
		return time.Time{}, fmt.Errorf("%w: %s does not exist on %s in %s",
			ErrInvalidTimeString, t, date.Format("2006-01-02"), loc)
	}
	return firstOccurrence(at), nil
}

// firstOccurrence moves at to the earlier instant with the same wall clock, if one exists.
// time.Date does not specify which of the two it returns.
func firstOccurrence(at time.Time) time.Time {
	_, offset := at.Zone()
	_, before := at.Add(-3 * time.Hour).Zone()
	if before <= offset {
		return at
	}
	earlier := at.Add(-time.Duration(before-offset) * time.Second)
	if earlier.Hour() == at.Hour() && earlier.Minute() == at.Minute() {
		return earlier
	}
	return at
}

// Value implements driver.Valuer.
func (t TimeString) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	if err := t.ValidateEnd(); err != nil {
		return nil, err
	}
	return string(t), nil
}

// Scan implements sql.Scanner. PostgreSQL TIME columns arrive as "HH:MM:SS".
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = ""
		return nil
	case time.Time:
		*t = NewTimeString(v)
		return nil
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	default:
		return fmt.Errorf("%w: cannot scan %T", ErrInvalidTimeString, src)
	}
}

func (t *TimeString) scanString(s string) error {
	if len(s) >= len(timeLayout) {
		s = s[:len(timeLayout)]
	}
	ts, err := NewEndTimeStringFromString(s)
	if err != nil {
		return err
	}
	*t = ts
	return nil
}
