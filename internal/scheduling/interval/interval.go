// Package interval implements half-open time interval arithmetic used by the
// availability and conflict checks. It knows nothing about doctors or appointments.
package interval

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var (
	// ErrInvalidTime the wall-clock time is not "HH:MM" or does not exist on the date (DST gap)
	ErrInvalidTime = errors.New("interval: invalid time")

	// ErrInvalidDuration duration is outside [MinDurationMinutes, MaxDurationMinutes]
	ErrInvalidDuration = errors.New("interval: invalid duration")

	// ErrInvalidDate the calendar date is missing
	ErrInvalidDate = errors.New("interval: invalid date")

	// ErrEmptyInterval start is not strictly before end
	ErrEmptyInterval = errors.New("interval: start must be before end")

	// ErrNilLocation no timezone given
	ErrNilLocation = errors.New("interval: location is required")
)

// Interval is a half-open range [start, end) of absolute instants.
// Comparisons are instant based; the location of start is kept for calendar lookups.
type Interval struct {
	start time.Time
	end   time.Time
}

// New builds an interval from two instants. end is converted to start's location.
func New(start, end time.Time) (Interval, error) {
	if !start.Before(end) {
		return Interval{}, fmt.Errorf("%w: [%s, %s)", ErrEmptyInterval, start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return Interval{start: start, end: end.In(start.Location())}, nil
}

// Make builds the interval of a visit starting at clock on the calendar date of date,
// interpreted in loc, lasting durationMinutes of elapsed time.
func Make(date time.Time, clock types.TimeString, durationMinutes int, loc *time.Location) (Interval, error) {
	if loc == nil {
		return Interval{}, ErrNilLocation
	}
	if date.IsZero() {
		return Interval{}, ErrInvalidDate
	}
	if durationMinutes < domain.MinDurationMinutes || durationMinutes > domain.MaxDurationMinutes {
		return Interval{}, fmt.Errorf("%w: %d minutes, expected %d..%d",
			ErrInvalidDuration, durationMinutes, domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}

	if clock.IsEndOfDay() {
		return Interval{}, fmt.Errorf("%w: %s is only valid as a window end", ErrInvalidTime, clock)
	}
	start, err := clock.On(date, loc)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: %v", ErrInvalidTime, err)
	}

	return Interval{
		start: start,
		end:   start.Add(time.Duration(durationMinutes) * time.Minute),
	}, nil
}

// WindowOn materialises a time-of-day window on the calendar date of date in loc.
func WindowOn(date time.Time, window domain.TimeWindow, loc *time.Location) (Interval, error) {
	if loc == nil {
		return Interval{}, ErrNilLocation
	}
	start, err := window.Start.On(date, loc)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: window start: %v", ErrInvalidTime, err)
	}
	end, err := window.End.On(date, loc)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: window end: %v", ErrInvalidTime, err)
	}
	return New(start, end)
}

func (iv Interval) Start() time.Time {
	return iv.start
}

func (iv Interval) End() time.Time {
	return iv.end
}

func (iv Interval) Duration() time.Duration {
	return iv.end.Sub(iv.start)
}

func (iv Interval) IsZero() bool {
	return iv.start.IsZero() && iv.end.IsZero()
}

// Location of the interval's calendar
func (iv Interval) Location() *time.Location {
	return iv.start.Location()
}

// In returns the same instants viewed from another location
func (iv Interval) In(loc *time.Location) Interval {
	return Interval{start: iv.start.In(loc), end: iv.end.In(loc)}
}

// Date is the calendar date of the start instant in the interval's location
func (iv Interval) Date() time.Time {
	return DateOf(iv.start)
}

// Weekday of the start instant in the interval's location
func (iv Interval) Weekday() time.Weekday {
	return iv.start.Weekday()
}

// StartClock is the wall-clock start time in the interval's location
func (iv Interval) StartClock() types.TimeString {
	return types.NewTimeString(iv.start)
}

// Overlaps reports a.start < b.end && b.start < a.end.
// Touching intervals (one ends exactly when the other starts) do not overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.start.Before(other.end) && other.start.Before(iv.end)
}

// Contains reports outer.start <= inner.start && inner.end <= outer.end.
func (iv Interval) Contains(inner Interval) bool {
	return !inner.start.Before(iv.start) && !iv.end.Before(inner.end)
}

// SpansMidnight reports whether the interval reaches into the next calendar day.
// An interval ending exactly at midnight stays within its day.
func (iv Interval) SpansMidnight() bool {
	last := iv.end.Add(-time.Nanosecond)
	return !DateOf(last).Equal(DateOf(iv.start))
}

func (iv Interval) String() string {
	return fmt.Sprintf("[%s, %s)", iv.start.Format(time.RFC3339), iv.end.Format(time.RFC3339))
}

// Overlaps is the free-function form of Interval.Overlaps
func Overlaps(a, b Interval) bool {
	return a.Overlaps(b)
}

// Contains is the free-function form of Interval.Contains
func Contains(outer, inner Interval) bool {
	return outer.Contains(inner)
}

// IsWithinAnyWindow reports whether a single available window, placed on the interval's
// calendar date, fully contains the interval. Adjacent windows are never merged, so an
// interval crossing a gap between two windows is rejected.
func IsWithinAnyWindow(iv Interval, windows []domain.TimeWindow) bool {
	for _, window := range windows {
		if !window.IsAvailable {
			continue
		}
		bounds, err := WindowOn(iv.start, window, iv.Location())
		if err != nil {
			continue
		}
		if bounds.Contains(iv) {
			return true
		}
	}
	return false
}

// DateOf returns the calendar date of t (in t's location) as midnight UTC,
// so that dates from different locations compare with Equal/Before/After.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
