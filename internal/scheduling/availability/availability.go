// Package availability answers whether a doctor is nominally open for an interval,
// ignoring other bookings, and validates schedule invariants before they are stored.
package availability

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling/interval"
)

// IsWorkingTime reports whether iv lies inside one available window of its weekday.
// Intervals crossing into the next calendar day are never working time.
func IsWorkingTime(iv interval.Interval, weekly domain.WeeklyAvailability) bool {
	if iv.IsZero() || iv.SpansMidnight() {
		return false
	}
	return interval.IsWithinAnyWindow(iv, weekly.Windows(iv.Weekday()))
}

// IsOnVacation reports whether the calendar date of iv's start falls inside any vacation.
// Bounds are inclusive and compared by date, so a vacation blocks whole days.
func IsOnVacation(iv interval.Interval, vacations []domain.VacationPeriod) bool {
	_, ok := FindVacation(iv.Date(), vacations)
	return ok
}

// FindVacation returns the first vacation covering date
func FindVacation(date time.Time, vacations []domain.VacationPeriod) (domain.VacationPeriod, bool) {
	day := interval.DateOf(date)
	for _, v := range vacations {
		if coversDay(v, day) {
			return v, true
		}
	}
	return domain.VacationPeriod{}, false
}

func coversDay(v domain.VacationPeriod, day time.Time) bool {
	start := interval.DateOf(v.StartDate)
	end := interval.DateOf(v.EndDate)
	return !day.Before(start) && !day.After(end)
}
