package availability

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

var (
	// ErrInvalidWindow window bounds are malformed or start >= end
	ErrInvalidWindow = errors.New("availability: invalid time window")

	// ErrOverlappingWindows two available windows of one weekday overlap
	ErrOverlappingWindows = errors.New("availability: overlapping windows")

	// ErrTooManyWindows more windows than allowed for a weekday
	ErrTooManyWindows = errors.New("availability: too many windows")

	// ErrInvalidWeekday weekday outside Sunday..Saturday
	ErrInvalidWeekday = errors.New("availability: invalid weekday")

	// ErrInvalidVacation vacation is missing dates or start > end
	ErrInvalidVacation = errors.New("availability: invalid vacation period")
)

// ValidateWeekly checks every weekday: start < end per window and no two available windows overlap.
// Unavailable windows may overlap anything.
func ValidateWeekly(weekly domain.WeeklyAvailability) error {
	for day, windows := range weekly {
		if day < time.Sunday || day > time.Saturday {
			return fmt.Errorf("%w: %d", ErrInvalidWeekday, day)
		}
		if err := ValidateDay(day, windows); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDay checks the windows of a single weekday
func ValidateDay(day time.Weekday, windows []domain.TimeWindow) error {
	if len(windows) > domain.MaxWindowsPerDay {
		return fmt.Errorf("%w: %s has %d windows, max %d", ErrTooManyWindows, day, len(windows), domain.MaxWindowsPerDay)
	}

	type span struct{ start, end int }
	available := make([]span, 0, len(windows))

	for i, w := range windows {
		if err := w.Start.Validate(); err != nil {
			return fmt.Errorf("%w: %s window #%d start %q", ErrInvalidWindow, day, i, w.Start)
		}
		start, err := w.Start.Minutes()
		if err != nil {
			return fmt.Errorf("%w: %s window #%d start %q", ErrInvalidWindow, day, i, w.Start)
		}
		end, err := w.End.Minutes()
		if err != nil {
			return fmt.Errorf("%w: %s window #%d end %q", ErrInvalidWindow, day, i, w.End)
		}
		if start >= end {
			return fmt.Errorf("%w: %s window #%d %s-%s", ErrInvalidWindow, day, i, w.Start, w.End)
		}
		if w.IsAvailable {
			available = append(available, span{start, end})
		}
	}

	sort.Slice(available, func(i, j int) bool { return available[i].start < available[j].start })
	for i := 1; i < len(available); i++ {
		if available[i].start < available[i-1].end {
			return fmt.Errorf("%w: %s", ErrOverlappingWindows, day)
		}
	}

	return nil
}

// ValidateVacation checks start <= end at date granularity
func ValidateVacation(v domain.VacationPeriod) error {
	if v.StartDate.IsZero() || v.EndDate.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", ErrInvalidVacation)
	}
	y1, m1, d1 := v.StartDate.Date()
	y2, m2, d2 := v.EndDate.Date()
	start := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	end := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	if start.After(end) {
		return fmt.Errorf("%w: start %s is after end %s", ErrInvalidVacation,
			start.Format(domain.DateFormat), end.Format(domain.DateFormat))
	}
	return nil
}

// SortWindows orders windows of every weekday by start time, in place
func SortWindows(weekly domain.WeeklyAvailability) {
	for _, windows := range weekly {
		sort.SliceStable(windows, func(i, j int) bool {
			return windows[i].Start.IsBefore(windows[j].Start)
		})
	}
}
