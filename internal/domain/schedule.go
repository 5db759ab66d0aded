package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Doctor represents a practitioner who can be booked
type Doctor struct {
	ID         int64
	PracticeID int64
	UserID     int64 // user id used for access checks
	FullName   string
	Specialty  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TimeWindow is a recurring time-of-day range on a weekday.
// Windows with IsAvailable=false are informational (e.g. lunch break) and never grant bookings.
type TimeWindow struct {
	Start       types.TimeString
	End         types.TimeString
	IsAvailable bool
}

// WeeklyAvailability maps a weekday to its ordered windows.
// A weekday without entries is closed.
type WeeklyAvailability map[time.Weekday][]TimeWindow

// Windows returns the windows for a weekday (nil if closed)
func (w WeeklyAvailability) Windows(day time.Weekday) []TimeWindow {
	if w == nil {
		return nil
	}
	return w[day]
}

// IsClosed returns true if the weekday has no available windows
func (w WeeklyAvailability) IsClosed(day time.Weekday) bool {
	for _, window := range w.Windows(day) {
		if window.IsAvailable {
			return false
		}
	}
	return true
}

// VacationPeriod is an inclusive date range during which the doctor takes no appointments
type VacationPeriod struct {
	ID        int64
	DoctorID  int64
	StartDate time.Time // date only
	EndDate   time.Time // date only, inclusive
	Reason    string
	CreatedAt time.Time
}

// DoctorSchedule bundles everything the availability checks need about one doctor
type DoctorSchedule struct {
	DoctorID  int64
	Weekly    WeeklyAvailability
	Vacations []VacationPeriod
}
