// Package conflict is the single decision point a booking flow calls before it persists
// an appointment. CheckAvailability is pure: every input, including the current time,
// is passed in, and business rejections come back as a Verdict rather than an error.
package conflict

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling/interval"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// ErrContractViolation is returned for caller bugs (missing doctor, missing timezone),
// never for a request that is merely not bookable.
var ErrContractViolation = errors.New("conflict: contract violation")

// Request is a proposed appointment
type Request struct {
	DoctorID        int64
	Date            time.Time // calendar date, time of day ignored
	StartTime       types.TimeString
	DurationMinutes int

	// ExcludeAppointmentID skips one existing appointment, used when moving it
	ExcludeAppointmentID int64
}

// ExistingAppointment is the reduced view of a stored appointment used for conflict checks
type ExistingAppointment struct {
	ID       int64
	DoctorID int64
	Interval interval.Interval
	Status   domain.AppointmentStatus
}

// Policy holds the practice booking rules
type Policy struct {
	MinNoticeHours       int
	MaxFutureBookingDays int // 0 = unlimited
	Location             *time.Location
}

// CheckAvailability decides whether req can be booked. Checks run in order and stop at the
// first failure: request shape, notice/horizon policy, vacation, working hours, overlap.
func CheckAvailability(
	req Request,
	schedule domain.DoctorSchedule,
	existing []ExistingAppointment,
	policy Policy,
	now time.Time,
) (Verdict, error) {
	if req.DoctorID <= 0 {
		return Verdict{}, fmt.Errorf("%w: doctor id is required", ErrContractViolation)
	}
	if policy.Location == nil {
		return Verdict{}, fmt.Errorf("%w: policy location is required", ErrContractViolation)
	}
	if schedule.DoctorID != 0 && schedule.DoctorID != req.DoctorID {
		return Verdict{}, fmt.Errorf("%w: schedule of doctor %d passed for doctor %d",
			ErrContractViolation, schedule.DoctorID, req.DoctorID)
	}

	// 1. Форма запроса и интервал-кандидат
	candidate, violation := buildCandidate(req, policy.Location)
	if violation != "" {
		return Rejected(ReasonInvalidRequest, violation), nil
	}

	// 2. Минимальное время до приёма и горизонт бронирования
	if v := checkPolicy(candidate, policy, now); v != "" {
		return Rejected(ReasonInvalidRequest, v).withInterval(candidate), nil
	}

	// 3. Отпуск блокирует весь день
	if availability.IsOnVacation(candidate, schedule.Vacations) {
		return Rejected(ReasonDuringVacation, "").withInterval(candidate), nil
	}

	// 4. Рабочие окна
	if !availability.IsWorkingTime(candidate, schedule.Weekly) {
		return Rejected(ReasonOutsideWorkingHours, "").withInterval(candidate), nil
	}

	// 5. Пересечение с действующими приёмами того же врача
	if conflicting, ok := FindOverlap(candidate, req.DoctorID, req.ExcludeAppointmentID, existing); ok {
		verdict := Rejected(ReasonOverlapsExistingAppointment, "").withInterval(candidate)
		verdict.ConflictingAppointmentID = conflicting.ID
		return verdict, nil
	}

	return Available(candidate), nil
}

// FindOverlap returns the first blocking appointment of doctorID that overlaps candidate.
// Appointments in non-blocking statuses and the excluded id are ignored.
func FindOverlap(candidate interval.Interval, doctorID, excludeID int64, existing []ExistingAppointment) (ExistingAppointment, bool) {
	for _, appt := range existing {
		if appt.DoctorID != doctorID {
			continue
		}
		if excludeID != 0 && appt.ID == excludeID {
			continue
		}
		if !appt.Status.BlocksSchedule() {
			continue
		}
		if appt.Interval.Overlaps(candidate) {
			return appt, true
		}
	}
	return ExistingAppointment{}, false
}

func buildCandidate(req Request, loc *time.Location) (interval.Interval, Violation) {
	if req.Date.IsZero() {
		return interval.Interval{}, ViolationInvalidDate
	}
	if req.StartTime.Validate() != nil {
		return interval.Interval{}, ViolationMalformedTime
	}

	candidate, err := interval.Make(req.Date, req.StartTime, req.DurationMinutes, loc)
	switch {
	case err == nil:
		return candidate, ""
	case errors.Is(err, interval.ErrInvalidDuration):
		return interval.Interval{}, ViolationInvalidDuration
	case errors.Is(err, interval.ErrInvalidDate):
		return interval.Interval{}, ViolationInvalidDate
	default:
		// валидное "HH:MM", которого не существует в этот день (переход на летнее время)
		return interval.Interval{}, ViolationNonexistentTime
	}
}

func checkPolicy(candidate interval.Interval, policy Policy, now time.Time) Violation {
	lead := candidate.Start().Sub(now)

	if lead < time.Duration(policy.MinNoticeHours)*time.Hour {
		return ViolationTooSoon
	}

	if policy.MaxFutureBookingDays > 0 && lead > time.Duration(policy.MaxFutureBookingDays)*24*time.Hour {
		return ViolationTooFarInFuture
	}

	return ""
}

// ToExisting converts stored appointments into the conflict view.
// Appointments with empty bounds are rebuilt from their civil date and time in loc.
func ToExisting(appointments []*domain.Appointment, loc *time.Location) ([]ExistingAppointment, error) {
	result := make([]ExistingAppointment, 0, len(appointments))
	for _, a := range appointments {
		iv, err := appointmentInterval(a, loc)
		if err != nil {
			return nil, fmt.Errorf("appointment id=%d: %w", a.ID, err)
		}
		result = append(result, ExistingAppointment{
			ID:       a.ID,
			DoctorID: a.DoctorID,
			Interval: iv,
			Status:   a.Status,
		})
	}
	return result, nil
}

func appointmentInterval(a *domain.Appointment, loc *time.Location) (interval.Interval, error) {
	if !a.StartsAt.IsZero() && !a.EndsAt.IsZero() {
		return interval.New(a.StartsAt.In(loc), a.EndsAt)
	}
	return interval.Make(a.AppointmentDate, a.StartTime, a.DurationMinutes, loc)
}
