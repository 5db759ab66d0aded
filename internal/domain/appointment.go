package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "scheduled"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusRejected  AppointmentStatus = "rejected"
	StatusNoShow    AppointmentStatus = "no_show"
)

// Appointment represents a patient visit booked with a doctor
type Appointment struct {
	ID              int64
	PracticeID      int64
	DoctorID        int64
	PatientID       int64 // user id of the patient
	AppointmentDate time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Status          AppointmentStatus

	// Absolute bounds of the visit, computed in the practice timezone
	StartsAt time.Time
	EndsAt   time.Time

	// Denormalized data for history
	PatientName *string
	Reason      *string
	Notes       *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BlocksSchedule returns true if the appointment occupies the doctor's time
func (a *Appointment) BlocksSchedule() bool {
	return a.Status.BlocksSchedule()
}

// CanBeCancelled returns true if the appointment can be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status == StatusScheduled || a.Status == StatusConfirmed
}

// CanBeRescheduled returns true if the appointment can be moved to another time
func (a *Appointment) CanBeRescheduled() bool {
	return a.Status == StatusScheduled || a.Status == StatusConfirmed
}

// IsFinal returns true if no further status transitions are possible
func (a *Appointment) IsFinal() bool {
	return a.Status.IsFinal()
}

// BlocksSchedule returns true for statuses that take part in conflict checks
func (s AppointmentStatus) BlocksSchedule() bool {
	for _, blocking := range BlockingStatuses {
		if s == blocking {
			return true
		}
	}
	return false
}

// IsFinal returns true for terminal statuses
func (s AppointmentStatus) IsFinal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusRejected, StatusNoShow:
		return true
	default:
		return false
	}
}

// IsValid returns true if the status is known
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled, StatusRejected, StatusNoShow:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether the status may change to next
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	allowed, ok := statusTransitions[s]
	if !ok {
		return false
	}
	for _, candidate := range allowed {
		if candidate == next {
			return true
		}
	}
	return false
}

var statusTransitions = map[AppointmentStatus][]AppointmentStatus{
	StatusScheduled: {StatusConfirmed, StatusRejected, StatusCancelled, StatusNoShow, StatusCompleted},
	StatusConfirmed: {StatusCompleted, StatusNoShow, StatusCancelled},
}

// DoctorAppointmentsFilter фильтр для получения приёмов врача
type DoctorAppointmentsFilter struct {
	DoctorID        int64              // Обязательный параметр
	StartDate       *time.Time         // Начало периода (опционально)
	EndDate         *time.Time         // Конец периода (опционально)
	Status          *AppointmentStatus // Фильтр по статусу (опционально)
	IncludeInactive bool               // Включать ли неблокирующие приёмы (отменённые, завершённые, no-show)
}
