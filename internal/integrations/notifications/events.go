package notifications

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// EventType тип события о приёме, он же routing key
type EventType string

const (
	EventAppointmentCreated       EventType = "appointment.created"
	EventAppointmentRescheduled   EventType = "appointment.rescheduled"
	EventAppointmentCancelled     EventType = "appointment.cancelled"
	EventAppointmentStatusChanged EventType = "appointment.status_changed"
)

// AppointmentEvent тело сообщения
type AppointmentEvent struct {
	EventID       string    `json:"event_id"`
	Type          EventType `json:"type"`
	OccurredAt    time.Time `json:"occurred_at"`
	AppointmentID int64     `json:"appointment_id"`
	PracticeID    int64     `json:"practice_id"`
	DoctorID      int64     `json:"doctor_id"`
	PatientID     int64     `json:"patient_id"`
	Status        string    `json:"status"`
	StartsAt      time.Time `json:"starts_at"`
	EndsAt        time.Time `json:"ends_at"`

	// PreviousStartsAt заполняется для appointment.rescheduled
	PreviousStartsAt *time.Time `json:"previous_starts_at,omitempty"`
	// PreviousStatus заполняется для appointment.status_changed и appointment.cancelled
	PreviousStatus string `json:"previous_status,omitempty"`
}

// NewAppointmentEvent событие по текущему состоянию приёма
func NewAppointmentEvent(eventType EventType, appt *domain.Appointment, occurredAt time.Time) AppointmentEvent {
	return AppointmentEvent{
		EventID:       uuid.NewString(),
		Type:          eventType,
		OccurredAt:    occurredAt.UTC(),
		AppointmentID: appt.ID,
		PracticeID:    appt.PracticeID,
		DoctorID:      appt.DoctorID,
		PatientID:     appt.PatientID,
		Status:        string(appt.Status),
		StartsAt:      appt.StartsAt.UTC(),
		EndsAt:        appt.EndsAt.UTC(),
	}
}
