package reschedule_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на перенос приёма
type Request struct {
	UserID          int64            // ID пользователя (пациент или врач приёма)
	AppointmentID   int64            // ID переносимого приёма
	Date            time.Time        // Новая дата (без времени)
	StartTime       types.TimeString // Новое время начала
	DurationMinutes *int             // Новая длительность, по умолчанию прежняя
}

// Response модель ответа с перенесённым приёмом
type Response struct {
	ID              int64
	PracticeID      int64
	DoctorID        int64
	PatientID       int64
	AppointmentDate time.Time
	StartTime       types.TimeString
	DurationMinutes int
	Status          string
	StartsAt        time.Time
	EndsAt          time.Time

	PreviousStartsAt time.Time // Начало до переноса

	PatientName *string
	Reason      *string
	Notes       *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
