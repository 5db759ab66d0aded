package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на создание приёма
type Request struct {
	UserID          int64            // ID пользователя, который записывает
	DoctorID        int64            // ID врача
	PatientID       *int64           // Пациент, если врач записывает пациента (по умолчанию сам пользователь)
	Date            time.Time        // Дата приёма (без времени)
	StartTime       types.TimeString // Время начала по часам практики (например, "10:00")
	DurationMinutes *int             // Длительность, по умолчанию из политики практики
	Reason          *string          // Причина обращения (опционально)
	Notes           *string          // Дополнительные заметки (опционально)
}

// Response модель ответа с созданным приёмом
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

	// Денормализованные данные
	PatientName *string
	Reason      *string
	Notes       *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
