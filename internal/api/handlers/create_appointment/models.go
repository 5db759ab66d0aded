package create_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	DoctorID        int64   `json:"doctorId"`
	PatientID       *int64  `json:"patientId,omitempty"` // только для записи пациента врачом
	AppointmentDate string  `json:"appointmentDate"`     // "2026-03-02"
	StartTime       string  `json:"startTime"`           // "10:00"
	DurationMinutes *int    `json:"durationMinutes,omitempty"`
	Reason          *string `json:"reason,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID              int64   `json:"id"`
	PracticeID      int64   `json:"practiceId"`
	DoctorID        int64   `json:"doctorId"`
	PatientID       int64   `json:"patientId"`
	AppointmentDate string  `json:"appointmentDate"`
	StartTime       string  `json:"startTime"`
	DurationMinutes int     `json:"durationMinutes"`
	Status          string  `json:"status"`
	StartsAt        string  `json:"startsAt"`
	EndsAt          string  `json:"endsAt"`
	PatientName     *string `json:"patientName,omitempty"`
	Reason          *string `json:"reason,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
// Время начала не разбирается здесь, его формат проверяет resolver
func (r *CreateAppointmentRequest) ToUseCaseRequest(userID int64) (*createAppointment.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.AppointmentDate)
	if err != nil {
		return nil, err
	}

	return &createAppointment.Request{
		UserID:          userID,
		DoctorID:        r.DoctorID,
		PatientID:       r.PatientID,
		Date:            date,
		StartTime:       types.TimeString(r.StartTime),
		DurationMinutes: r.DurationMinutes,
		Reason:          r.Reason,
		Notes:           r.Notes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createAppointment.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:              resp.ID,
		PracticeID:      resp.PracticeID,
		DoctorID:        resp.DoctorID,
		PatientID:       resp.PatientID,
		AppointmentDate: resp.AppointmentDate.Format(domain.DateFormat),
		StartTime:       resp.StartTime.String(),
		DurationMinutes: resp.DurationMinutes,
		Status:          resp.Status,
		StartsAt:        resp.StartsAt.Format(time.RFC3339),
		EndsAt:          resp.EndsAt.Format(time.RFC3339),
		PatientName:     resp.PatientName,
		Reason:          resp.Reason,
		Notes:           resp.Notes,
		CreatedAt:       resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       resp.UpdatedAt.Format(time.RFC3339),
	}
}
