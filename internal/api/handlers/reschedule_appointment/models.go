package reschedule_appointment

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	rescheduleAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// RescheduleAppointmentRequest HTTP request model
type RescheduleAppointmentRequest struct {
	AppointmentDate string `json:"appointmentDate"` // "2026-03-02"
	StartTime       string `json:"startTime"`       // "10:30"
	DurationMinutes *int   `json:"durationMinutes,omitempty"`
}

// AppointmentResponse HTTP response model
type AppointmentResponse struct {
	ID               int64   `json:"id"`
	PracticeID       int64   `json:"practiceId"`
	DoctorID         int64   `json:"doctorId"`
	PatientID        int64   `json:"patientId"`
	AppointmentDate  string  `json:"appointmentDate"`
	StartTime        string  `json:"startTime"`
	DurationMinutes  int     `json:"durationMinutes"`
	Status           string  `json:"status"`
	StartsAt         string  `json:"startsAt"`
	EndsAt           string  `json:"endsAt"`
	PreviousStartsAt string  `json:"previousStartsAt"`
	PatientName      *string `json:"patientName,omitempty"`
	Reason           *string `json:"reason,omitempty"`
	Notes            *string `json:"notes,omitempty"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *RescheduleAppointmentRequest) ToUseCaseRequest(appointmentID, userID int64) (*rescheduleAppointment.Request, error) {
	date, err := time.Parse(domain.DateFormat, r.AppointmentDate)
	if err != nil {
		return nil, err
	}

	return &rescheduleAppointment.Request{
		UserID:          userID,
		AppointmentID:   appointmentID,
		Date:            date,
		StartTime:       types.TimeString(r.StartTime),
		DurationMinutes: r.DurationMinutes,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *rescheduleAppointment.Response) *AppointmentResponse {
	return &AppointmentResponse{
		ID:               resp.ID,
		PracticeID:       resp.PracticeID,
		DoctorID:         resp.DoctorID,
		PatientID:        resp.PatientID,
		AppointmentDate:  resp.AppointmentDate.Format(domain.DateFormat),
		StartTime:        resp.StartTime.String(),
		DurationMinutes:  resp.DurationMinutes,
		Status:           resp.Status,
		StartsAt:         resp.StartsAt.Format(time.RFC3339),
		EndsAt:           resp.EndsAt.Format(time.RFC3339),
		PreviousStartsAt: resp.PreviousStartsAt.Format(time.RFC3339),
		PatientName:      resp.PatientName,
		Reason:           resp.Reason,
		Notes:            resp.Notes,
		CreatedAt:        resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        resp.UpdatedAt.Format(time.RFC3339),
	}
}
