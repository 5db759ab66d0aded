package check_availability

import (
	"time"

	checkAvailability "github.com/m04kA/SMC-AppointmentService/internal/usecase/check_availability"
)

// VerdictResponse HTTP response model
type VerdictResponse struct {
	DoctorID                 int64   `json:"doctorId"`
	Available                bool    `json:"available"`
	Reason                   string  `json:"reason,omitempty"`    // OUTSIDE_WORKING_HOURS, DURING_VACATION, ...
	Violation                string  `json:"violation,omitempty"` // уточнение для INVALID_REQUEST
	ConflictingAppointmentID *int64  `json:"conflictingAppointmentId,omitempty"`
	DurationMinutes          int     `json:"durationMinutes"`
	Timezone                 string  `json:"timezone"`
	StartsAt                 *string `json:"startsAt,omitempty"`
	EndsAt                   *string `json:"endsAt,omitempty"`
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *checkAvailability.Response) *VerdictResponse {
	return &VerdictResponse{
		DoctorID:                 resp.DoctorID,
		Available:                resp.Available,
		Reason:                   string(resp.Reason),
		Violation:                string(resp.Violation),
		ConflictingAppointmentID: resp.ConflictingAppointmentID,
		DurationMinutes:          resp.DurationMinutes,
		Timezone:                 resp.Timezone,
		StartsAt:                 formatTime(resp.StartsAt),
		EndsAt:                   formatTime(resp.EndsAt),
	}
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
