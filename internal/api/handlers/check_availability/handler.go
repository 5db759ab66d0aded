package check_availability

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling/conflict"
	checkAvailability "github.com/m04kA/SMC-AppointmentService/internal/usecase/check_availability"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const (
	msgInvalidDoctorID = "некорректный ID врача"
	msgMissingParams   = "параметры date и time обязательны"
	msgInvalidDate     = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgInvalidDuration = "некорректная длительность приёма"
	msgDoctorNotFound  = "врач не найден"
)

type Handler struct {
	useCase CheckAvailabilityUseCase
	logger  Logger
}

func NewHandler(useCase CheckAvailabilityUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/doctors/{doctorId}/availability
// Query params: date (YYYY-MM-DD), time (HH:MM), duration (минуты, опционально)
// Отрицательный вердикт возвращается со статусом 200
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	doctorID, err := handlers.PathInt64(r, "doctorId")
	if err != nil {
		h.logger.Warn("GET /doctors/{id}/availability - Invalid doctor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDoctorID)
		return
	}

	startTime := r.URL.Query().Get("time")
	date, err := handlers.QueryDate(r, "date")
	if err != nil {
		h.logger.Warn("GET /doctors/{id}/availability - Invalid date format: %v", err)
		handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgInvalidDate, string(conflict.ReasonInvalidRequest))
		return
	}
	if date == nil || startTime == "" {
		h.logger.Warn("GET /doctors/{id}/availability - Missing date or time")
		handlers.RespondBadRequest(w, msgMissingParams)
		return
	}

	duration, err := handlers.QueryIntPtr(r, "duration")
	if err != nil {
		h.logger.Warn("GET /doctors/{id}/availability - Invalid duration: %v", err)
		handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgInvalidDuration, string(conflict.ReasonInvalidRequest))
		return
	}

	result, err := h.useCase.Execute(r.Context(), &checkAvailability.Request{
		DoctorID:        doctorID,
		Date:            *date,
		StartTime:       types.TimeString(startTime),
		DurationMinutes: duration,
	})
	if err != nil {
		if errors.Is(err, checkAvailability.ErrDoctorNotFound) {
			h.logger.Warn("GET /doctors/{id}/availability - Doctor not found: doctor_id=%d", doctorID)
			handlers.RespondNotFound(w, msgDoctorNotFound)
			return
		}
		h.logger.Error("GET /doctors/{id}/availability - Failed to check availability: doctor_id=%d, error=%v", doctorID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /doctors/{id}/availability - Verdict: doctor_id=%d, available=%t, reason=%s",
		doctorID, result.Available, result.Reason)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
