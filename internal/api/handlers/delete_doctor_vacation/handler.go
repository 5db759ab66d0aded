package delete_doctor_vacation

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/doctors"
)

const (
	msgInvalidDoctorID   = "некорректный ID врача"
	msgInvalidVacationID = "некорректный ID отпуска"
	msgMissingUserID     = "отсутствует ID пользователя"
	msgDoctorNotFound    = "врач не найден"
	msgVacationNotFound  = "отпуск не найден"
	msgForbidden         = "доступ запрещен"
)

type Handler struct {
	service DoctorService
	logger  Logger
}

func NewHandler(service DoctorService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle DELETE /api/v1/doctors/{doctorId}/vacations/{vacationId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	doctorID, err := handlers.PathInt64(r, "doctorId")
	if err != nil {
		h.logger.Warn("DELETE /doctors/{id}/vacations/{id} - Invalid doctor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDoctorID)
		return
	}

	vacationID, err := handlers.PathInt64(r, "vacationId")
	if err != nil {
		h.logger.Warn("DELETE /doctors/{id}/vacations/{id} - Invalid vacation ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidVacationID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("DELETE /doctors/{id}/vacations/{id} - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	if err := h.service.DeleteVacation(r.Context(), doctorID, vacationID, userID); err != nil {
		switch {
		case errors.Is(err, doctors.ErrVacationNotFound):
			h.logger.Warn("DELETE /doctors/{id}/vacations/{id} - Vacation not found: doctor_id=%d, vacation_id=%d",
				doctorID, vacationID)
			handlers.RespondNotFound(w, msgVacationNotFound)

		case errors.Is(err, doctors.ErrDoctorNotFound):
			h.logger.Warn("DELETE /doctors/{id}/vacations/{id} - Doctor not found: doctor_id=%d", doctorID)
			handlers.RespondNotFound(w, msgDoctorNotFound)

		case errors.Is(err, doctors.ErrAccessDenied):
			h.logger.Warn("DELETE /doctors/{id}/vacations/{id} - Access denied: doctor_id=%d, user_id=%d", doctorID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("DELETE /doctors/{id}/vacations/{id} - Failed to delete vacation: vacation_id=%d, error=%v",
				vacationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /doctors/{id}/vacations/{id} - Vacation deleted successfully: doctor_id=%d, vacation_id=%d",
		doctorID, vacationID)
	handlers.RespondNoContent(w)
}
