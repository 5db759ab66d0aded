package add_doctor_vacation

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/doctors"
	"github.com/m04kA/SMC-AppointmentService/internal/service/doctors/models"
)

const (
	msgInvalidDoctorID    = "некорректный ID врача"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidVacation    = "некорректный отпуск: даты в формате YYYY-MM-DD, начало не позже конца"
	msgDoctorNotFound     = "врач не найден"
	msgForbidden          = "доступ запрещен"
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

// Handle POST /api/v1/doctors/{doctorId}/vacations
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	doctorID, err := handlers.PathInt64(r, "doctorId")
	if err != nil {
		h.logger.Warn("POST /doctors/{id}/vacations - Invalid doctor ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDoctorID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /doctors/{id}/vacations - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.CreateVacationRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /doctors/{id}/vacations - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID
	req.DoctorID = doctorID

	vacation, err := h.service.AddVacation(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, doctors.ErrInvalidInput):
			h.logger.Warn("POST /doctors/{id}/vacations - Invalid vacation: doctor_id=%d, error=%v", doctorID, err)
			handlers.RespondBadRequest(w, msgInvalidVacation)

		case errors.Is(err, doctors.ErrDoctorNotFound):
			h.logger.Warn("POST /doctors/{id}/vacations - Doctor not found: doctor_id=%d", doctorID)
			handlers.RespondNotFound(w, msgDoctorNotFound)

		case errors.Is(err, doctors.ErrAccessDenied):
			h.logger.Warn("POST /doctors/{id}/vacations - Access denied: doctor_id=%d, user_id=%d", doctorID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("POST /doctors/{id}/vacations - Failed to add vacation: doctor_id=%d, error=%v", doctorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /doctors/{id}/vacations - Vacation added successfully: vacation_id=%d, doctor_id=%d",
		vacation.ID, doctorID)
	handlers.RespondJSON(w, http.StatusCreated, vacation)
}
