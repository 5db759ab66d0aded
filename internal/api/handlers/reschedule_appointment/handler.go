package reschedule_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling/conflict"
	rescheduleAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_appointment"
)

const (
	msgInvalidAppointmentID = "некорректный ID приёма"
	msgInvalidRequestBody   = "некорректное тело запроса"
	msgMissingUserID        = "отсутствует ID пользователя"
	msgInvalidDate          = "некорректный формат даты приёма, ожидается YYYY-MM-DD"
	msgInvalidInput         = "некорректные данные запроса"
	msgInvalidRequest       = "некорректные дата, время или длительность приёма"
	msgTooSoon              = "слишком поздно для переноса на это время"
	msgTooFar               = "новая дата слишком далеко в будущем"
	msgOutsideWorkingHours  = "время вне рабочих часов врача"
	msgDuringVacation       = "врач в отпуске в выбранную дату"
	msgSlotNotAvailable     = "желаемое время недоступно: пересекается с другим приёмом"
	msgBookingInProgress    = "запись к врачу на эту дату уже выполняется, повторите позже"
	msgNotFound             = "приём не найден"
	msgDoctorNotFound       = "врач не найден"
	msgCannotReschedule     = "приём не может быть перенесён"
	msgForbidden            = "доступ запрещен"
)

type Handler struct {
	useCase RescheduleAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/appointments/{appointmentId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	appointmentID, err := handlers.PathInt64(r, "appointmentId")
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid appointment ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidAppointmentID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req RescheduleAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(appointmentID, userID)
	if err != nil {
		h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid appointment date: %v", err)
		handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgInvalidDate, string(conflict.ReasonInvalidRequest))
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, rescheduleAppointment.ErrInvalidInput):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid input: appointment_id=%d, error=%v", appointmentID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, rescheduleAppointment.ErrInvalidRequest):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Invalid request: appointment_id=%d, error=%v", appointmentID, err)
			handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgInvalidRequest, string(conflict.ReasonInvalidRequest))

		case errors.Is(err, rescheduleAppointment.ErrTooSoon):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Too soon: appointment_id=%d", appointmentID)
			handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgTooSoon, string(conflict.ReasonInvalidRequest))

		case errors.Is(err, rescheduleAppointment.ErrTooFarInFuture):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Too far in future: appointment_id=%d", appointmentID)
			handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgTooFar, string(conflict.ReasonInvalidRequest))

		case errors.Is(err, rescheduleAppointment.ErrOutsideWorkingHours):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Outside working hours: appointment_id=%d", appointmentID)
			handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgOutsideWorkingHours, string(conflict.ReasonOutsideWorkingHours))

		case errors.Is(err, rescheduleAppointment.ErrDuringVacation):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - During vacation: appointment_id=%d", appointmentID)
			handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgDuringVacation, string(conflict.ReasonDuringVacation))

		case errors.Is(err, rescheduleAppointment.ErrSlotNotAvailable):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Slot not available: appointment_id=%d", appointmentID)
			handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgSlotNotAvailable, string(conflict.ReasonOverlapsExistingAppointment))

		case errors.Is(err, rescheduleAppointment.ErrBookingInProgress):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Booking in progress: appointment_id=%d", appointmentID)
			handlers.RespondConflict(w, msgBookingInProgress)

		case errors.Is(err, rescheduleAppointment.ErrAppointmentNotFound):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Appointment not found: appointment_id=%d", appointmentID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rescheduleAppointment.ErrDoctorNotFound):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Doctor not found: appointment_id=%d", appointmentID)
			handlers.RespondNotFound(w, msgDoctorNotFound)

		case errors.Is(err, rescheduleAppointment.ErrCannotReschedule):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Cannot reschedule: appointment_id=%d", appointmentID)
			handlers.RespondConflict(w, msgCannotReschedule)

		case errors.Is(err, rescheduleAppointment.ErrAccessDenied):
			h.logger.Warn("PATCH /appointments/{id}/reschedule - Access denied: appointment_id=%d, user_id=%d", appointmentID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("PATCH /appointments/{id}/reschedule - Failed to reschedule: appointment_id=%d, error=%v",
				appointmentID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /appointments/{id}/reschedule - Appointment rescheduled successfully: appointment_id=%d, user_id=%d",
		appointmentID, userID)
	handlers.RespondJSON(w, http.StatusOK, FromUseCaseResponse(result))
}
