package create_appointment

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling/conflict"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
)

const (
	msgInvalidRequestBody  = "некорректное тело запроса"
	msgMissingUserID       = "отсутствует ID пользователя"
	msgInvalidDate         = "некорректный формат даты приёма, ожидается YYYY-MM-DD"
	msgInvalidInput        = "некорректные данные запроса"
	msgInvalidRequest      = "некорректные дата, время или длительность приёма"
	msgTooSoon             = "слишком поздно для записи на это время"
	msgTooFar              = "дата приёма слишком далеко в будущем"
	msgOutsideWorkingHours = "время вне рабочих часов врача"
	msgDuringVacation      = "врач в отпуске в выбранную дату"
	msgSlotNotAvailable    = "желаемое время недоступно: пересекается с другим приёмом"
	msgBookingInProgress   = "запись к врачу на эту дату уже выполняется, повторите позже"
	msgDoctorNotFound      = "врач не найден"
	msgPatientNotFound     = "пациент не найден"
	msgPatientBlocked      = "пациент заблокирован"
	msgForbidden           = "доступ запрещен"
)

type Handler struct {
	useCase CreateAppointmentUseCase
	logger  Logger
}

func NewHandler(useCase CreateAppointmentUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/appointments
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /appointments - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateAppointmentRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /appointments - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /appointments - Invalid appointment date: %v", err)
		handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgInvalidDate, string(conflict.ReasonInvalidRequest))
		return
	}

	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createAppointment.ErrInvalidInput):
			h.logger.Warn("POST /appointments - Invalid input: user_id=%d, error=%v", userID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, createAppointment.ErrInvalidRequest):
			h.logger.Warn("POST /appointments - Invalid request: user_id=%d, error=%v", userID, err)
			handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgInvalidRequest, string(conflict.ReasonInvalidRequest))

		case errors.Is(err, createAppointment.ErrTooSoon):
			h.logger.Warn("POST /appointments - Too soon: user_id=%d, doctor_id=%d", userID, req.DoctorID)
			handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgTooSoon, string(conflict.ReasonInvalidRequest))

		case errors.Is(err, createAppointment.ErrTooFarInFuture):
			h.logger.Warn("POST /appointments - Too far in future: user_id=%d, doctor_id=%d", userID, req.DoctorID)
			handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgTooFar, string(conflict.ReasonInvalidRequest))

		case errors.Is(err, createAppointment.ErrOutsideWorkingHours):
			h.logger.Warn("POST /appointments - Outside working hours: user_id=%d, doctor_id=%d", userID, req.DoctorID)
			handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgOutsideWorkingHours, string(conflict.ReasonOutsideWorkingHours))

		case errors.Is(err, createAppointment.ErrDuringVacation):
			h.logger.Warn("POST /appointments - During vacation: user_id=%d, doctor_id=%d", userID, req.DoctorID)
			handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgDuringVacation, string(conflict.ReasonDuringVacation))

		case errors.Is(err, createAppointment.ErrSlotNotAvailable):
			h.logger.Warn("POST /appointments - Slot not available: user_id=%d, doctor_id=%d", userID, req.DoctorID)
			handlers.RespondErrorWithReason(w, http.StatusBadRequest, msgSlotNotAvailable, string(conflict.ReasonOverlapsExistingAppointment))

		case errors.Is(err, createAppointment.ErrBookingInProgress):
			h.logger.Warn("POST /appointments - Booking in progress: doctor_id=%d", req.DoctorID)
			handlers.RespondConflict(w, msgBookingInProgress)

		case errors.Is(err, createAppointment.ErrDoctorNotFound):
			h.logger.Warn("POST /appointments - Doctor not found: doctor_id=%d", req.DoctorID)
			handlers.RespondNotFound(w, msgDoctorNotFound)

		case errors.Is(err, createAppointment.ErrPatientNotFound):
			h.logger.Warn("POST /appointments - Patient not found: user_id=%d", userID)
			handlers.RespondNotFound(w, msgPatientNotFound)

		case errors.Is(err, createAppointment.ErrPatientBlocked):
			h.logger.Warn("POST /appointments - Patient blocked: user_id=%d", userID)
			handlers.RespondForbidden(w, msgPatientBlocked)

		case errors.Is(err, createAppointment.ErrAccessDenied):
			h.logger.Warn("POST /appointments - Access denied: user_id=%d, doctor_id=%d", userID, req.DoctorID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("POST /appointments - Failed to create appointment: user_id=%d, doctor_id=%d, error=%v",
				userID, req.DoctorID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /appointments - Appointment created successfully: appointment_id=%d, user_id=%d, doctor_id=%d",
		result.ID, userID, req.DoctorID)
	handlers.RespondJSON(w, http.StatusCreated, FromUseCaseResponse(result))
}
