package update_practice_policy

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/policy"
	"github.com/m04kA/SMC-AppointmentService/internal/service/policy/models"
)

const (
	msgInvalidPracticeID  = "некорректный ID практики"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgInvalidPolicy      = "некорректные параметры политики записи"
	msgForbidden          = "доступ запрещен"
)

type Handler struct {
	service PolicyService
	logger  Logger
}

func NewHandler(service PolicyService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/practices/{practiceId}/policy
// Поля тела необязательны, незаданные сохраняют текущие значения
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	practiceID, err := handlers.PathInt64(r, "practiceId")
	if err != nil {
		h.logger.Warn("PUT /practices/{id}/policy - Invalid practice ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPracticeID)
		return
	}

	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /practices/{id}/policy - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req models.UpdatePolicyRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /practices/{id}/policy - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}
	req.UserID = userID
	req.PracticeID = practiceID

	updated, err := h.service.Update(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, policy.ErrInvalidInput):
			h.logger.Warn("PUT /practices/{id}/policy - Invalid policy: practice_id=%d, error=%v", practiceID, err)
			handlers.RespondBadRequest(w, msgInvalidPolicy)

		case errors.Is(err, policy.ErrAccessDenied):
			h.logger.Warn("PUT /practices/{id}/policy - Access denied: practice_id=%d, user_id=%d", practiceID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		default:
			h.logger.Error("PUT /practices/{id}/policy - Failed to update policy: practice_id=%d, error=%v", practiceID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /practices/{id}/policy - Policy updated successfully: practice_id=%d, user_id=%d",
		practiceID, userID)
	handlers.RespondJSON(w, http.StatusOK, updated)
}
