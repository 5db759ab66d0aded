package get_practice_policy

import (
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
)

const (
	msgInvalidPracticeID = "некорректный ID практики"
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

// Handle GET /api/v1/practices/{practiceId}/policy
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	practiceID, err := handlers.PathInt64(r, "practiceId")
	if err != nil {
		h.logger.Warn("GET /practices/{id}/policy - Invalid practice ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPracticeID)
		return
	}

	policy, err := h.service.Get(r.Context(), practiceID)
	if err != nil {
		h.logger.Error("GET /practices/{id}/policy - Failed to get policy: practice_id=%d, error=%v", practiceID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /practices/{id}/policy - Policy retrieved successfully: practice_id=%d, default=%t",
		practiceID, policy.IsDefault)
	handlers.RespondJSON(w, http.StatusOK, policy)
}
