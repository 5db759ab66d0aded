package update_appointment_status

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeService struct {
	gotID  int64
	gotReq *models.UpdateStatusRequest
	err    error
}

func (f *fakeService) UpdateStatus(_ context.Context, id int64, req *models.UpdateStatusRequest) (*models.AppointmentResponse, error) {
	f.gotID = id
	f.gotReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.AppointmentResponse{ID: id, Status: req.Status}, nil
}

func serve(svc *fakeService, path string, body io.Reader, withUser bool) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/appointments/{appointmentId}/status", NewHandler(svc, logger.NewNop()).Handle).
		Methods(http.MethodPatch)

	req := httptest.NewRequest(http.MethodPatch, path, body)
	if withUser {
		req = req.WithContext(middleware.WithUserID(req.Context(), 500))
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandle_Confirmed(t *testing.T) {
	svc := &fakeService{}

	rec := serve(svc, "/api/v1/appointments/7/status", strings.NewReader(`{"status":"confirmed"}`), true)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), svc.gotID)
	require.NotNil(t, svc.gotReq)
	assert.Equal(t, int64(500), svc.gotReq.UserID)
	assert.Equal(t, "confirmed", svc.gotReq.Status)
}

func TestHandle_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "bad id", path: "/api/v1/appointments/x/status", body: `{"status":"confirmed"}`},
		{name: "broken json", path: "/api/v1/appointments/7/status", body: `{"status":`},
		{name: "unknown field", path: "/api/v1/appointments/7/status", body: `{"state":"confirmed"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			rec := serve(svc, tt.path, strings.NewReader(tt.body), true)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, svc.gotReq)
		})
	}
}

func TestHandle_MissingUser(t *testing.T) {
	rec := serve(&fakeService{}, "/api/v1/appointments/7/status", strings.NewReader(`{"status":"confirmed"}`), false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "unknown status", err: fmt.Errorf("%w: status %q", appointments.ErrInvalidInput, "done"), code: http.StatusBadRequest},
		{name: "not found", err: appointments.ErrAppointmentNotFound, code: http.StatusNotFound},
		{name: "not the doctor", err: appointments.ErrAccessDenied, code: http.StatusForbidden},
		{name: "completed to scheduled", err: appointments.ErrInvalidTransition, code: http.StatusConflict},
		{name: "internal", err: errors.New("boom"), code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&fakeService{err: tt.err}, "/api/v1/appointments/7/status", strings.NewReader(`{"status":"confirmed"}`), true)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
