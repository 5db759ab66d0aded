package replace_doctor_availability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/doctors"
	"github.com/m04kA/SMC-AppointmentService/internal/service/doctors/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeService struct {
	got *models.ReplaceAvailabilityRequest
	err error
}

func (f *fakeService) ReplaceAvailability(_ context.Context, req *models.ReplaceAvailabilityRequest) (*models.ScheduleResponse, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.ScheduleResponse{DoctorID: req.DoctorID}, nil
}

func serve(svc *fakeService, path, body string, withUser bool) *httptest.ResponseRecorder {
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/doctors/{doctorId}/availability", NewHandler(svc, logger.NewNop()).Handle).
		Methods(http.MethodPut)

	req := httptest.NewRequest(http.MethodPut, path, strings.NewReader(body))
	if withUser {
		req = req.WithContext(middleware.WithUserID(req.Context(), 900))
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const weeklyBody = `{"weekly": {"monday": [{"start": "09:00", "end": "13:00", "isAvailable": true}, {"start": "20:00", "end": "24:00", "isAvailable": true}]}}`

func TestHandle_Replaced(t *testing.T) {
	svc := &fakeService{}

	rec := serve(svc, "/api/v1/doctors/10/availability", weeklyBody, true)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.got)
	assert.Equal(t, int64(10), svc.got.DoctorID)
	assert.Equal(t, int64(900), svc.got.UserID)
	require.Len(t, svc.got.Weekly["monday"], 2)
	assert.Equal(t, "24:00", svc.got.Weekly["monday"][1].End)
}

func TestHandle_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		path string
		body string
	}{
		{name: "bad id", path: "/api/v1/doctors/zero/availability", body: weeklyBody},
		{name: "broken json", path: "/api/v1/doctors/10/availability", body: `{"weekly": [`},
		{name: "unknown field", path: "/api/v1/doctors/10/availability", body: `{"days": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeService{}
			rec := serve(svc, tt.path, tt.body, true)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, svc.got)
		})
	}
}

func TestHandle_MissingUser(t *testing.T) {
	rec := serve(&fakeService{}, "/api/v1/doctors/10/availability", weeklyBody, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{name: "overlapping windows", err: fmt.Errorf("%w: monday windows overlap", doctors.ErrInvalidInput), code: http.StatusBadRequest},
		{name: "not found", err: doctors.ErrDoctorNotFound, code: http.StatusNotFound},
		{name: "other doctor", err: doctors.ErrAccessDenied, code: http.StatusForbidden},
		{name: "internal", err: errors.New("boom"), code: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(&fakeService{err: tt.err}, "/api/v1/doctors/10/availability", weeklyBody, true)
			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
