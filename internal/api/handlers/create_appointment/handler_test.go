package create_appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type fakeUseCase struct {
	err  error
	got  *createAppointment.Request
	resp *createAppointment.Response
}

func (f *fakeUseCase) Execute(_ context.Context, req *createAppointment.Request) (*createAppointment.Response, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

func newRouter(uc *fakeUseCase) *mux.Router {
	router := mux.NewRouter()
	router.Handle("/api/v1/appointments", middleware.Auth(http.HandlerFunc(NewHandler(uc, logger.NewNop()).Handle))).
		Methods(http.MethodPost)
	return router
}

func doRequest(router http.Handler, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/appointments", strings.NewReader(body))
	if userID != "" {
		req.Header.Set(middleware.UserIDHeader, userID)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

const validBody = `{"doctorId": 10, "appointmentDate": "2026-03-02", "startTime": "10:30", "durationMinutes": 30}`

func TestHandle_Created(t *testing.T) {
	startsAt := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	uc := &fakeUseCase{resp: &createAppointment.Response{
		ID:              100,
		PracticeID:      1,
		DoctorID:        10,
		PatientID:       42,
		AppointmentDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
		StartTime:       types.MustTimeString("10:30"),
		DurationMinutes: 30,
		Status:          "scheduled",
		StartsAt:        startsAt,
		EndsAt:          startsAt.Add(30 * time.Minute),
	}}

	rec := doRequest(newRouter(uc), "42", validBody)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.NotNil(t, uc.got)
	assert.Equal(t, int64(42), uc.got.UserID)
	assert.Equal(t, int64(10), uc.got.DoctorID)
	assert.Equal(t, types.TimeString("10:30"), uc.got.StartTime)

	var body AppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, int64(100), body.ID)
	assert.Equal(t, "2026-03-02", body.AppointmentDate)
	assert.Equal(t, "2026-03-02T10:30:00Z", body.StartsAt)
	assert.Equal(t, "2026-03-02T11:00:00Z", body.EndsAt)
}

func TestHandle_MissingUser(t *testing.T) {
	uc := &fakeUseCase{}
	rec := doRequest(newRouter(uc), "", validBody)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, uc.got)
}

func TestHandle_BadInput(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "broken json", body: `{"doctorId": `},
		{name: "unknown field", body: `{"doctorId": 10, "room": 5}`},
		{name: "bad date", body: `{"doctorId": 10, "appointmentDate": "02.03.2026", "startTime": "10:30"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &fakeUseCase{}
			rec := doRequest(newRouter(uc), "42", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Nil(t, uc.got)
		})
	}
}

func TestHandle_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{name: "overlap", err: fmt.Errorf("%w: overlaps appointment id=7", createAppointment.ErrSlotNotAvailable), wantStatus: http.StatusBadRequest, wantReason: "OVERLAPS_EXISTING_APPOINTMENT"},
		{name: "outside hours", err: createAppointment.ErrOutsideWorkingHours, wantStatus: http.StatusBadRequest, wantReason: "OUTSIDE_WORKING_HOURS"},
		{name: "vacation", err: createAppointment.ErrDuringVacation, wantStatus: http.StatusBadRequest, wantReason: "DURING_VACATION"},
		{name: "too soon", err: createAppointment.ErrTooSoon, wantStatus: http.StatusBadRequest, wantReason: "INVALID_REQUEST"},
		{name: "too far", err: createAppointment.ErrTooFarInFuture, wantStatus: http.StatusBadRequest, wantReason: "INVALID_REQUEST"},
		{name: "malformed time", err: fmt.Errorf("%w: malformed_time", createAppointment.ErrInvalidRequest), wantStatus: http.StatusBadRequest, wantReason: "INVALID_REQUEST"},
		{name: "in progress", err: createAppointment.ErrBookingInProgress, wantStatus: http.StatusConflict},
		{name: "doctor not found", err: createAppointment.ErrDoctorNotFound, wantStatus: http.StatusNotFound},
		{name: "patient blocked", err: createAppointment.ErrPatientBlocked, wantStatus: http.StatusForbidden},
		{name: "internal", err: fmt.Errorf("%w: boom", createAppointment.ErrInternal), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(newRouter(&fakeUseCase{err: tt.err}), "42", validBody)
			require.Equal(t, tt.wantStatus, rec.Code)

			var body handlers.ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantStatus, body.Code)
			assert.Equal(t, tt.wantReason, body.Reason)
		})
	}
}
