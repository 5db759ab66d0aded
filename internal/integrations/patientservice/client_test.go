package patientservice

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, logger.NewNop())
}

func TestGetPatient(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/internal/patients/42", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1,"user_id":42,"full_name":"Ivan Petrov","is_blocked":false}`))
	})

	patient, err := client.GetPatient(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, "Ivan Petrov", patient.FullName)
	assert.Equal(t, int64(42), patient.UserID)
}

func TestGetPatient_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.GetPatientWithGracefulDegradation(context.Background(), 42)
	assert.ErrorIs(t, err, ErrPatientNotFound)
}

func TestGetPatient_Degraded(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.GetPatient(context.Background(), 42)
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, err = client.GetPatientWithGracefulDegradation(context.Background(), 42)
	assert.ErrorIs(t, err, ErrServiceDegraded)
}

func TestGetPatient_BadJSON(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{`))
	})

	_, err := client.GetPatient(context.Background(), 42)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}
