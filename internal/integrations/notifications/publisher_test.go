package notifications

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

func sampleAppointment() *domain.Appointment {
	loc, _ := time.LoadLocation("Europe/Moscow")
	starts := time.Date(2024, time.July, 1, 10, 0, 0, 0, loc)
	return &domain.Appointment{
		ID:         11,
		PracticeID: 1,
		DoctorID:   7,
		PatientID:  42,
		Status:     domain.StatusScheduled,
		StartsAt:   starts,
		EndsAt:     starts.Add(30 * time.Minute),
	}
}

func TestNewAppointmentEvent(t *testing.T) {
	occurred := time.Date(2024, time.June, 20, 12, 0, 0, 0, time.UTC)
	event := NewAppointmentEvent(EventAppointmentCreated, sampleAppointment(), occurred)

	assert.NotEmpty(t, event.EventID)
	assert.Equal(t, EventAppointmentCreated, event.Type)
	assert.Equal(t, "scheduled", event.Status)
	assert.Equal(t, time.UTC, event.StartsAt.Location())
	assert.Equal(t, 7, event.StartsAt.Hour(), "10:00 Moscow is 07:00 UTC")

	other := NewAppointmentEvent(EventAppointmentCreated, sampleAppointment(), occurred)
	assert.NotEqual(t, event.EventID, other.EventID)
}

func TestNewPublishing(t *testing.T) {
	event := NewAppointmentEvent(EventAppointmentCancelled, sampleAppointment(), time.Now())
	event.PreviousStatus = "confirmed"

	msg, err := newPublishing(event)
	require.NoError(t, err)

	assert.Equal(t, "application/json", msg.ContentType)
	assert.Equal(t, amqp.Persistent, msg.DeliveryMode)
	assert.Equal(t, event.EventID, msg.MessageId)
	assert.Equal(t, "appointment.cancelled", msg.Type)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(msg.Body, &body))
	assert.Equal(t, "appointment.cancelled", body["type"])
	assert.Equal(t, "confirmed", body["previous_status"])
	assert.NotContains(t, body, "previous_starts_at")
}

func TestNopPublisher(t *testing.T) {
	var p NopPublisher
	assert.NoError(t, p.Publish(context.Background(), AppointmentEvent{}))
	assert.NoError(t, p.Close())
}
