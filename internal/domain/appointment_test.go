package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppointmentStatus_BlocksSchedule(t *testing.T) {
	for _, s := range BlockingStatuses {
		assert.True(t, s.BlocksSchedule(), s)
		assert.False(t, s.IsFinal(), s)
	}
	for _, s := range InactiveStatuses {
		assert.False(t, s.BlocksSchedule(), s)
		assert.True(t, s.IsFinal(), s)
	}
	assert.False(t, AppointmentStatus("unknown").BlocksSchedule())
}

func TestAppointmentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		want     bool
	}{
		{StatusScheduled, StatusConfirmed, true},
		{StatusScheduled, StatusRejected, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusRejected, false},
		{StatusConfirmed, StatusScheduled, false},
		{StatusCancelled, StatusScheduled, false},
		{StatusCompleted, StatusNoShow, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}
