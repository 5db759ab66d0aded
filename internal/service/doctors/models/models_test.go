package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

func TestToDomainWeekly_EndOfDay(t *testing.T) {
	req := &ReplaceAvailabilityRequest{Weekly: map[string][]WindowDTO{
		"friday": {{Start: "18:00", End: "24:00", IsAvailable: true}},
	}}

	weekly, err := req.ToDomainWeekly()
	require.NoError(t, err)
	require.Len(t, weekly[time.Friday], 1)
	assert.Equal(t, types.EndOfDay, weekly[time.Friday][0].End)
}

func TestToDomainWeekly_Errors(t *testing.T) {
	tests := []struct {
		name   string
		weekly map[string][]WindowDTO
	}{
		{name: "start at midnight", weekly: map[string][]WindowDTO{"friday": {{Start: "24:00", End: "24:00"}}}},
		{name: "end past midnight", weekly: map[string][]WindowDTO{"friday": {{Start: "18:00", End: "24:30"}}}},
		{name: "unknown day", weekly: map[string][]WindowDTO{"funday": {{Start: "09:00", End: "10:00"}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := (&ReplaceAvailabilityRequest{Weekly: tt.weekly}).ToDomainWeekly()
			assert.Error(t, err)
		})
	}
}
