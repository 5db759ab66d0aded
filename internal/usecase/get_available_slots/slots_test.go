package get_available_slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling/conflict"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

func slotTimes(slots []Slot) ([]string, []time.Time) {
	clocks := make([]string, len(slots))
	starts := make([]time.Time, len(slots))
	for i, s := range slots {
		clocks[i] = s.StartTime.String()
		starts[i] = s.StartsAt.UTC()
	}
	return clocks, starts
}

func TestGenerateSlots_FallBackDay(t *testing.T) {
	berlin, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// воскресенье 2026-10-25: 03:00 CEST -> 02:00 CET
	date := time.Date(2026, time.October, 25, 0, 0, 0, 0, time.UTC)
	schedule := domain.DoctorSchedule{
		DoctorID: doctorID,
		Weekly: domain.WeeklyAvailability{
			time.Sunday: {window("01:00", "04:00", true)},
		},
	}
	policy := conflict.Policy{Location: berlin}
	now := time.Date(2026, time.October, 1, 0, 0, 0, 0, time.UTC)

	slots, err := generateSlots(doctorID, date, 60, schedule, nil, policy, now)
	require.NoError(t, err)

	clocks, starts := slotTimes(slots)
	assert.Equal(t, []string{"01:00", "02:00", "03:00"}, clocks)
	assert.Equal(t, []time.Time{
		time.Date(2026, time.October, 24, 23, 0, 0, 0, time.UTC),
		time.Date(2026, time.October, 25, 0, 0, 0, 0, time.UTC), // 02:00 CEST
		time.Date(2026, time.October, 25, 2, 0, 0, 0, time.UTC),
	}, starts)

	// каждый слот можно забронировать теми же датой и временем
	for _, s := range slots {
		verdict, err := conflict.CheckAvailability(conflict.Request{
			DoctorID:        doctorID,
			Date:            date,
			StartTime:       s.StartTime,
			DurationMinutes: 60,
		}, schedule, nil, policy, now)
		require.NoError(t, err)
		require.True(t, verdict.Available, s.StartTime.String())
		assert.True(t, verdict.Interval.Start().Equal(s.StartsAt), s.StartTime.String())
	}
}

func TestGenerateSlots_WindowEndingAtMidnight(t *testing.T) {
	schedule := domain.DoctorSchedule{
		DoctorID: doctorID,
		Weekly: domain.WeeklyAvailability{
			time.Monday: {{Start: types.MustTimeString("22:00"), End: types.EndOfDay, IsAvailable: true}},
		},
	}
	policy := conflict.Policy{Location: time.UTC}

	slots, err := generateSlots(doctorID, monday, 30, schedule, nil, policy, fixedNow)
	require.NoError(t, err)

	clocks, _ := slotTimes(slots)
	assert.Equal(t, []string{"22:00", "22:30", "23:00", "23:30"}, clocks)
	assert.Equal(t, time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC), slots[3].EndsAt.UTC())
}
