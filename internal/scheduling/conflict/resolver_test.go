package conflict

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling/interval"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const doctorID int64 = 7

var (
	monday  = time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	tuesday = time.Date(2024, time.July, 2, 0, 0, 0, 0, time.UTC)

	// неделя до приёмов, чтобы политика не мешала
	now = time.Date(2024, time.June, 24, 9, 0, 0, 0, time.UTC)

	openPolicy = Policy{MinNoticeHours: 0, MaxFutureBookingDays: 0, Location: time.UTC}
)

func mondaySchedule() domain.DoctorSchedule {
	return domain.DoctorSchedule{
		DoctorID: doctorID,
		Weekly: domain.WeeklyAvailability{
			time.Monday: {{Start: "09:00", End: "17:00", IsAvailable: true}},
		},
	}
}

func request(day time.Time, clock string, minutes int) Request {
	return Request{
		DoctorID:        doctorID,
		Date:            day,
		StartTime:       types.TimeString(clock),
		DurationMinutes: minutes,
	}
}

func existing(t *testing.T, id int64, day time.Time, clock string, minutes int, status domain.AppointmentStatus) ExistingAppointment {
	t.Helper()
	iv, err := interval.Make(day, types.MustTimeString(clock), minutes, time.UTC)
	require.NoError(t, err)
	return ExistingAppointment{ID: id, DoctorID: doctorID, Interval: iv, Status: status}
}

func TestCheckAvailability_MondayScenario(t *testing.T) {
	booked := []ExistingAppointment{existing(t, 100, monday, "10:00", 30, domain.StatusConfirmed)}

	tests := []struct {
		name         string
		req          Request
		wantOK       bool
		wantReason   Reason
		wantConflict int64
	}{
		{
			name:         "overlaps confirmed appointment",
			req:          request(monday, "10:15", 30),
			wantReason:   ReasonOverlapsExistingAppointment,
			wantConflict: 100,
		},
		{
			name:   "back to back is free",
			req:    request(monday, "10:30", 30),
			wantOK: true,
		},
		{
			name:       "no window on tuesday",
			req:        request(tuesday, "10:00", 30),
			wantReason: ReasonOutsideWorkingHours,
		},
		{
			name:   "ends exactly at window end",
			req:    request(monday, "16:30", 30),
			wantOK: true,
		},
		{
			name:       "runs past window end",
			req:        request(monday, "16:45", 30),
			wantReason: ReasonOutsideWorkingHours,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := CheckAvailability(tt.req, mondaySchedule(), booked, openPolicy, now)
			require.NoError(t, err)

			assert.Equal(t, tt.wantOK, verdict.Available)
			assert.Equal(t, tt.wantReason, verdict.Reason)
			assert.Equal(t, tt.wantConflict, verdict.ConflictingAppointmentID)
		})
	}
}

func TestCheckAvailability_NonBlockingStatusesNeverConflict(t *testing.T) {
	for _, status := range domain.InactiveStatuses {
		t.Run(string(status), func(t *testing.T) {
			booked := []ExistingAppointment{existing(t, 1, monday, "10:00", 30, status)}

			verdict, err := CheckAvailability(request(monday, "10:00", 30), mondaySchedule(), booked, openPolicy, now)
			require.NoError(t, err)
			assert.True(t, verdict.Available)
		})
	}
}

func TestCheckAvailability_OtherDoctorNeverConflicts(t *testing.T) {
	other := existing(t, 1, monday, "10:00", 30, domain.StatusScheduled)
	other.DoctorID = doctorID + 1

	verdict, err := CheckAvailability(request(monday, "10:00", 30), mondaySchedule(), []ExistingAppointment{other}, openPolicy, now)
	require.NoError(t, err)
	assert.True(t, verdict.Available)
}

func TestCheckAvailability_ExcludedAppointmentIgnored(t *testing.T) {
	booked := []ExistingAppointment{existing(t, 55, monday, "10:00", 30, domain.StatusScheduled)}

	req := request(monday, "10:15", 30)
	req.ExcludeAppointmentID = 55

	verdict, err := CheckAvailability(req, mondaySchedule(), booked, openPolicy, now)
	require.NoError(t, err)
	assert.True(t, verdict.Available)
}

func TestCheckAvailability_VacationBlocksWholeDay(t *testing.T) {
	schedule := domain.DoctorSchedule{
		DoctorID: doctorID,
		Weekly: domain.WeeklyAvailability{
			time.Wednesday: {{Start: "00:00", End: "23:59", IsAvailable: true}},
		},
		Vacations: []domain.VacationPeriod{{
			StartDate: time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC),
			EndDate:   time.Date(2024, time.July, 14, 0, 0, 0, 0, time.UTC),
		}},
	}
	wednesday := time.Date(2024, time.July, 10, 0, 0, 0, 0, time.UTC)

	for _, clock := range []string{"00:00", "09:00", "23:00"} {
		verdict, err := CheckAvailability(request(wednesday, clock, 30), schedule, nil, openPolicy, now)
		require.NoError(t, err)
		assert.Equal(t, ReasonDuringVacation, verdict.Reason, clock)
	}

	// вне рабочих окон, но отпуск проверяется раньше
	verdict, err := CheckAvailability(request(tuesday, "10:00", 30), schedule, nil, openPolicy, now)
	require.NoError(t, err)
	assert.Equal(t, ReasonDuringVacation, verdict.Reason)
}

func TestCheckAvailability_InvalidRequest(t *testing.T) {
	tests := []struct {
		name          string
		req           Request
		wantViolation Violation
	}{
		{name: "zero duration", req: request(monday, "10:00", 0), wantViolation: ViolationInvalidDuration},
		{name: "negative duration", req: request(monday, "10:00", -15), wantViolation: ViolationInvalidDuration},
		{name: "too long", req: request(monday, "10:00", domain.MaxDurationMinutes+1), wantViolation: ViolationInvalidDuration},
		{name: "malformed time", req: request(monday, "10h00", 30), wantViolation: ViolationMalformedTime},
		{name: "out of range time", req: request(monday, "25:00", 30), wantViolation: ViolationMalformedTime},
		{name: "missing date", req: request(time.Time{}, "10:00", 30), wantViolation: ViolationInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := CheckAvailability(tt.req, mondaySchedule(), nil, openPolicy, now)
			require.NoError(t, err)

			assert.False(t, verdict.Available)
			assert.Equal(t, ReasonInvalidRequest, verdict.Reason)
			assert.Equal(t, tt.wantViolation, verdict.Violation)
		})
	}
}

func TestCheckAvailability_NonexistentLocalTime(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// 2024-03-10 02:30 does not exist in New York
	sunday := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)
	schedule := domain.DoctorSchedule{
		DoctorID: doctorID,
		Weekly:   domain.WeeklyAvailability{time.Sunday: {{Start: "00:00", End: "12:00", IsAvailable: true}}},
	}
	policy := Policy{Location: loc}

	verdict, err := CheckAvailability(request(sunday, "02:30", 30), schedule, nil, policy, now)
	require.NoError(t, err)
	assert.Equal(t, ReasonInvalidRequest, verdict.Reason)
	assert.Equal(t, ViolationNonexistentTime, verdict.Violation)
}

func TestCheckAvailability_MinimumNotice(t *testing.T) {
	policy := Policy{MinNoticeHours: 24, Location: time.UTC}
	current := time.Date(2024, time.July, 1, 8, 0, 0, 0, time.UTC)

	verdict, err := CheckAvailability(request(monday, "10:00", 30), mondaySchedule(), nil, policy, current)
	require.NoError(t, err)
	assert.Equal(t, ReasonInvalidRequest, verdict.Reason)
	assert.Equal(t, ViolationTooSoon, verdict.Violation)

	// ровно 24 часа допустимо
	current = time.Date(2024, time.June, 30, 10, 0, 0, 0, time.UTC)
	verdict, err = CheckAvailability(request(monday, "10:00", 30), mondaySchedule(), nil, policy, current)
	require.NoError(t, err)
	assert.True(t, verdict.Available)
}

func TestCheckAvailability_PastStartIsTooSoon(t *testing.T) {
	current := time.Date(2024, time.July, 1, 12, 0, 0, 0, time.UTC)

	verdict, err := CheckAvailability(request(monday, "10:00", 30), mondaySchedule(), nil, openPolicy, current)
	require.NoError(t, err)
	assert.Equal(t, ViolationTooSoon, verdict.Violation)
}

func TestCheckAvailability_MaxFutureBookingDays(t *testing.T) {
	policy := Policy{MaxFutureBookingDays: 5, Location: time.UTC}

	verdict, err := CheckAvailability(request(monday, "10:00", 30), mondaySchedule(), nil, policy, now)
	require.NoError(t, err)
	assert.Equal(t, ReasonInvalidRequest, verdict.Reason)
	assert.Equal(t, ViolationTooFarInFuture, verdict.Violation)

	policy.MaxFutureBookingDays = 7
	verdict, err = CheckAvailability(request(monday, "09:00", 30), mondaySchedule(), nil, policy, now)
	require.NoError(t, err)
	assert.True(t, verdict.Available, "exactly seven days ahead")

	policy.MaxFutureBookingDays = 0
	verdict, err = CheckAvailability(request(monday, "10:00", 30), mondaySchedule(), nil, policy, now)
	require.NoError(t, err)
	assert.True(t, verdict.Available, "zero means unlimited")
}

func TestCheckAvailability_CheckOrder(t *testing.T) {
	booked := []ExistingAppointment{existing(t, 1, tuesday, "10:00", 30, domain.StatusScheduled)}
	schedule := mondaySchedule()
	schedule.Vacations = []domain.VacationPeriod{{StartDate: tuesday, EndDate: tuesday}}

	// слишком рано, в отпуске, вне окон и с пересечением: побеждает первая проверка
	current := time.Date(2024, time.July, 2, 9, 0, 0, 0, time.UTC)
	policy := Policy{MinNoticeHours: 2, Location: time.UTC}

	verdict, err := CheckAvailability(request(tuesday, "10:00", 30), schedule, booked, policy, current)
	require.NoError(t, err)
	assert.Equal(t, ReasonInvalidRequest, verdict.Reason)

	verdict, err = CheckAvailability(request(tuesday, "10:00", 30), schedule, booked, openPolicy, now)
	require.NoError(t, err)
	assert.Equal(t, ReasonDuringVacation, verdict.Reason)

	schedule.Vacations = nil
	verdict, err = CheckAvailability(request(tuesday, "10:00", 30), schedule, booked, openPolicy, now)
	require.NoError(t, err)
	assert.Equal(t, ReasonOutsideWorkingHours, verdict.Reason)
}

func TestCheckAvailability_Idempotent(t *testing.T) {
	booked := []ExistingAppointment{existing(t, 100, monday, "10:00", 30, domain.StatusConfirmed)}
	req := request(monday, "10:15", 30)

	first, err := CheckAvailability(req, mondaySchedule(), booked, openPolicy, now)
	require.NoError(t, err)
	second, err := CheckAvailability(req, mondaySchedule(), booked, openPolicy, now)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCheckAvailability_ContractViolations(t *testing.T) {
	_, err := CheckAvailability(Request{Date: monday, StartTime: "10:00", DurationMinutes: 30}, mondaySchedule(), nil, openPolicy, now)
	assert.ErrorIs(t, err, ErrContractViolation)

	_, err = CheckAvailability(request(monday, "10:00", 30), mondaySchedule(), nil, Policy{}, now)
	assert.ErrorIs(t, err, ErrContractViolation)

	wrong := mondaySchedule()
	wrong.DoctorID = doctorID + 1
	_, err = CheckAvailability(request(monday, "10:00", 30), wrong, nil, openPolicy, now)
	assert.ErrorIs(t, err, ErrContractViolation)
}

func TestCheckAvailability_PracticeTimezone(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	// приём 10:00 по Москве хранится как 07:00 UTC
	stored := time.Date(2024, time.July, 1, 7, 0, 0, 0, time.UTC)
	iv, err := interval.New(stored, stored.Add(30*time.Minute))
	require.NoError(t, err)
	booked := []ExistingAppointment{{ID: 9, DoctorID: doctorID, Interval: iv, Status: domain.StatusScheduled}}

	verdict, err := CheckAvailability(request(monday, "10:00", 30), mondaySchedule(), booked, Policy{Location: loc}, now)
	require.NoError(t, err)
	assert.Equal(t, ReasonOverlapsExistingAppointment, verdict.Reason)

	verdict, err = CheckAvailability(request(monday, "07:00", 30), mondaySchedule(), booked, Policy{Location: loc}, now)
	require.NoError(t, err)
	assert.Equal(t, ReasonOutsideWorkingHours, verdict.Reason, "07:00 Moscow is before the window")
}

func TestToExisting(t *testing.T) {
	appointments := []*domain.Appointment{
		{
			ID:              1,
			DoctorID:        doctorID,
			AppointmentDate: monday,
			StartTime:       "10:00",
			DurationMinutes: 45,
			Status:          domain.StatusScheduled,
		},
	}

	result, err := ToExisting(appointments, time.UTC)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, 45*time.Minute, result[0].Interval.Duration())
	assert.Equal(t, types.TimeString("10:00"), result[0].Interval.StartClock())

	appointments[0].StartTime = "bad"
	_, err = ToExisting(appointments, time.UTC)
	assert.Error(t, err)
}
