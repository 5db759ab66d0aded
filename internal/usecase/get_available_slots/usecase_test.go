package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	doctorRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/doctor"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const doctorID int64 = 10

var (
	// пятница, 09:00 UTC
	fixedNow = time.Date(2026, 2, 27, 9, 0, 0, 0, time.UTC)
	friday   = time.Date(2026, 2, 27, 0, 0, 0, 0, time.UTC)
	monday   = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)
	tuesday  = monday.AddDate(0, 0, 1)
)

type fixedTimeProvider struct{}

func (fixedTimeProvider) Now() time.Time { return fixedNow }

type fakeDoctorRepo struct {
	schedule domain.DoctorSchedule
}

func (f *fakeDoctorRepo) GetByID(_ context.Context, id int64) (*domain.Doctor, error) {
	if id != doctorID {
		return nil, doctorRepo.ErrDoctorNotFound
	}
	return &domain.Doctor{ID: doctorID, PracticeID: 1, UserID: 500}, nil
}

func (f *fakeDoctorRepo) GetSchedule(_ context.Context, _ int64) (domain.DoctorSchedule, error) {
	return f.schedule, nil
}

type fakeAppointmentRepo struct {
	existing []*domain.Appointment
}

func (f *fakeAppointmentRepo) GetBlockingByDoctorAndDate(_ context.Context, id int64, date time.Time) ([]*domain.Appointment, error) {
	var out []*domain.Appointment
	for _, a := range f.existing {
		if a.DoctorID == id && a.AppointmentDate.Equal(date) && a.Status.BlocksSchedule() {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakePolicies struct{}

func (fakePolicies) GetEffective(_ context.Context, practiceID int64) (*domain.PracticePolicy, error) {
	return &domain.PracticePolicy{
		PracticeID:             practiceID,
		Timezone:               "UTC",
		MinNoticeHours:         2,
		MaxFutureBookingDays:   90,
		DefaultDurationMinutes: 30,
	}, nil
}

func window(start, end string, available bool) domain.TimeWindow {
	return domain.TimeWindow{
		Start:       types.MustTimeString(start),
		End:         types.MustTimeString(end),
		IsAvailable: available,
	}
}

func newUseCase(vacations ...domain.VacationPeriod) *UseCase {
	doctors := &fakeDoctorRepo{schedule: domain.DoctorSchedule{
		DoctorID: doctorID,
		Weekly: domain.WeeklyAvailability{
			time.Monday: {
				window("09:00", "11:00", true),
				window("11:00", "12:00", false),
				window("12:00", "13:00", true),
			},
			time.Friday: {window("09:00", "13:00", true)},
		},
		Vacations: vacations,
	}}
	appointments := &fakeAppointmentRepo{existing: []*domain.Appointment{
		{
			ID:              1,
			DoctorID:        doctorID,
			AppointmentDate: monday,
			StartTime:       types.MustTimeString("10:00"),
			DurationMinutes: 30,
			Status:          domain.StatusScheduled,
		},
		{
			ID:              2,
			DoctorID:        doctorID,
			AppointmentDate: monday,
			StartTime:       types.MustTimeString("09:00"),
			DurationMinutes: 30,
			Status:          domain.StatusCancelled,
		},
	}}

	return NewUseCase(appointments, doctors, fakePolicies{}, logger.NewNop()).
		WithTimeProvider(fixedTimeProvider{})
}

func startTimes(slots []Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.StartTime.String()
	}
	return out
}

func TestExecute_StepsThroughAvailableWindows(t *testing.T) {
	resp, err := newUseCase().Execute(context.Background(), &Request{DoctorID: doctorID, Date: monday})
	require.NoError(t, err)

	assert.Equal(t, 30, resp.DurationMinutes)
	assert.Equal(t, "UTC", resp.Timezone)
	// 10:00 занят, отменённый приём в 09:00 не мешает, обед 11:00-12:00 не выдаётся
	assert.Equal(t, []string{"09:00", "09:30", "10:30", "12:00", "12:30"}, startTimes(resp.Slots))

	first := resp.Slots[0]
	assert.True(t, first.StartsAt.Equal(time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)))
	assert.True(t, first.EndsAt.Equal(time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)))
}

func TestExecute_LongerDuration(t *testing.T) {
	resp, err := newUseCase().Execute(context.Background(), &Request{
		DoctorID:        doctorID,
		Date:            monday,
		DurationMinutes: ptr.Ptr(45),
	})
	require.NoError(t, err)

	// 09:45-10:30 пересекается с приёмом, 10:30-11:15 выходит за окно
	assert.Equal(t, []string{"09:00", "12:00"}, startTimes(resp.Slots))
	for _, s := range resp.Slots {
		assert.Equal(t, 45, s.DurationMinutes)
	}
}

func TestExecute_TodayRespectsMinNotice(t *testing.T) {
	resp, err := newUseCase().Execute(context.Background(), &Request{DoctorID: doctorID, Date: friday})
	require.NoError(t, err)
	assert.Equal(t, []string{"11:00", "11:30", "12:00", "12:30"}, startTimes(resp.Slots))
}

func TestExecute_EmptyDays(t *testing.T) {
	vacation := domain.VacationPeriod{ID: 7, DoctorID: doctorID, StartDate: monday, EndDate: monday}

	tests := []struct {
		name string
		uc   *UseCase
		date time.Time
	}{
		{name: "closed weekday", uc: newUseCase(), date: tuesday},
		{name: "vacation", uc: newUseCase(vacation), date: monday},
		{name: "past date", uc: newUseCase(), date: monday.AddDate(0, 0, -7)},
		{name: "beyond booking horizon", uc: newUseCase(), date: monday.AddDate(0, 0, 364)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tt.uc.Execute(context.Background(), &Request{DoctorID: doctorID, Date: tt.date})
			require.NoError(t, err)
			assert.NotNil(t, resp.Slots)
			assert.Empty(t, resp.Slots)
		})
	}
}

func TestExecute_Errors(t *testing.T) {
	tests := []struct {
		name    string
		req     *Request
		wantErr error
	}{
		{name: "unknown doctor", req: &Request{DoctorID: 99, Date: monday}, wantErr: ErrDoctorNotFound},
		{name: "no doctor", req: &Request{Date: monday}, wantErr: ErrInvalidInput},
		{name: "no date", req: &Request{DoctorID: doctorID}, wantErr: ErrInvalidInput},
		{name: "duration too long", req: &Request{DoctorID: doctorID, Date: monday, DurationMinutes: ptr.Ptr(600)}, wantErr: ErrInvalidInput},
		{name: "zero duration", req: &Request{DoctorID: doctorID, Date: monday, DurationMinutes: ptr.Ptr(0)}, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newUseCase().Execute(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
