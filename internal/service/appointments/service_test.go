package appointments

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	doctorRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/doctor"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifications"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const (
	patientUserID int64 = 42
	doctorUserID  int64 = 500
	strangerID    int64 = 777
)

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

type fixedTimeProvider struct{}

func (fixedTimeProvider) Now() time.Time { return fixedNow }

type fakeTxManager struct{}

func (fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeAppointmentRepo struct {
	items      map[int64]*domain.Appointment
	lastFilter domain.DoctorAppointmentsFilter
}

func (f *fakeAppointmentRepo) GetByID(_ context.Context, id int64) (*domain.Appointment, error) {
	a, ok := f.items[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	copied := *a
	return &copied, nil
}

func (f *fakeAppointmentRepo) LockByID(ctx context.Context, id int64) (*domain.Appointment, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeAppointmentRepo) GetByPatientID(_ context.Context, patientID int64, status *domain.AppointmentStatus) ([]*domain.Appointment, error) {
	var out []*domain.Appointment
	for _, a := range f.items {
		if a.PatientID == patientID && (status == nil || a.Status == *status) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) GetByDoctorWithFilter(_ context.Context, filter domain.DoctorAppointmentsFilter) ([]*domain.Appointment, error) {
	f.lastFilter = filter
	var out []*domain.Appointment
	for _, a := range f.items {
		if a.DoctorID == filter.DoctorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(_ context.Context, id int64, status domain.AppointmentStatus) error {
	a, ok := f.items[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	a.Status = status
	return nil
}

func (f *fakeAppointmentRepo) Cancel(_ context.Context, id int64, reason *string) error {
	a, ok := f.items[id]
	if !ok {
		return appointmentRepo.ErrAppointmentNotFound
	}
	a.Status = domain.StatusCancelled
	a.CancellationReason = reason
	cancelledAt := fixedNow
	a.CancelledAt = &cancelledAt
	return nil
}

type fakeDoctorRepo struct{}

func (fakeDoctorRepo) GetByID(_ context.Context, id int64) (*domain.Doctor, error) {
	if id != 10 {
		return nil, doctorRepo.ErrDoctorNotFound
	}
	return &domain.Doctor{ID: 10, PracticeID: 1, UserID: doctorUserID}, nil
}

type recordingPublisher struct {
	events []notifications.AppointmentEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event notifications.AppointmentEvent) error {
	p.events = append(p.events, event)
	return p.err
}

func newTestService(t *testing.T, status domain.AppointmentStatus) (*Service, *fakeAppointmentRepo, *recordingPublisher) {
	t.Helper()

	starts := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	repo := &fakeAppointmentRepo{items: map[int64]*domain.Appointment{
		1: {
			ID:              1,
			PracticeID:      1,
			DoctorID:        10,
			PatientID:       patientUserID,
			AppointmentDate: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
			StartTime:       types.TimeString("10:00"),
			DurationMinutes: 30,
			Status:          status,
			StartsAt:        starts,
			EndsAt:          starts.Add(30 * time.Minute),
		},
	}}
	publisher := &recordingPublisher{}

	svc := NewService(repo, fakeDoctorRepo{}, publisher, fakeTxManager{}, fixedTimeProvider{}, logger.NewNop())
	return svc, repo, publisher
}

func TestGetByID_Access(t *testing.T) {
	svc, _, _ := newTestService(t, domain.StatusScheduled)
	ctx := context.Background()

	resp, err := svc.GetByID(ctx, 1, patientUserID)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-02", resp.AppointmentDate)
	assert.Equal(t, "10:00", resp.StartTime)

	_, err = svc.GetByID(ctx, 1, doctorUserID)
	require.NoError(t, err)

	_, err = svc.GetByID(ctx, 1, strangerID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetByID(ctx, 2, patientUserID)
	assert.ErrorIs(t, err, ErrAppointmentNotFound)
}

func TestCancel(t *testing.T) {
	svc, repo, publisher := newTestService(t, domain.StatusConfirmed)

	resp, err := svc.Cancel(context.Background(), 1, &models.CancelAppointmentRequest{
		UserID:             patientUserID,
		CancellationReason: ptr.Ptr("feeling better"),
	})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCancelled), resp.Status)
	require.NotNil(t, resp.CancelledAt)
	assert.Equal(t, domain.StatusCancelled, repo.items[1].Status)

	require.Len(t, publisher.events, 1)
	assert.Equal(t, notifications.EventAppointmentCancelled, publisher.events[0].Type)
	assert.Equal(t, string(domain.StatusConfirmed), publisher.events[0].PreviousStatus)
	assert.True(t, fixedNow.Equal(publisher.events[0].OccurredAt))
}

func TestCancel_Rejected(t *testing.T) {
	t.Run("final status", func(t *testing.T) {
		svc, _, publisher := newTestService(t, domain.StatusCompleted)
		_, err := svc.Cancel(context.Background(), 1, &models.CancelAppointmentRequest{UserID: patientUserID})
		assert.ErrorIs(t, err, ErrCannotCancel)
		assert.Empty(t, publisher.events)
	})

	t.Run("stranger", func(t *testing.T) {
		svc, repo, _ := newTestService(t, domain.StatusScheduled)
		_, err := svc.Cancel(context.Background(), 1, &models.CancelAppointmentRequest{UserID: strangerID})
		assert.ErrorIs(t, err, ErrAccessDenied)
		assert.Equal(t, domain.StatusScheduled, repo.items[1].Status)
	})
}

func TestCancel_PublishFailureDoesNotFail(t *testing.T) {
	svc, _, publisher := newTestService(t, domain.StatusScheduled)
	publisher.err = errors.New("broker down")

	_, err := svc.Cancel(context.Background(), 1, &models.CancelAppointmentRequest{UserID: doctorUserID})
	assert.NoError(t, err)
}

func TestUpdateStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    domain.AppointmentStatus
		to      string
		userID  int64
		wantErr error
	}{
		{name: "confirm", from: domain.StatusScheduled, to: "confirmed", userID: doctorUserID},
		{name: "complete confirmed", from: domain.StatusConfirmed, to: "completed", userID: doctorUserID},
		{name: "reject confirmed", from: domain.StatusConfirmed, to: "rejected", userID: doctorUserID, wantErr: ErrInvalidTransition},
		{name: "final is final", from: domain.StatusNoShow, to: "confirmed", userID: doctorUserID, wantErr: ErrInvalidTransition},
		{name: "back to scheduled", from: domain.StatusConfirmed, to: "scheduled", userID: doctorUserID, wantErr: ErrInvalidTransition},
		{name: "patient cannot", from: domain.StatusScheduled, to: "confirmed", userID: patientUserID, wantErr: ErrAccessDenied},
		{name: "unknown status", from: domain.StatusScheduled, to: "archived", userID: doctorUserID, wantErr: ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo, publisher := newTestService(t, tt.from)

			resp, err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{UserID: tt.userID, Status: tt.to})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.from, repo.items[1].Status)
				assert.Empty(t, publisher.events)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.to, resp.Status)
			require.Len(t, publisher.events, 1)
			assert.Equal(t, notifications.EventAppointmentStatusChanged, publisher.events[0].Type)
			assert.Equal(t, string(tt.from), publisher.events[0].PreviousStatus)
		})
	}
}

func TestUpdateStatus_CancelSetsCancelledAt(t *testing.T) {
	svc, repo, publisher := newTestService(t, domain.StatusScheduled)

	_, err := svc.UpdateStatus(context.Background(), 1, &models.UpdateStatusRequest{UserID: doctorUserID, Status: "cancelled"})
	require.NoError(t, err)

	assert.NotNil(t, repo.items[1].CancelledAt)
	require.Len(t, publisher.events, 1)
	assert.Equal(t, notifications.EventAppointmentCancelled, publisher.events[0].Type)
}

func TestGetPatientAppointments(t *testing.T) {
	svc, _, _ := newTestService(t, domain.StatusScheduled)
	ctx := context.Background()

	resp, err := svc.GetPatientAppointments(ctx, &models.GetPatientAppointmentsRequest{UserID: patientUserID, PatientID: patientUserID})
	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 1)

	resp, err = svc.GetPatientAppointments(ctx, &models.GetPatientAppointmentsRequest{
		UserID: patientUserID, PatientID: patientUserID, Status: ptr.Ptr("cancelled"),
	})
	require.NoError(t, err)
	assert.NotNil(t, resp.Appointments)
	assert.Empty(t, resp.Appointments)

	_, err = svc.GetPatientAppointments(ctx, &models.GetPatientAppointmentsRequest{UserID: strangerID, PatientID: patientUserID})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetPatientAppointments(ctx, &models.GetPatientAppointmentsRequest{
		UserID: patientUserID, PatientID: patientUserID, Status: ptr.Ptr("bogus"),
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetDoctorAppointments(t *testing.T) {
	svc, repo, _ := newTestService(t, domain.StatusScheduled)
	ctx := context.Background()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	resp, err := svc.GetDoctorAppointments(ctx, &models.GetDoctorAppointmentsRequest{
		UserID: doctorUserID, DoctorID: 10, StartDate: &day, EndDate: &day, IncludeInactive: true,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Appointments, 1)
	assert.True(t, repo.lastFilter.IncludeInactive)
	assert.Equal(t, int64(10), repo.lastFilter.DoctorID)

	_, err = svc.GetDoctorAppointments(ctx, &models.GetDoctorAppointmentsRequest{UserID: patientUserID, DoctorID: 10})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetDoctorAppointments(ctx, &models.GetDoctorAppointmentsRequest{UserID: doctorUserID, DoctorID: 11})
	assert.ErrorIs(t, err, ErrDoctorNotFound)

	before := day.AddDate(0, 0, -1)
	_, err = svc.GetDoctorAppointments(ctx, &models.GetDoctorAppointmentsRequest{
		UserID: doctorUserID, DoctorID: 10, StartDate: &day, EndDate: &before,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
