package check_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	doctorRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/doctor"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling/conflict"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

const operation = "check"

// UseCase предварительная проверка доступности без записи
type UseCase struct {
	appointmentRepo AppointmentRepository
	doctorRepo      DoctorRepository
	policies        PolicyProvider
	verdicts        VerdictRecorder
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	doctorRepo DoctorRepository,
	policies PolicyProvider,
	verdicts VerdictRecorder,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		policies:        policies,
		verdicts:        verdicts,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute возвращает вердикт; отрицательный вердикт не является ошибкой
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CheckAvailability: doctor=%d, date=%s, time=%s",
		req.DoctorID, req.Date.Format(domain.DateFormat), req.StartTime)

	if req.DoctorID <= 0 {
		return nil, fmt.Errorf("%w: doctor id is required", ErrInvalidInput)
	}

	now := uc.timeProvider.Now()

	// 1. Врач
	doctor, err := uc.doctorRepo.GetByID(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, doctorRepo.ErrDoctorNotFound) {
			uc.logger.Warn("CheckAvailability: doctor id=%d not found", req.DoctorID)
			return nil, ErrDoctorNotFound
		}
		uc.logger.Error("CheckAvailability: failed to get doctor id=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to get doctor: %v", ErrInternal, err)
	}

	// 2. Политика практики
	policy, err := uc.policies.GetEffective(ctx, doctor.PracticeID)
	if err != nil {
		uc.logger.Error("CheckAvailability: failed to get policy for practice=%d: %v", doctor.PracticeID, err)
		return nil, fmt.Errorf("%w: failed to get policy: %v", ErrInternal, err)
	}
	loc, err := policy.Location()
	if err != nil {
		uc.logger.Error("CheckAvailability: practice=%d has invalid timezone %q: %v", doctor.PracticeID, policy.Timezone, err)
		return nil, fmt.Errorf("%w: invalid practice timezone: %v", ErrInternal, err)
	}

	// 3. Расписание и действующие приёмы на дату
	schedule, err := uc.doctorRepo.GetSchedule(ctx, req.DoctorID)
	if err != nil {
		uc.logger.Error("CheckAvailability: failed to get schedule of doctor=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}

	var existing []conflict.ExistingAppointment
	if !req.Date.IsZero() {
		appointments, err := uc.appointmentRepo.GetBlockingByDoctorAndDate(ctx, req.DoctorID, req.Date)
		if err != nil {
			uc.logger.Error("CheckAvailability: failed to get appointments of doctor=%d: %v", req.DoctorID, err)
			return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
		}
		existing, err = conflict.ToExisting(appointments, loc)
		if err != nil {
			uc.logger.Error("CheckAvailability: stored appointment is broken: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
	}

	// 4. Вердикт
	duration := ptr.Deref(req.DurationMinutes, policy.DefaultDurationMinutes)
	verdict, err := conflict.CheckAvailability(conflict.Request{
		DoctorID:        req.DoctorID,
		Date:            req.Date,
		StartTime:       req.StartTime,
		DurationMinutes: duration,
	}, schedule, existing, conflict.Policy{
		MinNoticeHours:       policy.MinNoticeHours,
		MaxFutureBookingDays: policy.MaxFutureBookingDays,
		Location:             loc,
	}, now)
	if err != nil {
		uc.logger.Error("CheckAvailability: resolver failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	uc.verdicts.RecordVerdict(operation, string(verdict.Reason))

	uc.logger.Info("CheckAvailability: doctor=%d verdict=%s", req.DoctorID, verdict)

	return toResponse(req.DoctorID, duration, policy.Timezone, verdict), nil
}

func toResponse(doctorID int64, duration int, timezone string, v conflict.Verdict) *Response {
	resp := &Response{
		DoctorID:        doctorID,
		Available:       v.Available,
		Reason:          v.Reason,
		Violation:       v.Violation,
		DurationMinutes: duration,
		Timezone:        timezone,
	}
	if v.ConflictingAppointmentID != 0 {
		resp.ConflictingAppointmentID = ptr.Ptr(v.ConflictingAppointmentID)
	}
	if !v.Interval.IsZero() {
		resp.StartsAt = ptr.Ptr(v.Interval.Start())
		resp.EndsAt = ptr.Ptr(v.Interval.End())
	}
	return resp
}
