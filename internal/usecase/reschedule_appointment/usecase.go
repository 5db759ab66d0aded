package reschedule_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	doctorRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/doctor"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifications"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling/conflict"
	"github.com/m04kA/SMC-AppointmentService/pkg/locker"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

const operation = "reschedule"

// UseCase use case для переноса приёма
type UseCase struct {
	appointmentRepo AppointmentRepository
	doctorRepo      DoctorRepository
	policies        PolicyProvider
	locker          Locker
	publisher       EventPublisher
	verdicts        VerdictRecorder
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	doctorRepo DoctorRepository,
	policies PolicyProvider,
	locker Locker,
	publisher EventPublisher,
	verdicts VerdictRecorder,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		policies:        policies,
		locker:          locker,
		publisher:       publisher,
		verdicts:        verdicts,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case переноса приёма
// Новый интервал проверяется так же, как при записи, но сам приём в конфликтах не участвует
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleAppointment: user=%d, appointment=%d, date=%s, time=%s",
		req.UserID, req.AppointmentID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("RescheduleAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем приём
	appt, err := uc.appointmentRepo.GetByID(ctx, req.AppointmentID)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			uc.logger.Warn("RescheduleAppointment: appointment id=%d not found", req.AppointmentID)
			return nil, ErrAppointmentNotFound
		}
		uc.logger.Error("RescheduleAppointment: failed to get appointment id=%d: %v", req.AppointmentID, err)
		return nil, fmt.Errorf("%w: failed to get appointment: %v", ErrInternal, err)
	}

	// 4. Проверяем права: пациент или врач приёма
	doctor, err := uc.doctorRepo.GetByID(ctx, appt.DoctorID)
	if err != nil {
		if errors.Is(err, doctorRepo.ErrDoctorNotFound) {
			uc.logger.Warn("RescheduleAppointment: doctor id=%d not found", appt.DoctorID)
			return nil, ErrDoctorNotFound
		}
		uc.logger.Error("RescheduleAppointment: failed to get doctor id=%d: %v", appt.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to get doctor: %v", ErrInternal, err)
	}
	if appt.PatientID != req.UserID && doctor.UserID != req.UserID {
		uc.logger.Warn("RescheduleAppointment: access denied for user=%d to appointment id=%d", req.UserID, req.AppointmentID)
		return nil, ErrAccessDenied
	}

	// 5. Переносить можно только действующий приём
	if !appt.CanBeRescheduled() {
		uc.logger.Warn("RescheduleAppointment: appointment id=%d cannot be rescheduled, status=%s", appt.ID, appt.Status)
		return nil, ErrCannotReschedule
	}

	// 6. Политика практики
	policy, err := uc.policies.GetEffective(ctx, appt.PracticeID)
	if err != nil {
		uc.logger.Error("RescheduleAppointment: failed to get policy for practice=%d: %v", appt.PracticeID, err)
		return nil, fmt.Errorf("%w: failed to get policy: %v", ErrInternal, err)
	}
	loc, err := policy.Location()
	if err != nil {
		uc.logger.Error("RescheduleAppointment: practice=%d has invalid timezone %q: %v", appt.PracticeID, policy.Timezone, err)
		return nil, fmt.Errorf("%w: invalid practice timezone: %v", ErrInternal, err)
	}

	duration := ptr.Deref(req.DurationMinutes, appt.DurationMinutes)
	checkReq := conflict.Request{
		DoctorID:             appt.DoctorID,
		Date:                 req.Date,
		StartTime:            req.StartTime,
		DurationMinutes:      duration,
		ExcludeAppointmentID: appt.ID,
	}
	checkPolicy := conflict.Policy{
		MinNoticeHours:       policy.MinNoticeHours,
		MaxFutureBookingDays: policy.MaxFutureBookingDays,
		Location:             loc,
	}

	// 7. Блокировка на врача и новую дату
	unlock, err := uc.locker.Acquire(ctx, lockKey(appt.DoctorID, req.Date))
	if err != nil {
		if errors.Is(err, locker.ErrNotAcquired) {
			uc.logger.Warn("RescheduleAppointment: booking for doctor=%d on %s is in progress",
				appt.DoctorID, req.Date.Format(domain.DateFormat))
			return nil, ErrBookingInProgress
		}
		uc.logger.Error("RescheduleAppointment: failed to acquire lock: %v", err)
		return nil, fmt.Errorf("%w: failed to acquire lock: %v", ErrInternal, err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			uc.logger.Warn("RescheduleAppointment: failed to release lock: %v", err)
		}
	}()

	var (
		result           *domain.Appointment
		previousStartsAt = appt.StartsAt
	)

	// 8. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 8.1. Блокируем врача и сам приём, статус мог измениться после чтения
		if _, err := uc.doctorRepo.LockByID(txCtx, appt.DoctorID); err != nil {
			return fmt.Errorf("%w: failed to lock doctor: %w", ErrInternal, err)
		}
		current, err := uc.appointmentRepo.LockByID(txCtx, appt.ID)
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
				return ErrAppointmentNotFound
			}
			return fmt.Errorf("%w: failed to lock appointment: %w", ErrInternal, err)
		}
		if !current.CanBeRescheduled() {
			return ErrCannotReschedule
		}
		previousStartsAt = current.StartsAt

		// 8.2. Расписание и действующие приёмы на новую дату (FOR UPDATE)
		schedule, err := uc.doctorRepo.GetSchedule(txCtx, appt.DoctorID)
		if err != nil {
			return fmt.Errorf("%w: failed to get schedule: %w", ErrInternal, err)
		}
		appointments, err := uc.appointmentRepo.GetBlockingByDoctorAndDate(txCtx, appt.DoctorID, req.Date)
		if err != nil {
			return fmt.Errorf("%w: failed to get appointments: %w", ErrInternal, err)
		}
		existing, err := conflict.ToExisting(appointments, loc)
		if err != nil {
			return fmt.Errorf("%w: failed to build existing intervals: %v", ErrInternal, err)
		}

		// 8.3. Проверяем доступность без учёта самого приёма
		verdict, err := conflict.CheckAvailability(checkReq, schedule, existing, checkPolicy, now)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}
		uc.verdicts.RecordVerdict(operation, string(verdict.Reason))
		if !verdict.Available {
			uc.logger.Warn("RescheduleAppointment: appointment id=%d to %s %s rejected: %s",
				appt.ID, req.Date.Format(domain.DateFormat), req.StartTime, verdict)
			return verdictError(verdict)
		}

		// 8.4. Сохраняем новые границы
		current.AppointmentDate = verdict.Interval.Date()
		current.StartTime = req.StartTime
		current.DurationMinutes = duration
		current.StartsAt = verdict.Interval.Start()
		current.EndsAt = verdict.Interval.End()

		if err := uc.appointmentRepo.Reschedule(txCtx, current); err != nil {
			if errors.Is(err, appointmentRepo.ErrSlotNotAvailable) {
				return fmt.Errorf("%w: rejected by database constraint", ErrSlotNotAvailable)
			}
			return fmt.Errorf("%w: failed to reschedule appointment: %w", ErrInternal, err)
		}

		result = current
		return nil
	})

	if err != nil {
		if isRejection(err) {
			uc.logger.Warn("RescheduleAppointment: appointment id=%d not moved: %v", appt.ID, err)
			return nil, err
		}
		uc.logger.Error("RescheduleAppointment: transaction failed for appointment id=%d: %v", appt.ID, err)
		if errors.Is(err, ErrInternal) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	uc.logger.Info("RescheduleAppointment: successfully moved appointment id=%d to %s",
		result.ID, result.StartsAt.Format("2006-01-02 15:04 MST"))

	// 9. Событие публикуется после фиксации транзакции
	event := notifications.NewAppointmentEvent(notifications.EventAppointmentRescheduled, result, now)
	previousUTC := previousStartsAt.UTC()
	event.PreviousStartsAt = &previousUTC
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Error("RescheduleAppointment: failed to publish event for appointment id=%d: %v", result.ID, err)
	}

	return &Response{
		ID:               result.ID,
		PracticeID:       result.PracticeID,
		DoctorID:         result.DoctorID,
		PatientID:        result.PatientID,
		AppointmentDate:  result.AppointmentDate,
		StartTime:        result.StartTime,
		DurationMinutes:  result.DurationMinutes,
		Status:           string(result.Status),
		StartsAt:         result.StartsAt,
		EndsAt:           result.EndsAt,
		PreviousStartsAt: previousStartsAt,
		PatientName:      result.PatientName,
		Reason:           result.Reason,
		Notes:            result.Notes,
		CreatedAt:        result.CreatedAt,
		UpdatedAt:        result.UpdatedAt,
	}, nil
}
