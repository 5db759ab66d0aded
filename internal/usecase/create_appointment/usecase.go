package create_appointment

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	doctorRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/doctor"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifications"
	patientClient "github.com/m04kA/SMC-AppointmentService/internal/integrations/patientservice"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling/conflict"
	"github.com/m04kA/SMC-AppointmentService/pkg/locker"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

const operation = "create"

// UseCase use case для создания приёма
type UseCase struct {
	appointmentRepo AppointmentRepository
	doctorRepo      DoctorRepository
	policies        PolicyProvider
	patientClient   PatientServiceClient
	locker          Locker
	publisher       EventPublisher
	verdicts        VerdictRecorder
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
// patientClient может быть nil, тогда пациент не проверяется
func NewUseCase(
	appointmentRepo AppointmentRepository,
	doctorRepo DoctorRepository,
	policies PolicyProvider,
	patientClient PatientServiceClient,
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
		patientClient:   patientClient,
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

// Execute выполняет use case создания приёма
// Проверка доступности повторяется внутри сериализуемой транзакции под блокировкой врача,
// последним рубежом остаётся exclusion constraint в БД
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateAppointment: user=%d, doctor=%d, date=%s, time=%s",
		req.UserID, req.DoctorID, req.Date.Format(domain.DateFormat), req.StartTime)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateAppointment: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем врача
	doctor, err := uc.doctorRepo.GetByID(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, doctorRepo.ErrDoctorNotFound) {
			uc.logger.Warn("CreateAppointment: doctor id=%d not found", req.DoctorID)
			return nil, ErrDoctorNotFound
		}
		uc.logger.Error("CreateAppointment: failed to get doctor id=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to get doctor: %v", ErrInternal, err)
	}

	// 4. Определяем пациента: записать другого пациента может только его врач
	patientID := req.UserID
	if req.PatientID != nil && *req.PatientID != req.UserID {
		if doctor.UserID != req.UserID {
			uc.logger.Warn("CreateAppointment: user=%d cannot book for patient=%d with doctor=%d",
				req.UserID, *req.PatientID, req.DoctorID)
			return nil, ErrAccessDenied
		}
		patientID = *req.PatientID
	}

	// 5. Проверяем пациента и берём его имя для истории
	patientName, err := uc.resolvePatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	// 6. Политика практики
	policy, err := uc.policies.GetEffective(ctx, doctor.PracticeID)
	if err != nil {
		uc.logger.Error("CreateAppointment: failed to get policy for practice=%d: %v", doctor.PracticeID, err)
		return nil, fmt.Errorf("%w: failed to get policy: %v", ErrInternal, err)
	}
	loc, err := policy.Location()
	if err != nil {
		uc.logger.Error("CreateAppointment: practice=%d has invalid timezone %q: %v", doctor.PracticeID, policy.Timezone, err)
		return nil, fmt.Errorf("%w: invalid practice timezone: %v", ErrInternal, err)
	}

	duration := ptr.Deref(req.DurationMinutes, policy.DefaultDurationMinutes)
	checkReq := conflict.Request{
		DoctorID:        req.DoctorID,
		Date:            req.Date,
		StartTime:       req.StartTime,
		DurationMinutes: duration,
	}
	checkPolicy := conflict.Policy{
		MinNoticeHours:       policy.MinNoticeHours,
		MaxFutureBookingDays: policy.MaxFutureBookingDays,
		Location:             loc,
	}

	// 7. Блокировка на врача и дату, чтобы параллельные записи не крутили повторы сериализации
	unlock, err := uc.locker.Acquire(ctx, lockKey(req.DoctorID, req.Date))
	if err != nil {
		if errors.Is(err, locker.ErrNotAcquired) {
			uc.logger.Warn("CreateAppointment: booking for doctor=%d on %s is in progress",
				req.DoctorID, req.Date.Format(domain.DateFormat))
			return nil, ErrBookingInProgress
		}
		uc.logger.Error("CreateAppointment: failed to acquire lock: %v", err)
		return nil, fmt.Errorf("%w: failed to acquire lock: %v", ErrInternal, err)
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			uc.logger.Warn("CreateAppointment: failed to release lock: %v", err)
		}
	}()

	// Переменная для хранения результата
	var result *domain.Appointment

	// 8. Выполняем операции с БД в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 8.1. Блокируем строку врача: записи к одному врачу выстраиваются в очередь
		if _, err := uc.doctorRepo.LockByID(txCtx, req.DoctorID); err != nil {
			return fmt.Errorf("%w: failed to lock doctor: %w", ErrInternal, err)
		}

		// 8.2. Расписание и действующие приёмы на дату (FOR UPDATE)
		schedule, err := uc.doctorRepo.GetSchedule(txCtx, req.DoctorID)
		if err != nil {
			return fmt.Errorf("%w: failed to get schedule: %w", ErrInternal, err)
		}
		appointments, err := uc.appointmentRepo.GetBlockingByDoctorAndDate(txCtx, req.DoctorID, req.Date)
		if err != nil {
			return fmt.Errorf("%w: failed to get appointments: %w", ErrInternal, err)
		}
		existing, err := conflict.ToExisting(appointments, loc)
		if err != nil {
			return fmt.Errorf("%w: failed to build existing intervals: %v", ErrInternal, err)
		}

		// 8.3. Проверяем доступность
		verdict, err := conflict.CheckAvailability(checkReq, schedule, existing, checkPolicy, now)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInternal, err)
		}
		uc.verdicts.RecordVerdict(operation, string(verdict.Reason))
		if !verdict.Available {
			uc.logger.Warn("CreateAppointment: doctor=%d %s %s rejected: %s",
				req.DoctorID, req.Date.Format(domain.DateFormat), req.StartTime, verdict)
			return verdictError(verdict)
		}

		// 8.4. Сохраняем приём с абсолютными границами интервала
		created, err := uc.appointmentRepo.Create(txCtx, &domain.Appointment{
			PracticeID:      doctor.PracticeID,
			DoctorID:        req.DoctorID,
			PatientID:       patientID,
			AppointmentDate: verdict.Interval.Date(),
			StartTime:       req.StartTime,
			DurationMinutes: duration,
			Status:          domain.StatusScheduled,
			StartsAt:        verdict.Interval.Start(),
			EndsAt:          verdict.Interval.End(),
			PatientName:     patientName,
			Reason:          req.Reason,
			Notes:           req.Notes,
		})
		if err != nil {
			if errors.Is(err, appointmentRepo.ErrSlotNotAvailable) {
				return fmt.Errorf("%w: rejected by database constraint", ErrSlotNotAvailable)
			}
			return fmt.Errorf("%w: failed to create appointment: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		if isRejection(err) {
			return nil, err
		}
		uc.logger.Error("CreateAppointment: transaction failed for doctor=%d: %v", req.DoctorID, err)
		if errors.Is(err, ErrInternal) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	uc.logger.Info("CreateAppointment: successfully created appointment id=%d", result.ID)

	// 9. Событие публикуется после фиксации транзакции
	event := notifications.NewAppointmentEvent(notifications.EventAppointmentCreated, result, now)
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Error("CreateAppointment: failed to publish event for appointment id=%d: %v", result.ID, err)
	}

	return toResponse(result), nil
}

// resolvePatient проверяет пациента в PatientService
// При недоступности сервиса запись продолжается без имени пациента
func (uc *UseCase) resolvePatient(ctx context.Context, patientID int64) (*string, error) {
	if uc.patientClient == nil {
		return nil, nil
	}

	patient, err := uc.patientClient.GetPatientWithGracefulDegradation(ctx, patientID)
	if err != nil {
		switch {
		case errors.Is(err, patientClient.ErrPatientNotFound):
			uc.logger.Warn("CreateAppointment: patient=%d not found", patientID)
			return nil, ErrPatientNotFound
		case errors.Is(err, patientClient.ErrServiceDegraded):
			uc.logger.Warn("CreateAppointment: patient service degraded, booking patient=%d without name", patientID)
			return nil, nil
		default:
			uc.logger.Error("CreateAppointment: failed to get patient=%d: %v", patientID, err)
			return nil, fmt.Errorf("%w: failed to get patient: %v", ErrInternal, err)
		}
	}

	if patient.IsBlocked {
		uc.logger.Warn("CreateAppointment: patient=%d is blocked", patientID)
		return nil, ErrPatientBlocked
	}
	if patient.FullName == "" {
		return nil, nil
	}
	return ptr.Ptr(patient.FullName), nil
}

func toResponse(a *domain.Appointment) *Response {
	return &Response{
		ID:              a.ID,
		PracticeID:      a.PracticeID,
		DoctorID:        a.DoctorID,
		PatientID:       a.PatientID,
		AppointmentDate: a.AppointmentDate,
		StartTime:       a.StartTime,
		DurationMinutes: a.DurationMinutes,
		Status:          string(a.Status),
		StartsAt:        a.StartsAt,
		EndsAt:          a.EndsAt,
		PatientName:     a.PatientName,
		Reason:          a.Reason,
		Notes:           a.Notes,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}
