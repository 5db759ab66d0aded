package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	doctorRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/doctor"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling/conflict"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

// UseCase use case для получения свободных слотов врача на дату
type UseCase struct {
	appointmentRepo AppointmentRepository
	doctorRepo      DoctorRepository
	policies        PolicyProvider
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	appointmentRepo AppointmentRepository,
	doctorRepo DoctorRepository,
	policies PolicyProvider,
	logger Logger,
) *UseCase {
	return &UseCase{
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		policies:        policies,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// WithTimeProvider подменяет источник времени (для тестов)
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения свободных слотов
// Закрытый день, отпуск, прошедшая дата или дата за горизонтом бронирования дают пустой список
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: doctor=%d, date=%s", req.DoctorID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if req.DoctorID <= 0 {
		return nil, fmt.Errorf("%w: doctor id is required", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем врача
	doctor, err := uc.doctorRepo.GetByID(ctx, req.DoctorID)
	if err != nil {
		if errors.Is(err, doctorRepo.ErrDoctorNotFound) {
			uc.logger.Warn("GetAvailableSlots: doctor id=%d not found", req.DoctorID)
			return nil, ErrDoctorNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get doctor id=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to get doctor: %v", ErrInternal, err)
	}

	// 4. Политика практики
	policy, err := uc.policies.GetEffective(ctx, doctor.PracticeID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get policy for practice=%d: %v", doctor.PracticeID, err)
		return nil, fmt.Errorf("%w: failed to get policy: %v", ErrInternal, err)
	}
	loc, err := policy.Location()
	if err != nil {
		uc.logger.Error("GetAvailableSlots: practice=%d has invalid timezone %q: %v", doctor.PracticeID, policy.Timezone, err)
		return nil, fmt.Errorf("%w: invalid practice timezone: %v", ErrInternal, err)
	}

	duration := ptr.Deref(req.DurationMinutes, policy.DefaultDurationMinutes)
	if duration < domain.MinDurationMinutes || duration > domain.MaxDurationMinutes {
		return nil, fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrInvalidInput, domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}

	response := &Response{
		Date:            req.Date,
		DoctorID:        req.DoctorID,
		Timezone:        policy.Timezone,
		DurationMinutes: duration,
		Slots:           []Slot{},
	}

	// 5. Расписание врача
	schedule, err := uc.doctorRepo.GetSchedule(ctx, req.DoctorID)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get schedule of doctor=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to get schedule: %v", ErrInternal, err)
	}

	if schedule.Weekly.IsClosed(req.Date.Weekday()) {
		uc.logger.Info("GetAvailableSlots: doctor=%d does not work on %s", req.DoctorID, req.Date.Weekday())
		return response, nil
	}
	if vacation, ok := availability.FindVacation(req.Date, schedule.Vacations); ok {
		uc.logger.Info("GetAvailableSlots: doctor=%d is on vacation id=%d on %s",
			req.DoctorID, vacation.ID, req.Date.Format(domain.DateFormat))
		return response, nil
	}

	// 6. Действующие приёмы на дату
	appointments, err := uc.appointmentRepo.GetBlockingByDoctorAndDate(ctx, req.DoctorID, req.Date)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to get appointments of doctor=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: failed to get appointments: %v", ErrInternal, err)
	}
	existing, err := conflict.ToExisting(appointments, loc)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: stored appointment is broken: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// 7. Перебираем окна и проверяем каждый слот
	slots, err := generateSlots(req.DoctorID, req.Date, duration, schedule, existing, conflict.Policy{
		MinNoticeHours:       policy.MinNoticeHours,
		MaxFutureBookingDays: policy.MaxFutureBookingDays,
		Location:             loc,
	}, now)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to generate slots: %v", err)
		return nil, fmt.Errorf("%w: failed to generate slots: %v", ErrInternal, err)
	}
	response.Slots = slots

	uc.logger.Info("GetAvailableSlots: generated %d slots for doctor=%d, date=%s",
		len(slots), req.DoctorID, req.Date.Format(domain.DateFormat))

	return response, nil
}
