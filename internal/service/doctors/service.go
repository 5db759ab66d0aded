package doctors

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	doctorRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/doctor"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/service/doctors/models"
)

// Service сервис для работы с расписанием врачей
type Service struct {
	doctorRepo DoctorRepository
	txManager  TransactionManager
	logger     Logger
}

// NewService создает новый экземпляр сервиса врачей
func NewService(
	doctorRepo DoctorRepository,
	txManager TransactionManager,
	logger Logger,
) *Service {
	return &Service{
		doctorRepo: doctorRepo,
		txManager:  txManager,
		logger:     logger,
	}
}

// GetSchedule возвращает недельные окна и отпуска врача
func (s *Service) GetSchedule(ctx context.Context, doctorID int64) (*models.ScheduleResponse, error) {
	s.logger.Info("GetSchedule: fetching schedule for doctor=%d", doctorID)

	doctor, err := s.getDoctor(ctx, "GetSchedule", doctorID)
	if err != nil {
		return nil, err
	}

	schedule, err := s.doctorRepo.GetSchedule(ctx, doctorID)
	if err != nil {
		s.logger.Error("GetSchedule: repository error for doctor=%d: %v", doctorID, err)
		return nil, fmt.Errorf("%w: GetSchedule - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSchedule(doctor, schedule), nil
}

// ReplaceAvailability полностью заменяет недельное расписание врача
// Доступно только самому врачу. Уже записанные приёмы не затрагиваются
func (s *Service) ReplaceAvailability(ctx context.Context, req *models.ReplaceAvailabilityRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("ReplaceAvailability: replacing availability for doctor=%d by user=%d", req.DoctorID, req.UserID)

	// 1. Конвертируем и валидируем окна
	weekly, err := req.ToDomainWeekly()
	if err != nil {
		s.logger.Warn("ReplaceAvailability: invalid request for doctor=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := availability.ValidateWeekly(weekly); err != nil {
		s.logger.Warn("ReplaceAvailability: invalid windows for doctor=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	availability.SortWindows(weekly)

	// 2. В транзакции блокируем врача и заменяем окна
	var doctor *domain.Doctor
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		locked, err := s.doctorRepo.LockByID(ctx, req.DoctorID)
		if err != nil {
			return err
		}
		if locked.UserID != req.UserID {
			return ErrAccessDenied
		}
		doctor = locked
		return s.doctorRepo.ReplaceWeeklyAvailability(ctx, req.DoctorID, weekly)
	})
	if err != nil {
		return nil, s.translateError("ReplaceAvailability", req.DoctorID, req.UserID, err)
	}

	schedule, err := s.doctorRepo.GetSchedule(ctx, req.DoctorID)
	if err != nil {
		s.logger.Error("ReplaceAvailability: failed to reload schedule for doctor=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: ReplaceAvailability - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ReplaceAvailability: successfully replaced availability for doctor=%d (%d days)", req.DoctorID, len(weekly))
	return models.FromDomainSchedule(doctor, schedule), nil
}

// AddVacation добавляет отпуск врачу
// Доступно только самому врачу
func (s *Service) AddVacation(ctx context.Context, req *models.CreateVacationRequest) (*models.VacationResponse, error) {
	s.logger.Info("AddVacation: adding vacation %s..%s for doctor=%d by user=%d",
		req.StartDate, req.EndDate, req.DoctorID, req.UserID)

	vacation, err := req.ToDomainVacation()
	if err != nil {
		s.logger.Warn("AddVacation: invalid request for doctor=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := availability.ValidateVacation(*vacation); err != nil {
		s.logger.Warn("AddVacation: invalid vacation for doctor=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if len(vacation.Reason) > domain.MaxReasonLength {
		s.logger.Warn("AddVacation: reason too long for doctor=%d", req.DoctorID)
		return nil, fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxReasonLength)
	}

	if err := s.checkDoctorAccess(ctx, "AddVacation", req.DoctorID, req.UserID); err != nil {
		return nil, err
	}

	created, err := s.doctorRepo.CreateVacation(ctx, vacation)
	if err != nil {
		return nil, s.translateError("AddVacation", req.DoctorID, req.UserID, err)
	}

	s.logger.Info("AddVacation: successfully added vacation id=%d for doctor=%d", created.ID, req.DoctorID)
	return models.FromDomainVacation(created), nil
}

// DeleteVacation удаляет отпуск врача
// Доступно только самому врачу
func (s *Service) DeleteVacation(ctx context.Context, doctorID, vacationID, userID int64) error {
	s.logger.Info("DeleteVacation: deleting vacation id=%d of doctor=%d by user=%d", vacationID, doctorID, userID)

	if err := s.checkDoctorAccess(ctx, "DeleteVacation", doctorID, userID); err != nil {
		return err
	}

	if err := s.doctorRepo.DeleteVacation(ctx, doctorID, vacationID); err != nil {
		return s.translateError("DeleteVacation", doctorID, userID, err)
	}

	s.logger.Info("DeleteVacation: successfully deleted vacation id=%d of doctor=%d", vacationID, doctorID)
	return nil
}

// Вспомогательные методы

func (s *Service) getDoctor(ctx context.Context, op string, doctorID int64) (*domain.Doctor, error) {
	doctor, err := s.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, doctorRepo.ErrDoctorNotFound) {
			s.logger.Warn("%s: doctor=%d not found", op, doctorID)
			return nil, ErrDoctorNotFound
		}
		s.logger.Error("%s: repository error for doctor=%d: %v", op, doctorID, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return doctor, nil
}

// checkDoctorAccess проверяет, что пользователь является этим врачом
func (s *Service) checkDoctorAccess(ctx context.Context, op string, doctorID, userID int64) error {
	doctor, err := s.getDoctor(ctx, op, doctorID)
	if err != nil {
		return err
	}
	if doctor.UserID != userID {
		s.logger.Warn("%s: user=%d is not doctor=%d", op, userID, doctorID)
		return ErrAccessDenied
	}
	return nil
}

func (s *Service) translateError(op string, doctorID, userID int64, err error) error {
	switch {
	case errors.Is(err, ErrAccessDenied):
		s.logger.Warn("%s: user=%d is not doctor=%d", op, userID, doctorID)
		return ErrAccessDenied
	case errors.Is(err, doctorRepo.ErrDoctorNotFound):
		s.logger.Warn("%s: doctor=%d not found", op, doctorID)
		return ErrDoctorNotFound
	case errors.Is(err, doctorRepo.ErrVacationNotFound):
		s.logger.Warn("%s: vacation of doctor=%d not found", op, doctorID)
		return ErrVacationNotFound
	default:
		s.logger.Error("%s: repository error for doctor=%d: %v", op, doctorID, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
}
