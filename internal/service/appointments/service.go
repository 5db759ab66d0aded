package appointments

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	doctorRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/doctor"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifications"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// Service сервис для работы с приёмами
type Service struct {
	appointmentRepo AppointmentRepository
	doctorRepo      DoctorRepository
	publisher       EventPublisher
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса приёмов
func NewService(
	appointmentRepo AppointmentRepository,
	doctorRepo DoctorRepository,
	publisher EventPublisher,
	txManager TransactionManager,
	timeProvider TimeProvider,
	logger Logger,
) *Service {
	return &Service{
		appointmentRepo: appointmentRepo,
		doctorRepo:      doctorRepo,
		publisher:       publisher,
		txManager:       txManager,
		timeProvider:    timeProvider,
		logger:          logger,
	}
}

// GetByID получает приём по ID
// Видеть приём могут только пациент и врач этого приёма
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.AppointmentResponse, error) {
	s.logger.Info("GetByID: fetching appointment id=%d for user=%d", id, userID)

	appt, err := s.appointmentRepo.GetByID(ctx, id)
	if err != nil {
		return nil, s.repositoryError("GetByID", id, err)
	}

	if err := s.checkParticipantAccess(ctx, appt, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to appointment id=%d", userID, id)
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched appointment id=%d", id)
	return models.FromDomainAppointment(appt), nil
}

// GetPatientAppointments история приёмов пациента
// Пациент видит только свои приёмы
func (s *Service) GetPatientAppointments(ctx context.Context, req *models.GetPatientAppointmentsRequest) (*models.AppointmentListResponse, error) {
	s.logger.Info("GetPatientAppointments: fetching appointments for patient=%d by user=%d, status=%v",
		req.PatientID, req.UserID, req.Status)

	if req.PatientID != req.UserID {
		s.logger.Warn("GetPatientAppointments: user=%d is not patient=%d", req.UserID, req.PatientID)
		return nil, ErrAccessDenied
	}

	var domainStatus *domain.AppointmentStatus
	if req.Status != nil {
		status, err := models.ToDomainStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetPatientAppointments: invalid status=%s for patient=%d", *req.Status, req.PatientID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	list, err := s.appointmentRepo.GetByPatientID(ctx, req.PatientID, domainStatus)
	if err != nil {
		s.logger.Error("GetPatientAppointments: repository error for patient=%d: %v", req.PatientID, err)
		return nil, fmt.Errorf("%w: GetPatientAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetPatientAppointments: successfully fetched %d appointments for patient=%d", len(list), req.PatientID)
	return models.FromDomainAppointmentList(list), nil
}

// GetDoctorAppointments приёмы врача с фильтрацией по периоду и статусу
// Доступно только самому врачу
func (s *Service) GetDoctorAppointments(ctx context.Context, req *models.GetDoctorAppointmentsRequest) (*models.AppointmentListResponse, error) {
	logMsg := fmt.Sprintf("GetDoctorAppointments: fetching appointments for doctor=%d, user=%d", req.DoctorID, req.UserID)
	if req.StartDate != nil && req.EndDate != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeInactive {
		logMsg += ", includeInactive=true"
	}
	s.logger.Info(logMsg)

	if req.StartDate != nil && req.EndDate != nil && req.StartDate.After(*req.EndDate) {
		s.logger.Warn("GetDoctorAppointments: start date after end date for doctor=%d", req.DoctorID)
		return nil, fmt.Errorf("%w: start date after end date", ErrInvalidInput)
	}

	if err := s.checkDoctorAccess(ctx, req.DoctorID, req.UserID); err != nil {
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetDoctorAppointments: invalid filter for doctor=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	list, err := s.appointmentRepo.GetByDoctorWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetDoctorAppointments: repository error for doctor=%d: %v", req.DoctorID, err)
		return nil, fmt.Errorf("%w: GetDoctorAppointments - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetDoctorAppointments: successfully fetched %d appointments for doctor=%d", len(list), req.DoctorID)
	return models.FromDomainAppointmentList(list), nil
}

// Cancel отменяет приём
// Отменить может пациент или врач приёма, только пока приём действующий
func (s *Service) Cancel(ctx context.Context, id int64, req *models.CancelAppointmentRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("Cancel: cancelling appointment id=%d by user=%d", id, req.UserID)

	if req.CancellationReason != nil && len(*req.CancellationReason) > domain.MaxCancellationReasonLength {
		s.logger.Warn("Cancel: cancellation reason too long for appointment id=%d", id)
		return nil, fmt.Errorf("%w: cancellation reason exceeds %d characters", ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	var (
		previous domain.AppointmentStatus
		updated  *domain.Appointment
	)
	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		appt, err := s.appointmentRepo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.checkParticipantAccess(ctx, appt, req.UserID); err != nil {
			return err
		}
		if !appt.CanBeCancelled() {
			s.logger.Warn("Cancel: appointment id=%d cannot be cancelled, status=%s", id, appt.Status)
			return ErrCannotCancel
		}
		previous = appt.Status

		if err := s.appointmentRepo.Cancel(ctx, id, req.CancellationReason); err != nil {
			return err
		}
		updated, err = s.appointmentRepo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, s.repositoryError("Cancel", id, err)
	}

	s.publish(ctx, "Cancel", notifications.EventAppointmentCancelled, updated, previous)

	s.logger.Info("Cancel: successfully cancelled appointment id=%d", id)
	return models.FromDomainAppointment(updated), nil
}

// UpdateStatus меняет статус приёма по таблице переходов
// Доступно только врачу приёма
func (s *Service) UpdateStatus(ctx context.Context, id int64, req *models.UpdateStatusRequest) (*models.AppointmentResponse, error) {
	s.logger.Info("UpdateStatus: updating appointment id=%d to status=%s by user=%d", id, req.Status, req.UserID)

	newStatus, err := models.ToDomainStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for appointment id=%d", req.Status, id)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	var (
		previous domain.AppointmentStatus
		updated  *domain.Appointment
	)
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		appt, err := s.appointmentRepo.LockByID(ctx, id)
		if err != nil {
			return err
		}
		if err := s.checkDoctorAccess(ctx, appt.DoctorID, req.UserID); err != nil {
			return err
		}
		if !appt.Status.CanTransitionTo(newStatus) {
			s.logger.Warn("UpdateStatus: transition %s -> %s not allowed for appointment id=%d", appt.Status, newStatus, id)
			return ErrInvalidTransition
		}
		previous = appt.Status

		if newStatus == domain.StatusCancelled {
			err = s.appointmentRepo.Cancel(ctx, id, nil)
		} else {
			err = s.appointmentRepo.UpdateStatus(ctx, id, newStatus)
		}
		if err != nil {
			return err
		}
		updated, err = s.appointmentRepo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, s.repositoryError("UpdateStatus", id, err)
	}

	eventType := notifications.EventAppointmentStatusChanged
	if newStatus == domain.StatusCancelled {
		eventType = notifications.EventAppointmentCancelled
	}
	s.publish(ctx, "UpdateStatus", eventType, updated, previous)

	s.logger.Info("UpdateStatus: successfully updated appointment id=%d %s -> %s", id, previous, newStatus)
	return models.FromDomainAppointment(updated), nil
}

// Вспомогательные методы

// checkParticipantAccess пользователь должен быть пациентом или врачом приёма
func (s *Service) checkParticipantAccess(ctx context.Context, appt *domain.Appointment, userID int64) error {
	if appt.PatientID == userID {
		return nil
	}

	// Ошибки логируются в checkDoctorAccess
	return s.checkDoctorAccess(ctx, appt.DoctorID, userID)
}

// checkDoctorAccess пользователь должен быть этим врачом
func (s *Service) checkDoctorAccess(ctx context.Context, doctorID, userID int64) error {
	doctor, err := s.doctorRepo.GetByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, doctorRepo.ErrDoctorNotFound) {
			s.logger.Warn("checkDoctorAccess: doctor=%d not found", doctorID)
			return ErrDoctorNotFound
		}
		s.logger.Error("checkDoctorAccess: failed to get doctor=%d: %v", doctorID, err)
		return fmt.Errorf("%w: checkDoctorAccess - failed to get doctor: %v", ErrInternal, err)
	}

	if doctor.UserID != userID {
		s.logger.Warn("checkDoctorAccess: user=%d is not doctor=%d", userID, doctorID)
		return ErrAccessDenied
	}
	return nil
}

// repositoryError переводит ошибки репозитория и проверок в ошибки сервиса
func (s *Service) repositoryError(op string, id int64, err error) error {
	switch {
	case errors.Is(err, appointmentRepo.ErrAppointmentNotFound):
		s.logger.Warn("%s: appointment id=%d not found", op, id)
		return ErrAppointmentNotFound
	case errors.Is(err, ErrAccessDenied),
		errors.Is(err, ErrCannotCancel),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrDoctorNotFound),
		errors.Is(err, ErrInternal):
		return err
	default:
		s.logger.Error("%s: repository error for appointment id=%d: %v", op, id, err)
		return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
}

// publish отправляет событие после фиксации транзакции, ошибка только логируется
func (s *Service) publish(ctx context.Context, op string, eventType notifications.EventType, appt *domain.Appointment, previous domain.AppointmentStatus) {
	event := notifications.NewAppointmentEvent(eventType, appt, s.timeProvider.Now())
	event.PreviousStatus = string(previous)

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("%s: failed to publish %s for appointment id=%d: %v", op, eventType, appt.ID, err)
	}
}
