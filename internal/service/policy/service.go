package policy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	policyRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/policy"
	"github.com/m04kA/SMC-AppointmentService/internal/service/policy/models"
)

// Service сервис для работы с политикой записи практики
type Service struct {
	policyRepo PolicyRepository
	doctorRepo DoctorRepository
	defaults   DefaultsFunc
	logger     Logger
}

// NewService создает новый экземпляр сервиса политик
func NewService(
	policyRepo PolicyRepository,
	doctorRepo DoctorRepository,
	defaults DefaultsFunc,
	logger Logger,
) *Service {
	return &Service{
		policyRepo: policyRepo,
		doctorRepo: doctorRepo,
		defaults:   defaults,
		logger:     logger,
	}
}

// Get возвращает политику практики
// Если политика не сохранена, возвращаются значения по умолчанию
func (s *Service) Get(ctx context.Context, practiceID int64) (*models.PolicyResponse, error) {
	s.logger.Info("Get: fetching policy for practice=%d", practiceID)

	p, isDefault, err := s.load(ctx, practiceID)
	if err != nil {
		s.logger.Error("Get: repository error for practice=%d: %v", practiceID, err)
		return nil, fmt.Errorf("%w: Get - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainPolicy(p, isDefault), nil
}

// GetEffective возвращает действующую политику для проверки записи
func (s *Service) GetEffective(ctx context.Context, practiceID int64) (*domain.PracticePolicy, error) {
	p, _, err := s.load(ctx, practiceID)
	if err != nil {
		s.logger.Error("GetEffective: repository error for practice=%d: %v", practiceID, err)
		return nil, fmt.Errorf("%w: GetEffective - repository error: %v", ErrInternal, err)
	}
	return p, nil
}

// Update частично обновляет политику практики
// Доступно только врачам этой практики
func (s *Service) Update(ctx context.Context, req *models.UpdatePolicyRequest) (*models.PolicyResponse, error) {
	s.logger.Info("Update: updating policy for practice=%d by user=%d", req.PracticeID, req.UserID)

	if req.IsEmpty() {
		s.logger.Warn("Update: empty request for practice=%d", req.PracticeID)
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidInput)
	}

	// 1. Проверяем права доступа
	if err := s.checkPracticeAccess(ctx, req.PracticeID, req.UserID); err != nil {
		return nil, err
	}

	// 2. Берём текущую политику (или значения по умолчанию) и применяем изменения
	current, _, err := s.load(ctx, req.PracticeID)
	if err != nil {
		s.logger.Error("Update: repository error for practice=%d: %v", req.PracticeID, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}
	req.ApplyToPolicy(current)

	// 3. Валидируем результат
	if err := validatePolicy(current); err != nil {
		s.logger.Warn("Update: validation failed for practice=%d: %v", req.PracticeID, err)
		return nil, err
	}

	// 4. Сохраняем
	saved, err := s.policyRepo.Upsert(ctx, current)
	if err != nil {
		s.logger.Error("Update: failed to save policy for practice=%d: %v", req.PracticeID, err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: successfully updated policy for practice=%d", req.PracticeID)
	return models.FromDomainPolicy(saved, false), nil
}

// load возвращает сохранённую политику или значения по умолчанию
func (s *Service) load(ctx context.Context, practiceID int64) (*domain.PracticePolicy, bool, error) {
	p, err := s.policyRepo.GetByPracticeID(ctx, practiceID)
	if err == nil {
		return p, false, nil
	}
	if errors.Is(err, policyRepo.ErrPolicyNotFound) {
		return s.defaults(practiceID), true, nil
	}
	return nil, false, err
}

// checkPracticeAccess проверяет, что пользователь является врачом практики
func (s *Service) checkPracticeAccess(ctx context.Context, practiceID, userID int64) error {
	isMember, err := s.doctorRepo.IsPracticeMember(ctx, practiceID, userID)
	if err != nil {
		s.logger.Error("checkPracticeAccess: failed to check user=%d in practice=%d: %v", userID, practiceID, err)
		return fmt.Errorf("%w: checkPracticeAccess - repository error: %v", ErrInternal, err)
	}
	if !isMember {
		s.logger.Warn("checkPracticeAccess: user=%d is not a doctor of practice=%d", userID, practiceID)
		return ErrAccessDenied
	}
	return nil
}

func validatePolicy(p *domain.PracticePolicy) error {
	if _, err := time.LoadLocation(p.Timezone); err != nil || p.Timezone == "" {
		return fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, p.Timezone)
	}
	if p.MinNoticeHours < domain.MinNoticeHoursLimit || p.MinNoticeHours > domain.MaxNoticeHoursLimit {
		return fmt.Errorf("%w: minNoticeHours must be between %d and %d",
			ErrInvalidInput, domain.MinNoticeHoursLimit, domain.MaxNoticeHoursLimit)
	}
	if p.MaxFutureBookingDays < domain.MinFutureBookingDays || p.MaxFutureBookingDays > domain.MaxFutureBookingDays {
		return fmt.Errorf("%w: maxFutureBookingDays must be between %d and %d",
			ErrInvalidInput, domain.MinFutureBookingDays, domain.MaxFutureBookingDays)
	}
	if p.DefaultDurationMinutes < domain.MinDurationMinutes || p.DefaultDurationMinutes > domain.MaxDurationMinutes {
		return fmt.Errorf("%w: defaultDurationMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinDurationMinutes, domain.MaxDurationMinutes)
	}
	return nil
}
