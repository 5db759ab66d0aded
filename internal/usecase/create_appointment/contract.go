package create_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/notifications"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/patientservice"
)

// AppointmentRepository интерфейс репозитория приёмов
type AppointmentRepository interface {
	Create(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
	GetBlockingByDoctorAndDate(ctx context.Context, doctorID int64, date time.Time) ([]*domain.Appointment, error)
}

// DoctorRepository интерфейс репозитория врачей
type DoctorRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Doctor, error)
	LockByID(ctx context.Context, id int64) (*domain.Doctor, error)
	GetSchedule(ctx context.Context, doctorID int64) (domain.DoctorSchedule, error)
}

// PolicyProvider действующая политика практики
type PolicyProvider interface {
	GetEffective(ctx context.Context, practiceID int64) (*domain.PracticePolicy, error)
}

// PatientServiceClient интерфейс клиента для PatientService
type PatientServiceClient interface {
	GetPatientWithGracefulDegradation(ctx context.Context, userID int64) (*patientservice.Patient, error)
}

// Locker распределённая блокировка на врача и дату
type Locker interface {
	Acquire(ctx context.Context, key string) (func(context.Context) error, error)
}

// EventPublisher публикует события по приёмам
type EventPublisher interface {
	Publish(ctx context.Context, event notifications.AppointmentEvent) error
}

// VerdictRecorder учитывает результаты проверки доступности
type VerdictRecorder interface {
	RecordVerdict(operation, reason string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
