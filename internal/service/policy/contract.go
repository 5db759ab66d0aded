package policy

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// PolicyRepository интерфейс репозитория политик практик
type PolicyRepository interface {
	GetByPracticeID(ctx context.Context, practiceID int64) (*domain.PracticePolicy, error)
	Upsert(ctx context.Context, p *domain.PracticePolicy) (*domain.PracticePolicy, error)
}

// DoctorRepository нужен для проверки прав на изменение политики
type DoctorRepository interface {
	IsPracticeMember(ctx context.Context, practiceID, userID int64) (bool, error)
}

// DefaultsFunc строит политику по умолчанию для практики без сохранённой политики
type DefaultsFunc func(practiceID int64) *domain.PracticePolicy

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
