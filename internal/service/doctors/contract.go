package doctors

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// DoctorRepository интерфейс репозитория врачей и их расписания
type DoctorRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Doctor, error)
	LockByID(ctx context.Context, id int64) (*domain.Doctor, error)
	GetSchedule(ctx context.Context, doctorID int64) (domain.DoctorSchedule, error)
	ReplaceWeeklyAvailability(ctx context.Context, doctorID int64, weekly domain.WeeklyAvailability) error
	CreateVacation(ctx context.Context, v *domain.VacationPeriod) (*domain.VacationPeriod, error)
	DeleteVacation(ctx context.Context, doctorID, vacationID int64) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
