package delete_doctor_vacation

import "context"

type DoctorService interface {
	DeleteVacation(ctx context.Context, doctorID, vacationID, userID int64) error
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
