package reschedule_appointment

import "errors"

var (
	// ErrAppointmentNotFound возвращается, когда приём не найден
	ErrAppointmentNotFound = errors.New("reschedule_appointment: appointment not found")

	// ErrDoctorNotFound возвращается, когда врач приёма не найден
	ErrDoctorNotFound = errors.New("reschedule_appointment: doctor not found")

	// ErrAccessDenied перенести приём могут только его пациент и врач
	ErrAccessDenied = errors.New("reschedule_appointment: access denied")

	// ErrCannotReschedule приём уже не действующий
	ErrCannotReschedule = errors.New("reschedule_appointment: appointment cannot be rescheduled")

	// ErrInvalidRequest новое время не может быть приёмом (дата, время, длительность)
	ErrInvalidRequest = errors.New("reschedule_appointment: invalid request")

	// ErrTooSoon до нового начала меньше минимального времени уведомления
	ErrTooSoon = errors.New("reschedule_appointment: appointment starts too soon")

	// ErrTooFarInFuture новое время дальше горизонта записи
	ErrTooFarInFuture = errors.New("reschedule_appointment: appointment is too far in the future")

	// ErrDuringVacation врач в отпуске в новый день
	ErrDuringVacation = errors.New("reschedule_appointment: doctor is on vacation")

	// ErrOutsideWorkingHours новый интервал вне рабочих окон
	ErrOutsideWorkingHours = errors.New("reschedule_appointment: outside working hours")

	// ErrSlotNotAvailable новый интервал пересекается с другим приёмом врача
	ErrSlotNotAvailable = errors.New("reschedule_appointment: slot is not available")

	// ErrBookingInProgress на этого врача и дату уже идёт запись
	ErrBookingInProgress = errors.New("reschedule_appointment: another booking for this doctor and date is in progress")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_appointment: internal error")
)
