package create_appointment

import "errors"

var (
	// ErrDoctorNotFound возвращается, когда врач не найден
	ErrDoctorNotFound = errors.New("create_appointment: doctor not found")

	// ErrPatientNotFound возвращается, когда пациент не найден в PatientService
	ErrPatientNotFound = errors.New("create_appointment: patient not found")

	// ErrPatientBlocked возвращается, когда пациенту запрещена запись
	ErrPatientBlocked = errors.New("create_appointment: patient is blocked")

	// ErrAccessDenied возвращается, когда запись за другого пациента делает не его врач
	ErrAccessDenied = errors.New("create_appointment: access denied")

	// ErrInvalidRequest запрос не может быть приёмом (дата, время, длительность)
	ErrInvalidRequest = errors.New("create_appointment: invalid request")

	// ErrTooSoon до начала приёма меньше минимального времени уведомления
	ErrTooSoon = errors.New("create_appointment: appointment starts too soon")

	// ErrTooFarInFuture приём дальше горизонта записи практики
	ErrTooFarInFuture = errors.New("create_appointment: appointment is too far in the future")

	// ErrDuringVacation врач в отпуске в этот день
	ErrDuringVacation = errors.New("create_appointment: doctor is on vacation")

	// ErrOutsideWorkingHours интервал не помещается ни в одно рабочее окно
	ErrOutsideWorkingHours = errors.New("create_appointment: outside working hours")

	// ErrSlotNotAvailable интервал пересекается с действующим приёмом врача
	ErrSlotNotAvailable = errors.New("create_appointment: slot is not available")

	// ErrBookingInProgress на этого врача и дату уже идёт запись
	ErrBookingInProgress = errors.New("create_appointment: another booking for this doctor and date is in progress")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_appointment: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_appointment: internal error")
)
