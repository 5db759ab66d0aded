package domain

// Default policy values (used when a practice has no stored policy)
const (
	DefaultTimezone             = "UTC"
	DefaultDurationMinutes      = 30
	DefaultMinNoticeHours       = 2
	DefaultMaxFutureBookingDays = 90
)

// Business validation constants
const (
	MinDurationMinutes          = 1
	MaxDurationMinutes          = 480 // 8 hours
	MinNoticeHoursLimit         = 0
	MaxNoticeHoursLimit         = 168 // 1 week
	MinFutureBookingDays        = 0
	MaxFutureBookingDays        = 365 // 1 year
	MaxWindowsPerDay            = 24
	MaxNotesLength              = 1000
	MaxReasonLength             = 500
	MaxCancellationReasonLength = 500
)

// DateFormat YYYY-MM-DD
const DateFormat = "2006-01-02"

// BlockingStatuses статусы приёмов, которые занимают время врача.
// Используется для фильтрации при проверке пересечений.
var BlockingStatuses = []AppointmentStatus{
	StatusScheduled,
	StatusConfirmed,
}

// InactiveStatuses статусы, которые не участвуют в проверке пересечений
var InactiveStatuses = []AppointmentStatus{
	StatusCompleted,
	StatusCancelled,
	StatusRejected,
	StatusNoShow,
}
