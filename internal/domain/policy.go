package domain

import "time"

// PracticePolicy represents the booking rules of a practice (tenant).
// A practice without a stored policy uses the defaults from the service configuration.
type PracticePolicy struct {
	PracticeID             int64
	Timezone               string // IANA name, e.g. "Europe/Moscow"
	MinNoticeHours         int
	MaxFutureBookingDays   int // 0 = unlimited
	DefaultDurationMinutes int
	CreatedAt              time.Time
	UpdatedAt              time.Time
}

// Location resolves the practice timezone
func (p *PracticePolicy) Location() (*time.Location, error) {
	return time.LoadLocation(p.Timezone)
}
