package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// UpdatePolicyRequest запрос на обновление политики практики
// Все поля опциональны - обновляются только переданные значения
type UpdatePolicyRequest struct {
	UserID                 int64   `json:"-"`
	PracticeID             int64   `json:"-"`
	Timezone               *string `json:"timezone,omitempty"`
	MinNoticeHours         *int    `json:"minNoticeHours,omitempty"`
	MaxFutureBookingDays   *int    `json:"maxFutureBookingDays,omitempty"` // 0 = без ограничений
	DefaultDurationMinutes *int    `json:"defaultDurationMinutes,omitempty"`
}

// ApplyToPolicy применяет обновления к политике
func (r *UpdatePolicyRequest) ApplyToPolicy(p *domain.PracticePolicy) {
	if r.Timezone != nil {
		p.Timezone = *r.Timezone
	}
	if r.MinNoticeHours != nil {
		p.MinNoticeHours = *r.MinNoticeHours
	}
	if r.MaxFutureBookingDays != nil {
		p.MaxFutureBookingDays = *r.MaxFutureBookingDays
	}
	if r.DefaultDurationMinutes != nil {
		p.DefaultDurationMinutes = *r.DefaultDurationMinutes
	}
}

// IsEmpty возвращает true, если в запросе нет ни одного поля
func (r *UpdatePolicyRequest) IsEmpty() bool {
	return r.Timezone == nil && r.MinNoticeHours == nil &&
		r.MaxFutureBookingDays == nil && r.DefaultDurationMinutes == nil
}

// PolicyResponse ответ с политикой практики
type PolicyResponse struct {
	PracticeID             int64      `json:"practiceId"`
	Timezone               string     `json:"timezone"`
	MinNoticeHours         int        `json:"minNoticeHours"`
	MaxFutureBookingDays   int        `json:"maxFutureBookingDays"`
	DefaultDurationMinutes int        `json:"defaultDurationMinutes"`
	IsDefault              bool       `json:"isDefault"` // политика не сохранена, действуют значения сервиса
	UpdatedAt              *time.Time `json:"updatedAt,omitempty"`
}

// FromDomainPolicy конвертирует domain модель в DTO
func FromDomainPolicy(p *domain.PracticePolicy, isDefault bool) *PolicyResponse {
	if p == nil {
		return nil
	}

	resp := &PolicyResponse{
		PracticeID:             p.PracticeID,
		Timezone:               p.Timezone,
		MinNoticeHours:         p.MinNoticeHours,
		MaxFutureBookingDays:   p.MaxFutureBookingDays,
		DefaultDurationMinutes: p.DefaultDurationMinutes,
		IsDefault:              isDefault,
	}
	if !isDefault && !p.UpdatedAt.IsZero() {
		updatedAt := p.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}

	return resp
}
