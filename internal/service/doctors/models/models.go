package models

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var (
	// ErrInvalidWeekday возвращается при неизвестном дне недели
	ErrInvalidWeekday = errors.New("invalid weekday")

	// ErrInvalidTime возвращается при некорректном времени окна
	ErrInvalidTime = errors.New("invalid window time")

	// ErrInvalidDate возвращается при некорректной дате отпуска
	ErrInvalidDate = errors.New("invalid date")
)

// Request модели

// WindowDTO окно приёма в пределах дня
type WindowDTO struct {
	Start       string `json:"start"` // "09:00"
	End         string `json:"end"`   // "13:00"
	IsAvailable bool   `json:"isAvailable"`
}

// ReplaceAvailabilityRequest полная замена недельного расписания врача
// Ключ - день недели в нижнем регистре ("monday"), отсутствующий день - выходной
type ReplaceAvailabilityRequest struct {
	UserID   int64                  `json:"-"`
	DoctorID int64                  `json:"-"`
	Weekly   map[string][]WindowDTO `json:"weekly"`
}

// ToDomainWeekly конвертирует запрос в domain модель
func (r *ReplaceAvailabilityRequest) ToDomainWeekly() (domain.WeeklyAvailability, error) {
	weekly := make(domain.WeeklyAvailability, len(r.Weekly))

	for name, windows := range r.Weekly {
		day, err := ParseWeekday(name)
		if err != nil {
			return nil, err
		}

		converted := make([]domain.TimeWindow, 0, len(windows))
		for _, w := range windows {
			start, err := types.NewTimeStringFromString(w.Start)
			if err != nil {
				return nil, fmt.Errorf("%w: %s start %q", ErrInvalidTime, name, w.Start)
			}
			end, err := types.NewEndTimeStringFromString(w.End)
			if err != nil {
				return nil, fmt.Errorf("%w: %s end %q", ErrInvalidTime, name, w.End)
			}
			converted = append(converted, domain.TimeWindow{Start: start, End: end, IsAvailable: w.IsAvailable})
		}
		if len(converted) > 0 {
			weekly[day] = converted
		}
	}

	return weekly, nil
}

// CreateVacationRequest запрос на добавление отпуска
type CreateVacationRequest struct {
	UserID    int64  `json:"-"`
	DoctorID  int64  `json:"-"`
	StartDate string `json:"startDate"` // "2026-07-01"
	EndDate   string `json:"endDate"`   // включительно
	Reason    string `json:"reason,omitempty"`
}

// ToDomainVacation конвертирует запрос в domain модель
func (r *CreateVacationRequest) ToDomainVacation() (*domain.VacationPeriod, error) {
	start, err := time.Parse(domain.DateFormat, r.StartDate)
	if err != nil {
		return nil, fmt.Errorf("%w: startDate %q", ErrInvalidDate, r.StartDate)
	}
	end, err := time.Parse(domain.DateFormat, r.EndDate)
	if err != nil {
		return nil, fmt.Errorf("%w: endDate %q", ErrInvalidDate, r.EndDate)
	}

	return &domain.VacationPeriod{
		DoctorID:  r.DoctorID,
		StartDate: start,
		EndDate:   end,
		Reason:    strings.TrimSpace(r.Reason),
	}, nil
}

// Response модели

// DayScheduleDTO окна одного дня недели
type DayScheduleDTO struct {
	Weekday string      `json:"weekday"`
	Windows []WindowDTO `json:"windows"`
}

// VacationResponse отпуск врача
type VacationResponse struct {
	ID        int64     `json:"id"`
	DoctorID  int64     `json:"doctorId"`
	StartDate string    `json:"startDate"`
	EndDate   string    `json:"endDate"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ScheduleResponse недельное расписание и отпуска врача
type ScheduleResponse struct {
	DoctorID  int64              `json:"doctorId"`
	FullName  string             `json:"fullName"`
	Specialty *string            `json:"specialty,omitempty"`
	Weekly    []DayScheduleDTO   `json:"weekly"`
	Vacations []VacationResponse `json:"vacations"`
}

// Методы конвертации

// FromDomainSchedule конвертирует расписание в DTO, дни идут с понедельника
func FromDomainSchedule(doctor *domain.Doctor, schedule domain.DoctorSchedule) *ScheduleResponse {
	resp := &ScheduleResponse{
		DoctorID:  doctor.ID,
		FullName:  doctor.FullName,
		Specialty: doctor.Specialty,
		Weekly:    make([]DayScheduleDTO, 0, len(schedule.Weekly)),
		Vacations: make([]VacationResponse, 0, len(schedule.Vacations)),
	}

	days := make([]time.Weekday, 0, len(schedule.Weekly))
	for day := range schedule.Weekly {
		days = append(days, day)
	}
	sort.Slice(days, func(i, j int) bool { return mondayFirst(days[i]) < mondayFirst(days[j]) })

	for _, day := range days {
		windows := schedule.Weekly[day]
		dto := DayScheduleDTO{Weekday: FormatWeekday(day), Windows: make([]WindowDTO, 0, len(windows))}
		for _, w := range windows {
			dto.Windows = append(dto.Windows, WindowDTO{
				Start:       w.Start.String(),
				End:         w.End.String(),
				IsAvailable: w.IsAvailable,
			})
		}
		resp.Weekly = append(resp.Weekly, dto)
	}

	for i := range schedule.Vacations {
		resp.Vacations = append(resp.Vacations, *FromDomainVacation(&schedule.Vacations[i]))
	}

	return resp
}

// FromDomainVacation конвертирует отпуск в DTO
func FromDomainVacation(v *domain.VacationPeriod) *VacationResponse {
	return &VacationResponse{
		ID:        v.ID,
		DoctorID:  v.DoctorID,
		StartDate: v.StartDate.Format(domain.DateFormat),
		EndDate:   v.EndDate.Format(domain.DateFormat),
		Reason:    v.Reason,
		CreatedAt: v.CreatedAt,
	}
}

// ParseWeekday разбирает название дня недели ("monday", "Mon")
func ParseWeekday(s string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for day := time.Sunday; day <= time.Saturday; day++ {
		full := strings.ToLower(day.String())
		if name == full || name == full[:3] {
			return day, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidWeekday, s)
}

// FormatWeekday название дня недели в нижнем регистре
func FormatWeekday(day time.Weekday) string {
	return strings.ToLower(day.String())
}

func mondayFirst(day time.Weekday) int {
	return (int(day) + 6) % 7
}
