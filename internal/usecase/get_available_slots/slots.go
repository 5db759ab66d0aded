package get_available_slots

import (
	"fmt"
	"sort"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling/conflict"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling/interval"
)

// generateSlots перебирает доступные окна врача на дату с шагом durationMinutes
// и оставляет только те начала, которые проходят conflict.CheckAvailability
//
// Примеры (окно 09:00-11:00, длительность 30):
// - кандидаты 09:00, 09:30, 10:00, 10:30
// - приём 10:00-10:30 убирает только 10:00, соседние слоты граничат с ним и остаются
// - кандидат 10:45 при длительности 30 не рассматривается, шаг идёт от начала окна
//
// Шаг идёт по абсолютному времени, поэтому в день перевода часов число слотов в окне
// совпадает с его реальной длительностью.
func generateSlots(
	doctorID int64,
	date time.Time,
	durationMinutes int,
	schedule domain.DoctorSchedule,
	existing []conflict.ExistingAppointment,
	policy conflict.Policy,
	now time.Time,
) ([]Slot, error) {
	slots := make([]Slot, 0)
	seen := make(map[int64]struct{})
	step := time.Duration(durationMinutes) * time.Minute

	for _, window := range schedule.Weekly.Windows(date.Weekday()) {
		if !window.IsAvailable {
			continue
		}

		bounds, err := interval.WindowOn(date, window, policy.Location)
		if err != nil {
			return nil, fmt.Errorf("window %s-%s: %w", window.Start, window.End, err)
		}

		for start := bounds.Start(); !start.Add(step).After(bounds.End()); start = start.Add(step) {
			candidate, err := interval.New(start, start.Add(step))
			if err != nil {
				return nil, err
			}

			req := conflict.Request{
				DoctorID:        doctorID,
				Date:            date,
				StartTime:       candidate.StartClock(),
				DurationMinutes: durationMinutes,
			}

			verdict, err := conflict.CheckAvailability(req, schedule, existing, policy, now)
			if err != nil {
				return nil, err
			}
			if !verdict.Available {
				continue
			}
			// повторяющийся при переводе часов назад час адресуется только первым вхождением
			if !verdict.Interval.Start().Equal(candidate.Start()) {
				continue
			}
			if _, dup := seen[candidate.Start().Unix()]; dup {
				continue
			}
			seen[candidate.Start().Unix()] = struct{}{}

			slots = append(slots, Slot{
				StartTime:       req.StartTime,
				DurationMinutes: durationMinutes,
				StartsAt:        verdict.Interval.Start(),
				EndsAt:          verdict.Interval.End(),
			})
		}
	}

	sort.Slice(slots, func(i, j int) bool {
		return slots[i].StartsAt.Before(slots[j].StartsAt)
	})

	return slots, nil
}
