package check_availability

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/scheduling/conflict"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request предлагаемый приём
type Request struct {
	DoctorID        int64
	Date            time.Time
	StartTime       types.TimeString // не валидируется заранее, ошибка формата возвращается вердиктом
	DurationMinutes *int             // по умолчанию из политики практики
}

// Response вердикт по предлагаемому приёму
type Response struct {
	DoctorID                 int64
	Available                bool
	Reason                   conflict.Reason
	Violation                conflict.Violation
	ConflictingAppointmentID *int64
	DurationMinutes          int
	Timezone                 string
	StartsAt                 *time.Time // nil, если интервал не удалось построить
	EndsAt                   *time.Time
}
