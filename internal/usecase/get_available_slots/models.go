package get_available_slots

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Request модель запроса на получение свободных слотов
type Request struct {
	DoctorID        int64     // ID врача
	Date            time.Time // Дата (без времени), в часовом поясе практики
	DurationMinutes *int      // Длительность приёма, по умолчанию из политики практики
}

// Response модель ответа со списком свободных слотов
type Response struct {
	Date            time.Time // Дата, на которую запрашивались слоты
	DoctorID        int64     // ID врача
	Timezone        string    // Часовой пояс практики, в котором заданы StartTime
	DurationMinutes int       // Длительность, с которой считались слоты
	Slots           []Slot    // Свободные слоты по возрастанию времени
}

// Slot модель свободного слота
type Slot struct {
	StartTime       types.TimeString // Время начала (например, "10:00")
	DurationMinutes int              // Длительность в минутах
	StartsAt        time.Time        // Абсолютное время начала
	EndsAt          time.Time        // Абсолютное время окончания
}
