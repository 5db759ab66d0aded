package get_doctor_appointments

import (
	"fmt"
	"strconv"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/appointments/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
// date задаёт один день, startDate/endDate задают период; date имеет приоритет
func ToServiceRequest(
	doctorID int64,
	userID int64,
	dateStr string,
	startDateStr string,
	endDateStr string,
	statusStr string,
	includeInactiveStr string,
) (*models.GetDoctorAppointmentsRequest, error) {
	req := &models.GetDoctorAppointmentsRequest{
		UserID:          userID,
		DoctorID:        doctorID,
		IncludeInactive: false, // По умолчанию только действующие
	}

	if dateStr != "" {
		date, err := time.Parse(domain.DateFormat, dateStr)
		if err != nil {
			return nil, fmt.Errorf("invalid date: %w", err)
		}
		req.StartDate = &date
		req.EndDate = &date
	} else {
		if startDateStr != "" {
			start, err := time.Parse(domain.DateFormat, startDateStr)
			if err != nil {
				return nil, fmt.Errorf("invalid startDate: %w", err)
			}
			req.StartDate = &start
		}
		if endDateStr != "" {
			end, err := time.Parse(domain.DateFormat, endDateStr)
			if err != nil {
				return nil, fmt.Errorf("invalid endDate: %w", err)
			}
			req.EndDate = &end
		}
	}

	if statusStr != "" {
		req.Status = &statusStr
	}

	if includeInactiveStr != "" {
		includeInactive, err := strconv.ParseBool(includeInactiveStr)
		if err != nil {
			return nil, fmt.Errorf("invalid includeInactive value: %w", err)
		}
		req.IncludeInactive = includeInactive
	}

	return req, nil
}
