package create_appointment

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling/conflict"
)

// validateRequest проверяет поля, которые не касаются расписания
// Дату, время и длительность проверяет conflict.CheckAvailability
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if req.DoctorID <= 0 {
		return fmt.Errorf("%w: doctor id is required", ErrInvalidInput)
	}
	if req.PatientID != nil && *req.PatientID <= 0 {
		return fmt.Errorf("%w: patient id must be positive", ErrInvalidInput)
	}
	if req.Reason != nil && len(*req.Reason) > domain.MaxReasonLength {
		return fmt.Errorf("%w: reason exceeds %d characters", ErrInvalidInput, domain.MaxReasonLength)
	}
	if req.Notes != nil && len(*req.Notes) > domain.MaxNotesLength {
		return fmt.Errorf("%w: notes exceed %d characters", ErrInvalidInput, domain.MaxNotesLength)
	}
	return nil
}

// verdictError переводит отрицательный вердикт в ошибку usecase
func verdictError(v conflict.Verdict) error {
	switch v.Reason {
	case conflict.ReasonInvalidRequest:
		switch v.Violation {
		case conflict.ViolationTooSoon:
			return ErrTooSoon
		case conflict.ViolationTooFarInFuture:
			return ErrTooFarInFuture
		default:
			return fmt.Errorf("%w: %s", ErrInvalidRequest, v.Violation)
		}
	case conflict.ReasonDuringVacation:
		return ErrDuringVacation
	case conflict.ReasonOutsideWorkingHours:
		return ErrOutsideWorkingHours
	case conflict.ReasonOverlapsExistingAppointment:
		return fmt.Errorf("%w: overlaps appointment id=%d", ErrSlotNotAvailable, v.ConflictingAppointmentID)
	default:
		return fmt.Errorf("%w: unexpected verdict %s", ErrInternal, v)
	}
}

// lockKey ключ блокировки записи к врачу на дату
func lockKey(doctorID int64, date time.Time) string {
	return fmt.Sprintf("doctor:%d:%s", doctorID, date.Format(domain.DateFormat))
}

// isRejection ошибки, которыми транзакция отклоняет запись по бизнес-правилам
func isRejection(err error) bool {
	for _, target := range []error{
		ErrInvalidRequest,
		ErrTooSoon,
		ErrTooFarInFuture,
		ErrDuringVacation,
		ErrOutsideWorkingHours,
		ErrSlotNotAvailable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
