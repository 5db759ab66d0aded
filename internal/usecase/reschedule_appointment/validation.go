package reschedule_appointment

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling/conflict"
)

func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if req.AppointmentID <= 0 {
		return fmt.Errorf("%w: appointment id is required", ErrInvalidInput)
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

// isRejection ошибки, которыми транзакция отклоняет перенос
func isRejection(err error) bool {
	for _, target := range []error{
		ErrAppointmentNotFound,
		ErrCannotReschedule,
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

func lockKey(doctorID int64, date time.Time) string {
	return fmt.Sprintf("doctor:%d:%s", doctorID, date.Format(domain.DateFormat))
}
