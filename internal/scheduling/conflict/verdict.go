package conflict

import "github.com/m04kA/SMC-AppointmentService/internal/scheduling/interval"

// Reason explains why a request is not bookable
type Reason string

const (
	ReasonInvalidRequest              Reason = "INVALID_REQUEST"
	ReasonOutsideWorkingHours         Reason = "OUTSIDE_WORKING_HOURS"
	ReasonDuringVacation              Reason = "DURING_VACATION"
	ReasonOverlapsExistingAppointment Reason = "OVERLAPS_EXISTING_APPOINTMENT"
)

// Violation refines ReasonInvalidRequest
type Violation string

const (
	ViolationInvalidDate     Violation = "invalid_date"
	ViolationMalformedTime   Violation = "malformed_time"
	ViolationNonexistentTime Violation = "nonexistent_local_time"
	ViolationInvalidDuration Violation = "invalid_duration"
	ViolationTooSoon         Violation = "too_soon"
	ViolationTooFarInFuture  Violation = "too_far_in_future"
)

// Verdict is the outcome of CheckAvailability
type Verdict struct {
	Available bool
	Reason    Reason    // empty when Available
	Violation Violation // set only for ReasonInvalidRequest

	// ConflictingAppointmentID is set for ReasonOverlapsExistingAppointment
	ConflictingAppointmentID int64

	// Interval is the candidate, zero when the request could not be parsed
	Interval interval.Interval
}

// Available builds a positive verdict
func Available(candidate interval.Interval) Verdict {
	return Verdict{Available: true, Interval: candidate}
}

// Rejected builds a negative verdict
func Rejected(reason Reason, violation Violation) Verdict {
	return Verdict{Reason: reason, Violation: violation}
}

func (v Verdict) withInterval(candidate interval.Interval) Verdict {
	v.Interval = candidate
	return v
}

func (v Verdict) String() string {
	if v.Available {
		return "AVAILABLE"
	}
	if v.Violation != "" {
		return string(v.Reason) + "(" + string(v.Violation) + ")"
	}
	return string(v.Reason)
}
