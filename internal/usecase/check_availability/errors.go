package check_availability

import "errors"

var (
	ErrDoctorNotFound = errors.New("check_availability: doctor not found")
	ErrInvalidInput   = errors.New("check_availability: invalid input data")
	ErrInternal       = errors.New("check_availability: internal error")
)
