package policy

import "errors"

var (
	// ErrAccessDenied возвращается, когда пользователь не является врачом практики
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных значениях политики
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
