// Package pgerr распознаёт коды ошибок PostgreSQL, которые репозитории переводят в доменные ошибки.
package pgerr

import (
	"errors"

	"github.com/lib/pq"
)

const (
	CodeForeignKeyViolation = "23503"
	CodeExclusionViolation  = "23P01"
)

// Code возвращает SQLSTATE ошибки pq или пустую строку
func Code(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

func IsForeignKeyViolation(err error) bool {
	return Code(err) == CodeForeignKeyViolation
}

// IsExclusionViolation пересечение интервалов, запрещённое EXCLUDE USING gist
func IsExclusionViolation(err error) bool {
	return Code(err) == CodeExclusionViolation
}
