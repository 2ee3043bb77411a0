package services

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Error kinds, matched with errors.Is
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
	ErrTransport  = errors.New("transport failure")
)

// Error codes returned to API clients
const (
	CodeTechnicianNotFound = "TECHNICIAN_NOT_FOUND"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeSkillNotFound      = "SKILL_NOT_FOUND"
	CodeTechnicianExists   = "TECHNICIAN_EXISTS"
	CodeUserExists         = "USER_EXISTS"
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeSkillExists        = "SKILL_EXISTS"
	CodeSkillProtected     = "SKILL_PROTECTED"
	CodeVersionConflict    = "VERSION_CONFLICT"
	CodeUnknownSkill       = "UNKNOWN_SKILL"
	CodeInvalidGallery     = "INVALID_GALLERY"
	CodeTransportFailure   = "TRANSPORT_FAILURE"
)

// ServiceError is returned by the service layer. Kind is one of the Err*
// sentinels; Err, when set, is the underlying cause.
type ServiceError struct {
	Code    string
	Message string
	Kind    error
	Err     error
}

func (e *ServiceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ServiceError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func notFound(code, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message, Kind: ErrNotFound}
}

func conflict(code, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message, Kind: ErrConflict}
}

func invalid(code, message string) *ServiceError {
	return &ServiceError{Code: code, Message: message, Kind: ErrValidation}
}

func transport(message string, err error) *ServiceError {
	return &ServiceError{Code: CodeTransportFailure, Message: message, Kind: ErrTransport, Err: err}
}

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

// isUniqueViolation detects duplicate-key errors from PostgreSQL and SQLite
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
