// Package apierr turns raw transport failures into the small, stable error
// taxonomy shown to users. DomainError values are only built by Classify.
//
// Callers check the class with errors.Is(err, apierr.ErrRateLimit) etc., or
// errors.As(err, &domainErr) to read the message and status.
package apierr

import (
	"errors"
	"net/http"
)

type Code string

const (
	CodeNetwork   Code = "NETWORK"
	CodeRateLimit Code = "RATE_LIMIT"
	CodeNotFound  Code = "NOT_FOUND"
)

// Sentinel errors matched by DomainError.Is.
var (
	ErrNetwork   = errors.New("network error")
	ErrRateLimit = errors.New("rate limit reached")
	ErrNotFound  = errors.New("resource not found")
)

// User-facing messages.
const (
	MsgRateLimit    = "Límite de solicitudes alcanzado"
	MsgUnreachable  = "No se pudo conectar con el servidor"
	MsgHostNotFound = "Servidor no encontrado"
	MsgTimeout      = "La solicitud tardó demasiado tiempo"
	MsgNotFound     = "Recurso no encontrado"
	MsgServerError  = "Error interno del servidor"
	MsgUnknown      = "Error desconocido"
)

// DomainError is the classified failure returned to callers.
type DomainError struct {
	Message    string
	Code       Code
	StatusCode int

	cause error
}

func newDomainError(code Code, msg string, cause error) *DomainError {
	return &DomainError{
		Message:    msg,
		Code:       code,
		StatusCode: statusFor(code),
		cause:      cause,
	}
}

// statusFor fixes the status of each class: NetworkError(500),
// RateLimitError(429), NotFoundError(404).
func statusFor(code Code) int {
	switch code {
	case CodeRateLimit:
		return http.StatusTooManyRequests
	case CodeNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (e *DomainError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// Unwrap exposes the raw failure for debugging.
func (e *DomainError) Unwrap() error { return e.cause }

func (e *DomainError) Is(target error) bool {
	switch target {
	case ErrNetwork:
		return e.Code == CodeNetwork
	case ErrRateLimit:
		return e.Code == CodeRateLimit
	case ErrNotFound:
		return e.Code == CodeNotFound
	}
	return false
}
