package apperror

import (
	"errors"
	"net/http"

	"cv-screening-backend/internal/domain"
)

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func BadRequest(message string) *AppError {
	return New(http.StatusBadRequest, message, nil)
}

func Unauthorized(message string) *AppError {
	return New(http.StatusUnauthorized, message, nil)
}

func TooLarge(message string) *AppError {
	return New(http.StatusRequestEntityTooLarge, message, nil)
}

func Internal(err error) *AppError {
	return New(http.StatusInternalServerError, "Internal Server Error", err)
}

// FromDomain maps screening error kinds onto HTTP errors. Errors that already
// are an *AppError pass through; anything unknown becomes a 500.
func FromDomain(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return New(http.StatusBadRequest, verr.Error(), err)
	case errors.Is(err, domain.ErrValidation):
		return New(http.StatusBadRequest, "Invalid request", err)
	case errors.Is(err, domain.ErrNotFound):
		return New(http.StatusNotFound, "CV not found", err)
	case errors.Is(err, domain.ErrDocumentDecoding):
		return New(http.StatusBadRequest, "Document could not be decoded", err)
	default:
		return Internal(err)
	}
}
