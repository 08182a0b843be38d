package apierr

import "net/http"

// Error is a domain error that maps onto an HTTP status and a
// {success:false, message} response body.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// New creates an Error with an explicit status and code.
func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

// Constructors for the error taxonomy. Handlers never build raw
// statuses themselves.

func Validation(message string) *Error {
	return New(http.StatusBadRequest, "VALIDATION_ERROR", message)
}

func Conflict(message string) *Error {
	return New(http.StatusConflict, "CONFLICT", message)
}

func Auth(message string) *Error {
	return New(http.StatusUnauthorized, "AUTH_ERROR", message)
}

func NotFound(message string) *Error {
	return New(http.StatusNotFound, "NOT_FOUND", message)
}

func InvalidOTP(message string) *Error {
	return New(http.StatusBadRequest, "INVALID_OTP", message)
}

func ExpiredOTP(message string) *Error {
	return New(http.StatusBadRequest, "EXPIRED_OTP", message)
}

func AlreadyVerified(message string) *Error {
	return New(http.StatusConflict, "ALREADY_VERIFIED", message)
}

func Internal(message string) *Error {
	return New(http.StatusInternalServerError, "INTERNAL_ERROR", message)
}
