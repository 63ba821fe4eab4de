package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusTokenExpired is the non-standard HTTP status used to signal an
// invalid or expired refresh token so clients can force a fresh login.
const StatusTokenExpired = 498

// AppError provides a structured error that can be rendered to API consumers.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

func (e *AppError) Error() string {
	if e == nil {
		return "<nil>"
	}

	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}

	return e.Message
}

// Unwrap exposes the internal error for errors.Is / errors.As compatibility.
func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Internal
}

// WithInternal returns a copy of the AppError with an attached internal error.
func (e *AppError) WithInternal(err error) *AppError {
	if e == nil {
		return nil
	}

	cpy := *e
	cpy.Internal = err
	return &cpy
}

// Common errors exposed to the rest of the application.
var (
	ErrBadCredentials = &AppError{
		Code:       "BAD_CREDENTIALS",
		Message:    "Bad credentials",
		StatusCode: http.StatusBadRequest,
	}

	ErrAccountMissing = &AppError{
		Code:       "ACCOUNT_MISSING",
		Message:    "Account doesn't exist, please create a new account",
		StatusCode: http.StatusBadRequest,
	}

	ErrAccountExists = &AppError{
		Code:       "ACCOUNT_EXISTS",
		Message:    "User already exists with this email address",
		StatusCode: http.StatusBadRequest,
	}

	ErrOTPIncorrect = &AppError{
		Code:       "OTP_INCORRECT",
		Message:    "Please check your OTP, entered details are incorrect",
		StatusCode: http.StatusBadRequest,
	}

	ErrRefreshTokenInvalid = &AppError{
		Code:       "REFRESH_TOKEN_INVALID",
		Message:    "Bad credentials",
		StatusCode: StatusTokenExpired,
	}

	ErrUnauthorized = &AppError{
		Code:       "UNAUTHORIZED",
		Message:    "Authentication required",
		StatusCode: http.StatusUnauthorized,
	}

	ErrForbidden = &AppError{
		Code:       "FORBIDDEN",
		Message:    "Permission denied",
		StatusCode: http.StatusForbidden,
	}

	ErrNotFound = &AppError{
		Code:       "NOT_FOUND",
		Message:    "Resource not found",
		StatusCode: http.StatusNotFound,
	}

	ErrBadRequest = &AppError{
		Code:       "BAD_REQUEST",
		Message:    "Invalid request",
		StatusCode: http.StatusBadRequest,
	}

	ErrInternalServer = &AppError{
		Code:       "INTERNAL_SERVER_ERROR",
		Message:    "Internal server error",
		StatusCode: http.StatusInternalServerError,
	}

	ErrRateLimit = &AppError{
		Code:       "RATE_LIMIT_EXCEEDED",
		Message:    "Too many requests, please slow down",
		StatusCode: http.StatusTooManyRequests,
	}
)

// New builds a new application error with the provided metadata.
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap turns any error into an AppError while keeping the original error for logging.
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   err,
	}
}

// FromError converts a generic error into an AppError, defaulting to ErrInternalServer.
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	return ErrInternalServer.WithInternal(err)
}

// NewBadRequest wraps validation errors with a helpful message.
func NewBadRequest(message string) *AppError {
	return &AppError{
		Code:       ErrBadRequest.Code,
		Message:    message,
		StatusCode: ErrBadRequest.StatusCode,
	}
}

// NewCooldown reports that an OTP was requested before the previous request's
// throttle window elapsed, carrying the remaining seconds in the message.
func NewCooldown(secondsRemaining int) *AppError {
	return &AppError{
		Code:       "OTP_COOLDOWN",
		Message:    fmt.Sprintf("Please send the otp request after %d seconds", secondsRemaining),
		StatusCode: http.StatusBadRequest,
	}
}

// IsCooldown reports whether the error is an OTP cooldown rejection.
func IsCooldown(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == "OTP_COOLDOWN"
	}
	return false
}
