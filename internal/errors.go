package internal

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoHeartRate marks a night without a usable heart-rate series. It is a
// gap in the data, never a reason to stop.
var ErrNoHeartRate = errors.New("no heart rate series")

// AuthError means the API rejected us and a token refresh could not fix it.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth: %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error { return e.Err }

// TransportError covers network failures and non-2xx responses other than 401.
// StatusCode is 0 when no response was received.
type TransportError struct {
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("transport: %s: %v", e.Op, e.Err)
	}
	if e.Body != "" {
		return fmt.Sprintf("transport: %s: status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("transport: %s: status %d", e.Op, e.StatusCode)
}

func (e *TransportError) Unwrap() error { return e.Err }

type MissingCredentialsError struct {
	Fields []string
}

func (e *MissingCredentialsError) Error() string {
	return fmt.Sprintf("missing required credentials: [ %s ]", strings.Join(e.Fields, ", "))
}

type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *AppError) Error() string { return e.Message }

func NewAppError(code int, msg string) *AppError {
	return &AppError{Code: code, Message: msg}
}
