package scheduling

import (
	"errors"
	"fmt"
)

// Engine error codes. All I/O failures are converted to one of these at the
// component boundary before reaching the dialogue state machine.
const (
	CodeCalendarUnavailable = "calendarUnavailable"
	CodeOracleUnavailable   = "oracleUnavailable"
	CodeBookingConflict     = "bookingConflict"
	CodeBookingFailed       = "bookingFailed"
	CodeSessionExpired      = "sessionExpired"
)

type EngineError struct {
	Code    string
	Message string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewCalendarUnavailableError(msg string) error {
	return &EngineError{Code: CodeCalendarUnavailable, Message: msg}
}

func NewOracleUnavailableError(msg string) error {
	return &EngineError{Code: CodeOracleUnavailable, Message: msg}
}

func NewBookingConflictError(msg string) error {
	return &EngineError{Code: CodeBookingConflict, Message: msg}
}

func NewBookingFailedError(msg string) error {
	return &EngineError{Code: CodeBookingFailed, Message: msg}
}

func NewSessionExpiredError(msg string) error {
	return &EngineError{Code: CodeSessionExpired, Message: msg}
}

// HasCode reports whether err carries the given engine code.
func HasCode(err error, code string) bool {
	var ee *EngineError
	return errors.As(err, &ee) && ee.Code == code
}
