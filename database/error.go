package database

import (
	"regexp"

	"github.com/lib/pq"
	"github.com/pkg/errors"
)

const (
	ErrorCodeUnknown         = "HY000"
	ErrorCodeUniqueViolation = "23000"
	ErrorCodeValueTooLong    = "22001"
)

// WBDatabaseError is the driver-normalized error surfaced by the connection.
type WBDatabaseError struct {
	Code    string
	Message string
}

func (e *WBDatabaseError) Error() string {
	return e.Code + ": " + e.Message
}

var (
	uniqueViolationPattern = regexp.MustCompile(`(?i)(unique)(.*)(violat)`)
	valueTooLongPattern    = regexp.MustCompile(`(?i)(value)(.*)(too)(.*)(l(?:arge|ong))`)
)

// NormalizeError maps a driver error to a stable code plus message. Generic
// codes are reclassified by best-effort matching on the message text; the
// result is informational, not authoritative.
func NormalizeError(err error) *WBDatabaseError {
	if err == nil {
		return nil
	}

	code := ErrorCodeUnknown
	message := err.Error()

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code = string(pqErr.Code)
		message = pqErr.Message
		if pqErr.Detail != "" {
			message = message + " (" + pqErr.Detail + ")"
		}
	}

	if code == ErrorCodeUnknown {
		switch {
		case uniqueViolationPattern.MatchString(message):
			code = ErrorCodeUniqueViolation
		case valueTooLongPattern.MatchString(message):
			code = ErrorCodeValueTooLong
		}
	}

	return &WBDatabaseError{Code: code, Message: message}
}

func (e *WBDatabaseError) IsUniqueViolation() bool {
	return e != nil && (e.Code == ErrorCodeUniqueViolation || e.Code == "23505")
}

func (e *WBDatabaseError) IsValueTooLong() bool {
	return e != nil && e.Code == ErrorCodeValueTooLong
}
