// Package apperr defines the error taxonomy: domain/validation errors carry
// an HTTP status hint and a caller-safe message, store connectivity errors
// classify as critical with their detail withheld from the response, and
// everything else maps to a generic internal error.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"adminportal/internal/model"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Error is a domain error with an HTTP status hint. The Message is safe to
// return to the caller; Err keeps the underlying cause for logging.
type Error struct {
	Status  int
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func NotFound(msg string) *Error {
	return &Error{Status: http.StatusNotFound, Message: msg}
}

func Invalid(msg string) *Error {
	return &Error{Status: http.StatusBadRequest, Message: msg}
}

func Conflict(msg string) *Error {
	return &Error{Status: http.StatusConflict, Message: msg}
}

func Unauthorized(msg string) *Error {
	return &Error{Status: http.StatusUnauthorized, Message: msg}
}

func Forbidden(msg string) *Error {
	return &Error{Status: http.StatusForbidden, Message: msg}
}

func Internal(msg string, err error) *Error {
	return &Error{Status: http.StatusInternalServerError, Message: msg, Err: err}
}

// connectivityMessage is the only text ever returned to a caller for a store
// connectivity failure; the real error goes to the audit log.
const connectivityMessage = "a connectivity error occurred"

// Classify maps an arbitrary error to an HTTP status, a caller-safe message
// and an audit severity.
func Classify(err error) (status int, message string, severity model.Severity) {
	var de *Error
	if errors.As(err, &de) {
		sev := model.SeverityWarning
		if de.Status >= http.StatusInternalServerError {
			sev = model.SeverityError
		}
		return de.Status, de.Message, sev
	}

	if isConnectivity(err) {
		return http.StatusInternalServerError, connectivityMessage, model.SeverityCritical
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return http.StatusNotFound, "resource not found", model.SeverityWarning
	}

	return http.StatusInternalServerError, "an unexpected error occurred", model.SeverityError
}

// isConnectivity reports whether the error looks like a store
// connectivity/timeout failure rather than a data problem.
func isConnectivity(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && len(pgErr.Code) >= 2 {
		// Class 08 is connection exceptions, 57 operator intervention
		// (shutdown), 53 insufficient resources.
		switch pgErr.Code[:2] {
		case "08", "57", "53":
			return true
		}
	}
	return false
}
