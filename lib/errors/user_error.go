package errors

import "fmt"

// UserError is the interface an error has to comply to to be consumable by an
// external client. The status is the HTTP status to respond with, the code a
// stable machine-readable reason.
type UserError interface {
	Status() int
	Code() string
	Message() string
	Cause() error
}

// NewUserError creates a new error with the given status, code and message
// attached, marking it as consumable.
func NewUserError(
	err error,
	status int,
	code string,
	message string,
) error {
	e := &wrap{
		errStatus:  status,
		errCode:    code,
		errMessage: message,
		previous:   err,
	}
	e.setLocation(1)
	return e
}

// NewUserErrorf creates a new error with the given status, code and formatted
// message attached, marking it as consumable.
func NewUserErrorf(
	err error,
	status int,
	code string,
	format string,
	args ...interface{},
) error {
	e := &wrap{
		errStatus:  status,
		errCode:    code,
		errMessage: fmt.Sprintf(format, args...),
		previous:   err,
	}
	e.setLocation(1)
	return e
}

// ExtractUserError returns the UserError attached to this error if any.
func ExtractUserError(err error) UserError {
	if e, ok := err.(*wrap); ok && e.Status() != 0 {
		return e
	}
	return nil
}

// ConcreteUserError is the materialization of a UserError for marshalling.
type ConcreteUserError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Build constructs a ConcreteUserError from a UserError.
func Build(err UserError) *ConcreteUserError {
	return &ConcreteUserError{
		Status:  err.Status(),
		Code:    err.Code(),
		Message: err.Message(),
	}
}
