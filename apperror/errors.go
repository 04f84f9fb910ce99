// Package apperror provides a structured error taxonomy for the
// cyclic-executive scheduling core, together with a conversion to gRPC
// status codes for callers that expose the core over a transport.
package apperror

import (
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Code identifies the kind of failure, not an exception type. All codes
// are terminal for the current solver invocation; none are retried
// internally.
type Code string

const (
	// CodeInfeasibleFrameSize: no frame size f >= 2 satisfies the three
	// validity rules against every task. Raised by geometry.
	CodeInfeasibleFrameSize Code = "INFEASIBLE_FRAME_SIZE"

	// CodeInfeasibleAssignment: no valid job->frame assignment exists.
	// Raised by either solver.
	CodeInfeasibleAssignment Code = "INFEASIBLE_ASSIGNMENT"

	// CodeInvalidSchedule: the builder detected that placing a job would
	// overrun its frame boundary.
	CodeInvalidSchedule Code = "INVALID_SCHEDULE"

	// CodeInvalidInput: task records violate the model (non-positive
	// period, wcet > period, duplicate task id, ...).
	CodeInvalidInput Code = "INVALID_INPUT"

	// CodeStoreUnavailable: the result store's backing database could not
	// be reached or a query against it failed.
	CodeStoreUnavailable Code = "STORE_UNAVAILABLE"
)

// Severity indicates how critical the error is to the caller.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "error"
	}
}

// Error is the structured error type returned across package boundaries in
// this module. Field and Details are optional context for the caller.
type Error struct {
	Code     Code
	Message  string
	Field    string
	Details  map[string]any
	Cause    error
	Severity Severity
}

func (e *Error) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("[%s] %s (field: %s)", e.Code, e.Message, e.Field)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is(err, apperror.New(Code, "")) style comparisons based
// purely on Code, ignoring Message/Details.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// New builds an Error with SeverityError and no details.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message, Severity: SeverityError}
}

// Newf builds an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Severity: SeverityError}
}

// Wrap builds an Error carrying cause as the wrapped error.
func Wrap(code Code, cause error, message string) *Error {
	return &Error{Code: code, Message: message, Cause: cause, Severity: SeverityError}
}

// WithField returns a copy of e with Field set.
func (e *Error) WithField(field string) *Error {
	cp := *e
	cp.Field = field
	return &cp
}

// WithDetail returns a copy of e with the given detail key/value merged in.
func (e *Error) WithDetail(key string, value any) *Error {
	cp := *e
	cp.Details = make(map[string]any, len(e.Details)+1)
	for k, v := range e.Details {
		cp.Details[k] = v
	}
	cp.Details[key] = value
	return &cp
}

// codeToGRPC maps each application error code to a gRPC status code, for
// callers that expose the solver core over gRPC; nothing in this module
// binds a network port itself.
var codeToGRPC = map[Code]codes.Code{
	CodeInfeasibleFrameSize:  codes.FailedPrecondition,
	CodeInfeasibleAssignment: codes.FailedPrecondition,
	CodeInvalidSchedule:      codes.Internal,
	CodeInvalidInput:         codes.InvalidArgument,
	CodeStoreUnavailable:     codes.Unavailable,
}

// ToGRPCStatus converts an *Error (or a generic error) into a *status.Status.
// Unrecognized errors map to codes.Unknown.
func ToGRPCStatus(err error) *status.Status {
	if err == nil {
		return status.New(codes.OK, "")
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		code, ok := codeToGRPC[appErr.Code]
		if !ok {
			code = codes.Internal
		}
		st := status.New(code, appErr.Message)
		return st
	}
	return status.New(codes.Unknown, err.Error())
}

// FromGRPCStatus is the inverse of ToGRPCStatus for status codes this
// package produced; the round trip keeps Message but loses Field/Details/
// Cause, which are not part of the wire status message. FailedPrecondition covers both infeasibility
// codes on the wire, so it maps back to CodeInfeasibleAssignment.
func FromGRPCStatus(st *status.Status) *Error {
	switch st.Code() {
	case codes.FailedPrecondition:
		return New(CodeInfeasibleAssignment, st.Message())
	case codes.Internal:
		return New(CodeInvalidSchedule, st.Message())
	case codes.InvalidArgument:
		return New(CodeInvalidInput, st.Message())
	case codes.Unavailable:
		return New(CodeStoreUnavailable, st.Message())
	default:
		return New(CodeInvalidInput, st.Message())
	}
}
