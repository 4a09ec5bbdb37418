package estimator

import "errors"

var (
	// ErrInvalidInput is wrapped by every *Error rejecting the request shape.
	ErrInvalidInput = errors.New("invalid trip input")
	// ErrAPIFailure is wrapped by every *Error caused by the base fare provider.
	ErrAPIFailure = errors.New("fare api failure")
)

// Reasons carried by InvalidInput errors. Callers may compare against these.
const (
	ReasonStartCity   = "Start city is invalid"
	ReasonDestination = "Destination city is invalid"
	ReasonDate        = "Date is invalid"
	ReasonAge         = "Age is invalid"
)

const (
	CodeInvalidInput = "INVALID_TRIP_INPUT"
	CodeAPIFailure   = "FARE_API_FAILURE"
)

// Error is an application-layer error that can be mapped to an HTTP response.
type Error struct {
	Status  int
	Code    string
	Message string
	Details map[string]any

	kind  error
	cause error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Message != "" {
		return e.Message
	}
	return e.Code
}

func (e *Error) Unwrap() []error {
	if e == nil {
		return nil
	}
	out := make([]error, 0, 2)
	if e.kind != nil {
		out = append(out, e.kind)
	}
	if e.cause != nil {
		out = append(out, e.cause)
	}
	return out
}

// Reason returns the fixed reason of an InvalidInput error.
func Reason(err error) (string, bool) {
	var ae *Error
	if !errors.As(err, &ae) || !errors.Is(ae.kind, ErrInvalidInput) {
		return "", false
	}
	return ae.Message, true
}

func invalidInput(reason string, details map[string]any) *Error {
	return &Error{Status: 422, Code: CodeInvalidInput, Message: reason, Details: details, kind: ErrInvalidInput}
}

func apiFailure(cause error) *Error {
	return &Error{Status: 502, Code: CodeAPIFailure, Message: ErrAPIFailure.Error(), kind: ErrAPIFailure, cause: cause}
}
