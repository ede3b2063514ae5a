package ledger

import (
	"errors"
	"fmt"
	"net/http"
)

// BusinessError is a rejection reported by the server: the request reached it
// and came back with a reason. Message is shown to the user verbatim.
type BusinessError struct {
	Action  Action
	Status  int
	Message string
}

func (e *BusinessError) Error() string {
	return fmt.Sprintf("%s rejected: %s", e.Action, e.Message)
}

// TransportError covers network failures, unreadable responses, and server
// faults. Its detail is for logs only.
type TransportError struct {
	Action Action
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s failed (HTTP %d): %v", e.Action, e.Status, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Action, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsBusiness reports whether err is a server-reported rejection
func IsBusiness(err error) bool {
	var be *BusinessError
	return errors.As(err, &be)
}

// IsTransport reports whether err is a transport-level failure
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// errorBody is the common failure envelope, e.g. {"success":false,"error":"..."}
type errorBody struct {
	Error string `json:"error"`
}

// IsUnauthorized reports whether the server refused err's request for lack of
// a valid admin token
func IsUnauthorized(err error) bool {
	var be *BusinessError
	return errors.As(err, &be) && be.Status == http.StatusUnauthorized
}
