package controller

import (
	"errors"

	"github.com/mcoot/minibeans/internal/ledger"
	"github.com/mcoot/minibeans/internal/model"
)

// Kind distinguishes success and error notifications
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is a transient, non-blocking message for the user
type Notification struct {
	Kind    Kind   `json:"kind"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Notifier renders notifications
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(n Notification)

// Notify calls f(n)
func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

const genericFailure = "Could not reach the server. Please try again."

// failureFor maps an error to what the user sees: validation and server
// rejections verbatim, anything else a generic message
func failureFor(err error) Notification {
	var ve *model.ValidationError
	var be *ledger.BusinessError
	switch {
	case errors.As(err, &ve):
		return Notification{Kind: KindError, Title: "Error", Message: ve.Message}
	case errors.As(err, &be):
		return Notification{Kind: KindError, Title: "Error", Message: be.Message}
	default:
		return Notification{Kind: KindError, Title: "Error", Message: genericFailure}
	}
}
