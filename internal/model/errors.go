package model

import (
	"errors"
	"strings"
)

var (
	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists is returned when a resource already exists.
	ErrAlreadyExists = errors.New("already exists")
	// ErrNotValid is returned when a resource is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrNoCredentials is returned when no API token could be obtained.
	ErrNoCredentials = errors.New("no credentials")
	// ErrTransport is returned when the backend could not be reached or answered
	// with a body that can't be understood.
	ErrTransport = errors.New("transport error")
	// ErrTaskIDValidation is returned when the backend reports that the polled task
	// id is not (yet) known by it.
	ErrTaskIDValidation = errors.New("task id validation error")
)

// Task id validation messages the backend sends while a freshly created task is not
// registered in its cache yet.
const (
	MsgInvalidTaskID      = "Invalid task ID"
	MsgNoTaskIDFoundCache = "No task ID found in cache"
)

// IsTaskIDValidationMessage returns true if the backend error message belongs to the
// task id validation class.
func IsTaskIDValidationMessage(msg string) bool {
	msg = strings.TrimSpace(msg)
	return strings.EqualFold(msg, MsgInvalidTaskID) || strings.EqualFold(msg, MsgNoTaskIDFoundCache)
}
