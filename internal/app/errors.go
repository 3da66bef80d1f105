package app

import "errors"

// ErrRunInFlight is returned when a handle already has an execution job
// running; the caller decides whether to wait or drop the request.
var ErrRunInFlight = errors.New("execution already in flight for this handle")

// ErrHandleNotFound is returned for an unknown or already-left handle id.
var ErrHandleNotFound = errors.New("handle not found")
