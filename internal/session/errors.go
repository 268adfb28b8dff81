// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import "errors"

// ErrBusy is returned by BeginSubmit while an analysis is already in flight.
var ErrBusy = errors.New("an analysis is already in progress")

// ErrNotSubmitted is returned by CompleteSubmit when nothing is in flight.
var ErrNotSubmitted = errors.New("no analysis in progress")

// TransportError wraps a failure to reach the engine or read its reply.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return "could not reach the analysis engine: " + e.Err.Error()
}

func (e *TransportError) Unwrap() error { return e.Err }
