// Package completion sends one chat turn to a language model and returns the
// text of its answer.
package completion

import (
	"context"
	"fmt"
)

// Completer answers a single system+user exchange.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// APIError is returned for any failed completion request: a non-success HTTP
// status, a transport failure, or a response without a usable answer.
type APIError struct {
	Status int // HTTP status; 0 when the request never got a response
	Err    error
}

func (e *APIError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("API request failed: %d", e.Status)
	}
	if e.Err == nil {
		return "API request failed"
	}
	return e.Err.Error()
}

func (e *APIError) Unwrap() error { return e.Err }
