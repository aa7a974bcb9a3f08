package apperrors

import (
	"context"
	"errors"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrNotFound        = errors.New("not found")
	ErrNoActiveSession = errors.New("no active session")

	// Render-loop sentinels. Both classify as expected cancellation:
	// the record reverts to unrendered without surfacing an error.
	ErrRenderCancelled  = errors.New("render cancelled")
	ErrRenderSuperseded = errors.New("render superseded")

	ErrPageUnavailable = errors.New("page unavailable")
)

// IsCancellation reports whether err is an expected-cancellation signal
// rather than a real render failure.
func IsCancellation(err error) bool {
	return errors.Is(err, ErrRenderCancelled) ||
		errors.Is(err, ErrRenderSuperseded) ||
		errors.Is(err, context.Canceled)
}
