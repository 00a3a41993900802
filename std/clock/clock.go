package clock

import (
	"errors"
	"time"
)

// ErrCanceled is returned when canceling an event that already fired or was canceled.
var ErrCanceled = errors.New("event has already been canceled")

// Clock is the time source shared by the mesh engine and the radio medium.
type Clock interface {
	// Now returns current time. It must be monotonic.
	Now() time.Time
	// Schedule schedules the callback function to be called after the duration,
	// and returns a cancel callback to cancel the scheduled function.
	Schedule(time.Duration, func()) func() error
}

type wallClock struct{}

// New returns the system clock.
func New() Clock {
	return wallClock{}
}

func (wallClock) Now() time.Time {
	return time.Now()
}

func (wallClock) Schedule(d time.Duration, f func()) func() error {
	t := time.AfterFunc(d, f)
	return func() error {
		if t != nil && t.Stop() {
			t = nil
			return nil
		}
		return ErrCanceled
	}
}
