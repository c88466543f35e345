package ports

import "time"

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Timer is a handle to a pending callback.
type Timer interface {
	Stop() bool
}

type Timers interface {
	AfterFunc(d time.Duration, fn func()) Timer
}

type SystemTimers struct{}

func (SystemTimers) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
