package ratelimit

import "time"

// Clock abstracts time for the limiter so pacing properties can be tested
// without wall-clock sleeps
type Clock interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// systemClock is the real-time Clock implementation
type systemClock struct{}

func (systemClock) Now() time.Time        { return time.Now() }
func (systemClock) Sleep(d time.Duration) { time.Sleep(d) }

// SystemClock returns the wall-clock implementation of Clock
func SystemClock() Clock { return systemClock{} }
