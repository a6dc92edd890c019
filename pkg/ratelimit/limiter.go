package ratelimit

import (
	"sync"
	"time"
)

// Pacer enforces minimum spacing between actions. The two waits are lower
// bounds, not exact sleeps.
type Pacer interface {
	// WaitForRequest blocks until the request delay since the last
	// navigation-class action has elapsed
	WaitForRequest()

	// WaitForLogin blocks until the login delay since the last login
	// submission has elapsed
	WaitForLogin()
}

// Limiter implements Pacer with deterministic minimum pacing. Login
// attempts are the highest-risk action, so the login delay is configured
// at least as long as the request delay.
type Limiter struct {
	requestDelay time.Duration
	loginDelay   time.Duration
	clock        Clock

	mu          sync.Mutex
	lastRequest time.Time
	lastLogin   time.Time
}

// New creates a limiter backed by the system clock
func New(requestDelay, loginDelay time.Duration) *Limiter {
	return NewWithClock(requestDelay, loginDelay, SystemClock())
}

// NewWithClock creates a limiter with an injected clock, for tests
func NewWithClock(requestDelay, loginDelay time.Duration, clock Clock) *Limiter {
	return &Limiter{
		requestDelay: requestDelay,
		loginDelay:   loginDelay,
		clock:        clock,
	}
}

// WaitForRequest sleeps out the remainder of the request window
func (l *Limiter) WaitForRequest() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastRequest = l.pace(l.lastRequest, l.requestDelay)
}

// WaitForLogin sleeps out the remainder of the login window
func (l *Limiter) WaitForLogin() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastLogin = l.pace(l.lastLogin, l.loginDelay)
}

// pace sleeps until at least delay has passed since last, then returns
// the new reference time
func (l *Limiter) pace(last time.Time, delay time.Duration) time.Time {
	if !last.IsZero() {
		elapsed := l.clock.Now().Sub(last)
		if elapsed < delay {
			l.clock.Sleep(delay - elapsed)
		}
	}
	return l.clock.Now()
}
