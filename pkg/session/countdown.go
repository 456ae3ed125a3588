// pkg/session/countdown.go - the interruptible auto-launch countdown.

package session

import (
	"fmt"
	"time"
)

// countdownResolution is the granularity of elapsed time.
const countdownResolution = 100 * time.Millisecond

// DefaultCountdown is the auto-launch delay when none is configured.
const DefaultCountdown = 5 * time.Second

// Countdown is a one-shot timer. Once cancelled it never restarts.
type Countdown struct {
	total     time.Duration
	started   time.Time
	enabled   bool
	cancelled bool
}

// NewCountdown starts a countdown of total at start.
func NewCountdown(total time.Duration, start time.Time) Countdown {
	return Countdown{total: total, started: start, enabled: true}
}

// Active reports whether the countdown is still running.
func (c Countdown) Active() bool {
	return c.enabled && !c.cancelled
}

// Cancel stops the countdown for good.
func (c *Countdown) Cancel() {
	c.cancelled = true
}

// Remaining returns max(total - elapsed, 0) with elapsed truncated to a
// tenth of a second.
func (c Countdown) Remaining(now time.Time) time.Duration {
	if !c.enabled {
		return 0
	}
	elapsed := now.Sub(c.started).Truncate(countdownResolution)
	if elapsed < 0 {
		elapsed = 0
	}
	if rem := c.total - elapsed; rem > 0 {
		return rem
	}
	return 0
}

// Expired reports whether an active countdown has reached zero.
func (c Countdown) Expired(now time.Time) bool {
	return c.Active() && c.Remaining(now) == 0
}

// Label renders the remaining seconds truncated to one decimal place.
func (c Countdown) Label(now time.Time) string {
	tenths := int64(c.Remaining(now) / countdownResolution)
	return fmt.Sprintf("%d.%d", tenths/10, tenths%10)
}
