// Package timer implements the focus countdown.
package timer

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State of a Countdown.
type State int

const (
	Idle State = iota
	Running
	Paused
	Finished
)

func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Finished:
		return "finished"
	default:
		return "idle"
	}
}

// Countdown tracks a deadline against the wall clock. Remaining time is
// always computed from the deadline, so a slow or skipped tick never makes
// the timer drift.
type Countdown struct {
	mu       sync.Mutex
	now      func() time.Time
	state    State
	total    time.Duration
	deadline time.Time
	// remaining while paused.
	left time.Duration
}

// New returns an idle countdown. A nil clock means time.Now.
func New(now func() time.Time) *Countdown {
	if now == nil {
		now = time.Now
	}
	return &Countdown{now: now}
}

// Start (re)starts the countdown for d.
func (c *Countdown) Start(d time.Duration) error {
	if d <= 0 {
		return errors.New("duration must be positive")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total = d
	c.left = d
	c.deadline = c.now().Add(d)
	c.state = Running
	return nil
}

// Pause freezes the remaining time. No-op unless running.
func (c *Countdown) Pause() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshLocked()
	if c.state != Running {
		return
	}
	c.left = c.deadline.Sub(c.now())
	c.state = Paused
}

// Resume continues a paused countdown. No-op unless paused.
func (c *Countdown) Resume() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Paused {
		return
	}
	c.deadline = c.now().Add(c.left)
	c.state = Running
}

// Remaining returns the time left, never negative.
func (c *Countdown) Remaining() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshLocked()
	switch c.state {
	case Running:
		return max(0, c.deadline.Sub(c.now()))
	case Paused:
		return c.left
	default:
		return 0
	}
}

// Done reports whether the countdown reached zero.
func (c *Countdown) Done() bool {
	return c.State() == Finished
}

func (c *Countdown) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.refreshLocked()
	return c.state
}

// Total is the duration given to the last Start.
func (c *Countdown) Total() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

func (c *Countdown) refreshLocked() {
	if c.state == Running && !c.now().Before(c.deadline) {
		c.state = Finished
		c.left = 0
	}
}

// Run polls the countdown every tick and calls onTick with the remaining
// time. It returns nil once the countdown finishes, or ctx.Err().
func (c *Countdown) Run(ctx context.Context, tick time.Duration, onTick func(remaining time.Duration)) error {
	if tick <= 0 {
		tick = time.Second
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			left := c.Remaining()
			if onTick != nil {
				onTick(left)
			}
			if c.Done() {
				return nil
			}
		}
	}
}
