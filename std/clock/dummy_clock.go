package clock

import (
	"sync"
	"time"

	"github.com/zhmesh/zhmesh/std/types/priority_queue"
)

// DummyClock is a manually advanced clock for tests and simulations.
// Scheduled events fire inside MoveForward, in deadline order.
type DummyClock struct {
	lock   sync.Mutex
	now    time.Time
	events priority_queue.Queue[func(), int64]
}

// NewDummyClock creates a clock starting at the Unix epoch.
func NewDummyClock() *DummyClock {
	return &DummyClock{now: time.Unix(0, 0).UTC()}
}

func (c *DummyClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.now
}

// MoveForward advances the clock by d and runs every event that became due.
// Events scheduled by a running event fire in the same call if they are due.
func (c *DummyClock) MoveForward(d time.Duration) {
	c.lock.Lock()
	target := c.now.Add(d)
	c.lock.Unlock()

	for {
		c.lock.Lock()
		if c.events.Len() == 0 || c.events.PeekPriority() > target.UnixNano() {
			c.now = target
			c.lock.Unlock()
			return
		}
		at := c.events.PeekPriority()
		f := c.events.Pop()
		if next := time.Unix(0, at).UTC(); next.After(c.now) {
			c.now = next
		}
		c.lock.Unlock()

		f()
	}
}

func (c *DummyClock) Schedule(d time.Duration, f func()) func() error {
	c.lock.Lock()
	defer c.lock.Unlock()

	item := c.events.Push(f, c.now.Add(d).UnixNano())
	return func() error {
		c.lock.Lock()
		defer c.lock.Unlock()
		if c.events.Remove(item) {
			return nil
		}
		return ErrCanceled
	}
}

// Pending returns the number of scheduled events that have not fired.
func (c *DummyClock) Pending() int {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.events.Len()
}
