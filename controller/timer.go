package controller

import (
	"context"
	"time"
)

// sleepTimerState is the tagged Stopped | Running state of the sleep timer.
// cancel is non-nil exactly while a countdown task is running; starting a new
// timer always cancels the previous task first so two countdowns never run
// concurrently.
type sleepTimerState struct {
	active           bool
	minutesRemaining int
	secondsRemaining int
	cancel           context.CancelFunc
}

// stopLocked cancels any running countdown task. Callers must hold c.mu.
func (t *sleepTimerState) stopLocked() {
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.active = false
	t.minutesRemaining = 0
	t.secondsRemaining = 0
}

// sleepTick advances the countdown by one second. Returns true when the timer
// fired: playback is paused and the timer cleared.
func (c *Controller) sleepTick() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.sleepTimer.active {
		return true
	}

	c.sleepTimer.secondsRemaining--
	// Remaining seconds round up to whole minutes for display.
	c.sleepTimer.minutesRemaining = (c.sleepTimer.secondsRemaining + 59) / 60

	if c.sleepTimer.secondsRemaining <= 0 {
		if c.session != nil {
			if err := c.session.Pause(); err != nil {
				c.logSessionError("pause on sleep timer", err)
			}
		}
		c.sleepTimer.active = false
		c.sleepTimer.minutesRemaining = 0
		c.sleepTimer.cancel = nil
		c.broadcastLocked()
		return true
	}

	c.broadcastLocked()
	return false
}

// runSleepTimer is the single cancellable countdown task.
func (c *Controller) runSleepTimer(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.sleepTick() {
				return
			}
		}
	}
}
