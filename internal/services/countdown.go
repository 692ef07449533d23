package services

import (
	"sync"
	"time"
)

// DefaultModalDelay is how long the participation success modal stays open.
const DefaultModalDelay = 3000 * time.Millisecond

// ModalState is the state of a success modal.
type ModalState string

const (
	ModalVisible ModalState = "visible"
	ModalClosed  ModalState = "closed"  // closed and continued
	ModalStopped ModalState = "stopped" // torn down before continuing
)

// Countdown is a modal that continues by itself after a delay unless the user
// continues first. The continue callback runs at most once.
type Countdown struct {
	mu         sync.Mutex
	state      ModalState
	trigger    string
	timer      *time.Timer
	onContinue func(trigger string)
}

// NewCountdown opens a visible modal. onContinue receives "auto" or "manual".
func NewCountdown(delay time.Duration, onContinue func(trigger string)) *Countdown {
	c := &Countdown{state: ModalVisible, onContinue: onContinue}

	c.mu.Lock()
	c.timer = time.AfterFunc(delay, func() { c.advance("auto") })
	c.mu.Unlock()
	return c
}

// Continue closes the modal now and cancels the pending timer. It reports
// whether this call made the transition.
func (c *Countdown) Continue() bool {
	return c.advance("manual")
}

// Stop tears the modal down without continuing.
func (c *Countdown) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timer.Stop()
	if c.state == ModalVisible {
		c.state = ModalStopped
	}
}

// State returns the current state.
func (c *Countdown) State() ModalState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Trigger returns what closed the modal ("auto" or "manual"), or "" while open.
func (c *Countdown) Trigger() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.trigger
}

func (c *Countdown) advance(trigger string) bool {
	c.mu.Lock()
	if c.state != ModalVisible {
		c.mu.Unlock()
		return false
	}
	c.state = ModalClosed
	c.trigger = trigger
	c.timer.Stop()
	c.mu.Unlock()

	if c.onContinue != nil {
		c.onContinue(trigger)
	}
	return true
}
