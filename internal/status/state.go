// Package status tracks the daemon health state.
package status

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/matheus3301/jobboard/internal/bus"
)

// State is a daemon runtime state.
type State string

const (
	Booting   State = "BOOTING"
	Migrating State = "MIGRATING"
	Serving   State = "SERVING"
	Degraded  State = "DEGRADED"
	Stopping  State = "STOPPING"
	Error     State = "ERROR"
)

var validTransitions = map[State][]State{
	Booting:   {Migrating, Error, Stopping},
	Migrating: {Serving, Error, Stopping},
	Serving:   {Degraded, Stopping, Error},
	Degraded:  {Serving, Stopping, Error},
	Stopping:  {},
	Error:     {Booting, Stopping},
}

// Machine tracks and enforces daemon state transitions.
type Machine struct {
	mu      sync.RWMutex
	current State
	reason  string
	since   time.Time
	bus     *bus.Bus
}

// NewMachine creates a machine in Booting.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{current: Booting, since: time.Now(), bus: b}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Snapshot returns the state, the reason given for it and when it was entered.
func (m *Machine) Snapshot() (State, string, time.Time) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current, m.reason, m.since
}

// Transition moves to a new state. Returns error if the move is not allowed.
func (m *Machine) Transition(to State) error {
	return m.TransitionWithReason(to, "")
}

// TransitionWithReason is Transition with a human-readable cause, e.g. the
// dependency that put the daemon in Degraded.
func (m *Machine) TransitionWithReason(to State, reason string) error {
	m.mu.Lock()
	if !slices.Contains(validTransitions[m.current], to) {
		from := m.current
		m.mu.Unlock()
		return fmt.Errorf("invalid transition from %s to %s", from, to)
	}
	change := StatusChange{From: m.current, To: to, Reason: reason}
	m.current, m.reason, m.since = to, reason, time.Now()
	m.mu.Unlock()

	if m.bus != nil {
		m.bus.Publish(bus.Event{Kind: bus.StatusChanged, Timestamp: time.Now(), Payload: change})
	}
	return nil
}

// StatusChange is the payload of bus.StatusChanged events.
type StatusChange struct {
	From   State
	To     State
	Reason string
}
