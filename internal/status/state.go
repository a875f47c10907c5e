package status

import (
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/matheus3301/smsdash/internal/bus"
)

// State is the gateway's view of its upstream systems.
type State string

const (
	Booting  State = "BOOTING"
	Ready    State = "READY"
	Degraded State = "DEGRADED"
	Stopped  State = "STOPPED"
)

// validTransitions defines allowed state transitions.
var validTransitions = map[State][]State{
	Booting:  {Ready, Degraded, Stopped},
	Ready:    {Degraded, Stopped},
	Degraded: {Ready, Stopped},
	Stopped:  {},
}

// Machine tracks gateway health. It is driven by conversation load outcomes
// and read by the status endpoint; the merge never consults it.
type Machine struct {
	mu        sync.RWMutex
	current   State
	lastError string
	changedAt time.Time
	lastLoad  time.Time
	bus       *bus.Bus
}

// Snapshot is a point-in-time copy of the machine.
type Snapshot struct {
	State     State     `json:"state"`
	LastError string    `json:"last_error,omitempty"`
	ChangedAt time.Time `json:"changed_at"`
	LastLoad  time.Time `json:"last_load,omitzero"`
}

// NewMachine creates a new state machine starting in Booting state.
func NewMachine(b *bus.Bus) *Machine {
	return &Machine{
		current:   Booting,
		changedAt: time.Now(),
		bus:       b,
	}
}

// Current returns the current state.
func (m *Machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Snapshot returns the current state with its bookkeeping.
func (m *Machine) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		State:     m.current,
		LastError: m.lastError,
		ChangedAt: m.changedAt,
		LastLoad:  m.lastLoad,
	}
}

// Transition attempts to move to a new state. Returns error if transition is invalid.
func (m *Machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transitionLocked(to)
}

func (m *Machine) transitionLocked(to State) error {
	allowed := validTransitions[m.current]
	if !slices.Contains(allowed, to) {
		return fmt.Errorf("invalid transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	m.changedAt = time.Now()
	m.bus.Publish(bus.NewEvent(bus.KindStatusChanged, StatusChange{From: from, To: to}))
	return nil
}

// LoadSucceeded records a complete conversation load.
func (m *Machine) LoadSucceeded() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastLoad = time.Now()
	m.lastError = ""
	if m.current != Ready {
		_ = m.transitionLocked(Ready)
	}
}

// LoadFailed records an upstream failure.
func (m *Machine) LoadFailed(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.lastError = err.Error()
	}
	if m.current != Degraded {
		_ = m.transitionLocked(Degraded)
	}
}

// StatusChange is the payload for status change events.
type StatusChange struct {
	From State
	To   State
}
