package lifecycle

import "fmt"

// Machine tracks a voucher's current state and validates transitions.
// It is a value type: Fire returns the next state rather than mutating
// shared configuration, so a single package-level transition table
// serves all vouchers.
type Machine struct {
	current State
}

// voucher state machine: active is the only non-terminal state.
var transitions = map[State]map[Trigger]State{
	StateActive: {
		TriggerRedeem: StateRedeemed,
		TriggerExpire: StateExpired,
	},
}

// NewMachine creates a machine positioned at the given state.
func NewMachine(initial State) (*Machine, error) {
	if !initial.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidState, initial)
	}
	return &Machine{current: initial}, nil
}

// State returns the current state
func (m *Machine) State() State {
	return m.current
}

// CanFire returns true if the trigger is permitted in the current state
func (m *Machine) CanFire(trigger Trigger) bool {
	next, ok := transitions[m.current]
	if !ok {
		return false
	}
	_, ok = next[trigger]
	return ok
}

// Fire executes the trigger, advancing to the new state if allowed.
func (m *Machine) Fire(trigger Trigger) error {
	next, ok := transitions[m.current][trigger]
	if !ok {
		return fmt.Errorf("%w: cannot fire %s from state %s", ErrInvalidTransition, trigger, m.current)
	}
	m.current = next
	return nil
}

// PermittedTriggers returns all triggers that can be fired in the current state
func (m *Machine) PermittedTriggers() []Trigger {
	var triggers []Trigger
	for trigger := range transitions[m.current] {
		triggers = append(triggers, trigger)
	}
	return triggers
}
