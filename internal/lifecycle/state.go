package lifecycle

// State represents a voucher lifecycle state.
type State string

const (
	StateActive   State = "active"
	StateRedeemed State = "redeemed"
	StateExpired  State = "expired"
)

var validStates = map[State]bool{
	StateActive:   true,
	StateRedeemed: true,
	StateExpired:  true,
}

// Redeemed and expired are both terminal: nothing transitions out of
// them, ever.
var terminalStates = map[State]bool{
	StateRedeemed: true,
	StateExpired:  true,
}

// IsTerminal returns true if no further transitions are allowed.
func (s State) IsTerminal() bool {
	return terminalStates[s]
}

// String returns the string representation of the state
func (s State) String() string {
	return string(s)
}

// IsValid returns true if the state is a valid lifecycle state
func (s State) IsValid() bool {
	return validStates[s]
}
