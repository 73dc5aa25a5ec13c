package lifecycle

// Trigger represents an event that can cause a state transition.
type Trigger string

const (
	// TriggerRedeem consumes the voucher at a tenant.
	TriggerRedeem Trigger = "redeem"

	// TriggerExpire fires on date rollover, applied lazily at read or
	// redemption time.
	TriggerExpire Trigger = "expire"
)

// String returns the string representation of the trigger
func (t Trigger) String() string {
	return string(t)
}
