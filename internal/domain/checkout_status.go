package domain

type CheckoutState string

const (
	CheckoutStateIdle       CheckoutState = "IDLE"
	CheckoutStateSubmitting CheckoutState = "SUBMITTING"
	CheckoutStateConfirmed  CheckoutState = "CONFIRMED"
	CheckoutStateFailed     CheckoutState = "FAILED"
)

// String representation (for logging)
func (s CheckoutState) String() string {
	return string(s)
}

var allowedTransitions = map[CheckoutState][]CheckoutState{
	CheckoutStateIdle:       {CheckoutStateSubmitting},
	CheckoutStateSubmitting: {CheckoutStateConfirmed, CheckoutStateFailed},
	CheckoutStateConfirmed:  {CheckoutStateIdle},
	CheckoutStateFailed:     {CheckoutStateIdle},
}

func CanTransitionTo(from, to CheckoutState) bool {
	for _, s := range allowedTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
