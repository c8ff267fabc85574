package checkout

import "errors"

var (
	ErrAuthRequired       = errors.New("sign in with a complete profile to place an order")
	ErrEmptyCart          = errors.New("cart is empty, nothing to checkout")
	ErrSubmissionInFlight = errors.New("an order submission is already in flight")
	ErrIllegalTransition  = errors.New("illegal transition of checkout state")
)

const fallbackMessage = "Please try again."

// SubmissionError is a failed place-order call. Message is what the visitor is shown.
type SubmissionError struct {
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	return "Failed to place order: " + e.Message
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}
