package domain

// SubmitState tracks a single order submission attempt.
type SubmitState string

const (
	SubmitStateIdle       SubmitState = "IDLE"
	SubmitStateValidating SubmitState = "VALIDATING"
	SubmitStateSubmitting SubmitState = "SUBMITTING"
	SubmitStateSucceeded  SubmitState = "SUCCEEDED"
	SubmitStateFailed     SubmitState = "FAILED"
)

func (s SubmitState) IsTerminal() bool {
	return s == SubmitStateSucceeded || s == SubmitStateFailed
}

// String representation (for logging)
func (s SubmitState) String() string {
	return string(s)
}

// CanTransitionTo reports whether a submission attempt may move from one
// state to another.
func CanTransitionTo(from, to SubmitState) bool {
	switch from {
	case SubmitStateIdle:
		return to == SubmitStateValidating
	case SubmitStateValidating:
		return to == SubmitStateSubmitting || to == SubmitStateFailed
	case SubmitStateSubmitting:
		return to == SubmitStateSucceeded || to == SubmitStateFailed
	default:
		return false
	}
}

// CheckoutStatus is what the shopper sees while an order is on its way:
// the status view opens the instant a submission starts and stays on a
// terminal status until dismissed.
type CheckoutStatus string

const (
	CheckoutStatusClosed     CheckoutStatus = "CLOSED"
	CheckoutStatusProcessing CheckoutStatus = "PROCESSING"
	CheckoutStatusSuccess    CheckoutStatus = "SUCCESS"
	CheckoutStatusError      CheckoutStatus = "ERROR"
)

func (s CheckoutStatus) IsTerminal() bool {
	return s == CheckoutStatusSuccess || s == CheckoutStatusError
}

func (s CheckoutStatus) String() string {
	return string(s)
}
