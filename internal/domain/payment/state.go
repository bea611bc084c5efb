package payment

import "fmt"

// paymentState implements the state pattern for the payment lifecycle.
type paymentState interface {
	Status() Status
	OnAuthorizeSucceeded() (paymentState, error)
	OnAuthorizeFailed() (paymentState, error)
	OnCancel() (paymentState, error)
}

func stateOf(s Status) paymentState {
	switch s {
	case StatusPending:
		return pendingState{}
	case StatusCompleted:
		return completedState{}
	case StatusFailed:
		return failedState{}
	case StatusCancelled:
		return cancelledState{}
	default:
		return invalidState{status: s}
	}
}

type pendingState struct{}

func (pendingState) Status() Status { return StatusPending }

func (pendingState) OnAuthorizeSucceeded() (paymentState, error) {
	return completedState{}, nil
}

func (pendingState) OnAuthorizeFailed() (paymentState, error) {
	return failedState{}, nil
}

func (pendingState) OnCancel() (paymentState, error) {
	return cancelledState{}, nil
}

type completedState struct{}

func (completedState) Status() Status { return StatusCompleted }

func (completedState) OnAuthorizeSucceeded() (paymentState, error) {
	return nil, fmt.Errorf("%w: status is not PENDING: %s", ErrIllegalTransition, StatusCompleted)
}

func (completedState) OnAuthorizeFailed() (paymentState, error) {
	return nil, fmt.Errorf("%w: status is not PENDING: %s", ErrIllegalTransition, StatusCompleted)
}

func (completedState) OnCancel() (paymentState, error) {
	return cancelledState{}, nil
}

type failedState struct{}

func (failedState) Status() Status { return StatusFailed }

func (failedState) OnAuthorizeSucceeded() (paymentState, error) {
	return nil, fmt.Errorf("%w: status is not PENDING: %s", ErrIllegalTransition, StatusFailed)
}

func (failedState) OnAuthorizeFailed() (paymentState, error) {
	return nil, fmt.Errorf("%w: status is not PENDING: %s", ErrIllegalTransition, StatusFailed)
}

func (failedState) OnCancel() (paymentState, error) {
	return nil, fmt.Errorf("%w: failed payment cannot be cancelled", ErrIllegalTransition)
}

type cancelledState struct{}

func (cancelledState) Status() Status { return StatusCancelled }

func (cancelledState) OnAuthorizeSucceeded() (paymentState, error) {
	return nil, fmt.Errorf("%w: status is not PENDING: %s", ErrIllegalTransition, StatusCancelled)
}

func (cancelledState) OnAuthorizeFailed() (paymentState, error) {
	return nil, fmt.Errorf("%w: status is not PENDING: %s", ErrIllegalTransition, StatusCancelled)
}

func (cancelledState) OnCancel() (paymentState, error) {
	return nil, fmt.Errorf("%w: payment is already cancelled", ErrIllegalTransition)
}

// invalidState guards against statuses that never came out of this package,
// e.g. a corrupted row.
type invalidState struct{ status Status }

func (s invalidState) Status() Status { return s.status }

func (s invalidState) OnAuthorizeSucceeded() (paymentState, error) {
	return nil, fmt.Errorf("%w: unknown status %q", ErrIllegalTransition, s.status)
}

func (s invalidState) OnAuthorizeFailed() (paymentState, error) {
	return nil, fmt.Errorf("%w: unknown status %q", ErrIllegalTransition, s.status)
}

func (s invalidState) OnCancel() (paymentState, error) {
	return nil, fmt.Errorf("%w: unknown status %q", ErrIllegalTransition, s.status)
}
