package approval

import "errors"

var (
	// ErrNotAllowed: the action is not in the actor's permitted set for the
	// record's current status and scope.
	ErrNotAllowed = errors.New("action not permitted")

	// ErrPINNotSet: an approving role attempted approve/reject without a
	// configured approval PIN.
	ErrPINNotSet = errors.New("approval pin not set")

	// ErrPINMismatch: the supplied PIN does not match the stored one.
	ErrPINMismatch = errors.New("incorrect approval pin")

	// ErrReasonRequired: reject was attempted with an empty reason.
	ErrReasonRequired = errors.New("rejection reason required")

	// ErrInvalidState: a transition was attempted out of a terminal status.
	ErrInvalidState = errors.New("record is already finalized")
)
