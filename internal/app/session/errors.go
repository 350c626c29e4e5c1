package session

import (
	"errors"

	"tempest/internal/domain/sim"
)

var (
	ErrInvalidRequest = errors.New("invalid session request")
	ErrRejected       = errors.New("intent rejected")
)

// ReasonOraclePending rejects intents that arrive while the narrator is
// still answering the previous one.
const ReasonOraclePending sim.RejectReason = "oracle_pending"

// RejectedError is a validation rejection. The controller turns it into a
// response with Accepted=false; the session is left untouched.
type RejectedError struct {
	Reason sim.RejectReason
}

func (e *RejectedError) Error() string {
	return ErrRejected.Error() + ": " + string(e.Reason)
}

func (e *RejectedError) Unwrap() error {
	return ErrRejected
}

func reject(reason sim.RejectReason) error {
	return &RejectedError{Reason: reason}
}
