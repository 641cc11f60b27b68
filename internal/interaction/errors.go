package interaction

import "errors"

var (
	// ErrInteractionExpired is returned once the session's response token has
	// passed its validity window. Non-retryable; the user must re-invoke the
	// originating command.
	ErrInteractionExpired = errors.New("interaction token expired")

	// ErrAlreadyAcknowledged is returned when a second first-acknowledgment
	// (defer or respond) is attempted on the same session.
	ErrAlreadyAcknowledged = errors.New("interaction already acknowledged")

	// ErrNotAcknowledged is returned for operations that require a prior
	// acknowledgment, such as follow-ups or deleting the original response.
	ErrNotAcknowledged = errors.New("interaction not acknowledged")

	// ErrSessionClosed is returned after the original response was deleted.
	ErrSessionClosed = errors.New("interaction session closed")

	// ErrCustomIDTooLong is returned when an encoded component id would
	// exceed the platform bound; callers must shorten their parameters.
	ErrCustomIDTooLong = errors.New("encoded component id exceeds platform limit")

	// ErrMalformedCustomID is returned when a component id cannot be split
	// into at least an originator and an action.
	ErrMalformedCustomID = errors.New("malformed component id")
)
