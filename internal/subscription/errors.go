package subscription

import (
	"errors"
	"fmt"
)

var (
	// ErrVerificationTimeout is reported when Twitch accepts a subscription but never
	// completes the verification handshake for it
	ErrVerificationTimeout = errors.New("subscription was not verified in time")

	// ErrTransportLost is reported when the transport that a subscription was bound to
	// went away and was not restored in time
	ErrTransportLost = errors.New("transport was lost and not restored in time")

	// ErrStopped is reported to a handle that was explicitly unsubscribed
	ErrStopped = errors.New("subscription stopped")

	// ErrManagerClosed is returned when subscribing to a manager that has been closed
	ErrManagerClosed = errors.New("subscription manager is closed")
)

// RevokedError is reported when Twitch revokes a subscription, e.g. because the
// broadcaster removed the authorization that it depended on
type RevokedError struct {
	Reason string
}

func (e *RevokedError) Error() string {
	return fmt.Sprintf("subscription revoked by Twitch: %s", e.Reason)
}
