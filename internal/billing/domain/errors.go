package domain

import "errors"

// Typed billing errors. Handlers and the CLI map these onto user-facing
// messages, so callers should match with errors.Is rather than comparing
// strings.
var (
	// ErrInvalidTransition is returned when a requested lifecycle change is
	// not legal from the subscription's current state. It is raised before
	// any I/O, so the caller may correct the request and retry.
	ErrInvalidTransition = errors.New("invalid subscription transition")

	// ErrNoOpChange is returned when the requested tier and interval match
	// the subscription's current tier and interval exactly.
	ErrNoOpChange = errors.New("requested plan matches current plan")

	// ErrQuotaExceeded is returned when the monthly draft quota is spent.
	ErrQuotaExceeded = errors.New("monthly draft quota exceeded")

	// ErrPaymentFailed is returned when the payment gateway declined a
	// charge. Local state is never mutated when this is returned.
	ErrPaymentFailed = errors.New("payment failed")

	// ErrGatewayUnavailable is returned on transient gateway failures.
	// Callers retry with backoff.
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")

	// ErrStaleState is returned when an optimistic-concurrency write lost a
	// race. The caller should re-fetch the subscription and re-decide, not
	// blindly retry the same request.
	ErrStaleState = errors.New("subscription was modified concurrently")

	// ErrSubscriptionNotFound is returned when no subscription row exists
	// for the user.
	ErrSubscriptionNotFound = errors.New("subscription not found")
)
