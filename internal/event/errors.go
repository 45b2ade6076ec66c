package event

import "errors"

// Event bus errors.
var (
	// ErrInvalidHandler is returned when a handler's signature cannot be subscribed.
	ErrInvalidHandler = errors.New("event: invalid handler")

	// ErrNilHandler is returned when a nil handler is subscribed.
	ErrNilHandler = errors.New("event: handler cannot be nil")

	// ErrInvalidTopic is returned for an empty or malformed topic pattern.
	ErrInvalidTopic = errors.New("event: invalid topic")

	// ErrSubscriptionNotFound is returned when unsubscribing an unknown subscription.
	ErrSubscriptionNotFound = errors.New("event: subscription not found")

	// ErrNoHandlers is returned when SubscribeMethods finds no handler methods.
	ErrNoHandlers = errors.New("event: no handler methods found")
)
