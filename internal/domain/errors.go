package domain

import "errors"

var (
	// ErrInvalidTransition is returned when a compare-and-swap status update
	// observes a different status than expected. Workers treat this as "someone
	// else already handled the request" and skip, never crash.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrDuplicatePendingRequest is returned when an identical request by the
	// same user is already pending or approved
	ErrDuplicatePendingRequest = errors.New("duplicate pending request")

	// ErrNotAuthorized is returned when the acting user lacks the approver or
	// admin role required by the approval gate
	ErrNotAuthorized = errors.New("not authorized")

	// ErrRequestNotFound is returned when a request does not exist
	ErrRequestNotFound = errors.New("request not found")

	// ErrUserNotFound is returned when a user does not exist
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidExternalID is returned when an external ID is not in the
	// "source:identifier" format
	ErrInvalidExternalID = errors.New("invalid external ID")

	// ErrCacheKeyCollision is returned when two different external IDs map to
	// the same cache key. This is a data-integrity warning: the request is held
	// in approved for manual inspection, never silently merged.
	ErrCacheKeyCollision = errors.New("cache key collision")

	// ErrAdapterUnavailable is returned when the external source adapter itself
	// is unreachable. Treated as a transient failure.
	ErrAdapterUnavailable = errors.New("source adapter unavailable")
)
