package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// MediaType identifies the kind of media item a request refers to
type MediaType string

const (
	MediaTypeSong MediaType = "song"
	MediaTypeBook MediaType = "book"
)

// IsValidMediaType checks if a media type is supported
func IsValidMediaType(mt MediaType) bool {
	return mt == MediaTypeSong || mt == MediaTypeBook
}

// RequestStatus represents the lifecycle state of a media request
type RequestStatus string

const (
	// RequestStatusPending is a submitted request waiting for approval
	RequestStatusPending RequestStatus = "pending"
	// RequestStatusApproved is a request cleared for fulfillment (or re-queued for retry)
	RequestStatusApproved RequestStatus = "approved"
	// RequestStatusRejected is a terminal state reached when an approver declines the request
	RequestStatusRejected RequestStatus = "rejected"
	// RequestStatusFulfilled is a terminal state reached when the item is in the catalog
	RequestStatusFulfilled RequestStatus = "fulfilled"
	// RequestStatusFailed is a terminal state reached when fulfillment gave up
	RequestStatusFailed RequestStatus = "failed"
)

// IsTerminal reports whether no further transitions are allowed from the status
func (s RequestStatus) IsTerminal() bool {
	return s == RequestStatusRejected || s == RequestStatusFulfilled || s == RequestStatusFailed
}

// FailureReason explains why a request ended up in the failed status
type FailureReason string

const (
	// FailureReasonSourceBlacklisted means the request's source is permanently excluded
	FailureReasonSourceBlacklisted FailureReason = "source_blacklisted"
	// FailureReasonRetriesExhausted means transient failures consumed all attempts
	FailureReasonRetriesExhausted FailureReason = "retries_exhausted"
	// FailureReasonSourceRejected means the source reported a non-retryable failure
	FailureReasonSourceRejected FailureReason = "source_rejected"
	// FailureReasonForcedByAdmin means an administrator force-failed the request
	FailureReasonForcedByAdmin FailureReason = "forced_by_admin"
)

// ExternalID is a source-qualified identifier in the format "source:identifier"
// (e.g., "openlibrary:OL7353617M", "musicbrainz:b1a9c0e9")
type ExternalID string

// Parse splits the external ID into its source and source-local identifier
func (e ExternalID) Parse() (source string, identifier string, err error) {
	raw := string(e)
	idx := strings.Index(raw, ":")
	if idx <= 0 || idx == len(raw)-1 {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidExternalID, raw)
	}
	return strings.ToLower(raw[:idx]), raw[idx+1:], nil
}

// Valid reports whether the external ID has the required "source:identifier" shape
func (e ExternalID) Valid() bool {
	_, _, err := e.Parse()
	return err == nil
}

// Source returns the source component of the external ID, or "" if malformed
func (e ExternalID) Source() string {
	source, _, err := e.Parse()
	if err != nil {
		return ""
	}
	return source
}

// CacheKey is the deterministic deduplication key for a catalog entry.
// Two requests referencing the same (media type, external ID) pair always
// derive the same key and therefore bind to the same catalog entry.
type CacheKey string

// DeriveCacheKey computes the cache key for a (media type, external ID) pair
func DeriveCacheKey(mediaType MediaType, externalID ExternalID) CacheKey {
	sum := sha256.Sum256([]byte(string(mediaType) + "\x00" + string(externalID)))
	return CacheKey(hex.EncodeToString(sum[:]))
}

// EventType represents the type of activity event emitted by the pipeline
type EventType string

const (
	EventTypeRequestSubmitted  EventType = "request.submitted"
	EventTypeRequestApproved   EventType = "request.approved"
	EventTypeRequestRejected   EventType = "request.rejected"
	EventTypeRequestFulfilled  EventType = "request.fulfilled"
	EventTypeRequestFailed     EventType = "request.failed"
	EventTypeSourceBlacklisted EventType = "source.blacklisted"
)

// ActivityEvent is the normalized audit record published to the Activity Recorder.
// Recording is fire-and-forget: a failed publish must never fail the pipeline
// operation that produced the event.
type ActivityEvent struct {
	EventID    string        `json:"event_id"`              // ULID, time-sortable
	EventType  EventType     `json:"event_type"`            // e.g., "request.fulfilled"
	RequestID  string        `json:"request_id,omitempty"`  // subject request, empty for source events
	MediaType  MediaType     `json:"media_type,omitempty"`  // song or book
	ExternalID ExternalID    `json:"external_id,omitempty"` // source-qualified identifier
	Source     string        `json:"source,omitempty"`      // set for source.blacklisted events
	ActorID    string        `json:"actor_id,omitempty"`    // requester/approver/admin user ID
	Reason     string        `json:"reason,omitempty"`      // rejection or failure reason
	Timestamp  time.Time     `json:"timestamp"`
	Attempts   int           `json:"attempts,omitempty"` // attempt counter at emission time
	Status     RequestStatus `json:"status,omitempty"`   // status after the transition
}
