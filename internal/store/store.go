package store

import (
	"context"
	"time"

	"github.com/shelftunes/st-requests/internal/domain"
	"github.com/shelftunes/st-requests/internal/store/schema"
)

// RequestUpdates holds the optional fields applied together with a status
// transition. Zero-valued fields are left untouched.
type RequestUpdates struct {
	// ApproverID sets the approver on approval-gate transitions
	ApproverID *string
	// FailureReason sets the failure reason on transitions to failed
	FailureReason *domain.FailureReason
	// RejectReason records the human-entered reason on rejection
	RejectReason *string
	// CatalogEntryID links the request to its catalog entry on fulfillment
	CatalogEntryID *string
	// IncrementAttempts bumps the attempt counter atomically with the transition
	IncrementAttempts bool
	// NextAttemptAt reschedules the request's visibility time (backoff)
	NextAttemptAt *time.Time
	// ExpectedAttempts extends the compare-and-swap guard to the attempt
	// counter. Required for transitions that keep the status unchanged (retry
	// reschedules), where the status guard alone cannot detect a lost race.
	ExpectedAttempts *int
}

// Store defines the interface for database operations
//
//go:generate mockgen -source=store.go -destination=../mocks/store.go -package=mocks -mock_names=Store=MockStore
type Store interface {
	// GetUserByID retrieves a user by ID; returns nil if not found
	GetUserByID(ctx context.Context, userID string) (*schema.User, error)
	// CreateUser creates a new user
	CreateUser(ctx context.Context, user *schema.User) error

	// CreateRequest inserts a new request. Returns domain.ErrDuplicatePendingRequest
	// when the same (requester, media type, external ID) is already pending or approved.
	CreateRequest(ctx context.Context, request *schema.Request) error
	// GetRequestByID retrieves a request by ID; returns nil if not found
	GetRequestByID(ctx context.Context, requestID string) (*schema.Request, error)
	// ListRequestsByStatus retrieves requests in ascending created_at order (FIFO)
	ListRequestsByStatus(ctx context.Context, status domain.RequestStatus, limit int, offset uint64) ([]*schema.Request, uint64, error)
	// ListApprovedDue retrieves approved requests whose visibility time has passed,
	// oldest submissions first
	ListApprovedDue(ctx context.Context, now time.Time, limit int) ([]*schema.Request, error)
	// TransitionRequest atomically moves a request from one status to another
	// (compare-and-swap). Returns domain.ErrInvalidTransition when the observed
	// status differs from `from`, domain.ErrRequestNotFound when the row is missing.
	TransitionRequest(ctx context.Context, requestID string, from, to domain.RequestStatus, updates RequestUpdates) (*schema.Request, error)
	// RescheduleRequest pushes an approved request's visibility time without
	// changing its status or attempt counter (cache-key collision hold)
	RescheduleRequest(ctx context.Context, requestID string, nextAttemptAt time.Time) error

	// GetCatalogEntryByCacheKey retrieves a catalog entry by its dedup key;
	// returns nil if not found
	GetCatalogEntryByCacheKey(ctx context.Context, mediaType domain.MediaType, cacheKey domain.CacheKey) (*schema.CatalogEntry, error)
	// CreateCatalogEntry inserts a catalog entry if none exists for its
	// (media type, cache key). Returns the stored entry and whether this call
	// created it; a lost race returns the winner's entry with created=false.
	CreateCatalogEntry(ctx context.Context, entry *schema.CatalogEntry) (*schema.CatalogEntry, bool, error)
	// ListCatalogEntries retrieves catalog entries, newest first, optionally
	// filtered by media type
	ListCatalogEntries(ctx context.Context, mediaType *domain.MediaType, limit int, offset uint64) ([]*schema.CatalogEntry, uint64, error)

	// IsSourceBlacklisted checks whether a source is permanently excluded
	IsSourceBlacklisted(ctx context.Context, source string) (bool, error)
	// BlacklistSource inserts a source into the blacklist. Idempotent: a
	// duplicate insert is a no-op and reports created=false.
	BlacklistSource(ctx context.Context, source, reason string) (bool, error)
	// ListBlacklistedSources retrieves all blacklisted sources
	ListBlacklistedSources(ctx context.Context) ([]*schema.BlacklistedSource, error)
	// RemoveBlacklistedSource removes a source from the blacklist (administrative)
	RemoveBlacklistedSource(ctx context.Context, source string) error

	// RecordSourceFailure appends a terminal failure to the per-source tally
	RecordSourceFailure(ctx context.Context, source, reason string, occurredAt time.Time) error
	// CountSourceFailuresSince counts tallied failures for a source within the window
	CountSourceFailuresSince(ctx context.Context, source string, since time.Time) (int64, error)
}
