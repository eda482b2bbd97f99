package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/shelftunes/st-requests/internal/domain"
)

// Request represents the requests table - one user's ask for a media item.
// Requests are never deleted by the pipeline; terminal rows are retained for audit.
type Request struct {
	// ID is the request identifier (UUID)
	ID string `gorm:"column:id;primaryKey;type:uuid"`
	// MediaType is the kind of media item requested (song, book)
	MediaType domain.MediaType `gorm:"column:media_type;not null;type:text"`
	// ExternalID is the source-qualified identifier in "source:identifier" format
	ExternalID domain.ExternalID `gorm:"column:external_id;not null;type:text"`
	// Source is the source component of ExternalID, denormalized for blacklist checks
	Source string `gorm:"column:source;not null;type:text;index:idx_requests_source"`
	// CoverRef is an opaque reference to the requested item's cover art
	CoverRef string `gorm:"column:cover_ref;type:text"`
	// Payload is the source-specific descriptive data captured at submission (opaque blob)
	Payload datatypes.JSON `gorm:"column:payload;type:jsonb"`
	// RequesterID is the submitting user's ID
	RequesterID string `gorm:"column:requester_id;not null;type:uuid"`
	// ApproverID is the approving user's ID, set only when the gate admitted
	// the request into fulfillment; rejected rows leave it unset
	ApproverID *string `gorm:"column:approver_id;type:uuid"`
	// Status is the request lifecycle state (pending, approved, rejected, fulfilled, failed)
	Status domain.RequestStatus `gorm:"column:status;not null;type:text;index:idx_requests_status_next_attempt,priority:1"`
	// FailureReason explains a failed status (source_blacklisted, retries_exhausted, ...)
	FailureReason *domain.FailureReason `gorm:"column:failure_reason;type:text"`
	// RejectReason is the human-entered reason recorded on rejection
	RejectReason string `gorm:"column:reject_reason;type:text"`
	// Attempts counts adapter fetch attempts; monotonically non-decreasing
	Attempts int `gorm:"column:attempts;not null;default:0"`
	// NextAttemptAt is the visibility time for re-dequeue; approved requests are
	// invisible to workers until this instant (backoff scheduling)
	NextAttemptAt time.Time `gorm:"column:next_attempt_at;not null;default:now();type:timestamptz;index:idx_requests_status_next_attempt,priority:2"`
	// CatalogEntryID links a fulfilled request to its catalog entry
	CatalogEntryID *string `gorm:"column:catalog_entry_id;type:uuid"`
	// CreatedAt is the submission timestamp; dequeue order is ascending CreatedAt
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp of the last state transition
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Request model
func (Request) TableName() string {
	return "requests"
}
