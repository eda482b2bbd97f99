package dto

import (
	"encoding/json"
	"time"

	"github.com/shelftunes/st-requests/internal/domain"
	"github.com/shelftunes/st-requests/internal/store/schema"
)

// SubmitRequestBody is the payload for POST /requests
type SubmitRequestBody struct {
	MediaType  string          `json:"media_type" binding:"required"`
	ExternalID string          `json:"external_id" binding:"required"`
	CoverRef   string          `json:"cover_ref"`
	Payload    json.RawMessage `json:"payload"`
}

// RejectRequestBody is the payload for POST /requests/:id/reject
type RejectRequestBody struct {
	Reason string `json:"reason" binding:"required"`
}

// FailRequestBody is the payload for POST /requests/:id/fail
type FailRequestBody struct {
	Reason string `json:"reason"`
}

// RequestResponse represents a media request
type RequestResponse struct {
	ID             string                `json:"id"`
	MediaType      domain.MediaType      `json:"media_type"`
	ExternalID     domain.ExternalID     `json:"external_id"`
	Source         string                `json:"source"`
	CoverRef       string                `json:"cover_ref,omitempty"`
	Payload        json.RawMessage       `json:"payload,omitempty"`
	RequesterID    string                `json:"requester_id"`
	ApproverID     *string               `json:"approver_id,omitempty"`
	Status         domain.RequestStatus  `json:"status"`
	FailureReason  *domain.FailureReason `json:"failure_reason,omitempty"`
	RejectReason   string                `json:"reject_reason,omitempty"`
	Attempts       int                   `json:"attempts"`
	NextAttemptAt  time.Time             `json:"next_attempt_at"`
	CatalogEntryID *string               `json:"catalog_entry_id,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// NewRequestResponse maps a stored request to its API shape
func NewRequestResponse(request *schema.Request) RequestResponse {
	return RequestResponse{
		ID:             request.ID,
		MediaType:      request.MediaType,
		ExternalID:     request.ExternalID,
		Source:         request.Source,
		CoverRef:       request.CoverRef,
		Payload:        json.RawMessage(request.Payload),
		RequesterID:    request.RequesterID,
		ApproverID:     request.ApproverID,
		Status:         request.Status,
		FailureReason:  request.FailureReason,
		RejectReason:   request.RejectReason,
		Attempts:       request.Attempts,
		NextAttemptAt:  request.NextAttemptAt,
		CatalogEntryID: request.CatalogEntryID,
		CreatedAt:      request.CreatedAt,
		UpdatedAt:      request.UpdatedAt,
	}
}

// PaginatedRequests represents a page of requests
type PaginatedRequests struct {
	Items  []RequestResponse `json:"items"`
	Offset uint64            `json:"offset"`
	Total  uint64            `json:"total"`
}

// NewPaginatedRequests maps a page of stored requests to the API shape
func NewPaginatedRequests(requests []*schema.Request, offset, total uint64) PaginatedRequests {
	items := make([]RequestResponse, 0, len(requests))
	for _, request := range requests {
		items = append(items, NewRequestResponse(request))
	}
	return PaginatedRequests{
		Items:  items,
		Offset: offset,
		Total:  total,
	}
}

// CatalogEntryResponse represents a catalog entry
type CatalogEntryResponse struct {
	ID          string            `json:"id"`
	MediaType   domain.MediaType  `json:"media_type"`
	ExternalID  domain.ExternalID `json:"external_id"`
	CacheKey    domain.CacheKey   `json:"cache_key"`
	Title       string            `json:"title"`
	Artist      string            `json:"artist,omitempty"`
	Author      string            `json:"author,omitempty"`
	ContentRef  string            `json:"content_ref"`
	Metadata    json.RawMessage   `json:"metadata,omitempty"`
	OwnerUserID string            `json:"owner_user_id"`
	CreatedAt   time.Time         `json:"created_at"`
}

// NewCatalogEntryResponse maps a stored catalog entry to its API shape
func NewCatalogEntryResponse(entry *schema.CatalogEntry) CatalogEntryResponse {
	return CatalogEntryResponse{
		ID:          entry.ID,
		MediaType:   entry.MediaType,
		ExternalID:  entry.ExternalID,
		CacheKey:    entry.CacheKey,
		Title:       entry.Title,
		Artist:      entry.Artist,
		Author:      entry.Author,
		ContentRef:  entry.ContentRef,
		Metadata:    json.RawMessage(entry.Metadata),
		OwnerUserID: entry.OwnerUserID,
		CreatedAt:   entry.CreatedAt,
	}
}

// PaginatedCatalogEntries represents a page of catalog entries
type PaginatedCatalogEntries struct {
	Items  []CatalogEntryResponse `json:"items"`
	Offset uint64                 `json:"offset"`
	Total  uint64                 `json:"total"`
}

// BlacklistedSourceResponse represents a blacklisted source
type BlacklistedSourceResponse struct {
	Source    string    `json:"source"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
