package source

import (
	"context"

	"gorm.io/datatypes"

	"github.com/shelftunes/st-requests/internal/domain"
)

// Outcome classifies a fetch attempt for the fulfillment state machine
type Outcome string

const (
	// OutcomeSuccess means the item was retrieved and can enter the catalog
	OutcomeSuccess Outcome = "success"
	// OutcomeTransient means the attempt failed but retrying may succeed
	OutcomeTransient Outcome = "transient"
	// OutcomePermanent means the source will never serve this item
	OutcomePermanent Outcome = "permanent"
)

// FetchResult is the outcome of a single fetch attempt against a source
type FetchResult struct {
	Outcome Outcome
	// ContentRef is an opaque reference to the retrieved content, set on success
	ContentRef string
	// Title, Artist and Author describe the retrieved item; Artist is set for
	// songs, Author for books
	Title  string
	Artist string
	Author string
	// Metadata is the source's descriptive blob, stored verbatim on the catalog entry
	Metadata datatypes.JSON
	// Reason explains transient and permanent outcomes
	Reason string
}

// Adapter fetches media items from external sources
//
//go:generate mockgen -source=adapter.go -destination=../mocks/source.go -package=mocks -mock_names=Adapter=MockSourceAdapter
type Adapter interface {
	// Fetch retrieves the item identified by externalID from its source.
	// A non-nil error means the adapter itself could not run the attempt;
	// callers treat it like a transient outcome.
	Fetch(ctx context.Context, mediaType domain.MediaType, externalID domain.ExternalID) (*FetchResult, error)
}
