package schema

import (
	"time"

	"gorm.io/datatypes"

	"github.com/shelftunes/st-requests/internal/domain"
)

// CatalogEntry represents the catalog_entries table - a fulfilled, de-duplicated
// media record. At most one row exists per (media_type, cache_key); rows are
// immutable once created.
type CatalogEntry struct {
	// ID is the catalog entry identifier (UUID)
	ID string `gorm:"column:id;primaryKey;type:uuid"`
	// MediaType is the kind of media item (song, book)
	MediaType domain.MediaType `gorm:"column:media_type;not null;type:text;uniqueIndex:idx_catalog_media_type_cache_key,priority:1"`
	// ExternalID is the source-qualified identifier the entry was fetched from
	ExternalID domain.ExternalID `gorm:"column:external_id;not null;type:text"`
	// CacheKey is the deterministic deduplication key derived from (media_type, external_id)
	CacheKey domain.CacheKey `gorm:"column:cache_key;not null;type:text;uniqueIndex:idx_catalog_media_type_cache_key,priority:2"`
	// Title is the item title
	Title string `gorm:"column:title;not null;type:text"`
	// Artist is the performing artist (songs)
	Artist string `gorm:"column:artist;type:text"`
	// Author is the author (books)
	Author string `gorm:"column:author;type:text"`
	// ContentRef is the opaque reference to the fetched content returned by the source
	ContentRef string `gorm:"column:content_ref;not null;type:text"`
	// Metadata is the descriptive metadata returned by the source
	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb"`
	// OwnerUserID is the first requester credited with the fetch
	OwnerUserID string `gorm:"column:owner_user_id;not null;type:uuid"`
	// CreatedAt is the timestamp of the first successful fetch
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the CatalogEntry model
func (CatalogEntry) TableName() string {
	return "catalog_entries"
}
