package schema

import "time"

// BlacklistedSource represents the blacklisted_sources table - source identifiers
// permanently excluded from fetch attempts. Rows are inserted idempotently by the
// fulfillment pool and only removed by an administrator.
type BlacklistedSource struct {
	// Source is the source identifier (e.g., "openlibrary"), unique
	Source string `gorm:"column:source;primaryKey;type:text"`
	// Reason describes why the source was blacklisted
	Reason string `gorm:"column:reason;type:text"`
	// CreatedAt is the timestamp the source was blacklisted
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the BlacklistedSource model
func (BlacklistedSource) TableName() string {
	return "blacklisted_sources"
}
