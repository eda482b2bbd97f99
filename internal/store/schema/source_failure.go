package schema

import "time"

// SourceFailure represents the source_failures table - the rolling tally of
// terminal fetch failures per source. The blacklist policy counts rows within
// a configured window; rows outside the window are simply ignored.
type SourceFailure struct {
	// ID is an auto-incrementing sequence number
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Source is the source identifier the failure is attributed to
	Source string `gorm:"column:source;not null;type:text;index:idx_source_failures_source_occurred,priority:1"`
	// Reason is the failure reason recorded with the tally
	Reason string `gorm:"column:reason;type:text"`
	// OccurredAt is when the terminal failure happened
	OccurredAt time.Time `gorm:"column:occurred_at;not null;default:now();type:timestamptz;index:idx_source_failures_source_occurred,priority:2"`
}

// TableName specifies the table name for the SourceFailure model
func (SourceFailure) TableName() string {
	return "source_failures"
}
