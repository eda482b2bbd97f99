package schema

import "time"

// User represents the users table. The pipeline consumes only identity and role
// flags; profile management lives elsewhere.
type User struct {
	// ID is the user identifier (UUID)
	ID string `gorm:"column:id;primaryKey;type:uuid"`
	// Email is the user's email address
	Email string `gorm:"column:email;not null;uniqueIndex;type:text"`
	// DisplayName is the user's display name
	DisplayName string `gorm:"column:display_name;type:text"`
	// IsApprover grants the right to approve or reject pending requests
	IsApprover bool `gorm:"column:is_approver;not null;default:false"`
	// IsAdmin grants approver rights plus blacklist and force-fail administration
	IsAdmin bool `gorm:"column:is_admin;not null;default:false"`
	// RequiresApproval controls whether this user's submissions pass the approval
	// gate; false means submissions are approved within the submitting transaction
	RequiresApproval bool `gorm:"column:requires_approval;not null;default:true"`
	// CreatedAt is the account creation timestamp
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}
