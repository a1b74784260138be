package store

import (
	"time"

	"gorm.io/gorm"
)

// User represents a commenter in the database.
// Users are created on first successful login via an identity provider and
// are never hard-deleted. Only the trust/block flags are mutable, and only
// through admin actions.
// Admin status is explicitly not tracked here; it is determined during the
// login process and stored in the session.
type User struct {
	gorm.Model
	Provider   string `gorm:"not null;uniqueIndex:idx_user_identity"`
	ProviderID string `gorm:"not null;uniqueIndex:idx_user_identity"`
	Name       string `gorm:"not null"`
	Email      string
	Blocked    bool `gorm:"not null;default:false"`
	Trusted    bool `gorm:"not null;default:false"`
}

// Comment represents a single comment on a page.
// A comment starts out pending (neither approved nor rejected) unless its
// author is trusted, in which case visibility is computed live from the
// author flags rather than from the approval state.
type Comment struct {
	gorm.Model
	UserID   uint   `gorm:"not null;index"`
	User     User   `gorm:"constraint:OnUpdate:CASCADE;"`
	Slug     string `gorm:"not null;index"`
	Body     string `gorm:"type:text;not null"`
	Approved bool   `gorm:"not null;default:false"`
	Rejected bool   `gorm:"not null;default:false"`
	ReplyTo  *uint  `gorm:"index"`
}

// Pending reports whether the comment still awaits a moderation decision.
func (c Comment) Pending() bool {
	return !c.Approved && !c.Rejected
}

// Setting represents a boolean site setting keyed by property name.
type Setting struct {
	Property string `gorm:"primaryKey"`
	Value    bool   `gorm:"not null;default:false"`
}

// PendingSlug describes a page with comments awaiting moderation,
// enriched with the newest pending comment for feed display.
type PendingSlug struct {
	Slug      string
	CommentID uint
	CreatedAt time.Time
	Count     int
}
