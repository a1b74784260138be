package store

import "context"

var _ DB = (*Client)(nil) // Ensure Client implements DB

// DB defines the store operations the rest of the service depends on.
type DB interface {
	// Users
	GetUser(ctx context.Context, id uint) (*User, error)
	GetUserByIdentity(ctx context.Context, provider, providerID string) (*User, error)
	UpsertUser(ctx context.Context, profile Profile) (*User, error)
	SetUserState(ctx context.Context, id uint, trusted, blocked bool) error

	// Comments
	InsertComment(ctx context.Context, userID uint, slug, body string, replyTo *uint) (*Comment, error)
	GetComment(ctx context.Context, id uint) (*Comment, error)
	ListComments(ctx context.Context, slug string, includeHidden bool) ([]Comment, error)
	SetCommentState(ctx context.Context, id uint, approved, rejected bool) error
	ListPendingBySlug(ctx context.Context) ([]PendingSlug, error)
	HasPendingForSlug(ctx context.Context, slug string) (bool, error)
	PurgeRejected(ctx context.Context) (int64, error)

	// Settings
	GetSetting(ctx context.Context, property string) (bool, error)
	SetSetting(ctx context.Context, property string, value bool) error

	GetStats(ctx context.Context) (*Stats, error)

	Close() error
}
