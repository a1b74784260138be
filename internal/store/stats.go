package store

import "context"

// Stats summarizes the database for the db-stats command.
type Stats struct {
	Users            int64
	TrustedUsers     int64
	BlockedUsers     int64
	Comments         int64
	ApprovedComments int64
	RejectedComments int64
	PendingComments  int64
}

// GetStats collects row counts across the main tables.
func (c *Client) GetStats(ctx context.Context) (*Stats, error) {
	opCtx, cancel := c.opCtx(ctx)
	defer cancel()

	var stats Stats
	counts := []struct {
		dest  *int64
		model any
		query string
		args  []any
	}{
		{&stats.Users, &User{}, "", nil},
		{&stats.TrustedUsers, &User{}, "trusted = ?", []any{true}},
		{&stats.BlockedUsers, &User{}, "blocked = ?", []any{true}},
		{&stats.Comments, &Comment{}, "", nil},
		{&stats.ApprovedComments, &Comment{}, "approved = ?", []any{true}},
		{&stats.RejectedComments, &Comment{}, "rejected = ?", []any{true}},
		{&stats.PendingComments, &Comment{}, "approved = ? AND rejected = ?", []any{false, false}},
	}
	for _, cnt := range counts {
		q := c.db.WithContext(opCtx).Model(cnt.model)
		if cnt.query != "" {
			q = q.Where(cnt.query, cnt.args...)
		}
		if err := q.Count(cnt.dest).Error; err != nil {
			return nil, wrapErr(err)
		}
	}
	return &stats, nil
}
