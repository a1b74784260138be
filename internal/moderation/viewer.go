package moderation

// Viewer is the identity a request acts as. It is materialized from the
// session on every request and passed explicitly into each call; nothing
// in this package reads ambient request state.
type Viewer struct {
	// UserID references the store user, 0 for anonymous viewers.
	UserID uint
	Name   string
	// Admin is re-derived from the login provider on every request and is
	// never persisted on the user row.
	Admin bool
}

// Anonymous reports whether the viewer is not logged in.
func (v *Viewer) Anonymous() bool {
	return v == nil || v.UserID == 0
}
