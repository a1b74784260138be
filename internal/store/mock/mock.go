package mock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sidenote-app/sidenote/internal/store"
)

var _ store.DB = (*MockDB)(nil)

// MockDB is a map-backed implementation of store.DB for testing.
type MockDB struct {
	mu sync.RWMutex

	users      map[uint]*store.User
	nextUserID uint

	comments      map[uint]*store.Comment
	nextCommentID uint

	settings map[string]bool

	// Error simulation
	GetUserError           error
	UpsertUserError        error
	SetUserStateError      error
	InsertCommentError     error
	GetCommentError        error
	ListCommentsError      error
	SetCommentStateError   error
	ListPendingBySlugError error
	GetSettingError        error
	SetSettingError        error
}

// NewMockDB creates a new MockDB instance.
func NewMockDB() *MockDB {
	return &MockDB{
		users:         make(map[uint]*store.User),
		nextUserID:    1,
		comments:      make(map[uint]*store.Comment),
		nextCommentID: 1,
		settings:      make(map[string]bool),
	}
}

// AddUser seeds a user with the given flags and returns it.
func (m *MockDB) AddUser(name string, trusted, blocked bool) *store.User {
	m.mu.Lock()
	defer m.mu.Unlock()

	user := &store.User{
		Provider:   "mock",
		ProviderID: fmt.Sprintf("mock-%d", m.nextUserID),
		Name:       name,
		Trusted:    trusted,
		Blocked:    blocked,
	}
	user.ID = m.nextUserID
	user.CreatedAt = time.Now()
	m.users[user.ID] = user
	m.nextUserID++
	return user
}

func (m *MockDB) GetUser(_ context.Context, id uint) (*store.User, error) {
	if m.GetUserError != nil {
		return nil, m.GetUserError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	user, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	u := *user
	return &u, nil
}

func (m *MockDB) GetUserByIdentity(_ context.Context, provider, providerID string) (*store.User, error) {
	if m.GetUserError != nil {
		return nil, m.GetUserError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, user := range m.users {
		if user.Provider == provider && user.ProviderID == providerID {
			u := *user
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m *MockDB) UpsertUser(_ context.Context, profile store.Profile) (*store.User, error) {
	if m.UpsertUserError != nil {
		return nil, m.UpsertUserError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, user := range m.users {
		if user.Provider == profile.Provider && user.ProviderID == profile.ProviderID {
			user.Name = profile.Name
			user.Email = profile.Email
			u := *user
			return &u, nil
		}
	}

	user := &store.User{
		Provider:   profile.Provider,
		ProviderID: profile.ProviderID,
		Name:       profile.Name,
		Email:      profile.Email,
	}
	user.ID = m.nextUserID
	user.CreatedAt = time.Now()
	m.users[user.ID] = user
	m.nextUserID++
	u := *user
	return &u, nil
}

func (m *MockDB) SetUserState(_ context.Context, id uint, trusted, blocked bool) error {
	if m.SetUserStateError != nil {
		return m.SetUserStateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	user, ok := m.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.Trusted = trusted
	user.Blocked = blocked
	return nil
}

func (m *MockDB) InsertComment(_ context.Context, userID uint, slug, body string, replyTo *uint) (*store.Comment, error) {
	if m.InsertCommentError != nil {
		return nil, m.InsertCommentError
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	author, ok := m.users[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	if replyTo != nil {
		parent, ok := m.comments[*replyTo]
		if !ok || parent.Slug != slug {
			return nil, store.ErrInvalidReply
		}
	}

	comment := &store.Comment{
		UserID:  userID,
		User:    *author,
		Slug:    slug,
		Body:    body,
		ReplyTo: replyTo,
	}
	comment.ID = m.nextCommentID
	comment.CreatedAt = time.Now()
	m.comments[comment.ID] = comment
	m.nextCommentID++
	c := *comment
	return &c, nil
}

func (m *MockDB) GetComment(_ context.Context, id uint) (*store.Comment, error) {
	if m.GetCommentError != nil {
		return nil, m.GetCommentError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	comment, ok := m.comments[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	c := *comment
	if author, ok := m.users[comment.UserID]; ok {
		c.User = *author
	}
	return &c, nil
}

func (m *MockDB) ListComments(_ context.Context, slug string, includeHidden bool) ([]store.Comment, error) {
	if m.ListCommentsError != nil {
		return nil, m.ListCommentsError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	var comments []store.Comment
	for _, comment := range m.comments {
		if comment.Slug != slug {
			continue
		}
		author := m.users[comment.UserID]
		if !includeHidden {
			if author == nil || author.Blocked || comment.Rejected {
				continue
			}
			if !comment.Approved && !author.Trusted {
				continue
			}
		}
		c := *comment
		if author != nil {
			c.User = *author
		}
		comments = append(comments, c)
	}
	sort.Slice(comments, func(i, j int) bool {
		if comments[i].CreatedAt.Equal(comments[j].CreatedAt) {
			return comments[i].ID > comments[j].ID
		}
		return comments[i].CreatedAt.After(comments[j].CreatedAt)
	})
	return comments, nil
}

func (m *MockDB) SetCommentState(_ context.Context, id uint, approved, rejected bool) error {
	if m.SetCommentStateError != nil {
		return m.SetCommentStateError
	}
	if approved && rejected {
		return store.ErrConstraintViolation
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	comment, ok := m.comments[id]
	if !ok {
		return store.ErrNotFound
	}
	comment.Approved = approved
	comment.Rejected = rejected
	return nil
}

func (m *MockDB) ListPendingBySlug(_ context.Context) ([]store.PendingSlug, error) {
	if m.ListPendingBySlugError != nil {
		return nil, m.ListPendingBySlugError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	bySlug := make(map[string]*store.PendingSlug)
	for _, comment := range m.comments {
		if !comment.Pending() {
			continue
		}
		entry, ok := bySlug[comment.Slug]
		if !ok {
			bySlug[comment.Slug] = &store.PendingSlug{
				Slug:      comment.Slug,
				CommentID: comment.ID,
				CreatedAt: comment.CreatedAt,
				Count:     1,
			}
			continue
		}
		entry.Count++
		if comment.ID > entry.CommentID {
			entry.CommentID = comment.ID
			entry.CreatedAt = comment.CreatedAt
		}
	}

	pending := make([]store.PendingSlug, 0, len(bySlug))
	for _, entry := range bySlug {
		pending = append(pending, *entry)
	}
	sort.Slice(pending, func(i, j int) bool {
		return strings.Compare(pending[i].Slug, pending[j].Slug) < 0
	})
	return pending, nil
}

func (m *MockDB) HasPendingForSlug(_ context.Context, slug string) (bool, error) {
	if m.ListPendingBySlugError != nil {
		return false, m.ListPendingBySlugError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, comment := range m.comments {
		if comment.Slug == slug && comment.Pending() {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockDB) GetSetting(_ context.Context, property string) (bool, error) {
	if m.GetSettingError != nil {
		return false, m.GetSettingError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings[property], nil
}

func (m *MockDB) SetSetting(_ context.Context, property string, value bool) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings[property] = value
	return nil
}

func (m *MockDB) PurgeRejected(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var purged int64
	for id, comment := range m.comments {
		if comment.Rejected {
			delete(m.comments, id)
			purged++
		}
	}
	return purged, nil
}

func (m *MockDB) GetStats(_ context.Context) (*store.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := &store.Stats{
		Users:    int64(len(m.users)),
		Comments: int64(len(m.comments)),
	}
	for _, user := range m.users {
		if user.Trusted {
			stats.TrustedUsers++
		}
		if user.Blocked {
			stats.BlockedUsers++
		}
	}
	for _, comment := range m.comments {
		switch {
		case comment.Approved:
			stats.ApprovedComments++
		case comment.Rejected:
			stats.RejectedComments++
		default:
			stats.PendingComments++
		}
	}
	return stats, nil
}

func (m *MockDB) Close() error { return nil }
