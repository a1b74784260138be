package moderation

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/sidenote-app/sidenote/internal/moderation/queue"
	"github.com/sidenote-app/sidenote/internal/store"
)

// Well-known setting properties read by the workflow.
const (
	// SettingNotification mutes moderation digests when set. The unset
	// default keeps digests on.
	SettingNotification = "notification"
	// SettingApproveTrusted makes submissions by trusted users persist as
	// approved instead of relying on the live trust flag alone.
	SettingApproveTrusted = "approve_trusted"
)

// SubmitStatus describes the outcome of a successful submission.
type SubmitStatus string

const (
	// SubmitVisible means the comment is immediately visible to everyone.
	SubmitVisible SubmitStatus = "visible"
	// SubmitPending means the comment awaits moderation.
	SubmitPending SubmitStatus = "pending"
)

// Service implements the comment moderation workflow: the submission
// state machine and the four admin actions.
type Service struct {
	db    store.DB
	queue *queue.Queue

	actions map[ActionKind]func(ctx context.Context, id uint) error
}

// New creates a moderation service on top of the store. The pending
// queue is injected so the notification side owns its lifecycle.
func New(db store.DB, q *queue.Queue) *Service {
	s := &Service{db: db, queue: q}
	s.actions = map[ActionKind]func(context.Context, uint) error{
		ActionApprove: s.approve,
		ActionReject:  s.reject,
		ActionTrust:   s.trust,
		ActionBlock:   s.block,
	}
	return s
}

// Submit validates and stores a new comment.
// Blocked authors are turned away before anything is written. Comments
// by trusted authors become visible immediately, everything else is
// stored pending and registered with the moderation queue.
func (s *Service) Submit(ctx context.Context, viewer *Viewer, slug, body string, replyTo *uint) (*store.Comment, SubmitStatus, error) {
	if viewer.Anonymous() {
		return nil, "", ErrAccessDenied
	}

	author, err := s.db.GetUser(ctx, viewer.UserID)
	if err != nil {
		return nil, "", err
	}
	if author.Blocked {
		return nil, "", fmt.Errorf("%w: user is blocked", ErrAccessDenied)
	}

	if strings.TrimSpace(body) == "" {
		return nil, "", ErrEmptyComment
	}

	comment, err := s.db.InsertComment(ctx, author.ID, slug, body, replyTo)
	if err != nil {
		return nil, "", err
	}

	if author.Trusted {
		// Trusted fast path: visibility comes from the live trust flag.
		// Optionally pin the approval so the comment survives a later
		// untrust, when the site is configured that way.
		if autoApprove, err := s.db.GetSetting(ctx, SettingApproveTrusted); err == nil && autoApprove {
			if err := s.db.SetCommentState(ctx, comment.ID, true, false); err != nil {
				log.Error("failed to auto-approve trusted comment", "comment", comment.ID, "error", err)
			} else {
				comment.Approved = true
			}
		}
		return comment, SubmitVisible, nil
	}

	s.queue.Enqueue(slug)
	log.Info("comment awaiting moderation", "slug", slug, "comment", comment.ID, "author", author.Name)
	return comment, SubmitPending, nil
}

// ListComments returns the comments of a page as the viewer may see
// them. Admins see everything, everyone else goes through the
// visibility predicate.
func (s *Service) ListComments(ctx context.Context, viewer *Viewer, slug string) ([]store.Comment, error) {
	includeHidden := viewer != nil && viewer.Admin
	return s.db.ListComments(ctx, slug, includeHidden)
}

// Apply executes an admin action. The admin check runs on every call
// against the viewer materialized for this request; it is never cached.
// Re-applying an action is a no-op, not an error.
func (s *Service) Apply(ctx context.Context, viewer *Viewer, action Action) error {
	if viewer == nil || !viewer.Admin {
		return ErrAccessDenied
	}

	apply, ok := s.actions[action.Kind]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownAction, action.Kind)
	}
	return apply(ctx, action.TargetID)
}

func (s *Service) approve(ctx context.Context, commentID uint) error {
	return s.decide(ctx, commentID, true, false)
}

func (s *Service) reject(ctx context.Context, commentID uint) error {
	return s.decide(ctx, commentID, false, true)
}

// decide settles a pending comment and prunes the queue once the page
// has no pending comments left.
func (s *Service) decide(ctx context.Context, commentID uint, approved, rejected bool) error {
	comment, err := s.db.GetComment(ctx, commentID)
	if err != nil {
		return err
	}
	if err := s.db.SetCommentState(ctx, commentID, approved, rejected); err != nil {
		return err
	}

	pending, err := s.db.HasPendingForSlug(ctx, comment.Slug)
	if err != nil {
		// The queue is only a cache over the pending query, a stale entry
		// is tolerated by consumers.
		log.Warn("failed to check pending comments after decision", "slug", comment.Slug, "error", err)
		return nil
	}
	if !pending {
		s.queue.Remove(comment.Slug)
	}
	return nil
}

func (s *Service) trust(ctx context.Context, userID uint) error {
	user, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.db.SetUserState(ctx, userID, true, user.Blocked)
}

func (s *Service) block(ctx context.Context, userID uint) error {
	user, err := s.db.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	return s.db.SetUserState(ctx, userID, user.Trusted, true)
}

// UpdateSetting upserts a boolean site setting. Admin only.
func (s *Service) UpdateSetting(ctx context.Context, viewer *Viewer, property string, value bool) error {
	if viewer == nil || !viewer.Admin {
		return ErrAccessDenied
	}
	return s.db.SetSetting(ctx, property, value)
}

// PendingSlugs returns the authoritative pending set from the store.
// Consumers prefer this over the in-memory queue after a restart.
func (s *Service) PendingSlugs(ctx context.Context) ([]store.PendingSlug, error) {
	return s.db.ListPendingBySlug(ctx)
}
