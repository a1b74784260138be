package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// InsertComment stores a new comment for a page.
// The author must exist and, when replyTo is set, the referenced comment
// must exist on the same slug. Validation and insert run in one
// transaction so a comment row is never observable before its references
// were checked.
func (c *Client) InsertComment(ctx context.Context, userID uint, slug, body string, replyTo *uint) (*Comment, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	comment := Comment{
		UserID:  userID,
		Slug:    slug,
		Body:    body,
		ReplyTo: replyTo,
	}

	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var author User
		if err := tx.First(&author, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: user %d", ErrNotFound, userID)
			}
			return err
		}

		if replyTo != nil {
			var parent Comment
			if err := tx.First(&parent, *replyTo).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("%w: comment %d", ErrInvalidReply, *replyTo)
				}
				return err
			}
			if parent.Slug != slug {
				return fmt.Errorf("%w: comment %d belongs to %q", ErrInvalidReply, *replyTo, parent.Slug)
			}
		}

		return tx.Create(&comment).Error
	})
	if err != nil {
		if !errors.Is(err, ErrInvalidReply) && !errors.Is(err, ErrNotFound) {
			log.Error("failed to insert comment", "slug", slug, "error", err)
		}
		return nil, wrapErr(err)
	}
	return &comment, nil
}

// GetComment returns the comment with the given id, author preloaded.
func (c *Client) GetComment(ctx context.Context, id uint) (*Comment, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	var comment Comment
	if err := c.db.WithContext(ctx).Preload("User").First(&comment, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get comment", "id", id, "error", err)
		}
		return nil, wrapErr(err)
	}
	return &comment, nil
}

// ListComments returns the comments of a page ordered newest first.
// Unless includeHidden is set, the visibility predicate is applied: the
// author must not be blocked, the comment must not be rejected, and the
// comment must be approved or its author trusted. The predicate runs
// against the current user flags on every call, so trust and block
// toggles take effect immediately for all readers.
func (c *Client) ListComments(ctx context.Context, slug string, includeHidden bool) ([]Comment, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	tx := c.db.WithContext(ctx).
		Preload("User").
		Where("comments.slug = ?", slug).
		Order("comments.created_at DESC, comments.id DESC")

	if !includeHidden {
		tx = tx.Joins("JOIN users ON users.id = comments.user_id").
			Where("users.blocked = ? AND comments.rejected = ? AND (comments.approved = ? OR users.trusted = ?)",
				false, false, true, true)
	}

	var comments []Comment
	if err := tx.Find(&comments).Error; err != nil {
		log.Error("failed to list comments", "slug", slug, "error", err)
		return nil, wrapErr(err)
	}
	return comments, nil
}

// SetCommentState sets the approval state of a comment. A comment can
// never be approved and rejected at the same time. Re-applying the
// current state is a no-op, not an error.
func (c *Client) SetCommentState(ctx context.Context, id uint, approved, rejected bool) error {
	if approved && rejected {
		return fmt.Errorf("%w: comment cannot be both approved and rejected", ErrConstraintViolation)
	}

	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	result := c.db.WithContext(ctx).Model(&Comment{}).
		Where("id = ?", id).
		Updates(map[string]any{"approved": approved, "rejected": rejected})
	if result.Error != nil {
		log.Error("failed to set comment state", "id", id, "error", result.Error)
		return wrapErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPendingBySlug returns every page that has comments awaiting
// moderation, newest first, enriched with the latest pending comment for
// feed display. This is the source of truth the in-memory moderation
// queue caches.
func (c *Client) ListPendingBySlug(ctx context.Context) ([]PendingSlug, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	var pending []PendingSlug
	err := c.db.WithContext(ctx).Model(&Comment{}).
		Select("slug, MAX(id) AS comment_id, MAX(created_at) AS created_at, COUNT(*) AS count").
		Where("approved = ? AND rejected = ?", false, false).
		Group("slug").
		Order("created_at DESC").
		Scan(&pending).Error
	if err != nil {
		log.Error("failed to list pending slugs", "error", err)
		return nil, wrapErr(err)
	}
	return pending, nil
}

// HasPendingForSlug reports whether a page still has pending comments.
func (c *Client) HasPendingForSlug(ctx context.Context, slug string) (bool, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	var count int64
	err := c.db.WithContext(ctx).Model(&Comment{}).
		Where("slug = ? AND approved = ? AND rejected = ?", slug, false, false).
		Count(&count).Error
	if err != nil {
		log.Error("failed to count pending comments", "slug", slug, "error", err)
		return false, wrapErr(err)
	}
	return count > 0, nil
}

// PurgeRejected permanently deletes all rejected comments and returns
// the number of rows removed.
func (c *Client) PurgeRejected(ctx context.Context) (int64, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	res := c.db.WithContext(ctx).
		Unscoped().
		Where("rejected = ?", true).
		Delete(&Comment{})
	if res.Error != nil {
		log.Error("failed to purge rejected comments", "error", res.Error)
		return 0, wrapErr(res.Error)
	}
	return res.RowsAffected, nil
}
