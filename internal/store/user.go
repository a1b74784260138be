package store

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// Profile is the identity handed over by an authentication provider.
type Profile struct {
	Provider   string
	ProviderID string
	Name       string
	Email      string
}

// GetUser returns the user with the given id.
func (c *Client) GetUser(ctx context.Context, id uint) (*User, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	var user User
	if err := c.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get user", "id", id, "error", err)
		}
		return nil, wrapErr(err)
	}
	return &user, nil
}

// GetUserByIdentity returns the user matching a provider identity.
func (c *Client) GetUserByIdentity(ctx context.Context, provider, providerID string) (*User, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	var user User
	err := c.db.WithContext(ctx).
		Where("provider = ? AND provider_id = ?", provider, providerID).
		First(&user).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Error("failed to get user by identity", "provider", provider, "error", err)
		}
		return nil, wrapErr(err)
	}
	return &user, nil
}

// UpsertUser creates the user for a provider identity on first login and
// refreshes the display name and email on subsequent logins. The trust and
// block flags are never touched here.
func (c *Client) UpsertUser(ctx context.Context, profile Profile) (*User, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	var user User
	err := c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("provider = ? AND provider_id = ?", profile.Provider, profile.ProviderID).
			First(&user).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			user = User{
				Provider:   profile.Provider,
				ProviderID: profile.ProviderID,
				Name:       profile.Name,
				Email:      profile.Email,
			}
			return tx.Create(&user).Error
		}
		if err != nil {
			return err
		}
		if user.Name != profile.Name || user.Email != profile.Email {
			user.Name = profile.Name
			user.Email = profile.Email
			return tx.Model(&user).Updates(map[string]any{
				"name":  profile.Name,
				"email": profile.Email,
			}).Error
		}
		return nil
	})
	if err != nil {
		log.Error("failed to upsert user", "provider", profile.Provider, "error", err)
		return nil, wrapErr(err)
	}
	return &user, nil
}

// SetUserState sets the trust and block flags of a user.
// Re-applying the current state is a no-op, not an error.
func (c *Client) SetUserState(ctx context.Context, id uint, trusted, blocked bool) error {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	result := c.db.WithContext(ctx).Model(&User{}).
		Where("id = ?", id).
		Updates(map[string]any{"trusted": trusted, "blocked": blocked})
	if result.Error != nil {
		log.Error("failed to set user state", "id", id, "error", result.Error)
		return wrapErr(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
