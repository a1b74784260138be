package store

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GetSetting returns the boolean value of a site setting.
// Unset properties read as false.
func (c *Client) GetSetting(ctx context.Context, property string) (bool, error) {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	var setting Setting
	err := c.db.WithContext(ctx).First(&setting, "property = ?", property).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		log.Error("failed to get setting", "property", property, "error", err)
		return false, wrapErr(err)
	}
	return setting.Value, nil
}

// SetSetting upserts a site setting.
func (c *Client) SetSetting(ctx context.Context, property string, value bool) error {
	ctx, cancel := c.opCtx(ctx)
	defer cancel()

	err := c.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "property"}},
		DoUpdates: clause.Assignments(map[string]any{"value": value}),
	}).Create(&Setting{Property: property, Value: value}).Error
	if err != nil {
		log.Error("failed to set setting", "property", property, "error", err)
		return wrapErr(err)
	}
	return nil
}
