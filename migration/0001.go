package migration

import (
	"context"

	"github.com/questx-lab/social-discord/internal/entity"
	"github.com/questx-lab/social-discord/pkg/xcontext"
)

// migrate0001 backfills users created before the status column had a default.
func migrate0001(ctx context.Context) error {
	return xcontext.DB(ctx).Model(&entity.User{}).
		Where("status = ? OR status IS NULL", "").
		Update("status", entity.UserActive).Error
}
