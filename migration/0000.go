package migration

import (
	"context"

	"github.com/questx-lab/social-discord/internal/entity"
	"github.com/questx-lab/social-discord/pkg/xcontext"
)

// migrate0000 creates the user, role and social auth tables.
func migrate0000(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&entity.User{},
		&entity.UserRole{},
		&entity.SocialAuth{},
	)
}
