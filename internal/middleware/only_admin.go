package middleware

import (
	"context"

	"github.com/questx-lab/social-discord/internal/common"
	"github.com/questx-lab/social-discord/internal/repository"
	"github.com/questx-lab/social-discord/pkg/errorx"
	"github.com/questx-lab/social-discord/pkg/router"
	"github.com/questx-lab/social-discord/pkg/xcontext"
)

type OnlyAdmin struct {
	globalRoleVerifier *common.GlobalRoleVerifier
}

func NewOnlyAdmin(userRoleRepo repository.UserRoleRepository) *OnlyAdmin {
	return &OnlyAdmin{
		globalRoleVerifier: common.NewGlobalRoleVerifier(userRoleRepo),
	}
}

func (a *OnlyAdmin) Middleware() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		adminRole := xcontext.Configs(ctx).Auth.AdminRole
		if err := a.globalRoleVerifier.Verify(ctx, adminRole); err != nil {
			xcontext.Logger(ctx).Debugf("Reject non-admin user %s: %v", xcontext.RequestUserID(ctx), err)
			return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
		}

		return nil, nil
	}
}
