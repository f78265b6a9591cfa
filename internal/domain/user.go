package domain

import (
	"context"
	"errors"

	"github.com/questx-lab/social-discord/internal/model"
	"github.com/questx-lab/social-discord/internal/repository"
	"github.com/questx-lab/social-discord/pkg/authenticator"
	"github.com/questx-lab/social-discord/pkg/errorx"
	"github.com/questx-lab/social-discord/pkg/xcontext"
	"gorm.io/gorm"
)

type UserDomain interface {
	GetMe(context.Context, *model.GetMeRequest) (*model.GetMeResponse, error)
}

type userDomain struct {
	userRepo       repository.UserRepository
	userRoleRepo   repository.UserRoleRepository
	socialAuthRepo repository.SocialAuthRepository
}

func NewUserDomain(
	userRepo repository.UserRepository,
	userRoleRepo repository.UserRoleRepository,
	socialAuthRepo repository.SocialAuthRepository,
) UserDomain {
	return &userDomain{
		userRepo:       userRepo,
		userRoleRepo:   userRoleRepo,
		socialAuthRepo: socialAuthRepo,
	}
}

func (d *userDomain) GetMe(ctx context.Context, req *model.GetMeRequest) (*model.GetMeResponse, error) {
	userID := xcontext.RequestUserID(ctx)
	user, err := d.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found user")
		}

		xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
		return nil, errorx.Unknown
	}

	roles, err := d.userRoleRepo.GetByUserID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get roles of user: %v", err)
		return nil, errorx.Unknown
	}

	discordID := ""
	socialAuth, err := d.socialAuthRepo.GetByUserID(ctx, authenticator.DiscordService, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot get social auth of user: %v", err)
			return nil, errorx.Unknown
		}
	} else {
		discordID = socialAuth.ProviderUserID
	}

	resp := model.GetMeResponse(convertUser(user, roles, discordID))
	return &resp, nil
}
