package repository

import (
	"context"

	"github.com/questx-lab/social-discord/internal/entity"
	"github.com/questx-lab/social-discord/pkg/xcontext"
)

type SocialAuthRepository interface {
	Create(ctx context.Context, data *entity.SocialAuth) error
	GetByProviderUserID(ctx context.Context, plugin, providerUserID string) (*entity.SocialAuth, error)
	GetByUserID(ctx context.Context, plugin, userID string) (*entity.SocialAuth, error)
	GetAll(ctx context.Context, plugin string) ([]entity.SocialAuth, error)
	UpdateTokens(ctx context.Context, id, accessToken, additionalData string) error
	UpdateAdditionalData(ctx context.Context, id, additionalData string) error
}

type socialAuthRepository struct{}

func NewSocialAuthRepository() SocialAuthRepository {
	return &socialAuthRepository{}
}

func (r *socialAuthRepository) Create(ctx context.Context, data *entity.SocialAuth) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *socialAuthRepository) GetByProviderUserID(
	ctx context.Context, plugin, providerUserID string,
) (*entity.SocialAuth, error) {
	var result entity.SocialAuth
	err := xcontext.DB(ctx).
		Where("plugin=? AND provider_user_id=?", plugin, providerUserID).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *socialAuthRepository) GetByUserID(ctx context.Context, plugin, userID string) (*entity.SocialAuth, error) {
	var result entity.SocialAuth
	err := xcontext.DB(ctx).
		Where("plugin=? AND user_id=?", plugin, userID).
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *socialAuthRepository) GetAll(ctx context.Context, plugin string) ([]entity.SocialAuth, error) {
	var result []entity.SocialAuth
	err := xcontext.DB(ctx).
		Where("plugin=?", plugin).
		Order("created_at").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *socialAuthRepository) UpdateTokens(ctx context.Context, id, accessToken, additionalData string) error {
	return xcontext.DB(ctx).
		Model(&entity.SocialAuth{}).
		Where("id=?", id).
		Updates(map[string]any{
			"access_token":    accessToken,
			"additional_data": additionalData,
		}).Error
}

func (r *socialAuthRepository) UpdateAdditionalData(ctx context.Context, id, additionalData string) error {
	return xcontext.DB(ctx).
		Model(&entity.SocialAuth{}).
		Where("id=?", id).
		Update("additional_data", additionalData).Error
}
