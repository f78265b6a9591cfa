package repository

import (
	"context"

	"github.com/questx-lab/social-discord/internal/entity"
	"github.com/questx-lab/social-discord/pkg/enum"
	"github.com/questx-lab/social-discord/pkg/xcontext"
)

type UserRepository interface {
	Create(ctx context.Context, data *entity.User) error
	UpdateByID(ctx context.Context, id string, data *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}

type userRepository struct{}

func NewUserRepository() UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, data *entity.User) error {
	if data.Status == "" {
		data.Status = entity.UserActive
	}

	if _, err := enum.ToEnum[entity.UserStatus](string(data.Status)); err != nil {
		return err
	}

	return xcontext.DB(ctx).Create(data).Error
}

func (r *userRepository) UpdateByID(ctx context.Context, id string, data *entity.User) error {
	updateMap := map[string]any{}
	if data.Name != "" {
		updateMap["name"] = data.Name
	}

	if data.Email != "" {
		updateMap["email"] = data.Email
	}

	if data.AvatarURL != "" {
		updateMap["avatar_url"] = data.AvatarURL
	}

	if data.Status != "" {
		if _, err := enum.ToEnum[entity.UserStatus](string(data.Status)); err != nil {
			return err
		}
		updateMap["status"] = data.Status
	}

	if len(updateMap) == 0 {
		return nil
	}

	return xcontext.DB(ctx).Model(&entity.User{}).Where("id=?", id).Updates(updateMap).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Where("id=?", id).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var record entity.User
	if err := xcontext.DB(ctx).Where("email=?", email).Take(&record).Error; err != nil {
		return nil, err
	}

	return &record, nil
}
