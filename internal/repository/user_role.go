package repository

import (
	"context"

	"github.com/questx-lab/social-discord/internal/entity"
	"github.com/questx-lab/social-discord/pkg/xcontext"
	"gorm.io/gorm/clause"
)

type UserRoleRepository interface {
	GetByUserID(ctx context.Context, userID string) ([]string, error)
	Has(ctx context.Context, userID, role string) (bool, error)
	Add(ctx context.Context, userID, role string) error
	Remove(ctx context.Context, userID string, roles ...string) (int64, error)
}

type userRoleRepository struct{}

func NewUserRoleRepository() UserRoleRepository {
	return &userRoleRepository{}
}

func (r *userRoleRepository) GetByUserID(ctx context.Context, userID string) ([]string, error) {
	var result []string
	err := xcontext.DB(ctx).
		Model(&entity.UserRole{}).
		Where("user_id=?", userID).
		Order("role").
		Pluck("role", &result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userRoleRepository) Has(ctx context.Context, userID, role string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.UserRole{}).
		Where("user_id=? AND role=?", userID, role).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Add grants the role to the user, granting a role the user already holds is a no-op.
func (r *userRoleRepository) Add(ctx context.Context, userID, role string) error {
	return xcontext.DB(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&entity.UserRole{UserID: userID, Role: role}).Error
}

// Remove revokes the given roles and returns how many of them the user actually held.
func (r *userRoleRepository) Remove(ctx context.Context, userID string, roles ...string) (int64, error) {
	if len(roles) == 0 {
		return 0, nil
	}

	tx := xcontext.DB(ctx).
		Where("user_id=? AND role IN (?)", userID, roles).
		Delete(&entity.UserRole{})
	if tx.Error != nil {
		return 0, tx.Error
	}

	return tx.RowsAffected, nil
}
