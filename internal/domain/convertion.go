package domain

import (
	"github.com/questx-lab/social-discord/internal/entity"
	"github.com/questx-lab/social-discord/internal/model"
)

func convertUser(user *entity.User, roles []string, discordID string) model.User {
	if user == nil {
		return model.User{}
	}

	if roles == nil {
		roles = []string{}
	}

	return model.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		AvatarURL: user.AvatarURL,
		Status:    string(user.Status),
		Roles:     roles,
		DiscordID: discordID,
	}
}
