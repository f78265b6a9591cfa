package domain

import (
	"context"
	"time"

	"github.com/questx-lab/social-discord/internal/model"
	"github.com/questx-lab/social-discord/internal/repository"
	"github.com/questx-lab/social-discord/pkg/api/discord"
	"github.com/questx-lab/social-discord/pkg/pubsub"
	"github.com/questx-lab/social-discord/pkg/xcontext"
)

// DiscordLoginHandler runs the side effects of a Discord login: joining the configured guild
// and granting the configured roles.
type DiscordLoginHandler struct {
	userRoleRepo    repository.UserRoleRepository
	discordEndpoint discord.IEndpoint
}

func NewDiscordLoginHandler(
	userRoleRepo repository.UserRoleRepository,
	discordEndpoint discord.IEndpoint,
) *DiscordLoginHandler {
	return &DiscordLoginHandler{
		userRoleRepo:    userRoleRepo,
		discordEndpoint: discordEndpoint,
	}
}

// Subscribe is the pubsub.SubscribeHandler of the login topic.
func (h *DiscordLoginHandler) Subscribe(ctx context.Context, pack *pubsub.Pack, t time.Time) {
	var event model.LoginEvent
	if err := pack.Decode(&event); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unmarshal login event: %v", err)
		return
	}

	if err := h.Handle(ctx, event); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot handle login event of user %s: %v", event.UserID, err)
	}
}

func (h *DiscordLoginHandler) Handle(ctx context.Context, event model.LoginEvent) error {
	cfg := xcontext.Configs(ctx).Discord

	if cfg.GuildID != "" && cfg.BotToken != "" {
		added, err := h.discordEndpoint.AddGuildMember(ctx, cfg.GuildID, event.DiscordUserID, event.AccessToken)
		if err != nil {
			// Joining is best-effort, the user can still join the guild by themselves.
			xcontext.Logger(ctx).Warnf("Cannot add user %s to guild %s: %v",
				event.DiscordUserID, cfg.GuildID, err)
		} else if added {
			xcontext.Logger(ctx).Infof("User %s joined guild %s", event.DiscordUserID, cfg.GuildID)
		} else {
			xcontext.Logger(ctx).Debugf("User %s is already a member of guild %s", event.DiscordUserID, cfg.GuildID)
		}
	}

	var lastErr error
	for _, role := range cfg.AddRoles {
		if err := h.userRoleRepo.Add(ctx, event.UserID, role); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot add role %s to user %s: %v", role, event.UserID, err)
			lastErr = err
		}
	}

	return lastErr
}
