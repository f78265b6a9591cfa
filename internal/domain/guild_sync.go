package domain

import (
	"context"

	"github.com/questx-lab/social-discord/internal/common"
	"github.com/questx-lab/social-discord/internal/model"
	"github.com/questx-lab/social-discord/pkg/errorx"
	"github.com/questx-lab/social-discord/pkg/xcontext"
	"github.com/questx-lab/social-discord/pkg/xredis"
)

type GuildSyncDomain interface {
	GetStatus(context.Context, *model.GetGuildSyncStatusRequest) (*model.GetGuildSyncStatusResponse, error)
}

type guildSyncDomain struct {
	redisClient xredis.Client
}

// NewGuildSyncDomain accepts a nil client, the status is then unavailable.
func NewGuildSyncDomain(redisClient xredis.Client) GuildSyncDomain {
	return &guildSyncDomain{redisClient: redisClient}
}

func (d *guildSyncDomain) GetStatus(
	ctx context.Context, req *model.GetGuildSyncStatusRequest,
) (*model.GetGuildSyncStatusResponse, error) {
	if d.redisClient == nil {
		return nil, errorx.New(errorx.Unavailable, "Guild sync status is not enabled")
	}

	running, err := d.redisClient.Exist(ctx, common.RedisKeyGuildSyncLock)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check guild sync lock: %v", err)
		return nil, errorx.Unknown
	}

	var report model.GuildSyncReport
	if err := d.redisClient.GetObj(ctx, common.RedisKeyGuildSyncReport, &report); err != nil {
		if xredis.IsNil(err) {
			return &model.GetGuildSyncStatusResponse{Running: running}, nil
		}

		xcontext.Logger(ctx).Errorf("Cannot get guild sync report: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetGuildSyncStatusResponse{Running: running, LastReport: &report}, nil
}
