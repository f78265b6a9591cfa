package cron

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"github.com/questx-lab/social-discord/config"
	"github.com/questx-lab/social-discord/internal/common"
	"github.com/questx-lab/social-discord/internal/entity"
	"github.com/questx-lab/social-discord/internal/model"
	"github.com/questx-lab/social-discord/internal/repository"
	"github.com/questx-lab/social-discord/pkg/api/discord"
	"github.com/questx-lab/social-discord/pkg/authenticator"
	"github.com/questx-lab/social-discord/pkg/idutil"
	"github.com/questx-lab/social-discord/pkg/xcontext"
	"github.com/questx-lab/social-discord/pkg/xredis"
)

const (
	defaultGuildSyncInterval = 24 * time.Hour
	defaultGuildSyncLockTTL  = time.Hour
	maxGuildMembersPageSize  = 1000
	maxRateLimitRetries      = 3
)

var ErrGuildSyncRunning = errors.New("guild sync is already running")

// GuildMembershipCronJob refreshes the stored Discord tokens and revokes the granted roles of
// the users who left the configured guild.
type GuildMembershipCronJob struct {
	cfg config.CronConfigs

	socialAuthRepo  repository.SocialAuthRepository
	userRoleRepo    repository.UserRoleRepository
	oauth2Service   authenticator.IOAuth2Service
	discordEndpoint discord.IEndpoint

	// redisClient is optional, the job runs without a lock when it is nil.
	redisClient xredis.Client
}

func NewGuildMembershipCronJob(
	cfg config.CronConfigs,
	socialAuthRepo repository.SocialAuthRepository,
	userRoleRepo repository.UserRoleRepository,
	oauth2Service authenticator.IOAuth2Service,
	discordEndpoint discord.IEndpoint,
	redisClient xredis.Client,
) *GuildMembershipCronJob {
	return &GuildMembershipCronJob{
		cfg:             cfg,
		socialAuthRepo:  socialAuthRepo,
		userRoleRepo:    userRoleRepo,
		oauth2Service:   oauth2Service,
		discordEndpoint: discordEndpoint,
		redisClient:     redisClient,
	}
}

func (job *GuildMembershipCronJob) Do(ctx context.Context) {
	report, err := job.Run(ctx)
	if err != nil {
		if errors.Is(err, ErrGuildSyncRunning) {
			xcontext.Logger(ctx).Infof("Skip guild sync: %v", err)
		} else {
			xcontext.Logger(ctx).Errorf("Cannot run guild sync: %v", err)
		}
		return
	}

	xcontext.Logger(ctx).Infof("Guild sync finished: users=%d refreshed=%d failed=%d "+
		"no_token=%d members=%d revoked=%d guild_error=%q",
		report.Users, report.Refreshed, report.RefreshFailed, report.SkippedNoToken,
		report.GuildMembers, report.RolesRevoked, report.GuildError)
}

func (job *GuildMembershipCronJob) RunNow() bool {
	return job.cfg.GuildSyncRunNow
}

func (job *GuildMembershipCronJob) Next() time.Time {
	interval := job.cfg.GuildSyncInterval
	if interval <= 0 {
		interval = defaultGuildSyncInterval
	}

	return time.Now().Add(interval)
}

// Run executes one sync pass. It only fails when another pass holds the lock or the stored
// associations cannot be loaded, every other failure is recorded into the report.
func (job *GuildMembershipCronJob) Run(ctx context.Context) (*model.GuildSyncReport, error) {
	release, err := job.acquireLock(ctx)
	if err != nil {
		return nil, err
	}
	defer release()

	report := &model.GuildSyncReport{StartedAt: time.Now()}
	cfg := xcontext.Configs(ctx)

	records, err := job.socialAuthRepo.GetAll(ctx, job.oauth2Service.Service())
	if err != nil {
		return nil, err
	}
	report.Users = len(records)

	var members map[snowflake.ID]struct{}
	if cfg.Discord.GuildID == "" {
		xcontext.Logger(ctx).Debugf("No guild is configured, skip the membership pass")
	} else if cfg.Discord.BotToken == "" {
		report.GuildError = "bot token is not configured"
		xcontext.Logger(ctx).Warnf("Guild %s is configured without a bot token, skip the membership pass",
			cfg.Discord.GuildID)
	} else {
		members, err = BuildGuildSnapshot(ctx, job.discordEndpoint, cfg.Discord.GuildID, job.cfg.GuildSyncPageSize)
		if err != nil {
			report.GuildError = err.Error()
			xcontext.Logger(ctx).Errorf("Cannot list members of guild %s: %v", cfg.Discord.GuildID, err)
		} else {
			report.GuildScanned = true
			report.GuildMembers = len(members)
			common.PromGauges[common.DiscordGuildMembersScanned].
				WithLabelValues(cfg.Discord.GuildID).Set(float64(len(members)))
		}
	}

	for i := range records {
		if ctx.Err() != nil {
			break
		}

		job.refreshToken(ctx, &records[i], report)
	}

	if report.GuildScanned && len(cfg.Discord.AddRoles) > 0 {
		for i := range records {
			if ctx.Err() != nil {
				break
			}

			job.revokeRoles(ctx, &records[i], members, cfg.Discord.AddRoles, report)
		}
	}

	report.FinishedAt = time.Now()
	common.PromHistograms[common.DiscordGuildSyncDurationSecond].
		WithLabelValues(strconv.FormatBool(report.GuildError != "")).
		Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())

	if job.redisClient != nil {
		if err := job.redisClient.SetObj(ctx, common.RedisKeyGuildSyncReport, report, 0); err != nil {
			xcontext.Logger(ctx).Warnf("Cannot store guild sync report: %v", err)
		}
	}

	return report, nil
}

func (job *GuildMembershipCronJob) acquireLock(ctx context.Context) (func(), error) {
	if job.redisClient == nil {
		return func() {}, nil
	}

	ttl := job.cfg.GuildSyncLockTTL
	if ttl <= 0 {
		ttl = defaultGuildSyncLockTTL
	}

	owner := uuid.NewString()
	ok, err := job.redisClient.SetNX(ctx, common.RedisKeyGuildSyncLock, owner, ttl)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot acquire guild sync lock, run without it: %v", err)
		return func() {}, nil
	}

	if !ok {
		return nil, ErrGuildSyncRunning
	}

	return func() {
		// The lock must be released even if ctx is already cancelled. If it expired and was
		// taken by another run, leave it.
		released, err := job.redisClient.DelIfEqual(
			xcontext.WithoutCancel(ctx), common.RedisKeyGuildSyncLock, owner)
		if err != nil {
			xcontext.Logger(ctx).Warnf("Cannot release guild sync lock: %v", err)
		} else if !released {
			xcontext.Logger(ctx).Warnf("Guild sync lock expired before the run finished")
		}
	}, nil
}

func (job *GuildMembershipCronJob) refreshToken(
	ctx context.Context, record *entity.SocialAuth, report *model.GuildSyncReport,
) {
	counter := common.PromCounters[common.DiscordTokenRefreshTotal]

	data, err := record.Data()
	if err != nil {
		xcontext.Logger(ctx).Warnf("Malformed additional data of user %s: %v", record.UserID, err)
	}

	if data.RefreshToken == "" {
		report.SkippedNoToken++
		counter.WithLabelValues("skipped").Inc()
		return
	}

	token, err := job.oauth2Service.ExchangeRefreshToken(ctx, data.RefreshToken)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot refresh token of user %s: %v", record.UserID, err)
		report.RefreshFailed++
		counter.WithLabelValues("failure").Inc()
		return
	}

	if token.RefreshToken != "" {
		data.RefreshToken = token.RefreshToken
	}

	if err := record.SetData(data); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot encode additional data of user %s: %v", record.UserID, err)
		report.RefreshFailed++
		counter.WithLabelValues("failure").Inc()
		return
	}

	err = job.socialAuthRepo.UpdateTokens(ctx, record.ID, token.AccessToken, record.AdditionalData)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot store refreshed token of user %s: %v", record.UserID, err)
		report.RefreshFailed++
		counter.WithLabelValues("failure").Inc()
		return
	}

	record.AccessToken = token.AccessToken
	report.Refreshed++
	counter.WithLabelValues("success").Inc()
}

func (job *GuildMembershipCronJob) revokeRoles(
	ctx context.Context,
	record *entity.SocialAuth,
	members map[snowflake.ID]struct{},
	roles []string,
	report *model.GuildSyncReport,
) {
	id, err := idutil.ParseSnowflake(record.ProviderUserID)
	if err != nil {
		xcontext.Logger(ctx).Warnf("Skip revoking roles of user %s: %v", record.UserID, err)
		return
	}

	if _, ok := members[id]; ok {
		return
	}

	for _, role := range roles {
		n, err := job.userRoleRepo.Remove(ctx, record.UserID, role)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot revoke role %s of user %s: %v", role, record.UserID, err)
			continue
		}

		if n > 0 {
			xcontext.Logger(ctx).Infof("Revoked role %s of user %s who left the guild", role, record.UserID)
			report.RolesRevoked += int(n)
			common.PromCounters[common.DiscordRolesRevokedTotal].WithLabelValues(role).Add(float64(n))
		}
	}
}

// BuildGuildSnapshot lists every member of the guild page by page. The cursor of the next page
// is the largest id of the current one and must grow, a page shorter than pageSize is the
// last page.
func BuildGuildSnapshot(
	ctx context.Context, endpoint discord.IEndpoint, guildID string, pageSize int,
) (map[snowflake.ID]struct{}, error) {
	if pageSize <= 0 || pageSize > maxGuildMembersPageSize {
		pageSize = maxGuildMembersPageSize
	}

	members := make(map[snowflake.ID]struct{})
	after := ""
	cursor := snowflake.ID(0)
	retries := 0
	for {
		page, err := endpoint.ListGuildMembers(ctx, guildID, pageSize, after)
		if err != nil {
			resetAt, ok := discord.IsRateLimit(err)
			if !ok || retries >= maxRateLimitRetries {
				return nil, err
			}

			retries++
			if err := sleepUntil(ctx, resetAt); err != nil {
				return nil, err
			}
			continue
		}
		retries = 0

		ids := make([]snowflake.ID, 0, len(page))
		for _, member := range page {
			id, err := idutil.ParseSnowflake(member.User.ID)
			if err != nil {
				return nil, fmt.Errorf("invalid member of guild %s: %w", guildID, err)
			}

			ids = append(ids, id)
			members[id] = struct{}{}
		}

		if len(page) < pageSize {
			return members, nil
		}

		idutil.SortSnowflakes(ids)
		last := ids[len(ids)-1]
		if last <= cursor {
			return nil, fmt.Errorf("guild %s did not move the cursor past %s", guildID, after)
		}
		cursor, after = last, last.String()
	}
}

func sleepUntil(ctx context.Context, t time.Time) error {
	timer := time.NewTimer(time.Until(t))
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
