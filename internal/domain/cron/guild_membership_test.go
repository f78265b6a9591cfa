package cron

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/questx-lab/social-discord/config"
	"github.com/questx-lab/social-discord/internal/common"
	"github.com/questx-lab/social-discord/internal/entity"
	"github.com/questx-lab/social-discord/internal/model"
	"github.com/questx-lab/social-discord/internal/repository"
	"github.com/questx-lab/social-discord/pkg/api"
	"github.com/questx-lab/social-discord/pkg/api/discord"
	"github.com/questx-lab/social-discord/pkg/authenticator"
	"github.com/questx-lab/social-discord/pkg/testutil"
	"github.com/questx-lab/social-discord/pkg/xcontext"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

type guildSyncSuite struct {
	socialAuthRepo repository.SocialAuthRepository
	userRoleRepo   repository.UserRoleRepository
	oauth2Service  *testutil.MockOAuth2Service
	endpoint       *testutil.MockDiscordEndpoint
	redisClient    *testutil.MockRedisClient
	job            *GuildMembershipCronJob
}

func newGuildSyncSuite(ctx context.Context) *guildSyncSuite {
	s := &guildSyncSuite{
		socialAuthRepo: repository.NewSocialAuthRepository(),
		userRoleRepo:   repository.NewUserRoleRepository(),
		oauth2Service:  &testutil.MockOAuth2Service{},
		endpoint:       &testutil.MockDiscordEndpoint{},
		redisClient:    testutil.NewMockRedisClient(),
	}

	// Every refresh succeeds and rotates the refresh token by default.
	s.oauth2Service.ExchangeRefreshTokenFunc = func(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
		return &oauth2.Token{AccessToken: "access-" + refreshToken, RefreshToken: "new-" + refreshToken}, nil
	}

	s.job = NewGuildMembershipCronJob(
		xcontext.Configs(ctx).Cron,
		s.socialAuthRepo,
		s.userRoleRepo,
		s.oauth2Service,
		s.endpoint,
		s.redisClient,
	)

	return s
}

// seedUser stores a user associated with the given Discord id. An empty refreshToken stores
// no token, rawData overrides the additional data when it is not empty.
func seedUser(
	t *testing.T, ctx context.Context, userID, discordID, refreshToken, rawData string, roles ...string,
) {
	err := repository.NewUserRepository().Create(ctx, &entity.User{
		Base:   entity.Base{ID: userID},
		Name:   userID,
		Email:  userID + "@example.com",
		Status: entity.UserActive,
	})
	require.NoError(t, err)

	auth := &entity.SocialAuth{
		Base:           entity.Base{ID: "auth-" + userID},
		UserID:         userID,
		Plugin:         authenticator.DiscordService,
		ProviderUserID: discordID,
		AccessToken:    "old-access",
	}
	if rawData != "" {
		auth.AdditionalData = rawData
	} else if refreshToken != "" {
		require.NoError(t, auth.SetData(entity.SocialAuthData{RefreshToken: refreshToken}))
	}
	require.NoError(t, repository.NewSocialAuthRepository().Create(ctx, auth))

	for _, role := range roles {
		require.NoError(t, repository.NewUserRoleRepository().Add(ctx, userID, role))
	}
}

func requireRoles(t *testing.T, ctx context.Context, userID string, expected ...string) {
	roles, err := repository.NewUserRoleRepository().GetByUserID(ctx, userID)
	require.NoError(t, err)
	if len(expected) == 0 {
		require.Empty(t, roles)
		return
	}
	require.Equal(t, expected, roles)
}

func requireRefreshToken(t *testing.T, ctx context.Context, userID, accessToken, refreshToken string) {
	auth, err := repository.NewSocialAuthRepository().GetByUserID(ctx, authenticator.DiscordService, userID)
	require.NoError(t, err)
	require.Equal(t, accessToken, auth.AccessToken)

	data, err := auth.Data()
	require.NoError(t, err)
	require.Equal(t, refreshToken, data.RefreshToken)
}

func TestGuildMembershipCronJob_RevokesUsersWhoLeft(t *testing.T) {
	ctx := testutil.MockContext()
	s := newGuildSyncSuite(ctx)

	seedUser(t, ctx, "user1", "10", "r1", "", "discord_member", "verified")
	seedUser(t, ctx, "user2", "40", "r2", "", "discord_member", "verified", "writer")

	var calls []string
	s.endpoint.ListGuildMembersFunc = testutil.MockGuild([]string{"10", "20", "30"}, &calls)

	report, err := s.job.Run(ctx)
	require.NoError(t, err)

	require.Equal(t, 2, report.Users)
	require.Equal(t, 2, report.Refreshed)
	require.True(t, report.GuildScanned)
	require.Equal(t, 3, report.GuildMembers)
	require.Equal(t, 2, report.RolesRevoked)
	require.Empty(t, report.GuildError)
	require.Equal(t, []string{""}, calls)

	requireRoles(t, ctx, "user1", "discord_member", "verified")
	requireRoles(t, ctx, "user2", "writer")

	requireRefreshToken(t, ctx, "user1", "access-r1", "new-r1")
	requireRefreshToken(t, ctx, "user2", "access-r2", "new-r2")

	// A second run revokes nothing more.
	report, err = s.job.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, report.RolesRevoked)
	requireRoles(t, ctx, "user1", "discord_member", "verified")
	requireRoles(t, ctx, "user2", "writer")
}

func TestGuildMembershipCronJob_Pagination(t *testing.T) {
	ctx := testutil.MockContext()

	var ids []string
	for i := 1; i <= 25; i++ {
		ids = append(ids, fmt.Sprint(1000+i))
	}

	var calls []string
	endpoint := &testutil.MockDiscordEndpoint{ListGuildMembersFunc: testutil.MockGuild(ids, &calls)}

	members, err := BuildGuildSnapshot(ctx, endpoint, "guild", 10)
	require.NoError(t, err)
	require.Len(t, members, 25)
	require.Equal(t, []string{"", "1010", "1020"}, calls)

	// A guild size which is a multiple of the page size ends with an empty page.
	calls = nil
	endpoint.ListGuildMembersFunc = testutil.MockGuild(ids[:20], &calls)
	members, err = BuildGuildSnapshot(ctx, endpoint, "guild", 10)
	require.NoError(t, err)
	require.Len(t, members, 20)
	require.Equal(t, []string{"", "1010", "1020"}, calls)
}

func TestGuildMembershipCronJob_UnorderedPage(t *testing.T) {
	ctx := testutil.MockContext()

	var calls []string
	endpoint := &testutil.MockDiscordEndpoint{
		ListGuildMembersFunc: func(ctx context.Context, guildID string, limit int, after string) ([]discord.Member, error) {
			calls = append(calls, after)
			if after == "" {
				return []discord.Member{
					{User: discord.User{ID: "30"}},
					{User: discord.User{ID: "9"}},
				}, nil
			}
			return []discord.Member{{User: discord.User{ID: "100"}}}, nil
		},
	}

	members, err := BuildGuildSnapshot(ctx, endpoint, "guild", 2)
	require.NoError(t, err)
	require.Len(t, members, 3)

	// The cursor is the numerically largest id, not the last one of the page.
	require.Equal(t, []string{"", "30"}, calls)
}

func TestGuildMembershipCronJob_RateLimit(t *testing.T) {
	ctx := testutil.MockContext()

	// Discord sends the reset with a fraction of second.
	resetAt := time.Now().Add(300 * time.Millisecond)
	resetHeader := strconv.FormatFloat(float64(resetAt.UnixMilli())/1000, 'f', 3, 64)

	var calls int
	generator := &api.MockAPIGenerator{}
	generator.MockClient.GETFunc = func(ctx context.Context, opts ...api.Opt) (*api.Response, error) {
		calls++
		if calls == 1 {
			return &api.Response{
				Code:   http.StatusTooManyRequests,
				Header: http.Header{"X-Ratelimit-Reset": []string{resetHeader}},
				Body:   api.JSON{},
			}, nil
		}

		return &api.Response{
			Code: http.StatusOK,
			Body: api.Array{{"user": map[string]any{"id": "10"}}},
		}, nil
	}

	endpoint := discord.New(config.DiscordConfigs{BotToken: "bot"}).WithAPIGenerator(generator)

	members, err := BuildGuildSnapshot(ctx, endpoint, "guild", 10)
	require.NoError(t, err)
	require.Len(t, members, 1)
	// The second call waited for the fractional reset and reached the API.
	require.Equal(t, 2, calls)
}

func TestGuildMembershipCronJob_RateLimitRetriesExhausted(t *testing.T) {
	ctx := testutil.MockContext()

	var calls int
	endpoint := &testutil.MockDiscordEndpoint{
		ListGuildMembersFunc: func(ctx context.Context, guildID string, limit int, after string) ([]discord.Member, error) {
			calls++
			return nil, discord.NewRateLimitError(time.Now().Add(time.Millisecond))
		},
	}

	_, err := BuildGuildSnapshot(ctx, endpoint, "guild", 10)
	require.ErrorIs(t, err, discord.ErrRateLimit)
	require.Equal(t, maxRateLimitRetries+1, calls)
}

func TestGuildMembershipCronJob_CursorMustGrow(t *testing.T) {
	ctx := testutil.MockContext()

	var calls []string
	endpoint := &testutil.MockDiscordEndpoint{
		ListGuildMembersFunc: func(ctx context.Context, guildID string, limit int, after string) ([]discord.Member, error) {
			calls = append(calls, after)
			switch after {
			case "":
				return []discord.Member{{User: discord.User{ID: "20"}}, {User: discord.User{ID: "30"}}}, nil
			case "30":
				// A full page whose ids are all behind the cursor.
				return []discord.Member{{User: discord.User{ID: "10"}}, {User: discord.User{ID: "20"}}}, nil
			}
			return nil, nil
		},
	}

	_, err := BuildGuildSnapshot(ctx, endpoint, "guild", 2)
	require.Error(t, err)
	require.Equal(t, []string{"", "30"}, calls)
}

func TestGuildMembershipCronJob_RefreshFailureIsIsolated(t *testing.T) {
	ctx := testutil.MockContext()
	s := newGuildSyncSuite(ctx)

	seedUser(t, ctx, "user1", "10", "bad", "", "discord_member")
	seedUser(t, ctx, "user2", "20", "good", "", "discord_member")

	s.oauth2Service.ExchangeRefreshTokenFunc = func(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
		if refreshToken == "bad" {
			return nil, errors.New("invalid_grant")
		}
		return &oauth2.Token{AccessToken: "fresh"}, nil
	}
	s.endpoint.ListGuildMembersFunc = testutil.MockGuild([]string{"10", "20"}, nil)

	report, err := s.job.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Refreshed)
	require.Equal(t, 1, report.RefreshFailed)

	// The failed user keeps the old tokens, the other one keeps its refresh token because the
	// provider did not rotate it.
	requireRefreshToken(t, ctx, "user1", "old-access", "bad")
	requireRefreshToken(t, ctx, "user2", "fresh", "good")

	// Refresh failures never revoke roles.
	requireRoles(t, ctx, "user1", "discord_member")
	requireRoles(t, ctx, "user2", "discord_member")
}

func TestGuildMembershipCronJob_NoRefreshToken(t *testing.T) {
	ctx := testutil.MockContext()
	s := newGuildSyncSuite(ctx)

	seedUser(t, ctx, "user1", "10", "", "")
	seedUser(t, ctx, "user2", "20", "", "{not json")
	seedUser(t, ctx, "user3", "30", "", `{"data":{"guilds":[]}}`)

	s.oauth2Service.ExchangeRefreshTokenFunc = func(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
		t.Fatalf("unexpected refresh with token %q", refreshToken)
		return nil, nil
	}
	s.endpoint.ListGuildMembersFunc = testutil.MockGuild([]string{"10", "20", "30"}, nil)

	report, err := s.job.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 3, report.SkippedNoToken)
	require.Equal(t, 0, report.Refreshed)
}

func TestGuildMembershipCronJob_NoGuildConfigured(t *testing.T) {
	cfg := testutil.MockConfigs()
	cfg.Discord.GuildID = ""
	ctx := testutil.MockContextWithConfigs(cfg)
	s := newGuildSyncSuite(ctx)

	seedUser(t, ctx, "user1", "10", "r1", "", "discord_member")

	s.endpoint.ListGuildMembersFunc = func(ctx context.Context, guildID string, limit int, after string) ([]discord.Member, error) {
		t.Fatal("unexpected guild call")
		return nil, nil
	}

	report, err := s.job.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Refreshed)
	require.False(t, report.GuildScanned)
	requireRoles(t, ctx, "user1", "discord_member")
}

func TestGuildMembershipCronJob_NoRolesConfigured(t *testing.T) {
	cfg := testutil.MockConfigs()
	cfg.Discord.AddRoles = nil
	ctx := testutil.MockContextWithConfigs(cfg)
	s := newGuildSyncSuite(ctx)

	seedUser(t, ctx, "user1", "10", "r1", "", "discord_member")
	s.endpoint.ListGuildMembersFunc = testutil.MockGuild([]string{"20"}, nil)

	report, err := s.job.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, report.RolesRevoked)
	requireRoles(t, ctx, "user1", "discord_member")
}

func TestGuildMembershipCronJob_GuildErrorKeepsRoles(t *testing.T) {
	ctx := testutil.MockContext()
	s := newGuildSyncSuite(ctx)

	seedUser(t, ctx, "user1", "10", "r1", "", "discord_member", "verified")

	var calls []string
	s.endpoint.ListGuildMembersFunc = func(ctx context.Context, guildID string, limit int, after string) ([]discord.Member, error) {
		calls = append(calls, after)
		if after == "" {
			members := make([]discord.Member, limit)
			for i := range members {
				members[i] = discord.Member{User: discord.User{ID: fmt.Sprint(100 + i)}}
			}
			return members, nil
		}
		return nil, errors.New("missing access")
	}

	report, err := s.job.Run(ctx)
	require.NoError(t, err)
	require.False(t, report.GuildScanned)
	require.Equal(t, "missing access", report.GuildError)
	require.Len(t, calls, 2)

	// A partial snapshot never revokes roles, the token refresh still happens.
	requireRoles(t, ctx, "user1", "discord_member", "verified")
	require.Equal(t, 1, report.Refreshed)
}

func TestGuildMembershipCronJob_InvalidProviderUserID(t *testing.T) {
	ctx := testutil.MockContext()
	s := newGuildSyncSuite(ctx)

	seedUser(t, ctx, "user1", "not-a-snowflake", "r1", "", "discord_member")
	s.endpoint.ListGuildMembersFunc = testutil.MockGuild([]string{"10"}, nil)

	report, err := s.job.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, report.RolesRevoked)
	requireRoles(t, ctx, "user1", "discord_member")
}

func TestGuildMembershipCronJob_LockUnavailable(t *testing.T) {
	ctx := testutil.MockContext()
	s := newGuildSyncSuite(ctx)
	s.redisClient.SetNXFunc = func(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
		return false, errors.New("connection refused")
	}
	s.endpoint.ListGuildMembersFunc = testutil.MockGuild([]string{"10"}, nil)
	seedUser(t, ctx, "user1", "10", "refresh", "", "discord_member")

	report, err := s.job.Run(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, report.Refreshed)
	requireRefreshToken(t, ctx, "user1", "access-refresh", "new-refresh")
}

func TestGuildMembershipCronJob_Lock(t *testing.T) {
	ctx := testutil.MockContext()
	s := newGuildSyncSuite(ctx)
	s.endpoint.ListGuildMembersFunc = testutil.MockGuild(nil, nil)

	ok, err := s.redisClient.SetNX(ctx, common.RedisKeyGuildSyncLock, "other", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = s.job.Run(ctx)
	require.ErrorIs(t, err, ErrGuildSyncRunning)

	require.NoError(t, s.redisClient.Del(ctx, common.RedisKeyGuildSyncLock))
	_, err = s.job.Run(ctx)
	require.NoError(t, err)

	// The lock is released and the report is stored after the run.
	exist, err := s.redisClient.Exist(ctx, common.RedisKeyGuildSyncLock)
	require.NoError(t, err)
	require.False(t, exist)

	var report model.GuildSyncReport
	require.NoError(t, s.redisClient.GetObj(ctx, common.RedisKeyGuildSyncReport, &report))
	require.True(t, report.GuildScanned)
}

func TestGuildMembershipCronJob_LockTakenOver(t *testing.T) {
	ctx := testutil.MockContext()
	s := newGuildSyncSuite(ctx)
	s.endpoint.ListGuildMembersFunc = func(ctx context.Context, guildID string, limit int, after string) ([]discord.Member, error) {
		// Simulate the lock expiring and another run taking it.
		require.NoError(t, s.redisClient.Del(ctx, common.RedisKeyGuildSyncLock))
		ok, err := s.redisClient.SetNX(ctx, common.RedisKeyGuildSyncLock, "other", time.Minute)
		require.NoError(t, err)
		require.True(t, ok)
		return nil, nil
	}

	_, err := s.job.Run(ctx)
	require.NoError(t, err)

	exist, err := s.redisClient.Exist(ctx, common.RedisKeyGuildSyncLock)
	require.NoError(t, err)
	require.True(t, exist)
}

func TestGuildMembershipCronJob_ConcurrentRuns(t *testing.T) {
	ctx := testutil.MockContext()
	s := newGuildSyncSuite(ctx)

	started := make(chan struct{})
	release := make(chan struct{})
	s.endpoint.ListGuildMembersFunc = func(ctx context.Context, guildID string, limit int, after string) ([]discord.Member, error) {
		close(started)
		<-release
		return nil, nil
	}

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		_, firstErr = s.job.Run(ctx)
	}()

	<-started
	_, err := s.job.Run(ctx)
	require.ErrorIs(t, err, ErrGuildSyncRunning)

	close(release)
	wg.Wait()
	require.NoError(t, firstErr)
}

func TestGuildMembershipCronJob_Next(t *testing.T) {
	job := NewGuildMembershipCronJob(testutil.MockConfigs().Cron, nil, nil, nil, nil, nil)
	require.WithinDuration(t, time.Now().Add(time.Hour), job.Next(), time.Second)
	require.False(t, job.RunNow())

	job = NewGuildMembershipCronJob(testutil.MockConfigs().Cron, nil, nil, nil, nil, nil)
	job.cfg.GuildSyncInterval = 0
	require.WithinDuration(t, time.Now().Add(24*time.Hour), job.Next(), time.Second)
}
