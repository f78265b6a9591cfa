package testutil

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/questx-lab/social-discord/pkg/api/discord"
	"github.com/questx-lab/social-discord/pkg/idutil"
)

type MockDiscordEndpoint struct {
	GetMeFunc            func(ctx context.Context, userToken string) (discord.User, error)
	ListGuildMembersFunc func(ctx context.Context, guildID string, limit int, after string) ([]discord.Member, error)
	GetGuildMemberFunc   func(ctx context.Context, guildID, userID string) (discord.Member, bool, error)
	AddGuildMemberFunc   func(ctx context.Context, guildID, userID, userToken string) (bool, error)
	GetGatewayBotFunc    func(ctx context.Context) error
	RequestFunc          func(ctx context.Context, path, userToken string) (any, error)
}

func (e *MockDiscordEndpoint) GetMe(ctx context.Context, userToken string) (discord.User, error) {
	if e.GetMeFunc != nil {
		return e.GetMeFunc(ctx, userToken)
	}

	return discord.User{}, errors.New("not implemented")
}

func (e *MockDiscordEndpoint) ListGuildMembers(
	ctx context.Context, guildID string, limit int, after string,
) ([]discord.Member, error) {
	if e.ListGuildMembersFunc != nil {
		return e.ListGuildMembersFunc(ctx, guildID, limit, after)
	}

	return nil, errors.New("not implemented")
}

func (e *MockDiscordEndpoint) GetGuildMember(ctx context.Context, guildID, userID string) (discord.Member, bool, error) {
	if e.GetGuildMemberFunc != nil {
		return e.GetGuildMemberFunc(ctx, guildID, userID)
	}

	return discord.Member{}, false, errors.New("not implemented")
}

func (e *MockDiscordEndpoint) AddGuildMember(ctx context.Context, guildID, userID, userToken string) (bool, error) {
	if e.AddGuildMemberFunc != nil {
		return e.AddGuildMemberFunc(ctx, guildID, userID, userToken)
	}

	return false, errors.New("not implemented")
}

func (e *MockDiscordEndpoint) GetGatewayBot(ctx context.Context) error {
	if e.GetGatewayBotFunc != nil {
		return e.GetGatewayBotFunc(ctx)
	}

	return errors.New("not implemented")
}

func (e *MockDiscordEndpoint) Request(ctx context.Context, path, userToken string) (any, error) {
	if e.RequestFunc != nil {
		return e.RequestFunc(ctx, path, userToken)
	}

	return nil, errors.New("not implemented")
}

// MockGuild returns a ListGuildMembers function serving the given ids as a paginated guild,
// ordered by id like Discord does. Every call is recorded into calls when it is not nil.
func MockGuild(ids []string, calls *[]string) func(context.Context, string, int, string) ([]discord.Member, error) {
	return func(ctx context.Context, guildID string, limit int, after string) ([]discord.Member, error) {
		if calls != nil {
			*calls = append(*calls, after)
		}

		sorted := make([]snowflake.ID, 0, len(ids))
		for _, id := range ids {
			sorted = append(sorted, mustParseSnowflake(id))
		}
		idutil.SortSnowflakes(sorted)

		var cursor snowflake.ID
		if after != "" {
			cursor = mustParseSnowflake(after)
		}

		var members []discord.Member
		for _, id := range sorted {
			if id <= cursor {
				continue
			}

			if len(members) == limit {
				break
			}

			members = append(members, discord.Member{User: discord.User{ID: id.String()}})
		}

		return members, nil
	}
}

func mustParseSnowflake(id string) snowflake.ID {
	sf, err := idutil.ParseSnowflake(id)
	if err != nil {
		panic(err)
	}

	return sf
}
