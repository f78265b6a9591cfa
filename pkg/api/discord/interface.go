package discord

import "context"

type IEndpoint interface {
	// GetMe returns the owner of the user access token.
	GetMe(ctx context.Context, userToken string) (User, error)

	// ListGuildMembers returns at most limit members whose id is greater than after, sorted by
	// id. An empty after starts from the beginning.
	ListGuildMembers(ctx context.Context, guildID string, limit int, after string) ([]Member, error)

	// GetGuildMember returns false if the user is not a member of the guild.
	GetGuildMember(ctx context.Context, guildID, userID string) (Member, bool, error)

	// AddGuildMember adds the user to the guild using the user's access token. It returns
	// false if the user was already a member.
	AddGuildMember(ctx context.Context, guildID, userID, userToken string) (bool, error)

	// GetGatewayBot is used to check that the bot token is valid.
	GetGatewayBot(ctx context.Context) error

	// Request calls a GET API on behalf of the user and returns the decoded body.
	Request(ctx context.Context, path, userToken string) (any, error)
}
