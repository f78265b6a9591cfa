package authenticator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/questx-lab/social-discord/config"
	"github.com/questx-lab/social-discord/pkg/api/discord"
	"github.com/questx-lab/social-discord/pkg/xcontext"
	"golang.org/x/exp/slices"
	"golang.org/x/oauth2"
)

const DiscordService = "social_discord"

var ErrNoRefreshToken = errors.New("no refresh token")

var discordEndpoint = oauth2.Endpoint{
	AuthURL:   "https://discord.com/oauth2/authorize",
	TokenURL:  "https://discord.com/api/oauth2/token",
	AuthStyle: oauth2.AuthStyleInParams,
}

var defaultScopes = []string{"identify", "email", "connections", "guilds", "guilds.join"}

type discordOAuth2 struct {
	oauth2.Config

	endpoint discord.IEndpoint
}

func NewDiscordOAuth2(cfg config.DiscordConfigs, endpoint discord.IEndpoint) *discordOAuth2 {
	return &discordOAuth2{
		Config: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     discordEndpoint,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       MergeScopes(cfg.Scopes),
		},
		endpoint: endpoint,
	}
}

func (a *discordOAuth2) Service() string {
	return DiscordService
}

func (a *discordOAuth2) AuthCodeURL(state string) string {
	return a.Config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "consent"))
}

func (a *discordOAuth2) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := a.Config.Exchange(withHTTPClient(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("cannot exchange authorization code: %w", err)
	}

	return token, nil
}

func (a *discordOAuth2) ExchangeRefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error) {
	if refreshToken == "" {
		return nil, ErrNoRefreshToken
	}

	// An empty access token is never valid, so the source always hits the token endpoint.
	token, err := a.Config.TokenSource(withHTTPClient(ctx), &oauth2.Token{RefreshToken: refreshToken}).Token()
	if err != nil {
		return nil, fmt.Errorf("cannot exchange refresh token: %w", err)
	}

	return token, nil
}

func (a *discordOAuth2) FetchResourceOwner(ctx context.Context, accessToken string) (OAuth2User, error) {
	user, err := a.endpoint.GetMe(ctx, accessToken)
	if err != nil {
		return OAuth2User{}, err
	}

	return OAuth2User{
		ID:         user.ID,
		Username:   user.Username,
		Email:      user.Email,
		AvatarHash: user.Avatar,
	}, nil
}

// MergeScopes appends the configured scopes to the default ones, skipping blanks and
// duplicates.
func MergeScopes(extra []string) []string {
	scopes := slices.Clone(defaultScopes)
	for _, s := range extra {
		s = strings.TrimSpace(s)
		if s == "" || slices.Contains(scopes, s) {
			continue
		}

		scopes = append(scopes, s)
	}

	return scopes
}

func withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, xcontext.HTTPClient(ctx))
}
