package authenticator

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2"
)

const avatarURL = "https://cdn.discordapp.com/avatars/%s/%s%s"

type OAuth2User struct {
	ID         string
	Username   string
	Email      string
	AvatarHash string
}

// AvatarURL returns the CDN url of the user avatar, animated avatars (hash prefixed by a_) are
// served as gif.
func (u OAuth2User) AvatarURL() string {
	if u.AvatarHash == "" {
		return ""
	}

	ext := ".png"
	if strings.HasPrefix(u.AvatarHash, "a_") {
		ext = ".gif"
	}

	return fmt.Sprintf(avatarURL, u.ID, u.AvatarHash, ext)
}

type IOAuth2Service interface {
	Service() string
	AuthCodeURL(state string) string
	ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error)
	ExchangeRefreshToken(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	FetchResourceOwner(ctx context.Context, accessToken string) (OAuth2User, error)
}
