package model

import (
	"context"
	"net/http"
	"time"

	"github.com/questx-lab/social-discord/pkg/xcontext"
)

const SessionStateKey = "discord_state"

type AccessToken struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Login with Discord
type LoginDiscordRequest struct{}

type LoginDiscordResponse struct {
	RedirectURL string `json:"redirect_url"`
	State       string `json:"-"`
}

func (r LoginDiscordResponse) RedirectInfo() (int, string) {
	return http.StatusTemporaryRedirect, r.RedirectURL
}

func (r LoginDiscordResponse) SessionInfo() map[string]any {
	return map[string]any{SessionStateKey: r.State}
}

// Discord callback
type CallbackDiscordRequest struct {
	Code             string `json:"code"`
	State            string `json:"state"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type CallbackDiscordResponse struct {
	User        User   `json:"user"`
	AccessToken string `json:"access_token"`
	RedirectURL string `json:"-"`
}

// RedirectInfo returns a zero code when no redirect url is configured, the response is then
// rendered as json.
func (r CallbackDiscordResponse) RedirectInfo() (int, string) {
	if r.RedirectURL == "" {
		return 0, ""
	}

	return http.StatusTemporaryRedirect, r.RedirectURL
}

func (r CallbackDiscordResponse) CookieInfo(ctx context.Context) []http.Cookie {
	cfg := xcontext.Configs(ctx).Auth.AccessToken
	return []http.Cookie{
		{
			Name:     cfg.Name,
			Value:    r.AccessToken,
			Path:     "/",
			Expires:  time.Now().Add(cfg.Expiration),
			Secure:   true,
			HttpOnly: false,
		},
	}
}

// The state is used once.
func (r CallbackDiscordResponse) SessionInfo() map[string]any {
	return map[string]any{SessionStateKey: nil}
}

// Logout
type LogoutRequest struct{}

type LogoutResponse struct{}

func (r LogoutResponse) CookieInfo(ctx context.Context) []http.Cookie {
	return []http.Cookie{
		{
			Name:    xcontext.Configs(ctx).Auth.AccessToken.Name,
			Value:   "",
			Path:    "/",
			Expires: time.Unix(0, 0),
			MaxAge:  -1,
		},
	}
}

func (r LogoutResponse) SessionInfo() map[string]any {
	return map[string]any{SessionStateKey: nil}
}
