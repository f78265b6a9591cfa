package model

// LoginEvent is published after a successful Discord login.
type LoginEvent struct {
	UserID        string `json:"user_id"`
	DiscordUserID string `json:"discord_user_id"`
	AccessToken   string `json:"access_token"`
}
