package model

type User struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	AvatarURL string   `json:"avatar_url"`
	Status    string   `json:"status"`
	Roles     []string `json:"roles"`
	DiscordID string   `json:"discord_id,omitempty"`
}

type GetMeRequest struct{}

type GetMeResponse User
