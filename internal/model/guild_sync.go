package model

import "time"

type GuildSyncReport struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Users          int `json:"users"`
	Refreshed      int `json:"refreshed"`
	RefreshFailed  int `json:"refresh_failed"`
	SkippedNoToken int `json:"skipped_no_token"`

	GuildScanned bool   `json:"guild_scanned"`
	GuildMembers int    `json:"guild_members"`
	RolesRevoked int    `json:"roles_revoked"`
	GuildError   string `json:"guild_error,omitempty"`
}

type GetGuildSyncStatusRequest struct{}

type GetGuildSyncStatusResponse struct {
	Running    bool             `json:"running"`
	LastReport *GuildSyncReport `json:"last_report"`
}
