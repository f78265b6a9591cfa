package common

const (
	RedisKeyGuildSyncLock   = "discord:guild_sync:lock"
	RedisKeyGuildSyncReport = "discord:guild_sync:report"
)
