package common

const DiscordLoginTopic = "discord_login"
