package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`

	Database   DatabaseConfigs   `toml:"database"`
	ApiServer  APIServerConfigs  `toml:"api_server"`
	Auth       AuthConfigs       `toml:"auth"`
	Session    SessionConfigs    `toml:"session"`
	Discord    DiscordConfigs    `toml:"discord"`
	Cron       CronConfigs       `toml:"cron"`
	Redis      RedisConfigs      `toml:"redis"`
	Kafka      KafkaConfigs      `toml:"kafka"`
	Prometheus PrometheusConfigs `toml:"prometheus"`
}

type DatabaseConfigs struct {
	// Driver is either "mysql" or "sqlite".
	Driver   string `toml:"driver"`
	Host     string `toml:"host"`
	Port     string `toml:"port"`
	Database string `toml:"database"`
	User     string `toml:"user"`
	Password string `toml:"password"`

	// File is the sqlite database path, ignored by mysql.
	File string `toml:"file"`
}

func (d *DatabaseConfigs) ConnectionString() string {
	if d.Driver == "sqlite" {
		return d.File
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type ServerConfigs struct {
	Host string `toml:"host"`
	Port string `toml:"port"`
	Cert string `toml:"cert"`
	Key  string `toml:"key"`
}

func (c ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

type APIServerConfigs struct {
	ServerConfigs

	AllowedOrigins []string `toml:"allowed_origins"`

	// LoginRedirectURL is where the browser lands after a successful login.
	LoginRedirectURL string `toml:"login_redirect_url"`
}

type AuthConfigs struct {
	TokenSecret string       `toml:"token_secret"`
	AccessToken TokenConfigs `toml:"access_token"`

	// AdminRole is the local role allowed to call administrative endpoints.
	AdminRole string `toml:"admin_role"`
}

type TokenConfigs struct {
	Name       string        `toml:"name"`
	Expiration time.Duration `toml:"expiration"`
}

type SessionConfigs struct {
	Secret string `toml:"secret"`
	Name   string `toml:"name"`
}

type DiscordConfigs struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURL  string `toml:"redirect_url"`

	BotToken string `toml:"bot_token"`

	// GuildID is optional. An empty value disables joining the guild at login and the
	// membership pass of the guild sync job.
	GuildID string `toml:"guild_id"`

	// AddRoles are the local roles granted at login and revoked when the user leaves the
	// guild.
	AddRoles []string `toml:"add_roles"`

	// Scopes are requested in addition to the default scopes.
	Scopes []string `toml:"scopes"`

	// Endpoints are requested with the user token at the first login, each one in the format
	// "path|name". The responses are stored in the additional data under the given name.
	Endpoints []string `toml:"endpoints"`
}

type CronConfigs struct {
	GuildSyncInterval time.Duration `toml:"guild_sync_interval"`
	GuildSyncRunNow   bool          `toml:"guild_sync_run_now"`
	GuildSyncLockTTL  time.Duration `toml:"guild_sync_lock_ttl"`
	GuildSyncPageSize int           `toml:"guild_sync_page_size"`
}

type RedisConfigs struct {
	Addr string `toml:"addr"`
}

type KafkaConfigs struct {
	Addr    string `toml:"addr"`
	GroupID string `toml:"group_id"`
}

type PrometheusConfigs struct {
	ServerConfigs
}
