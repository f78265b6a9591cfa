package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/questx-lab/social-discord/config"
	"github.com/questx-lab/social-discord/pkg/logger"
	"github.com/questx-lab/social-discord/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) loadConfig(cctx *cli.Context) error {
	cfg := defaultConfigs()

	if path := cctx.String("config"); path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return err
		}
	}

	overrideByEnv(&cfg)

	s.ctx = context.Background()
	s.ctx = xcontext.WithConfigs(s.ctx, cfg)
	s.ctx = xcontext.WithLogger(s.ctx, logger.NewLogger(logger.ParseLevel(cfg.LogLevel)))
	return nil
}

func defaultConfigs() config.Configs {
	return config.Configs{
		Env:      "local",
		LogLevel: "info",
		Database: config.DatabaseConfigs{
			Driver: "mysql",
			Host:   "localhost",
			Port:   "3306",
		},
		ApiServer: config.APIServerConfigs{
			ServerConfigs: config.ServerConfigs{Port: "8080"},
		},
		Auth: config.AuthConfigs{
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: 24 * time.Hour,
			},
			AdminRole: "administrator",
		},
		Session: config.SessionConfigs{
			Name: "social_discord_session",
		},
		Cron: config.CronConfigs{
			GuildSyncInterval: 24 * time.Hour,
			GuildSyncLockTTL:  time.Hour,
			GuildSyncPageSize: 1000,
		},
		Kafka: config.KafkaConfigs{
			GroupID: "social_discord",
		},
		Prometheus: config.PrometheusConfigs{
			ServerConfigs: config.ServerConfigs{Port: "9090"},
		},
	}
}

func overrideByEnv(cfg *config.Configs) {
	setString(&cfg.Env, "ENV")
	setString(&cfg.LogLevel, "LOG_LEVEL")

	setString(&cfg.Database.Driver, "DB_DRIVER")
	setString(&cfg.Database.Host, "MYSQL_HOST")
	setString(&cfg.Database.Port, "MYSQL_PORT")
	setString(&cfg.Database.Database, "MYSQL_DATABASE")
	setString(&cfg.Database.User, "MYSQL_USER")
	setString(&cfg.Database.Password, "MYSQL_PASSWORD")
	setString(&cfg.Database.File, "SQLITE_FILE")

	setString(&cfg.ApiServer.Host, "API_HOST")
	setString(&cfg.ApiServer.Port, "API_PORT")
	setString(&cfg.ApiServer.LoginRedirectURL, "LOGIN_REDIRECT_URL")
	setList(&cfg.ApiServer.AllowedOrigins, "API_ALLOWED_ORIGINS")

	setString(&cfg.Auth.TokenSecret, "TOKEN_SECRET")
	setString(&cfg.Auth.AdminRole, "ADMIN_ROLE")
	setString(&cfg.Session.Secret, "SESSION_SECRET")

	setString(&cfg.Discord.ClientID, "DISCORD_CLIENT_ID")
	setString(&cfg.Discord.ClientSecret, "DISCORD_CLIENT_SECRET")
	setString(&cfg.Discord.RedirectURL, "DISCORD_REDIRECT_URL")
	setString(&cfg.Discord.BotToken, "DISCORD_BOT_TOKEN")
	setString(&cfg.Discord.GuildID, "DISCORD_GUILD_ID")
	setList(&cfg.Discord.AddRoles, "DISCORD_ADD_ROLES")
	setList(&cfg.Discord.Scopes, "DISCORD_SCOPES")

	setString(&cfg.Redis.Addr, "REDIS_ADDRESS")
	setString(&cfg.Kafka.Addr, "KAFKA_ADDRESS")
}

func setString(field *string, key string) {
	if value, ok := os.LookupEnv(key); ok {
		*field = value
	}
}

// setList reads a comma separated list.
func setList(field *[]string, key string) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return
	}

	var list []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}

	*field = list
}
