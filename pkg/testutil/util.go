package testutil

import (
	"context"
	"time"

	"github.com/questx-lab/social-discord/config"
	"github.com/questx-lab/social-discord/migration"
	"github.com/questx-lab/social-discord/pkg/jwt"
	"github.com/questx-lab/social-discord/pkg/logger"
	"github.com/questx-lab/social-discord/pkg/session"
	"github.com/questx-lab/social-discord/pkg/xcontext"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func MockConfigs() config.Configs {
	return config.Configs{
		Env: "test",
		ApiServer: config.APIServerConfigs{
			LoginRedirectURL: "http://localhost/home",
		},
		Auth: config.AuthConfigs{
			TokenSecret: "secret",
			AccessToken: config.TokenConfigs{
				Name:       "access_token",
				Expiration: time.Minute,
			},
			AdminRole: "administrator",
		},
		Session: config.SessionConfigs{
			Secret: "session-secret",
			Name:   "session",
		},
		Discord: config.DiscordConfigs{
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RedirectURL:  "http://localhost/user/login/discord/callback",
			BotToken:     "bot-token",
			GuildID:      "guild",
			AddRoles:     []string{"discord_member", "verified"},
		},
		Cron: config.CronConfigs{
			GuildSyncInterval: time.Hour,
			GuildSyncLockTTL:  time.Minute,
			GuildSyncPageSize: 1000,
		},
	}
}

func MockContext() context.Context {
	return MockContextWithConfigs(MockConfigs())
}

func MockContextWithConfigs(cfg config.Configs) context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	// Every connection to :memory: opens a new empty database.
	sqlDB, err := db.DB()
	if err != nil {
		panic(err)
	}
	sqlDB.SetMaxOpenConns(1)

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLogger(logger.ERROR))
	ctx = xcontext.WithTokenEngine(ctx, jwt.NewTokenEngine(cfg.Auth.TokenSecret))
	ctx = xcontext.WithSessionStore(ctx, session.NewCookieStore(cfg.Session.Name, []byte(cfg.Session.Secret)))
	ctx = xcontext.WithDB(ctx, db)

	if err := migration.AutoMigrate(ctx); err != nil {
		panic(err)
	}

	return ctx
}

func MockContextWithUserID(ctx context.Context, userID string) context.Context {
	return xcontext.WithRequestUserID(ctx, userID)
}
