package main

import (
	"context"
	"net/http"

	"github.com/questx-lab/social-discord/internal/common"
	"github.com/questx-lab/social-discord/internal/domain"
	"github.com/questx-lab/social-discord/internal/repository"
	"github.com/questx-lab/social-discord/migration"
	"github.com/questx-lab/social-discord/pkg/api/discord"
	"github.com/questx-lab/social-discord/pkg/authenticator"
	"github.com/questx-lab/social-discord/pkg/jwt"
	"github.com/questx-lab/social-discord/pkg/kafka"
	"github.com/questx-lab/social-discord/pkg/pubsub"
	"github.com/questx-lab/social-discord/pkg/router"
	"github.com/questx-lab/social-discord/pkg/session"
	"github.com/questx-lab/social-discord/pkg/xcontext"
	"github.com/questx-lab/social-discord/pkg/xredis"
	"github.com/urfave/cli/v2"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type srv struct {
	app *cli.App
	ctx context.Context

	userRepo       repository.UserRepository
	userRoleRepo   repository.UserRoleRepository
	socialAuthRepo repository.SocialAuthRepository

	authDomain      domain.AuthDomain
	userDomain      domain.UserDomain
	guildSyncDomain domain.GuildSyncDomain

	discordEndpoint     discord.IEndpoint
	oauth2Service       authenticator.IOAuth2Service
	discordLoginHandler *domain.DiscordLoginHandler

	redisClient xredis.Client
	publisher   pubsub.Publisher

	router *router.Router
	server *http.Server
}

func (s *srv) newDatabase() *gorm.DB {
	cfg := xcontext.Configs(s.ctx).Database

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(cfg.ConnectionString())
	default:
		dialector = mysql.New(mysql.Config{
			DSN:                       cfg.ConnectionString(),
			DefaultStringSize:         256,
			DisableDatetimePrecision:  true,
			DontSupportRenameIndex:    true,
			DontSupportRenameColumn:   true,
			SkipInitializeWithVersion: false,
		})
	}

	gormCfg := &gorm.Config{}
	if xcontext.Configs(s.ctx).Env != "local" {
		gormCfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		panic(err)
	}

	return db
}

func (s *srv) loadDatabase() {
	s.ctx = xcontext.WithDB(s.ctx, s.newDatabase())
}

func (s *srv) migrateDB() {
	if err := migration.AutoMigrate(s.ctx); err != nil {
		panic(err)
	}
}

func (s *srv) loadTokenEngine() {
	s.ctx = xcontext.WithTokenEngine(s.ctx, jwt.NewTokenEngine(xcontext.Configs(s.ctx).Auth.TokenSecret))
}

func (s *srv) loadSessionStore() {
	cfg := xcontext.Configs(s.ctx).Session
	s.ctx = xcontext.WithSessionStore(s.ctx, session.NewCookieStore(cfg.Name, []byte(cfg.Secret)))
}

func (s *srv) loadEndpoint() {
	cfg := xcontext.Configs(s.ctx).Discord
	s.discordEndpoint = discord.New(cfg)
	s.oauth2Service = authenticator.NewDiscordOAuth2(cfg, s.discordEndpoint)
}

// loadRedisClient leaves the client nil when no address is configured.
func (s *srv) loadRedisClient() {
	if xcontext.Configs(s.ctx).Redis.Addr == "" {
		xcontext.Logger(s.ctx).Warnf("Redis is not configured, the guild sync runs without lock")
		return
	}

	redisClient, err := xredis.NewClient(s.ctx)
	if err != nil {
		panic(err)
	}

	s.redisClient = redisClient
}

func (s *srv) loadRepos() {
	s.userRepo = repository.NewUserRepository()
	s.userRoleRepo = repository.NewUserRoleRepository()
	s.socialAuthRepo = repository.NewSocialAuthRepository()
}

func (s *srv) loadLoginHandler() {
	s.discordLoginHandler = domain.NewDiscordLoginHandler(s.userRoleRepo, s.discordEndpoint)
}

// loadPublisher uses kafka if it is configured, otherwise the login events are handled in
// process.
func (s *srv) loadPublisher() {
	cfg := xcontext.Configs(s.ctx).Kafka
	if cfg.Addr != "" {
		publisher, err := kafka.NewPublisher("api", []string{cfg.Addr})
		if err != nil {
			panic(err)
		}

		s.publisher = publisher
		return
	}

	xcontext.Logger(s.ctx).Infof("Kafka is not configured, login events are handled in process")
	localPublisher := pubsub.NewLocalPublisher()
	localPublisher.Register(common.DiscordLoginTopic, s.discordLoginHandler.Subscribe)
	s.publisher = localPublisher
}

func (s *srv) loadDomains() {
	s.authDomain = domain.NewAuthDomain(s.userRepo, s.userRoleRepo, s.socialAuthRepo,
		s.oauth2Service, s.discordEndpoint, s.publisher)
	s.userDomain = domain.NewUserDomain(s.userRepo, s.userRoleRepo, s.socialAuthRepo)
	s.guildSyncDomain = domain.NewGuildSyncDomain(s.redisClient)
}
