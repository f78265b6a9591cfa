package main

import (
	"os/signal"
	"syscall"

	"github.com/questx-lab/social-discord/internal/domain/cron"
	"github.com/questx-lab/social-discord/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCron(*cli.Context) error {
	s.loadDatabase()
	s.migrateDB()
	s.loadEndpoint()
	s.loadRedisClient()
	s.loadRepos()
	s.startPrometheus()

	ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronJobManager := cron.NewCronJobManager()
	cronJobManager.Register(s.newGuildMembershipCronJob())
	cronJobManager.Start(ctx)

	return nil
}

func (s *srv) newGuildMembershipCronJob() *cron.GuildMembershipCronJob {
	return cron.NewGuildMembershipCronJob(
		xcontext.Configs(s.ctx).Cron,
		s.socialAuthRepo,
		s.userRoleRepo,
		s.oauth2Service,
		s.discordEndpoint,
		s.redisClient,
	)
}
