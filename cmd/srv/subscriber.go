package main

import (
	"errors"
	"os/signal"
	"syscall"

	"github.com/questx-lab/social-discord/internal/common"
	"github.com/questx-lab/social-discord/pkg/kafka"
	"github.com/questx-lab/social-discord/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startSubscriber(*cli.Context) error {
	cfg := xcontext.Configs(s.ctx)
	if cfg.Kafka.Addr == "" {
		return errors.New("kafka address is not configured")
	}

	s.loadDatabase()
	s.migrateDB()
	s.loadEndpoint()
	s.loadRepos()
	s.loadLoginHandler()
	s.startPrometheus()

	subscriber, err := kafka.NewSubscriber(
		cfg.Kafka.GroupID,
		[]string{cfg.Kafka.Addr},
		[]string{common.DiscordLoginTopic},
		s.discordLoginHandler.Subscribe,
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(s.ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	xcontext.Logger(s.ctx).Infof("Subscribing topic %s", common.DiscordLoginTopic)
	subscriber.Subscribe(ctx)

	return subscriber.Stop(s.ctx)
}
