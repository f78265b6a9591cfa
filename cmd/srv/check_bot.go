package main

import (
	"errors"
	"fmt"

	"github.com/questx-lab/social-discord/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startCheckBot(*cli.Context) error {
	if xcontext.Configs(s.ctx).Discord.BotToken == "" {
		return errors.New("bot token is not configured")
	}

	s.loadEndpoint()
	if err := s.discordEndpoint.GetGatewayBot(s.ctx); err != nil {
		return fmt.Errorf("invalid bot token: %w", err)
	}

	xcontext.Logger(s.ctx).Infof("Bot token is valid")
	return nil
}
