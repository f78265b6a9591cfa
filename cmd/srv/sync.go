package main

import (
	"encoding/json"
	"os"

	"github.com/questx-lab/social-discord/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startSync(*cli.Context) error {
	s.loadDatabase()
	s.migrateDB()
	s.loadEndpoint()
	s.loadRedisClient()
	s.loadRepos()

	report, err := s.newGuildMembershipCronJob().Run(s.ctx)
	if err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Guild sync finished")
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
