package main

import (
	"github.com/questx-lab/social-discord/migration"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(cctx *cli.Context) error {
	s.loadDatabase()

	if version := cctx.String("version"); version != "" {
		return migration.Migrate(s.ctx, version)
	}

	return migration.AutoMigrate(s.ctx)
}
