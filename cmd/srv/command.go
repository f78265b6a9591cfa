package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	s.app = cli.NewApp()
	s.app.Action = cli.ShowAppHelp
	s.app.Name = "social-discord"
	s.app.Usage = "Discord login and guild membership service"
	s.app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to the toml config file",
			EnvVars: []string{"CONFIG_FILE"},
		},
	}
	s.app.Before = s.loadConfig
	s.app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Serves the Discord login flow and the user apis.`,
		},
		{
			Action:      s.startCron,
			Name:        "cron",
			Usage:       "Start cron jobs",
			Category:    "Worker",
			Description: `Runs the guild sync job periodically until the process is stopped.`,
		},
		{
			Action:      s.startSubscriber,
			Name:        "subscriber",
			Usage:       "Start service subscriber",
			Category:    "Worker",
			Description: `Consumes login events from kafka, joins users to the guild and grants roles.`,
		},
		{
			Action:      s.startSync,
			Name:        "sync",
			Usage:       "Run the guild sync once",
			Category:    "Worker",
			Description: `Refreshes every stored Discord token and revokes roles of users who left the guild.`,
		},
		{
			Action:   s.startMigrate,
			Name:     "migrate",
			Usage:    "Migrate the database",
			Category: "Database",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "version",
					Usage: "Run a specific migration version, the latest schema is applied if empty",
				},
			},
		},
		{
			Action:      s.startCheckBot,
			Name:        "check-bot",
			Usage:       "Check the bot token",
			Category:    "Tool",
			Description: `Calls the gateway api with the configured bot token.`,
		},
	}
}
