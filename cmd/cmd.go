// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// setupCommand handles setup operations for configuration and database.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:   "config",
				Usage:  "Create a config.toml from the embedded template",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize database and run migrations",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SetupDatabase,
			},
		},
	}
}

// authCommand handles Spotify authentication.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authentication",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authenticate with Spotify using OAuth2",
				Flags:  []cli.Flag{configFlag()},
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Show current authentication state",
				Action: r.AuthStatus,
			},
		},
	}
}

// convertCommand runs a full YouTube to Spotify playlist conversion.
func convertCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "convert",
		Aliases: []string{"run"},
		Usage:   "Convert a YouTube playlist to a Spotify playlist",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:     "url",
				Aliases:  []string{"u"},
				Usage:    "YouTube playlist URL or ID",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "name",
				Usage: "Destination playlist name (defaults to the source playlist name)",
			},
			&cli.BoolFlag{
				Name:  "skip-review",
				Usage: "Skip titles that would need manual review instead of failing",
			},
			&cli.StringFlag{
				Name:  "report",
				Usage: "Write a conversion report to this path",
			},
			&cli.StringFlag{
				Name:  "format",
				Usage: "Report format (json, csv, or txt)",
				Value: "txt",
			},
			&cli.BoolFlag{
				Name:  "save-session",
				Usage: "Persist the session to the database for later inspection",
			},
		},
		Action: r.ConvertRun,
	}
}

// sessionsCommand inspects persisted conversion sessions.
func sessionsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "sessions",
		Usage: "Inspect saved conversion sessions",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List saved sessions",
				Flags:  []cli.Flag{configFlag()},
				Action: r.SessionsList,
			},
			{
				Name:  "show",
				Usage: "Show one session as a conversion report",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Session ID to show",
						Required: true,
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Report format (json, csv, or txt)",
						Value: "txt",
					},
				},
				Action: r.SessionsShow,
			},
			{
				Name:  "delete",
				Usage: "Delete a saved session",
				Flags: []cli.Flag{
					configFlag(),
					&cli.StringFlag{
						Name:     "id",
						Usage:    "Session ID to delete",
						Required: true,
					},
				},
				Action: r.SessionsDelete,
			},
		},
	}
}

// cacheCommand manages the local search cache.
func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the local search cache",
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show cache entry count",
				Flags:  []cli.Flag{configFlag()},
				Action: r.CacheStatus,
			},
			{
				Name:   "purge",
				Usage:  "Remove expired cache entries",
				Flags:  []cli.Flag{configFlag()},
				Action: r.CachePurge,
			},
			{
				Name:   "clear",
				Usage:  "Remove all cache entries",
				Flags:  []cli.Flag{configFlag()},
				Action: r.CacheClear,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive conversion.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Convert a playlist interactively, reviewing matches in a TUI",
		Flags: []cli.Flag{
			configFlag(),
			&cli.StringFlag{
				Name:     "url",
				Aliases:  []string{"u"},
				Usage:    "YouTube playlist URL or ID",
				Required: true,
			},
		},
		Action: r.TUI,
	}
}
