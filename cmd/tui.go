package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/youtify/internal/shared"
	"github.com/desertthunder/youtify/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI converts a playlist interactively, reviewing matches in a terminal UI.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	playlistURL := cmd.String("url")

	if err := r.requireEngine(); err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/youtify-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	db, err := r.attachCache()
	if err != nil {
		fileLogger.Warn("search cache unavailable", "error", err)
	}
	if db != nil {
		defer db.Close()
	}

	session, err := r.engine.NewSessionFromPlaylist(ctx, playlistURL, nil)
	if err != nil {
		return err
	}

	model := ui.NewModel(ctx, r.engine, session)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
