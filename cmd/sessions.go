package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/youtify/internal/formatter"
	"github.com/desertthunder/youtify/internal/repositories"
	"github.com/desertthunder/youtify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SessionsList lists saved conversion sessions.
func (r *Runner) SessionsList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	summaries, err := repositories.NewSessionRepository(db).List()
	if err != nil {
		return fmt.Errorf("failed to list sessions: %w", err)
	}

	if len(summaries) == 0 {
		r.writePlain("No saved sessions.\n")
		return nil
	}

	r.writePlain("Found %d sessions:\n\n", len(summaries))
	for i, s := range summaries {
		r.writePlain("%d. %s\n", i+1, s.PlaylistName)
		r.writePlain("   ID: %s\n", s.ID)
		r.writePlain("   Created: %s\n\n", s.CreatedAt.Format("2006-01-02 15:04"))
	}

	return nil
}

// SessionsShow prints one saved session as a conversion report.
func (r *Runner) SessionsShow(ctx context.Context, cmd *cli.Command) error {
	sessionID := cmd.String("id")
	format := cmd.String("format")

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	snapshot, err := repositories.NewSessionRepository(db).Load(sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}

	session := tasks.RestoreSession(snapshot)
	report := formatter.BuildReport(session)

	var data []byte
	switch format {
	case "json":
		data, err = formatter.ReportToJSON(report)
	case "csv":
		data, err = formatter.ReportToCSV(report)
	default:
		data, err = formatter.ReportToText(report)
	}
	if err != nil {
		return fmt.Errorf("failed to format report: %w", err)
	}

	if _, err := r.output.Write(data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// SessionsDelete removes a saved session.
func (r *Runner) SessionsDelete(ctx context.Context, cmd *cli.Command) error {
	sessionID := cmd.String("id")

	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repositories.NewSessionRepository(db).Delete(sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	r.writePlain("✓ Session %s deleted\n", sessionID)
	return nil
}
