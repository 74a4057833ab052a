package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/youtify/internal/formatter"
	"github.com/desertthunder/youtify/internal/match"
	"github.com/desertthunder/youtify/internal/repositories"
	"github.com/desertthunder/youtify/internal/shared"
	"github.com/desertthunder/youtify/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ConvertRun runs a full YouTube to Spotify playlist conversion.
//
// Titles that need manual review stop the run unless --skip-review is set;
// interactive review lives in the tui command.
func (r *Runner) ConvertRun(ctx context.Context, cmd *cli.Command) error {
	playlistURL := cmd.String("url")
	destName := cmd.String("name")
	skipReview := cmd.Bool("skip-review")

	if err := r.requireEngine(); err != nil {
		return err
	}

	db, err := r.attachCache()
	if err != nil {
		r.logger.Warn("search cache unavailable", "error", err)
	}
	if db != nil {
		defer db.Close()
	}

	r.logger.Info("starting conversion", "url", playlistURL)
	r.writePlain("Converting playlist...\n\n")

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			switch update.Phase {
			case tasks.FetchTitles:
				r.writePlain("📥 %s\n", update.Message)
			case tasks.SearchTracks:
				r.writePlain("🔍 %s\n", update.Message)
			case tasks.ClassifyTitles:
				r.writePlain("   %s\n", update.Message)
			case tasks.CreatePlaylist, tasks.AddTracks:
				r.writePlain("📝 %s\n", update.Message)
			}
		}
	}()

	session, runErr := r.runConversion(ctx, playlistURL, progressCh)
	close(progressCh)
	<-done

	if runErr != nil {
		return runErr
	}

	if !session.Complete() {
		if !skipReview {
			return fmt.Errorf("%w: %d titles need review, rerun with --skip-review or use 'youtify tui'",
				shared.ErrInvalidTransition, session.PendingCount())
		}
		if err := r.skipPending(session); err != nil {
			return err
		}
	}

	playlist, report, err := r.engine.Export(ctx, session, destName, nil)
	if err != nil {
		return err
	}

	stats := session.Stats()
	r.writePlain("\n")
	r.writePlainHeader("Conversion Complete!")
	r.writePlain("Playlist: %s\n", playlist.Name)
	if playlist.URL != "" {
		r.writePlain("URL: %s\n", playlist.URL)
	}
	r.writePlain("Tracks added: %d\n", report.Added)
	r.writePlain("Auto-accepted: %d, user-accepted: %d, rejected: %d, skipped: %d\n",
		stats.AutoAccepted, stats.UserAccepted, stats.Rejected, stats.Skipped)
	if len(report.Failed) > 0 {
		r.writePlain("Failed to add %d tracks\n", len(report.Failed))
	}

	if cmd.Bool("save-session") {
		if err := r.persistSession(session); err != nil {
			r.logger.Warn("failed to save session", "error", err)
		} else {
			r.writePlain("\nSession saved: %s\n", session.ID)
		}
	}

	if reportPath := cmd.String("report"); reportPath != "" {
		conversionReport := formatter.BuildReport(session)
		if err := formatter.WriteReport(conversionReport, cmd.String("format"), reportPath); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
		r.writePlain("Report written to %s\n", reportPath)
	}

	return nil
}

// runConversion fetches the playlist and runs the matching pipeline,
// retrying rate-limited titles once.
func (r *Runner) runConversion(ctx context.Context, playlistURL string, progressCh chan tasks.ProgressUpdate) (*tasks.ConversionSession, error) {
	session, err := r.engine.NewSessionFromPlaylist(ctx, playlistURL, progressCh)
	if err != nil {
		return nil, err
	}

	if err := r.engine.Run(ctx, session, progressCh); err != nil {
		return nil, err
	}

	if retried := session.ResetForRetry(); retried > 0 {
		r.logger.Info("retrying rate-limited titles", "count", retried)
		if err := r.engine.Run(ctx, session, progressCh); err != nil {
			return nil, err
		}
	}

	return session, nil
}

// skipPending resolves every undecided title as skipped.
func (r *Runner) skipPending(session *tasks.ConversionSession) error {
	session.ResetForRetry()
	for _, entry := range session.Entries() {
		if entry.Terminal() {
			continue
		}
		videoID := entry.Title.VideoID
		if entry.State != tasks.StateAwaitingUser {
			// Park unfinished searches as reviewable so they can be skipped.
			if err := session.SetResult(videoID, noResult(entry)); err != nil {
				return err
			}
		}
		if err := session.Resolve(videoID, tasks.ActionSkip, nil); err != nil {
			return err
		}
	}
	return nil
}

// noResult builds an empty no-match result so an unsearched title can be
// routed through the review state machine.
func noResult(entry tasks.TitleEntry) match.MatchResult {
	return match.MatchResult{Title: entry.Title, Tier: match.TierNoMatch}
}

// persistSession saves the session snapshot to the database.
func (r *Runner) persistSession(session *tasks.ConversionSession) error {
	db, err := r.openDatabase()
	if err != nil {
		return err
	}
	defer db.Close()

	return repositories.NewSessionRepository(db).Save(session.Snapshot())
}
