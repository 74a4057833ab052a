// package tasks drives playlist conversions: it fans searches out over the
// titles of a session, feeds results through the matching engine, and hands
// the accepted tracks to the destination playlist.
package tasks

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/youtify/internal/match"
	"github.com/desertthunder/youtify/internal/services"
	"github.com/desertthunder/youtify/internal/shared"
)

// ConversionEngine wires the matching pipeline to its collaborators.
//
// Titles are processed concurrently up to the configured fan-out; the
// ladder for one candidate stays strictly sequential inside the
// orchestrator. The only state shared across titles is the orchestrator's
// rate budget.
type ConversionEngine struct {
	source       services.VideoSource
	sink         services.PlaylistSink
	parser       *match.Parser
	orchestrator *match.Orchestrator
	ranker       *match.Ranker
	classifier   match.Classifier
	logger       *log.Logger
	concurrency  int
	playlist     shared.PlaylistConfig
}

// NewConversionEngine builds an engine from validated configuration.
func NewConversionEngine(
	source services.VideoSource,
	search services.TrackSearch,
	sink services.PlaylistSink,
	cfg *shared.Config,
	logger *log.Logger,
) *ConversionEngine {
	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	concurrency := cfg.Search.Concurrency
	if concurrency <= 0 {
		concurrency = 1
	}

	return &ConversionEngine{
		source:       source,
		sink:         sink,
		parser:       match.NewParser(),
		orchestrator: match.NewOrchestrator(search, cfg.Search, logger),
		ranker:       match.NewRanker(cfg.Search.MaxRanked),
		classifier:   match.NewClassifier(cfg.Matching),
		logger:       logger,
		concurrency:  concurrency,
		playlist:     cfg.Playlist,
	}
}

// SetQueryCache installs a cache on the underlying orchestrator.
func (e *ConversionEngine) SetQueryCache(c match.QueryCache) {
	e.orchestrator.SetCache(c)
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *ConversionEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// NewSessionFromPlaylist resolves a playlist reference, extracts its titles,
// and creates a pending session for them.
func (e *ConversionEngine) NewSessionFromPlaylist(ctx context.Context, playlistRef string, progress chan<- ProgressUpdate) (*ConversionSession, error) {
	info, err := e.source.PlaylistInfo(ctx, playlistRef)
	if err != nil {
		return nil, err
	}

	e.sendProgress(progress, fetchTitlesUpdate(0, info.TrackCount))
	titles, err := e.source.ListTitles(ctx, playlistRef, func(current, total int) {
		e.sendProgress(progress, fetchTitlesUpdate(current, total))
	})
	if err != nil {
		return nil, err
	}

	return NewSession(playlistRef, info.Name, titles), nil
}

// Run processes every pending title in the session through the matching
// pipeline, fanning out across a bounded worker pool.
//
// Rate-limited titles are parked as needs-retry and do not stop the run.
// An expired token cancels outstanding work and surfaces the error; the
// session keeps its pending entries for a later run.
func (e *ConversionEngine) Run(ctx context.Context, session *ConversionSession, progress chan<- ProgressUpdate) error {
	pending := session.PendingVideoIDs()
	if len(pending) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan string, len(pending))
	for _, id := range pending {
		jobs <- id
	}
	close(jobs)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		authErr  error
		done     int
	)

	for i := 0; i < e.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			for videoID := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				entry, err := session.Entry(videoID)
				if err != nil {
					continue
				}

				mu.Lock()
				done++
				step := done
				mu.Unlock()

				e.sendProgress(progress, searchingUpdate(step, len(pending), entry.Title.Title))

				err = e.processTitle(ctx, session, entry.Title)
				switch {
				case err == nil:
					if result, lookupErr := session.Entry(videoID); lookupErr == nil && result.Result != nil {
						e.sendProgress(progress, classifiedUpdate(step, len(pending), entry.Title.Title, result.Result.Tier.String()))
					}
				case errors.Is(err, shared.ErrNeedsRetry):
					if markErr := session.MarkNeedsRetry(videoID); markErr != nil {
						e.logger.Error("failed to park title for retry", "video_id", videoID, "error", markErr)
					}
					e.sendProgress(progress, needsRetryUpdate(step, len(pending), entry.Title.Title))
				case errors.Is(err, shared.ErrAuthExpired) || ctx.Err() != nil:
					mu.Lock()
					if authErr == nil {
						authErr = err
					}
					mu.Unlock()
					cancel()
					return
				default:
					e.logger.Warn("title processing failed", "video_id", videoID, "error", err)
				}
			}
		}()
	}

	wg.Wait()

	if authErr != nil {
		return authErr
	}
	if pending := session.PendingCount(); pending > 0 {
		e.sendProgress(progress, awaitingReviewUpdate(pending))
	}
	return ctx.Err()
}

// processTitle runs one title through parse, search, rank, and classify.
//
// Candidates are searched one at a time so the ladder's early-stop guarantee
// holds per candidate; every candidate's results are ranked together.
func (e *ConversionEngine) processTitle(ctx context.Context, session *ConversionSession, title services.RawTitle) error {
	candidates := e.parser.Parse(title.Title, title.Channel)

	var outcomes []match.SearchOutcome
	for _, candidate := range candidates {
		results, err := e.orchestrator.Search(ctx, candidate)
		if err != nil {
			return err
		}

		if len(results) > 0 {
			outcomes = append(outcomes, match.SearchOutcome{Candidate: candidate, Tracks: results})
		}
	}

	ranked := e.ranker.Rank(outcomes)
	return session.SetResult(title.VideoID, e.classifier.Result(title, ranked))
}

// ManualSearch runs a user-supplied query for an awaiting-user title and
// re-enters the workflow with a freshly ranked result list.
//
// The query text is parsed like a raw title so the results are scored with
// the same contract as the automatic pipeline.
func (e *ConversionEngine) ManualSearch(ctx context.Context, session *ConversionSession, videoID, query string) error {
	results, err := e.orchestrator.ManualSearch(ctx, query)
	if err != nil {
		return err
	}

	entry, err := session.Entry(videoID)
	if err != nil {
		return err
	}

	outcomes := make([]match.SearchOutcome, 0, 2)
	for _, candidate := range e.parser.Parse(query, "") {
		outcomes = append(outcomes, match.SearchOutcome{Candidate: candidate, Tracks: results})
	}

	ranked := e.ranker.Rank(outcomes)
	return session.ApplyManualResult(videoID, e.classifier.Result(entry.Title, ranked))
}

// Export creates the destination playlist from a complete session and adds
// every accepted track in original playlist order, then finalizes the
// session.
func (e *ConversionEngine) Export(ctx context.Context, session *ConversionSession, name string, progress chan<- ProgressUpdate) (*services.Playlist, *services.AddTracksReport, error) {
	if !session.Complete() {
		return nil, nil, fmt.Errorf("%w: %d titles still pending", shared.ErrInvalidTransition, session.PendingCount())
	}

	if name == "" {
		name = session.PlaylistName
	}

	description := e.playlist.DescriptionTemplate
	if description == "" {
		description = fmt.Sprintf("Converted from YouTube playlist %s", session.PlaylistRef)
	}

	e.sendProgress(progress, creatingPlaylistUpdate(name))
	playlist, err := e.sink.CreatePlaylist(ctx, name, description, e.playlist.Public)
	if err != nil {
		return nil, nil, err
	}

	accepted := session.AcceptedTracks()
	uris := make([]string, len(accepted))
	for i, track := range accepted {
		uris[i] = track.URI
	}

	e.sendProgress(progress, addTracksUpdate(0, len(uris)))
	report, err := e.sink.AddTracks(ctx, playlist.ID, uris)
	if err != nil {
		return playlist, nil, err
	}
	e.sendProgress(progress, addTracksUpdate(report.Added, len(uris)))

	if err := session.Finalize(); err != nil {
		return playlist, report, err
	}

	return playlist, report, nil
}
