package match

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/youtify/internal/services"
	"github.com/desertthunder/youtify/internal/shared"
	"golang.org/x/time/rate"
)

// QueryCache memoizes raw search results keyed by query string and page size.
//
// Implementations decide staleness; a miss simply costs one external call.
type QueryCache interface {
	Get(query string, pageSize int) ([]services.TrackResult, bool)
	Put(query string, pageSize int, results []services.TrackResult)
}

// queryRung is one step of the search ladder: a guard plus a query template.
type queryRung struct {
	name    string
	applies func(Candidate) bool
	build   func(Candidate) string
}

func hasArtist(c Candidate) bool { return c.Artist != "" }

func always(Candidate) bool { return true }

// ladder is ordered most-precise first. Later rungs only run when earlier
// ones produced nothing relevant, which keeps external call volume down.
var ladder = []queryRung{
	{
		name:    "exact",
		applies: hasArtist,
		build: func(c Candidate) string {
			return fmt.Sprintf(`track:"%s" artist:"%s"`, c.Song, c.Artist)
		},
	},
	{
		name:    "combined",
		applies: hasArtist,
		build: func(c Candidate) string {
			return fmt.Sprintf(`"%s %s"`, c.Artist, c.Song)
		},
	},
	{
		name:    "song-only",
		applies: always,
		build: func(c Candidate) string {
			return fmt.Sprintf(`"%s"`, c.Song)
		},
	},
}

// Orchestrator walks the query ladder for one candidate at a time, retrying
// failed calls with exponential backoff and spending a shared rate budget.
//
// Safe for concurrent use across titles; the limiter is the only state
// shared between them.
type Orchestrator struct {
	search   services.TrackSearch
	cache    QueryCache
	limiter  *rate.Limiter
	logger   *log.Logger
	floor    float64
	pageSize int
	retries  int
	backoff  time.Duration
}

// NewOrchestrator creates an orchestrator from the search configuration.
//
// A non-positive requests-per-second budget disables throttling.
func NewOrchestrator(search services.TrackSearch, cfg shared.SearchConfig, logger *log.Logger) *Orchestrator {
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}

	burst := cfg.Concurrency
	if burst < 1 {
		burst = 1
	}

	if logger == nil {
		logger = shared.NewLogger(io.Discard)
	}

	backoff := time.Duration(cfg.BackoffInitialMS) * time.Millisecond
	if backoff <= 0 {
		backoff = 500 * time.Millisecond
	}

	return &Orchestrator{
		search:   search,
		limiter:  rate.NewLimiter(limit, burst),
		logger:   logger,
		floor:    cfg.RelevanceFloor,
		pageSize: cfg.PageSize,
		retries:  cfg.MaxRetries,
		backoff:  backoff,
	}
}

// SetCache installs a query cache. Without one every query hits the network.
func (o *Orchestrator) SetCache(c QueryCache) {
	o.cache = c
}

// Search runs the ladder for one candidate, strictly sequentially, stopping
// at the first rung that yields a result relevant to the candidate's song.
//
// Every result fetched along the way is returned unfiltered; ranking decides
// what survives. Failed rungs contribute zero results and the ladder
// continues, except for expired auth and exhausted rate budgets, which
// propagate so the caller can suspend the title.
func (o *Orchestrator) Search(ctx context.Context, c Candidate) ([]services.TrackResult, error) {
	var collected []services.TrackResult

	for _, rung := range o.rungsFor(c) {
		query := rung.build(c)

		results, err := o.runQuery(ctx, query)
		if err != nil {
			if errors.Is(err, shared.ErrAuthExpired) || errors.Is(err, shared.ErrNeedsRetry) || ctx.Err() != nil {
				return collected, err
			}
			o.logger.Warn("search query failed", "rung", rung.name, "query", query, "error", err)
			continue
		}

		collected = append(collected, results...)
		if o.anyRelevant(c, results) {
			break
		}
	}

	return collected, nil
}

// ManualSearch scores a user-supplied free-text query as a single rung.
func (o *Orchestrator) ManualSearch(ctx context.Context, query string) ([]services.TrackResult, error) {
	return o.runQuery(ctx, query)
}

// rungsFor expands the base ladder with featuring-artist substitutions,
// which only run when everything before them came up empty or irrelevant.
func (o *Orchestrator) rungsFor(c Candidate) []queryRung {
	rungs := make([]queryRung, 0, len(ladder)+2*len(c.Featured))
	for _, r := range ladder {
		if r.applies(c) {
			rungs = append(rungs, r)
		}
	}

	for _, feat := range c.Featured {
		feat := feat
		rungs = append(rungs,
			queryRung{
				name:    "exact-featured",
				applies: always,
				build: func(c Candidate) string {
					return fmt.Sprintf(`track:"%s" artist:"%s"`, c.Song, feat)
				},
			},
			queryRung{
				name:    "combined-featured",
				applies: always,
				build: func(c Candidate) string {
					return fmt.Sprintf(`"%s %s"`, feat, c.Song)
				},
			},
		)
	}

	return rungs
}

func (o *Orchestrator) anyRelevant(c Candidate, results []services.TrackResult) bool {
	for _, t := range results {
		if Similarity(c.Song, t.Name) >= o.floor {
			return true
		}
	}
	return false
}

// runQuery issues one query with cache lookup, rate limiting, and retries.
//
// Rate-limit errors honor the server's retry-after hint; transient errors
// back off exponentially. Expired auth is never retried here. A budget still
// exhausted after the retry cap surfaces as [shared.ErrNeedsRetry] so the
// title can be re-triggered instead of failed.
func (o *Orchestrator) runQuery(ctx context.Context, query string) ([]services.TrackResult, error) {
	if o.cache != nil {
		if results, ok := o.cache.Get(query, o.pageSize); ok {
			return results, nil
		}
	}

	delay := o.backoff
	var lastErr error

	for attempt := 0; attempt <= o.retries; attempt++ {
		if err := o.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		results, err := o.search.Query(ctx, query, o.pageSize)
		if err == nil {
			if o.cache != nil {
				o.cache.Put(query, o.pageSize, results)
			}
			return results, nil
		}
		lastErr = err

		switch {
		case errors.Is(err, shared.ErrAuthExpired):
			return nil, err
		case errors.Is(err, shared.ErrRateLimited):
			wait := delay
			if hint, ok := services.RetryAfter(err); ok {
				wait = hint
			}
			if err := sleepCtx(ctx, wait); err != nil {
				return nil, err
			}
		case errors.Is(err, shared.ErrTransient):
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, err
			}
		default:
			return nil, err
		}

		delay *= 2
	}

	if errors.Is(lastErr, shared.ErrRateLimited) {
		return nil, fmt.Errorf("%w: rate limit persisted after %d attempts", shared.ErrNeedsRetry, o.retries+1)
	}
	return nil, lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
