package main

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/youtify/internal/repositories"
	"github.com/urfave/cli/v3"
)

// cacheRepo opens the database and builds a search cache repository.
func (r *Runner) cacheRepo() (*repositories.SearchCacheRepository, func(), error) {
	db, err := r.openDatabase()
	if err != nil {
		return nil, nil, err
	}

	ttl := time.Duration(r.config.Search.CacheTTLHours) * time.Hour
	return repositories.NewSearchCacheRepository(db, ttl), func() { db.Close() }, nil
}

// CacheStatus shows the number of cached search results.
func (r *Runner) CacheStatus(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.cacheRepo()
	if err != nil {
		return err
	}
	defer closeDB()

	size, err := repo.Size()
	if err != nil {
		return fmt.Errorf("failed to read cache size: %w", err)
	}

	r.writePlain("Cached queries: %d\n", size)
	if r.config.Search.CacheTTLHours <= 0 {
		r.writePlain("Caching is disabled (cache_ttl_hours = 0)\n")
	} else {
		r.writePlain("TTL: %d hours\n", r.config.Search.CacheTTLHours)
	}
	return nil
}

// CachePurge removes expired cache entries.
func (r *Runner) CachePurge(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.cacheRepo()
	if err != nil {
		return err
	}
	defer closeDB()

	removed, err := repo.Purge()
	if err != nil {
		return fmt.Errorf("failed to purge cache: %w", err)
	}

	r.writePlain("✓ Removed %d expired entries\n", removed)
	return nil
}

// CacheClear removes all cache entries.
func (r *Runner) CacheClear(ctx context.Context, cmd *cli.Command) error {
	repo, closeDB, err := r.cacheRepo()
	if err != nil {
		return err
	}
	defer closeDB()

	if err := repo.Clear(); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	r.writePlain("✓ Cache cleared\n")
	return nil
}
