package repositories

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/desertthunder/youtify/internal/services"
)

// SearchCacheRepository persists raw search results with a TTL.
//
// Implements [match.QueryCache]. Lookup failures degrade to cache misses so
// a broken cache only costs external calls, never a conversion.
type SearchCacheRepository struct {
	db  *sql.DB
	ttl time.Duration
}

// NewSearchCacheRepository creates a cache with the given entry lifetime.
// A non-positive TTL disables expiry.
func NewSearchCacheRepository(db *sql.DB, ttl time.Duration) *SearchCacheRepository {
	return &SearchCacheRepository{db: db, ttl: ttl}
}

// Get returns the cached results for a query, if present and fresh.
func (r *SearchCacheRepository) Get(query string, pageSize int) ([]services.TrackResult, bool) {
	row := r.db.QueryRow(
		`SELECT results, created_at FROM search_cache WHERE query = ? AND page_size = ?`,
		query, pageSize,
	)

	var payload string
	var createdAt time.Time
	if err := row.Scan(&payload, &createdAt); err != nil {
		return nil, false
	}

	if r.ttl > 0 && time.Since(createdAt) > r.ttl {
		_, _ = r.db.Exec(`DELETE FROM search_cache WHERE query = ? AND page_size = ?`, query, pageSize)
		return nil, false
	}

	var results []services.TrackResult
	if err := json.Unmarshal([]byte(payload), &results); err != nil {
		return nil, false
	}

	return results, true
}

// Put stores results for a query, replacing any previous entry.
func (r *SearchCacheRepository) Put(query string, pageSize int, results []services.TrackResult) {
	payload, err := json.Marshal(results)
	if err != nil {
		return
	}

	_, _ = r.db.Exec(
		`INSERT OR REPLACE INTO search_cache (query, page_size, results, created_at) VALUES (?, ?, ?, ?)`,
		query, pageSize, string(payload), time.Now().UTC(),
	)
}

// Purge removes every expired entry and reports how many were deleted.
func (r *SearchCacheRepository) Purge() (int64, error) {
	if r.ttl <= 0 {
		return 0, nil
	}

	res, err := r.db.Exec(`DELETE FROM search_cache WHERE created_at < ?`, time.Now().UTC().Add(-r.ttl))
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Clear removes every cache entry.
func (r *SearchCacheRepository) Clear() error {
	_, err := r.db.Exec(`DELETE FROM search_cache`)
	return err
}

// Size reports the number of cached queries.
func (r *SearchCacheRepository) Size() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM search_cache`).Scan(&count)
	return count, err
}
