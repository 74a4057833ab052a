// Package repositories implements SQLite persistence for the conversion engine.
//
// Key Implementations:
//   - [SearchCacheRepository] : TTL-bounded memoization of raw search results, keyed by query and page size
//   - [SessionRepository] : conversion session snapshots stored as JSON payloads for resume and history
//
// The search cache implements [match.QueryCache], so the orchestrator spends
// no external calls on queries it has already answered within the TTL.
package repositories
