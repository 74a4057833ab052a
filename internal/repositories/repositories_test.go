package repositories

import (
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/youtify/internal/services"
	"github.com/desertthunder/youtify/internal/shared"
	"github.com/desertthunder/youtify/internal/tasks"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return db
}

func TestSearchCacheRepository(t *testing.T) {
	results := []services.TrackResult{
		{ID: "t1", URI: "spotify:track:t1", Name: "Song", Artists: []string{"Artist"}, Popularity: 50},
		{ID: "t2", URI: "spotify:track:t2", Name: "Other Song", Artists: []string{"Artist"}},
	}

	t.Run("round trips results", func(t *testing.T) {
		repo := NewSearchCacheRepository(setupTestDB(t), time.Hour)

		if _, ok := repo.Get("query", 10); ok {
			t.Fatal("expected miss on empty cache")
		}

		repo.Put("query", 10, results)

		got, ok := repo.Get("query", 10)
		if !ok {
			t.Fatal("expected cache hit")
		}
		if len(got) != 2 || got[0].ID != "t1" || got[1].Name != "Other Song" {
			t.Errorf("unexpected cached results: %+v", got)
		}
	})

	t.Run("page size is part of the key", func(t *testing.T) {
		repo := NewSearchCacheRepository(setupTestDB(t), time.Hour)
		repo.Put("query", 10, results)

		if _, ok := repo.Get("query", 20); ok {
			t.Error("expected miss for a different page size")
		}
	})

	t.Run("replaces existing entries", func(t *testing.T) {
		repo := NewSearchCacheRepository(setupTestDB(t), time.Hour)
		repo.Put("query", 10, results)
		repo.Put("query", 10, results[:1])

		got, ok := repo.Get("query", 10)
		if !ok || len(got) != 1 {
			t.Errorf("expected replaced entry with 1 result, got %d (hit=%v)", len(got), ok)
		}
	})

	t.Run("caches empty result sets", func(t *testing.T) {
		repo := NewSearchCacheRepository(setupTestDB(t), time.Hour)
		repo.Put("nothing found", 10, nil)

		got, ok := repo.Get("nothing found", 10)
		if !ok {
			t.Fatal("empty result sets should still hit")
		}
		if len(got) != 0 {
			t.Errorf("expected no results, got %d", len(got))
		}
	})

	t.Run("expired entries miss and purge", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewSearchCacheRepository(db, time.Nanosecond)
		repo.Put("stale", 10, results)

		time.Sleep(time.Millisecond)

		if _, ok := repo.Get("stale", 10); ok {
			t.Error("expected stale entry to miss")
		}

		repo.Put("stale again", 10, results)
		time.Sleep(time.Millisecond)

		purged, err := repo.Purge()
		if err != nil {
			t.Fatalf("Purge failed: %v", err)
		}
		if purged == 0 {
			t.Error("expected purge to remove stale entries")
		}
	})

	t.Run("clear empties the cache", func(t *testing.T) {
		repo := NewSearchCacheRepository(setupTestDB(t), time.Hour)
		repo.Put("a", 10, results)
		repo.Put("b", 10, results)

		if err := repo.Clear(); err != nil {
			t.Fatalf("Clear failed: %v", err)
		}
		size, err := repo.Size()
		if err != nil {
			t.Fatalf("Size failed: %v", err)
		}
		if size != 0 {
			t.Errorf("expected empty cache, got %d", size)
		}
	})
}

func TestSessionRepository(t *testing.T) {
	titles := []services.RawTitle{
		{VideoID: "v1", Title: "Artist - Song"},
		{VideoID: "v2", Title: "Other - Tune"},
	}

	t.Run("save and load round trip", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		session := tasks.NewSession("PLref", "Mix", titles)

		if err := repo.Save(session.Snapshot()); err != nil {
			t.Fatalf("Save failed: %v", err)
		}

		snapshot, err := repo.Load(session.ID)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}

		restored := tasks.RestoreSession(snapshot)
		if restored.PlaylistName != "Mix" || restored.PendingCount() != 2 {
			t.Errorf("unexpected restored session: name=%q pending=%d", restored.PlaylistName, restored.PendingCount())
		}
	})

	t.Run("save updates existing sessions", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		session := tasks.NewSession("PLref", "Mix", titles)
		_ = repo.Save(session.Snapshot())

		_ = session.MarkNeedsRetry("v1")
		if err := repo.Save(session.Snapshot()); err != nil {
			t.Fatalf("second Save failed: %v", err)
		}

		snapshot, err := repo.Load(session.ID)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if snapshot.Entries[0].State != tasks.StateNeedsRetry {
			t.Errorf("expected updated state persisted, got %s", snapshot.Entries[0].State)
		}
	})

	t.Run("missing sessions return not found", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))

		if _, err := repo.Load("nope"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
		if err := repo.Delete("nope"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound on delete, got %v", err)
		}
	})

	t.Run("list and delete", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))

		first := tasks.NewSession("PL1", "First", titles)
		second := tasks.NewSession("PL2", "Second", titles)
		_ = repo.Save(first.Snapshot())
		_ = repo.Save(second.Snapshot())

		summaries, err := repo.List()
		if err != nil {
			t.Fatalf("List failed: %v", err)
		}
		if len(summaries) != 2 {
			t.Fatalf("expected 2 sessions, got %d", len(summaries))
		}

		if err := repo.Delete(first.ID); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}

		summaries, _ = repo.List()
		if len(summaries) != 1 || summaries[0].ID != second.ID {
			t.Errorf("unexpected listing after delete: %+v", summaries)
		}
	})
}
