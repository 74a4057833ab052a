package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/youtify/internal/shared"
)

// RawTitle is a video title as extracted from a YouTube playlist.
//
// Immutable once extracted; the video ID doubles as the title's identity
// within a conversion session.
type RawTitle struct {
	VideoID   string `json:"video_id"`
	Title     string `json:"title"`
	Channel   string `json:"channel"`
	Published string `json:"published,omitempty"`
}

// TrackResult is Spotify track metadata as returned by a search query.
//
// Passed by value downstream of the search orchestrator.
type TrackResult struct {
	ID         string   `json:"id"`
	URI        string   `json:"uri"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	DurationMS int      `json:"duration_ms"`
	Popularity int      `json:"popularity"`
	PreviewURL string   `json:"preview_url,omitempty"`
	ArtworkURL string   `json:"artwork_url,omitempty"`
}

// Playlist represents a playlist on either service.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
	URL         string `json:"url,omitempty"`
}

// AddTracksReport is the result of adding tracks to a playlist.
//
// Failed holds the identifiers that could not be added; an empty slice means
// full success.
type AddTracksReport struct {
	Added  int
	Failed []string
}

// VideoSource lists the titles of a video playlist.
//
// Implementations fail with [shared.ErrPlaylistNotFound], [shared.ErrQuotaExceeded],
// or [shared.ErrTransient].
type VideoSource interface {
	// PlaylistInfo retrieves playlist metadata without items.
	PlaylistInfo(ctx context.Context, playlistRef string) (*Playlist, error)

	// ListTitles retrieves all video titles in playlist order.
	// Progress (extracted, total) is reported through progress if non-nil.
	ListTitles(ctx context.Context, playlistRef string, progress func(current, total int)) ([]RawTitle, error)
}

// TrackSearch issues one catalog search query.
//
// Implementations fail with [RateLimitError] (carries a retry-after hint),
// [shared.ErrAuthExpired], or [shared.ErrTransient].
type TrackSearch interface {
	Query(ctx context.Context, query string, pageSize int) ([]TrackResult, error)
}

// PlaylistSink creates the destination playlist and populates it.
type PlaylistSink interface {
	CreatePlaylist(ctx context.Context, name, description string, public bool) (*Playlist, error)

	// AddTracks adds track URIs in playlist order. Partial failures are
	// reported per-identifier rather than failing the whole call.
	AddTracks(ctx context.Context, playlistRef string, trackURIs []string) (*AddTracksReport, error)
}

// RateLimitError wraps [shared.ErrRateLimited] with the server's retry-after hint.
type RateLimitError struct {
	RetryAfter time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited, retry after %s", e.RetryAfter)
}

func (e *RateLimitError) Unwrap() error {
	return shared.ErrRateLimited
}

// RetryAfter extracts the retry-after hint from an error chain, if any.
func RetryAfter(err error) (time.Duration, bool) {
	var rle *RateLimitError
	if errors.As(err, &rle) && rle.RetryAfter > 0 {
		return rle.RetryAfter, true
	}
	return 0, false
}
