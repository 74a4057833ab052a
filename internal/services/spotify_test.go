package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/desertthunder/youtify/internal/services"
	"github.com/desertthunder/youtify/internal/shared"
	helpers "github.com/desertthunder/youtify/internal/testing"
	"golang.org/x/oauth2"
)

func newTestSpotify(t *testing.T) *services.SpotifyService {
	t.Helper()
	svc, err := services.NewSpotifyService(shared.SpotifyConfig{
		ClientID:     "id",
		ClientSecret: "secret",
		UserID:       "tester",
	})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	svc.SetToken(&oauth2.Token{AccessToken: "token"})
	return svc
}

func TestNewSpotifyService(t *testing.T) {
	t.Run("requires client ID", func(t *testing.T) {
		_, err := services.NewSpotifyService(shared.SpotifyConfig{ClientSecret: "secret"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("requires client secret", func(t *testing.T) {
		_, err := services.NewSpotifyService(shared.SpotifyConfig{ClientID: "id"})
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("unauthenticated calls fail", func(t *testing.T) {
		svc, err := services.NewSpotifyService(shared.SpotifyConfig{ClientID: "id", ClientSecret: "secret"})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}
		_, err = svc.Query(context.Background(), "anything", 10)
		if !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}

func TestSpotifyQuery(t *testing.T) {
	t.Run("parses search results", func(t *testing.T) {
		svc := newTestSpotify(t)
		body := `{"tracks": {"items": [
			{"id": "t1", "uri": "spotify:track:t1", "name": "One More Time",
			 "artists": [{"name": "Daft Punk"}], "album": {"name": "Discovery", "images": [{"url": "http://img"}]},
			 "duration_ms": 320000, "popularity": 82, "preview_url": "http://preview"}
		]}}`
		rt := helpers.NewMockRoundTripper(helpers.JSONResponse(http.StatusOK, body), nil)
		svc.SetHTTPClient(&http.Client{Transport: rt})

		results, err := svc.Query(context.Background(), `artist:"Daft Punk" track:"One More Time"`, 10)
		if err != nil {
			t.Fatalf("Query failed: %v", err)
		}
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}

		got := results[0]
		if got.Name != "One More Time" || got.URI != "spotify:track:t1" {
			t.Errorf("unexpected track: %+v", got)
		}
		if len(got.Artists) != 1 || got.Artists[0] != "Daft Punk" {
			t.Errorf("unexpected artists: %v", got.Artists)
		}
		if got.Popularity != 82 || got.ArtworkURL != "http://img" {
			t.Errorf("unexpected metadata: %+v", got)
		}
	})

	t.Run("maps 429 with retry hint", func(t *testing.T) {
		svc := newTestSpotify(t)
		resp := helpers.JSONResponse(http.StatusTooManyRequests, `{"error": {"status": 429, "message": "rate limited"}}`)
		resp.Header.Set("Retry-After", "3")
		svc.SetHTTPClient(&http.Client{Transport: helpers.NewMockRoundTripper(resp, nil)})

		_, err := svc.Query(context.Background(), "q", 10)
		if !errors.Is(err, shared.ErrRateLimited) {
			t.Fatalf("expected ErrRateLimited, got %v", err)
		}
		after, ok := services.RetryAfter(err)
		if !ok || after != 3*time.Second {
			t.Errorf("expected 3s retry hint, got %v (ok=%v)", after, ok)
		}
	})

	t.Run("maps 401 as expired auth", func(t *testing.T) {
		svc := newTestSpotify(t)
		resp := helpers.JSONResponse(http.StatusUnauthorized, `{"error": {"status": 401, "message": "token expired"}}`)
		svc.SetHTTPClient(&http.Client{Transport: helpers.NewMockRoundTripper(resp, nil)})

		_, err := svc.Query(context.Background(), "q", 10)
		if !errors.Is(err, shared.ErrAuthExpired) {
			t.Errorf("expected ErrAuthExpired, got %v", err)
		}
	})

	t.Run("maps 5xx as transient", func(t *testing.T) {
		svc := newTestSpotify(t)
		resp := helpers.JSONResponse(http.StatusBadGateway, `{"error": {"status": 502, "message": "bad gateway"}}`)
		svc.SetHTTPClient(&http.Client{Transport: helpers.NewMockRoundTripper(resp, nil)})

		_, err := svc.Query(context.Background(), "q", 10)
		if !errors.Is(err, shared.ErrTransient) {
			t.Errorf("expected ErrTransient, got %v", err)
		}
	})
}

func TestSpotifyPlaylists(t *testing.T) {
	t.Run("CreatePlaylist posts to user endpoint", func(t *testing.T) {
		svc := newTestSpotify(t)
		body := `{"id": "pl1", "name": "Converted", "description": "from youtube", "public": false,
			"external_urls": {"spotify": "https://open.spotify.com/playlist/pl1"}}`
		rt := helpers.NewMockRoundTripper(helpers.JSONResponse(http.StatusCreated, body), nil)
		svc.SetHTTPClient(&http.Client{Transport: rt})

		playlist, err := svc.CreatePlaylist(context.Background(), "Converted", "from youtube", false)
		if err != nil {
			t.Fatalf("CreatePlaylist failed: %v", err)
		}
		if playlist.ID != "pl1" || playlist.URL == "" {
			t.Errorf("unexpected playlist: %+v", playlist)
		}

		req := rt.Requests[0]
		if req.URL.Path != "/users/tester/playlists" {
			t.Errorf("unexpected path: %s", req.URL.Path)
		}
	})

	t.Run("AddTracks batches by 100", func(t *testing.T) {
		svc := newTestSpotify(t)

		uris := make([]string, 205)
		for i := range uris {
			uris[i] = "spotify:track:x"
		}

		rt := helpers.NewSequenceRoundTripper(
			helpers.JSONResponse(http.StatusCreated, `{"snapshot_id": "a"}`),
			helpers.JSONResponse(http.StatusCreated, `{"snapshot_id": "b"}`),
			helpers.JSONResponse(http.StatusCreated, `{"snapshot_id": "c"}`),
		)
		svc.SetHTTPClient(&http.Client{Transport: rt})

		report, err := svc.AddTracks(context.Background(), "pl1", uris)
		if err != nil {
			t.Fatalf("AddTracks failed: %v", err)
		}
		if report.Added != 205 || len(report.Failed) != 0 {
			t.Errorf("unexpected report: %+v", report)
		}
		if len(rt.Requests) != 3 {
			t.Fatalf("expected 3 batch requests, got %d", len(rt.Requests))
		}

		var first struct {
			URIs []string `json:"uris"`
		}
		data, _ := io.ReadAll(rt.Requests[0].Body)
		if err := json.Unmarshal(data, &first); err != nil {
			t.Fatalf("failed to decode batch body: %v", err)
		}
		if len(first.URIs) != 100 {
			t.Errorf("expected first batch of 100, got %d", len(first.URIs))
		}
	})

	t.Run("AddTracks records failed batches", func(t *testing.T) {
		svc := newTestSpotify(t)

		uris := make([]string, 150)
		for i := range uris {
			uris[i] = "spotify:track:x"
		}

		rt := helpers.NewSequenceRoundTripper(
			helpers.JSONResponse(http.StatusCreated, `{"snapshot_id": "a"}`),
			helpers.JSONResponse(http.StatusBadRequest, `{"error": {"status": 400, "message": "invalid uri"}}`),
		)
		svc.SetHTTPClient(&http.Client{Transport: rt})

		report, err := svc.AddTracks(context.Background(), "pl1", uris)
		if err != nil {
			t.Fatalf("AddTracks failed: %v", err)
		}
		if report.Added != 100 {
			t.Errorf("expected 100 added, got %d", report.Added)
		}
		if len(report.Failed) != 50 {
			t.Errorf("expected 50 failed, got %d", len(report.Failed))
		}
	})
}
