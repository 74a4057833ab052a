package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/desertthunder/youtify/internal/services"
	"github.com/desertthunder/youtify/internal/shared"
	helpers "github.com/desertthunder/youtify/internal/testing"
)

func TestExtractPlaylistID(t *testing.T) {
	cases := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"playlist URL", "https://www.youtube.com/playlist?list=PLabc123_-XYZ", "PLabc123_-XYZ", false},
		{"watch URL with list param", "https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PL1234567890", "PL1234567890", false},
		{"music subdomain", "https://music.youtube.com/playlist?list=RDCLAK5uy_abc", "RDCLAK5uy_abc", false},
		{"short link with list param", "https://youtu.be/dQw4w9WgXcQ?list=PLshort", "PLshort", false},
		{"bare playlist ID", "PLabc123", "PLabc123", false},
		{"empty input", "", "", true},
		{"youtube URL without list", "https://www.youtube.com/watch?v=dQw4w9WgXcQ", "", true},
		{"unrelated URL", "https://example.com/playlist?list=PLabc", "", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := services.ExtractPlaylistID(tc.input)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %q", tc.input, got)
				}
				if !errors.Is(err, shared.ErrInvalidInput) {
					t.Errorf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestYouTubeService(t *testing.T) {
	t.Run("requires API key", func(t *testing.T) {
		_, err := services.NewYouTubeService("", "")
		if !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("ListTitles paginates and filters", func(t *testing.T) {
		svc, err := services.NewYouTubeService("test-key", "")
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		infoBody := `{"items":[{"snippet":{"title":"Mix","description":""},"contentDetails":{"itemCount":4}}]}`
		page1 := `{
			"items": [
				{"snippet": {"title": "Daft Punk - One More Time", "videoOwnerChannelTitle": "Daft Punk - Topic", "resourceId": {"videoId": "v1"}}},
				{"snippet": {"title": "Deleted video", "resourceId": {"videoId": "v2"}}}
			],
			"nextPageToken": "page2"
		}`
		page2 := `{
			"items": [
				{"snippet": {"title": "Private video", "resourceId": {"videoId": "v3"}}},
				{"snippet": {"title": "Bohemian Rhapsody", "channelTitle": "Queen Official", "resourceId": {"videoId": "v4"}}}
			]
		}`

		rt := helpers.NewSequenceRoundTripper(
			helpers.JSONResponse(http.StatusOK, infoBody),
			helpers.JSONResponse(http.StatusOK, page1),
			helpers.JSONResponse(http.StatusOK, page2),
		)
		svc.SetHTTPClient(&http.Client{Transport: rt})

		var calls int
		titles, err := svc.ListTitles(context.Background(), "PLmix", func(current, total int) { calls++ })
		if err != nil {
			t.Fatalf("ListTitles failed: %v", err)
		}

		if len(titles) != 2 {
			t.Fatalf("expected 2 titles after filtering, got %d", len(titles))
		}
		if titles[0].Title != "Daft Punk - One More Time" {
			t.Errorf("unexpected first title: %q", titles[0].Title)
		}
		if titles[0].Channel != "Daft Punk" {
			t.Errorf("expected Topic suffix stripped, got %q", titles[0].Channel)
		}
		if titles[1].VideoID != "v4" {
			t.Errorf("expected v4, got %q", titles[1].VideoID)
		}
		if calls == 0 {
			t.Error("expected progress callbacks")
		}
	})

	t.Run("maps quota errors", func(t *testing.T) {
		svc, _ := services.NewYouTubeService("test-key", "")
		body := `{"error": {"code": 403, "message": "quota exceeded", "errors": [{"reason": "quotaExceeded"}]}}`
		rt := helpers.NewMockRoundTripper(helpers.JSONResponse(http.StatusForbidden, body), nil)
		svc.SetHTTPClient(&http.Client{Transport: rt})

		_, err := svc.PlaylistInfo(context.Background(), "PLmix")
		if !errors.Is(err, shared.ErrQuotaExceeded) {
			t.Errorf("expected ErrQuotaExceeded, got %v", err)
		}
	})

	t.Run("maps missing playlist", func(t *testing.T) {
		svc, _ := services.NewYouTubeService("test-key", "")
		body := `{"error": {"code": 404, "message": "not found", "errors": [{"reason": "playlistNotFound"}]}}`
		rt := helpers.NewMockRoundTripper(helpers.JSONResponse(http.StatusNotFound, body), nil)
		svc.SetHTTPClient(&http.Client{Transport: rt})

		_, err := svc.PlaylistInfo(context.Background(), "PLgone")
		if !errors.Is(err, shared.ErrPlaylistNotFound) {
			t.Errorf("expected ErrPlaylistNotFound, got %v", err)
		}
	})

	t.Run("maps server errors as transient", func(t *testing.T) {
		svc, _ := services.NewYouTubeService("test-key", "")
		body := `{"error": {"code": 503, "message": "backend error", "errors": [{"reason": "backendError"}]}}`
		rt := helpers.NewMockRoundTripper(helpers.JSONResponse(http.StatusServiceUnavailable, body), nil)
		svc.SetHTTPClient(&http.Client{Transport: rt})

		_, err := svc.PlaylistInfo(context.Background(), "PLmix")
		if !errors.Is(err, shared.ErrTransient) {
			t.Errorf("expected ErrTransient, got %v", err)
		}
	})
}
