// YouTube Data API v3 implementation of [VideoSource]
//
// Response shapes based on https://developers.google.com/youtube/v3/docs/playlistItems
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/desertthunder/youtify/internal/shared"
)

const defaultYouTubeBaseURL = "https://www.googleapis.com/youtube/v3"

// youtubePageSize is the maximum playlistItems page size the API allows.
const youtubePageSize = 50

var playlistIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[?&]list=([a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`playlist\?list=([a-zA-Z0-9_-]+)`),
}

// ExtractPlaylistID extracts a playlist ID from the common YouTube URL forms
// (playlist pages, watch URLs with a list parameter, youtu.be short links).
//
// A bare playlist ID is returned unchanged.
func ExtractPlaylistID(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty playlist URL", shared.ErrInvalidInput)
	}

	if !strings.Contains(raw, "youtube.com") && !strings.Contains(raw, "youtu.be") {
		if regexp.MustCompile(`^[a-zA-Z0-9_-]+$`).MatchString(raw) {
			return raw, nil
		}
		return "", fmt.Errorf("%w: not a YouTube URL: %s", shared.ErrInvalidInput, raw)
	}

	for _, pattern := range playlistIDPatterns {
		if m := pattern.FindStringSubmatch(raw); m != nil {
			return m[1], nil
		}
	}

	return "", fmt.Errorf("%w: no playlist ID in URL: %s", shared.ErrInvalidInput, raw)
}

type youtubeSnippet struct {
	Title                  string `json:"title"`
	Description            string `json:"description"`
	ChannelTitle           string `json:"channelTitle"`
	VideoOwnerChannelTitle string `json:"videoOwnerChannelTitle"`
	PublishedAt            string `json:"publishedAt"`
	ResourceID             struct {
		VideoID string `json:"videoId"`
	} `json:"resourceId"`
}

type youtubeItem struct {
	Snippet        youtubeSnippet `json:"snippet"`
	ContentDetails struct {
		ItemCount int `json:"itemCount"`
	} `json:"contentDetails"`
}

type youtubeListResponse struct {
	Items         []youtubeItem `json:"items"`
	NextPageToken string        `json:"nextPageToken"`
	Error         *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}

// YouTubeService implements [VideoSource] against the YouTube Data API v3.
type YouTubeService struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewYouTubeService creates a new YouTube Data API client.
//
// An empty baseURL falls back to the production endpoint.
func NewYouTubeService(apiKey, baseURL string) (*YouTubeService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%w: missing YouTube API key", shared.ErrMissingCredentials)
	}
	if baseURL == "" {
		baseURL = defaultYouTubeBaseURL
	}

	return &YouTubeService{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}, nil
}

// SetHTTPClient replaces the HTTP client, primarily for tests.
func (y *YouTubeService) SetHTTPClient(c *http.Client) {
	y.httpClient = c
}

func (y *YouTubeService) doRequest(ctx context.Context, endpoint string, params url.Values, result *youtubeListResponse) error {
	params.Set("key", y.apiKey)
	apiURL := fmt.Sprintf("%s/%s?%s", y.baseURL, endpoint, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := y.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransient, err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if result.Error != nil {
		return y.mapAPIError(resp.StatusCode, result)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if resp.StatusCode >= 500 {
			return fmt.Errorf("%w: youtube API status %d", shared.ErrTransient, resp.StatusCode)
		}
		return fmt.Errorf("%w: youtube API status %d", shared.ErrAPIRequest, resp.StatusCode)
	}

	return nil
}

// mapAPIError translates the API's error envelope into the shared taxonomy.
func (y *YouTubeService) mapAPIError(status int, result *youtubeListResponse) error {
	reason := ""
	if len(result.Error.Errors) > 0 {
		reason = result.Error.Errors[0].Reason
	}

	switch {
	case reason == "quotaExceeded" || reason == "dailyLimitExceeded":
		return fmt.Errorf("%w: %s", shared.ErrQuotaExceeded, result.Error.Message)
	case reason == "playlistNotFound" || status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, result.Error.Message)
	case status >= 500:
		return fmt.Errorf("%w: %s", shared.ErrTransient, result.Error.Message)
	default:
		return fmt.Errorf("%w: %s (%s)", shared.ErrAPIRequest, result.Error.Message, reason)
	}
}

// PlaylistInfo retrieves playlist metadata without items.
func (y *YouTubeService) PlaylistInfo(ctx context.Context, playlistRef string) (*Playlist, error) {
	params := url.Values{}
	params.Set("part", "snippet,contentDetails")
	params.Set("id", playlistRef)

	var resp youtubeListResponse
	if err := y.doRequest(ctx, "playlists", params, &resp); err != nil {
		return nil, err
	}

	if len(resp.Items) == 0 {
		return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistRef)
	}

	item := resp.Items[0]
	return &Playlist{
		ID:          playlistRef,
		Name:        item.Snippet.Title,
		Description: item.Snippet.Description,
		TrackCount:  item.ContentDetails.ItemCount,
		URL:         fmt.Sprintf("https://www.youtube.com/playlist?list=%s", playlistRef),
	}, nil
}

// ListTitles retrieves all video titles in playlist order, paginating through
// the playlistItems endpoint.
//
// Deleted and private videos are skipped; the " - Topic" suffix auto-generated
// channels carry is stripped from channel names.
func (y *YouTubeService) ListTitles(ctx context.Context, playlistRef string, progress func(current, total int)) ([]RawTitle, error) {
	total := 0
	if info, err := y.PlaylistInfo(ctx, playlistRef); err == nil {
		total = info.TrackCount
	}

	var titles []RawTitle
	pageToken := ""
	processed := 0

	for {
		params := url.Values{}
		params.Set("part", "snippet")
		params.Set("playlistId", playlistRef)
		params.Set("maxResults", fmt.Sprintf("%d", youtubePageSize))
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var resp youtubeListResponse
		if err := y.doRequest(ctx, "playlistItems", params, &resp); err != nil {
			return nil, err
		}

		for _, item := range resp.Items {
			processed++

			title := item.Snippet.Title
			if title == "Deleted video" || title == "Private video" {
				continue
			}

			channel := item.Snippet.VideoOwnerChannelTitle
			if channel == "" {
				channel = item.Snippet.ChannelTitle
			}
			channel = strings.TrimSuffix(channel, " - Topic")

			titles = append(titles, RawTitle{
				VideoID:   item.Snippet.ResourceID.VideoID,
				Title:     title,
				Channel:   channel,
				Published: item.Snippet.PublishedAt,
			})

			if progress != nil {
				if total > 0 {
					progress(processed, total)
				} else {
					progress(processed, processed)
				}
			}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return titles, nil
}
