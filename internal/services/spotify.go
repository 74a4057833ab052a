// Spotify Web API implementation of [TrackSearch] and [PlaylistSink]
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/desertthunder/youtify/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"
)

// addTracksBatchSize is the Spotify API limit per add-items request.
const addTracksBatchSize = 100

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// SpotifyArtist represents a Spotify artist.
type SpotifyArtist struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URI  string `json:"uri"`
}

// SpotifyAlbum represents a Spotify album.
type SpotifyAlbum struct {
	ID     string         `json:"id"`
	Name   string         `json:"name"`
	Images []SpotifyImage `json:"images"`
	URI    string         `json:"uri"`
}

// SpotifyTrack represents a Spotify track.
type SpotifyTrack struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	Artists    []SpotifyArtist `json:"artists"`
	Album      SpotifyAlbum    `json:"album"`
	DurationMS int             `json:"duration_ms"`
	Popularity int             `json:"popularity"`
	PreviewURL string          `json:"preview_url"`
	URI        string          `json:"uri"`
}

type spotifySearchResponse struct {
	Tracks struct {
		Items []SpotifyTrack `json:"items"`
	} `json:"tracks"`
}

type spotifyErrorResponse struct {
	Error struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

// SpotifyService implements [TrackSearch] and [PlaylistSink] against the Spotify Web API.
//
// Search works with either a client-credentials or an authorization-code
// token; playlist creation requires the latter plus a user ID.
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	userID     string
	baseURL    string
	httpClient *http.Client
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(cfg shared.SpotifyConfig) (*SpotifyService, error) {
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("%w: missing Spotify client_id", shared.ErrMissingCredentials)
	}
	if cfg.ClientSecret == "" {
		return nil, fmt.Errorf("%w: missing Spotify client_secret", shared.ErrMissingCredentials)
	}

	redirectURI := cfg.RedirectURI
	if redirectURI == "" {
		redirectURI = "http://localhost:8080/callback"
	}

	config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  redirectURI,
		Scopes: []string{
			"playlist-modify-public",
			"playlist-modify-private",
		},
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		userID:     cfg.UserID,
		baseURL:    spotifyBaseURL,
		httpClient: http.DefaultClient,
	}, nil
}

// SetHTTPClient replaces the HTTP client, primarily for tests.
func (s *SpotifyService) SetHTTPClient(c *http.Client) {
	s.httpClient = c
}

// SetBaseURL overrides the API base URL, primarily for tests.
func (s *SpotifyService) SetBaseURL(u string) {
	s.baseURL = u
}

// AuthenticateClientCredentials obtains a search-only token via the
// client-credentials flow. Playlist creation still requires user consent.
func (s *SpotifyService) AuthenticateClientCredentials(ctx context.Context) error {
	cc := &clientcredentials.Config{
		ClientID:     s.config.ClientID,
		ClientSecret: s.config.ClientSecret,
		TokenURL:     s.config.Endpoint.TokenURL,
	}

	token, err := cc.Token(ctx)
	if err != nil {
		return fmt.Errorf("%w: client credentials flow: %v", shared.ErrAuthFailed, err)
	}

	s.token = token
	return nil
}

// AuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) AuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// OAuthConfig exposes the underlying OAuth2 config for the callback server.
func (s *SpotifyService) OAuthConfig() *oauth2.Config {
	return s.config
}

// SetToken installs a token obtained via the authorization-code flow.
func (s *SpotifyService) SetToken(token *oauth2.Token) {
	s.token = token
}

// Authenticated reports whether a token is installed.
func (s *SpotifyService) Authenticated() bool {
	return s.token != nil
}

func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	if s.token == nil {
		return fmt.Errorf("%w: call AuthenticateClientCredentials or complete the OAuth flow first", shared.ErrNotAuthenticated)
	}

	var reqBody *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+s.token.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrTransient, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return s.mapStatusError(resp)
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// mapStatusError translates HTTP failures into the shared taxonomy.
//
// 429 carries the Retry-After hint; 401 surfaces as an auth expiry the caller
// must resolve (never retried here).
func (s *SpotifyService) mapStatusError(resp *http.Response) error {
	var apiErr spotifyErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&apiErr)
	msg := apiErr.Error.Message
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		retryAfter := time.Second
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, err := strconv.Atoi(v); err == nil {
				retryAfter = time.Duration(secs) * time.Second
			}
		}
		return &RateLimitError{RetryAfter: retryAfter}
	case resp.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", shared.ErrAuthExpired, msg)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, msg)
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: spotify API status %d: %s", shared.ErrTransient, resp.StatusCode, msg)
	default:
		return fmt.Errorf("%w: spotify API status %d: %s", shared.ErrAPIRequest, resp.StatusCode, msg)
	}
}

// Query searches the track catalog and returns up to pageSize results.
func (s *SpotifyService) Query(ctx context.Context, query string, pageSize int) ([]TrackResult, error) {
	if pageSize <= 0 {
		pageSize = 10
	}
	if pageSize > 50 {
		pageSize = 50
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", "track")
	params.Set("limit", strconv.Itoa(pageSize))

	var resp spotifySearchResponse
	if err := s.doRequest(ctx, http.MethodGet, "/search?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	results := make([]TrackResult, 0, len(resp.Tracks.Items))
	for _, item := range resp.Tracks.Items {
		results = append(results, trackResultFrom(item))
	}

	return results, nil
}

// trackResultFrom flattens the API track shape into the engine's [TrackResult].
func trackResultFrom(t SpotifyTrack) TrackResult {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}

	artwork := ""
	if len(t.Album.Images) > 0 {
		artwork = t.Album.Images[0].URL
	}

	return TrackResult{
		ID:         t.ID,
		URI:        t.URI,
		Name:       t.Name,
		Artists:    artists,
		Album:      t.Album.Name,
		DurationMS: t.DurationMS,
		Popularity: t.Popularity,
		PreviewURL: t.PreviewURL,
		ArtworkURL: artwork,
	}
}

// currentUserID resolves the user ID via /me when not configured.
func (s *SpotifyService) currentUserID(ctx context.Context) (string, error) {
	if s.userID != "" {
		return s.userID, nil
	}

	var me struct {
		ID string `json:"id"`
	}
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &me); err != nil {
		return "", err
	}

	s.userID = me.ID
	return me.ID, nil
}

// CreatePlaylist creates a playlist for the authenticated user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name, description string, public bool) (*Playlist, error) {
	userID, err := s.currentUserID(ctx)
	if err != nil {
		return nil, err
	}

	body := struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Public      bool   `json:"public"`
	}{name, description, public}

	var created struct {
		ID           string `json:"id"`
		Name         string `json:"name"`
		Description  string `json:"description"`
		Public       bool   `json:"public"`
		ExternalURLs struct {
			Spotify string `json:"spotify"`
		} `json:"external_urls"`
	}

	endpoint := fmt.Sprintf("/users/%s/playlists", url.PathEscape(userID))
	if err := s.doRequest(ctx, http.MethodPost, endpoint, body, &created); err != nil {
		return nil, err
	}

	return &Playlist{
		ID:          created.ID,
		Name:        created.Name,
		Description: created.Description,
		Public:      created.Public,
		URL:         created.ExternalURLs.Spotify,
	}, nil
}

// AddTracks adds track URIs to a playlist in batches of 100.
//
// A failed batch is recorded per-URI and does not abort the remaining batches.
func (s *SpotifyService) AddTracks(ctx context.Context, playlistRef string, trackURIs []string) (*AddTracksReport, error) {
	report := &AddTracksReport{}
	endpoint := fmt.Sprintf("/playlists/%s/tracks", url.PathEscape(playlistRef))

	for start := 0; start < len(trackURIs); start += addTracksBatchSize {
		end := min(start+addTracksBatchSize, len(trackURIs))
		batch := trackURIs[start:end]

		body := struct {
			URIs []string `json:"uris"`
		}{batch}

		if err := s.doRequest(ctx, http.MethodPost, endpoint, body, nil); err != nil {
			report.Failed = append(report.Failed, batch...)
			continue
		}
		report.Added += len(batch)
	}

	return report, nil
}
