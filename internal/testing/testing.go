// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/youtify/internal/services"
	"github.com/desertthunder/youtify/internal/shared"
)

// MockVideoSource is a test double for [services.VideoSource]
type MockVideoSource struct {
	Playlist *services.Playlist
	Titles   []services.RawTitle
	Err      error
}

func (m *MockVideoSource) PlaylistInfo(ctx context.Context, playlistRef string) (*services.Playlist, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Playlist != nil {
		return m.Playlist, nil
	}
	return &services.Playlist{ID: playlistRef, Name: "Test Playlist", TrackCount: len(m.Titles)}, nil
}

func (m *MockVideoSource) ListTitles(ctx context.Context, playlistRef string, progress func(current, total int)) ([]services.RawTitle, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for i := range m.Titles {
		if progress != nil {
			progress(i+1, len(m.Titles))
		}
	}
	return m.Titles, nil
}

// MockTrackSearch scripts results per query and records the queries issued.
//
// Results are matched by exact query string; unmatched queries return the
// Default slice (nil by default). Errors can be scripted per query to fire
// a fixed number of times before succeeding.
type MockTrackSearch struct {
	mu       sync.Mutex
	Results  map[string][]services.TrackResult
	Default  []services.TrackResult
	Errors   map[string]error
	ErrCount map[string]int
	Queries  []string
}

func (m *MockTrackSearch) Query(ctx context.Context, query string, pageSize int) ([]services.TrackResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Queries = append(m.Queries, query)

	if err, ok := m.Errors[query]; ok {
		if m.ErrCount == nil || m.ErrCount[query] != 0 {
			if m.ErrCount != nil && m.ErrCount[query] > 0 {
				m.ErrCount[query]--
			}
			return nil, err
		}
	}

	if results, ok := m.Results[query]; ok {
		if pageSize > 0 && len(results) > pageSize {
			return results[:pageSize], nil
		}
		return results, nil
	}
	return m.Default, nil
}

// QueryCount returns how many queries were issued.
func (m *MockTrackSearch) QueryCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Queries)
}

// SawQuery reports whether a query containing substr was issued.
func (m *MockTrackSearch) SawQuery(substr string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range m.Queries {
		if strings.Contains(q, substr) {
			return true
		}
	}
	return false
}

// MockPlaylistSink is a test double for [services.PlaylistSink]
type MockPlaylistSink struct {
	Created   []services.Playlist
	AddedURIs []string
	CreateErr error
	AddErr    error
}

func (m *MockPlaylistSink) CreatePlaylist(ctx context.Context, name, description string, public bool) (*services.Playlist, error) {
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	p := services.Playlist{
		ID:          fmt.Sprintf("created-%d", len(m.Created)),
		Name:        name,
		Description: description,
		Public:      public,
	}
	m.Created = append(m.Created, p)
	return &p, nil
}

func (m *MockPlaylistSink) AddTracks(ctx context.Context, playlistRef string, trackURIs []string) (*services.AddTracksReport, error) {
	if m.AddErr != nil {
		return nil, m.AddErr
	}
	m.AddedURIs = append(m.AddedURIs, trackURIs...)
	return &services.AddTracksReport{Added: len(trackURIs)}, nil
}

// MockQueryCache is an in-memory [match.QueryCache] double.
type MockQueryCache struct {
	mu      sync.Mutex
	entries map[string][]services.TrackResult
	Hits    int
	Misses  int
}

func (m *MockQueryCache) Get(query string, pageSize int) ([]services.TrackResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%s|%d", query, pageSize)
	results, ok := m.entries[key]
	if ok {
		m.Hits++
	} else {
		m.Misses++
	}
	return results, ok
}

func (m *MockQueryCache) Put(query string, pageSize int, results []services.TrackResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.entries == nil {
		m.entries = make(map[string][]services.TrackResult)
	}
	m.entries[fmt.Sprintf("%s|%d", query, pageSize)] = results
}

// MockRoundTripper serves scripted HTTP responses in order
type MockRoundTripper struct {
	mu        sync.Mutex
	responses []*http.Response
	err       error
	index     int
	Requests  []*http.Request
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	var responses []*http.Response
	if r != nil {
		responses = []*http.Response{r}
	}
	return &MockRoundTripper{responses: responses, err: e}
}

// NewSequenceRoundTripper serves each response once, in order, then repeats
// the last one.
func NewSequenceRoundTripper(responses ...*http.Response) *MockRoundTripper {
	return &MockRoundTripper{responses: responses}
}

func (m *MockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Requests = append(m.Requests, req)
	if m.err != nil {
		return nil, m.err
	}
	if len(m.responses) == 0 {
		return nil, errors.New("no scripted response")
	}

	resp := m.responses[m.index]
	if m.index < len(m.responses)-1 {
		m.index++
	}
	return resp, nil
}

// JSONResponse builds an *http.Response with a JSON string body.
func JSONResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// DiscardLogger returns a logger that writes nowhere.
func DiscardLogger() *log.Logger {
	return shared.NewLogger(io.Discard)
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
