package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/oauth2"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Matching    MatchingConfig    `toml:"matching"`
	Search      SearchConfig      `toml:"search"`
	Database    DatabaseConfig    `toml:"database"`
	Playlist    PlaylistConfig    `toml:"playlist"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Spotify SpotifyConfig `toml:"spotify"`
	YouTube YouTubeConfig `toml:"youtube"`
}

// SpotifyConfig contains Spotify API credentials and saved OAuth tokens.
type SpotifyConfig struct {
	ClientID     string    `toml:"client_id"`
	ClientSecret string    `toml:"client_secret"`
	RedirectURI  string    `toml:"redirect_uri"`
	UserID       string    `toml:"user_id"`
	AccessToken  string    `toml:"access_token,omitempty"`
	RefreshToken string    `toml:"refresh_token,omitempty"`
	TokenExpiry  time.Time `toml:"token_expiry,omitempty"`
}

// Update stores a freshly issued OAuth token on the config.
func (s *SpotifyConfig) Update(token *oauth2.Token) error {
	if token == nil {
		return fmt.Errorf("%w: token cannot be nil", ErrInvalidArgument)
	}
	s.AccessToken = token.AccessToken
	if token.RefreshToken != "" {
		s.RefreshToken = token.RefreshToken
	}
	s.TokenExpiry = token.Expiry
	return nil
}

// Token reconstructs the saved OAuth token, or nil when none is stored.
func (s *SpotifyConfig) Token() *oauth2.Token {
	if s.AccessToken == "" {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		Expiry:       s.TokenExpiry,
		TokenType:    "Bearer",
	}
}

// YouTubeConfig contains YouTube Data API credentials.
type YouTubeConfig struct {
	APIKey string `toml:"api_key"`
}

// MatchingConfig contains the confidence thresholds used to classify match results.
//
// All values are in [0,1] and must satisfy high >= medium >= low.
type MatchingConfig struct {
	HighThreshold    float64 `toml:"high_threshold"`
	MediumThreshold  float64 `toml:"medium_threshold"`
	LowThreshold     float64 `toml:"low_threshold"`
	SeparationMargin float64 `toml:"separation_margin"`
}

// SearchConfig contains search ladder and retry settings.
type SearchConfig struct {
	RelevanceFloor    float64 `toml:"relevance_floor"`     // Minimum song similarity for a ladder rung to short-circuit
	PageSize          int     `toml:"page_size"`           // Results requested per query
	MaxRanked         int     `toml:"max_ranked"`          // Ranked matches kept per title
	MaxRetries        int     `toml:"max_retries"`         // Retry cap for failed external calls
	BackoffInitialMS  int     `toml:"backoff_initial_ms"`  // First retry delay; doubles per attempt
	Concurrency       int     `toml:"concurrency"`         // Titles processed concurrently
	RequestsPerSecond float64 `toml:"requests_per_second"` // External search call budget
	CacheTTLHours     int     `toml:"cache_ttl_hours"`     // Search cache entry lifetime; 0 disables caching
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// PlaylistConfig contains destination playlist defaults.
type PlaylistConfig struct {
	DescriptionTemplate string `toml:"description_template"`
	Public              bool   `toml:"public"`
}

// LoadConfig reads, parses, and validates a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks threshold ordering and value ranges.
//
// Runs at load time so an invalid configuration fails before any title is processed.
func (c *Config) Validate() error {
	m := c.Matching
	for name, v := range map[string]float64{
		"high_threshold":    m.HighThreshold,
		"medium_threshold":  m.MediumThreshold,
		"low_threshold":     m.LowThreshold,
		"separation_margin": m.SeparationMargin,
		"relevance_floor":   c.Search.RelevanceFloor,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s %.2f out of range [0,1]", ErrInvalidConfig, name, v)
		}
	}

	if m.HighThreshold < m.MediumThreshold || m.MediumThreshold < m.LowThreshold {
		return fmt.Errorf("%w: thresholds must satisfy high >= medium >= low (got %.2f/%.2f/%.2f)",
			ErrInvalidConfig, m.HighThreshold, m.MediumThreshold, m.LowThreshold)
	}

	if c.Search.PageSize <= 0 {
		return fmt.Errorf("%w: page_size must be positive", ErrInvalidConfig)
	}
	if c.Search.MaxRanked <= 0 {
		return fmt.Errorf("%w: max_ranked must be positive", ErrInvalidConfig)
	}
	if c.Search.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must not be negative", ErrInvalidConfig)
	}
	if c.Search.Concurrency <= 0 {
		return fmt.Errorf("%w: concurrency must be positive", ErrInvalidConfig)
	}

	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// SaveConfig writes the configuration back to a TOML file, preserving tokens.
func SaveConfig(path string, config *Config) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidArgument)
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
