package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/youtify/internal/services"
	"github.com/desertthunder/youtify/internal/shared"
	"github.com/urfave/cli/v3"
)

const configPath = "config.toml"

func main() {
	logger := shared.NewLogger(nil)

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warnf("failed to load config: %v", err)
		}
	}

	var spotifyService *services.SpotifyService
	if config.Credentials.Spotify.ClientID != "" && config.Credentials.Spotify.ClientSecret != "" {
		if svc, err := services.NewSpotifyService(config.Credentials.Spotify); err == nil {
			if token := config.Credentials.Spotify.Token(); token != nil {
				svc.SetToken(token)
			}
			spotifyService = svc
		} else {
			logger.Warnf("failed to create Spotify service: %v", err)
		}
	}

	var youtubeService services.VideoSource
	if config.Credentials.YouTube.APIKey != "" {
		if svc, err := services.NewYouTubeService(config.Credentials.YouTube.APIKey, ""); err == nil {
			youtubeService = svc
		} else {
			logger.Warnf("failed to create YouTube service: %v", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		YouTube:    youtubeService,
		Spotify:    spotifyService,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "youtify",
		Usage:    "Convert YouTube playlists to Spotify playlists",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		}
		logger.Fatalf("application error: %v", err)
	}
}
