package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"cadence/internal/analysis"
	"cadence/internal/auth"
	"cadence/internal/config"
	"cadence/internal/logger"
	"cadence/internal/openai"
	"cadence/internal/schedule"
	"cadence/internal/service"
	"cadence/internal/sticker"
	"cadence/internal/store"
	"cadence/internal/strava"
	"cadence/internal/web"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Println("No config file found. Creating example config...")
		if err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		configDir, _ := config.GetConfigDir()
		fmt.Printf("\nPlease edit the config file at:\n  %s/config.json\n\n", configDir)
		fmt.Println("You need to add your Strava API credentials and an OpenAI API key.")
		fmt.Println("Get Strava credentials from: https://www.strava.com/settings/api")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Validate config
	if err := cfg.Validate(); err != nil {
		configDir, _ := config.GetConfigDir()
		fmt.Printf("Config validation failed: %v\n\n", err)
		fmt.Printf("Please edit the config file at:\n  %s/config.json\n", configDir)
		return nil
	}

	gin.SetMode(cfg.Server.Mode)

	lg, err := logger.New(cfg.Server.Mode)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer lg.Sync()

	// Open storage
	backend, err := store.OpenBackend(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
	}
	st := store.New(backend)
	defer st.Close()
	lg.Info("Storage ready", "backend", cfg.Storage.Backend, "dir", cfg.Storage.Dir)

	oauthCfg := auth.NewOAuthConfig(auth.Config{
		ClientID:     cfg.Strava.ClientID,
		ClientSecret: cfg.Strava.ClientSecret,
		RedirectURL:  cfg.Strava.RedirectURL,
	})
	tokens := auth.NewTokenStore(oauthCfg, st, lg)

	llm, err := openai.NewClient(cfg.OpenAI, lg)
	if err != nil {
		return fmt.Errorf("creating completion client: %w", err)
	}
	lg.Info("Completion client ready", "model", llm.Model())

	renderer, err := sticker.NewRenderer(cfg.Sticker.FontPath)
	if err != nil {
		return fmt.Errorf("loading sticker font: %w", err)
	}

	// Create services
	stravaClient := strava.NewClient(tokens)
	mirror := service.NewMirror(stravaClient, st, lg, cfg.Strava.MapsAPIKey)
	zones := analysis.HRZones{
		RestingHR:   cfg.Athlete.RestingHR,
		MaxHR:       cfg.Athlete.MaxHR,
		ThresholdHR: cfg.Athlete.ThresholdHR,
	}

	deps := web.Deps{
		Store:    st,
		OAuth:    oauthCfg,
		Tokens:   tokens,
		Mirror:   mirror,
		Coach:    service.NewCoach(st, llm, zones, lg),
		Chat:     service.NewChat(st, mirror, llm, lg),
		Profiles: service.NewProfiles(st),
		Sticker:  renderer,
	}

	gcal, err := schedule.NewGoogleCalendarFromConfig(ctx, cfg.Calendar, lg)
	switch {
	case errors.Is(err, schedule.ErrCalendarDisabled):
		lg.Info("Google Calendar push disabled")
	case err != nil:
		return fmt.Errorf("setting up Google Calendar: %w", err)
	default:
		deps.Calendar = gcal
	}

	srv, err := web.NewServer(cfg.Server, deps, lg)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	lg.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
