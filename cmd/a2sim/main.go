// main is the entry point of the a2sim application.
// It loads the server file, starts the player simulation and the challenge rotation,
// and answers A2S queries over UDP until interrupted.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/a2sim/internal/api"
	"github.com/woozymasta/a2sim/internal/challenge"
	"github.com/woozymasta/a2sim/internal/config"
	"github.com/woozymasta/a2sim/internal/engine"
	"github.com/woozymasta/a2sim/internal/geoip"
	"github.com/woozymasta/a2sim/internal/logger"
	"github.com/woozymasta/a2sim/internal/maintenance"
	"github.com/woozymasta/a2sim/internal/profile"
	"github.com/woozymasta/a2sim/internal/server"
	"github.com/woozymasta/a2sim/internal/simulator"
	"github.com/woozymasta/a2sim/internal/storage"
	"github.com/woozymasta/a2sim/internal/telemetry"
)

const defaultQueryPort = 27015

func main() {
	cfg := config.Parse()

	logCloser := logger.Setup(cfg.Logger)
	defer func() { _ = logCloser.Close() }()

	// statistics or probe tasks
	if maintenance.Run(cfg, os.Stdout) {
		return
	}

	log.Info().Msg("Starting a2sim service...")

	prof, err := profile.Load(cfg.Server.File)
	if err != nil {
		log.Fatal().Err(err).Str("file", cfg.Server.File).Msg("Failed to load server file")
	}

	log.Info().
		Str("name", prof.Info.Name).
		Str("map", prof.Info.Map).
		Int("rules", len(prof.Rules)).
		Int("simulated_players", prof.Players.Count).
		Msg("Server file loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var background sync.WaitGroup

	// Challenge
	auth, err := challenge.New()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to generate challenge")
	}
	background.Add(1)
	go func() {
		defer background.Done()
		auth.Run(ctx, cfg.Simulation.ChallengeRotation)
	}()

	// Player simulation
	simOpts, err := prof.Players.SimulatorOptions()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid players section")
	}
	sim, err := simulator.New(simOpts)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start player simulation")
	}

	// MQTT roster publisher
	if cfg.MQTT.Broker != "" {
		pub, err := telemetry.New(cfg.MQTT, prof.Info.Name, prof.Info.MaxPlayers)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to configure MQTT")
		}
		if err := pub.Connect(); err != nil {
			log.Error().Err(err).Msg("MQTT unavailable, roster publishing disabled")
		} else {
			unsubscribe := sim.Subscribe(pub.Publish)
			defer pub.Close()
			defer unsubscribe()
		}
	}

	background.Add(1)
	go func() {
		defer background.Done()
		sim.Run(ctx, cfg.Simulation.Tick)
	}()

	// Statistics
	var (
		recorder server.Recorder
		stats    api.StatsSource
	)
	if cfg.Storage.Path != "" {
		store, err := storage.New(cfg.Storage.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize database")
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error().Err(err).Msg("Error closing database")
			}
		}()
		recorder, stats = store, store
	}

	// GeoIP
	var geoProvider *geoip.Provider
	if cfg.GeoIP.Path != "" && recorder != nil {
		log.Info().Msg("Checking GeoIP database...")
		if err := geoip.EnsureDB(ctx, cfg.GeoIP.Path, cfg.GeoIP.URL, cfg.GeoIP.Interval); err != nil {
			log.Error().Err(err).Msg("Failed to download GeoIP database")
		}

		geoProvider, err = geoip.Open(cfg.GeoIP.Path)
		if err != nil {
			log.Error().Err(err).Msg("Failed to open GeoIP database, country detection disabled")
			geoProvider = nil
		} else {
			defer func() {
				if err := geoProvider.Close(); err != nil {
					log.Error().Err(err).Msg("Error closing GeoIP provider")
				}
			}()
		}
	}

	// A2S responder
	responder := server.New(engine.New(prof.Info, prof.Rules, sim, auth), recorder, geoProvider, server.Options{
		Address:    listenAddress(cfg, prof),
		Workers:    cfg.Server.Workers,
		QueueSize:  cfg.Server.QueueSize,
		ReadBuffer: cfg.Server.ReadBuffer,
		RateCount:  cfg.RateLimit.Count,
		RateWindow: cfg.RateLimit.Window,
		RateIdle:   cfg.RateLimit.Idle,
	})
	if err := responder.Listen(); err != nil {
		log.Fatal().Err(err).Msg("Failed to start A2S responder")
	}
	responder.Start()

	// Status API
	var httpServer *http.Server
	if cfg.API.Address != "" {
		httpServer = &http.Server{
			Addr:         cfg.API.Address,
			Handler:      api.New(prof.Info, prof.Rules, sim, stats, cfg.API.AuthToken).Handler(),
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		go func() {
			log.Info().Str("address", cfg.API.Address).Msg("Status API listening")
			if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Fatal().Err(err).Msg("Status API failed")
			}
		}()
	}

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down...")

	if httpServer != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Status API forced to shutdown")
		}
		shutdownCancel()
	}

	// Stop answering (drains queued datagrams and statistics)
	responder.Stop()

	// Stop simulation and challenge rotation
	cancel()
	background.Wait()

	log.Info().Msg("a2sim exited")
}

// listenAddress prefers the command line over the host and queryport of the server file.
func listenAddress(cfg *config.Config, prof *profile.Profile) string {
	if cfg.Server.Address != "" {
		return cfg.Server.Address
	}

	port := int(prof.QueryPort)
	if port == 0 {
		port = defaultQueryPort
	}

	return net.JoinHostPort(prof.Host, strconv.Itoa(port))
}
