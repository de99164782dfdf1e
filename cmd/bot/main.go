// Package main is the entry point for the SocialStreak bot.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"socialstreak/internal/bot"
	"socialstreak/internal/challenge"
	"socialstreak/internal/config"
	"socialstreak/internal/pkg/db"
	"socialstreak/internal/pkg/kvstore"
	"socialstreak/internal/pkg/lock"
	"socialstreak/internal/repository"
	"socialstreak/internal/service"
)

func main() {
	// Configure zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	// Load configuration
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log.Info().Msg("Configuration loaded successfully")

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize the remote profile store
	dbPool, err := db.NewPool(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to profile store")
	}
	defer dbPool.Close()

	if err := runMigrations(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("Failed to run database migrations")
	}

	// Open the device-local store; degrade to in-memory for the session
	// when it cannot be opened.
	var localStore kvstore.Store
	sqliteStore, err := kvstore.NewSQLite(cfg.LocalStore.Path)
	if err != nil {
		log.Warn().Err(err).Str("path", cfg.LocalStore.Path).
			Msg("Local store unavailable, per-day state will not survive restarts")
		localStore = kvstore.NewMemory()
	} else {
		localStore = sqliteStore
	}
	defer localStore.Close()

	// Initialize repositories and services
	profileRepo := repository.NewProfileRepository(dbPool.Pool)
	friendRepo := repository.NewFriendRepository(dbPool.Pool)

	profileService := service.NewProfileService(profileRepo)
	socialService := service.NewSocialService(profileRepo, friendRepo)
	leaderboardService := service.NewLeaderboardService(friendRepo)

	// The notifier indirection lets the streak tracker exist before the
	// bot that ultimately delivers its notices.
	var notifier challenge.Notifier = challenge.LogNotifier{}
	streaks := challenge.NewStreakTracker(
		service.NewStreakStore(profileRepo),
		challenge.NotifierFunc(func(userID int64, message string) {
			notifier.Notify(userID, message)
		}),
		challenge.StreakTrackerConfig{
			Timeout:      cfg.Challenge.RemoteTimeout,
			WriteRetries: cfg.Challenge.WriteRetries,
			RetryBackoff: cfg.Challenge.RetryBackoff,
		},
	)

	// Initialize the daily challenge engine
	engine, err := challenge.NewEngine(challenge.EngineConfig{
		Catalog:      challenge.Default(),
		Store:        localStore,
		Streaks:      streaks,
		Locks:        lock.NewUserLock(),
		Location:     cfg.Challenge.Location(),
		TickInterval: cfg.Challenge.TickInterval,
		OnComplete: func(userID int64, points int) {
			profileService.RecordCompletion(context.Background(), userID, points)
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create challenge engine")
	}

	engine.Start(ctx)
	defer engine.Stop()

	// Initialize bot
	telegramBot, err := bot.New(&bot.Dependencies{
		Config:             cfg,
		Engine:             engine,
		ProfileService:     profileService,
		SocialService:      socialService,
		LeaderboardService: leaderboardService,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create bot")
	}
	notifier = telegramBot.Notifier()

	// Setup graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Info().Msg("Bot is starting...")
		telegramBot.Start()
	}()

	sig := <-sigChan
	log.Info().Str("signal", sig.String()).Msg("Received shutdown signal")

	telegramBot.Stop()
	log.Info().Msg("Bot stopped gracefully")
}

// runMigrations executes database migrations for the profile store.
func runMigrations(ctx context.Context, pool *db.Pool) error {
	log.Info().Msg("Running database migrations...")

	// Migration 1: Create profiles table
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS profiles (
			user_id BIGINT PRIMARY KEY,
			username VARCHAR(255) NOT NULL,
			full_name VARCHAR(255),
			streak INT NOT NULL DEFAULT 0,
			points BIGINT NOT NULL DEFAULT 0,
			total_challenges INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_profiles_points ON profiles(points DESC);
		CREATE INDEX IF NOT EXISTS idx_profiles_username ON profiles(username);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 1: profiles table created")

	// Migration 2: Create friend_requests table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS friend_requests (
			id BIGSERIAL PRIMARY KEY,
			sender_id BIGINT NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
			receiver_id BIGINT NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
			status VARCHAR(20) NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_friend_requests_receiver ON friend_requests(receiver_id, status, created_at DESC);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 2: friend_requests table created")

	// Migration 3: Create friends table
	_, err = pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS friends (
			user_id BIGINT NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
			friend_id BIGINT NOT NULL REFERENCES profiles(user_id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, friend_id)
		);
	`)
	if err != nil {
		return err
	}
	log.Info().Msg("Migration 3: friends table created")

	log.Info().Msg("All migrations completed successfully")
	return nil
}
