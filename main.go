// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/quickly-vote/audit"
	"github.com/danielhkuo/quickly-vote/auth"
	"github.com/danielhkuo/quickly-vote/cache"
	"github.com/danielhkuo/quickly-vote/cliparse"
	"github.com/danielhkuo/quickly-vote/db"
	"github.com/danielhkuo/quickly-vote/election"
	"github.com/danielhkuo/quickly-vote/ledger"
	"github.com/danielhkuo/quickly-vote/middleware"
	"github.com/danielhkuo/quickly-vote/models"
	"github.com/danielhkuo/quickly-vote/notify"
	"github.com/danielhkuo/quickly-vote/results"
	"github.com/danielhkuo/quickly-vote/router"
)

func main() {
	if err := cliparse.LoadDotEnv(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}
	slog.SetDefault(newLogger(cfg))

	ctx := context.Background()
	clock := election.SystemClock{}

	// Connect to the primary database
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(ctx, dbConn); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)
	store := db.NewStore(dbConn, cfg.DatabaseType)

	// Results can be served from a read replica
	resultsStore := store
	if cfg.ReadDatabaseURL != "" {
		readConn, err := db.Open(ctx, cfg.DatabaseType, cfg.ReadDatabaseURL)
		if err != nil {
			slog.Error("read replica connection failed", "error", err)
			os.Exit(1)
		}
		defer readConn.Close()
		resultsStore = db.NewStore(readConn, cfg.DatabaseType)
		slog.Info("Serving results from read replica")
	}

	if cfg.AdminEmail != "" {
		if err := bootstrapAdmin(ctx, store, clock, cfg); err != nil {
			slog.Error("admin bootstrap failed", "error", err)
			os.Exit(1)
		}
	}

	// Audit entries are written off the request path
	auditQueue := audit.NewQueue(audit.NewRecorder(store, clock, cfg.AuditDetailMax), clock, cfg.AuditQueueSize)

	var sender notify.Sender = notify.LogSender{}
	if cfg.SMTPEnabled() {
		sender = notify.NewSMTPSender(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		})
		slog.Info("Vote confirmations enabled", "smtp_host", cfg.SMTPHost)
	}
	dispatcher := notify.NewDispatcher(sender, func(ctx context.Context, voterID string) (string, string, error) {
		v, err := store.VoterByID(ctx, voterID)
		if err != nil {
			return "", "", err
		}
		return v.Email, v.Name, nil
	}, cfg.NotifyQueueSize, 2, 0)

	var resultsCache results.Cache
	if cfg.RedisURL != "" {
		rc, err := cache.NewRedisResults(ctx, cfg.RedisURL, cfg.ResultsCacheTTL)
		if err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer rc.Close()
		resultsCache = rc
		slog.Info("Results cache enabled", "ttl", cfg.ResultsCacheTTL)
	}

	// Create router
	mux := router.NewRouter(router.Deps{
		Store:   store,
		Ledger:  ledger.New(store, clock, auditQueue, dispatcher),
		Results: results.NewAggregator(resultsStore, clock, resultsCache),
		Audit:   auditQueue,
		Clock:   clock,
		Salt:    cfg.SessionSalt,
	})

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}

	// Drain background writers before the database closes
	auditQueue.Close()
	dispatcher.Close()
}

func newLogger(cfg cliparse.Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// bootstrapAdmin makes sure an admin with cfg.AdminEmail exists and logs
// its session token.
func bootstrapAdmin(ctx context.Context, store *db.Store, clock election.Clock, cfg cliparse.Config) error {
	email := strings.ToLower(strings.TrimSpace(cfg.AdminEmail))

	admin, err := store.VoterByEmail(ctx, email)
	if errors.Is(err, db.ErrNotFound) {
		id := uuid.NewString()
		admin = models.Voter{
			ID:         id,
			ExternalID: id,
			Name:       "Administrator",
			Email:      email,
			Role:       models.RoleAdmin,
			CreatedAt:  clock.Now(),
		}
		if err := store.CreateVoter(ctx, admin); err != nil {
			return err
		}
		slog.Info("Created admin voter", "email", email, "voter_id", admin.ID)
	} else if err != nil {
		return err
	}

	if admin.Role != models.RoleAdmin {
		slog.Warn("ADMIN_EMAIL belongs to a non-admin voter", "email", email, "role", admin.Role)
		return nil
	}
	slog.Info("Admin session", "voter_id", admin.ID, "token", auth.GenerateSessionToken(admin.ID, cfg.SessionSalt))
	return nil
}
