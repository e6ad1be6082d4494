package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/messagely/messagely-go/internal/config"
	"github.com/messagely/messagely-go/internal/crypto"
	"github.com/messagely/messagely-go/internal/handler"
	"github.com/messagely/messagely-go/internal/repository"
	"github.com/messagely/messagely-go/internal/repository/memory"
	"github.com/messagely/messagely-go/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Warn("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()})))

	if err := run(cfg); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	users, messages, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	hasher, err := crypto.NewHasher(cfg.HashAlgorithm, cfg.WorkFactor)
	if err != nil {
		return err
	}
	tokens, err := crypto.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	if err != nil {
		return err
	}

	userService := service.NewUserService(users, hasher)
	svc := handler.Services{
		Auth:     service.NewAuthService(userService, tokens),
		Users:    userService,
		Messages: service.NewMessageService(messages, users),
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.NewRouter(svc, tokens, cfg.RequestTimeout),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port, "env", cfg.Env, "store", cfg.Store, "hash", hasher.Algorithm())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	slog.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	slog.Info("server stopped")
	return nil
}

// openStore returns the user and message stores selected by STORE along with
// a function releasing their resources.
func openStore(cfg config.Config) (service.UserStore, service.MessageStore, func(), error) {
	if cfg.Store == config.StoreMemory {
		slog.Warn("using in-memory store, data is lost on restart")
		store := memory.New()
		return store.Users(), store.Messages(), func() {}, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	db, err := repository.NewDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := repository.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			slog.Error("close database", "error", err)
		}
	}
	return repository.NewUserRepository(db), repository.NewMessageRepository(db), closeDB, nil
}
