// Package main initializes and starts the reference issue API server,
// setting up configuration, logging, storage, repositories, services,
// handlers, and optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/sethvargo/go-envconfig"
	"go.uber.org/zap"

	"github.com/atinyakov/IssueKeeper/internal/config"
	"github.com/atinyakov/IssueKeeper/internal/db"
	"github.com/atinyakov/IssueKeeper/internal/logger"
	"github.com/atinyakov/IssueKeeper/internal/repository"
	"github.com/atinyakov/IssueKeeper/internal/server/handler/http"
	"github.com/atinyakov/IssueKeeper/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, config file and environment configuration.
	fs := config.NewServerFlagSet(os.Args[0])
	options, err := config.ParseServer(fs, os.Args[1:], envconfig.OsLookuper())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))
	if v, _ := fs.GetBool("version"); v {
		return
	}

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, issues := openRepositories(ctx, options, zapLogger)

	secret := []byte(options.JWTSecret)
	if len(secret) == 0 {
		secret = randomSecret()
		zapLogger.Warn("no JWT secret configured; tokens will not survive a restart")
	}

	// Initialize business-logic services.
	authService := service.NewAuthService(users, secret, options.TokenTTL)
	issueService := service.NewIssueService(issues, users)

	if options.AdminEmail != "" {
		created, err := authService.EnsureAdmin(ctx, "Admin", options.AdminEmail, options.AdminPassword)
		if err != nil {
			zapLogger.Fatal("failed to seed admin", zap.Error(err))
		}
		if created {
			zapLogger.Info("seeded admin account", zap.String("email", options.AdminEmail))
		}
	}

	// Build the router with middleware and routes.
	router := http.NewRouter(
		&http.AuthHandler{AuthService: authService},
		&http.IssueHandler{IssueService: issueService},
		authService,
		zapLogger,
	)

	server := &nethttp.Server{
		Addr:              options.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	if options.TLSCert != "" {
		server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	errc := make(chan error, 1)
	go func() {
		zapLogger.Info("starting server",
			zap.String("addr", options.Addr),
			zap.Bool("tls", options.TLSCert != ""),
		)
		if options.TLSCert != "" {
			errc <- server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
			return
		}
		errc <- server.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, nethttp.ErrServerClosed) {
			zapLogger.Fatal("server failed", zap.Error(err))
		}
	case <-ctx.Done():
		zapLogger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}
}

// openRepositories returns PostgreSQL repositories when a DSN is set and
// starts the soft-delete cleaner; otherwise in-memory ones.
func openRepositories(ctx context.Context, options *config.ServerOptions, log *zap.Logger) (service.UserRepository, service.IssueRepository) {
	if options.DatabaseDSN == "" {
		log.Info("no database configured; keeping data in memory")
		return repository.NewMemoryUserRepository(), repository.NewMemoryIssueRepository()
	}

	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		log.Fatal("cannot init database", zap.Error(err))
	}
	db.StartSoftDeleteCleaner(ctx, postgresDB, options.PurgeInterval, options.PurgeRetention, log)

	return repository.NewPostgresUserRepository(postgresDB), repository.NewPostgresIssueRepository(postgresDB)
}

func randomSecret() []byte {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return []byte(hex.EncodeToString(b))
}
