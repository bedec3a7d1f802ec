// Package main initializes and starts the VLINKY API server,
// setting up configuration, logging, database connections, repositories,
// services, the realtime bridge, handlers, and optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/vlinky/vlinky/internal/config"
	"github.com/vlinky/vlinky/internal/db"
	"github.com/vlinky/vlinky/internal/logger"
	"github.com/vlinky/vlinky/internal/middleware"
	"github.com/vlinky/vlinky/internal/realtime"
	"github.com/vlinky/vlinky/internal/repository"
	"github.com/vlinky/vlinky/internal/server/handler/http"
	"github.com/vlinky/vlinky/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, file and environment configuration.
	options := config.Parse()

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize PostgreSQL connection.
	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	db.StartSessionCleaner(ctx, postgresDB, time.Hour, zapLogger)

	// Bridge Postgres notifications into the realtime hub.
	hub := realtime.NewHub(zapLogger)
	if err := realtime.Listen(ctx, options.DatabaseDSN, db.ApplicationsChannel, hub, zapLogger); err != nil {
		zapLogger.Fatal("cannot listen for changes", zap.Error(err))
	}

	// Initialize repositories.
	authRepo := repository.NewPostgresAuthRepository(postgresDB)
	favoritesRepo := repository.NewPostgresFavoritesRepository(postgresDB)
	applicationsRepo := repository.NewPostgresApplicationsRepository(postgresDB)
	videoRepo := repository.NewPostgresVideoRequestsRepository(postgresDB)
	catalogRepo := repository.NewCatalogReader(postgresDB)

	// Initialize business-logic services.
	authService := service.NewAuthService(authRepo, options.SessionTTL)
	favoritesService := service.NewFavoritesService(favoritesRepo)
	applicationsService := service.NewApplicationsService(applicationsRepo)
	videoService := service.NewVideoRequestsService(videoRepo)
	catalogService := service.NewCatalogService(catalogRepo)

	cors := middleware.NewCORSPolicy(options.Origins())
	limiter := middleware.NewIPRateLimiter(options.NotifyRatePerMinute, time.Minute, options.NotifyRatePerMinute, 10*time.Minute)

	// Build the router with middleware and routes.
	router := http.NewRouter(http.Router{
		Auth:          &http.AuthHandler{AuthService: authService},
		Favorites:     &http.FavoritesHandler{FavoritesService: favoritesService},
		Applications:  &http.ApplicationsHandler{ApplicationsService: applicationsService},
		VideoRequests: &http.VideoRequestsHandler{VideoRequestsService: videoService},
		Catalog:       &http.CatalogHandler{CatalogService: catalogService},
		Realtime:      &http.RealtimeHandler{Hub: hub, Log: zapLogger},
		Notify:        &http.NotifyHandler{Log: zapLogger},
		Health:        &http.HealthHandler{DB: postgresDB},
		Sessions:      authService,
		Admins:        authService,
		Limiter:       limiter,
		CORS:          cors,
	}, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Request contexts derive from ctx so open event streams end on shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	if options.TLSCertFile != "" && options.TLSKeyFile != "" {
		server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Port))
		err = server.ListenAndServeTLS(options.TLSCertFile, options.TLSKeyFile)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Port))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server failed", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
