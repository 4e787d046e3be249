package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"task_manager/internal/config"
	"task_manager/internal/handlers"
	"task_manager/internal/hasher"
	"task_manager/internal/logger"
	"task_manager/internal/repository"
	"task_manager/internal/repository/db"
	"task_manager/internal/server"
	"task_manager/internal/service"
	"task_manager/internal/session"
)

// @title        Task Manager API
// @version      1.0
// @description  Session-authenticated personal task lists.
// @BasePath     /
func main() {
	// load configs/config.yml + TASKS_* env
	cfg, err := config.Load()
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "err", err)
	}

	// init logger
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = log.Sync() }()

	// context for startup and background goroutines
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// open DB and apply migrations
	conn, err := db.Open(ctx, cfg.DB.Driver, cfg.DB.DSN)
	if err != nil {
		log.Fatalw("failed to open database", "driver", cfg.DB.Driver, "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close database", "err", cerr)
		}
	}()

	// wire dependencies
	h, err := hasher.New(cfg.Auth.Algorithm, cfg.Auth.Cost)
	if err != nil {
		log.Fatalw("invalid password hasher settings", "err", err)
	}
	repos := repository.NewRepository(conn, repository.DialectFor(cfg.DB.Driver))
	services := service.NewService(repos, h)
	sessions := newSessionManager(cfg.Session, repos)
	apiHandler := handlers.NewHandler(services, sessions, handlers.Options{
		CookieName:   cfg.Session.CookieName,
		SecureCookie: cfg.Session.Secure,
		DB:           conn,
	}, log)

	// expire idle and stale sessions
	if cfg.Session.SweepInterval > 0 {
		go sessions.Run(ctx, cfg.Session.SweepInterval, log)
	}

	// start HTTP server
	srv := server.New(server.Options{
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	})
	runHTTPServer(srv, cfg.Port, apiHandler, log)

	// graceful shutdown
	waitForShutdown(cancel, srv, cfg.Server, log)
}

// newSessionManager keeps sessions in memory unless the sql backend is configured.
func newSessionManager(cfg config.Session, repos *repository.Repository) *session.Manager {
	var store session.Store = session.NewMemoryStore()
	if cfg.Backend == config.SessionBackendSQL {
		store = repos.Sessions
	}
	return session.NewManager(store, session.Options{
		Secret:          cfg.Secret,
		IdleTimeout:     cfg.IdleTimeout,
		AbsoluteTimeout: cfg.AbsoluteTimeout,
	})
}

// runHTTPServer runs the HTTP server in a separate goroutine.
func runHTTPServer(srv *server.Server, port string, handler *handlers.Handler, log *logger.Logger) {
	go func() {
		log.Infow("http_server_started", "port", port)
		if err := srv.Run(port, handler.InitRoutes()); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(cancel context.CancelFunc, srv *server.Server, cfg config.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	// stop background goroutines
	cancel()

	// allow in-flight requests to complete
	ctx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
