// Package main is the corral server entrypoint: it loads configuration,
// connects to Postgres, runs migrations and serves the record API until
// interrupted.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/corralhq/corral/internal/api"
	"github.com/corralhq/corral/internal/config"
	"github.com/corralhq/corral/internal/db"
	"github.com/corralhq/corral/internal/db/migrations"
	"github.com/corralhq/corral/internal/dbpool"
	"github.com/corralhq/corral/internal/filter"
	"github.com/corralhq/corral/internal/schema"
	"github.com/corralhq/corral/internal/service"
	"github.com/corralhq/corral/internal/store"
	"github.com/corralhq/corral/internal/ws"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(lvl)
	}

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server exited")
	}
}

// run wires the stores, services and HTTP server, then blocks until a
// shutdown signal or a fatal listener error.
func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The catalog is static; a mapping mistake should stop the binary
	// before it takes traffic.
	if err := schema.ValidateCatalog(); err != nil {
		return fmt.Errorf("entity catalog: %w", err)
	}

	pool, err := dbpool.NewPool(ctx, cfg.DatabaseURL.Value(), cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, log, migrations.FS); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	log.WithField("schema_version", db.SchemaVersion()).Info("database ready")

	base := store.Base{Pool: pool, Log: log}
	auditStore := store.NewAuditStore(base)

	auditWorker := service.NewAuditWorker(auditStore, log, cfg.AuditQueueSize)
	go auditWorker.Run(ctx)

	opts := filter.Options{CaseInsensitive: cfg.MatchCaseInsensitive}
	projects := service.NewRecordService(store.NewRecords(base, schema.Projects()), schema.Projects(), auditWorker, log, opts)
	contacts := service.NewRecordService(store.NewRecords(base, schema.Contacts()), schema.Contacts(), auditWorker, log, opts)
	categories := service.NewRecordService(store.NewRecords(base, schema.Categories()), schema.Categories(), auditWorker, log, opts)
	tasks := service.NewRecordService(store.NewRecords(base, schema.Tasks()), schema.Tasks(), auditWorker, log, opts)
	domains := service.NewDomainService(store.NewDomainStore(base), auditStore, log)
	audit := service.NewAuditService(auditStore, log)

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	bridge := db.NewNotifyBridge(log, pool, hub)
	if err := bridge.Start(ctx); err != nil {
		return fmt.Errorf("starting notify bridge: %w", err)
	}

	router := api.NewRouter(ctx, &api.RouterDeps{
		Log:          log,
		Pool:         pool,
		Hub:          hub,
		Projects:     projects,
		Contacts:     contacts,
		Categories:   categories,
		Tasks:        tasks,
		Domains:      domains,
		Audit:        audit,
		DomainLookup: store.NewKeyResolver(pool),
		AdminKey:     cfg.AdminKey.Value(),
		CORSOrigins:  cfg.CORSOrigins,
		Version:      config.Version,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(logrus.Fields{"addr": cfg.Addr(), "version": config.Version}).Info("corral listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("shutting down")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	// Cancelling the root context stops the hub, notify bridge and audit
	// worker; the worker drains queued entries on its way out.
	cancel()

	return nil
}
