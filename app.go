package main

import (
	"context"
	"fmt"
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"txtension/internal/config"
	"txtension/internal/database"
	"txtension/internal/metrics"
	"txtension/internal/services"
)

// App owns the process-wide resources of the background service.
type App struct {
	ctx      context.Context
	cfg      config.Config
	registry *prometheus.Registry
	services *services.DbServices
	dbClose  func() error
}

// NewApp creates a new App application struct
func NewApp(cfg config.Config) *App {
	return &App{cfg: cfg}
}

// startup opens the database and keyring, wires services and reconciles the
// stored settings with the current defaults.
func (a *App) startup(ctx context.Context) error {
	a.ctx = ctx

	db, err := database.Init(database.Config{
		Path:     a.cfg.DBPath,
		LogLevel: database.ParseLogLevel(a.cfg.LogLevel),
		Colorful: a.cfg.LogColor,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// Capture DB close for graceful shutdown
	if sqlDB, err := db.DB(); err != nil {
		log.Printf("app: failed to get sql.DB: %v", err)
	} else {
		a.dbClose = sqlDB.Close
	}

	keys, err := a.openKeyring()
	if err != nil {
		a.shutdown(ctx)
		return err
	}

	a.registry = prometheus.NewRegistry()
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	svc, err := services.NewDbServices(db, services.Options{
		Keys:    keys,
		Metrics: metrics.MustNew(a.registry),
	})
	if err != nil {
		a.shutdown(ctx)
		return err
	}
	a.services = svc

	if _, err := svc.Settings.Reconcile(ctx); err != nil {
		log.Printf("app: settings reconciliation failed: %v", err)
	}
	return nil
}

func (a *App) openKeyring() (*services.KeyringService, error) {
	if a.cfg.Keyring.Backend == "none" {
		return nil, nil
	}
	keys, err := services.OpenKeyring(services.KeyringConfig{
		Backend:  a.cfg.Keyring.Backend,
		Dir:      a.cfg.Keyring.Dir,
		Password: a.cfg.Keyring.Password,
	})
	if err != nil {
		log.Printf("app: keyring unavailable: %v", err)
		return nil, nil
	}
	return keys, nil
}

// shutdown is called when the process is exiting. Clean up resources here.
func (a *App) shutdown(ctx context.Context) {
	if a.services != nil {
		a.services.KeepAlive.Stop()
	}

	// Close database connection pool
	if a.dbClose != nil {
		if err := a.dbClose(); err != nil {
			log.Printf("app: failed to close database: %v", err)
		}
		a.dbClose = nil
	}
}

func (a *App) keys() (*services.KeyringService, error) {
	if a.services == nil || a.services.Keys == nil {
		return nil, fmt.Errorf("keyring not available (backend %q)", a.cfg.Keyring.Backend)
	}
	return a.services.Keys, nil
}
