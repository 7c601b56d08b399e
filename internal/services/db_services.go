package services

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"txtension/internal/llm/client"
	"txtension/internal/metrics"
	"txtension/internal/repositories"
)

// Options tunes the service container. Zero values use the defaults.
type Options struct {
	Keys              *KeyringService
	Metrics           *metrics.Metrics
	DispatchTimeout   time.Duration
	KeepAliveInterval time.Duration
}

// DbServices holds the services wired over one database handle.
type DbServices struct {
	Catalog   CatalogService
	Settings  SettingsService
	Messages  MessageService
	KeepAlive *KeepAliveService
	Keys      *KeyringService
}

// NewDbServices constructs the service container using repositories backed by db.
func NewDbServices(db *gorm.DB, opts Options) (*DbServices, error) {
	catalogService := NewCatalogService()
	catalog, err := catalogService.Catalog()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}

	settingsRepo := repositories.NewSettingsRepository(db)
	settingsService := NewSettingsService(settingsRepo, catalogService, opts.Metrics)

	var dispatchOpts []client.Option
	if opts.DispatchTimeout > 0 {
		dispatchOpts = append(dispatchOpts, client.WithTimeout(opts.DispatchTimeout))
	}
	dispatcher := client.NewDispatcher(catalog, dispatchOpts...)

	messageOpts := []MessageOption{WithMetrics(opts.Metrics)}
	if opts.Keys != nil {
		messageOpts = append(messageOpts, WithAPIKeyStore(opts.Keys))
	}

	return &DbServices{
		Catalog:   catalogService,
		Settings:  settingsService,
		Messages:  NewMessageService(catalogService, settingsService, dispatcher, messageOpts...),
		KeepAlive: NewKeepAliveService(opts.KeepAliveInterval),
		Keys:      opts.Keys,
	}, nil
}
