package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"txtension/internal/events"
	"txtension/internal/metrics"
	"txtension/internal/models"
	"txtension/internal/repositories"
	"txtension/internal/settings"
)

// SettingsKey is the storage key of the settings document.
const SettingsKey = "txSettings"

var ErrInvalidSettings = errors.New("settings update must be a JSON object")

type SettingsService interface {
	// Load returns the merged settings. Storage failures are logged and
	// yield defaults; only a missing catalog is an error.
	Load(ctx context.Context) (models.Settings, error)
	// Reconcile loads the merged settings and writes them back.
	Reconcile(ctx context.Context) (models.Settings, error)
	// Update merges a partial settings document over the current settings
	// and persists the result.
	Update(ctx context.Context, patch []byte) (models.Settings, error)
	SelectProvider(ctx context.Context, provider string) (models.Settings, error)
	SelectTone(ctx context.Context, tone string) (models.Settings, error)
	SelectTheme(ctx context.Context, theme string) (models.Settings, error)
	StorageKey() string
}

type settingsService struct {
	repo    repositories.SettingsRepository
	catalog CatalogService
	metrics *metrics.Metrics
}

func NewSettingsService(repo repositories.SettingsRepository, catalog CatalogService, m *metrics.Metrics) SettingsService {
	return &settingsService{repo: repo, catalog: catalog, metrics: m}
}

func (s *settingsService) StorageKey() string {
	return SettingsKey
}

func (s *settingsService) Load(ctx context.Context) (models.Settings, error) {
	catalog, err := s.catalog.Catalog()
	if err != nil {
		return models.Settings{}, fmt.Errorf("load catalog: %w", err)
	}

	raw, err := s.repo.Get(ctx, SettingsKey)
	if err != nil {
		log.Printf("settings: read failed, using defaults: %v", err)
		raw = nil
	}

	merged, err := settings.Reconcile(catalog, raw)
	if err != nil {
		log.Printf("settings: stored document unreadable, using defaults: %v", err)
	}
	return merged, nil
}

func (s *settingsService) Reconcile(ctx context.Context) (models.Settings, error) {
	merged, err := s.Load(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	if err := s.persist(ctx, merged); err != nil {
		return models.Settings{}, err
	}
	return merged, nil
}

func (s *settingsService) Update(ctx context.Context, patch []byte) (models.Settings, error) {
	stored, err := settings.Decode(patch)
	if err != nil {
		return models.Settings{}, ErrInvalidSettings
	}
	return s.apply(ctx, stored)
}

func (s *settingsService) SelectProvider(ctx context.Context, provider string) (models.Settings, error) {
	catalog, err := s.catalog.Catalog()
	if err != nil {
		return models.Settings{}, fmt.Errorf("load catalog: %w", err)
	}
	if provider == "" {
		return models.Settings{}, errors.New("provider is required")
	}
	if _, ok := catalog.Provider(models.ProviderID(provider)); !ok {
		return models.Settings{}, fmt.Errorf("unknown provider %q", provider)
	}
	return s.apply(ctx, settings.Stored{Provider: &provider})
}

func (s *settingsService) SelectTone(ctx context.Context, tone string) (models.Settings, error) {
	catalog, err := s.catalog.Catalog()
	if err != nil {
		return models.Settings{}, fmt.Errorf("load catalog: %w", err)
	}
	if tone == "" {
		return models.Settings{}, errors.New("tone is required")
	}
	if !catalog.HasTone(tone) {
		return models.Settings{}, fmt.Errorf("unknown tone %q", tone)
	}
	return s.apply(ctx, settings.Stored{TonePreset: &tone})
}

func (s *settingsService) SelectTheme(ctx context.Context, theme string) (models.Settings, error) {
	catalog, err := s.catalog.Catalog()
	if err != nil {
		return models.Settings{}, fmt.Errorf("load catalog: %w", err)
	}
	if theme == "" {
		return models.Settings{}, errors.New("theme is required")
	}
	if !catalog.HasTheme(theme) {
		return models.Settings{}, fmt.Errorf("unknown theme %q", theme)
	}
	return s.apply(ctx, settings.Stored{PopupStyle: &settings.StoredPopupStyle{Theme: &theme}})
}

func (s *settingsService) apply(ctx context.Context, patch settings.Stored) (models.Settings, error) {
	catalog, err := s.catalog.Catalog()
	if err != nil {
		return models.Settings{}, fmt.Errorf("load catalog: %w", err)
	}
	current, err := s.Load(ctx)
	if err != nil {
		return models.Settings{}, err
	}

	updated := settings.Apply(catalog, current, patch)
	if err := s.persist(ctx, updated); err != nil {
		return models.Settings{}, err
	}
	events.Emit(ctx, events.SettingsSaved, events.NewSuccess("settings saved").
		With("provider", string(updated.Provider), "tone", updated.TonePreset, "theme", updated.PopupStyle.Theme))
	return updated, nil
}

func (s *settingsService) persist(ctx context.Context, value models.Settings) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	err = s.repo.Put(ctx, SettingsKey, data)
	s.metrics.ObserveSettingsWrite(err)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}
