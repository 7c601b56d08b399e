package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txtension/internal/metrics"
	"txtension/internal/models"
	"txtension/internal/services"
	"txtension/internal/tests/mocks"
)

func newSettingsService(repo *mocks.SettingsRepositoryMock) services.SettingsService {
	return services.NewSettingsService(repo, services.NewCatalogService(), metrics.MustNew(prometheus.NewRegistry()))
}

func seed(t *testing.T, repo *mocks.SettingsRepositoryMock, doc string) {
	t.Helper()
	require.NoError(t, repo.Put(context.Background(), services.SettingsKey, []byte(doc)))
	repo.Puts = 0
}

func TestSettingsService_LoadWithoutStoredDocument(t *testing.T) {
	service := newSettingsService(&mocks.SettingsRepositoryMock{})

	loaded, err := service.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, models.ProviderGemini, loaded.Provider)
	assert.Equal(t, "noir", loaded.PopupStyle.Theme)
}

func TestSettingsService_LoadReadErrorFallsBackToDefaults(t *testing.T) {
	repo := &mocks.SettingsRepositoryMock{
		GetFunc: func(ctx context.Context, key string) ([]byte, error) {
			return nil, errors.New("database is locked")
		},
	}
	service := newSettingsService(repo)

	loaded, err := service.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "simple", loaded.TonePreset)
}

func TestSettingsService_LoadCorruptDocumentFallsBackToDefaults(t *testing.T) {
	repo := &mocks.SettingsRepositoryMock{}
	seed(t, repo, `{{{`)
	service := newSettingsService(repo)

	loaded, err := service.Load(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "simple", loaded.TonePreset)
}

func TestSettingsService_ReconcilePersistsMergedSettings(t *testing.T) {
	repo := &mocks.SettingsRepositoryMock{}
	seed(t, repo, `{"reply": {"minWords": 40, "maxWords": 10}, "discordReply": {"enabled": true}}`)
	service := newSettingsService(repo)

	merged, err := service.Reconcile(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, repo.Puts)
	assert.Equal(t, 10, merged.Reply.MinWords)
	assert.Equal(t, 40, merged.Reply.MaxWords)

	var stored map[string]any
	require.NoError(t, json.Unmarshal(repo.Stored(services.SettingsKey), &stored))
	assert.Contains(t, stored, "providerSettings")
	assert.NotContains(t, stored["discordReply"], "enabled")
}

func TestSettingsService_UpdateMergesPatch(t *testing.T) {
	repo := &mocks.SettingsRepositoryMock{}
	seed(t, repo, `{"tonePreset": "point", "providerSettings": {"openai": {"apiKey": "sk-1"}}}`)
	service := newSettingsService(repo)

	updated, err := service.Update(context.Background(), []byte(`{"providerSettings": {"openai": {"model": "gpt-x"}}, "reply": {"maxWords": 0}}`))

	require.NoError(t, err)
	assert.Equal(t, "point", updated.TonePreset)
	assert.Equal(t, "sk-1", updated.ProviderSettings[models.ProviderOpenAI].APIKey)
	assert.Equal(t, "gpt-x", updated.ProviderSettings[models.ProviderOpenAI].Model)
	assert.Equal(t, 0, updated.Reply.MinWords)
	assert.Equal(t, 3, updated.Reply.MaxWords)
	assert.Equal(t, 1, repo.Puts)
}

func TestSettingsService_UpdateRejectsNonObject(t *testing.T) {
	repo := &mocks.SettingsRepositoryMock{}
	service := newSettingsService(repo)

	_, err := service.Update(context.Background(), []byte(`"theme"`))

	assert.EqualError(t, err, "settings update must be a JSON object")
	assert.Equal(t, 0, repo.Puts)
}

func TestSettingsService_UpdateWriteError(t *testing.T) {
	repo := &mocks.SettingsRepositoryMock{
		PutFunc: func(ctx context.Context, key string, value []byte) error {
			return errors.New("disk full")
		},
	}
	service := newSettingsService(repo)

	_, err := service.Update(context.Background(), []byte(`{"autoCopy": true}`))

	assert.EqualError(t, err, "save settings: disk full")
}

func TestSettingsService_SelectProvider(t *testing.T) {
	repo := &mocks.SettingsRepositoryMock{}
	service := newSettingsService(repo)

	updated, err := service.SelectProvider(context.Background(), "anthropic")
	require.NoError(t, err)
	assert.Equal(t, models.ProviderAnthropic, updated.Provider)

	_, err = service.SelectProvider(context.Background(), "mistral")
	assert.EqualError(t, err, `unknown provider "mistral"`)

	_, err = service.SelectProvider(context.Background(), "")
	assert.EqualError(t, err, "provider is required")
}

func TestSettingsService_SelectToneAndTheme(t *testing.T) {
	repo := &mocks.SettingsRepositoryMock{}
	service := newSettingsService(repo)
	ctx := context.Background()

	updated, err := service.SelectTone(ctx, "comprehensive")
	require.NoError(t, err)
	assert.Equal(t, "comprehensive", updated.TonePreset)

	updated, err = service.SelectTheme(ctx, "pearl")
	require.NoError(t, err)
	assert.Equal(t, "pearl", updated.PopupStyle.Theme)
	assert.Equal(t, "comprehensive", updated.TonePreset)

	_, err = service.SelectTone(ctx, "angry")
	assert.EqualError(t, err, `unknown tone "angry"`)

	_, err = service.SelectTheme(ctx, "neon")
	assert.EqualError(t, err, `unknown theme "neon"`)
}

func TestSettingsService_StorageKey(t *testing.T) {
	service := newSettingsService(&mocks.SettingsRepositoryMock{})

	assert.Equal(t, "txSettings", service.StorageKey())
}

func TestCatalogService_LoadsOnceAndReportsErrors(t *testing.T) {
	catalog := services.NewCatalogService()
	first, err := catalog.Catalog()
	require.NoError(t, err)
	second, err := catalog.Catalog()
	require.NoError(t, err)
	assert.Same(t, first, second)

	broken := services.NewCatalogServiceFromData([]byte(`{`))
	_, err = broken.Catalog()
	assert.Error(t, err)
}
