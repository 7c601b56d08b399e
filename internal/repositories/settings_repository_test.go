package repositories_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"

	"txtension/internal/database"
	"txtension/internal/repositories"
)

func openRepo(t *testing.T) repositories.SettingsRepository {
	t.Helper()
	db, err := database.Init(database.Config{
		Path:     filepath.Join(t.TempDir(), "test.db"),
		LogLevel: logger.Silent,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return repositories.NewSettingsRepository(db)
}

func TestSettingsRepository_GetMissingReturnsNil(t *testing.T) {
	repo := openRepo(t)

	value, err := repo.Get(context.Background(), "txSettings")

	assert.NoError(t, err)
	assert.Nil(t, value)
}

func TestSettingsRepository_PutThenGet(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "txSettings", []byte(`{"tonePreset":"point"}`)))
	value, err := repo.Get(ctx, "txSettings")

	assert.NoError(t, err)
	assert.JSONEq(t, `{"tonePreset":"point"}`, string(value))
}

func TestSettingsRepository_PutOverwrites(t *testing.T) {
	repo := openRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "txSettings", []byte(`{"a":1}`)))
	require.NoError(t, repo.Put(ctx, "txSettings", []byte(`{"a":2}`)))
	value, err := repo.Get(ctx, "txSettings")

	assert.NoError(t, err)
	assert.JSONEq(t, `{"a":2}`, string(value))
}

func TestSettingsRepository_EmptyKey(t *testing.T) {
	repo := openRepo(t)

	_, err := repo.Get(context.Background(), "")
	assert.EqualError(t, err, "settings key is required")

	err = repo.Put(context.Background(), "", []byte(`{}`))
	assert.EqualError(t, err, "settings key is required")
}
