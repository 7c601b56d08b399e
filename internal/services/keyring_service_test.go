package services_test

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txtension/internal/services"
)

func newKeyring() *services.KeyringService {
	return services.NewKeyringService(keyring.NewArrayKeyring(nil))
}

func TestKeyringService_StoreAndGet(t *testing.T) {
	keys := newKeyring()

	require.NoError(t, keys.StoreApiKey("openai", []byte("sk-123")))

	got, err := keys.GetApiKey("openai")
	require.NoError(t, err)
	assert.Equal(t, "sk-123", got)
}

func TestKeyringService_GetMissingKeyIsEmpty(t *testing.T) {
	got, err := newKeyring().GetApiKey("gemini")

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestKeyringService_RejectsUnknownProvider(t *testing.T) {
	keys := newKeyring()

	assert.Error(t, keys.StoreApiKey("mistral", []byte("k")))
	assert.Error(t, keys.StoreApiKey("", []byte("k")))
	assert.Error(t, keys.StoreApiKey("openai", nil))

	_, err := keys.GetApiKey("mistral")
	assert.Error(t, err)
}

func TestKeyringService_DeleteIsIdempotent(t *testing.T) {
	keys := newKeyring()
	require.NoError(t, keys.StoreApiKey("anthropic", []byte("ak")))

	require.NoError(t, keys.DeleteApiKey("anthropic"))
	require.NoError(t, keys.DeleteApiKey("anthropic"))

	got, err := keys.GetApiKey("anthropic")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestKeyringService_ListIsSortedAndSkipsForeignItems(t *testing.T) {
	ring := keyring.NewArrayKeyring([]keyring.Item{{Key: "unrelated", Data: []byte("x")}})
	keys := services.NewKeyringService(ring)
	require.NoError(t, keys.StoreApiKey("openrouter", []byte("a")))
	require.NoError(t, keys.StoreApiKey("deepseek", []byte("b")))

	list, err := keys.ListApiKeys()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "deepseek", list[0]["provider"])
	assert.Equal(t, "openrouter", list[1]["provider"])
}

func TestOpenKeyring_FileBackendNeedsPassword(t *testing.T) {
	_, err := services.OpenKeyring(services.KeyringConfig{Backend: "file", Dir: t.TempDir()})
	assert.Error(t, err)

	_, err = services.OpenKeyring(services.KeyringConfig{Backend: "vault"})
	assert.Error(t, err)
}

func TestOpenKeyring_FileBackendRoundTrip(t *testing.T) {
	keys, err := services.OpenKeyring(services.KeyringConfig{Backend: "file", Dir: t.TempDir(), Password: "secret"})
	require.NoError(t, err)

	require.NoError(t, keys.StoreApiKey("custom", []byte("ck")))
	got, err := keys.GetApiKey("custom")
	require.NoError(t, err)
	assert.Equal(t, "ck", got)
}
