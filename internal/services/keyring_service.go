package services

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/99designs/keyring"

	"txtension/internal/models"
)

const serviceName = "txtension"

// KeyringConfig selects the keyring backend. Backend "system" lets the
// library pick the OS store, "file" uses an encrypted file store in Dir.
type KeyringConfig struct {
	Backend  string
	Dir      string
	Password string
}

// KeyringService stores provider API keys outside the settings database.
type KeyringService struct {
	ring keyring.Keyring
}

func NewKeyringService(ring keyring.Keyring) *KeyringService {
	return &KeyringService{ring: ring}
}

// OpenKeyring opens the configured backend.
func OpenKeyring(cfg KeyringConfig) (*KeyringService, error) {
	config := keyring.Config{
		ServiceName:      serviceName,
		FileDir:          cfg.Dir,
		FilePasswordFunc: keyring.FixedStringPrompt(cfg.Password),
	}
	switch strings.ToLower(cfg.Backend) {
	case "", "file":
		if cfg.Password == "" {
			return nil, errors.New("keyring password is required for the file backend")
		}
		config.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	case "system":
	default:
		return nil, fmt.Errorf("unknown keyring backend %q", cfg.Backend)
	}

	ring, err := keyring.Open(config)
	if err != nil {
		return nil, fmt.Errorf("open keyring: %w", err)
	}
	return NewKeyringService(ring), nil
}

func (s *KeyringService) StoreApiKey(provider string, apiKey []byte) error {
	if len(apiKey) == 0 {
		return errors.New("API key is empty")
	}
	if err := validateProvider(provider); err != nil {
		return err
	}

	return s.ring.Set(keyring.Item{
		Key:         provider,
		Data:        apiKey,
		Label:       provider + " API key",
		Description: "API key for " + provider + " used by TXtension",
	})
}

// GetApiKey returns the stored key, or "" when none is stored.
func (s *KeyringService) GetApiKey(provider string) (string, error) {
	if err := validateProvider(provider); err != nil {
		return "", err
	}
	item, err := s.ring.Get(provider)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(item.Data), nil
}

func (s *KeyringService) DeleteApiKey(provider string) error {
	if err := validateProvider(provider); err != nil {
		return err
	}
	err := s.ring.Remove(provider)
	if errors.Is(err, keyring.ErrKeyNotFound) || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func (s *KeyringService) ListApiKeys() ([]map[string]string, error) {
	keys, err := s.ring.Keys()
	if err != nil {
		return nil, err
	}
	sort.Strings(keys)

	var results []map[string]string
	for _, provider := range keys {
		if !models.ProviderID(provider).Valid() {
			continue
		}
		results = append(results, map[string]string{
			"provider":    provider,
			"label":       provider + " API key",
			"description": "API key for " + provider + " used by TXtension",
		})
	}
	return results, nil
}

func validateProvider(provider string) error {
	if provider == "" {
		return errors.New("provider is required")
	}
	if !models.ProviderID(provider).Valid() {
		return fmt.Errorf("unsupported provider %q", provider)
	}
	return nil
}
