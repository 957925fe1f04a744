package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrSecretNotFound is returned when a store has no value for a key.
var ErrSecretNotFound = errors.New("secret not found")

// SecretStore resolves credentials kept out of the config file.
type SecretStore interface {
	Get(ctx context.Context, key string) (string, error)
}

// EnvironmentSecretStore reads secrets from environment variables.
type EnvironmentSecretStore struct{}

func NewEnvironmentSecretStore() *EnvironmentSecretStore { return &EnvironmentSecretStore{} }

func (s *EnvironmentSecretStore) Get(_ context.Context, key string) (string, error) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, key)
	}
	return v, nil
}

func (s *EnvironmentSecretStore) GetWithDefault(ctx context.Context, key, def string) string {
	v, err := s.Get(ctx, key)
	if err != nil {
		return def
	}
	return v
}

// FileSecretStore reads one secret per file from a directory, as mounted by
// Docker or Kubernetes secrets.
type FileSecretStore struct {
	Dir string
}

func (s FileSecretStore) Get(_ context.Context, key string) (string, error) {
	if strings.ContainsAny(key, `/\`) || key == ".." {
		return "", fmt.Errorf("invalid secret key %q", key)
	}
	b, err := os.ReadFile(filepath.Join(s.Dir, key))
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, key)
	}
	if err != nil {
		return "", fmt.Errorf("read secret %s: %w", key, err)
	}
	return strings.TrimSpace(string(b)), nil
}

// Secret keys consulted by ApplySecrets.
const (
	SecretRedisPassword = "MEMORYMATCH_REDIS_PASSWORD"
	SecretSQLDSN        = "MEMORYMATCH_SQL_DSN"
	SecretNATSURL       = "MEMORYMATCH_NATS_URL"
)

// ApplySecrets fills credentials from store; missing secrets leave the
// configured values untouched.
func ApplySecrets(ctx context.Context, cfg *Config, store SecretStore) error {
	targets := map[string]*string{
		SecretRedisPassword: &cfg.Storage.Redis.Password,
		SecretSQLDSN:        &cfg.Storage.SQL.DSN,
		SecretNATSURL:       &cfg.Integrations.NATS.URL,
	}
	for key, dst := range targets {
		v, err := store.Get(ctx, key)
		if errors.Is(err, ErrSecretNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		*dst = v
	}
	return nil
}
