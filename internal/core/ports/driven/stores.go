package driven

import (
	"context"

	"github.com/orderlens/orderlens/internal/core/domain"
)

// SyncStateStore persists sync cursors per source.
// Analyses themselves are never persisted; only the position markers
// needed to resume synchronisation survive a restart.
type SyncStateStore interface {
	// Get returns the sync state for a source.
	// Returns domain.ErrNotFound if the source has never synced.
	Get(ctx context.Context, sourceID string) (*domain.SyncState, error)

	// Save stores the sync state for a source.
	Save(ctx context.Context, state domain.SyncState) error

	// Delete removes the sync state for a source.
	Delete(ctx context.Context, sourceID string) error
}

// CredentialsStore persists OAuth tokens per provider.
type CredentialsStore interface {
	// GetToken returns the serialised token for a provider.
	// Returns domain.ErrNotFound when no token is stored.
	GetToken(ctx context.Context, provider string) ([]byte, error)

	// SaveToken stores the serialised token for a provider.
	SaveToken(ctx context.Context, provider string, token []byte) error

	// DeleteToken removes the stored token for a provider.
	DeleteToken(ctx context.Context, provider string) error
}

// ConfigStore provides persistent key-value configuration.
type ConfigStore interface {
	// Get retrieves a configuration value by key.
	Get(key string) (any, bool)

	// GetString retrieves a string configuration value.
	GetString(key string) string

	// GetInt retrieves an integer configuration value.
	GetInt(key string) int

	// GetBool retrieves a boolean configuration value.
	GetBool(key string) bool

	// Set stores a configuration value and persists it.
	Set(key string, value any) error
}

// TokenProvider supplies a valid access token for API calls.
type TokenProvider interface {
	// GetToken returns a valid access token, refreshing if needed.
	GetToken(ctx context.Context) (string, error)
}
