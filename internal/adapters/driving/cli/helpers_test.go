package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/orderlens/orderlens/internal/adapters/driven/config/file"
	"github.com/orderlens/orderlens/internal/core/domain"
	"github.com/orderlens/orderlens/internal/core/ports/driving"
)

// resetServices clears the package-level service wiring between tests.
func resetServices(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		analysisService = nil
		syncOrchestrator = nil
		normaliserRegistry = nil
		configStore = nil
		tokenProvider = nil
		exporter = nil
	})
}

// mockSyncOrchestrator records calls and returns canned results.
type mockSyncOrchestrator struct {
	analyses []domain.Analysis
	syncErr  error
	status   *driving.SyncStatus

	synced  []string
	watched []string
}

func (m *mockSyncOrchestrator) Sync(_ context.Context, source domain.Source) ([]domain.Analysis, error) {
	m.synced = append(m.synced, source.ID)
	return m.analyses, m.syncErr
}

func (m *mockSyncOrchestrator) Watch(_ context.Context, source domain.Source) error {
	m.watched = append(m.watched, source.ID)
	return nil
}

func (m *mockSyncOrchestrator) Status(_ context.Context, sourceID string) (*driving.SyncStatus, error) {
	if m.status != nil {
		return m.status, nil
	}
	return &driving.SyncStatus{SourceID: sourceID}, nil
}

// newEmptyConfigStore creates a config store with no sources.
func newEmptyConfigStore(t *testing.T) (*file.ConfigStore, error) {
	t.Helper()
	return file.NewConfigStore(t.TempDir())
}

// newTestConfigStore creates a config store in a temp dir with one
// filesystem source configured.
func newTestConfigStore(t *testing.T) *file.ConfigStore {
	t.Helper()

	store, err := file.NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("sources.local-drop.name", "Drop folder"))
	require.NoError(t, store.Set("sources.local-drop.type", "filesystem"))
	require.NoError(t, store.Set("sources.local-drop.path", t.TempDir()))

	return store
}
