package driving

import (
	"context"

	"github.com/orderlens/orderlens/internal/core/domain"
)

// SyncOrchestrator coordinates fetching, normalising and analysing
// documents from a source.
type SyncOrchestrator interface {
	// Sync processes all pending documents from the source and returns
	// the analyses produced. Results are not persisted.
	Sync(ctx context.Context, source domain.Source) ([]domain.Analysis, error)

	// Watch processes documents as the source produces them, pushing
	// each analysis to the configured notifier. Blocks until the
	// context is cancelled.
	Watch(ctx context.Context, source domain.Source) error

	// Status returns sync status for a source.
	Status(ctx context.Context, sourceID string) (*SyncStatus, error)
}

// SyncStatus reports the progress of a running sync.
type SyncStatus struct {
	// SourceID identifies the source being synced.
	SourceID string

	// Running indicates a sync is in progress.
	Running bool

	// DocumentsProcessed counts analysed documents so far.
	DocumentsProcessed int

	// ErrorCount counts documents that failed to process.
	ErrorCount int
}
