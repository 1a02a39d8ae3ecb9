package driven

import (
	"context"
	"errors"

	"github.com/orderlens/orderlens/internal/core/domain"
)

// Connector fetches mail documents from a source.
// Each connector type (gmail, filesystem) implements this interface.
type Connector interface {
	// Type returns the connector type identifier.
	Type() string

	// SourceID returns the configured source ID.
	SourceID() string

	// Capabilities returns what this connector supports.
	Capabilities() ConnectorCapabilities

	// Validate checks if the connector is properly configured and
	// authenticated. For API connectors, this typically makes a test
	// API call; for filesystem, this checks the path is readable.
	Validate(ctx context.Context) error

	// FullSync fetches all documents from the source.
	// Returns channels for documents and errors; both close when done.
	FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error)

	// IncrementalSync fetches only changes since the cursor in state.
	// Only available if SupportsIncremental is true. Connectors that
	// track cursors send SyncComplete on the error channel when done.
	IncrementalSync(ctx context.Context, state domain.SyncState) (<-chan domain.RawDocumentChange, <-chan error)

	// Watch listens for new documents in real time.
	// Only available if SupportsWatch is true.
	Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error)

	// Close releases resources.
	Close() error
}

// ConnectorCapabilities describes what a connector supports.
type ConnectorCapabilities struct {
	// SupportsIncremental indicates the connector can fetch only changes.
	SupportsIncremental bool

	// SupportsWatch indicates the connector can push real-time events.
	SupportsWatch bool

	// RequiresAuth indicates the connector needs authentication.
	RequiresAuth bool

	// SupportsValidation indicates Validate() performs a real check.
	SupportsValidation bool

	// SupportsCursorReturn indicates sync can return an updated cursor
	// via the SyncComplete sentinel on the error channel.
	SupportsCursorReturn bool

	// SupportsLabelling indicates processed documents can be tagged
	// at the source (e.g., Gmail labels).
	SupportsLabelling bool
}

// ConnectorFactory creates a connector for a configured source.
type ConnectorFactory interface {
	// Create builds a connector from the source definition.
	// Returns domain.ErrUnsupportedType for unknown source types.
	Create(ctx context.Context, source domain.Source) (Connector, error)
}

// SyncComplete is sent on the error channel when sync completes
// successfully. Carries the new cursor state for incremental sync.
type SyncComplete struct {
	NewCursor string
}

// Error implements the error interface so SyncComplete can travel
// on the error channel.
func (SyncComplete) Error() string {
	return "sync complete"
}

// IsSyncComplete checks if an error is actually a successful completion.
func IsSyncComplete(err error) (*SyncComplete, bool) {
	var sc *SyncComplete
	if errors.As(err, &sc) {
		return sc, true
	}
	return nil, false
}
