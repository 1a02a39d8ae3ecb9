package domain

import "time"

// Source describes a configured mail source.
type Source struct {
	// ID is the unique identifier for the source.
	ID string

	// Name is the human-readable name.
	Name string

	// Type is the connector type ("gmail", "filesystem").
	Type string

	// Config holds connector-specific settings as string pairs
	// (e.g., "path", "query", "label_ids").
	Config map[string]string
}

// SyncState tracks where a source's synchronisation left off.
type SyncState struct {
	// SourceID links to the synced source.
	SourceID string

	// Cursor is an opaque connector-defined position marker.
	Cursor string

	// LastSync is when the source last completed a sync.
	LastSync time.Time
}
