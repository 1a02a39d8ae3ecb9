package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/orderlens/orderlens/internal/core/domain"
	"github.com/orderlens/orderlens/internal/core/ports/driven"
	"github.com/orderlens/orderlens/internal/core/ports/driving"
	"github.com/orderlens/orderlens/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// SyncOrchestrator coordinates fetching, normalising and analysing
// documents from a source. Analyses are pushed to the notifier and
// returned; nothing but the sync cursor is persisted.
type SyncOrchestrator struct {
	syncStore driven.SyncStateStore
	factory   driven.ConnectorFactory
	registry  driven.NormaliserRegistry
	analyzer  driving.AnalysisService
	notifier  driven.Notifier

	// Status tracking
	mu          sync.RWMutex
	activeSyncs map[string]*driving.SyncStatus
}

// NewSyncOrchestrator creates a new sync orchestrator.
// The notifier is optional; if nil, results are only returned.
func NewSyncOrchestrator(
	syncStore driven.SyncStateStore,
	factory driven.ConnectorFactory,
	registry driven.NormaliserRegistry,
	analyzer driving.AnalysisService,
	notifier driven.Notifier,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		syncStore:   syncStore,
		factory:     factory,
		registry:    registry,
		analyzer:    analyzer,
		notifier:    notifier,
		activeSyncs: make(map[string]*driving.SyncStatus),
	}
}

// Sync processes all pending documents from a source.
func (o *SyncOrchestrator) Sync(ctx context.Context, source domain.Source) ([]domain.Analysis, error) {
	if o.factory == nil {
		return nil, fmt.Errorf("create connector: connector factory not configured")
	}
	connector, err := o.factory.Create(ctx, source)
	if err != nil {
		return nil, fmt.Errorf("create connector: %w", err)
	}
	defer connector.Close()

	caps := connector.Capabilities()
	if caps.SupportsValidation {
		if err := connector.Validate(ctx); err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrConnectorValidation, err)
		}
	}

	syncState, err := o.syncStore.Get(ctx, source.ID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("get sync state: %w", err)
	}

	status := &driving.SyncStatus{
		SourceID: source.ID,
		Running:  true,
	}
	o.setStatus(source.ID, status)
	defer o.clearStatus(source.ID)

	logger.Info("Starting sync for source %s", source.ID)

	var (
		analyses  []domain.Analysis
		newCursor string
	)

	if caps.SupportsIncremental && syncState != nil && syncState.Cursor != "" {
		changesCh, errsCh := connector.IncrementalSync(ctx, *syncState)
		analyses, newCursor, err = o.processChanges(ctx, connector, changesCh, errsCh, status)
	} else {
		docsCh, errsCh := connector.FullSync(ctx)
		analyses, newCursor, err = o.processDocuments(ctx, connector, docsCh, errsCh, status)
		// For full sync, fall back to current time if no cursor was returned
		if err == nil && newCursor == "" && caps.SupportsCursorReturn {
			newCursor = fmt.Sprintf("%d", time.Now().UnixNano())
		}
	}

	if err != nil {
		return nil, err
	}

	newState := domain.SyncState{
		SourceID: source.ID,
		Cursor:   newCursor,
		LastSync: time.Now(),
	}
	if err := o.syncStore.Save(ctx, newState); err != nil {
		return nil, fmt.Errorf("save sync state: %w", err)
	}

	logger.Info("Sync complete: %d documents, %d errors", status.DocumentsProcessed, status.ErrorCount)
	status.Running = false
	return analyses, nil
}

// Watch processes documents as the source produces them until the
// context is cancelled. Requires a connector with watch support.
func (o *SyncOrchestrator) Watch(ctx context.Context, source domain.Source) error {
	if o.factory == nil {
		return fmt.Errorf("create connector: connector factory not configured")
	}
	connector, err := o.factory.Create(ctx, source)
	if err != nil {
		return fmt.Errorf("create connector: %w", err)
	}
	defer connector.Close()

	caps := connector.Capabilities()
	if !caps.SupportsWatch {
		return fmt.Errorf("source %s: %w: watch", source.ID, domain.ErrUnsupportedType)
	}

	changesCh, err := connector.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}

	status := &driving.SyncStatus{
		SourceID: source.ID,
		Running:  true,
	}
	o.setStatus(source.ID, status)
	defer o.clearStatus(source.ID)

	logger.Info("Watching source %s", source.ID)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case change, ok := <-changesCh:
			if !ok {
				return nil
			}
			if change.Type == domain.ChangeDeleted {
				continue
			}
			if _, err := o.processOneDocument(ctx, connector, &change.Document); err != nil {
				status.ErrorCount++
				logger.Debug("Failed to process %s: %v", change.Document.URI, err)
				if o.notifier != nil {
					o.notifier.AnalysisFailed(change.Document.URI, err)
				}
				continue
			}
			status.DocumentsProcessed++
		}
	}
}

// Status returns sync status for a source.
func (o *SyncOrchestrator) Status(_ context.Context, sourceID string) (*driving.SyncStatus, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if status, ok := o.activeSyncs[sourceID]; ok {
		// Return a copy to avoid race conditions
		return &driving.SyncStatus{
			SourceID:           status.SourceID,
			Running:            status.Running,
			DocumentsProcessed: status.DocumentsProcessed,
			ErrorCount:         status.ErrorCount,
		}, nil
	}

	// Not running - return idle status
	return &driving.SyncStatus{
		SourceID: sourceID,
		Running:  false,
	}, nil
}

// processDocuments handles full sync - analyses all documents from the
// connector. Returns the new cursor from SyncComplete if provided.
func (o *SyncOrchestrator) processDocuments(
	ctx context.Context,
	connector driven.Connector,
	docsCh <-chan domain.RawDocument,
	errsCh <-chan error,
	status *driving.SyncStatus,
) ([]domain.Analysis, string, error) {
	var (
		analyses  []domain.Analysis
		newCursor string
	)

	for {
		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			// Check if this is a SyncComplete (successful completion with cursor)
			if sc, isSyncComplete := driven.IsSyncComplete(err); isSyncComplete {
				newCursor = sc.NewCursor
				continue
			}
			if err != nil {
				return nil, "", fmt.Errorf("connector error: %w", err)
			}

		case rawDoc, ok := <-docsCh:
			if !ok {
				return analyses, newCursor, nil // Done - channel closed
			}

			logger.Debug("Processing: %s", rawDoc.URI)
			analysis, err := o.processOneDocument(ctx, connector, &rawDoc)
			if err != nil {
				status.ErrorCount++
				if errors.Is(err, domain.ErrUnsupportedType) || errors.Is(err, domain.ErrNoInput) {
					logger.Debug("Skipping %s: %v", rawDoc.URI, err)
				} else {
					logger.Debug("Failed to process %s: %v", rawDoc.URI, err)
				}
				if o.notifier != nil {
					o.notifier.AnalysisFailed(rawDoc.URI, err)
				}
				continue
			}
			analyses = append(analyses, analysis)
			status.DocumentsProcessed++
		}
	}
}

// processChanges handles incremental sync - analyses changed documents.
// Returns the new cursor from SyncComplete if provided.
func (o *SyncOrchestrator) processChanges(
	ctx context.Context,
	connector driven.Connector,
	changesCh <-chan domain.RawDocumentChange,
	errsCh <-chan error,
	status *driving.SyncStatus,
) ([]domain.Analysis, string, error) {
	var (
		analyses  []domain.Analysis
		newCursor string
	)

	for {
		select {
		case <-ctx.Done():
			return nil, "", ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			if sc, isSyncComplete := driven.IsSyncComplete(err); isSyncComplete {
				newCursor = sc.NewCursor
				continue
			}
			if err != nil {
				return nil, "", fmt.Errorf("connector error: %w", err)
			}

		case change, ok := <-changesCh:
			if !ok {
				return analyses, newCursor, nil // Done - channel closed
			}

			// Deletions carry no content to analyse.
			if change.Type == domain.ChangeDeleted {
				continue
			}

			logger.Debug("Processing: %s", change.Document.URI)
			analysis, err := o.processOneDocument(ctx, connector, &change.Document)
			if err != nil {
				status.ErrorCount++
				if errors.Is(err, domain.ErrUnsupportedType) || errors.Is(err, domain.ErrNoInput) {
					logger.Debug("Skipping %s: %v", change.Document.URI, err)
				} else {
					logger.Debug("Failed to process %s: %v", change.Document.URI, err)
				}
				if o.notifier != nil {
					o.notifier.AnalysisFailed(change.Document.URI, err)
				}
				continue
			}
			analyses = append(analyses, analysis)
			status.DocumentsProcessed++
		}
	}
}

// processOneDocument normalises, analyses, labels and notifies.
func (o *SyncOrchestrator) processOneDocument(
	ctx context.Context,
	connector driven.Connector,
	raw *domain.RawDocument,
) (domain.Analysis, error) {
	mail, err := o.registry.Normalise(ctx, raw)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("normalise: %w", err)
	}

	analysis, err := o.analyzer.Analyze(ctx, *mail)
	if err != nil {
		return domain.Analysis{}, fmt.Errorf("analyze: %w", err)
	}

	// Tag the document at its source when the connector can. UNKNOWN
	// documents keep their inbox state.
	if connector.Capabilities().SupportsLabelling && analysis.Tag != domain.TagUnknown {
		if labeller, ok := connector.(driven.Labeller); ok {
			if err := labeller.ApplyTag(ctx, raw.URI, analysis.Tag); err != nil {
				logger.Warn("Failed to label %s: %v", raw.URI, err)
			}
		}
	}

	if o.notifier != nil {
		o.notifier.AnalysisCompleted(analysis)
	}

	return analysis, nil
}

// setStatus sets the sync status for a source.
func (o *SyncOrchestrator) setStatus(sourceID string, status *driving.SyncStatus) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.activeSyncs[sourceID] = status
}

// clearStatus removes the sync status for a source.
func (o *SyncOrchestrator) clearStatus(sourceID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.activeSyncs, sourceID)
}
