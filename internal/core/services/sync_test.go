package services

import (
	"context"
	"errors"
	"strings"
	stdsync "sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderlens/orderlens/internal/adapters/driven/storage/memory"
	"github.com/orderlens/orderlens/internal/core/domain"
	"github.com/orderlens/orderlens/internal/core/ports/driven"
	"github.com/orderlens/orderlens/internal/core/ports/driving"
)

// --- Mock implementations for sync testing ---

// syncMockConnector implements driven.Connector for testing. It also
// implements driven.Labeller so labelling behaviour can be asserted.
type syncMockConnector struct {
	sourceID     string
	connType     string
	capabilities driven.ConnectorCapabilities
	fullSyncDocs []domain.RawDocument
	fullSyncErr  error
	incSyncDocs  []domain.RawDocumentChange
	incSyncErr   error
	syncComplete *driven.SyncComplete
	watchDocs    []domain.RawDocumentChange
	closed       bool

	mu      stdsync.Mutex
	labeled map[string]domain.DocumentTag
}

func (m *syncMockConnector) Type() string     { return m.connType }
func (m *syncMockConnector) SourceID() string { return m.sourceID }
func (m *syncMockConnector) Capabilities() driven.ConnectorCapabilities {
	return m.capabilities
}

func (m *syncMockConnector) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 1)

	go func() {
		defer close(docs)
		defer close(errs)

		if m.fullSyncErr != nil {
			errs <- m.fullSyncErr
			return
		}

		for _, doc := range m.fullSyncDocs {
			select {
			case <-ctx.Done():
				return
			case docs <- doc:
			}
		}

		if m.syncComplete != nil {
			errs <- m.syncComplete
		}
	}()

	return docs, errs
}

func (m *syncMockConnector) IncrementalSync(ctx context.Context, _ domain.SyncState) (<-chan domain.RawDocumentChange, <-chan error) {
	changes := make(chan domain.RawDocumentChange)
	errs := make(chan error, 1)

	go func() {
		defer close(changes)
		defer close(errs)

		if m.incSyncErr != nil {
			errs <- m.incSyncErr
			return
		}

		for _, change := range m.incSyncDocs {
			select {
			case <-ctx.Done():
				return
			case changes <- change:
			}
		}

		if m.syncComplete != nil {
			errs <- m.syncComplete
		}
	}()

	return changes, errs
}

func (m *syncMockConnector) Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error) {
	changes := make(chan domain.RawDocumentChange)

	go func() {
		defer close(changes)
		for _, change := range m.watchDocs {
			select {
			case <-ctx.Done():
				return
			case changes <- change:
			}
		}
	}()

	return changes, nil
}

func (m *syncMockConnector) Validate(_ context.Context) error {
	return nil
}

func (m *syncMockConnector) Close() error {
	m.closed = true
	return nil
}

func (m *syncMockConnector) ApplyTag(_ context.Context, uri string, tag domain.DocumentTag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.labeled == nil {
		m.labeled = make(map[string]domain.DocumentTag)
	}
	m.labeled[uri] = tag
	return nil
}

// syncMockConnectorFactory implements driven.ConnectorFactory.
type syncMockConnectorFactory struct {
	connectors map[string]*syncMockConnector
	createErr  error
}

func newSyncMockConnectorFactory() *syncMockConnectorFactory {
	return &syncMockConnectorFactory{
		connectors: make(map[string]*syncMockConnector),
	}
}

func (f *syncMockConnectorFactory) Create(_ context.Context, source domain.Source) (driven.Connector, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if conn, ok := f.connectors[source.ID]; ok {
		return conn, nil
	}
	return nil, errors.New("no connector configured for source")
}

// syncMockNormaliserRegistry implements driven.NormaliserRegistry.
// The first content line becomes the subject, the rest the body.
type syncMockNormaliserRegistry struct {
	normaliseErr error
}

func (r *syncMockNormaliserRegistry) Register(_ driven.Normaliser) {}

func (r *syncMockNormaliserRegistry) SupportedMIMETypes() []string {
	return []string{"text/plain"}
}

func (r *syncMockNormaliserRegistry) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.MailText, error) {
	if r.normaliseErr != nil {
		return nil, r.normaliseErr
	}
	parts := strings.SplitN(string(raw.Content), "\n", 2)
	mail := &domain.MailText{URI: raw.URI, Subject: parts[0]}
	if len(parts) > 1 {
		mail.Body = parts[1]
	}
	return mail, nil
}

// syncMockNotifier collects completions and failures.
type syncMockNotifier struct {
	mu        stdsync.Mutex
	completed []domain.Analysis
	failed    []string
}

func (n *syncMockNotifier) AnalysisCompleted(analysis domain.Analysis) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, analysis)
}

func (n *syncMockNotifier) AnalysisFailed(uri string, _ error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failed = append(n.failed, uri)
}

func newTestOrchestrator(factory driven.ConnectorFactory, notifier driven.Notifier) (*SyncOrchestrator, *memory.SyncStateStore) {
	syncStore := memory.NewSyncStateStore()
	orchestrator := NewSyncOrchestrator(
		syncStore, factory, &syncMockNormaliserRegistry{}, NewAnalyzer(), notifier,
	)
	return orchestrator, syncStore
}

// --- Tests ---

func TestNewSyncOrchestrator(t *testing.T) {
	orchestrator, _ := newTestOrchestrator(nil, nil)

	require.NotNil(t, orchestrator)
	assert.NotNil(t, orchestrator.syncStore)
	assert.NotNil(t, orchestrator.activeSyncs)
}

func TestSyncOrchestrator_Sync_ConnectorFactoryMissing(t *testing.T) {
	orchestrator, _ := newTestOrchestrator(nil, nil)

	_, err := orchestrator.Sync(context.Background(), domain.Source{ID: "src-1", Type: "mock"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "create connector")
}

func TestSyncOrchestrator_Sync_FullSync_Success(t *testing.T) {
	factory := newSyncMockConnectorFactory()
	notifier := &syncMockNotifier{}
	orchestrator, syncStore := newTestOrchestrator(factory, notifier)

	ctx := context.Background()
	source := domain.Source{ID: "src-1", Name: "Test", Type: "mock"}

	factory.connectors["src-1"] = &syncMockConnector{
		sourceID: "src-1",
		connType: "mock",
		fullSyncDocs: []domain.RawDocument{
			{SourceID: "src-1", URI: "msg-1", MIMEType: "text/plain", Content: []byte("PO 1001\nWidget Alpha | 2 | 10.50 | 21.00")},
			{SourceID: "src-1", URI: "msg-2", MIMEType: "text/plain", Content: []byte("please quote 5 gaskets")},
		},
	}

	analyses, err := orchestrator.Sync(ctx, source)

	require.NoError(t, err)
	require.Len(t, analyses, 2)
	assert.Equal(t, domain.TagPO, analyses[0].Tag)
	assert.Equal(t, domain.TagQuote, analyses[1].Tag)
	assert.Len(t, notifier.completed, 2)

	// Sync state was saved.
	state, err := syncStore.Get(ctx, "src-1")
	require.NoError(t, err)
	assert.Equal(t, "src-1", state.SourceID)
	assert.False(t, state.LastSync.IsZero())
}

func TestSyncOrchestrator_Sync_AppliesLabels(t *testing.T) {
	factory := newSyncMockConnectorFactory()
	orchestrator, _ := newTestOrchestrator(factory, nil)

	connector := &syncMockConnector{
		sourceID: "src-1",
		connType: "mock",
		capabilities: driven.ConnectorCapabilities{
			SupportsLabelling: true,
		},
		fullSyncDocs: []domain.RawDocument{
			{SourceID: "src-1", URI: "msg-po", Content: []byte("PO 55 confirmed")},
			{SourceID: "src-1", URI: "msg-misc", Content: []byte("lunch plans")},
		},
	}
	factory.connectors["src-1"] = connector

	_, err := orchestrator.Sync(context.Background(), domain.Source{ID: "src-1", Type: "mock"})

	require.NoError(t, err)
	assert.Equal(t, domain.TagPO, connector.labeled["msg-po"])
	// UNKNOWN documents keep their inbox state.
	_, labeled := connector.labeled["msg-misc"]
	assert.False(t, labeled)
}

func TestSyncOrchestrator_Sync_IncrementalWithCursor(t *testing.T) {
	factory := newSyncMockConnectorFactory()
	orchestrator, syncStore := newTestOrchestrator(factory, nil)

	ctx := context.Background()

	require.NoError(t, syncStore.Save(ctx, domain.SyncState{
		SourceID: "src-1",
		Cursor:   "cursor-123",
		LastSync: time.Now().Add(-time.Hour),
	}))

	factory.connectors["src-1"] = &syncMockConnector{
		sourceID: "src-1",
		connType: "mock",
		capabilities: driven.ConnectorCapabilities{
			SupportsIncremental:  true,
			SupportsCursorReturn: true,
		},
		incSyncDocs: []domain.RawDocumentChange{
			{
				Type:     domain.ChangeCreated,
				Document: domain.RawDocument{SourceID: "src-1", URI: "msg-new", Content: []byte("PO 9 arrived")},
			},
			{
				Type:     domain.ChangeDeleted,
				Document: domain.RawDocument{SourceID: "src-1", URI: "msg-gone"},
			},
		},
		syncComplete: &driven.SyncComplete{NewCursor: "cursor-456"},
	}

	analyses, err := orchestrator.Sync(ctx, domain.Source{ID: "src-1", Type: "mock"})

	require.NoError(t, err)
	// The deletion is skipped; only the created document is analysed.
	require.Len(t, analyses, 1)
	assert.Equal(t, "msg-new", analyses[0].URI)

	state, err := syncStore.Get(ctx, "src-1")
	require.NoError(t, err)
	assert.Equal(t, "cursor-456", state.Cursor)
}

func TestSyncOrchestrator_Sync_NormaliseFailureCountsError(t *testing.T) {
	factory := newSyncMockConnectorFactory()
	notifier := &syncMockNotifier{}
	syncStore := memory.NewSyncStateStore()
	registry := &syncMockNormaliserRegistry{normaliseErr: errors.New("broken bytes")}
	orchestrator := NewSyncOrchestrator(syncStore, factory, registry, NewAnalyzer(), notifier)

	factory.connectors["src-1"] = &syncMockConnector{
		sourceID: "src-1",
		connType: "mock",
		fullSyncDocs: []domain.RawDocument{
			{SourceID: "src-1", URI: "msg-1", Content: []byte("PO 1")},
		},
	}

	analyses, err := orchestrator.Sync(context.Background(), domain.Source{ID: "src-1", Type: "mock"})

	// Per-document failures do not abort the sync.
	require.NoError(t, err)
	assert.Empty(t, analyses)
	assert.Equal(t, []string{"msg-1"}, notifier.failed)
}

func TestSyncOrchestrator_Sync_ConnectorError(t *testing.T) {
	factory := newSyncMockConnectorFactory()
	orchestrator, _ := newTestOrchestrator(factory, nil)

	factory.connectors["src-1"] = &syncMockConnector{
		sourceID:    "src-1",
		connType:    "mock",
		fullSyncErr: errors.New("network down"),
	}

	_, err := orchestrator.Sync(context.Background(), domain.Source{ID: "src-1", Type: "mock"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "connector error")
}

func TestSyncOrchestrator_Sync_ConnectorClosed(t *testing.T) {
	factory := newSyncMockConnectorFactory()
	orchestrator, _ := newTestOrchestrator(factory, nil)

	connector := &syncMockConnector{sourceID: "src-1", connType: "mock"}
	factory.connectors["src-1"] = connector

	_, err := orchestrator.Sync(context.Background(), domain.Source{ID: "src-1", Type: "mock"})

	require.NoError(t, err)
	assert.True(t, connector.closed, "connector should be closed after sync")
}

func TestSyncOrchestrator_Sync_ContextCancellation(t *testing.T) {
	factory := newSyncMockConnectorFactory()
	orchestrator, _ := newTestOrchestrator(factory, nil)

	ctx, cancel := context.WithCancel(context.Background())

	docs := make([]domain.RawDocument, 100)
	for i := range docs {
		docs[i] = domain.RawDocument{
			SourceID: "src-1",
			URI:      "msg-" + string(rune('a'+i%26)),
			Content:  []byte("PO 1"),
		}
	}
	factory.connectors["src-1"] = &syncMockConnector{
		sourceID:     "src-1",
		connType:     "mock",
		fullSyncDocs: docs,
	}

	cancel()

	_, err := orchestrator.Sync(ctx, domain.Source{ID: "src-1", Type: "mock"})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSyncOrchestrator_Watch_Unsupported(t *testing.T) {
	factory := newSyncMockConnectorFactory()
	orchestrator, _ := newTestOrchestrator(factory, nil)

	factory.connectors["src-1"] = &syncMockConnector{sourceID: "src-1", connType: "mock"}

	err := orchestrator.Watch(context.Background(), domain.Source{ID: "src-1", Type: "mock"})

	assert.ErrorIs(t, err, domain.ErrUnsupportedType)
}

func TestSyncOrchestrator_Watch_ProcessesChanges(t *testing.T) {
	factory := newSyncMockConnectorFactory()
	notifier := &syncMockNotifier{}
	orchestrator, _ := newTestOrchestrator(factory, notifier)

	factory.connectors["src-1"] = &syncMockConnector{
		sourceID: "src-1",
		connType: "mock",
		capabilities: driven.ConnectorCapabilities{
			SupportsWatch: true,
		},
		watchDocs: []domain.RawDocumentChange{
			{
				Type:     domain.ChangeCreated,
				Document: domain.RawDocument{SourceID: "src-1", URI: "msg-1", Content: []byte("PO 77")},
			},
		},
	}

	err := orchestrator.Watch(context.Background(), domain.Source{ID: "src-1", Type: "mock"})

	// The mock closes its channel after delivering everything.
	require.NoError(t, err)
	require.Len(t, notifier.completed, 1)
	assert.Equal(t, domain.TagPO, notifier.completed[0].Tag)
}

func TestSyncOrchestrator_Status_NotRunning(t *testing.T) {
	orchestrator, _ := newTestOrchestrator(nil, nil)

	status, err := orchestrator.Status(context.Background(), "src-1")

	require.NoError(t, err)
	assert.Equal(t, "src-1", status.SourceID)
	assert.False(t, status.Running)
}

func TestSyncOrchestrator_Status_WhileRunning(t *testing.T) {
	orchestrator, _ := newTestOrchestrator(nil, nil)

	orchestrator.mu.Lock()
	orchestrator.activeSyncs["src-1"] = &driving.SyncStatus{
		SourceID:           "src-1",
		Running:            true,
		DocumentsProcessed: 5,
		ErrorCount:         1,
	}
	orchestrator.mu.Unlock()

	status, err := orchestrator.Status(context.Background(), "src-1")

	require.NoError(t, err)
	assert.True(t, status.Running)
	assert.Equal(t, 5, status.DocumentsProcessed)
	assert.Equal(t, 1, status.ErrorCount)
}
