// Package filesystem implements a connector that reads mail documents
// from a local directory tree. It handles exported .eml files, PDF
// documents, and plain text drops, and can watch the tree for new
// arrivals.
package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/orderlens/orderlens/internal/core/domain"
	"github.com/orderlens/orderlens/internal/core/ports/driven"
	"github.com/orderlens/orderlens/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

// mimeTypes maps the file extensions the connector syncs to their
// MIME types. Anything else in the tree is ignored.
var mimeTypes = map[string]string{
	".eml": "message/rfc822",
	".pdf": "application/pdf",
	".txt": "text/plain",
	".csv": "text/csv",
	".md":  "text/markdown",
}

// Connector syncs documents from a local directory.
type Connector struct {
	sourceID string
	rootPath string

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

// New creates a new filesystem connector rooted at rootPath.
func New(sourceID, rootPath string) *Connector {
	return &Connector{
		sourceID: sourceID,
		rootPath: rootPath,
	}
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "filesystem"
}

// SourceID returns the source identifier.
func (c *Connector) SourceID() string {
	return c.sourceID
}

// Capabilities returns the connector's capabilities.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportsIncremental:  true,
		SupportsWatch:        true,
		RequiresAuth:         false,
		SupportsValidation:   true,
		SupportsCursorReturn: true,
		SupportsLabelling:    false, // Local files carry no labels
	}
}

// Validate checks the root path exists and is a readable directory.
func (c *Connector) Validate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return domain.ErrConnectorClosed
	}

	info, err := os.Stat(c.rootPath)
	if err != nil {
		return fmt.Errorf("path %s does not exist: %w", c.rootPath, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("path %s is not a directory", c.rootPath)
	}

	dir, err := os.Open(c.rootPath)
	if err != nil {
		return fmt.Errorf("path %s is not readable: %w", c.rootPath, err)
	}
	return dir.Close()
}

// FullSync reads every supported document under the root path.
func (c *Connector) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docsChan := make(chan domain.RawDocument)
	errsChan := make(chan error, 1)

	go func() {
		defer close(docsChan)
		defer close(errsChan)

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			errsChan <- domain.ErrConnectorClosed
			return
		}
		c.mu.Unlock()

		// The cursor marks the start of the walk so that files written
		// during the sync are picked up next time.
		syncStart := time.Now()

		if _, err := os.Stat(c.rootPath); err != nil {
			errsChan <- fmt.Errorf("root path %s does not exist: %w", c.rootPath, err)
			return
		}

		err := c.walkDocuments(ctx, time.Time{}, func(doc domain.RawDocument) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case docsChan <- doc:
				return nil
			}
		})
		if err != nil {
			if ctx.Err() == nil {
				errsChan <- err
			}
			return
		}

		errsChan <- &driven.SyncComplete{
			NewCursor: strconv.FormatInt(syncStart.UnixNano(), 10),
		}
	}()

	return docsChan, errsChan
}

// IncrementalSync reads documents modified after the cursor time.
// An empty cursor behaves like a full sync.
func (c *Connector) IncrementalSync(
	ctx context.Context, state domain.SyncState,
) (<-chan domain.RawDocumentChange, <-chan error) {
	changesChan := make(chan domain.RawDocumentChange)
	errsChan := make(chan error, 1)

	go func() {
		defer close(changesChan)
		defer close(errsChan)

		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			errsChan <- domain.ErrConnectorClosed
			return
		}
		c.mu.Unlock()

		var since time.Time
		if state.Cursor != "" {
			nanos, err := strconv.ParseInt(state.Cursor, 10, 64)
			if err != nil {
				errsChan <- fmt.Errorf("invalid cursor format %q: %w", state.Cursor, err)
				return
			}
			since = time.Unix(0, nanos)
		}

		syncStart := time.Now()

		if _, err := os.Stat(c.rootPath); err != nil {
			errsChan <- fmt.Errorf("root path %s does not exist: %w", c.rootPath, err)
			return
		}

		err := c.walkDocuments(ctx, since, func(doc domain.RawDocument) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case changesChan <- domain.RawDocumentChange{
				Type:     domain.ChangeUpdated,
				Document: doc,
			}:
				return nil
			}
		})
		if err != nil {
			if ctx.Err() == nil {
				errsChan <- err
			}
			return
		}

		errsChan <- &driven.SyncComplete{
			NewCursor: strconv.FormatInt(syncStart.UnixNano(), 10),
		}
	}()

	return changesChan, errsChan
}

// walkDocuments visits every supported file modified after since and
// calls emit with its document. A zero since visits everything.
func (c *Connector) walkDocuments(ctx context.Context, since time.Time, emit func(domain.RawDocument) error) error {
	return filepath.Walk(c.rootPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if isHidden(info.Name()) && path != c.rootPath {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() {
			return nil
		}
		if !since.IsZero() && !info.ModTime().After(since) {
			return nil
		}

		doc, ok, err := c.readDocument(path, info)
		if err != nil {
			logger.Warn("Skipping unreadable file %s: %v", path, err)
			return nil
		}
		if !ok {
			return nil
		}
		return emit(doc)
	})
}

// readDocument loads a file into a RawDocument. The second return is
// false when the file type is not synced.
func (c *Connector) readDocument(path string, info os.FileInfo) (domain.RawDocument, bool, error) {
	ext := strings.ToLower(filepath.Ext(path))
	mimeType, ok := mimeTypes[ext]
	if !ok {
		return domain.RawDocument{}, false, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return domain.RawDocument{}, false, err
	}

	return domain.RawDocument{
		SourceID: c.sourceID,
		URI:      "file://" + path,
		MIMEType: mimeType,
		Content:  content,
		Metadata: map[string]any{
			"filename":  info.Name(),
			"extension": strings.TrimPrefix(ext, "."),
			"modified":  info.ModTime(),
			"size":      info.Size(),
		},
	}, true, nil
}

// Watch emits change events as files appear, change, or disappear
// under the root path.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, domain.ErrConnectorClosed
	}

	if _, err := os.Stat(c.rootPath); err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	// Watch the root and every existing subdirectory. New
	// subdirectories are added as their create events arrive.
	err = filepath.Walk(c.rootPath, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if info.IsDir() {
			if isHidden(info.Name()) && path != c.rootPath {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch tree: %w", err)
	}

	c.watcher = watcher
	changesChan := make(chan domain.RawDocumentChange)

	go func() {
		defer close(changesChan)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				change, emit := c.changeForEvent(watcher, event)
				if !emit {
					continue
				}
				select {
				case <-ctx.Done():
					return
				case changesChan <- change:
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Watch error on %s: %v", c.rootPath, err)
			}
		}
	}()

	return changesChan, nil
}

// changeForEvent translates a filesystem event to a document change.
// The second return is false for events that should not propagate.
func (c *Connector) changeForEvent(watcher *fsnotify.Watcher, event fsnotify.Event) (domain.RawDocumentChange, bool) {
	name := filepath.Base(event.Name)
	if isHidden(name) {
		return domain.RawDocumentChange{}, false
	}

	switch {
	case event.Op.Has(fsnotify.Create):
		info, err := os.Stat(event.Name)
		if err != nil {
			return domain.RawDocumentChange{}, false
		}
		if info.IsDir() {
			// Start watching new subdirectories.
			if err := watcher.Add(event.Name); err != nil {
				logger.Warn("Failed to watch new directory %s: %v", event.Name, err)
			}
			return domain.RawDocumentChange{}, false
		}
		doc, ok, err := c.readDocument(event.Name, info)
		if err != nil || !ok {
			return domain.RawDocumentChange{}, false
		}
		return domain.RawDocumentChange{Type: domain.ChangeCreated, Document: doc}, true

	case event.Op.Has(fsnotify.Write):
		info, err := os.Stat(event.Name)
		if err != nil || info.IsDir() {
			return domain.RawDocumentChange{}, false
		}
		doc, ok, err := c.readDocument(event.Name, info)
		if err != nil || !ok {
			return domain.RawDocumentChange{}, false
		}
		return domain.RawDocumentChange{Type: domain.ChangeUpdated, Document: doc}, true

	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		ext := strings.ToLower(filepath.Ext(event.Name))
		mimeType, supported := mimeTypes[ext]
		if !supported {
			return domain.RawDocumentChange{}, false
		}
		return domain.RawDocumentChange{
			Type: domain.ChangeDeleted,
			Document: domain.RawDocument{
				SourceID: c.sourceID,
				URI:      "file://" + event.Name,
				MIMEType: mimeType,
			},
		}, true
	}

	return domain.RawDocumentChange{}, false
}

// Close releases resources. Safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.watcher != nil {
		err := c.watcher.Close()
		c.watcher = nil
		return err
	}
	return nil
}

// isHidden reports whether a file or directory name is dot-prefixed.
func isHidden(name string) bool {
	return strings.HasPrefix(name, ".")
}
