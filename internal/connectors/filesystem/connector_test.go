package filesystem

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderlens/orderlens/internal/core/domain"
	"github.com/orderlens/orderlens/internal/core/ports/driven"
)

func TestNew(t *testing.T) {
	t.Run("creates connector with valid parameters", func(t *testing.T) {
		connector := New("test-source-123", "/tmp/mail")

		require.NotNil(t, connector)
		assert.Equal(t, "test-source-123", connector.sourceID)
		assert.Equal(t, "/tmp/mail", connector.rootPath)
	})

	t.Run("implements Connector interface", func(t *testing.T) {
		connector := New("test", "/tmp")
		var _ driven.Connector = connector
	})
}

func TestConnector_Type(t *testing.T) {
	connector := New("test-source", "/tmp/mail")
	assert.Equal(t, "filesystem", connector.Type())
}

func TestConnector_SourceID(t *testing.T) {
	connector := New("my-source-id", "/tmp/mail")
	assert.Equal(t, "my-source-id", connector.SourceID())
}

func TestConnector_Capabilities(t *testing.T) {
	connector := New("test-source", "/tmp/mail")

	caps := connector.Capabilities()

	assert.True(t, caps.SupportsIncremental, "should support incremental sync")
	assert.True(t, caps.SupportsWatch, "should support watch")
	assert.True(t, caps.SupportsCursorReturn, "should return cursors")
	assert.False(t, caps.RequiresAuth, "should not require auth")
	assert.False(t, caps.SupportsLabelling, "local files carry no labels")
}

func TestConnector_Validate(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		tempDir := t.TempDir()
		connector := New("test-source", tempDir)

		assert.NoError(t, connector.Validate(context.Background()))
	})

	t.Run("non-existent directory", func(t *testing.T) {
		connector := New("test-source", "/non/existent/path")

		err := connector.Validate(context.Background())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "does not exist")
	})

	t.Run("path is a file", func(t *testing.T) {
		tempDir := t.TempDir()
		file := filepath.Join(tempDir, "mail.txt")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

		connector := New("test-source", file)

		err := connector.Validate(context.Background())
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "not a directory")
	})

	t.Run("closed connector", func(t *testing.T) {
		connector := New("test-source", t.TempDir())
		require.NoError(t, connector.Close())

		err := connector.Validate(context.Background())
		assert.ErrorIs(t, err, domain.ErrConnectorClosed)
	})
}

func TestConnector_FullSync(t *testing.T) {
	t.Run("syncs supported files from directory", func(t *testing.T) {
		tempDir := t.TempDir()

		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "order.eml"), []byte("From: a@b.c\r\n\r\nbody"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "quote.txt"), []byte("quote text"), 0644))

		connector := New("test-source", tempDir)
		docsChan, errsChan := connector.FullSync(context.Background())

		var docs []domain.RawDocument
		for doc := range docsChan {
			docs = append(docs, doc)
		}

		err := <-errsChan
		sc, ok := driven.IsSyncComplete(err)
		require.True(t, ok, "expected SyncComplete, got %v", err)
		assert.NotEmpty(t, sc.NewCursor)

		assert.Len(t, docs, 2)
	})

	t.Run("skips hidden and unsupported files", func(t *testing.T) {
		tempDir := t.TempDir()

		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "visible.txt"), []byte("visible"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, ".hidden.txt"), []byte("hidden"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "image.png"), []byte{0x89, 0x50}, 0644))

		connector := New("test-source", tempDir)
		docsChan, _ := connector.FullSync(context.Background())

		var docs []domain.RawDocument
		for doc := range docsChan {
			docs = append(docs, doc)
		}

		require.Len(t, docs, 1)
		assert.Contains(t, docs[0].URI, "visible.txt")
	})

	t.Run("handles non-existent directory", func(t *testing.T) {
		connector := New("test-source", "/non/existent/path")

		docsChan, errsChan := connector.FullSync(context.Background())

		for range docsChan {
		}

		select {
		case err := <-errsChan:
			require.Error(t, err)
			assert.Contains(t, err.Error(), "does not exist")
		case <-time.After(100 * time.Millisecond):
			t.Fatal("expected error for non-existent directory")
		}
	})

	t.Run("handles cancelled context", func(t *testing.T) {
		tempDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "a.txt"), []byte("a"), 0644))

		connector := New("test-source", tempDir)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		docsChan, errsChan := connector.FullSync(ctx)

		for range docsChan {
		}
		for range errsChan {
		}
	})

	t.Run("includes file metadata and MIME type", func(t *testing.T) {
		tempDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "order.pdf"), []byte("%PDF-1.4"), 0644))

		connector := New("test-source", tempDir)
		docsChan, _ := connector.FullSync(context.Background())

		var docs []domain.RawDocument
		for doc := range docsChan {
			docs = append(docs, doc)
		}

		require.Len(t, docs, 1)
		doc := docs[0]

		assert.Equal(t, "test-source", doc.SourceID)
		assert.Contains(t, doc.URI, "order.pdf")
		assert.Equal(t, "application/pdf", doc.MIMEType)
		assert.Equal(t, []byte("%PDF-1.4"), doc.Content)
		assert.Equal(t, "order.pdf", doc.Metadata["filename"])
		assert.Equal(t, "pdf", doc.Metadata["extension"])
	})

	t.Run("detects MIME types by extension", func(t *testing.T) {
		tempDir := t.TempDir()

		files := map[string]string{
			"mail.eml":  "message/rfc822",
			"note.txt":  "text/plain",
			"items.csv": "text/csv",
			"doc.pdf":   "application/pdf",
			"readme.md": "text/markdown",
		}
		for name := range files {
			require.NoError(t, os.WriteFile(filepath.Join(tempDir, name), []byte("content"), 0644))
		}

		connector := New("test-source", tempDir)
		docsChan, _ := connector.FullSync(context.Background())

		docMap := make(map[string]string)
		for doc := range docsChan {
			docMap[filepath.Base(doc.URI)] = doc.MIMEType
		}

		for name, expectedMIME := range files {
			assert.Equal(t, expectedMIME, docMap[name], "MIME type mismatch for %s", name)
		}
	})

	t.Run("syncs nested directories", func(t *testing.T) {
		tempDir := t.TempDir()
		nested := filepath.Join(tempDir, "inbox", "archive")
		require.NoError(t, os.MkdirAll(nested, 0755))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "root.txt"), []byte("a"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(nested, "deep.eml"), []byte("b"), 0644))

		connector := New("test-source", tempDir)
		docsChan, _ := connector.FullSync(context.Background())

		count := 0
		for range docsChan {
			count++
		}
		assert.Equal(t, 2, count)
	})
}

func TestConnector_IncrementalSync(t *testing.T) {
	t.Run("returns only files modified after cursor", func(t *testing.T) {
		tempDir := t.TempDir()

		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "old.txt"), []byte("old content"), 0644))

		time.Sleep(50 * time.Millisecond)
		cursorTime := time.Now()
		time.Sleep(50 * time.Millisecond)

		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "new.txt"), []byte("new content"), 0644))

		connector := New("test-source", tempDir)
		syncState := domain.SyncState{
			SourceID: "test-source",
			Cursor:   fmt.Sprintf("%d", cursorTime.UnixNano()),
			LastSync: cursorTime,
		}

		changesChan, errsChan := connector.IncrementalSync(context.Background(), syncState)

		var changes []domain.RawDocumentChange
		for change := range changesChan {
			changes = append(changes, change)
		}
		for range errsChan {
		}

		require.Len(t, changes, 1)
		assert.Contains(t, changes[0].Document.URI, "new.txt")
	})

	t.Run("handles empty cursor like full sync", func(t *testing.T) {
		tempDir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "a.txt"), []byte("1"), 0644))
		require.NoError(t, os.WriteFile(filepath.Join(tempDir, "b.txt"), []byte("2"), 0644))

		connector := New("test-source", tempDir)
		syncState := domain.SyncState{SourceID: "test-source", Cursor: ""}

		changesChan, errsChan := connector.IncrementalSync(context.Background(), syncState)

		var changes []domain.RawDocumentChange
		for change := range changesChan {
			changes = append(changes, change)
		}
		for range errsChan {
		}

		assert.Len(t, changes, 2)
	})

	t.Run("handles invalid cursor format", func(t *testing.T) {
		connector := New("test-source", t.TempDir())
		syncState := domain.SyncState{
			SourceID: "test-source",
			Cursor:   "invalid-cursor-format",
		}

		changesChan, errsChan := connector.IncrementalSync(context.Background(), syncState)

		for range changesChan {
		}

		select {
		case err := <-errsChan:
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid cursor format")
		case <-time.After(100 * time.Millisecond):
			t.Fatal("expected error for invalid cursor")
		}
	})

	t.Run("returns updated cursor on completion", func(t *testing.T) {
		connector := New("test-source", t.TempDir())
		syncState := domain.SyncState{
			SourceID: "test-source",
			Cursor:   fmt.Sprintf("%d", time.Now().Add(-time.Hour).UnixNano()),
		}

		changesChan, errsChan := connector.IncrementalSync(context.Background(), syncState)

		for range changesChan {
		}

		err := <-errsChan
		sc, ok := driven.IsSyncComplete(err)
		require.True(t, ok, "expected SyncComplete, got %v", err)
		assert.NotEqual(t, syncState.Cursor, sc.NewCursor)
	})
}

func TestConnector_Watch(t *testing.T) {
	t.Run("emits created event for new file", func(t *testing.T) {
		tempDir := t.TempDir()

		connector := New("test-source", tempDir)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changesChan, err := connector.Watch(ctx)
		require.NoError(t, err)
		require.NotNil(t, changesChan)

		go func() {
			time.Sleep(50 * time.Millisecond)
			os.WriteFile(filepath.Join(tempDir, "new-order.eml"), []byte("From: a@b.c\r\n\r\nbody"), 0644)
		}()

		select {
		case change := <-changesChan:
			assert.Equal(t, domain.ChangeCreated, change.Type)
			assert.Contains(t, change.Document.URI, "new-order.eml")
			assert.Equal(t, "message/rfc822", change.Document.MIMEType)
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for file creation event")
		}

		cancel()
		connector.Close()
	})

	t.Run("emits deleted event for removed file", func(t *testing.T) {
		tempDir := t.TempDir()
		testFile := filepath.Join(tempDir, "to-delete.txt")
		require.NoError(t, os.WriteFile(testFile, []byte("delete me"), 0644))

		connector := New("test-source", tempDir)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changesChan, err := connector.Watch(ctx)
		require.NoError(t, err)

		go func() {
			time.Sleep(50 * time.Millisecond)
			os.Remove(testFile)
		}()

		select {
		case change := <-changesChan:
			assert.Equal(t, domain.ChangeDeleted, change.Type)
			assert.Contains(t, change.Document.URI, "to-delete.txt")
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for file deletion event")
		}

		cancel()
		connector.Close()
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		connector := New("test-source", "/non/existent/path")

		changesChan, err := connector.Watch(context.Background())

		require.Error(t, err)
		assert.Nil(t, changesChan)
		assert.Contains(t, err.Error(), "root path error")
	})

	t.Run("closes channel when context is cancelled", func(t *testing.T) {
		connector := New("test-source", t.TempDir())
		ctx, cancel := context.WithCancel(context.Background())

		changesChan, err := connector.Watch(ctx)
		require.NoError(t, err)

		cancel()

		select {
		case _, ok := <-changesChan:
			if ok {
				for range changesChan {
				}
			}
		case <-time.After(500 * time.Millisecond):
			t.Fatal("channel did not close after context cancellation")
		}

		connector.Close()
	})

	t.Run("returns error when connector is closed", func(t *testing.T) {
		connector := New("test-source", t.TempDir())
		require.NoError(t, connector.Close())

		changesChan, err := connector.Watch(context.Background())

		assert.ErrorIs(t, err, domain.ErrConnectorClosed)
		assert.Nil(t, changesChan)
	})
}

func TestConnector_Close(t *testing.T) {
	t.Run("close is idempotent", func(t *testing.T) {
		connector := New("test-source", "/tmp/mail")

		assert.NoError(t, connector.Close())
		assert.NoError(t, connector.Close())
		assert.NoError(t, connector.Close())
	})

	t.Run("metadata accessors still work after close", func(t *testing.T) {
		connector := New("test-source", "/tmp/mail")
		require.NoError(t, connector.Close())

		assert.Equal(t, "filesystem", connector.Type())
		assert.Equal(t, "test-source", connector.SourceID())
	})
}
