// Package gmail implements the Gmail connector. Messages are fetched
// in raw RFC 2822 format via the Gmail API and incremental sync rides
// on the History API.
package gmail

import (
	"context"
	"errors"
	"fmt"
	"sync"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/orderlens/orderlens/internal/connectors/google"
	"github.com/orderlens/orderlens/internal/core/domain"
	"github.com/orderlens/orderlens/internal/core/ports/driven"
	"github.com/orderlens/orderlens/internal/logger"
)

// Ensure Connector implements the interfaces.
var (
	_ driven.Connector = (*Connector)(nil)
	_ driven.Labeller  = (*Connector)(nil)
)

// Connector fetches mail from a Gmail account.
type Connector struct {
	sourceID string
	config   *Config
	service  *gmailapi.Service
	limiter  *google.RateLimiter
	labels   *labelCache

	mu     sync.Mutex
	closed bool
}

// New creates a new Gmail connector. The token provider supplies
// access tokens for every API call.
func New(ctx context.Context, sourceID string, cfg *Config, tokenProvider driven.TokenProvider) (*Connector, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	service, err := google.NewGmailService(ctx, google.NewTokenSource(ctx, tokenProvider))
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}

	return &Connector{
		sourceID: sourceID,
		config:   cfg,
		service:  service,
		limiter:  google.NewRateLimiter(google.DefaultGmailRateLimit),
		labels:   newLabelCache(),
	}, nil
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return "gmail"
}

// SourceID returns the source identifier.
func (c *Connector) SourceID() string {
	return c.sourceID
}

// Capabilities returns the connector's capabilities.
func (c *Connector) Capabilities() driven.ConnectorCapabilities {
	return driven.ConnectorCapabilities{
		SupportsIncremental:  true,
		SupportsWatch:        false, // Pub/Sub push requires a server endpoint
		RequiresAuth:         true,
		SupportsValidation:   true,
		SupportsCursorReturn: true,
		SupportsLabelling:    true,
	}
}

// Validate checks credentials by fetching the account profile.
func (c *Connector) Validate(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrConnectorClosed
	}
	c.mu.Unlock()

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	_, err := c.service.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		if google.IsUnauthorized(err) {
			return domain.ErrAuthInvalid
		}
		return fmt.Errorf("%w: %w", domain.ErrAuthRequired, google.WrapError(err))
	}
	return nil
}

// FullSync fetches every matching message from the account.
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

		// Record the account's current history ID before listing so
		// the next incremental sync starts from this point.
		historyID, err := c.currentHistoryID(ctx)
		if err != nil {
			errsChan <- err
			return
		}

		err = c.listMessages(ctx, func(doc *domain.RawDocument) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case docsChan <- *doc:
				return nil
			}
		})
		if err != nil {
			if ctx.Err() == nil {
				errsChan <- err
			}
			return
		}

		cursor := NewCursor()
		cursor.HistoryID = historyID
		errsChan <- &driven.SyncComplete{NewCursor: cursor.Encode()}
	}()

	return docsChan, errsChan
}

// IncrementalSync fetches changes since the cursor's history ID.
// An empty or expired cursor degrades to a full listing.
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

		cursor, err := DecodeCursor(state.Cursor)
		if err != nil {
			errsChan <- fmt.Errorf("decode cursor: %w", err)
			return
		}

		newHistoryID, err := c.currentHistoryID(ctx)
		if err != nil {
			errsChan <- err
			return
		}

		emit := func(change domain.RawDocumentChange) error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case changesChan <- change:
				return nil
			}
		}

		if cursor.IsEmpty() {
			err = c.listAsChanges(ctx, emit)
		} else {
			err = c.listHistory(ctx, cursor.HistoryID, emit)
			if google.IsHistoryIDExpired(err) {
				logger.Warn("Gmail history %d expired for %s, falling back to full listing", cursor.HistoryID, c.sourceID)
				err = c.listAsChanges(ctx, emit)
			}
		}
		if err != nil {
			if ctx.Err() == nil {
				errsChan <- err
			}
			return
		}

		next := NewCursor()
		next.HistoryID = newHistoryID
		errsChan <- &driven.SyncComplete{NewCursor: next.Encode()}
	}()

	return changesChan, errsChan
}

// Watch is not supported; Gmail push notifications need a public
// Pub/Sub endpoint.
func (c *Connector) Watch(_ context.Context) (<-chan domain.RawDocumentChange, error) {
	return nil, domain.ErrNotImplemented
}

// Close releases resources.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// currentHistoryID fetches the account's latest history ID.
func (c *Connector) currentHistoryID(ctx context.Context) (uint64, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	profile, err := c.service.Users.GetProfile("me").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get profile: %w", google.WrapError(err))
	}
	return profile.HistoryId, nil
}

// listMessages pages through matching messages and emits each one as
// a raw document.
func (c *Connector) listMessages(ctx context.Context, emit func(*domain.RawDocument) error) error {
	pageToken := ""
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		call := c.service.Users.Messages.List("me").
			MaxResults(c.config.MaxResults).
			IncludeSpamTrash(c.config.IncludeSpamTrash).
			Context(ctx)
		if len(c.config.LabelIDs) > 0 {
			call = call.LabelIds(c.config.LabelIDs...)
		}
		if c.config.Query != "" {
			call = call.Q(c.config.Query)
		}
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			return fmt.Errorf("list messages: %w", google.WrapError(err))
		}

		for _, ref := range resp.Messages {
			doc, err := c.fetchMessage(ctx, ref.Id)
			if err != nil {
				return err
			}
			if doc == nil {
				continue
			}
			if err := emit(doc); err != nil {
				return err
			}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return nil
		}
	}
}

// listAsChanges runs a full listing but emits created changes, for
// incremental callers whose cursor cannot be used.
func (c *Connector) listAsChanges(ctx context.Context, emit func(domain.RawDocumentChange) error) error {
	return c.listMessages(ctx, func(doc *domain.RawDocument) error {
		return emit(domain.RawDocumentChange{
			Type:     domain.ChangeCreated,
			Document: *doc,
		})
	})
}

// listHistory pages the History API from the given history ID and
// emits added and deleted messages.
func (c *Connector) listHistory(ctx context.Context, startID uint64, emit func(domain.RawDocumentChange) error) error {
	pageToken := ""
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		call := c.service.Users.History.List("me").
			StartHistoryId(startID).
			HistoryTypes("messageAdded", "messageDeleted").
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			wrapped := google.WrapError(err)
			if google.IsHistoryIDExpired(wrapped) {
				return fmt.Errorf("history from %d: %w", startID, google.ErrHistoryIDExpired)
			}
			return fmt.Errorf("list history: %w", wrapped)
		}

		for _, h := range resp.History {
			for _, added := range h.MessagesAdded {
				doc, err := c.fetchMessage(ctx, added.Message.Id)
				if err != nil {
					return err
				}
				if doc == nil {
					continue
				}
				if err := emit(domain.RawDocumentChange{
					Type:     domain.ChangeCreated,
					Document: *doc,
				}); err != nil {
					return err
				}
			}
			for _, deleted := range h.MessagesDeleted {
				if err := emit(domain.RawDocumentChange{
					Type: domain.ChangeDeleted,
					Document: domain.RawDocument{
						SourceID: c.sourceID,
						URI:      fmt.Sprintf("gmail://messages/%s", deleted.Message.Id),
						MIMEType: "message/rfc822",
					},
				}); err != nil {
					return err
				}
			}
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return nil
		}
	}
}

// fetchMessage downloads one message in raw format. Returns nil when
// the message does not match the configured filters, or when it has
// vanished between listing and fetching.
func (c *Connector) fetchMessage(ctx context.Context, messageID string) (*domain.RawDocument, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	msg, err := c.service.Users.Messages.Get("me", messageID).Format("raw").Context(ctx).Do()
	if err != nil {
		wrapped := google.WrapError(err)
		if errors.Is(wrapped, google.ErrNotFound) {
			logger.Debug("Message %s vanished before fetch", messageID)
			return nil, nil
		}
		return nil, fmt.Errorf("get message %s: %w", messageID, wrapped)
	}

	if !ShouldSyncMessage(msg, c.config) {
		return nil, nil
	}
	return MessageToRawDocument(msg, c.sourceID), nil
}
