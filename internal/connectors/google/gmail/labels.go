package gmail

import (
	"context"
	"fmt"
	"sync"

	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/orderlens/orderlens/internal/connectors/google"
	"github.com/orderlens/orderlens/internal/core/domain"
)

// labelCache resolves Gmail label names to IDs, caching lookups for
// the lifetime of the connector. Labels are expected to exist already;
// the connector never creates them.
type labelCache struct {
	mu  sync.Mutex
	ids map[string]string
}

func newLabelCache() *labelCache {
	return &labelCache{ids: make(map[string]string)}
}

// resolve returns the label ID for a label name.
func (l *labelCache) resolve(ctx context.Context, svc *gmailapi.Service, name string) (string, error) {
	l.mu.Lock()
	if id, ok := l.ids[name]; ok {
		l.mu.Unlock()
		return id, nil
	}
	l.mu.Unlock()

	resp, err := svc.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("list labels: %w", google.WrapError(err))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, label := range resp.Labels {
		l.ids[label.Name] = label.Id
	}

	id, ok := l.ids[name]
	if !ok {
		return "", fmt.Errorf("label %q not found: %w", name, domain.ErrNotFound)
	}
	return id, nil
}

// ApplyTag applies the tag's label to a message and removes it from
// INBOX, filing the mail under its classification.
func (c *Connector) ApplyTag(ctx context.Context, uri string, tag domain.DocumentTag) error {
	messageID := MessageIDFromURI(uri)
	if messageID == "" {
		return fmt.Errorf("%w: not a gmail message uri: %s", domain.ErrInvalidInput, uri)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	labelID, err := c.labels.resolve(ctx, c.service, string(tag))
	if err != nil {
		return err
	}
	inboxID, err := c.labels.resolve(ctx, c.service, "INBOX")
	if err != nil {
		return err
	}

	_, err = c.service.Users.Messages.Modify("me", messageID, &gmailapi.ModifyMessageRequest{
		AddLabelIds:    []string{labelID},
		RemoveLabelIds: []string{inboxID},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("apply label %s to %s: %w", tag, messageID, google.WrapError(err))
	}
	return nil
}
