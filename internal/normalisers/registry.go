package normalisers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/orderlens/orderlens/internal/core/domain"
	"github.com/orderlens/orderlens/internal/core/ports/driven"
	"github.com/orderlens/orderlens/internal/logger"
)

// Ensure Registry implements the interface.
var _ driven.NormaliserRegistry = (*Registry)(nil)

// Registry dispatches raw documents to normalisers by MIME type.
// When several normalisers claim the same type, the highest priority
// wins.
type Registry struct {
	mu          sync.RWMutex
	normalisers []driven.Normaliser
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a normaliser, keeping the list priority-sorted.
func (r *Registry) Register(n driven.Normaliser) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.normalisers = append(r.normalisers, n)
	sort.SliceStable(r.normalisers, func(i, j int) bool {
		return r.normalisers[i].Priority() > r.normalisers[j].Priority()
	})
}

// Normalise transforms a raw document using the best matching
// normaliser. Returns domain.ErrUnsupportedType when no normaliser
// claims the document's MIME type.
func (r *Registry) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.MailText, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	mimeType := baseMIMEType(raw.MIMEType)

	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, n := range r.normalisers {
		for _, supported := range n.SupportedMIMETypes() {
			if supported == mimeType {
				logger.Debug("Normalising %s as %s", raw.URI, mimeType)
				return n.Normalise(ctx, raw)
			}
		}
	}

	return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, mimeType)
}

// SupportedMIMETypes returns all MIME types with a registered
// normaliser, without duplicates.
func (r *Registry) SupportedMIMETypes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]struct{})
	var types []string
	for _, n := range r.normalisers {
		for _, t := range n.SupportedMIMETypes() {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			types = append(types, t)
		}
	}
	sort.Strings(types)
	return types
}

// baseMIMEType strips parameters like "; charset=utf-8".
func baseMIMEType(mimeType string) string {
	if i := strings.Index(mimeType, ";"); i >= 0 {
		mimeType = mimeType[:i]
	}
	return strings.TrimSpace(strings.ToLower(mimeType))
}
