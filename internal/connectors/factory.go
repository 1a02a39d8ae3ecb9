// Package connectors provides implementations of the Connector
// interface for the supported mail sources. Each connector knows how
// to fetch documents from one source type (gmail, filesystem).
package connectors

import (
	"context"
	"fmt"

	"github.com/orderlens/orderlens/internal/connectors/filesystem"
	"github.com/orderlens/orderlens/internal/connectors/google/gmail"
	"github.com/orderlens/orderlens/internal/core/domain"
	"github.com/orderlens/orderlens/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.ConnectorFactory = (*Factory)(nil)

// Factory builds connectors from source definitions.
type Factory struct {
	tokenProvider driven.TokenProvider
}

// NewFactory creates a connector factory. The token provider is used
// by connectors that require authentication and may be nil when only
// local sources are configured.
func NewFactory(tokenProvider driven.TokenProvider) *Factory {
	return &Factory{tokenProvider: tokenProvider}
}

// Create builds a connector for the source.
// Returns domain.ErrUnsupportedType for unknown source types.
func (f *Factory) Create(ctx context.Context, source domain.Source) (driven.Connector, error) {
	switch source.Type {
	case "filesystem":
		path := source.Config["path"]
		if path == "" {
			return nil, fmt.Errorf("%w: filesystem source %s has no path", domain.ErrInvalidInput, source.ID)
		}
		return filesystem.New(source.ID, path), nil

	case "gmail":
		if f.tokenProvider == nil {
			return nil, fmt.Errorf("%w: gmail source %s has no token provider", domain.ErrAuthRequired, source.ID)
		}
		cfg, err := gmail.ParseConfig(source)
		if err != nil {
			return nil, fmt.Errorf("parse gmail config: %w", err)
		}
		return gmail.New(ctx, source.ID, cfg, f.tokenProvider)

	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedType, source.Type)
	}
}
