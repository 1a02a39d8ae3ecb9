package driven

import (
	"context"

	"github.com/orderlens/orderlens/internal/core/domain"
)

// Normaliser transforms a raw document into plain mail text.
// Each normaliser handles specific MIME types (rfc822, PDF, plain text).
type Normaliser interface {
	// SupportedMIMETypes returns the MIME types this normaliser handles.
	SupportedMIMETypes() []string

	// Priority returns the selection priority (higher = preferred).
	// Format-specific normalisers should return 50-89.
	// Fallback normalisers should return 1-9.
	Priority() int

	// Normalise extracts subject, body and attachment text from raw bytes.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.MailText, error)
}

// NormaliserRegistry selects the appropriate normaliser for a document.
// It maintains a priority-ordered list of normalisers and dispatches
// based on MIME type.
type NormaliserRegistry interface {
	// Normalise transforms a raw document using the best matching normaliser.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.MailText, error)

	// Register adds a normaliser to the registry.
	Register(normaliser Normaliser)

	// SupportedMIMETypes returns all MIME types that can be normalised.
	SupportedMIMETypes() []string
}

// AttachmentExtractor converts attachment bytes to plain text.
// The eml normaliser uses it for binary attachment formats (PDF).
type AttachmentExtractor interface {
	// SupportsMIMEType reports whether the extractor handles the type.
	SupportsMIMEType(mimeType string) bool

	// ExtractText returns the attachment's plain text.
	ExtractText(ctx context.Context, filename string, data []byte) (string, error)
}
