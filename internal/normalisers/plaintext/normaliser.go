// Package plaintext normalises bare text files. The first line is
// taken as the subject when the document carries no subject metadata.
package plaintext

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/orderlens/orderlens/internal/core/domain"
	"github.com/orderlens/orderlens/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/csv",
		"text/markdown",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 5 // Fallback normaliser
}

// Normalise converts a raw document to mail text. Connectors may set
// Metadata["subject"]; without it the filename stands in, so a
// dropped-in text file still classifies on its name.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*domain.MailText, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	result := &domain.MailText{
		URI:     raw.URI,
		Subject: subjectFromMetadataOrURI(raw),
		Body:    string(raw.Content),
	}

	if raw.Metadata != nil {
		if from, ok := raw.Metadata["from"].(string); ok {
			result.From = from
		}
		if date, ok := raw.Metadata["date"].(string); ok {
			result.Date = date
		}
	}

	return result, nil
}

// subjectFromMetadataOrURI checks metadata for a subject first, then
// falls back to the filename.
func subjectFromMetadataOrURI(raw *domain.RawDocument) string {
	if raw.Metadata != nil {
		if subject, ok := raw.Metadata["subject"].(string); ok && subject != "" {
			return subject
		}
	}
	return titleFromURI(raw.URI)
}

// titleFromURI extracts a human-readable title from a URI.
func titleFromURI(uri string) string {
	filename := filepath.Base(uri)

	ext := filepath.Ext(filename)
	if ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}

	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")

	return filename
}
