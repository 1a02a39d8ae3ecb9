// Package pdf extracts text from PDF documents, both as a standalone
// normaliser for PDF files and as the attachment extractor the eml
// normaliser delegates to.
package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsawler/tabula"

	"github.com/orderlens/orderlens/internal/core/domain"
	"github.com/orderlens/orderlens/internal/core/ports/driven"
	"github.com/orderlens/orderlens/internal/logger"
)

// Ensure the interfaces are implemented.
var (
	_ driven.Normaliser          = (*Normaliser)(nil)
	_ driven.AttachmentExtractor = (*Normaliser)(nil)
)

// extractFunc pulls plain text out of a PDF file on disk.
type extractFunc func(path string) (string, error)

// Normaliser handles PDF documents.
type Normaliser struct {
	extract extractFunc
}

// New creates a new PDF normaliser.
func New() *Normaliser {
	return &Normaliser{extract: tabulaText}
}

// tabulaText extracts text using the tabula extractor.
func tabulaText(path string) (string, error) {
	text, warnings, err := tabula.Open(path).Text()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}
	if len(warnings) > 0 {
		logger.Debug("pdf extraction produced %d warnings for %s", len(warnings), filepath.Base(path))
	}
	return text, nil
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"application/pdf",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 60 // Format-specific normaliser
}

// Normalise converts a PDF document to mail text. The extracted text
// becomes the body; the filename stands in for the subject so that a
// labelled PDF still classifies on its name.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.MailText, error) {
	if raw == nil || len(raw.Content) == 0 {
		return nil, domain.ErrInvalidInput
	}

	text, err := n.ExtractText(ctx, filepath.Base(raw.URI), raw.Content)
	if err != nil {
		return nil, err
	}

	return &domain.MailText{
		URI:     raw.URI,
		Subject: titleFromURI(raw.URI),
		Body:    strings.TrimSpace(text),
		Attachments: []domain.AttachmentText{
			{
				Filename: filepath.Base(raw.URI),
				MIMEType: "application/pdf",
				Text:     text,
			},
		},
	}, nil
}

// SupportsMIMEType reports whether the extractor handles the type.
func (n *Normaliser) SupportsMIMEType(mimeType string) bool {
	return mimeType == "application/pdf"
}

// ExtractText returns the PDF's plain text. The underlying extractor
// reads from disk, so the bytes are staged in a temporary file.
func (n *Normaliser) ExtractText(ctx context.Context, filename string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", domain.ErrInvalidInput
	}

	tmp, err := os.CreateTemp("", "orderlens-*.pdf")
	if err != nil {
		return "", fmt.Errorf("stage pdf: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("stage pdf: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("stage pdf: %w", err)
	}

	text, err := n.extract(tmp.Name())
	if err != nil {
		return "", fmt.Errorf("%s: %w", filename, err)
	}
	return text, nil
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
