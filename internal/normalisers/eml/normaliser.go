// Package eml normalises RFC 822 mail messages: decoded headers, a
// plain-text body, and per-attachment extracted text.
package eml

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"mime"
	"mime/multipart"
	"mime/quotedprintable"
	"net/mail"
	"strings"

	"github.com/orderlens/orderlens/internal/core/domain"
	"github.com/orderlens/orderlens/internal/core/ports/driven"
	"github.com/orderlens/orderlens/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles EML (email) documents. Binary attachments are
// handed to the optional extractor; without one they contribute only
// their filename metadata.
type Normaliser struct {
	extractor driven.AttachmentExtractor
}

// New creates a new EML normaliser. The extractor may be nil.
func New(extractor driven.AttachmentExtractor) *Normaliser {
	return &Normaliser{extractor: extractor}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{
		"message/rfc822",
	}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser
}

// Normalise converts an EML document to mail text.
func (n *Normaliser) Normalise(ctx context.Context, raw *domain.RawDocument) (*domain.MailText, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, domain.ErrInvalidInput
	}

	result := &domain.MailText{
		URI:     raw.URI,
		Subject: decodeHeader(msg.Header.Get("Subject")),
		From:    decodeHeader(msg.Header.Get("From")),
		Date:    msg.Header.Get("Date"),
	}

	body, attachments, err := n.extractParts(ctx, msg)
	if err != nil {
		return nil, err
	}
	result.Body = strings.TrimSpace(body)
	result.Attachments = attachments

	return result, nil
}

// extractParts walks the message and separates body text from
// attachments.
func (n *Normaliser) extractParts(ctx context.Context, msg *mail.Message) (string, []domain.AttachmentText, error) {
	contentType := msg.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "text/plain"
	}

	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		// Unparseable content type: read as plain text.
		body, readErr := io.ReadAll(msg.Body)
		if readErr != nil {
			return "", nil, domain.ErrInvalidInput
		}
		return string(body), nil, nil
	}

	if strings.HasPrefix(mediaType, "multipart/") {
		walker := partWalker{extractor: n.extractor}
		if err := walker.walk(ctx, msg.Body, params["boundary"]); err != nil {
			return "", nil, err
		}
		return walker.body(), walker.attachments, nil
	}

	encoding := msg.Header.Get("Content-Transfer-Encoding")
	body, err := decodeContent(msg.Body, encoding)
	if err != nil {
		return "", nil, domain.ErrInvalidInput
	}

	if mediaType == "text/html" {
		return stripHTMLTags(string(body)), nil, nil
	}
	return string(body), nil, nil
}

// partWalker accumulates text and attachments across nested multipart
// levels.
type partWalker struct {
	extractor   driven.AttachmentExtractor
	textParts   []string
	htmlParts   []string
	attachments []domain.AttachmentText
}

// body prefers plain text parts over HTML ones.
func (w *partWalker) body() string {
	if len(w.textParts) > 0 {
		return strings.TrimSpace(strings.Join(w.textParts, "\n"))
	}
	return strings.TrimSpace(strings.Join(w.htmlParts, "\n"))
}

func (w *partWalker) walk(ctx context.Context, r io.Reader, boundary string) error {
	if boundary == "" {
		return nil
	}

	mr := multipart.NewReader(r, boundary)
	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			// A malformed trailing part should not discard what was
			// already read.
			return nil
		}

		mediaType, params, parseErr := mime.ParseMediaType(part.Header.Get("Content-Type"))
		if parseErr != nil {
			mediaType = "application/octet-stream"
		}

		filename := decodeHeader(part.FileName())

		content, readErr := decodeContent(part, part.Header.Get("Content-Transfer-Encoding"))
		part.Close()
		if readErr != nil {
			continue
		}

		switch {
		case filename != "":
			w.addAttachment(ctx, filename, mediaType, content)
		case mediaType == "text/plain":
			w.textParts = append(w.textParts, string(content))
		case mediaType == "text/html":
			w.htmlParts = append(w.htmlParts, stripHTMLTags(string(content)))
		case strings.HasPrefix(mediaType, "multipart/"):
			if err := w.walk(ctx, bytes.NewReader(content), params["boundary"]); err != nil {
				return err
			}
		}
	}
}

// addAttachment records an attachment, extracting text where possible.
// Extraction failures degrade to an empty text block rather than
// failing the whole message.
func (w *partWalker) addAttachment(ctx context.Context, filename, mediaType string, content []byte) {
	att := domain.AttachmentText{
		Filename: filename,
		MIMEType: mediaType,
	}

	switch {
	case strings.HasPrefix(mediaType, "text/"):
		text := string(content)
		if mediaType == "text/html" {
			text = stripHTMLTags(text)
		}
		att.Text = text
	case w.extractor != nil && w.extractor.SupportsMIMEType(mediaType):
		text, err := w.extractor.ExtractText(ctx, filename, content)
		if err != nil {
			logger.Warn("Failed to extract text from %s: %v", filename, err)
		} else {
			att.Text = text
		}
	}

	w.attachments = append(w.attachments, att)
}

// decodeContent reads a part and reverses its transfer encoding.
func decodeContent(r io.Reader, encoding string) ([]byte, error) {
	switch strings.ToLower(strings.TrimSpace(encoding)) {
	case "base64":
		return io.ReadAll(base64.NewDecoder(base64.StdEncoding, newWhitespaceStripper(r)))
	case "quoted-printable":
		return io.ReadAll(quotedprintable.NewReader(r))
	default:
		return io.ReadAll(r)
	}
}

// whitespaceStripper removes CR/LF from base64 bodies before decoding.
type whitespaceStripper struct {
	r io.Reader
}

func newWhitespaceStripper(r io.Reader) io.Reader {
	return &whitespaceStripper{r: r}
}

func (s *whitespaceStripper) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	kept := 0
	for i := 0; i < n; i++ {
		switch p[i] {
		case '\r', '\n', ' ', '\t':
			continue
		default:
			p[kept] = p[i]
			kept++
		}
	}
	if kept == 0 && err == nil {
		return s.Read(p)
	}
	return kept, err
}

// decodeHeader decodes RFC 2047 encoded headers.
func decodeHeader(header string) string {
	if header == "" {
		return ""
	}
	dec := new(mime.WordDecoder)
	decoded, err := dec.DecodeHeader(header)
	if err != nil {
		return header // Return original if decoding fails
	}
	return decoded
}

// stripHTMLTags removes HTML tags for basic text extraction.
func stripHTMLTags(html string) string {
	var result strings.Builder
	inTag := false

	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			result.WriteRune(r)
		}
	}

	// Clean up whitespace
	text := result.String()
	lines := strings.Split(text, "\n")
	var cleaned []string
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}

	return strings.Join(cleaned, "\n")
}
