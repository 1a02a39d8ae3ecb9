package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/orderlens/orderlens/internal/core/domain"
	"github.com/orderlens/orderlens/internal/core/ports/driving"
	"github.com/orderlens/orderlens/internal/logger"
)

// Analyzer composes classification, product extraction and totals
// extraction into a single per-document pipeline. It is stateless and
// safe for concurrent use.
type Analyzer struct {
	classifier *DocumentClassifier
	products   *ProductTableExtractor
	totals     *TotalsExtractor
}

// Compile-time check that Analyzer implements the driving port.
var _ driving.AnalysisService = (*Analyzer)(nil)

// NewAnalyzer creates an Analyzer with default extractors.
func NewAnalyzer() *Analyzer {
	return &Analyzer{
		classifier: NewDocumentClassifier(),
		products:   NewProductTableExtractor(),
		totals:     NewTotalsExtractor(),
	}
}

// Analyze runs the full pipeline over a normalised mail document.
// Product extraction runs per attachment text and then over the body,
// with duplicates collapsed across all of them. Totals run over the
// combined text of everything.
func (a *Analyzer) Analyze(ctx context.Context, mail domain.MailText) (domain.Analysis, error) {
	if err := ctx.Err(); err != nil {
		return domain.Analysis{}, err
	}

	attachmentText := mail.CombinedAttachmentText()
	if strings.TrimSpace(mail.Subject) == "" &&
		strings.TrimSpace(mail.Body) == "" &&
		strings.TrimSpace(attachmentText) == "" {
		return domain.Analysis{}, domain.ErrNoInput
	}

	tag := a.Classify(mail.Subject, mail.Body, attachmentText)

	var items []domain.LineItem
	for _, att := range mail.Attachments {
		items = append(items, a.ExtractItems(att.Text)...)
	}
	items = append(items, a.ExtractItems(mail.Body)...)
	items = dedupeItems(items)

	combined := strings.Join([]string{mail.Subject, mail.Body, attachmentText}, " ")
	totals := a.ExtractTotals(combined)

	analysis := domain.Analysis{
		ID:         uuid.NewString(),
		URI:        mail.URI,
		Tag:        tag,
		Items:      items,
		Totals:     totals,
		From:       mail.From,
		Subject:    mail.Subject,
		Date:       mail.Date,
		AnalyzedAt: time.Now().UTC(),
	}
	for _, att := range mail.Attachments {
		analysis.Attachments = append(analysis.Attachments, domain.AttachmentInfo{
			Filename: att.Filename,
			MIMEType: att.MIMEType,
		})
	}

	// A document with recognised line items but no labeled total still
	// gets an amount, derived from the items themselves.
	if analysis.Totals.Amount == 0 && len(items) > 0 {
		analysis.Totals.Amount = round2(analysis.ItemSum())
	}

	logger.Debug("analyzed %s: tag=%s items=%d total=%.2f %s",
		mail.URI, tag, len(items), analysis.Totals.Amount, analysis.Totals.Currency)

	return analysis, nil
}

// Classify determines the document type from the mail's parts.
func (a *Analyzer) Classify(subject, body, attachmentText string) domain.DocumentTag {
	return a.classifier.Classify(subject, body, attachmentText)
}

// ExtractItems extracts product line items from a block of text.
func (a *Analyzer) ExtractItems(text string) []domain.LineItem {
	return a.products.Extract(text)
}

// ExtractTotals extracts the grand total and currency from text.
func (a *Analyzer) ExtractTotals(text string) domain.Totals {
	return a.totals.Extract(text)
}
