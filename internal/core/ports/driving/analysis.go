package driving

import (
	"context"

	"github.com/orderlens/orderlens/internal/core/domain"
)

// AnalysisService analyses one mail document at a time.
// All methods are pure functions of their inputs and safe for
// concurrent use across documents.
type AnalysisService interface {
	// Analyze classifies the document, extracts its product table and
	// totals, and combines the three results into one Analysis.
	Analyze(ctx context.Context, mail domain.MailText) (domain.Analysis, error)

	// Classify tags the document from its three text inputs.
	Classify(subject, body, attachmentText string) domain.DocumentTag

	// ExtractItems extracts line items from a single text block.
	ExtractItems(text string) []domain.LineItem

	// ExtractTotals extracts the grand total and currency from text.
	ExtractTotals(text string) domain.Totals
}
