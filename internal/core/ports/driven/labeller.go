package driven

import (
	"context"

	"github.com/orderlens/orderlens/internal/core/domain"
)

// Labeller tags a processed document at its source.
// The Gmail adapter applies the PO/QUOTE label and archives the
// message; sources without labels simply omit the capability.
type Labeller interface {
	// ApplyTag marks the document identified by uri with the tag.
	// Documents classified UNKNOWN are left untouched by callers.
	ApplyTag(ctx context.Context, uri string, tag domain.DocumentTag) error
}

// Notifier receives completed analyses as they are produced.
// The sync orchestrator pushes results here instead of persisting
// them; implementations print, collect, or forward.
type Notifier interface {
	// AnalysisCompleted is called once per analysed document.
	AnalysisCompleted(analysis domain.Analysis)

	// AnalysisFailed is called when a document could not be processed.
	AnalysisFailed(uri string, err error)
}
