package services

import (
	"regexp"

	"github.com/orderlens/orderlens/internal/core/domain"
)

// DocumentClassifier tags a mail document as PO, QUOTE, or UNKNOWN
// from its subject, body and attachment text. Classification is a
// pure function of the three inputs; the pattern tables below are
// immutable after initialisation.
//
// The decision is an ordered cascade: subject-level PO evidence is
// authoritative and short-circuits everything else, quote phrasing is
// weaker and yields to any concrete PO number found anywhere in the
// combined text.
type DocumentClassifier struct{}

// NewDocumentClassifier creates a new classifier.
func NewDocumentClassifier() *DocumentClassifier {
	return &DocumentClassifier{}
}

// subjectPOSignals are authoritative purchase-order markers in the
// subject line. Any match returns PO immediately.
var subjectPOSignals = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bPO\b`),
	regexp.MustCompile(`(?i)\bPURCHASE\s+ORDER\b`),
	regexp.MustCompile(`(?i)\bORDEN\s+DE\s+COMPRA\b`),
	regexp.MustCompile(`(?i)\bORDEN\s*#`),
	regexp.MustCompile(`(?i)\bPO[-_\s]?\d+`),
}

// quoteSignals mark quote vocabulary in the subject or body.
var quoteSignals = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bQUOTE\b`),
	regexp.MustCompile(`(?i)\bQUOTATION\b`),
	regexp.MustCompile(`(?i)\bCOTIZACI[OÓ]N\b`),
	regexp.MustCompile(`(?i)\bQUOTE\s+REQUEST\b`),
}

// attachmentPOSignals mark purchase-order evidence inside attachment
// text, where the formal document usually lives.
var attachmentPOSignals = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bPURCHASE\s+ORDER\b`),
	regexp.MustCompile(`(?i)\bPO\s+NUMBER\b`),
	regexp.MustCompile(`(?i)\bPO\s*#`),
}

// quoteRequestSignals mark explicit quote-request phrasing anywhere in
// the combined text, English and Spanish.
var quoteRequestSignals = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bSEND\s+ME\s+A\s+QUOTE\b`),
	regexp.MustCompile(`(?i)\bCOTIZACI[OÓ]N\b`),
	regexp.MustCompile(`(?i)\bPLEASE\s+QUOTE\b`),
	regexp.MustCompile(`(?i)\bQUOTE\s+FOR\b`),
	regexp.MustCompile(`(?i)\bPRICE\s+QUOTE\b`),
	regexp.MustCompile(`(?i)\bREQUEST.*QUOTE\b`),
	regexp.MustCompile(`(?i)\bSOLICIT(O|A|AR).*COTIZACI[OÓ]N\b`),
	regexp.MustCompile(`(?i)\bCONFIRM(AR|A|O).*PRECIO(S)?\b`),
}

// poNumberPatterns match a concrete PO number anywhere in the text —
// the single most reliable positive signal available.
var poNumberPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bPO\s*[-:#]?\s*\d+`),
	regexp.MustCompile(`(?i)\bORDEN\s*[-:#]?\s*\d+`),
	regexp.MustCompile(`(?i)\bORDER\s*[-:#]?\s*\d+`),
}

// Classify tags the document. Missing attachment text is passed as an
// empty string. Matching is case-insensitive throughout.
func (c *DocumentClassifier) Classify(subject, body, attachmentText string) domain.DocumentTag {
	combined := subject + " " + body + " " + attachmentText

	// 1. Subject-level PO evidence wins outright.
	if matchAny(subjectPOSignals, subject) {
		return domain.TagPO
	}

	// 2. Quote vocabulary in subject or body is recorded, not returned:
	// a PO number elsewhere can still override it.
	hasQuote := matchAny(quoteSignals, subject) || matchAny(quoteSignals, body)

	// 3. PO evidence in the attachment decides unless a quote signal
	// already fired; then the tie-break below settles it.
	hasPO := false
	if attachmentText != "" && matchAny(attachmentPOSignals, attachmentText) {
		if !hasQuote {
			return domain.TagPO
		}
		hasPO = true
	}

	hasPONumber := matchAny(poNumberPatterns, combined)

	// 4. Quote-request phrasing returns QUOTE only when no PO number
	// exists anywhere in the combined text.
	if matchAny(quoteRequestSignals, combined) {
		if !hasPONumber {
			return domain.TagQuote
		}
		hasQuote = true
	}

	// 5. Tie-break.
	if hasPO && hasQuote {
		if hasPONumber {
			return domain.TagPO
		}
		return domain.TagQuote
	}
	if hasPO {
		return domain.TagPO
	}
	if hasQuote {
		return domain.TagQuote
	}
	return domain.TagUnknown
}

// matchAny reports whether any pattern in the table matches s.
func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, p := range patterns {
		if p.MatchString(s) {
			return true
		}
	}
	return false
}
