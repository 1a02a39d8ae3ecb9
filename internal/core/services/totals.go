package services

import (
	"regexp"
	"strings"

	"github.com/orderlens/orderlens/internal/core/domain"
)

// TotalsExtractor pulls a single currency code and grand-total amount
// out of free-form document text. Both lookups are ordered pattern
// cascades: the first match wins, and absence of a match degrades to
// the defaults {0.0, "USD"}.
type TotalsExtractor struct{}

// NewTotalsExtractor creates a new extractor.
func NewTotalsExtractor() *TotalsExtractor {
	return &TotalsExtractor{}
}

// DefaultCurrency is used when no currency evidence is found.
const DefaultCurrency = "USD"

// currencyPatterns in decreasing specificity: a bare allow-listed
// code, a labeled currency field, then a code adjacent to "$".
var currencyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(USD|EUR|GBP|MXN|COP|ARS|CLP|PEN|BRL)\b`),
	regexp.MustCompile(`(?i)(?:Currency|Moneda|Divisa)[\s:]+(\w+)`),
	regexp.MustCompile(`(?i)\$\s*(?:USD|EUR|GBP|MXN|COP)`),
	regexp.MustCompile(`(?i)(?:USD|EUR|GBP|MXN|COP)\s*\$`),
}

// currencyCode pulls the 3-letter code out of an upper-cased match.
var currencyCode = regexp.MustCompile(`[A-Z]{3}`)

// amountPatterns in decreasing specificity: labeled totals with
// optional currency and dollar sign, down to a bare "Total:" at line
// start.
var amountPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)(?:Total|Grand Total|Amount Due|Monto Total|Total Amount|Net Total|Final Total)[\s:]*\$?\s*([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)(?:Total)[\s:]*(?:USD|EUR|GBP|MXN|COP)?\s*\$?\s*([\d,]+\.?\d*)`),
	regexp.MustCompile(`(?i)\$\s*([\d,]+\.?\d*)\s*(?:USD|EUR|GBP|MXN|COP)?`),
	regexp.MustCompile(`(?im)^\s*Total[\s:]*\$?\s*([\d,]+\.?\d*)`),
}

// Extract returns the document's totals. The result is set at most
// once per field: the first pattern producing a usable value wins.
func (e *TotalsExtractor) Extract(text string) domain.Totals {
	totals := domain.Totals{Amount: 0, Currency: DefaultCurrency}

	for _, p := range currencyPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		matched := m[0]
		if len(m) > 1 && m[1] != "" {
			matched = m[1]
		}
		if code := currencyCode.FindString(strings.ToUpper(matched)); code != "" {
			totals.Currency = code
			break
		}
	}

	for _, p := range amountPatterns {
		m := p.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, ok := parsePositiveNumber(m[1]); ok {
			totals.Amount = round2(v)
			break
		}
	}

	return totals
}
