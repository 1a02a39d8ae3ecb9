package services

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/orderlens/orderlens/internal/core/domain"
)

// ProductTableExtractor produces a deduplicated list of line items
// from one free-form text block. Source documents arrive in at least
// three incompatible layouts — true delimited tables, space-aligned
// columns, and inline labeled fragments — so extraction is a
// prioritised chain of three independent recognisers sharing the
// filtering vocabulary in linefilter.go. The first strategy to yield
// a valid row claims the line.
type ProductTableExtractor struct{}

// NewProductTableExtractor creates a new extractor.
func NewProductTableExtractor() *ProductTableExtractor {
	return &ProductTableExtractor{}
}

var (
	// columnDelimiter splits delimited rows: pipes, runs of two or
	// more spaces, or tabs.
	columnDelimiter = regexp.MustCompile(`\s*\|\s*|\s{2,}|\t+`)

	// bulletNumberPrefix strips leading bullets and numbering from a
	// column-0 name ("- ", "* ", "1. ").
	bulletNumberPrefix = regexp.MustCompile(`^[-*•>\d.\s]+`)

	// bulletPrefix strips leading bullets only, preserving a name that
	// legitimately starts with a digit.
	bulletPrefix = regexp.MustCompile(`^[-*•>\s]+`)

	// trailingNumbers removes everything from the first numeric token
	// onward, leaving the candidate name.
	trailingNumbers = regexp.MustCompile(`[\d,]+\.?\d*.*$`)

	// Table-region markers. Header lines contain both an item noun and
	// a quantity/price noun; footer vocabulary closes the region.
	tableHeaderItemNoun = regexp.MustCompile(`(item|producto|description|descripci[oó]n|art[ií]culo)`)
	tableHeaderQtyNoun  = regexp.MustCompile(`(qty|quantity|cantidad|price|precio|total|unit)`)
	tableFooterVocab    = regexp.MustCompile(`(subtotal|total|grand total|monto total|iva|tax|shipping|env[ií]o)`)
	horizontalRule      = regexp.MustCompile(`^[-=]+$`)
	underscoreRule      = regexp.MustCompile(`^_{3,}`)

	// Inline labeled fields for strategy C.
	inlineQtyField   = regexp.MustCompile(`(?i)(?:Qty|Quantity|Cantidad|Cant)[\s:]*(\d+)`)
	inlinePriceField = regexp.MustCompile(`(?i)(?:Price|Precio|Unit|Unitario|P\.U\.)[\s:]*\$?\s*([\d,]+\.?\d*)`)
	inlineLabelStart = regexp.MustCompile(`(?i)(?:Qty|Quantity|Cantidad|Price|Precio|Unit|Unitario|P\.U\.).*`)
)

// placeholderName labels inline-label rows whose name could not be
// recovered from the line or its predecessor.
const placeholderName = "Producto sin nombre"

// rowOutcome is the verdict a recogniser passes on a line.
type rowOutcome int

const (
	// rowNoMatch lets the next recogniser try the line.
	rowNoMatch rowOutcome = iota

	// rowMatched produced a line item.
	rowMatched

	// rowRejected claims the line without producing an item: the row
	// shape matched but its name was metadata, so later recognisers
	// must not reinterpret the same fragment.
	rowRejected
)

// Extract returns the deduplicated line items found in text, in
// first-seen order. It never fails: lines that match no strategy are
// simply skipped.
func (e *ProductTableExtractor) Extract(text string) []domain.LineItem {
	var items []domain.LineItem
	lines := strings.Split(text, "\n")

	// Advisory table-region state. Extraction still runs outside a
	// recognised table, as a fallback for loosely formatted emails.
	tableStarted := false

	for i := range lines {
		line := strings.TrimSpace(lines[i])
		if len(line) < 3 {
			continue
		}
		if isMetadataLine(line) {
			continue
		}

		lower := strings.ToLower(line)

		if tableHeaderItemNoun.MatchString(lower) && tableHeaderQtyNoun.MatchString(lower) {
			tableStarted = true
			continue
		}
		if tableStarted && (horizontalRule.MatchString(line) || underscoreRule.MatchString(line)) {
			continue
		}
		if tableStarted && tableFooterVocab.MatchString(lower) {
			tableStarted = false
			continue
		}

		item, outcome := e.fromDelimitedColumns(line)
		if outcome == rowNoMatch {
			item, outcome = e.fromTrailingNumbers(line)
		}
		if outcome == rowNoMatch {
			item, outcome = e.fromInlineLabels(line, previousLine(lines, i))
		}
		if outcome == rowMatched {
			items = append(items, item)
		}
	}

	return dedupeItems(items)
}

// fromDelimitedColumns recognises rows split by pipes, multi-space
// runs, or tabs: name in the first field, numerics in the rest.
func (e *ProductTableExtractor) fromDelimitedColumns(line string) (domain.LineItem, rowOutcome) {
	fields := splitColumns(line)
	if len(fields) < 3 {
		return domain.LineItem{}, rowNoMatch
	}

	name := strings.TrimSpace(bulletNumberPrefix.ReplaceAllString(fields[0], ""))
	if !isValidItemName(name) {
		return domain.LineItem{}, rowRejected
	}

	var numbers []float64
	for _, f := range fields[1:] {
		cleaned := strings.ReplaceAll(f, "$", "")
		token := numberToken.FindString(cleaned)
		if token == "" {
			continue
		}
		if v, ok := parsePositiveNumber(token); ok {
			numbers = append(numbers, v)
		}
	}

	// Bad numerics are not a claim on the line: the looser recognisers
	// may still read it.
	if item, ok := buildItem(name, numbers); ok {
		return item, rowMatched
	}
	return domain.LineItem{}, rowNoMatch
}

// fromTrailingNumbers recognises rows where the name is followed by a
// run of numeric tokens with no usable delimiter.
func (e *ProductTableExtractor) fromTrailingNumbers(line string) (domain.LineItem, rowOutcome) {
	tokens := numberToken.FindAllString(line, -1)
	if len(tokens) < 2 {
		return domain.LineItem{}, rowNoMatch
	}

	name := strings.TrimSpace(trailingNumbers.ReplaceAllString(line, ""))
	name = strings.TrimSpace(bulletPrefix.ReplaceAllString(name, ""))
	if !isValidItemName(name) {
		return domain.LineItem{}, rowRejected
	}

	var numbers []float64
	for _, t := range tokens {
		if v, ok := parsePositiveNumber(t); ok {
			numbers = append(numbers, v)
		}
	}
	if len(numbers) < 2 {
		return domain.LineItem{}, rowNoMatch
	}

	if item, ok := buildItem(name, numbers); ok {
		return item, rowMatched
	}
	return domain.LineItem{}, rowNoMatch
}

// fromInlineLabels recognises "Qty: 3 Price: $2.50" fragments. The
// name is whatever precedes the labels, falling back to the previous
// line and finally to a placeholder.
func (e *ProductTableExtractor) fromInlineLabels(line, prev string) (domain.LineItem, rowOutcome) {
	qtyMatch := inlineQtyField.FindStringSubmatch(line)
	priceMatch := inlinePriceField.FindStringSubmatch(line)
	if qtyMatch == nil || priceMatch == nil {
		return domain.LineItem{}, rowNoMatch
	}

	name := strings.TrimSpace(inlineLabelStart.ReplaceAllString(line, ""))
	if len(name) < 2 && len(prev) > 2 {
		name = truncateName(prev)
	}
	if name == "" {
		name = placeholderName
	}
	name = strings.TrimSpace(bulletPrefix.ReplaceAllString(name, ""))
	if !isValidItemName(name) {
		return domain.LineItem{}, rowRejected
	}

	qty, err := strconv.Atoi(qtyMatch[1])
	if err != nil {
		return domain.LineItem{}, rowNoMatch
	}
	price, ok := parsePositiveNumber(priceMatch[1])
	if !ok {
		return domain.LineItem{}, rowNoMatch
	}

	if qty <= 0 || qty >= 10000 || price >= 100000 {
		return domain.LineItem{}, rowNoMatch
	}
	return domain.LineItem{
		Name:      truncateName(name),
		Quantity:  qty,
		UnitPrice: round2(price),
		Total:     round2(float64(qty) * price),
	}, rowMatched
}

// buildItem assembles a line item from the ordered numeric values of a
// row: (quantity, unit price) with a computed total, or (quantity,
// unit price, total) when a third value is present.
//
// Scale correction: a quantity >= 10000 is assumed to be a misread
// price-in-cents and divided by 100 before truncation; unit prices
// >= 100000 and totals >= 1000000 likewise. This can misfire on
// legitimately large bulk orders; the range rejection below bounds the
// damage.
func buildItem(name string, numbers []float64) (domain.LineItem, bool) {
	if len(numbers) < 2 {
		return domain.LineItem{}, false
	}

	rawQty := numbers[0]
	if rawQty >= 10000 {
		rawQty /= 100
	}
	qty := int(rawQty)

	unit := numbers[1]
	if unit >= 100000 {
		unit /= 100
	}

	var total float64
	if len(numbers) >= 3 {
		total = numbers[2]
		if total >= 1000000 {
			total /= 100
		}
	} else {
		total = float64(qty) * unit
	}

	if qty <= 0 || qty >= 10000 || unit <= 0 || unit >= 100000 {
		return domain.LineItem{}, false
	}

	return domain.LineItem{
		Name:      truncateName(name),
		Quantity:  qty,
		UnitPrice: round2(unit),
		Total:     round2(total),
	}, true
}

// splitColumns splits a row on the column delimiters and drops empty
// fields.
func splitColumns(line string) []string {
	parts := columnDelimiter.Split(line, -1)
	fields := parts[:0]
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			fields = append(fields, p)
		}
	}
	return fields
}

// previousLine returns the trimmed line before index i, or "".
func previousLine(lines []string, i int) string {
	if i == 0 {
		return ""
	}
	return strings.TrimSpace(lines[i-1])
}

// dedupeItems removes items sharing the same identity, preserving
// first-seen order.
func dedupeItems(items []domain.LineItem) []domain.LineItem {
	seen := make(map[string]struct{}, len(items))
	unique := items[:0:0]
	for _, it := range items {
		key := it.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, it)
	}
	return unique
}
