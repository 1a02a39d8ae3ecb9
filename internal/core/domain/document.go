package domain

import (
	"strings"
	"time"
)

// DocumentTag classifies a mail document by commercial intent.
type DocumentTag string

const (
	// TagPO marks a purchase order: a buyer's committed order.
	TagPO DocumentTag = "PO"

	// TagQuote marks a price-quote request or quotation.
	TagQuote DocumentTag = "QUOTE"

	// TagUnknown marks a document with no recognisable signal.
	TagUnknown DocumentTag = "UNKNOWN"
)

// LineItem is one row of a product table extracted from document text.
type LineItem struct {
	// Name is the product description, trimmed and capped at 100 characters.
	Name string

	// Quantity is the ordered count. Always positive.
	Quantity int

	// UnitPrice is the per-unit price rounded to 2 decimal places.
	UnitPrice float64

	// Total is the row total rounded to 2 decimal places.
	// Defaults to Quantity * UnitPrice when the source line does not
	// carry an independent total.
	Total float64
}

// Key returns the deduplication identity for the item.
// Two items with the same key are the same item regardless of which
// text block produced them.
func (li LineItem) Key() string {
	var b strings.Builder
	b.WriteString(strings.ToLower(li.Name))
	b.WriteByte('|')
	b.WriteString(formatAmount(float64(li.Quantity)))
	b.WriteByte('|')
	b.WriteString(formatAmount(li.UnitPrice))
	return b.String()
}

// Totals is the document's grand total and its currency code.
type Totals struct {
	// Amount is the grand total rounded to 2 decimal places. Defaults to 0.
	Amount float64

	// Currency is a 3-letter code. Defaults to "USD".
	Currency string
}

// AttachmentText is the extracted text of a single attachment.
type AttachmentText struct {
	// Filename is the attachment's original name.
	Filename string

	// MIMEType is the attachment's declared content type.
	MIMEType string

	// Text is the extracted plain text. Empty when extraction failed
	// or the attachment carried no text.
	Text string
}

// MailText is the plain-text view of a mail document after
// normalisation. It is the sole input to analysis; the core never
// sees raw bytes or transport detail.
type MailText struct {
	// URI is the original document location (gmail://..., file path).
	URI string

	// Subject is the decoded subject line.
	Subject string

	// Body is the message body as plain text.
	Body string

	// From is the sender address, when known.
	From string

	// Date is the message date header, when known.
	Date string

	// Attachments holds per-attachment extracted text, in order.
	Attachments []AttachmentText
}

// AttachmentTexts returns the non-empty attachment text blocks.
func (m MailText) AttachmentTexts() []string {
	var blocks []string
	for _, a := range m.Attachments {
		if strings.TrimSpace(a.Text) != "" {
			blocks = append(blocks, a.Text)
		}
	}
	return blocks
}

// CombinedAttachmentText joins all attachment text with single spaces,
// mirroring how the classifier and totals extractor consume it.
func (m MailText) CombinedAttachmentText() string {
	return strings.Join(m.AttachmentTexts(), " ")
}

// Analysis is the complete result of analysing one mail document.
// It is an immutable value created fresh per analysis call; the core
// keeps no history of past analyses.
type Analysis struct {
	// ID uniquely identifies this analysis run.
	ID string

	// URI is the analysed document's location.
	URI string

	// Tag is the document classification.
	Tag DocumentTag

	// Items is the deduplicated product table, first-seen order.
	Items []LineItem

	// Totals is the extracted grand total and currency.
	Totals Totals

	// From, Subject and Date echo the source message headers.
	From    string
	Subject string
	Date    string

	// Attachments lists the attachments that contributed text.
	Attachments []AttachmentInfo

	// AnalyzedAt is when the analysis ran.
	AnalyzedAt time.Time
}

// AttachmentInfo is attachment metadata carried on an Analysis.
type AttachmentInfo struct {
	Filename string
	MIMEType string
}

// ItemSum returns the sum of all line-item totals.
func (a Analysis) ItemSum() float64 {
	var sum float64
	for _, it := range a.Items {
		sum += it.Total
	}
	return sum
}
