package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// The extractors share one filtering vocabulary: the patterns below
// decide whether a line is document furniture (labeled fields, contact
// blocks, dates, footers) and whether a candidate product name is
// plausible. All tables are immutable after initialisation and safe
// for concurrent use.

// metadataLinePatterns match lines that carry metadata rather than
// products. Applied to the lower-cased, trimmed line.
var metadataLinePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(po\s*number|order\s*number|quote\s*number|n[uú]mero|n[oó]\.?):`),
	regexp.MustCompile(`^(date|fecha|order\s*date|delivery\s*date|valid\s*until):`),
	regexp.MustCompile(`^(phone|tel[eé]fono|mobile|cell):`),
	regexp.MustCompile(`^(email|e-mail|correo):`),
	regexp.MustCompile(`^(address|direcci[oó]n|shipping|billing):`),
	regexp.MustCompile(`^(vendor|supplier|proveedor|from|de):`),
	regexp.MustCompile(`^(bill\s*to|ship\s*to|to|para):`),
	regexp.MustCompile(`^(payment\s*terms|t[eé]rminos|currency|moneda):`),
	regexp.MustCompile(`^(authorized\s*by|signed|signature|firma):`),
	regexp.MustCompile(`^(subtotal|total|grand\s*total|monto|iva|tax|shipping|env[ií]o):`),
	regexp.MustCompile(`^(thank\s*you|gracias|regards|saludos|best\s*regards)`),
	// Phone numbers in assorted groupings.
	regexp.MustCompile(`^\+?\d{1,4}[\s\-()]?\d{1,4}[\s\-]?\d{1,4}[\s\-]?\d{1,4}[\s\-]?\d{1,4}`),
	// Email addresses.
	regexp.MustCompile(`^[\w.-]+@[\w.-]+\.\w+`),
	// Bare weekday names, English and Spanish.
	regexp.MustCompile(`^(monday|tuesday|wednesday|thursday|friday|saturday|sunday|lunes|martes|mi[eé]rcoles|jueves|viernes|s[aá]bado|domingo)`),
	// Bare month names, English and Spanish.
	regexp.MustCompile(`^(january|february|march|april|may|june|july|august|september|october|november|december|enero|febrero|marzo|abril|mayo|junio|julio|agosto|septiembre|octubre|noviembre|diciembre)`),
}

// shortLabelValuePattern catches terse "label: 123" fragments that slip
// past the explicit metadata labels.
var shortLabelValuePattern = regexp.MustCompile(`^[a-z\s]+:\s*\d+`)

// invalidNamePatterns reject candidate product names that are really
// metadata fragments. Applied to the lower-cased name.
var invalidNamePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(po\s*number|order\s*number|quote\s*number|n[uú]mero):`),
	regexp.MustCompile(`^(date|fecha|order\s*date):`),
	regexp.MustCompile(`^(phone|tel[eé]fono):`),
	regexp.MustCompile(`^(email|correo):`),
	regexp.MustCompile(`^(address|direcci[oó]n):`),
	regexp.MustCompile(`^(vendor|supplier|from|de):`),
	regexp.MustCompile(`^(bill\s*to|ship\s*to|to|para):`),
	regexp.MustCompile(`^(payment|currency|moneda):`),
	regexp.MustCompile(`^(authorized|signed|signature):`),
	regexp.MustCompile(`^\+?\d{1,4}`),
	regexp.MustCompile(`^[\w.-]+@`),
	regexp.MustCompile(`^[a-z\s]{1,15}:\s*\d+$`),
}

// labelValueFragment marks very short names of the form "x: 12".
var labelValueFragment = regexp.MustCompile(`:\s*\d+`)

// numberToken matches a numeric token, possibly with thousands commas.
var numberToken = regexp.MustCompile(`[\d,]+\.?\d*`)

// maxNameLength caps product names in the output.
const maxNameLength = 100

// isMetadataLine reports whether a line is document furniture that
// must never be read as a product row.
func isMetadataLine(line string) bool {
	lower := strings.ToLower(strings.TrimSpace(line))

	for _, p := range metadataLinePatterns {
		if p.MatchString(lower) {
			return true
		}
	}

	if len(lower) < 10 && shortLabelValuePattern.MatchString(lower) {
		return true
	}
	return false
}

// isValidItemName reports whether a candidate product name is
// plausible: long enough and not itself a metadata fragment.
func isValidItemName(name string) bool {
	if len(name) < 3 {
		return false
	}

	lower := strings.ToLower(name)
	for _, p := range invalidNamePatterns {
		if p.MatchString(lower) {
			return false
		}
	}

	if len(name) < 5 && labelValueFragment.MatchString(name) {
		return false
	}
	return true
}

// parsePositiveNumber parses a numeric token, tolerating thousands
// commas. Returns false for zero, negative, or unparseable tokens.
func parsePositiveNumber(token string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.ReplaceAll(token, ",", ""), 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// round2 rounds to 2 decimal places.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// truncateName caps a product name at the output limit.
func truncateName(name string) string {
	runes := []rune(name)
	if len(runes) > maxNameLength {
		return string(runes[:maxNameLength])
	}
	return name
}
