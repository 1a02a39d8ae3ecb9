// Package google provides shared infrastructure for Google API
// connectors: service construction, token source adaptation, rate
// limiting, and error classification.
package google
