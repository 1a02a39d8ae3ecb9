// Package services implements the application core: document
// classification, product-table extraction, totals extraction, and the
// sync orchestration that feeds them. Services depend only on the
// domain types and the port interfaces.
package services
