// Package domain contains the core business entities for Orderlens.
// These types have no dependencies on infrastructure and represent
// the ubiquitous language of the application: mail documents, line
// items, totals, and the classification result.
package domain
