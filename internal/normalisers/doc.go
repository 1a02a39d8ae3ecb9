// Package normalisers provides implementations of the Normaliser
// interface for the document formats the connectors produce. Each
// normaliser extracts subject, body and attachment text from a
// specific MIME type.
//
// Normalisers are registered with the Registry at startup.
package normalisers
