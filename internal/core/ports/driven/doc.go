// Package driven defines the outbound ports of the application core.
// Adapters (connectors, normalisers, stores, labellers) implement these
// interfaces; the core services depend only on the interfaces.
package driven
