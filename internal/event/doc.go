// Package event provides types and functions for tracking course registration events.
//
// The event package handles event representation, identification, and deduplication
// through a persisted known-events store. Each event is assigned a canonical ID
// derived from its registration link (query and fragment stripped), enabling
// reliable tracking across scrape runs even when titles or dates are reworded.
package event
