// Package cli implements the command-line interface for course-events.
//
// The cli package provides the Cobra-based CLI that drives one detection run:
// fetch the listing page, extract candidates, deduplicate against the persisted
// known-events store, persist the updated store and regenerated RSS feed, and
// post best-effort webhook notifications for new events. Output is available
// as human-readable text or JSON.
package cli
