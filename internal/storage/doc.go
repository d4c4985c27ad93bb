// Package storage provides JSON-based persistence for the known-events store.
//
// The state file maps each known event ID to its stored metadata and records
// insertion order, so a load/save cycle round-trips the store exactly. Writes
// go through a temporary file followed by a rename, so a failed run never
// leaves a half-written state file behind.
package storage
