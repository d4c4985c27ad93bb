// Package notifier provides best-effort delivery of new-event notifications.
//
// The webhook notifier POSTs one JSON payload per new event to a configured
// endpoint. Delivery is decoupled from the authoritative dedup state: a failed
// POST is logged and the remaining events are still attempted, and the run's
// persistence is never blocked on notification outcomes.
package notifier
