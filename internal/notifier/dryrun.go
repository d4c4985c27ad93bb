package notifier

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/pfrederiksen/course-events/internal/event"
)

// DryRunNotifier prints the payloads that would be POSTed without sending them
type DryRunNotifier struct{}

// NewDryRunNotifier creates a new dry-run notifier
func NewDryRunNotifier() *DryRunNotifier {
	return &DryRunNotifier{}
}

// Notify prints one payload per event
func (n *DryRunNotifier) Notify(events []*event.Event) error {
	for i, evt := range events {
		payload := Payload{
			Title:     evt.Title,
			Link:      evt.Link,
			Date:      evt.DateText,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}
		body, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling payload: %w", err)
		}
		fmt.Printf("--- Payload %d/%d ---\n%s\n\n", i+1, len(events), body)
	}
	return nil
}
