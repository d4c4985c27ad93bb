package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/pfrederiksen/course-events/internal/event"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// OutputResult contains data to be output after a run
type OutputResult struct {
	CheckedAt  time.Time      `json:"checked_at"`
	NewEvents  []*event.Event `json:"new_events"`
	NewCount   int            `json:"new_count"`
	TotalKnown int            `json:"total_known"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func writeText(w io.Writer, result *OutputResult) error {
	if result.NewCount == 0 {
		fmt.Fprintln(w, "No new events found.")
		fmt.Fprintf(w, "Total known events: %d\n", result.TotalKnown)
		return nil
	}

	fmt.Fprintf(w, "Found %d new event(s):\n", result.NewCount)
	for _, evt := range result.NewEvents {
		fmt.Fprintf(w, "\n  NEW: %s\n", evt.Title)
		fmt.Fprintf(w, "       Date: %s\n", evt.DateText)
		fmt.Fprintf(w, "       Link: %s\n", evt.Link)
		fmt.Fprintf(w, "       ID:   %s\n", evt.ID)
	}
	fmt.Fprintf(w, "\nTotal known events: %d\n", result.TotalKnown)

	return nil
}
