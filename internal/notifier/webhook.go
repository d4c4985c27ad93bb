package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pfrederiksen/course-events/internal/event"
	"github.com/pfrederiksen/course-events/internal/logger"
)

// Payload is the JSON body POSTed to the webhook for each new event
type Payload struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Date      string `json:"date"`
	Timestamp string `json:"timestamp"`
}

// WebhookNotifier POSTs new events to a configured HTTP endpoint
type WebhookNotifier struct {
	url    string
	client *http.Client
	now    func() time.Time
}

// NewWebhookNotifier creates a webhook notifier for the given endpoint URL
func NewWebhookNotifier(url string, timeout time.Duration) (*WebhookNotifier, error) {
	if url == "" {
		return nil, fmt.Errorf("webhook URL is required")
	}
	return &WebhookNotifier{
		url: url,
		client: &http.Client{
			Timeout: timeout,
		},
		now: time.Now,
	}, nil
}

// Notify POSTs one payload per event, in order. A failed delivery is logged
// and the remaining events are still attempted; the error return is always
// nil so callers never abort persistence on notification trouble.
func (n *WebhookNotifier) Notify(events []*event.Event) error {
	for _, evt := range events {
		if err := n.post(evt); err != nil {
			logger.Warn("webhook delivery failed", logger.Fields{
				"event_id": evt.ID,
				"title":    evt.Title,
				"error":    err.Error(),
			})
			continue
		}
		logger.Info("posted to webhook", logger.Fields{
			"event_id": evt.ID,
			"title":    evt.Title,
		})
	}
	return nil
}

func (n *WebhookNotifier) post(evt *event.Event) error {
	payload := Payload{
		Title:     evt.Title,
		Link:      evt.Link,
		Date:      evt.DateText,
		Timestamp: n.now().UTC().Format(time.RFC3339),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	req, err := http.NewRequest("POST", n.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook rejected payload: status %d", resp.StatusCode)
	}

	return nil
}
