package event

import (
	"net/url"
	"time"
)

// Event represents a single course registration opportunity
type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	DateText  string    `json:"date_text"`
	FirstSeen time.Time `json:"first_seen"`
}

// CanonicalID derives the stable identifier for a registration link.
// Query string and fragment are stripped so tracking parameters do not
// produce duplicate events for the same registration page. If the link
// cannot be parsed it is returned unchanged.
func CanonicalID(link string) string {
	u, err := url.Parse(link)
	if err != nil {
		return link
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// NewEvent creates a new Event with its ID derived from the link.
// FirstSeen is left zero; the store stamps it when the event is first merged.
func NewEvent(title, link, dateText string) *Event {
	return &Event{
		ID:       CanonicalID(link),
		Title:    title,
		Link:     link,
		DateText: dateText,
	}
}
