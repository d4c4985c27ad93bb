// Package feed renders the known-events store as an RSS 2.0 document.
//
// The feed is fully regenerated on every run from the store's newest-first
// view, so it can never drift from the persisted state. Item GUIDs reuse the
// event's canonical ID and therefore stay stable across regenerations.
package feed

import (
	"encoding/xml"
	"fmt"
	"time"

	"github.com/pfrederiksen/course-events/internal/event"
)

// rfc822 is the pubDate layout RSS 2.0 readers expect
const rfc822 = "Mon, 02 Jan 2006 15:04:05 +0000"

// Meta holds the channel-level feed metadata
type Meta struct {
	Title       string
	Link        string
	Description string
}

type rssDoc struct {
	XMLName xml.Name `xml:"rss"`
	Version string   `xml:"version,attr"`
	Channel channel  `xml:"channel"`
}

type channel struct {
	Title         string `xml:"title"`
	Link          string `xml:"link"`
	Description   string `xml:"description"`
	LastBuildDate string `xml:"lastBuildDate"`
	Items         []item `xml:"item"`
}

type item struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	PubDate     string `xml:"pubDate"`
	GUID        guid   `xml:"guid"`
}

type guid struct {
	IsPermaLink string `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// Render generates the complete RSS document for the store, newest-first.
// now is used only for the channel's lastBuildDate.
func Render(store *event.Store, meta Meta, now time.Time) ([]byte, error) {
	doc := rssDoc{
		Version: "2.0",
		Channel: channel{
			Title:         meta.Title,
			Link:          meta.Link,
			Description:   meta.Description,
			LastBuildDate: now.UTC().Format(rfc822),
			Items:         make([]item, 0, store.Len()),
		},
	}

	for _, evt := range store.Sorted() {
		doc.Channel.Items = append(doc.Channel.Items, item{
			Title:       evt.Title,
			Link:        evt.Link,
			Description: fmt.Sprintf("Registration Date: %s", evt.DateText),
			PubDate:     evt.FirstSeen.UTC().Format(rfc822),
			GUID: guid{
				IsPermaLink: "true",
				Value:       evt.ID,
			},
		})
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding feed: %w", err)
	}

	return append([]byte(xml.Header), append(body, '\n')...), nil
}
