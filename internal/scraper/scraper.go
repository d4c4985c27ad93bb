package scraper

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pfrederiksen/course-events/internal/event"
)

// Placeholders used when a candidate's title or date cannot be resolved.
// A missing title or date never drops the candidate; only a missing href does.
const (
	PlaceholderTitle = "Untitled Event"
	PlaceholderDate  = "Date TBD"
)

// Selectors configures how candidate events are located in the page
type Selectors struct {
	RegLink string // matches registration link anchors, one candidate each
	Title   string // matched within the link's ancestor chain
	Date    string // matched within the link's ancestor chain
}

// Scraper fetches and parses a course listing page
type Scraper struct {
	client    *http.Client
	url       string
	userAgent string
	selectors Selectors
}

// New creates a new Scraper for the given listing URL
func New(targetURL, userAgent string, timeout time.Duration, selectors Selectors) *Scraper {
	return &Scraper{
		client: &http.Client{
			Timeout: timeout,
		},
		url:       targetURL,
		userAgent: userAgent,
		selectors: selectors,
	}
}

// Fetch retrieves the raw listing page. Network errors, timeouts, and
// non-2xx responses all fail the fetch; there are no retries.
func (s *Scraper) Fetch() ([]byte, error) {
	req, err := http.NewRequest("GET", s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading page body: %w", err)
	}

	return body, nil
}

// FetchEvents fetches the listing page and extracts all candidate events
func (s *Scraper) FetchEvents() ([]*event.Event, error) {
	body, err := s.Fetch()
	if err != nil {
		return nil, err
	}
	return s.Extract(body)
}

// Extract parses page HTML and returns candidate events in document order.
// The HTML is re-parsed on every call, so repeated extraction of the same
// bytes is deterministic. Candidates without an href are dropped silently;
// missing titles and dates fall back to placeholders.
func (s *Scraper) Extract(html []byte) ([]*event.Event, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	base, err := url.Parse(s.url)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}

	candidates := make([]*event.Event, 0)
	doc.Find(s.selectors.RegLink).Each(func(i int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		href = strings.TrimSpace(href)
		if !ok || href == "" {
			return
		}

		link, err := absoluteURL(base, href)
		if err != nil {
			return
		}

		title := resolveText(sel, s.selectors.Title)
		if title == "" {
			// Fall back to the link's own text before giving up
			title = strings.TrimSpace(sel.Text())
		}
		if title == "" {
			title = PlaceholderTitle
		}

		date := resolveDate(sel, s.selectors.Date)
		if date == "" {
			date = PlaceholderDate
		}

		candidates = append(candidates, event.NewEvent(title, link, date))
	})

	return candidates, nil
}

// absoluteURL resolves an href against the listing page's base URL
func absoluteURL(base *url.URL, href string) (string, error) {
	ref, err := url.Parse(href)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(ref).String(), nil
}

// resolveField walks from the matched element up its ancestor chain, closest
// first, and returns the first descendant matching the selector. The match
// may sit outside the element's own subtree as long as it shares an ancestor,
// which is how listing cards usually place the headline next to the button.
func resolveField(sel *goquery.Selection, selector string) *goquery.Selection {
	if selector == "" {
		return nil
	}
	for cur := sel; cur.Length() > 0; cur = cur.Parent() {
		if match := cur.Find(selector).First(); match.Length() > 0 {
			return match
		}
	}
	return nil
}

// resolveText returns the trimmed text of the first ancestor-chain match
func resolveText(sel *goquery.Selection, selector string) string {
	match := resolveField(sel, selector)
	if match == nil {
		return ""
	}
	return strings.TrimSpace(match.Text())
}

// resolveDate behaves like resolveText but prefers a datetime attribute,
// which time elements carry in machine-readable form
func resolveDate(sel *goquery.Selection, selector string) string {
	match := resolveField(sel, selector)
	if match == nil {
		return ""
	}
	if dt, ok := match.Attr("datetime"); ok && strings.TrimSpace(dt) != "" {
		return strings.TrimSpace(dt)
	}
	return strings.TrimSpace(match.Text())
}
