// Package scraper provides HTTP fetching and HTML parsing for course registration pages.
//
// The scraper fetches a configured listing page and extracts one candidate event per
// element matching the registration-link selector. Titles and dates are resolved by
// walking from the matched link up its ancestor chain and taking the first descendant
// matching the configured selector, so the selectors stay portable across listing
// layouts that nest the link at different depths.
package scraper
