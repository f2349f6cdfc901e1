// Package staticfetch retrieves pages over plain HTTP, without a browser.
// The listing sites render their content client-side, so this is useless for
// scraping itself; the selector-drift diagnostic uses it to tell whether a
// selector disappeared from the markup or just never reaches the static
// document.
package staticfetch

import (
	"fmt"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/gocolly/colly/v2/extensions"
)

// NewCollector builds a collector with headers that pass the sites' basic
// bot checks.
func NewCollector(userAgent string) *colly.Collector {
	collector := colly.NewCollector()
	collector.UserAgent = userAgent
	collector.SetRequestTimeout(10 * time.Second)

	// Humans do not fire requests back to back.
	collector.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		RandomDelay: 2 * time.Second,
	})
	extensions.Referer(collector)

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("Accept-Language", "ja,en-US;q=0.9,en;q=0.8")
		r.Headers.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
		r.Headers.Set("Upgrade-Insecure-Requests", "1")
	})
	return collector
}

// HTML fetches a URL and returns the raw document markup.
func HTML(url, userAgent string) (string, error) {
	var body string
	var fetchErr error

	collector := NewCollector(userAgent)
	collector.OnHTML("html", func(e *colly.HTMLElement) {
		body, _ = e.DOM.Html()
	})
	collector.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("request to %s failed with status %d: %w", url, r.StatusCode, err)
	})
	// Visit fails without firing OnError when the URL is refused outright,
	// e.g. malformed or already visited.
	if err := collector.Visit(url); err != nil && fetchErr == nil {
		fetchErr = fmt.Errorf("visit to %s failed: %w", url, err)
	}

	if fetchErr != nil {
		return "", fetchErr
	}
	return body, nil
}
