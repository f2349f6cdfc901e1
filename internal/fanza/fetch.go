package fanza

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/soramame27/salescope-backend/internal/browser"
)

// The age-verification interstitial is dismissed by clicking the affirmative
// consent link. It only exists on the first navigation of a browsing
// context; its absence is the normal case afterwards.
const ageGateJS = `(() => {
	const link = Array.from(document.querySelectorAll('a'))
		.find(a => a.textContent.trim() === 'はい');
	if (link) { link.click(); return true; }
	return false;
})()`

// Fetcher loads listing pages through the shared browser session. Each fetch
// opens exactly one tab and closes it on every exit path.
type Fetcher struct {
	session       *browser.Session
	navTimeout    time.Duration
	markerTimeout time.Duration
}

func NewFetcher(session *browser.Session) *Fetcher {
	return &Fetcher{
		session:       session,
		navTimeout:    30 * time.Second,
		markerTimeout: 10 * time.Second,
	}
}

// ListingHTML navigates to url and returns the rendered page HTML. It waits
// for the DOM to be parsed rather than for network idle, dismisses the age
// gate if present, then waits a bounded time for a listing-entry marker to
// appear. A marker timeout is non-fatal: the caller simply finds no
// elements in the returned HTML.
func (f *Fetcher) ListingHTML(ctx context.Context, url string) (string, error) {
	tab, closeTab, err := f.session.NewTab()
	if err != nil {
		return "", fmt.Errorf("failed to open tab: %w", err)
	}
	defer closeTab()

	tab, cancel := context.WithTimeout(tab, f.navTimeout)
	defer cancel()
	browser.PropagateCancel(ctx, tab, cancel)

	logrus.WithField("url", url).Info("accessing listing page")
	if err := chromedp.Run(tab,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	f.dismissAgeGate(tab)
	f.waitForListing(tab)

	var html string
	if err := chromedp.Run(tab, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read page HTML from %s: %w", url, err)
	}
	return html, nil
}

func (f *Fetcher) dismissAgeGate(tab context.Context) {
	var clicked bool
	if err := chromedp.Run(tab, chromedp.Evaluate(ageGateJS, &clicked)); err != nil {
		logrus.WithError(err).Debug("age gate probe failed")
		return
	}
	if clicked {
		logrus.Info("age verification completed")
		// Give the post-consent navigation a moment to settle.
		_ = chromedp.Run(tab, chromedp.Sleep(time.Second))
	}
}

// waitForListing polls until at least one listing-entry marker exists, or
// the marker timeout elapses. Timing out degrades to "no elements found".
func (f *Fetcher) waitForListing(tab context.Context) {
	js := browser.AnySelectorJS(containerSelectors)
	deadline := time.Now().Add(f.markerTimeout)
	for time.Now().Before(deadline) {
		var found bool
		if err := chromedp.Run(tab, chromedp.Evaluate(js, &found)); err != nil {
			logrus.WithError(err).Debug("listing marker probe failed")
			return
		}
		if found {
			return
		}
		select {
		case <-tab.Done():
			return
		case <-time.After(250 * time.Millisecond):
		}
	}
	logrus.Warn("timed out waiting for listing elements")
}
