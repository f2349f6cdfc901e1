package missav

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/soramame27/salescope-backend/internal/browser"
)

// fetcher loads search and result pages through the shared browser session.
// One tab per fetch, closed on every exit path.
type fetcher struct {
	session       *browser.Session
	navTimeout    time.Duration
	markerTimeout time.Duration
}

func newFetcher(session *browser.Session) *fetcher {
	return &fetcher{
		session:       session,
		navTimeout:    30 * time.Second,
		markerTimeout: 8 * time.Second,
	}
}

func (f *fetcher) searchHTML(ctx context.Context, url string) (string, error) {
	tab, closeTab, err := f.session.NewTab()
	if err != nil {
		return "", fmt.Errorf("failed to open tab: %w", err)
	}
	defer closeTab()

	tab, cancel := context.WithTimeout(tab, f.navTimeout)
	defer cancel()
	browser.PropagateCancel(ctx, tab, cancel)

	if err := chromedp.Run(tab,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return "", fmt.Errorf("failed to navigate to %s: %w", url, err)
	}

	f.waitForResults(tab)

	var html string
	if err := chromedp.Run(tab, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("failed to read page HTML from %s: %w", url, err)
	}
	return html, nil
}

// waitForResults polls for a result card until the marker timeout elapses.
// Timing out is non-fatal; the search then simply finds nothing.
func (f *fetcher) waitForResults(tab context.Context) {
	js := browser.AnySelectorJS(videoContainerSelectors)
	deadline := time.Now().Add(f.markerTimeout)
	for time.Now().Before(deadline) {
		var found bool
		if err := chromedp.Run(tab, chromedp.Evaluate(js, &found)); err != nil {
			logrus.WithError(err).Debug("result marker probe failed")
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
	logrus.Warn("timed out waiting for search results")
}
