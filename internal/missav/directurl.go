package missav

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/soramame27/salescope-backend/internal/browser"
)

// ErrNoDirectURL means the result page carried no recognizable media source
// within the deadline.
var ErrNoDirectURL = errors.New("no direct media URL found")

// videoSourceSelectors match the media source element of a result page, in
// decreasing order of confidence.
var videoSourceSelectors = []string{
	"video source[src]",
	"video[src]",
	"source[src*='.mp4']",
	"source[src*='.m3u8']",
}

// Resolver loads individual result pages to pull out the direct media URL.
type Resolver struct {
	session    *browser.Session
	host       string
	navTimeout time.Duration
	settle     time.Duration
}

func NewResolver(session *browser.Session, host string) *Resolver {
	return &Resolver{
		session:    session,
		host:       host,
		navTimeout: 40 * time.Second,
		settle:     5 * time.Second,
	}
}

// DirectURL returns the first absolute media source URL found on pageURL,
// or ErrNoDirectURL when none of the known selectors match in time.
func (r *Resolver) DirectURL(ctx context.Context, pageURL string) (string, error) {
	tab, closeTab, err := r.session.NewTab()
	if err != nil {
		return "", fmt.Errorf("failed to open tab: %w", err)
	}
	defer closeTab()

	tab, cancel := context.WithTimeout(tab, r.navTimeout)
	defer cancel()
	browser.PropagateCancel(ctx, tab, cancel)

	logrus.WithField("url", pageURL).Info("resolving direct video URL")
	var src string
	err = chromedp.Run(tab,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		// The player injects its source element after the page scripts run.
		chromedp.Sleep(r.settle),
		chromedp.Evaluate(browser.FirstAttrJS(videoSourceSelectors, "src"), &src),
	)
	if err != nil {
		return "", fmt.Errorf("failed to load result page %s: %w", pageURL, err)
	}
	if src == "" {
		return "", ErrNoDirectURL
	}
	return absoluteURL(r.host, src), nil
}
