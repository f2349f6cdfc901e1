// Command checkselectors reports how many elements each listing-entry
// selector currently matches on the live sale page, both in the rendered DOM
// and in the static document. When the scraper starts returning nothing,
// this is the fastest way to tell whether the markup drifted or the page
// just stopped rendering for us.
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/soramame27/salescope-backend/internal/browser"
	"github.com/soramame27/salescope-backend/internal/config"
	"github.com/soramame27/salescope-backend/internal/fanza"
	"github.com/soramame27/salescope-backend/internal/staticfetch"
)

func main() {
	saleType := flag.String("sale", "all", "sale category to probe")
	flag.Parse()

	cfg := config.Load()
	logrus.SetLevel(cfg.LogLevel)
	listingURL := fanza.BuildListingURL(cfg.FanzaListURL, fanza.ListingQuery{SaleType: *saleType})

	session := browser.NewSession(cfg.UserAgent)
	defer session.Shutdown()

	rendered, err := fanza.NewFetcher(session).ListingHTML(context.Background(), listingURL)
	if err != nil {
		logrus.WithError(err).Fatal("rendered fetch failed")
	}
	static, err := staticfetch.HTML(listingURL, cfg.UserAgent)
	if err != nil {
		logrus.WithError(err).Warn("static fetch failed, reporting rendered counts only")
	}

	fmt.Printf("selector hit counts for %s\n\n", listingURL)
	fmt.Printf("%-55s %9s %8s\n", "selector", "rendered", "static")
	for _, selector := range fanza.ContainerSelectors() {
		fmt.Printf("%-55s %9d %8d\n", selector,
			countMatches(rendered, selector),
			countMatches(static, selector))
	}
}

func countMatches(html, selector string) int {
	if html == "" {
		return 0
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0
	}
	return doc.Find(selector).Length()
}
