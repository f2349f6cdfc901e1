// Command salescope runs the sale-listing pipeline end to end: scrape the
// sale page, print the high-rated products and, optionally, cross-reference
// each title against the secondary search site.
package main

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/soramame27/salescope-backend/internal/browser"
	"github.com/soramame27/salescope-backend/internal/config"
	"github.com/soramame27/salescope-backend/internal/fanza"
	"github.com/soramame27/salescope-backend/internal/missav"
)

func main() {
	saleType := flag.String("sale", "all", "sale category: all, limited, percent, daily, cheap")
	keyword := flag.String("keyword", "", "optional search keyword")
	force := flag.Bool("force", false, "bypass the cache and re-fetch")
	lookup := flag.Int("lookup", 0, "cross-reference the top N products against the search site")
	direct := flag.Bool("direct", false, "also resolve the direct media URL of each top match")
	flag.Parse()

	cfg := config.Load()
	logrus.SetLevel(cfg.LogLevel)

	session := browser.NewSession(cfg.UserAgent)
	defer session.Shutdown()

	ctx := context.Background()
	listingURL := fanza.BuildListingURL(cfg.FanzaListURL, fanza.ListingQuery{
		SaleType: *saleType,
		Keyword:  *keyword,
	})

	scraper := fanza.NewScraper(cfg, session)
	products, err := scraper.Products(ctx, listingURL, *force)
	if err != nil {
		logrus.WithError(err).Error("scrape failed")
		fmt.Println("エラーが発生しました。しばらくしてから再度お試しください。")
		return
	}

	fmt.Printf("%s — %d products", fanza.SaleTypeName(*saleType), len(products))
	if fetchedAt, ok := scraper.CachedAt(listingURL); ok {
		fmt.Printf(" (fetched %s)", fetchedAt.Format("15:04:05"))
	}
	fmt.Print("\n\n")
	for i, p := range products {
		fmt.Printf("%2d. %s\n", i+1, p.Title)
		fmt.Printf("    %s (%.1f) | %s\n", fanza.FormatRatingStars(p.Rating), p.Rating, p.Price)
		if len(p.Cast) > 0 {
			names := make([]string, len(p.Cast))
			for j, c := range p.Cast {
				names[j] = c.Name
			}
			fmt.Printf("    出演: %s\n", strings.Join(names, ", "))
		}
		fmt.Printf("    %s\n", p.DetailURL)
	}

	if *lookup <= 0 {
		return
	}
	engine := missav.NewEngine(cfg, session)
	resolver := missav.NewResolver(session, cfg.MissAVHost)
	for i := range products {
		if i >= *lookup {
			break
		}
		p := &products[i]
		videos, err := engine.Search(ctx, strings.TrimSuffix(p.Title, "..."), false)
		if err != nil {
			logrus.WithError(err).WithField("title", p.Title).Warn("secondary lookup failed")
			continue
		}
		if len(videos) == 0 {
			continue
		}
		p.SupplementaryURL = videos[0].URL
		fmt.Printf("\n%s\n  → %s (%s)\n", p.Title, videos[0].URL, videos[0].Duration)
		if *direct {
			mediaURL, err := resolver.DirectURL(ctx, videos[0].URL)
			if err != nil {
				logrus.WithError(err).Debug("no direct media URL")
				continue
			}
			fmt.Printf("  ⇒ %s\n", mediaURL)
		}
	}
}
