package fanza

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/soramame27/salescope-backend/internal/browser"
	"github.com/soramame27/salescope-backend/internal/cache"
	"github.com/soramame27/salescope-backend/internal/config"
)

// fetchFunc loads a listing URL and returns the rendered HTML.
type fetchFunc func(ctx context.Context, url string) (string, error)

// Scraper is the cache-fronted entry point of the listing pipeline.
type Scraper struct {
	cfg   config.Config
	store *cache.Store[[]Product]
	fetch fetchFunc
}

func NewScraper(cfg config.Config, session *browser.Session) *Scraper {
	return &Scraper{
		cfg:   cfg,
		store: cache.New[[]Product](),
		fetch: NewFetcher(session).ListingHTML,
	}
}

// Products returns the high-rated products of a listing page. Results are
// served from cache while fresh unless forceRefresh is set. An empty fetch
// result is returned as-is but never cached, so a transient scrape failure
// cannot replace a prior good entry.
func (s *Scraper) Products(ctx context.Context, listingURL string, forceRefresh bool) ([]Product, error) {
	key := cache.Key(listingURL)
	if !forceRefresh {
		if cached, ok := s.store.GetFresh(key, s.cfg.ListingCacheTTL); ok {
			logrus.Info("returning cached products")
			return cached, nil
		}
	}

	html, err := s.fetch(ctx, listingURL)
	if err != nil {
		// Navigation failures are not fatal: the caller sees "nothing found
		// now" and any prior good cache entry stays intact.
		logrus.WithError(err).Error("scraping error")
		return nil, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	products := ExtractProducts(doc, NewExtractor(s.cfg.FanzaHost), s.cfg.MinRating, s.cfg.MaxItems)
	if len(products) > 0 {
		s.store.Put(key, products)
	}
	logrus.WithField("count", len(products)).Info("scraped high-rated products")
	return products, nil
}

// CachedAt reports when the entry for listingURL was last stored, for
// callers that surface cache age to users.
func (s *Scraper) CachedAt(listingURL string) (time.Time, bool) {
	_, fetchedAt, ok := s.store.Get(cache.Key(listingURL))
	return fetchedAt, ok
}
