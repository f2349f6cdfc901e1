package missav

import (
	"context"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/soramame27/salescope-backend/internal/browser"
	"github.com/soramame27/salescope-backend/internal/cache"
	"github.com/soramame27/salescope-backend/internal/config"
)

type fetchFunc func(ctx context.Context, url string) (string, error)

// Engine performs title searches against the secondary site with its own
// independent cache. The freshness window defaults to zero, so every lookup
// re-fetches unless configured otherwise.
type Engine struct {
	host  string
	ttl   time.Duration
	store *cache.Store[[]Video]
	fetch fetchFunc
}

func NewEngine(cfg config.Config, session *browser.Session) *Engine {
	return &Engine{
		host:  cfg.MissAVHost,
		ttl:   cfg.SearchCacheTTL,
		store: cache.New[[]Video](),
		fetch: newFetcher(session).searchHTML,
	}
}

// SearchURL builds the search-page URL for a title. Slashes inside the
// title stay literal; the site treats them as path structure, not data.
func (e *Engine) SearchURL(title string) string {
	escaped := strings.ReplaceAll(url.PathEscape(title), "%2F", "/")
	return e.host + "/ja/search/" + escaped
}

// Search returns candidates for a title, ranked by relevance descending.
// Irrelevant candidates are filtered before ranking; an empty outcome is
// returned but never cached.
func (e *Engine) Search(ctx context.Context, title string, forceRefresh bool) ([]Video, error) {
	key := "search_" + strings.ToLower(title)
	if !forceRefresh {
		if cached, ok := e.store.GetFresh(key, e.ttl); ok {
			logrus.WithField("title", title).Info("returning cached search results")
			return cached, nil
		}
	}

	searchURL := e.SearchURL(title)
	logrus.WithFields(logrus.Fields{"title": title, "url": searchURL}).Info("searching videos")
	html, err := e.fetch(ctx, searchURL)
	if err != nil {
		// Degrade to an empty, uncached result; a failed search page load
		// must not take the caller down with it.
		logrus.WithError(err).Error("search scraping error")
		return nil, nil
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	videos := e.extractSearchResults(doc, title)
	if len(videos) > 0 {
		e.store.Put(key, videos)
	}
	logrus.WithField("count", len(videos)).Info("found relevant videos")
	return videos, nil
}

func (e *Engine) extractSearchResults(doc *goquery.Document, searchTitle string) []Video {
	elements := findVideoElements(doc)
	if len(elements) == 0 {
		logrus.Warn("no video elements found")
		return nil
	}

	videos := make([]Video, 0, len(elements))
	for _, sel := range elements {
		video, ok := extractVideo(sel, e.host)
		if !ok {
			continue
		}
		if !IsRelevant(video.Title, searchTitle) {
			continue
		}
		videos = append(videos, video)
	}

	sort.SliceStable(videos, func(i, j int) bool {
		return Relevance(videos[i].Title, searchTitle) > Relevance(videos[j].Title, searchTitle)
	})
	return videos
}

func findVideoElements(doc *goquery.Document) []*goquery.Selection {
	for _, selector := range videoContainerSelectors {
		found := doc.Find(selector)
		if found.Length() == 0 {
			continue
		}
		logrus.WithFields(logrus.Fields{
			"selector": selector,
			"count":    found.Length(),
		}).Info("found video elements")

		var elements []*goquery.Selection
		found.EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			elements = append(elements, sel)
			return len(elements) < maxCandidates
		})
		return elements
	}
	return nil
}
