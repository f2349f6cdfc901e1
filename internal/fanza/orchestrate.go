package fanza

import (
	"slices"
	"sort"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// containerSelectors locate listing-entry elements. The first selector that
// matches anything wins; results from different selectors are never merged,
// since the later ones are broader and would duplicate the earlier hits.
var containerSelectors = []string{
	"[data-e2eid='content-card']",
	"li[class*='border border-gray-300']",
	"div[data-e2eid='content-card']",
	"li:has(div[data-e2eid='content-card'])",
}

const (
	// maxElements bounds how many raw listing elements a single page is
	// allowed to cost us.
	maxElements = 100
	// extractConcurrency bounds how many extractions run at once.
	extractConcurrency = 10
)

// ContainerSelectors exposes the listing-entry selector chain for the
// selector-drift diagnostic.
func ContainerSelectors() []string {
	return slices.Clone(containerSelectors)
}

// ExtractProducts pulls every qualifying product out of a rendered listing
// page. Results are filtered by the rating threshold, sorted by rating
// descending with the original page order preserved among equals, and
// truncated to maxItems. A page with nothing usable yields an empty slice,
// never an error.
func ExtractProducts(doc *goquery.Document, extractor *Extractor, minRating float64, maxItems int) []Product {
	elements := findListingElements(doc)
	if len(elements) == 0 {
		logrus.Warn("no product elements found")
		return nil
	}

	// Fan out extraction, keeping each result at its element's index so the
	// final ordering never depends on completion order.
	results := make([]*Product, len(elements))
	var group errgroup.Group
	group.SetLimit(extractConcurrency)
	for i, el := range elements {
		group.Go(func() error {
			defer func() {
				// A malformed fragment only costs us that one element.
				if r := recover(); r != nil {
					logrus.WithField("panic", r).Error("error parsing product element")
				}
			}()
			if product, ok := extractor.Extract(el); ok {
				results[i] = &product
			}
			return nil
		})
	}
	// Workers never return errors; panics are recovered above.
	_ = group.Wait()

	products := make([]Product, 0, len(elements))
	for _, p := range results {
		if p == nil || p.Rating < minRating {
			continue
		}
		products = append(products, *p)
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Rating > products[j].Rating
	})
	if maxItems > 0 && len(products) > maxItems {
		products = products[:maxItems]
	}
	return products
}

func findListingElements(doc *goquery.Document) []*goquery.Selection {
	for _, selector := range containerSelectors {
		found := doc.Find(selector)
		if found.Length() == 0 {
			continue
		}
		logrus.WithFields(logrus.Fields{
			"selector": selector,
			"count":    found.Length(),
		}).Info("found product elements")

		var elements []*goquery.Selection
		found.EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			elements = append(elements, sel)
			return len(elements) < maxElements
		})
		return elements
	}
	return nil
}
