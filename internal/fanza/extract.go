package fanza

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// The listing markup is unstable and undocumented, so every field is read
// through a prioritized chain of selectors. Later entries are lower
// confidence and only tried when everything before them came up empty.

// strategy reads one candidate value out of a listing element.
type strategy func(*goquery.Selection) string

// firstNonEmpty applies strategies in order and returns the first non-empty
// trimmed value.
func firstNonEmpty(sel *goquery.Selection, strategies ...strategy) string {
	for _, s := range strategies {
		if v := strings.TrimSpace(s(sel)); v != "" {
			return v
		}
	}
	return ""
}

func childText(selector string) strategy {
	return func(sel *goquery.Selection) string {
		return sel.Find(selector).First().Text()
	}
}

func childAttr(selector, name string) strategy {
	return func(sel *goquery.Selection) string {
		v, _ := sel.Find(selector).First().Attr(name)
		return v
	}
}

var titleStrategies = []strategy{
	childAttr("a[href*='/detail/'] img[alt]", "alt"),
	childText("a[data-e2eid='title']"),
	childText("a[href*='/detail/']"),
	childAttr("a[title]", "title"),
	childText("span.hover\\:underline"),
}

var detailURLStrategies = []strategy{
	childAttr("a[data-e2eid='title']", "href"),
	childAttr("a[href*='/detail/']", "href"),
}

// filledStarSelectors match the "filled star" icons of the rating widget.
// Counting stops at the first selector that matches anything, so a redesign
// that renders both icon sets cannot double-count.
var filledStarSelectors = []string{
	"img[src*='star/yellow']",
	"img[src*='rating/star']",
	"span[data-e2eid*='rating-star-on']",
}

// ratingTextSelectors locate free text a numeric rating can be parsed from
// when no star icons are present.
var ratingTextSelectors = []string{
	"[data-e2eid*='rating']",
	"[class*='review']",
	"[class*='rating']",
}

var numberPattern = regexp.MustCompile(`[\d.]+`)

var imageStrategies = []strategy{
	childAttr("img[data-e2eid='content-image']", "src"),
	childAttr("img[src*='pics.dmm.co.jp']", "src"),
	childAttr("img[src*='dmm.com']", "src"),
	childAttr("img[alt*='パッケージ']", "src"),
	childAttr("div[data-e2eid='content-image'] img", "src"),
	childAttr("picture img", "src"),
	childAttr("img[loading='lazy']", "src"),
}

var castSelectors = []string{
	"a[data-e2eid='content-actress']",
	"a[href*='/actress/']",
	"a[href*='actress=']",
}

// castStoplist holds anchor texts that share the cast markup but are UI
// labels, not performer names.
var castStoplist = map[string]struct{}{
	"もっと見る":  {},
	"すべて見る": {},
	"一覧":     {},
	"他":      {},
}

const maxCastMembers = 3

// Extractor turns one listing-entry element into a Product.
type Extractor struct {
	host string
}

func NewExtractor(host string) *Extractor {
	return &Extractor{host: host}
}

// Extract reads a Product from one listing element. An element with no
// discoverable title is not a product; it is reported via ok=false and
// skipped without logging.
func (e *Extractor) Extract(sel *goquery.Selection) (Product, bool) {
	title := firstNonEmpty(sel, titleStrategies...)
	if title == "" {
		return Product{}, false
	}

	return Product{
		Title:     truncateTitle(title),
		Rating:    e.rating(sel),
		Price:     e.price(sel),
		DetailURL: absoluteURL(e.host, firstNonEmpty(sel, detailURLStrategies...)),
		ImageURL:  e.imageURL(sel),
		Discount:  e.discount(sel),
		Cast:      e.cast(sel),
	}, true
}

func (e *Extractor) rating(sel *goquery.Selection) float64 {
	for _, selector := range filledStarSelectors {
		if n := sel.Find(selector).Length(); n > 0 {
			return clampRating(float64(n))
		}
	}
	// No star icons at all: parse a number out of rating/review text.
	for _, selector := range ratingTextSelectors {
		text := sel.Find(selector).First().Text()
		if m := numberPattern.FindString(text); m != "" {
			if v, err := strconv.ParseFloat(m, 64); err == nil {
				return clampRating(v)
			}
		}
	}
	return 0
}

func clampRating(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 5 {
		return 5
	}
	return v
}

func (e *Extractor) price(sel *goquery.Selection) string {
	text := strings.TrimSpace(sel.Find("[data-e2eid='content-price']").First().Text())
	if strings.Contains(text, "円") {
		return text
	}
	return priceUnknown
}

func (e *Extractor) discount(sel *goquery.Selection) string {
	found := false
	sel.Find("div").EachWithBreak(func(_ int, div *goquery.Selection) bool {
		if strings.Contains(div.Text(), "セール") {
			found = true
			return false
		}
		return true
	})
	if found {
		return "セール中"
	}
	return ""
}

func (e *Extractor) imageURL(sel *goquery.Selection) string {
	for _, s := range imageStrategies {
		src := strings.TrimSpace(s(sel))
		if src == "" {
			continue
		}
		// Only URLs on the known image hosts are trusted; anything else is
		// discarded rather than passed through.
		if !strings.Contains(src, "dmm") && !strings.Contains(src, "pics") {
			continue
		}
		// Low-resolution package shots have a high-resolution counterpart
		// under a fixed naming convention.
		return strings.Replace(src, "ps.jpg", "pl.jpg", 1)
	}
	return ""
}

func (e *Extractor) cast(sel *goquery.Selection) []CastMember {
	var anchors *goquery.Selection
	for _, selector := range castSelectors {
		if found := sel.Find(selector); found.Length() > 0 {
			anchors = found
			break
		}
	}
	if anchors == nil {
		return nil
	}

	var cast []CastMember
	seen := map[string]struct{}{}
	anchors.EachWithBreak(func(_ int, a *goquery.Selection) bool {
		name := strings.TrimSpace(a.Text())
		if name == "" {
			return true
		}
		if _, stop := castStoplist[name]; stop {
			return true
		}
		if _, dup := seen[name]; dup {
			return true
		}
		seen[name] = struct{}{}
		href, _ := a.Attr("href")
		cast = append(cast, CastMember{Name: name, ProfileURL: absoluteURL(e.host, href)})
		return len(cast) < maxCastMembers
	})
	return cast
}

// absoluteURL rewrites a relative href against the canonical host.
func absoluteURL(host, href string) string {
	switch {
	case href == "":
		return ""
	case strings.HasPrefix(href, "http"):
		return href
	case strings.HasPrefix(href, "//"):
		return "https:" + href
	case strings.HasPrefix(href, "/"):
		return host + href
	default:
		return host + "/" + href
	}
}
