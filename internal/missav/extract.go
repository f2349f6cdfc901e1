package missav

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Search-result markup shifts between site revisions; every field goes
// through a prioritized selector chain, same as the listing extractor.

// videoContainerSelectors locate the result cards on a search page. The
// first selector with matches wins.
var videoContainerSelectors = []string{
	"div.grid.grid-cols-2 > div",
	"div[class*='grid'] > div",
	".thumbnail.group",
	"div.thumbnail",
}

// maxCandidates bounds how many result cards are considered per search.
const maxCandidates = 20

// extractVideo reads one search-result card. A card with no discoverable
// title is not a result and is skipped silently.
func extractVideo(sel *goquery.Selection, host string) (Video, bool) {
	title := videoTitle(sel)
	if title == "" {
		return Video{}, false
	}
	return Video{
		Title:        title,
		URL:          videoURL(sel, host),
		ThumbnailURL: thumbnailURL(sel, host),
		Duration:     duration(sel),
		Source:       Source,
	}, true
}

func videoTitle(sel *goquery.Selection) string {
	// The current markup carries the title on a dedicated anchor class.
	if title := strings.TrimSpace(sel.Find("a.text-secondary").First().Text()); title != "" {
		return title
	}
	// Fall back to label attributes, then plain anchor text.
	for _, selector := range []string{"a[alt]", "img[alt]", "a[title]", "a"} {
		el := sel.Find(selector).First()
		if el.Length() == 0 {
			continue
		}
		for _, attr := range []string{"alt", "title"} {
			if v, ok := el.Attr(attr); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
		if text := strings.TrimSpace(el.Text()); text != "" {
			return text
		}
	}
	return ""
}

func videoURL(sel *goquery.Selection, host string) string {
	href, _ := sel.Find("a[href*='/']").First().Attr("href")
	if href == "" {
		return ""
	}
	return absoluteURL(host, href)
}

// imageExtensions gates thumbnail URLs to actual image assets.
var imageExtensions = []string{"jpg", "png", "webp"}

func thumbnailURL(sel *goquery.Selection, host string) string {
	for _, attr := range []string{"src", "data-src"} {
		src, _ := sel.Find("img[" + attr + "]").First().Attr(attr)
		if src == "" || !hasImageExtension(src) {
			continue
		}
		// Unlike video hrefs, a bare-relative thumbnail source is not
		// trusted; only scheme-relative, host-relative and absolute
		// shapes are accepted.
		switch {
		case strings.HasPrefix(src, "//"):
			return "https:" + src
		case strings.HasPrefix(src, "http"):
			return src
		case strings.HasPrefix(src, "/"):
			return host + src
		}
	}
	return ""
}

func hasImageExtension(src string) bool {
	for _, ext := range imageExtensions {
		if strings.Contains(src, ext) {
			return true
		}
	}
	return false
}

func duration(sel *goquery.Selection) string {
	text := strings.TrimSpace(sel.Find("span.absolute.bottom-1.right-1").First().Text())
	if strings.Contains(text, ":") {
		return text
	}
	return ""
}

func absoluteURL(host, ref string) string {
	switch {
	case ref == "":
		return ""
	case strings.HasPrefix(ref, "//"):
		return "https:" + ref
	case strings.HasPrefix(ref, "http"):
		return ref
	case strings.HasPrefix(ref, "/"):
		return host + ref
	default:
		return host + "/" + ref
	}
}
