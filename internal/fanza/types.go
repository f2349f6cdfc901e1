// Package fanza scrapes the FANZA sale listing for high-rated products.
package fanza

import "strings"

// maxTitleRunes bounds the display length of a product title.
const maxTitleRunes = 50

// CastMember is one performer credited on a product.
type CastMember struct {
	Name       string
	ProfileURL string
}

// Product is one scraped listing entry. Fields are fixed at extraction time;
// the only post-extraction mutation callers perform is attaching
// SupplementaryURL.
type Product struct {
	Title     string
	Rating    float64
	Price     string
	DetailURL string
	ImageURL  string
	Discount  string
	Cast      []CastMember

	// SupplementaryURL is filled in by callers that cross-reference the
	// title against the secondary search site.
	SupplementaryURL string
}

// priceUnknown is the sentinel shown when no price could be read.
const priceUnknown = "価格不明"

// truncateTitle bounds a title to the display length, marking the cut with
// an ellipsis.
func truncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= maxTitleRunes {
		return title
	}
	return string(runes[:maxTitleRunes]) + "..."
}

// FormatRatingStars renders a rating as star markers, e.g. 4.5 -> "★★★★☆".
func FormatRatingStars(rating float64) string {
	full := int(rating)
	if full > 5 {
		full = 5
	}
	half := 0
	if rating-float64(full) >= 0.5 {
		half = 1
	}
	empty := 5 - full - half
	if empty < 0 {
		empty = 0
	}
	return strings.Repeat("★", full) + strings.Repeat("☆", half) + strings.Repeat("☆", empty)
}
