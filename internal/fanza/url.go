package fanza

import (
	"net/url"
	"strings"
)

// SortReviewRank orders listing results by review score, the default for
// every sale query.
const SortReviewRank = "review_rank"

// SaleType names a group of sale campaign keys on the listing site.
type SaleType struct {
	Name string
	Keys []string
}

// saleTypes maps the user-facing sale categories to the campaign keys the
// listing site filters on.
var saleTypes = map[string]SaleType{
	"all": {
		Name: "🎯 全てのセール",
		Keys: []string{"期間限定セール", "20％OFF", "30％OFF", "50％OFF", "70％OFF", "日替わりセール", "10円セール", "100円セール"},
	},
	"limited": {
		Name: "⏰ 期間限定セール",
		Keys: []string{"期間限定セール"},
	},
	"percent": {
		Name: "💸 割引セール (20-70% OFF)",
		Keys: []string{"20％OFF", "30％OFF", "50％OFF", "70％OFF"},
	},
	"daily": {
		Name: "📅 日替わりセール",
		Keys: []string{"日替わりセール"},
	},
	"cheap": {
		Name: "💴 激安セール (10円/100円)",
		Keys: []string{"10円セール", "100円セール"},
	},
}

// SaleTypeName returns the display name for a sale category, falling back to
// the "all" category for unknown input.
func SaleTypeName(saleType string) string {
	if st, ok := saleTypes[saleType]; ok {
		return st.Name
	}
	return saleTypes["all"].Name
}

// ListingQuery describes the user-chosen filters a listing URL is built from.
type ListingQuery struct {
	SaleType string
	Sort     string
	Keyword  string
}

// BuildListingURL constructs the full sale listing URL for a query. It is a
// pure helper; the scraper itself treats the result as an opaque cache key.
func BuildListingURL(base string, q ListingQuery) string {
	st, ok := saleTypes[q.SaleType]
	if !ok {
		st = saleTypes["all"]
	}
	sort := q.Sort
	if sort == "" {
		sort = SortReviewRank
	}

	values := url.Values{}
	values.Set("key", strings.Join(st.Keys, "|"))
	values.Set("sort", sort)
	if q.Keyword != "" {
		values.Set("searchstr", q.Keyword)
	}
	return base + "?" + values.Encode()
}
