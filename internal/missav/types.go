// Package missav cross-references product titles against the MissAV search
// listing and ranks the candidates by title relevance.
package missav

// Source labels every record produced by this package.
const Source = "MissAV"

// Video is one candidate from the search listing.
type Video struct {
	Title        string
	URL          string
	ThumbnailURL string
	Duration     string
	Source       string
}
