package missav

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"

	"github.com/soramame27/salescope-backend/internal/cache"
)

const testHost = "https://missav123.com"

func fixtureSearchPage(titles ...string) string {
	var b strings.Builder
	b.WriteString(`<html><body><div class="grid grid-cols-2">`)
	for i, title := range titles {
		fmt.Fprintf(&b, `<div>
	<a href="/ja/video-%d"><img src="/thumbs/%d.webp"></a>
	<a class="text-secondary" href="/ja/video-%d">%s</a>
	<span class="absolute bottom-1 right-1">12:3%d</span>
</div>`, i, i, i, title, i)
	}
	b.WriteString(`</div></body></html>`)
	return b.String()
}

type stubFetch struct {
	html  string
	err   error
	calls int
}

func (s *stubFetch) fetch(context.Context, string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.html, nil
}

func newTestEngine(stub *stubFetch, ttl time.Duration) *Engine {
	return &Engine{
		host:  testHost,
		ttl:   ttl,
		store: cache.New[[]Video](),
		fetch: stub.fetch,
	}
}

func resultTitles(videos []Video) []string {
	out := make([]string, len(videos))
	for i, v := range videos {
		out[i] = v.Title
	}
	return out
}

func TestSearch(t *testing.T) {
	t.Run("filters irrelevant and ranks by score", func(t *testing.T) {
		stub := &stubFetch{html: fixtureSearchPage(
			"Alpha Beta Gamma", // substring, 0.8
			"Zeta Omega",       // irrelevant, dropped
			"Alpha Beta",       // exact, 1.0
		)}
		engine := newTestEngine(stub, 0)
		got, err := engine.Search(context.Background(), "Alpha Beta", false)
		if err != nil {
			t.Fatal(err)
		}
		want := []string{"Alpha Beta", "Alpha Beta Gamma"}
		if diff := cmp.Diff(want, resultTitles(got)); diff != "" {
			t.Errorf("ranking mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("records carry absolute URLs and metadata", func(t *testing.T) {
		stub := &stubFetch{html: fixtureSearchPage("Alpha Beta")}
		engine := newTestEngine(stub, 0)
		got, err := engine.Search(context.Background(), "Alpha Beta", false)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 1 {
			t.Fatalf("got %d videos, want 1", len(got))
		}
		want := Video{
			Title:        "Alpha Beta",
			URL:          testHost + "/ja/video-0",
			ThumbnailURL: testHost + "/thumbs/0.webp",
			Duration:     "12:30",
			Source:       Source,
		}
		if diff := cmp.Diff(want, got[0]); diff != "" {
			t.Errorf("video mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("zero freshness window always re-fetches", func(t *testing.T) {
		stub := &stubFetch{html: fixtureSearchPage("Alpha Beta")}
		engine := newTestEngine(stub, 0)
		_, _ = engine.Search(context.Background(), "Alpha Beta", false)
		_, _ = engine.Search(context.Background(), "Alpha Beta", false)
		if stub.calls != 2 {
			t.Errorf("fetch calls = %d, want 2", stub.calls)
		}
	})

	t.Run("positive window caches per lowercased title", func(t *testing.T) {
		stub := &stubFetch{html: fixtureSearchPage("Alpha Beta")}
		engine := newTestEngine(stub, time.Hour)
		_, _ = engine.Search(context.Background(), "Alpha Beta", false)
		_, _ = engine.Search(context.Background(), "ALPHA BETA", false)
		if stub.calls != 1 {
			t.Errorf("fetch calls = %d, want 1 (case-insensitive key)", stub.calls)
		}
		_, _ = engine.Search(context.Background(), "Alpha Beta", true)
		if stub.calls != 2 {
			t.Errorf("fetch calls = %d, want 2 after force refresh", stub.calls)
		}
	})

	t.Run("navigation failure degrades to empty result", func(t *testing.T) {
		stub := &stubFetch{err: errors.New("net::ERR_NAME_NOT_RESOLVED")}
		engine := newTestEngine(stub, time.Hour)
		got, err := engine.Search(context.Background(), "Alpha Beta", false)
		if err != nil {
			t.Fatalf("navigation failure must not propagate as error, got %v", err)
		}
		if len(got) != 0 {
			t.Errorf("got %d videos, want none", len(got))
		}
		if _, _, ok := engine.store.Get("search_alpha beta"); ok {
			t.Error("failed search must not be cached")
		}
	})

	t.Run("no results yields empty slice, nothing cached", func(t *testing.T) {
		stub := &stubFetch{html: "<html><body></body></html>"}
		engine := newTestEngine(stub, time.Hour)
		got, err := engine.Search(context.Background(), "Alpha Beta", false)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != 0 {
			t.Errorf("got %d videos, want none", len(got))
		}
		if _, _, ok := engine.store.Get("search_alpha beta"); ok {
			t.Error("empty result must not be cached")
		}
	})
}

func TestSearchURL(t *testing.T) {
	engine := newTestEngine(&stubFetch{}, 0)

	t.Run("spaces are escaped", func(t *testing.T) {
		got := engine.SearchURL("Alpha Beta")
		want := testHost + "/ja/search/" + url.PathEscape("Alpha Beta")
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("slashes stay literal", func(t *testing.T) {
		got := engine.SearchURL("Alpha/Beta Gamma")
		want := testHost + "/ja/search/Alpha/Beta%20Gamma"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
}

func TestExtractVideoFallbacks(t *testing.T) {
	t.Run("title falls back to image alt", func(t *testing.T) {
		doc := mustDoc(t, `<div class="thumbnail">
	<a href="/ja/video-x"><img alt="Fallback Title" src="/t.jpg"></a>
</div>`)
		video, ok := extractVideo(doc.Find("div.thumbnail"), testHost)
		if !ok {
			t.Fatal("expected a video")
		}
		if video.Title != "Fallback Title" {
			t.Errorf("Title = %q", video.Title)
		}
	})

	t.Run("titleless card is skipped", func(t *testing.T) {
		doc := mustDoc(t, `<div class="thumbnail"><span>12:00</span></div>`)
		if _, ok := extractVideo(doc.Find("div.thumbnail"), testHost); ok {
			t.Error("card without title must be skipped")
		}
	})

	t.Run("thumbnail falls back to data-src and absolutizes scheme", func(t *testing.T) {
		doc := mustDoc(t, `<div class="thumbnail">
	<a class="text-secondary" href="/ja/video-x">T</a>
	<img data-src="//cdn.example.com/t.webp">
</div>`)
		video, _ := extractVideo(doc.Find("div.thumbnail"), testHost)
		if video.ThumbnailURL != "https://cdn.example.com/t.webp" {
			t.Errorf("ThumbnailURL = %q", video.ThumbnailURL)
		}
	})

	t.Run("bare-relative thumbnail source is rejected", func(t *testing.T) {
		doc := mustDoc(t, `<div class="thumbnail">
	<a class="text-secondary" href="/ja/video-x">T</a>
	<img src="thumb.jpg">
</div>`)
		video, _ := extractVideo(doc.Find("div.thumbnail"), testHost)
		if video.ThumbnailURL != "" {
			t.Errorf("ThumbnailURL = %q, want empty for a bare-relative source", video.ThumbnailURL)
		}
	})

	t.Run("non-image source is rejected", func(t *testing.T) {
		doc := mustDoc(t, `<div class="thumbnail">
	<a class="text-secondary" href="/ja/video-x">T</a>
	<img src="/pixel.gif">
</div>`)
		video, _ := extractVideo(doc.Find("div.thumbnail"), testHost)
		if video.ThumbnailURL != "" {
			t.Errorf("ThumbnailURL = %q, want empty", video.ThumbnailURL)
		}
	})

	t.Run("duration requires a clock separator", func(t *testing.T) {
		doc := mustDoc(t, `<div class="thumbnail">
	<a class="text-secondary" href="/ja/video-x">T</a>
	<span class="absolute bottom-1 right-1">NEW</span>
</div>`)
		video, _ := extractVideo(doc.Find("div.thumbnail"), testHost)
		if video.Duration != "" {
			t.Errorf("Duration = %q, want empty", video.Duration)
		}
	})
}

func mustDoc(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}
	return doc
}
