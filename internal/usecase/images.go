package usecase

import (
	"context"
	"log"
	"net/url"
	"strings"

	"github.com/shelfsafe/backend/internal/domain"
	xhtml "golang.org/x/net/html"
)

// ImageResolver resolves a display image for a listing, preferring metadata
// already present on the listing and falling back to fetching the linked page.
// Outcomes, including negative ones, are cached by product link so known
// failing links are not retried within the process lifetime.
type ImageResolver struct {
	fetcher domain.PageFetcher
	cache   domain.ImageCache
	debug   bool
}

// NewImageResolver creates an image resolver. The cache is injected so tests
// can use a fresh one per test and the process can share one across requests.
func NewImageResolver(fetcher domain.PageFetcher, imageCache domain.ImageCache) *ImageResolver {
	return &ImageResolver{
		fetcher: fetcher,
		cache:   imageCache,
	}
}

// SetDebug enables verbose resolution logging
func (r *ImageResolver) SetDebug(debug bool) {
	r.debug = debug
}

// Resolve returns an absolute HTTPS image URL for a listing, or "" when no
// image can be determined. Fetch and parse failures degrade to "" and are
// cached as negative results.
func (r *ImageResolver) Resolve(ctx context.Context, thumbnail, link string) string {
	if direct := upgradeImageURL(thumbnail, nil); direct != "" {
		return direct
	}

	if link == "" {
		return ""
	}

	if cached, ok := r.cache.Get(link); ok {
		return cached
	}

	resolved := r.resolveFromPage(ctx, link)
	r.cache.Set(link, resolved)
	return resolved
}

// resolveFromPage fetches the linked page and scans its social meta tags
func (r *ImageResolver) resolveFromPage(ctx context.Context, link string) string {
	doc, err := r.fetcher.Fetch(ctx, link)
	if err != nil {
		if r.debug {
			log.Printf("[IMAGE] Fetch failed for %s: %v", link, err)
		}
		return ""
	}

	ogImage, twitterImage := scanImageMetaTags(doc)

	base, err := url.Parse(link)
	if err != nil {
		base = nil
	}

	if resolved := upgradeImageURL(ogImage, base); resolved != "" {
		return resolved
	}
	return upgradeImageURL(twitterImage, base)
}

// scanImageMetaTags returns the Open Graph image and the Twitter-card image
// declared by a page, unresolved
func scanImageMetaTags(doc string) (ogImage, twitterImage string) {
	z := xhtml.NewTokenizer(strings.NewReader(doc))
	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			return ogImage, twitterImage
		}
		if tt != xhtml.StartTagToken && tt != xhtml.SelfClosingTagToken {
			continue
		}
		name, hasAttr := z.TagName()
		if string(name) != "meta" {
			continue
		}

		metaKey := ""
		content := ""
		for hasAttr {
			var key, val []byte
			key, val, hasAttr = z.TagAttr()
			switch string(key) {
			case "property", "name":
				metaKey = strings.ToLower(string(val))
			case "content":
				content = strings.TrimSpace(string(val))
			}
		}

		switch metaKey {
		case "og:image":
			if ogImage == "" {
				ogImage = content
			}
		case "twitter:image", "twitter:image:src":
			if twitterImage == "" {
				twitterImage = content
			}
		}
	}
}

// upgradeImageURL resolves a possibly-relative image URL against base and
// upgrades plain HTTP to HTTPS. Returns "" for anything that does not end up
// as an absolute http(s) URL.
func upgradeImageURL(raw string, base *url.URL) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	ref, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}

	switch ref.Scheme {
	case "https":
		return ref.String()
	case "http":
		ref.Scheme = "https"
		return ref.String()
	default:
		return ""
	}
}
