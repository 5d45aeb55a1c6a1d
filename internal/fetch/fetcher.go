// Package fetch provides the page-fetcher capability: rendering a URL into
// its title, meta description, body text, and outbound links.
package fetch

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"context"

	"github.com/PuerkitoBio/goquery"
)

// ErrFetch wraps all page-fetch failures (network, timeout, parse). Callers
// recover from it per URL; it is never fatal to a run.
var ErrFetch = errors.New("page fetch failed")

// Page is the extracted content of a fetched URL
type Page struct {
	URL         string
	Title       string
	Description string
	Body        string
	Links       []string // absolute http(s) outbound link URLs, in document order
}

// Fetcher renders a URL and extracts its content
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*Page, error)
}

// parsePage extracts page content from an HTML document. Relative links are
// resolved against the page URL; only http(s) links are kept.
func parsePage(pageURL string, r io.Reader) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrFetch, pageURL, err)
	}

	page := &Page{
		URL:   pageURL,
		Title: strings.TrimSpace(doc.Find("title").First().Text()),
		Body:  strings.TrimSpace(doc.Find("body").Text()),
	}

	if desc, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok {
		page.Description = strings.TrimSpace(desc)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return page, nil
	}

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if abs := resolveLink(base, href); abs != "" {
			page.Links = append(page.Links, abs)
		}
	})

	return page, nil
}

func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return ""
	}
	return abs.String()
}
