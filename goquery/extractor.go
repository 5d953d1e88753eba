// Package goquery extracts download links from rendered HTML using goquery.
package goquery

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/idmbatch"
)

// Ensure Extractor implements idmbatch.LinkExtractor at compile time.
var _ idmbatch.LinkExtractor = (*Extractor)(nil)

// Extractor finds download anchors inside the site's download section.
type Extractor struct {
	// ContainerSelector locates the download section. Only the first match is used.
	ContainerSelector string

	// LinkSelector locates download anchors inside the section.
	LinkSelector string
}

// NewExtractor returns an Extractor using the site's current markup.
func NewExtractor() *Extractor {
	return &Extractor{
		ContainerSelector: idmbatch.ContainerSelector,
		LinkSelector:      idmbatch.LinkSelector,
	}
}

// ExtractLinks returns the unique hrefs of matching anchors in document order.
// hrefs are kept verbatim; they are not resolved against any base URL.
func (e *Extractor) ExtractLinks(html string, sink idmbatch.Sink) []string {
	sink.Log("Parsing HTML for download links...")

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		sink.Log(fmt.Sprintf("WARNING: Could not parse HTML: %v", err))
		return nil
	}

	section := doc.Find(e.ContainerSelector).First()
	if section.Length() == 0 {
		sink.Log("WARNING: Download section not found. HTML structure might have changed.")
		return nil
	}

	var hrefs []string
	section.Find(e.LinkSelector).Each(func(_ int, sel *goquery.Selection) {
		if href, ok := sel.Attr("href"); ok && href != "" {
			hrefs = append(hrefs, href)
		}
	})
	if len(hrefs) == 0 {
		sink.Log("WARNING: No download links (<a> tags with 'btn-success') found in section.")
		return nil
	}

	sink.Log(fmt.Sprintf("Found %d potential download links.", len(hrefs)))
	return dedupe(hrefs)
}

// dedupe removes repeated entries, keeping the first occurrence.
func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
