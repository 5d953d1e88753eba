package mock

import "github.com/fwojciec/idmbatch"

var _ idmbatch.LinkExtractor = (*LinkExtractor)(nil)

// LinkExtractor is a mock implementation of idmbatch.LinkExtractor.
type LinkExtractor struct {
	ExtractLinksFn func(html string, sink idmbatch.Sink) []string
}

func (e *LinkExtractor) ExtractLinks(html string, sink idmbatch.Sink) []string {
	return e.ExtractLinksFn(html, sink)
}
