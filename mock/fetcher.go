package mock

import (
	"context"

	"github.com/fwojciec/idmbatch"
)

var _ idmbatch.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of idmbatch.Fetcher.
type Fetcher struct {
	FetchFn    func(ctx context.Context, src idmbatch.Source, browser idmbatch.Browser, sink idmbatch.Sink) (string, error)
	SupportsFn func(browser idmbatch.Browser) error
}

func (f *Fetcher) Fetch(ctx context.Context, src idmbatch.Source, browser idmbatch.Browser, sink idmbatch.Sink) (string, error) {
	return f.FetchFn(ctx, src, browser, sink)
}

// Supports calls SupportsFn, accepting every browser when it is nil.
func (f *Fetcher) Supports(browser idmbatch.Browser) error {
	if f.SupportsFn == nil {
		return nil
	}
	return f.SupportsFn(browser)
}
