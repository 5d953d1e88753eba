package idmbatch

import "context"

// Marker is the CSS selector of the element whose presence signals that the
// target site's download section has finished rendering. Treat it as an
// external contract: the site may change its markup independently.
const Marker = "section.bg-light.mt-2.rounded.p-2.w-75.mx-auto"

// Fetcher retrieves rendered HTML for a Source using a headless browser.
type Fetcher interface {
	// Fetch loads the source in the given browser and returns the rendered HTML.
	// For remote sources it waits for Marker to appear; local sources are
	// captured as soon as they load.
	// Progress sent to sink is local to this call and runs from 0 to 1.
	// The browser is always released before Fetch returns.
	Fetch(ctx context.Context, src Source, browser Browser, sink Sink) (html string, err error)

	// Supports returns EINVALID if this fetcher cannot drive browser.
	Supports(browser Browser) error
}
