package idmbatch

// Site-specific selectors for the download section and its links. The class
// attributes must match exactly.
const (
	ContainerSelector = `section[class="bg-light mt-2 rounded p-2 w-75 mx-auto"]`
	LinkSelector      = `a[class="btn btn-success"][href]`
)

// LinkExtractor finds download links in rendered HTML.
type LinkExtractor interface {
	// ExtractLinks returns the duplicate-free download URLs found in html, in
	// document order. Structural absence is not an error: a warning goes to
	// sink and the result is empty.
	ExtractLinks(html string, sink Sink) []string
}
