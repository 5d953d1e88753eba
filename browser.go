package idmbatch

import "strings"

// Browser identifies which browser renders the source page.
type Browser string

// Supported browsers.
const (
	BrowserChrome  Browser = "chrome"
	BrowserFirefox Browser = "firefox"
	BrowserEdge    Browser = "edge"
)

// DefaultBrowser is selected when no browser has been chosen.
const DefaultBrowser = BrowserChrome

// Browsers returns all supported browsers in display order.
func Browsers() []Browser {
	return []Browser{BrowserChrome, BrowserFirefox, BrowserEdge}
}

// ParseBrowser returns the Browser named by s, ignoring case.
// Returns EINVALID for names outside the supported set.
func ParseBrowser(s string) (Browser, error) {
	b := Browser(strings.ToLower(strings.TrimSpace(s)))
	if err := b.Validate(); err != nil {
		return "", err
	}
	return b, nil
}

// Validate returns an error if b is not a supported browser.
func (b Browser) Validate() error {
	switch b {
	case BrowserChrome, BrowserFirefox, BrowserEdge:
		return nil
	}
	return Errorf(EINVALID, "unsupported browser: %q", string(b))
}

// Title returns the capitalized browser name for log output.
func (b Browser) Title() string {
	switch b {
	case BrowserChrome:
		return "Chrome"
	case BrowserFirefox:
		return "Firefox"
	case BrowserEdge:
		return "Edge"
	}
	return string(b)
}
