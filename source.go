package idmbatch

import (
	"net/url"
	"path/filepath"
	"strings"
)

// Source is the page a session pulls links from: either a remote web page or
// a local HTML file. A Source is immutable once parsed.
type Source struct {
	raw      string
	location string
	local    bool
}

// ParseSource resolves raw into a Source.
// http:// and https:// URLs are remote and used as-is. file:// URIs are local
// and used as-is. Anything else is treated as a filesystem path and converted
// to an absolute file:// URI.
func ParseSource(raw string) (Source, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Source{}, Errorf(EINVALID, "source URL or file path required")
	}

	lower := strings.ToLower(raw)
	switch {
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return Source{raw: raw, location: raw}, nil
	case strings.HasPrefix(lower, "file://"):
		return Source{raw: raw, location: raw, local: true}, nil
	}

	uri, err := pathToURI(raw)
	if err != nil {
		return Source{}, Errorf(EINVALID, "cannot convert %q to a file URI: %v", raw, err)
	}
	return Source{raw: raw, location: uri, local: true}, nil
}

// pathToURI converts a filesystem path into a file:// URI.
func pathToURI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	p := filepath.ToSlash(abs)
	// Windows drive paths ("C:/...") need a leading slash in URI form.
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return u.String(), nil
}

// IsLocal reports whether the source is a local file rather than a web page.
func (s Source) IsLocal() bool {
	return s.local
}

// Location returns the URL handed to the browser.
func (s Source) Location() string {
	return s.location
}

// String returns the source as the user entered it.
func (s Source) String() string {
	return s.raw
}

// IsZero reports whether s is the zero Source.
func (s Source) IsZero() bool {
	return s.raw == ""
}
