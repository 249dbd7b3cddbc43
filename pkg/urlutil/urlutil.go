package urlutil

import (
	"net/url"
	"strings"
)

// Canonicalize maps equivalent URL spellings to a single form:
//   - Scheme and host are lowercased
//   - Trailing slashes are removed from the path, except for root "/"
//   - Fragment and query are removed
//   - Default ports are omitted (:80 for http, :443 for https)
//
// It is pure and idempotent.
func Canonicalize(sourceUrl url.URL) url.URL {
	canonical := sourceUrl

	canonical.Scheme = strings.ToLower(canonical.Scheme)
	canonical.Host = strings.ToLower(canonical.Host)

	if host, port := canonical.Hostname(), canonical.Port(); port != "" {
		if (canonical.Scheme == "http" && port == "80") ||
			(canonical.Scheme == "https" && port == "443") {
			canonical.Host = host
		}
	}

	if len(canonical.Path) > 1 {
		canonical.Path = stripTrailingSlash(canonical.Path)
		canonical.RawPath = ""
	}

	canonical.Fragment = ""
	canonical.RawFragment = ""
	canonical.RawQuery = ""
	canonical.ForceQuery = false

	return canonical
}

// Resolve resolves href against base and canonicalizes the result.
func Resolve(base url.URL, href string) (url.URL, error) {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return url.URL{}, err
	}
	return Canonicalize(*base.ResolveReference(ref)), nil
}

// LastSegment returns the final non-empty path segment of u,
// e.g. "2408.00001" for "/papers/2408.00001/".
func LastSegment(u url.URL) string {
	path := stripTrailingSlash(u.Path)
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}

func stripTrailingSlash(path string) string {
	for len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}
	return path
}
