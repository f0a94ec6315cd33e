// Package format holds the stateless content-format predicates the
// registry consults before accepting page content. The checks are pure
// functions of their input and carry no registry state.
package format

import "strings"

// Checker validates proposed page content and thumbnail references.
type Checker interface {
	ContentOK(content string) bool
	ThumbnailOK(ref string) bool
}

// Rules checks content against fixed wrapping markers and thumbnails
// against an allowed URI prefix list.
type Rules struct {
	ContentOpen  string
	ContentClose string
	// ThumbnailPrefixes lists the URI schemes a thumbnail reference may use.
	ThumbnailPrefixes []string
}

// DefaultRules returns the rules the server ships with.
func DefaultRules() Rules {
	return Rules{
		ContentOpen:  "<folio>",
		ContentClose: "</folio>",
		ThumbnailPrefixes: []string{
			"https://",
			"ipfs://",
		},
	}
}

// ContentOK reports whether content is wrapped in the configured markers.
func (r Rules) ContentOK(content string) bool {
	if len(content) < len(r.ContentOpen)+len(r.ContentClose) {
		return false
	}
	return strings.HasPrefix(content, r.ContentOpen) && strings.HasSuffix(content, r.ContentClose)
}

// ThumbnailOK reports whether ref starts with an allowed prefix.
func (r Rules) ThumbnailOK(ref string) bool {
	for _, prefix := range r.ThumbnailPrefixes {
		if strings.HasPrefix(ref, prefix) && len(ref) > len(prefix) {
			return true
		}
	}
	return false
}
