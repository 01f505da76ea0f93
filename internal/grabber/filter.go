package grabber

import (
	"strings"
)

// Filter decides whether message text should be persisted, by
// case-insensitive substring matching against keyword lists.
type Filter struct {
	Include []string // empty means no inclusion restriction
	Exclude []string
}

// Passes reports whether the text survives the filter: at least one include
// keyword must occur when the include list is non-empty, and no exclude
// keyword may occur.
func (f Filter) Passes(text string) bool {
	s := strings.ToLower(text)

	if len(f.Include) > 0 {
		found := false
		for _, k := range f.Include {
			if strings.Contains(s, strings.ToLower(k)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	for _, k := range f.Exclude {
		if strings.Contains(s, strings.ToLower(k)) {
			return false
		}
	}

	return true
}
