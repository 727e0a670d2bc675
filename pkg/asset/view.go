package asset

import "strings"

// Filter narrows a [DeriveView] result. Zero fields match everything.
type Filter struct {
	ContentType string // exact content type, e.g. "image"
	Prefix      string // ref id prefix
}

func (f Filter) match(e Entry) bool {
	if f.ContentType != "" && e.Preview.ContentType != f.ContentType {
		return false
	}
	return strings.HasPrefix(e.RefID, f.Prefix)
}

// Page selects a window of results. Number is zero-based; a Size of zero
// or less returns everything from the start.
type Page struct {
	Number int
	Size   int
}

// DeriveView returns the entries of c that match f, in cache order,
// restricted to page p. It has no side effects and may be called as often
// as needed.
func DeriveView(c *Cache, f Filter, p Page) []Entry {
	var matched []Entry
	for _, e := range c.Snapshot() {
		if f.match(e) {
			matched = append(matched, e)
		}
	}
	if p.Size <= 0 {
		return matched
	}
	n := max(p.Number, 0)
	if len(matched) == 0 || n > (len(matched)-1)/p.Size {
		return nil
	}
	start := n * p.Size
	return matched[start:min(start+p.Size, len(matched))]
}
