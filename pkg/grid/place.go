package grid

import (
	"cmp"
	"slices"
)

// ScanConfig bounds the raster search used by [FindFirstFreeSlot].
type ScanConfig struct {
	// Step is the distance in cells between candidate origins on both axes.
	Step int `json:"step" toml:"scan_step"`
	// Limit is the number of candidates tried per axis.
	Limit int `json:"limit" toml:"scan_limit"`
}

// Default scan bounds: 10x10 candidates, two cells apart.
const (
	DefaultScanStep  = 2
	DefaultScanLimit = 10
)

// DefaultScan returns the default scan bounds.
func DefaultScan() ScanConfig {
	return ScanConfig{Step: DefaultScanStep, Limit: DefaultScanLimit}
}

// withDefaults replaces non-positive fields with the defaults.
func (s ScanConfig) withDefaults() ScanConfig {
	if s.Step <= 0 {
		s.Step = DefaultScanStep
	}
	if s.Limit <= 0 {
		s.Limit = DefaultScanLimit
	}
	return s
}

// Overlaps reports whether two rectangles share at least one cell.
// Edges are exclusive: touching rectangles do not overlap.
func Overlaps(a, b Rect) bool {
	return !(a.X+a.W <= b.X || a.X >= b.X+b.W || a.Y+a.H <= b.Y || a.Y >= b.Y+b.H)
}

// ResolveOverlaps returns a collision-free arrangement of rects where the
// canvas height allows one.
//
// Rects are processed in order of bottom edge, then top edge, then left
// edge, with ties kept in input order. Each rect keeps its x and is pushed
// down to the lowest bottom edge among the already placed rects it
// overlaps, repeatedly, until it overlaps nothing or reaches rows-h. The
// canvas height is a hard ceiling: a rect stopped there may still overlap.
//
// The result is index-aligned with the input. Negative origins are clamped
// to 0 and spans below 1 to 1 before resolution; w and h are otherwise
// unchanged.
func ResolveOverlaps(rects []Rect, rows int) []Rect {
	in := make([]Rect, len(rects))
	for i, r := range rects {
		in[i] = r.clamped()
	}

	order := make([]int, len(in))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		ra, rb := in[a], in[b]
		return cmp.Or(
			cmp.Compare(ra.Bottom(), rb.Bottom()),
			cmp.Compare(ra.Y, rb.Y),
			cmp.Compare(ra.X, rb.X),
		)
	})

	out := make([]Rect, len(in))
	placed := make([]Rect, 0, len(in))
	for _, idx := range order {
		r := in[idx]
		ceiling := max(rows-r.H, 0)
		r.Y = min(r.Y, ceiling)
		for {
			lowest := -1
			for _, p := range placed {
				if Overlaps(r, p) {
					lowest = max(lowest, p.Bottom())
				}
			}
			if lowest < 0 {
				break
			}
			if lowest >= ceiling {
				r.Y = ceiling
				if lowest > ceiling {
					break
				}
				continue
			}
			r.Y = lowest
		}
		placed = append(placed, r)
		out[idx] = r
	}
	return out
}

// CountOverlapping returns how many rects overlap at least one other rect.
func CountOverlapping(rects []Rect) int {
	n := 0
	for i, a := range rects {
		for j, b := range rects {
			if i != j && Overlaps(a, b) {
				n++
				break
			}
		}
	}
	return n
}

// FindFirstFreeSlot scans candidate origins in row-major order and returns
// the first one where a w x h rect fits inside the canvas without
// overlapping any of rects.
//
// Candidates are spaced scan.Step cells apart and limited to scan.Limit per
// axis. When no candidate is free it returns (0, 0, false) and the caller
// places the item at the origin, accepting overlap.
func FindFirstFreeSlot(rects []Rect, w, h, cols, rows int, scan ScanConfig) (x, y int, ok bool) {
	scan = scan.withDefaults()
	w, h = max(w, 1), max(h, 1)

	for yi := 0; yi < scan.Limit; yi++ {
		cy := yi * scan.Step
		if cy+h > rows {
			break
		}
		for xi := 0; xi < scan.Limit; xi++ {
			cx := xi * scan.Step
			if cx+w > cols {
				break
			}
			candidate := Rect{X: cx, Y: cy, W: w, H: h}
			if !slices.ContainsFunc(rects, func(r Rect) bool { return Overlaps(candidate, r) }) {
				return cx, cy, true
			}
		}
	}
	return 0, 0, false
}
