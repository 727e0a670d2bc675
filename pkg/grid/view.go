package grid

import (
	"cmp"
	"slices"
)

// Placed is an item as it appears at one breakpoint.
type Placed struct {
	Item       Item // copy of the stored item
	Rect       Rect // resolved geometry at the breakpoint, in cells
	Overridden bool // geometry comes from a breakpoint override
}

// View returns what a rendering surface draws for bp: visible items only,
// clamped to the canvas, run through [ResolveOverlaps], and sorted by z
// with ties kept in insertion order. The layout is not modified.
func View(l *Layout, bp Breakpoint) []Placed {
	placed := visibleAt(l, bp)
	rects := make([]Rect, len(placed))
	for i, p := range placed {
		rects[i] = p.Rect
	}
	for i, r := range ResolveOverlaps(rects, l.Canvas.Rows()) {
		placed[i].Rect = r
	}
	sortByZ(placed)
	return placed
}

// EditView is like [View] but keeps the stored positions, overlaps
// included, the way an editor shows items during direct manipulation.
func EditView(l *Layout, bp Breakpoint) []Placed {
	placed := visibleAt(l, bp)
	sortByZ(placed)
	return placed
}

// visibleAt collects the items visible at bp in insertion order.
func visibleAt(l *Layout, bp Breakpoint) []Placed {
	out := make([]Placed, 0, len(l.Items))
	for _, it := range l.Items {
		pos := ResolvePosition(it, bp)
		if !pos.Visible {
			continue
		}
		out = append(out, Placed{
			Item:       it.Clone(),
			Rect:       clampToCanvas(pos.Rect(), l.Canvas),
			Overridden: IsOverridden(it, bp),
		})
	}
	return out
}

func sortByZ(placed []Placed) {
	slices.SortStableFunc(placed, func(a, b Placed) int {
		return cmp.Compare(a.Item.Z, b.Item.Z)
	})
}
