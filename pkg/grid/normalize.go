package grid

import "math"

// Normalize clamps an item into the canvas and recomputes its normalized
// coordinates.
//
// W and H are raised to at least 1. X is clamped to [0, cols-w] and Y to
// [0, rows-h]; when the item is larger than the canvas the origin is pinned
// at 0 and the overflow is accepted. Breakpoint overrides are clamped the
// same way. Normalize does not look at other items and does not modify its
// argument.
func Normalize(it Item, c Canvas) Item {
	out := it.Clone()
	out.setRect(clampToCanvas(it.Rect(), c))
	out.NX = fraction(out.X*c.CellSize, c.Width)
	out.NY = fraction(out.Y*c.CellSize, c.Height)
	out.NW = fraction(out.W*c.CellSize, c.Width)
	out.NH = fraction(out.H*c.CellSize, c.Height)

	for bp, o := range out.Overrides {
		out.Overrides[bp] = o.withRect(clampToCanvas(o.Rect(), c))
	}
	return out
}

// NormalizeAll applies [Normalize] to every item of the layout in place.
func NormalizeAll(l *Layout) {
	for i := range l.Items {
		l.Items[i] = Normalize(l.Items[i], l.Canvas)
	}
}

// Nudge moves an item's base position by (dx, dy) cells and normalizes it.
func Nudge(it Item, dx, dy int, c Canvas) Item {
	it.X += dx
	it.Y += dy
	return Normalize(it, c)
}

// clampToCanvas applies the size floor and the canvas bounds to r.
func clampToCanvas(r Rect, c Canvas) Rect {
	r.W = max(r.W, 1)
	r.H = max(r.H, 1)
	r.X = clampInt(r.X, 0, c.Cols()-r.W)
	r.Y = clampInt(r.Y, 0, c.Rows()-r.H)
	return r
}

// clampInt clamps v to [lo, hi]. When hi < lo the result is lo.
func clampInt(v, lo, hi int) int {
	if v > hi {
		v = hi
	}
	if v < lo {
		v = lo
	}
	return v
}

// fraction returns num/den clamped to [0, 1]. Division by zero and any
// other non-finite result yield 0.
func fraction(num, den int) float64 {
	if den == 0 {
		return 0
	}
	v := float64(num) / float64(den)
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Min(math.Max(v, 0), 1)
}
