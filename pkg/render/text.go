package render

import (
	"strings"

	"github.com/matzehuels/gridlayout/pkg/grid"
)

// Glyphs used by [RenderText].
const (
	glyphEmpty  = '·'
	glyphCorner = '+'
	glyphHoriz  = '-'
	glyphVert   = '|'
)

// RenderText draws view into a cols x rows character buffer. The canvas is
// scaled to fit, so one character covers one or more grid cells. Every item
// is outlined and its label is written on the first inner line when there is
// room; later items overwrite earlier ones, matching z order.
func RenderText(view []grid.Placed, c grid.Canvas, cols, rows int) string {
	cols, rows = max(cols, 1), max(rows, 1)
	gc, gr := max(c.Cols(), 1), max(c.Rows(), 1)

	cells := make([][]rune, rows)
	for i := range cells {
		cells[i] = []rune(strings.Repeat(string(glyphEmpty), cols))
	}

	for _, p := range view {
		x0 := scaleDown(p.Rect.X, gc, cols)
		y0 := scaleDown(p.Rect.Y, gr, rows)
		x1 := max(scaleUp(p.Rect.Right(), gc, cols)-1, x0)
		y1 := max(scaleUp(p.Rect.Bottom(), gr, rows)-1, y0)
		x1, y1 = min(x1, cols-1), min(y1, rows-1)

		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				cells[y][x] = textGlyph(x, y, x0, y0, x1, y1)
			}
		}
		if y1-y0 >= 2 && x1-x0 >= 2 {
			label := []rune(p.Item.Label())
			room := x1 - x0 - 1
			if len(label) > room {
				label = label[:room]
			}
			copy(cells[y0+1][x0+1:], label)
		}
	}

	var b strings.Builder
	for _, row := range cells {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func textGlyph(x, y, x0, y0, x1, y1 int) rune {
	onX := x == x0 || x == x1
	onY := y == y0 || y == y1
	switch {
	case onX && onY:
		return glyphCorner
	case onY:
		return glyphHoriz
	case onX:
		return glyphVert
	}
	return ' '
}

// scaleDown maps a grid coordinate to a character coordinate, rounding down.
func scaleDown(v, from, to int) int {
	return v * to / from
}

// scaleUp maps a grid coordinate to a character coordinate, rounding up.
func scaleUp(v, from, to int) int {
	return (v*to + from - 1) / from
}
