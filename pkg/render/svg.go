package render

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/gridlayout/pkg/grid"
)

const (
	defaultBackground = "#ffffff"
	defaultTextColor  = "#1f2328"
	defaultFont       = "system-ui, sans-serif"
	gridLineColor     = "#d0d7de"

	fontSizeMin = 9.0
	fontSizeMax = 18.0
	fontCharW   = 0.55
)

// kindFill is the fill color for each item kind.
var kindFill = map[grid.Kind]string{
	grid.KindContentRef: "#ddf4ff",
	grid.KindText:       "#fff8c5",
	grid.KindImage:      "#dafbe1",
	grid.KindBlock:      "#f6f8fa",
}

// SVGOption configures SVG rendering via [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	gridLines  bool
	labels     bool
	ids        bool
	breakpoint grid.Breakpoint
}

// WithGridLines draws the cell grid under the items.
func WithGridLines() SVGOption { return func(r *svgRenderer) { r.gridLines = true } }

// WithoutLabels suppresses item labels.
func WithoutLabels() SVGOption { return func(r *svgRenderer) { r.labels = false } }

// WithIDs adds a data-id attribute and an element id to every item group.
func WithIDs() SVGOption { return func(r *svgRenderer) { r.ids = true } }

// WithBreakpoint records the breakpoint the view was resolved for as a
// data attribute on the root element.
func WithBreakpoint(bp grid.Breakpoint) SVGOption {
	return func(r *svgRenderer) { r.breakpoint = bp }
}

// RenderSVG draws view on a canvas-sized SVG. Items are painted in slice
// order, so a view from [grid.View] paints higher z on top.
func RenderSVG(view []grid.Placed, c grid.Canvas, s grid.Style, opts ...SVGOption) []byte {
	r := newSVGRenderer(opts...)

	width, height := c.Pixel(c.Cols()), c.Pixel(c.Rows())
	bg := colorOr(s.Background, defaultBackground)
	fg := colorOr(s.TextColor, defaultTextColor)
	font := s.FontFamily
	if font == "" {
		font = defaultFont
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %d %d" width="%d" height="%d"`,
		width, height, width, height)
	if r.breakpoint != "" {
		fmt.Fprintf(&buf, ` data-breakpoint="%s"`, r.breakpoint)
	}
	buf.WriteString(">\n")
	fmt.Fprintf(&buf, `  <rect x="0" y="0" width="%d" height="%d" fill="%s"/>`+"\n", width, height, escapeXML(bg))

	if r.gridLines {
		renderGridLines(&buf, c)
	}
	for _, p := range view {
		renderItem(&buf, &r, p, c, fg, font)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func newSVGRenderer(opts ...SVGOption) svgRenderer {
	r := svgRenderer{labels: true}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

func renderGridLines(buf *bytes.Buffer, c grid.Canvas) {
	width, height := c.Pixel(c.Cols()), c.Pixel(c.Rows())
	fmt.Fprintf(buf, `  <g stroke="%s" stroke-width="0.5">`+"\n", gridLineColor)
	for col := 1; col < c.Cols(); col++ {
		x := c.Pixel(col)
		fmt.Fprintf(buf, `    <line x1="%d" y1="0" x2="%d" y2="%d"/>`+"\n", x, x, height)
	}
	for row := 1; row < c.Rows(); row++ {
		y := c.Pixel(row)
		fmt.Fprintf(buf, `    <line x1="0" y1="%d" x2="%d" y2="%d"/>`+"\n", y, width, y)
	}
	buf.WriteString("  </g>\n")
}

func renderItem(buf *bytes.Buffer, r *svgRenderer, p grid.Placed, c grid.Canvas, fg, font string) {
	x, y := c.Pixel(p.Rect.X), c.Pixel(p.Rect.Y)
	w, h := c.Pixel(p.Rect.W), c.Pixel(p.Rect.H)

	buf.WriteString("  <g")
	if r.ids {
		id := escapeXML(p.Item.ID)
		fmt.Fprintf(buf, ` id="item-%s" data-id="%s"`, id, id)
	}
	fmt.Fprintf(buf, ` data-kind="%s" data-z="%d">`+"\n", p.Item.Kind, p.Item.Z)

	fill := kindFill[p.Item.Kind]
	if fill == "" {
		fill = kindFill[grid.KindBlock]
	}
	dash := ""
	if p.Overridden {
		dash = ` stroke-dasharray="4 2"`
	}
	fmt.Fprintf(buf, `    <rect x="%d" y="%d" width="%d" height="%d" rx="4" fill="%s" stroke="#57606a" stroke-width="1"%s/>`+"\n",
		x, y, w, h, fill, dash)

	if r.labels {
		label := p.Item.Label()
		size := labelFontSize(float64(w), float64(h), len(label))
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f" font-family="%s" font-size="%.1f" fill="%s" text-anchor="middle" dominant-baseline="middle">%s</text>`+"\n",
			float64(x)+float64(w)/2, float64(y)+float64(h)/2, escapeXML(font), size, escapeXML(fg),
			escapeXML(truncate(label, float64(w), size)))
	}
	buf.WriteString("  </g>\n")
}

func labelFontSize(w, h float64, n int) float64 {
	n = max(1, n)
	byHeight := h * 0.5
	byWidth := w * 0.9 / (float64(n) * fontCharW)
	return max(fontSizeMin, min(fontSizeMax, min(byHeight, byWidth)))
}

func truncate(label string, width, fontSize float64) string {
	runes := []rune(label)
	maxChars := int(width * 0.9 / (fontSize * fontCharW))
	if maxChars < 3 {
		maxChars = 3
	}
	if len(runes) <= maxChars {
		return label
	}
	return string(runes[:maxChars-2]) + ".."
}

func colorOr(c, def string) string {
	if c == "" {
		return def
	}
	return c
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
