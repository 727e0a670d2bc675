// Package render draws resolved grid views.
//
// # Overview
//
// Every renderer consumes the output of [grid.View]: items that are visible
// at one breakpoint, clamped, collision-resolved and sorted by z. Renderers
// never resolve overlaps themselves, so all surfaces agree on geometry.
//
//   - [RenderSVG]: pixel-space SVG, one rect per item, painted in z order
//   - [RenderJSON]: the resolved view as a JSON document for consumers
//   - [RenderText]: a character-cell preview for terminals
//
// # Grid Coordinates
//
// Items are positioned in grid cells. SVG output multiplies every cell
// coordinate by the canvas cell size, so a 20px grid item at (3, 2) is drawn
// at (60, 40). Text output scales the canvas down to a fixed character
// budget instead.
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert SVG output with the external rsvg-convert
// tool (from librsvg):
//
//	svg := render.RenderSVG(view, l.Canvas, l.Style, render.WithGridLines())
//	png, err := render.ToPNG(svg, 2.0) // 2x scale
//
// # Caching
//
// [Renderer] wraps the format functions with a [cache.Cache] keyed by a
// hash of the layout document, so unchanged layouts are not re-rendered.
package render
