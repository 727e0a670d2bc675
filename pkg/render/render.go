package render

import (
	"context"
	"encoding/json"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/gridlayout/pkg/cache"
	"github.com/matzehuels/gridlayout/pkg/errors"
	"github.com/matzehuels/gridlayout/pkg/grid"
)

// Format is an output format.
type Format string

// Supported formats.
const (
	FormatSVG  Format = "svg"
	FormatJSON Format = "json"
	FormatText Format = "text"
	FormatPNG  Format = "png"
	FormatPDF  Format = "pdf"
)

// Formats lists every supported format.
var Formats = []Format{FormatSVG, FormatJSON, FormatText, FormatPNG, FormatPDF}

// ParseFormat converts a format name to a [Format]. Empty means SVG.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatSVG, nil
	case FormatSVG, FormatJSON, FormatText, FormatPNG, FormatPDF:
		return f, nil
	case "txt":
		return FormatText, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown format %q (must be svg, json, text, png or pdf)", s)
}

// Default text preview size in characters.
const (
	DefaultTextCols = 80
	DefaultTextRows = 24
)

// DefaultTTL is how long rendered output stays cached.
const DefaultTTL = 7 * 24 * time.Hour

// Options selects what [Renderer.Render] produces.
type Options struct {
	Format     Format
	Breakpoint grid.Breakpoint
	GridLines  bool
	NoLabels   bool
	Cols, Rows int     // text only; zero uses the defaults
	Scale      float64 // png only; zero means 2x
}

// Renderer resolves a layout at a breakpoint and renders it, caching output
// by layout content.
type Renderer struct {
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger
}

// RendererOption configures a [Renderer].
type RendererOption func(*Renderer)

// WithCache caches rendered output in c for ttl.
func WithCache(c cache.Cache, keyer cache.Keyer, ttl time.Duration) RendererOption {
	return func(r *Renderer) {
		r.cache, r.keyer, r.ttl = c, keyer, ttl
	}
}

// WithLogger sets the logger for cache diagnostics.
func WithLogger(l *log.Logger) RendererOption { return func(r *Renderer) { r.logger = l } }

// NewRenderer returns a renderer. Without [WithCache] nothing is cached.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		cache:  cache.NewNullCache(),
		keyer:  cache.NewDefaultKeyer(),
		ttl:    DefaultTTL,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws l at opts.Breakpoint in opts.Format.
func (r *Renderer) Render(ctx context.Context, l *grid.Layout, opts Options) ([]byte, error) {
	if opts.Format == "" {
		opts.Format = FormatSVG
	}
	if opts.Breakpoint == "" {
		opts.Breakpoint = grid.Desktop
	}

	key := r.keyer.RenderKey(LayoutHash(l), cache.RenderKeyOpts{
		Format:     renderKeyFormat(opts),
		Breakpoint: string(opts.Breakpoint),
		GridLines:  opts.GridLines,
		Labels:     !opts.NoLabels,
	})
	if data, ok, err := cache.GetBytes(ctx, r.cache, cache.KeyTypeRender, key); err != nil {
		r.logger.Debug("render cache read failed", "error", err)
	} else if ok {
		return data, nil
	}

	data, err := r.render(ctx, l, opts)
	if err != nil {
		return nil, err
	}
	if err := cache.SetBytes(ctx, r.cache, cache.KeyTypeRender, key, data, r.ttl); err != nil {
		r.logger.Debug("render cache write failed", "error", err)
	}
	return data, nil
}

func (r *Renderer) render(ctx context.Context, l *grid.Layout, opts Options) ([]byte, error) {
	view := grid.View(l, opts.Breakpoint)
	svg := func() []byte {
		return RenderSVG(view, l.Canvas, l.Style, svgOptions(opts)...)
	}

	switch opts.Format {
	case FormatSVG:
		return svg(), nil
	case FormatJSON:
		return RenderJSON(view, l.Canvas, opts.Breakpoint)
	case FormatText:
		cols, rows := opts.Cols, opts.Rows
		if cols <= 0 {
			cols = DefaultTextCols
		}
		if rows <= 0 {
			rows = DefaultTextRows
		}
		return []byte(RenderText(view, l.Canvas, cols, rows)), nil
	case FormatPNG:
		scale := opts.Scale
		if scale <= 0 {
			scale = 2.0
		}
		return ToPNG(ctx, svg(), scale)
	case FormatPDF:
		return ToPDF(ctx, svg())
	}
	return nil, errors.New(errors.ErrCodeInvalidInput, "unknown format %q", opts.Format)
}

func svgOptions(opts Options) []SVGOption {
	out := []SVGOption{WithBreakpoint(opts.Breakpoint), WithIDs()}
	if opts.GridLines {
		out = append(out, WithGridLines())
	}
	if opts.NoLabels {
		out = append(out, WithoutLabels())
	}
	return out
}

// renderKeyFormat folds the size settings into the format so text and png
// at different sizes get distinct cache entries.
func renderKeyFormat(opts Options) string {
	switch opts.Format {
	case FormatText:
		b, _ := json.Marshal([]int{opts.Cols, opts.Rows})
		return string(opts.Format) + string(b)
	case FormatPNG:
		b, _ := json.Marshal(opts.Scale)
		return string(opts.Format) + "@" + string(b)
	}
	return string(opts.Format)
}

// LayoutHash identifies the renderable content of a layout: canvas, items
// and style. Timestamps and the name are excluded.
func LayoutHash(l *grid.Layout) string {
	data, _ := json.Marshal(struct {
		Canvas grid.Canvas `json:"canvas"`
		Items  []grid.Item `json:"items"`
		Style  grid.Style  `json:"style"`
	}{l.Canvas, l.Items, l.Style})
	return cache.Hash(data)
}
