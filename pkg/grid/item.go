package grid

import (
	"maps"
	"strings"

	"github.com/matzehuels/gridlayout/pkg/errors"
)

// =============================================================================
// Kinds
// =============================================================================

// Kind identifies what an item displays.
type Kind string

// Item kinds.
const (
	KindContentRef Kind = "content-reference" // content fetched from the asset store by id
	KindText       Kind = "inline-text"       // text stored on the item
	KindImage      Kind = "inline-image"      // image URL stored on the item
	KindBlock      Kind = "structural-block"  // hero, media grid, text section, spacer
)

// Kinds lists every item kind in display order.
var Kinds = []Kind{KindContentRef, KindText, KindImage, KindBlock}

// Structural block types.
const (
	BlockHero        = "hero"
	BlockMediaGrid   = "media-grid"
	BlockTextSection = "text-section"
	BlockSpacer      = "spacer"
)

// BlockTypes lists the structural block types the size table knows about.
var BlockTypes = []string{BlockHero, BlockMediaGrid, BlockTextSection, BlockSpacer}

// ParseKind converts a kind name to a [Kind]. The short aliases "ref",
// "text", "image" and "block" are accepted for CLI convenience.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(KindContentRef), "ref", "content":
		return KindContentRef, nil
	case string(KindText), "text":
		return KindText, nil
	case string(KindImage), "image":
		return KindImage, nil
	case string(KindBlock), "block":
		return KindBlock, nil
	}
	return "", errors.New(errors.ErrCodeInvalidKind, "unknown item kind %q (must be content-reference, inline-text, inline-image or structural-block)", s)
}

// =============================================================================
// Rect
// =============================================================================

// Rect is an axis-aligned rectangle in grid cells.
type Rect struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
	W int `json:"w" bson:"w"`
	H int `json:"h" bson:"h"`
}

// Right returns the exclusive right edge.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the exclusive bottom edge.
func (r Rect) Bottom() int { return r.Y + r.H }

// Area returns the number of cells covered.
func (r Rect) Area() int { return r.W * r.H }

// clamped returns r with negative origins raised to 0 and spans below 1
// raised to 1.
func (r Rect) clamped() Rect {
	r.X = max(r.X, 0)
	r.Y = max(r.Y, 0)
	r.W = max(r.W, 1)
	r.H = max(r.H, 1)
	return r
}

// =============================================================================
// Item
// =============================================================================

// ContentRef points at an asset in the external asset store.
type ContentRef struct {
	ID          string `json:"id" bson:"id"`
	ContentType string `json:"content_type,omitempty" bson:"content_type,omitempty"`
}

// Inline holds content stored directly on inline-text and inline-image items.
type Inline struct {
	Text     string `json:"text,omitempty" bson:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Alt      string `json:"alt,omitempty" bson:"alt,omitempty"`
}

// Block configures a structural block.
type Block struct {
	Type   string         `json:"type" bson:"type"`
	Config map[string]any `json:"config,omitempty" bson:"config,omitempty"`
}

// Override is an independent position, size and visibility for one
// breakpoint.
type Override struct {
	X       int  `json:"x" bson:"x"`
	Y       int  `json:"y" bson:"y"`
	W       int  `json:"w" bson:"w"`
	H       int  `json:"h" bson:"h"`
	Visible bool `json:"visible" bson:"visible"`
}

// Rect returns the override's rectangle.
func (o Override) Rect() Rect { return Rect{X: o.X, Y: o.Y, W: o.W, H: o.H} }

// withRect returns o with its geometry replaced by r.
func (o Override) withRect(r Rect) Override {
	o.X, o.Y, o.W, o.H = r.X, r.Y, r.W, r.H
	return o
}

// Item is a positioned rectangle on the canvas.
//
// X, Y, W and H are the canonical desktop geometry in grid cells. NX, NY,
// NW and NH are canvas fractions derived from them by [Normalize] and are
// never edited directly.
type Item struct {
	ID string `json:"id" bson:"id"`

	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
	W int `json:"w" bson:"w"`
	H int `json:"h" bson:"h"`

	NX float64 `json:"nx" bson:"nx"`
	NY float64 `json:"ny" bson:"ny"`
	NW float64 `json:"nw" bson:"nw"`
	NH float64 `json:"nh" bson:"nh"`

	Z int `json:"z" bson:"z"`

	Kind   Kind        `json:"kind" bson:"kind"`
	Ref    *ContentRef `json:"ref,omitempty" bson:"ref,omitempty"`
	Inline *Inline     `json:"inline,omitempty" bson:"inline,omitempty"`
	Block  *Block      `json:"block,omitempty" bson:"block,omitempty"`

	Overrides map[Breakpoint]Override `json:"breakpoint_overrides,omitempty" bson:"breakpoint_overrides,omitempty"`
}

// Rect returns the item's base (desktop) rectangle.
func (it Item) Rect() Rect { return Rect{X: it.X, Y: it.Y, W: it.W, H: it.H} }

// setRect replaces the base geometry.
func (it *Item) setRect(r Rect) {
	it.X, it.Y, it.W, it.H = r.X, r.Y, r.W, r.H
}

// Label returns a short human-readable description used by renderers.
func (it Item) Label() string {
	switch it.Kind {
	case KindContentRef:
		if it.Ref != nil {
			return it.Ref.ID
		}
	case KindText:
		if it.Inline != nil && it.Inline.Text != "" {
			return it.Inline.Text
		}
	case KindImage:
		if it.Inline != nil && it.Inline.Alt != "" {
			return it.Inline.Alt
		}
	case KindBlock:
		if it.Block != nil {
			return it.Block.Type
		}
	}
	return string(it.Kind)
}

// Clone returns a deep copy of the item.
func (it Item) Clone() Item {
	out := it
	if it.Ref != nil {
		ref := *it.Ref
		out.Ref = &ref
	}
	if it.Inline != nil {
		in := *it.Inline
		out.Inline = &in
	}
	if it.Block != nil {
		b := *it.Block
		b.Config = maps.Clone(it.Block.Config)
		out.Block = &b
	}
	out.Overrides = maps.Clone(it.Overrides)
	return out
}

// Preview is asset content resolved for a content-reference item. It is
// runtime state and is never persisted with the layout.
type Preview struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
}
