package render

import (
	"encoding/json"

	"github.com/matzehuels/gridlayout/pkg/grid"
)

// ViewDocument is the JSON shape of a resolved view.
type ViewDocument struct {
	Breakpoint grid.Breakpoint `json:"breakpoint"`
	Canvas     grid.Canvas     `json:"canvas"`
	Cols       int             `json:"cols"`
	Rows       int             `json:"rows"`
	Items      []ViewItem      `json:"items"`
}

// ViewItem is one placed item. X, Y, W and H are grid cells; PX, PY, PW and
// PH are the same rectangle in pixels.
type ViewItem struct {
	ID         string    `json:"id"`
	Kind       grid.Kind `json:"kind"`
	Label      string    `json:"label"`
	Z          int       `json:"z"`
	X          int       `json:"x"`
	Y          int       `json:"y"`
	W          int       `json:"w"`
	H          int       `json:"h"`
	PX         int       `json:"px"`
	PY         int       `json:"py"`
	PW         int       `json:"pw"`
	PH         int       `json:"ph"`
	Overridden bool      `json:"overridden,omitempty"`

	Ref    *grid.ContentRef `json:"ref,omitempty"`
	Inline *grid.Inline     `json:"inline,omitempty"`
	Block  *grid.Block      `json:"block,omitempty"`
}

// NewViewDocument converts a view into its JSON document form.
func NewViewDocument(view []grid.Placed, c grid.Canvas, bp grid.Breakpoint) ViewDocument {
	doc := ViewDocument{
		Breakpoint: bp,
		Canvas:     c,
		Cols:       c.Cols(),
		Rows:       c.Rows(),
		Items:      make([]ViewItem, 0, len(view)),
	}
	for _, p := range view {
		doc.Items = append(doc.Items, ViewItem{
			ID:         p.Item.ID,
			Kind:       p.Item.Kind,
			Label:      p.Item.Label(),
			Z:          p.Item.Z,
			X:          p.Rect.X,
			Y:          p.Rect.Y,
			W:          p.Rect.W,
			H:          p.Rect.H,
			PX:         c.Pixel(p.Rect.X),
			PY:         c.Pixel(p.Rect.Y),
			PW:         c.Pixel(p.Rect.W),
			PH:         c.Pixel(p.Rect.H),
			Overridden: p.Overridden,
			Ref:        p.Item.Ref,
			Inline:     p.Item.Inline,
			Block:      p.Item.Block,
		})
	}
	return doc
}

// RenderJSON encodes the view as an indented [ViewDocument].
func RenderJSON(view []grid.Placed, c grid.Canvas, bp grid.Breakpoint) ([]byte, error) {
	return json.MarshalIndent(NewViewDocument(view, c, bp), "", "  ")
}
