package grid

import (
	"slices"
	"time"
)

// Style is the layout-wide styling record.
type Style struct {
	ThemeID    string `json:"theme_id,omitempty" bson:"theme_id,omitempty"`
	Background string `json:"background,omitempty" bson:"background,omitempty"`
	TextColor  string `json:"text_color,omitempty" bson:"text_color,omitempty"`
	FontFamily string `json:"font_family,omitempty" bson:"font_family,omitempty"`
}

// Layout is the whole persisted document: a canvas, the ordered items and
// styling. Item order is insertion order and is significant for
// deterministic collision resolution and z-order ties.
type Layout struct {
	ID        string    `json:"id" bson:"_id"`
	Name      string    `json:"name,omitempty" bson:"name,omitempty"`
	Canvas    Canvas    `json:"canvas" bson:"canvas"`
	Items     []Item    `json:"items" bson:"items"`
	Style     Style     `json:"style" bson:"style"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// NewLayout creates an empty layout on the given canvas.
func NewLayout(id string, c Canvas) *Layout {
	now := time.Now().UTC()
	return &Layout{
		ID:        id,
		Canvas:    c,
		Items:     []Item{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Index returns the position of the item with the given id, or -1.
func (l *Layout) Index(id string) int {
	return slices.IndexFunc(l.Items, func(it Item) bool { return it.ID == id })
}

// Has reports whether an item with the given id exists.
func (l *Layout) Has(id string) bool { return l.Index(id) >= 0 }

// Item returns a copy of the item with the given id.
func (l *Layout) Item(id string) (Item, bool) {
	if i := l.Index(id); i >= 0 {
		return l.Items[i].Clone(), true
	}
	return Item{}, false
}

// Clone returns a deep copy of the layout.
func (l *Layout) Clone() *Layout {
	if l == nil {
		return nil
	}
	out := *l
	out.Items = make([]Item, len(l.Items))
	for i, it := range l.Items {
		out.Items[i] = it.Clone()
	}
	return &out
}
