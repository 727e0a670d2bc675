package grid

// SizeHint customizes the size of a newly added item. Zero fields fall back
// to the size table.
type SizeHint struct {
	BlockType string // block type for structural blocks (hero, media-grid, ...)
	W, H      int    // explicit span in cells
}

// defaultSizes holds default spans in cells, keyed by block type or kind.
var defaultSizes = map[string]Rect{
	BlockHero:              {W: 30, H: 10},
	BlockMediaGrid:         {W: 24, H: 12},
	BlockTextSection:       {W: 20, H: 6},
	BlockSpacer:            {W: 20, H: 2},
	string(KindText):       {W: 10, H: 4},
	string(KindImage):      {W: 10, H: 8},
	string(KindContentRef): {W: 12, H: 8},
}

// DefaultSize returns the default span for an item of the given kind. For
// structural blocks, blockType selects the row in the size table; unknown
// block types size like a text section.
func DefaultSize(kind Kind, blockType string) (w, h int) {
	key := string(kind)
	if kind == KindBlock {
		key = blockType
		if _, ok := defaultSizes[key]; !ok {
			key = BlockTextSection
		}
	}
	r, ok := defaultSizes[key]
	if !ok {
		r = defaultSizes[string(KindContentRef)]
	}
	return r.W, r.H
}

// sizeFor resolves a hint against the size table and the canvas. Table
// sizes larger than the canvas shrink to fit; explicit sizes are kept.
func sizeFor(kind Kind, hint SizeHint, c Canvas) (w, h int) {
	w, h = DefaultSize(kind, hint.BlockType)
	w = min(w, max(c.Cols(), 1))
	h = min(h, max(c.Rows(), 1))
	if hint.W > 0 {
		w = hint.W
	}
	if hint.H > 0 {
		h = hint.H
	}
	return w, h
}
