package grid

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/gridlayout/pkg/errors"
	"github.com/matzehuels/gridlayout/pkg/observability"
)

// ZDirection selects how [Editor.SetZOrder] restacks an item.
type ZDirection string

// Z-order directions.
const (
	ZFront ZDirection = "front"
	ZBack  ZDirection = "back"
	ZUp    ZDirection = "up"
	ZDown  ZDirection = "down"
)

// DefaultZ is the stacking order of newly created items.
const DefaultZ = 1

// ParseZDirection converts a direction name to a [ZDirection].
func ParseZDirection(s string) (ZDirection, error) {
	switch d := ZDirection(s); d {
	case ZFront, ZBack, ZUp, ZDown:
		return d, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "unknown z direction %q (must be front, back, up or down)", s)
}

// ResolveReport summarizes a committed collision-resolution pass.
type ResolveReport struct {
	Breakpoint Breakpoint `json:"breakpoint"`
	Moved      int        `json:"moved"`      // items whose y changed
	Unresolved int        `json:"unresolved"` // items still overlapping at the canvas floor
}

// =============================================================================
// Editor
// =============================================================================

// Editor owns one layout for the duration of an editing session.
//
// All operations are synchronous in-memory mutations that never fail on
// coercible input: out-of-range values are clamped. Every mutation stamps
// the layout's UpdatedAt; none of them persists anything. An Editor is not
// safe for concurrent use; a session has exactly one writer.
type Editor struct {
	layout    *Layout
	selection []string
	previews  map[string]Preview

	now    func() time.Time
	newID  func() string
	suffix func() string
	scan   ScanConfig
	logger *log.Logger
}

// EditorOption configures an [Editor].
type EditorOption func(*Editor)

// WithClock sets the time source used for UpdatedAt stamps and duplicate ids.
func WithClock(now func() time.Time) EditorOption { return func(e *Editor) { e.now = now } }

// WithIDSource sets the generator for fresh item ids.
func WithIDSource(f func() string) EditorOption { return func(e *Editor) { e.newID = f } }

// WithSuffixSource sets the random suffix generator for duplicate ids.
func WithSuffixSource(f func() string) EditorOption { return func(e *Editor) { e.suffix = f } }

// WithScan sets the free-slot scan bounds used by AddItem.
func WithScan(s ScanConfig) EditorOption { return func(e *Editor) { e.scan = s.withDefaults() } }

// WithLogger sets the logger for debug output.
func WithLogger(l *log.Logger) EditorOption { return func(e *Editor) { e.logger = l } }

// NewEditor starts an editing session on l. The editor takes ownership of
// l; callers that need to keep an untouched copy should pass l.Clone().
func NewEditor(l *Layout, opts ...EditorOption) *Editor {
	e := &Editor{
		layout:   l,
		previews: make(map[string]Preview),
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
		suffix:   func() string { return uuid.NewString()[:8] },
		scan:     DefaultScan(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if e.layout.Items == nil {
		e.layout.Items = []Item{}
	}
	return e
}

// Layout returns the layout being edited. The returned pointer is the
// editor's own state; use Clone before handing it to another goroutine.
func (e *Editor) Layout() *Layout { return e.layout }

// Selection returns the ids of the selected items.
func (e *Editor) Selection() []string { return slices.Clone(e.selection) }

// Select replaces the selection with the ids that exist in the layout.
func (e *Editor) Select(ids ...string) {
	e.selection = e.selection[:0]
	for _, id := range ids {
		if e.layout.Has(id) && !slices.Contains(e.selection, id) {
			e.selection = append(e.selection, id)
		}
	}
}

// ClearSelection empties the selection.
func (e *Editor) ClearSelection() { e.selection = nil }

// Item returns a copy of the item with the given id.
func (e *Editor) Item(id string) (Item, bool) { return e.layout.Item(id) }

// touch stamps the layout and reports the mutation.
func (e *Editor) touch(op string) {
	e.layout.UpdatedAt = e.now()
	observability.Editor().OnMutation(e.layout.ID, op, len(e.layout.Items))
}

// =============================================================================
// Item Lifecycle
// =============================================================================

// AddItem creates an item of the given kind at the first free slot and
// selects it. The size comes from the size table unless hint overrides it.
// When no free slot is found the item goes to the origin.
func (e *Editor) AddItem(kind Kind, hint SizeHint) Item {
	c := e.layout.Canvas
	w, h := sizeFor(kind, hint, c)

	x, y, ok := FindFirstFreeSlot(e.rectsAt(Desktop), w, h, c.Cols(), c.Rows(), e.scan)
	if !ok {
		e.logger.Debug("no free slot, placing at origin", "kind", kind, "w", w, "h", h)
	}

	it := Item{
		ID:   e.newID(),
		X:    x,
		Y:    y,
		W:    w,
		H:    h,
		Z:    DefaultZ,
		Kind: kind,
	}
	if kind == KindBlock {
		blockType := hint.BlockType
		if blockType == "" {
			blockType = BlockTextSection
		}
		it.Block = &Block{Type: blockType}
	}
	it = Normalize(it, c)

	e.layout.Items = append(e.layout.Items, it)
	e.selection = []string{it.ID}
	e.touch("add")
	e.logger.Debug("added item", "id", it.ID, "kind", kind, "x", it.X, "y", it.Y, "w", it.W, "h", it.H)
	return it.Clone()
}

// InsertItem appends a fully specified item, normalizing it first. An empty
// or already used id is replaced with a fresh one. The new item is
// selected and returned.
func (e *Editor) InsertItem(it Item) Item {
	if it.ID == "" || e.layout.Has(it.ID) {
		it.ID = e.newID()
	}
	if it.Z == 0 {
		it.Z = DefaultZ
	}
	it = Normalize(it, e.layout.Canvas)
	e.layout.Items = append(e.layout.Items, it)
	e.selection = []string{it.ID}
	e.touch("insert")
	return it.Clone()
}

// DuplicateItems copies each listed item with a new id, offset by one cell
// right and down, and selects the copies. Ids that do not exist are
// skipped.
//
// Copy ids combine the source id, the current time in milliseconds and a
// random suffix. A copy whose origin would coincide with an existing item
// keeps stepping by (+1, +1) so repeated duplication of one source never
// stacks copies exactly on top of each other.
func (e *Editor) DuplicateItems(ids []string) []Item {
	c := e.layout.Canvas
	var copies []Item
	for _, id := range ids {
		src, ok := e.layout.Item(id)
		if !ok {
			continue
		}

		dup := src.Clone()
		dup.ID = e.duplicateID(src.ID)
		dup = Nudge(dup, 1, 1, c)
		for e.originTaken(dup.X, dup.Y) {
			next := Nudge(dup, 1, 1, c)
			if next.X == dup.X && next.Y == dup.Y {
				break
			}
			dup = next
		}

		e.layout.Items = append(e.layout.Items, dup)
		copies = append(copies, dup.Clone())
	}
	if len(copies) == 0 {
		return nil
	}

	e.selection = e.selection[:0]
	for _, it := range copies {
		e.selection = append(e.selection, it.ID)
	}
	e.touch("duplicate")
	e.logger.Debug("duplicated items", "count", len(copies))
	return copies
}

func (e *Editor) duplicateID(sourceID string) string {
	for {
		id := fmt.Sprintf("%s-%d-%s", sourceID, e.now().UnixMilli(), e.suffix())
		if !e.layout.Has(id) {
			return id
		}
	}
}

func (e *Editor) originTaken(x, y int) bool {
	return slices.ContainsFunc(e.layout.Items, func(it Item) bool { return it.X == x && it.Y == y })
}

// DeleteItems removes the listed items, normalizes the survivors, re-packs
// the desktop arrangement and clears the selection. Ids that do not exist
// are ignored. It returns the number of items removed.
func (e *Editor) DeleteItems(ids []string) int {
	before := len(e.layout.Items)
	e.layout.Items = slices.DeleteFunc(e.layout.Items, func(it Item) bool {
		return slices.Contains(ids, it.ID)
	})
	removed := before - len(e.layout.Items)
	for _, id := range ids {
		delete(e.previews, id)
	}
	e.selection = nil
	if removed == 0 {
		return 0
	}

	NormalizeAll(e.layout)
	e.resolve(Desktop)
	e.touch("delete")
	e.logger.Debug("deleted items", "removed", removed, "remaining", len(e.layout.Items))
	return removed
}

// SetZOrder restacks an item. Front moves it above every item; back sets
// it to min(1, lowest-1); up and down step by one with a floor of 1.
// It reports whether the item exists.
func (e *Editor) SetZOrder(id string, dir ZDirection) bool {
	i := e.layout.Index(id)
	if i < 0 {
		return false
	}

	it := &e.layout.Items[i]
	switch dir {
	case ZFront:
		top := it.Z
		for _, other := range e.layout.Items {
			top = max(top, other.Z)
		}
		it.Z = top + 1
	case ZBack:
		bottom := it.Z
		for _, other := range e.layout.Items {
			bottom = min(bottom, other.Z)
		}
		it.Z = min(1, bottom-1)
	case ZUp:
		it.Z = max(it.Z+1, 1)
	case ZDown:
		it.Z = max(it.Z-1, 1)
	default:
		return false
	}
	e.touch("z:" + string(dir))
	return true
}

// =============================================================================
// Geometry
// =============================================================================

// MoveItem sets an item's origin at a breakpoint and normalizes it.
// Desktop moves change the base; tablet and mobile moves write the
// override, seeding it from the inherited geometry.
func (e *Editor) MoveItem(id string, bp Breakpoint, x, y int) bool {
	return e.editGeometry(id, bp, "move", func(o Override) Override {
		o.X, o.Y = x, y
		return o
	})
}

// ResizeItem sets an item's span at a breakpoint and normalizes it.
func (e *Editor) ResizeItem(id string, bp Breakpoint, w, h int) bool {
	return e.editGeometry(id, bp, "resize", func(o Override) Override {
		o.W, o.H = w, h
		return o
	})
}

// NudgeItem moves an item by (dx, dy) cells at a breakpoint.
func (e *Editor) NudgeItem(id string, bp Breakpoint, dx, dy int) bool {
	return e.editGeometry(id, bp, "nudge", func(o Override) Override {
		o.X += dx
		o.Y += dy
		return o
	})
}

// NudgeSelection nudges every selected item.
func (e *Editor) NudgeSelection(bp Breakpoint, dx, dy int) {
	for _, id := range e.selection {
		e.NudgeItem(id, bp, dx, dy)
	}
}

// SetOverride records explicit geometry and visibility for bp. On desktop
// it updates the base geometry.
func (e *Editor) SetOverride(id string, bp Breakpoint, o Override) bool {
	return e.editGeometry(id, bp, "override", func(Override) Override { return o })
}

// ClearOverride returns the item to the inherited state at bp.
func (e *Editor) ClearOverride(id string, bp Breakpoint) bool {
	i := e.layout.Index(id)
	if i < 0 {
		return false
	}
	e.layout.Items[i] = ClearOverride(e.layout.Items[i], bp)
	e.touch("clear-override")
	return true
}

// SetVisible hides or shows an item at a tablet or mobile breakpoint,
// keeping its stored geometry. Desktop visibility cannot change; the call
// reports false for it.
func (e *Editor) SetVisible(id string, bp Breakpoint, visible bool) bool {
	if bp == Desktop {
		return false
	}
	return e.editGeometry(id, bp, "visibility", func(o Override) Override {
		o.Visible = visible
		return o
	})
}

func (e *Editor) editGeometry(id string, bp Breakpoint, op string, edit func(Override) Override) bool {
	i := e.layout.Index(id)
	if i < 0 {
		return false
	}
	it := e.layout.Items[i]
	o := edit(ResolvePosition(it, bp))
	e.layout.Items[i] = Normalize(SetOverride(it, bp, o), e.layout.Canvas)
	e.touch(op)
	return true
}

// Content is what an item displays. Only the field matching the item's
// kind is used.
type Content struct {
	Ref         *ContentRef
	Inline      *Inline
	BlockConfig map[string]any
}

// SetContent replaces what an item displays. Content fields that do not
// match the item's kind are cleared. Changing a content reference drops
// the item's preview.
func (e *Editor) SetContent(id string, c Content) bool {
	i := e.layout.Index(id)
	if i < 0 {
		return false
	}
	it := &e.layout.Items[i]
	it.Ref, it.Inline = nil, nil
	switch it.Kind {
	case KindContentRef:
		if c.Ref != nil {
			ref := *c.Ref
			it.Ref = &ref
		}
		delete(e.previews, id)
	case KindText, KindImage:
		if c.Inline != nil {
			in := *c.Inline
			it.Inline = &in
		}
	case KindBlock:
		if it.Block == nil {
			it.Block = &Block{Type: BlockTextSection}
		}
		it.Block.Config = maps.Clone(c.BlockConfig)
	}
	e.touch("content")
	return true
}

// =============================================================================
// Layout-wide Edits
// =============================================================================

// SetCanvas replaces the canvas and re-normalizes every item.
func (e *Editor) SetCanvas(c Canvas) error {
	if err := c.Validate(); err != nil {
		return err
	}
	e.layout.Canvas = c
	NormalizeAll(e.layout)
	e.touch("canvas")
	return nil
}

// SetStyle replaces the styling record after validating its colors.
func (e *Editor) SetStyle(s Style) error {
	if err := errors.ValidateColor(s.Background); err != nil {
		return err
	}
	if err := errors.ValidateColor(s.TextColor); err != nil {
		return err
	}
	e.layout.Style = s
	e.touch("style")
	return nil
}

// Resolve commits a collision-resolution pass for bp. Items hidden at bp
// are left alone. Desktop results go to the base geometry; tablet and
// mobile results are written as overrides, and only for items that move.
func (e *Editor) Resolve(bp Breakpoint) ResolveReport {
	report := e.resolve(bp)
	e.touch("resolve")
	return report
}

func (e *Editor) resolve(bp Breakpoint) ResolveReport {
	report := ResolveReport{Breakpoint: bp}

	var idx []int
	var rects []Rect
	for i, it := range e.layout.Items {
		pos := ResolvePosition(it, bp)
		if !pos.Visible {
			continue
		}
		idx = append(idx, i)
		rects = append(rects, clampToCanvas(pos.Rect(), e.layout.Canvas))
	}

	resolved := ResolveOverlaps(rects, e.layout.Canvas.Rows())
	for k, r := range resolved {
		if r == rects[k] {
			continue
		}
		i := idx[k]
		it := e.layout.Items[i]
		o := ResolvePosition(it, bp).withRect(r)
		e.layout.Items[i] = Normalize(SetOverride(it, bp, o), e.layout.Canvas)
		report.Moved++
	}
	report.Unresolved = CountOverlapping(resolved)

	observability.Editor().OnResolve(e.layout.ID, string(bp), report.Moved, report.Unresolved)
	if report.Unresolved > 0 {
		e.logger.Warn("canvas too small to separate all items", "breakpoint", bp, "overlapping", report.Unresolved)
	}
	return report
}

// rectsAt returns the geometry of every item visible at bp.
func (e *Editor) rectsAt(bp Breakpoint) []Rect {
	var rects []Rect
	for _, it := range e.layout.Items {
		if pos := ResolvePosition(it, bp); pos.Visible {
			rects = append(rects, pos.Rect())
		}
	}
	return rects
}

// =============================================================================
// Asset Previews
// =============================================================================

// ApplyPreview attaches fetched asset content to an item. Results for
// items that no longer exist are discarded and reported as false, so late
// fetches cannot resurrect deleted items.
func (e *Editor) ApplyPreview(itemID string, p Preview) bool {
	if !e.layout.Has(itemID) {
		return false
	}
	e.previews[itemID] = p
	return true
}

// Preview returns the asset content attached to an item, if any.
func (e *Editor) Preview(itemID string) (Preview, bool) {
	p, ok := e.previews[itemID]
	return p, ok
}
