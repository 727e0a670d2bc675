// Package grid is the layout engine: a fixed-size canvas divided into square
// cells, rectangular items placed on it, and the rules that keep them tidy.
//
// # Overview
//
// A [Layout] holds a [Canvas], an ordered list of [Item] values and a
// [Style]. Item geometry is stored in grid cells; [Normalize] additionally
// records it as canvas fractions so consumers with a different pixel size can
// reproduce the arrangement. Item order is insertion order and is
// significant: it breaks ties in collision resolution and z-order.
//
// # Placement
//
// New items go to the first free slot found by [FindFirstFreeSlot], a bounded
// row-major scan governed by [ScanConfig]. When nothing is free the item is
// placed at the origin and the overlap is accepted.
//
// [ResolveOverlaps] separates overlapping items by pushing later ones
// straight down below earlier ones. The canvas height is a hard ceiling; if
// the canvas is too small some items stay overlapped at its floor, and
// [Editor.Resolve] reports how many.
//
// # Breakpoints
//
// The base geometry is the [Desktop] arrangement. [Tablet] and [Mobile] may
// carry an [Override] per item with its own position, size and visibility.
// Without one, an item inherits the desktop geometry ([ResolvePosition]).
//
// # Editing
//
// An [Editor] owns one layout for a session and exposes the lifecycle
// operations: add, duplicate, delete, move, resize, nudge, restack and
// override. Edits never fail on coercible input; out-of-range values are
// clamped. No operation persists anything; saving is the caller's job.
//
//	l := grid.NewLayout("home", grid.Canvas{Width: 1200, Height: 800, CellSize: 20})
//	ed := grid.NewEditor(l)
//	hero := ed.AddItem(grid.KindBlock, grid.SizeHint{BlockType: grid.BlockHero})
//	ed.NudgeItem(hero.ID, grid.Mobile, 0, 2)
//	placed := grid.View(ed.Layout(), grid.Mobile)
//
// # Concurrency
//
// Nothing in this package locks. A [Layout] and its [Editor] belong to a
// single editing session; clone the layout before sharing it.
package grid
