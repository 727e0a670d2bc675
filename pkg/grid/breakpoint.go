package grid

import (
	"strings"

	"github.com/matzehuels/gridlayout/pkg/errors"
)

// Breakpoint names a viewport class with its own optional item geometry.
type Breakpoint string

// Breakpoints. Desktop is the base state and has no override slot.
const (
	Desktop Breakpoint = "desktop"
	Tablet  Breakpoint = "tablet"
	Mobile  Breakpoint = "mobile"
)

// Breakpoints lists all breakpoints from widest to narrowest.
var Breakpoints = []Breakpoint{Desktop, Tablet, Mobile}

// ParseBreakpoint converts a name to a [Breakpoint]. The empty string
// selects [Desktop].
func ParseBreakpoint(s string) (Breakpoint, error) {
	switch Breakpoint(strings.ToLower(strings.TrimSpace(s))) {
	case "", Desktop:
		return Desktop, nil
	case Tablet:
		return Tablet, nil
	case Mobile:
		return Mobile, nil
	}
	return "", errors.New(errors.ErrCodeInvalidBreakpoint, "unknown breakpoint %q (must be desktop, tablet or mobile)", s)
}

// String implements fmt.Stringer.
func (b Breakpoint) String() string { return string(b) }

// ResolvePosition returns the geometry and visibility of an item at the
// given breakpoint: the recorded override if there is one, otherwise the
// base rectangle, visible.
func ResolvePosition(it Item, bp Breakpoint) Override {
	if bp != Desktop {
		if o, ok := it.Overrides[bp]; ok {
			return o
		}
	}
	return Override{X: it.X, Y: it.Y, W: it.W, H: it.H, Visible: true}
}

// IsOverridden reports whether the item has its own geometry at bp.
func IsOverridden(it Item, bp Breakpoint) bool {
	if bp == Desktop {
		return false
	}
	_, ok := it.Overrides[bp]
	return ok
}

// SetOverride records o for bp and returns the updated item. Desktop writes
// go to the base fields (visibility is ignored there); tablet and mobile
// writes replace any previous override and never touch the base.
func SetOverride(it Item, bp Breakpoint, o Override) Item {
	out := it.Clone()
	if bp == Desktop {
		out.setRect(o.Rect())
		return out
	}
	if out.Overrides == nil {
		out.Overrides = make(map[Breakpoint]Override, 2)
	}
	out.Overrides[bp] = o
	return out
}

// ClearOverride returns the item to the inherited state at bp. Other
// breakpoints are unaffected. Clearing desktop is a no-op.
func ClearOverride(it Item, bp Breakpoint) Item {
	if bp == Desktop || it.Overrides == nil {
		return it
	}
	out := it.Clone()
	delete(out.Overrides, bp)
	if len(out.Overrides) == 0 {
		out.Overrides = nil
	}
	return out
}
