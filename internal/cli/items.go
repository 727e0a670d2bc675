package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridlayout/pkg/errors"
	"github.com/matzehuels/gridlayout/pkg/grid"
)

// addCommand creates the "add" command.
func (c *CLI) addCommand() *cobra.Command {
	var (
		blockType   string
		w, h        int
		ref         string
		contentType string
		text        string
		imageURL    string
		alt         string
		settings    []string
	)
	cmd := &cobra.Command{
		Use:   "add <layout-id> <kind>",
		Short: "Add an item at the first free slot",
		Long: `Add an item at the first free slot in the desktop arrangement.

Kinds are ref (content-reference), text (inline-text), image (inline-image)
and block (structural-block). Block types are ` + strings.Join(grid.BlockTypes, ", ") + `;
other types size like a text section. Sizes default to the size table for
the kind. Block config is set with repeated --set key=value.`,
		Example: `  gridlayout add home block --type hero
  gridlayout add home text --text "Welcome" --w 12 --h 3
  gridlayout add home ref --ref asset-42
  gridlayout add home block --type media-grid --set columns=3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := grid.ParseKind(args[1])
			if err != nil {
				return err
			}
			blockConfig, err := parseConfigPairs(settings)
			if err != nil {
				return err
			}

			var added grid.Item
			_, err = c.editLayout(cmd.Context(), args[0], func(ed *grid.Editor) error {
				added = ed.AddItem(kind, grid.SizeHint{BlockType: blockType, W: w, H: h})
				content := grid.Content{BlockConfig: blockConfig}
				switch kind {
				case grid.KindContentRef:
					if ref != "" {
						content.Ref = &grid.ContentRef{ID: ref, ContentType: contentType}
					}
				case grid.KindText, grid.KindImage:
					if text != "" || imageURL != "" || alt != "" {
						content.Inline = &grid.Inline{Text: text, ImageURL: imageURL, Alt: alt}
					}
				}
				ed.SetContent(added.ID, content)
				added, _ = ed.Item(added.ID)
				return nil
			})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSuccess(out, "Added %s %s", shortKind(added.Kind), StyleHighlight.Render(added.ID))
			printDetail(out, "at (%d, %d) size %dx%d", added.X, added.Y, added.W, added.H)
			return nil
		},
	}
	cmd.Flags().StringVar(&blockType, "type", "", "block type for structural blocks ("+strings.Join(grid.BlockTypes, ", ")+")")
	cmd.Flags().IntVar(&w, "w", 0, "width in cells")
	cmd.Flags().IntVar(&h, "h", 0, "height in cells")
	cmd.Flags().StringVar(&ref, "ref", "", "asset id for content references")
	cmd.Flags().StringVar(&contentType, "content-type", "", "asset content type for content references")
	cmd.Flags().StringVar(&text, "text", "", "text for inline items")
	cmd.Flags().StringVar(&imageURL, "image", "", "image URL for inline images")
	cmd.Flags().StringVar(&alt, "alt", "", "alt text for inline images")
	cmd.Flags().StringArrayVar(&settings, "set", nil, "block config as key=value (repeatable)")
	return cmd
}

// moveCommand creates the "move" command.
func (c *CLI) moveCommand() *cobra.Command {
	return c.geometryCommand("move <layout-id> <item-id> <x> <y>", "Move an item to a cell",
		func(ed *grid.Editor, id string, bp grid.Breakpoint, a, b int) bool { return ed.MoveItem(id, bp, a, b) })
}

// resizeCommand creates the "resize" command.
func (c *CLI) resizeCommand() *cobra.Command {
	return c.geometryCommand("resize <layout-id> <item-id> <w> <h>", "Resize an item in cells",
		func(ed *grid.Editor, id string, bp grid.Breakpoint, a, b int) bool { return ed.ResizeItem(id, bp, a, b) })
}

// geometryCommand builds the shared shape of move and resize: two integer
// arguments applied at a breakpoint. Values are clamped to the canvas.
func (c *CLI) geometryCommand(use, short string, apply func(*grid.Editor, string, grid.Breakpoint, int, int) bool) *cobra.Command {
	var bpName string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Long: short + `. On tablet and mobile the change is recorded as a breakpoint
override and the desktop geometry is left untouched. Out-of-range values
are clamped to the canvas.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			bp, err := grid.ParseBreakpoint(bpName)
			if err != nil {
				return err
			}
			a, b, err := parseIntPair(args[2], args[3])
			if err != nil {
				return err
			}
			layoutID, itemID := args[0], args[1]

			var pos grid.Override
			_, err = c.editLayout(cmd.Context(), layoutID, func(ed *grid.Editor) error {
				if !apply(ed, itemID, bp, a, b) {
					return itemNotFound(layoutID, itemID)
				}
				it, _ := ed.Item(itemID)
				pos = grid.ResolvePosition(it, bp)
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "%s at %s: (%d, %d) size %dx%d", itemID, bp, pos.X, pos.Y, pos.W, pos.H)
			return nil
		},
	}
	cmd.Flags().StringVarP(&bpName, "breakpoint", "b", "desktop", "breakpoint (desktop, tablet, mobile)")
	return cmd
}

// nudgeCommand creates the "nudge" command.
func (c *CLI) nudgeCommand() *cobra.Command {
	var (
		bpName string
		dx, dy int
	)
	cmd := &cobra.Command{
		Use:   "nudge <layout-id> <item-id>...",
		Short: "Shift items by whole cells",
		Example: `  gridlayout nudge home hero --dx 2
  gridlayout nudge home a b --dy -1 -b mobile`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bp, err := grid.ParseBreakpoint(bpName)
			if err != nil {
				return err
			}
			layoutID, ids := args[0], args[1:]
			_, err = c.editLayout(cmd.Context(), layoutID, func(ed *grid.Editor) error {
				if err := requireItems(ed, ids...); err != nil {
					return err
				}
				ed.Select(ids...)
				ed.NudgeSelection(bp, dx, dy)
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Nudged %d items by (%d, %d) at %s", len(ids), dx, dy, bp)
			return nil
		},
	}
	cmd.Flags().StringVarP(&bpName, "breakpoint", "b", "desktop", "breakpoint (desktop, tablet, mobile)")
	cmd.Flags().IntVar(&dx, "dx", 0, "columns to move (negative moves left)")
	cmd.Flags().IntVar(&dy, "dy", 0, "rows to move (negative moves up)")
	return cmd
}

// duplicateCommand creates the "duplicate" command.
func (c *CLI) duplicateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "duplicate <layout-id> <item-id>...",
		Aliases: []string{"dup"},
		Short:   "Copy items one cell right and down",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			layoutID, ids := args[0], args[1:]
			var copies []grid.Item
			_, err := c.editLayout(cmd.Context(), layoutID, func(ed *grid.Editor) error {
				if err := requireItems(ed, ids...); err != nil {
					return err
				}
				copies = ed.DuplicateItems(ids)
				return nil
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, it := range copies {
				printSuccess(out, "Copied to %s at (%d, %d)", StyleHighlight.Render(it.ID), it.X, it.Y)
			}
			return nil
		},
	}
}

// deleteCommand creates the "delete" command.
func (c *CLI) deleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <layout-id> <item-id>...",
		Short: "Delete items and re-pack the desktop arrangement",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			layoutID, ids := args[0], args[1:]
			var removed int
			_, err := c.editLayout(cmd.Context(), layoutID, func(ed *grid.Editor) error {
				removed = ed.DeleteItems(ids)
				return nil
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printSuccess(out, "Deleted %d items", removed)
			if skipped := len(ids) - removed; skipped > 0 {
				printDetail(out, "%d ids not found", skipped)
			}
			return nil
		},
	}
}

// zCommand creates the "z" command.
func (c *CLI) zCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "z <layout-id> <item-id> <front|back|up|down>",
		Short:     "Change an item's stacking order",
		Args:      cobra.ExactArgs(3),
		ValidArgs: []string{"front", "back", "up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := grid.ParseZDirection(args[2])
			if err != nil {
				return err
			}
			layoutID, itemID := args[0], args[1]
			var z int
			_, err = c.editLayout(cmd.Context(), layoutID, func(ed *grid.Editor) error {
				if !ed.SetZOrder(itemID, dir) {
					return itemNotFound(layoutID, itemID)
				}
				it, _ := ed.Item(itemID)
				z = it.Z
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "%s z=%d", itemID, z)
			return nil
		},
	}
}

// =============================================================================
// Argument Parsing
// =============================================================================

func parseIntPair(a, b string) (int, int, error) {
	x, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "not an integer: %q", a)
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, errors.New(errors.ErrCodeInvalidInput, "not an integer: %q", b)
	}
	return x, y, nil
}

// parseConfigPairs turns key=value flags into a block config map. Values
// that parse as integers, floats or booleans keep that type.
func parseConfigPairs(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "--set %q must be key=value", p)
		}
		out[k] = configValue(v)
	}
	return out, nil
}

func configValue(v string) any {
	if i, err := strconv.Atoi(v); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(v); err == nil {
		return b
	}
	return v
}

func formatRect(r grid.Rect) string {
	return fmt.Sprintf("(%d, %d) %dx%d", r.X, r.Y, r.W, r.H)
}
