package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridlayout/pkg/errors"
	"github.com/matzehuels/gridlayout/pkg/grid"
)

// overrideCommand creates the "override" command group.
func (c *CLI) overrideCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "override",
		Short: "Manage per-breakpoint item geometry",
		Long: `Manage tablet and mobile overrides. An item without an override at a
breakpoint inherits its desktop geometry and is visible.`,
	}
	cmd.AddCommand(c.overrideSetCommand())
	cmd.AddCommand(c.overrideClearCommand())
	cmd.AddCommand(c.visibilityCommand("hide", false))
	cmd.AddCommand(c.visibilityCommand("show", true))
	return cmd
}

// breakpointArg parses a tablet or mobile breakpoint flag.
func breakpointArg(name string) (grid.Breakpoint, error) {
	bp, err := grid.ParseBreakpoint(name)
	if err != nil {
		return "", err
	}
	if bp == grid.Desktop {
		return "", errors.New(errors.ErrCodeInvalidBreakpoint, "desktop is the base geometry and has no override (use move or resize)")
	}
	return bp, nil
}

func (c *CLI) overrideSetCommand() *cobra.Command {
	var (
		bpName     string
		x, y, w, h int
		hidden     bool
	)
	cmd := &cobra.Command{
		Use:   "set <layout-id> <item-id>",
		Short: "Record explicit geometry at a breakpoint",
		Long: `Record explicit geometry at a breakpoint. Flags left unset keep the
geometry the item currently has at that breakpoint.`,
		Example: `  gridlayout override set home hero -b mobile --w 20 --h 8`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bp, err := breakpointArg(bpName)
			if err != nil {
				return err
			}
			layoutID, itemID := args[0], args[1]
			flags := cmd.Flags()

			var pos grid.Override
			_, err = c.editLayout(cmd.Context(), layoutID, func(ed *grid.Editor) error {
				it, ok := ed.Item(itemID)
				if !ok {
					return itemNotFound(layoutID, itemID)
				}
				o := grid.ResolvePosition(it, bp)
				if flags.Changed("x") {
					o.X = x
				}
				if flags.Changed("y") {
					o.Y = y
				}
				if flags.Changed("w") {
					o.W = w
				}
				if flags.Changed("h") {
					o.H = h
				}
				if flags.Changed("hidden") {
					o.Visible = !hidden
				}
				ed.SetOverride(itemID, bp, o)
				it, _ = ed.Item(itemID)
				pos = grid.ResolvePosition(it, bp)
				return nil
			})
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printSuccess(out, "%s at %s: %s", itemID, bp, formatRect(pos.Rect()))
			if !pos.Visible {
				printDetail(out, "hidden at %s", bp)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&bpName, "breakpoint", "b", "mobile", "breakpoint (tablet, mobile)")
	cmd.Flags().IntVar(&x, "x", 0, "column")
	cmd.Flags().IntVar(&y, "y", 0, "row")
	cmd.Flags().IntVar(&w, "w", 0, "width in cells")
	cmd.Flags().IntVar(&h, "h", 0, "height in cells")
	cmd.Flags().BoolVar(&hidden, "hidden", false, "hide the item at this breakpoint")
	return cmd
}

func (c *CLI) overrideClearCommand() *cobra.Command {
	var bpName string
	cmd := &cobra.Command{
		Use:   "clear <layout-id> <item-id>...",
		Short: "Return items to their desktop geometry at a breakpoint",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bp, err := breakpointArg(bpName)
			if err != nil {
				return err
			}
			layoutID, ids := args[0], args[1:]
			_, err = c.editLayout(cmd.Context(), layoutID, func(ed *grid.Editor) error {
				for _, id := range ids {
					if !ed.ClearOverride(id, bp) {
						return itemNotFound(layoutID, id)
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			printSuccess(cmd.OutOrStdout(), "Cleared %s overrides on %d items", bp, len(ids))
			return nil
		},
	}
	cmd.Flags().StringVarP(&bpName, "breakpoint", "b", "mobile", "breakpoint (tablet, mobile)")
	return cmd
}

func (c *CLI) visibilityCommand(use string, visible bool) *cobra.Command {
	var bpName string
	short := "Hide items at a breakpoint"
	if visible {
		short = "Show hidden items at a breakpoint"
	}
	cmd := &cobra.Command{
		Use:   use + " <layout-id> <item-id>...",
		Short: short,
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bp, err := breakpointArg(bpName)
			if err != nil {
				return err
			}
			layoutID, ids := args[0], args[1:]
			_, err = c.editLayout(cmd.Context(), layoutID, func(ed *grid.Editor) error {
				for _, id := range ids {
					if !ed.SetVisible(id, bp, visible) {
						return itemNotFound(layoutID, id)
					}
				}
				return nil
			})
			if err != nil {
				return err
			}
			state := "hidden"
			if visible {
				state = "visible"
			}
			printSuccess(cmd.OutOrStdout(), "%d items %s at %s", len(ids), state, bp)
			return nil
		},
	}
	cmd.Flags().StringVarP(&bpName, "breakpoint", "b", "mobile", "breakpoint (tablet, mobile)")
	return cmd
}

// resolveCommand creates the "resolve" command.
func (c *CLI) resolveCommand() *cobra.Command {
	var (
		bpName string
		all    bool
	)
	cmd := &cobra.Command{
		Use:   "resolve <layout-id>",
		Short: "Push overlapping items down until nothing overlaps",
		Long: `Commit a collision-resolution pass. Items are visited in insertion order
and pushed down below anything earlier that they overlap. On tablet and
mobile only the items that move get an override.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bps := grid.Breakpoints
			if !all {
				bp, err := grid.ParseBreakpoint(bpName)
				if err != nil {
					return err
				}
				bps = []grid.Breakpoint{bp}
			}

			var reports []grid.ResolveReport
			_, err := c.editLayout(cmd.Context(), args[0], func(ed *grid.Editor) error {
				for _, bp := range bps {
					reports = append(reports, ed.Resolve(bp))
				}
				return nil
			})
			if err != nil {
				return err
			}
			for _, r := range reports {
				printReport(cmd.OutOrStdout(), r)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&bpName, "breakpoint", "b", "desktop", "breakpoint (desktop, tablet, mobile)")
	cmd.Flags().BoolVar(&all, "all", false, "resolve every breakpoint")
	return cmd
}
