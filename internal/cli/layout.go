package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/gridlayout/pkg/asset"
	"github.com/matzehuels/gridlayout/pkg/errors"
	"github.com/matzehuels/gridlayout/pkg/grid"
	"github.com/matzehuels/gridlayout/pkg/storage"
)

// previewTimeout bounds how long `show --previews` waits for the asset service.
const previewTimeout = 10 * time.Second

// newCommand creates the "new" command.
func (c *CLI) newCommand() *cobra.Command {
	var (
		name                    string
		width, height, cellSize int
		force                   bool
	)
	cmd := &cobra.Command{
		Use:   "new <layout-id>",
		Short: "Create an empty layout",
		Long:  `Create an empty layout. Canvas size defaults to the [canvas] section of the config file.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := args[0]
			if err := errors.ValidateLayoutID(id); err != nil {
				return err
			}
			cc := c.cfg.Canvas
			if cmd.Flags().Changed("width") {
				cc.Width = width
			}
			if cmd.Flags().Changed("height") {
				cc.Height = height
			}
			if cmd.Flags().Changed("cell") {
				cc.CellSize = cellSize
			}
			canvas, err := cc.Grid()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			if !force {
				if _, err := store.Get(ctx, id); err == nil {
					return errors.New(errors.ErrCodeInvalidInput, "layout %q already exists (use --force to replace it)", id)
				} else if !storage.IsNotFound(err) {
					return err
				}
			}

			l := grid.NewLayout(id, canvas)
			l.Name = name
			if _, err := store.Save(ctx, l); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSuccess(out, "Created layout %s", StyleHighlight.Render(id))
			printDetail(out, "%dx%d px, %d px cells (%d cols x %d rows)", canvas.Width, canvas.Height, canvas.CellSize, canvas.Cols(), canvas.Rows())
			printNextStep(out, "Add an item", fmt.Sprintf("%s add %s block --type hero", appName, id))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().IntVar(&width, "width", 0, "canvas width in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "canvas height in pixels")
	cmd.Flags().IntVar(&cellSize, "cell", 0, "grid cell size in pixels")
	cmd.Flags().BoolVar(&force, "force", false, "replace an existing layout")
	return cmd
}

// showCommand creates the "show" command.
func (c *CLI) showCommand() *cobra.Command {
	var (
		bpName   string
		asJSON   bool
		previews bool
		filter   asset.Filter
		page     asset.Page
	)
	cmd := &cobra.Command{
		Use:   "show <layout-id>",
		Short: "Show a layout and its items",
		Long: `Show a layout and its items at a breakpoint. Positions marked with * come
from a breakpoint override. Items are listed in paint order.

With --previews, content references are resolved against the asset service
and the resolved previews can be filtered by content type or id prefix and
paged with --page and --page-size.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bp, err := grid.ParseBreakpoint(bpName)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			l, err := c.loadLayout(ctx, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(l)
			}

			title := l.ID
			if l.Name != "" {
				title = fmt.Sprintf("%s (%s)", l.Name, l.ID)
			}
			fmt.Fprintln(out, StyleTitle.Render(title))
			printKeyValue(out, "Canvas", fmt.Sprintf("%dx%d px, %d cols x %d rows", l.Canvas.Width, l.Canvas.Height, l.Canvas.Cols(), l.Canvas.Rows()))
			printKeyValue(out, "Breakpoint", bp.String())
			printKeyValue(out, "Items", fmt.Sprint(len(l.Items)))
			printKeyValue(out, "Updated", formatRelativeTime(l.UpdatedAt))
			if len(l.Items) == 0 {
				return nil
			}
			fmt.Fprintln(out, itemTable(l, bp))

			if previews {
				return c.showPreviews(ctx, cmd, l, filter, page)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&bpName, "breakpoint", "b", "desktop", "breakpoint (desktop, tablet, mobile)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the stored document as JSON")
	cmd.Flags().BoolVar(&previews, "previews", false, "resolve content-reference previews from the asset service")
	cmd.Flags().StringVar(&filter.ContentType, "content-type", "", "only list previews of this content type")
	cmd.Flags().StringVar(&filter.Prefix, "prefix", "", "only list previews whose ref id has this prefix")
	cmd.Flags().IntVar(&page.Number, "page", 0, "zero-based preview page")
	cmd.Flags().IntVar(&page.Size, "page-size", 0, "previews per page (0 lists all)")
	return cmd
}

// showPreviews resolves previews for every content-reference item and
// lists the ones selected by filter and page. A failed lookup leaves only
// its own item without a preview.
func (c *CLI) showPreviews(ctx context.Context, cmd *cobra.Command, l *grid.Layout, filter asset.Filter, page asset.Page) error {
	out := cmd.OutOrStdout()
	bc, err := c.openCache(ctx)
	if err != nil {
		return err
	}
	defer bc.Close()
	client := c.newAssetClient(bc)
	if client == nil {
		printWarning(out, "No asset service configured (set [assets] base_url)")
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, previewTimeout)
	defer cancel()

	ed := c.newEditor(l)
	spinner := newSpinner(ctx, cmd.ErrOrStderr(), "Resolving previews...")
	spinner.Start()
	n := asset.Apply(ed, asset.NewLoader(client).Load(ctx, l.Items))
	spinner.Stop()

	resolved := asset.NewCache()
	var refs int
	var missing []string
	for _, it := range l.Items {
		if it.Kind != grid.KindContentRef || it.Ref == nil {
			continue
		}
		refs++
		if p, ok := ed.Preview(it.ID); ok {
			resolved.Merge([]asset.Entry{{RefID: it.Ref.ID, Preview: p}})
		} else {
			missing = append(missing, it.Ref.ID)
		}
	}

	for _, e := range asset.DeriveView(resolved, filter, page) {
		printKeyValue(out, e.RefID, StyleLink.Render(e.Preview.URL)+" "+StyleDim.Render(e.Preview.ContentType))
	}
	for _, id := range missing {
		printKeyValue(out, id, StyleDim.Render("no preview"))
	}
	printDetail(out, "%d of %d references resolved", n, refs)
	return nil
}

// listCommand creates the "list" command.
func (c *CLI) listCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List stored layouts",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			list, err := store.List(ctx)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(list) == 0 {
				printInfo(out, "No layouts")
				printNextStep(out, "Create one", appName+" new <layout-id>")
				return nil
			}
			fmt.Fprintln(out, summaryTable(list))
			return nil
		},
	}
}

// rmCommand creates the "rm" command.
func (c *CLI) rmCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <layout-id>...",
		Short: "Delete layouts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := c.openStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			for _, id := range args {
				if err := store.Delete(ctx, id); err != nil {
					return err
				}
				printSuccess(cmd.OutOrStdout(), "Deleted %s", id)
			}
			return nil
		},
	}
}
