package cli

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridlayout/pkg/config"
	"github.com/matzehuels/gridlayout/pkg/errors"
	"github.com/matzehuels/gridlayout/pkg/grid"
	"github.com/matzehuels/gridlayout/pkg/render"
)

// watchDebounce coalesces the bursts of events a single save produces.
const watchDebounce = 150 * time.Millisecond

// renderFlags holds the flags of the render command.
type renderFlags struct {
	output     string
	format     string
	breakpoint string
	gridLines  bool
	noLabels   bool
	cols, rows int
	scale      float64
	watch      bool
}

func (f renderFlags) options() (render.Options, error) {
	format, err := render.ParseFormat(f.format)
	if err != nil {
		return render.Options{}, err
	}
	bp, err := grid.ParseBreakpoint(f.breakpoint)
	if err != nil {
		return render.Options{}, err
	}
	return render.Options{
		Format:     format,
		Breakpoint: bp,
		GridLines:  f.gridLines,
		NoLabels:   f.noLabels,
		Cols:       f.cols,
		Rows:       f.rows,
		Scale:      f.scale,
	}, nil
}

// renderCommand creates the "render" command.
func (c *CLI) renderCommand() *cobra.Command {
	var flags renderFlags
	cmd := &cobra.Command{
		Use:   "render <layout-id>",
		Short: "Render a layout as SVG, JSON, text, PNG or PDF",
		Long: `Render a layout at a breakpoint. Overlaps are resolved in the output only;
the stored layout is not changed.

SVG, JSON and text go to stdout unless -o is given. PNG and PDF are
converted from SVG with rsvg-convert and default to <layout-id>.<format>.`,
		Example: `  gridlayout render home > home.svg
  gridlayout render home -f text -b mobile
  gridlayout render home -f png -o home.png --grid
  gridlayout render home -o home.svg --watch`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := flags.options()
			if err != nil {
				return err
			}
			id := args[0]
			output := flags.output
			if output == "" && (opts.Format == render.FormatPNG || opts.Format == render.FormatPDF) {
				output = id + "." + string(opts.Format)
			}

			ctx := cmd.Context()
			bc, err := c.openCache(ctx)
			if err != nil {
				return err
			}
			defer bc.Close()
			r := c.newRenderer(bc)

			if err := c.renderOnce(ctx, cmd, r, id, opts, output); err != nil {
				return err
			}
			if !flags.watch {
				return nil
			}
			return c.watchLayout(ctx, cmd, id, func() error {
				return c.renderOnce(ctx, cmd, r, id, opts, output)
			})
		},
	}
	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "output file (default stdout)")
	f.StringVarP(&flags.format, "format", "f", "svg", "output format (svg, json, text, png, pdf)")
	f.StringVarP(&flags.breakpoint, "breakpoint", "b", "desktop", "breakpoint (desktop, tablet, mobile)")
	f.BoolVar(&flags.gridLines, "grid", false, "draw grid lines (svg, png, pdf)")
	f.BoolVar(&flags.noLabels, "no-labels", false, "omit item labels (svg, png, pdf)")
	f.IntVar(&flags.cols, "cols", render.DefaultTextCols, "text width in characters")
	f.IntVar(&flags.rows, "rows", render.DefaultTextRows, "text height in lines")
	f.Float64Var(&flags.scale, "scale", 2, "png scale factor")
	f.BoolVarP(&flags.watch, "watch", "w", false, "re-render whenever the stored layout changes")
	return cmd
}

func (c *CLI) renderOnce(ctx context.Context, cmd *cobra.Command, r *render.Renderer, id string, opts render.Options, output string) error {
	prog := newProgress(loggerFromContext(ctx))
	l, err := c.loadLayout(ctx, id)
	if err != nil {
		return err
	}

	slow := opts.Format == render.FormatPNG || opts.Format == render.FormatPDF
	var spinner *Spinner
	if slow {
		spinner = newSpinner(ctx, cmd.ErrOrStderr(), "Converting to "+string(opts.Format)+"...")
		spinner.Start()
	}
	data, err := r.Render(ctx, l, opts)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return err
	}

	if output == "" || output == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := writeFileAtomic(output, data); err != nil {
		return err
	}
	printFile(cmd.ErrOrStderr(), output)
	prog.done("Rendered " + id)
	return nil
}

// writeFileAtomic writes data next to path and renames it into place so
// viewers never see a half-written file.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".render-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// =============================================================================
// Watch Mode
// =============================================================================

// watchPath returns the file whose changes mean layout id changed. Only
// the local backends have one.
func (c *CLI) watchPath(id string) (string, error) {
	s := c.cfg.Storage
	switch s.Backend {
	case config.BackendFile, "":
		return filepath.Join(s.Path, id+".json"), nil
	case config.BackendSQLite:
		return s.DSN, nil
	}
	return "", errors.New(errors.ErrCodeUnsupported, "--watch needs the file or sqlite backend, not %q", s.Backend)
}

// watchLayout calls fn after every change to the stored layout until ctx
// is cancelled. Render failures are logged and watching continues.
func (c *CLI) watchLayout(ctx context.Context, cmd *cobra.Command, id string, fn func() error) error {
	path, err := c.watchPath(id)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create watcher")
	}
	defer watcher.Close()

	// Saves replace the file by rename, so watch the directory.
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "watch %s", filepath.Dir(abs))
	}

	logger := loggerFromContext(ctx)
	printInfo(cmd.ErrOrStderr(), "Watching %s (ctrl+c to stop)", abs)
	return watchLoop(ctx, watcher.Events, watcher.Errors, abs, watchDebounce, func() {
		if err := fn(); err != nil {
			logger.Error("render failed", "layout", id, "error", err)
		}
	}, func(err error) {
		logger.Warn("watch error", "error", err)
	})
}

// watchLoop runs onChange once per burst of write or create events on
// path. It returns nil when ctx ends.
func watchLoop(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error, path string, debounce time.Duration, onChange func(), onError func(error)) error {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			name, _ := filepath.Abs(ev.Name)
			if name != path || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			onError(err)
		case <-fire:
			fire = nil
			onChange()
		}
	}
}
