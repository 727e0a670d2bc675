package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/gridlayout/pkg/asset"
	"github.com/matzehuels/gridlayout/pkg/buildinfo"
	"github.com/matzehuels/gridlayout/pkg/cache"
	"github.com/matzehuels/gridlayout/pkg/config"
	"github.com/matzehuels/gridlayout/pkg/errors"
	"github.com/matzehuels/gridlayout/pkg/grid"
	"github.com/matzehuels/gridlayout/pkg/httputil"
	"github.com/matzehuels/gridlayout/pkg/observability"
	"github.com/matzehuels/gridlayout/pkg/render"
	"github.com/matzehuels/gridlayout/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "gridlayout"

	// skipConfig marks commands that run without loading the config file.
	skipConfig = "skip-config"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	backend    string
	cfg        config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level. At debug level the observability
// hooks are routed to the logger as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		registerLogHooks(c.Logger)
	} else {
		observability.Reset()
	}
}

// Config returns the loaded configuration.
func (c *CLI) Config() config.Config { return c.cfg }

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "gridlayout arranges content on a fixed grid canvas",
		Long:         `gridlayout is a layout engine and editor for grid canvases: place, resize and restack items, resolve overlaps, override positions per breakpoint (desktop, tablet, mobile) and render the result.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			if cmd.Annotations[skipConfig] != "" {
				return nil
			}
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.Path()+")")
	root.PersistentFlags().StringVar(&c.backend, "store", "", "storage backend override ("+joinNames(config.Backends)+")")

	root.AddGroup(
		&cobra.Group{ID: "layout", Title: "Layouts:"},
		&cobra.Group{ID: "items", Title: "Items:"},
		&cobra.Group{ID: "output", Title: "Output:"},
	)

	for _, cmd := range []*cobra.Command{c.newCommand(), c.showCommand(), c.listCommand(), c.rmCommand()} {
		cmd.GroupID = "layout"
		root.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{
		c.addCommand(), c.moveCommand(), c.resizeCommand(), c.nudgeCommand(),
		c.duplicateCommand(), c.deleteCommand(), c.zCommand(),
		c.overrideCommand(), c.resolveCommand(), c.editCommand(),
	} {
		cmd.GroupID = "items"
		root.AddCommand(cmd)
	}
	for _, cmd := range []*cobra.Command{c.renderCommand(), c.serveCommand()} {
		cmd.GroupID = "output"
		root.AddCommand(cmd)
	}
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())
	root.AddCommand(c.versionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if c.backend != "" {
		cfg.Storage.Backend = c.backend
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	c.cfg = cfg
	c.Logger.Debug("config loaded", "path", c.configPath, "backend", cfg.Storage.Backend)
	return nil
}

// =============================================================================
// Collaborator Factories
// =============================================================================

func (c *CLI) openStore(ctx context.Context) (storage.Store, error) {
	return storage.Open(ctx, c.cfg.Storage)
}

func (c *CLI) openCache(ctx context.Context) (cache.Cache, error) {
	switch c.cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		r := c.cfg.Storage.Redis
		return cache.NewRedisCache(ctx, r.Addr, r.Password, r.DB)
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Debug("cache disabled", "error", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

func (c *CLI) cacheDir() (string, error) {
	if c.cfg.Cache.Dir != "" {
		return c.cfg.Cache.Dir, nil
	}
	return cache.DefaultDir()
}

// keyer scopes cache keys by storage backend so layouts with the same id in
// different stores never share rendered output.
func (c *CLI) keyer() cache.Keyer {
	return cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.cfg.Storage.Backend)
}

func (c *CLI) newRenderer(bc cache.Cache) *render.Renderer {
	return render.NewRenderer(render.WithCache(bc, c.keyer(), render.DefaultTTL), render.WithLogger(c.Logger))
}

// newAssetClient returns nil when no asset service is configured.
func (c *CLI) newAssetClient(bc cache.Cache) *asset.Client {
	a := c.cfg.Assets
	if a.BaseURL == "" {
		return nil
	}
	return asset.NewClient(a.BaseURL,
		asset.WithHTTPClient(httputil.NewHTTPClient(a.Timeout.Duration)),
		asset.WithCache(bc, c.keyer(), a.CacheTTL.Duration),
		asset.WithLogger(c.Logger))
}

func (c *CLI) newEditor(l *grid.Layout) *grid.Editor {
	return grid.NewEditor(l, grid.WithScan(c.cfg.Placement), grid.WithLogger(c.Logger))
}

// =============================================================================
// Layout Sessions
// =============================================================================

// editLayout loads a layout, applies fn through an editor and saves the
// result as one whole-document write. Nothing is saved when fn fails.
func (c *CLI) editLayout(ctx context.Context, id string, fn func(*grid.Editor) error) (*grid.Layout, error) {
	store, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	l, err := store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	ed := c.newEditor(l)
	if err := fn(ed); err != nil {
		return nil, err
	}

	start := time.Now()
	saved, err := store.Save(ctx, ed.Layout())
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("layout saved", "id", id, "items", len(saved.Items), "took", time.Since(start).Round(time.Millisecond))
	return saved, nil
}

// loadLayout reads one layout and closes the store.
func (c *CLI) loadLayout(ctx context.Context, id string) (*grid.Layout, error) {
	store, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.Get(ctx, id)
}

func itemNotFound(layoutID, itemID string) error {
	return errors.New(errors.ErrCodeItemNotFound, "item %q not found in layout %q", itemID, layoutID)
}

// requireItems fails with ITEM_NOT_FOUND for the first id ed does not know.
func requireItems(ed *grid.Editor, ids ...string) error {
	for _, id := range ids {
		if !ed.Layout().Has(id) {
			return itemNotFound(ed.Layout().ID, id)
		}
	}
	return nil
}
