// Package config loads gridlayout settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/gridlayout/config.toml (usually
// ~/.config/gridlayout/config.toml). A missing file at the default path is
// not an error; every setting has a default.
//
//	[canvas]
//	width = 1200
//	height = 800
//	cell_size = 20
//
//	[placement]
//	scan_step = 2
//	scan_limit = 10
//
//	[storage]
//	backend = "sqlite"
//	dsn = "/home/me/.local/share/gridlayout/layouts.db"
//
//	[assets]
//	base_url = "https://assets.example.com"
//	timeout = "5s"
package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/gridlayout/pkg/errors"
	"github.com/matzehuels/gridlayout/pkg/grid"
)

// Storage backends.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMongo  = "mongo"
	BackendHTTP   = "http"
)

// Backends lists the supported storage backends.
var Backends = []string{BackendFile, BackendSQLite, BackendRedis, BackendMongo, BackendHTTP}

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Defaults.
const (
	DefaultCanvasWidth  = 1200
	DefaultCanvasHeight = 800
	DefaultServerAddr   = "127.0.0.1:8080"
	DefaultAssetTimeout = 5 * time.Second
	DefaultRedisPrefix  = "gridlayout"
	DefaultMongoDB      = "gridlayout"
	DefaultMongoColl    = "layouts"
)

// Config is the full settings file.
type Config struct {
	Canvas    Canvas          `toml:"canvas"`
	Placement grid.ScanConfig `toml:"placement"`
	Storage   Storage         `toml:"storage"`
	Assets    Assets          `toml:"assets"`
	Cache     Cache           `toml:"cache"`
	Server    Server          `toml:"server"`
}

// Canvas holds the default canvas for new layouts.
type Canvas struct {
	Width    int `toml:"width"`
	Height   int `toml:"height"`
	CellSize int `toml:"cell_size"`
}

// Grid converts the settings to a validated [grid.Canvas].
func (c Canvas) Grid() (grid.Canvas, error) {
	return grid.NewCanvas(c.Width, c.Height, c.CellSize)
}

// Storage selects and configures the layout store.
type Storage struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"` // directory for the file backend
	DSN     string `toml:"dsn"`  // database file for the sqlite backend

	Redis Redis `toml:"redis"`
	Mongo Mongo `toml:"mongo"`
	HTTP  HTTP  `toml:"http"`
}

// Redis configures the redis backend.
type Redis struct {
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// Mongo configures the mongo backend.
type Mongo struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// HTTP configures the remote backend served by `gridlayout serve`.
type HTTP struct {
	URL   string `toml:"url"`
	Token string `toml:"token"`
}

// Assets configures the asset service used for content-reference previews.
type Assets struct {
	BaseURL  string   `toml:"base_url"`
	Timeout  Duration `toml:"timeout"`
	CacheTTL Duration `toml:"cache_ttl"`
}

// Cache configures the byte cache for previews and rendered output.
type Cache struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
}

// Server configures `gridlayout serve`.
type Server struct {
	Addr  string `toml:"addr"`
	Token string `toml:"token"` // bearer token required on writes when set
}

// Duration is a time.Duration written as a Go duration string ("5s").
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// Default returns the built-in settings.
func Default() Config {
	data := DataDir()
	return Config{
		Canvas: Canvas{
			Width:    DefaultCanvasWidth,
			Height:   DefaultCanvasHeight,
			CellSize: grid.DefaultCellSize,
		},
		Placement: grid.DefaultScan(),
		Storage: Storage{
			Backend: BackendFile,
			Path:    filepath.Join(data, "layouts"),
			DSN:     filepath.Join(data, "layouts.db"),
			Redis:   Redis{Addr: "localhost:6379", Prefix: DefaultRedisPrefix},
			Mongo:   Mongo{URI: "mongodb://localhost:27017", Database: DefaultMongoDB, Collection: DefaultMongoColl},
		},
		Assets: Assets{
			Timeout:  Duration{DefaultAssetTimeout},
			CacheTTL: Duration{24 * time.Hour},
		},
		Cache:  Cache{Backend: CacheFile},
		Server: Server{Addr: DefaultServerAddr},
	}
}

// Path returns the default config file path.
func Path() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = filepath.Join(os.TempDir(), "gridlayout-config")
	} else {
		dir = filepath.Join(dir, "gridlayout")
	}
	return filepath.Join(dir, "config.toml")
}

// DataDir returns the directory for file-backed layouts,
// $XDG_DATA_HOME/gridlayout or ~/.local/share/gridlayout.
func DataDir() string {
	if d := os.Getenv("XDG_DATA_HOME"); d != "" {
		return filepath.Join(d, "gridlayout")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "gridlayout")
	}
	return filepath.Join(home, ".local", "share", "gridlayout")
}

// Load reads the file at path over the defaults and validates the result.
// An empty path selects [Path]; a missing file there yields the defaults.
// Unknown keys are rejected so typos do not pass silently.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = Path()
	}

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return cfg, nil
		}
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if _, err := c.Canvas.Grid(); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "[canvas]")
	}
	if c.Placement.Step < 0 || c.Placement.Limit < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "[placement] scan_step and scan_limit must not be negative")
	}

	switch c.Storage.Backend {
	case BackendFile:
		if c.Storage.Path == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "[storage] path is required for the file backend")
		}
	case BackendSQLite:
		if c.Storage.DSN == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "[storage] dsn is required for the sqlite backend")
		}
	case BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "[storage.redis] addr is required")
		}
	case BackendMongo:
		if c.Storage.Mongo.URI == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "[storage.mongo] uri is required")
		}
	case BackendHTTP:
		if err := errors.ValidateURL(c.Storage.HTTP.URL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "[storage.http] url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "[storage] unknown backend %q (must be one of %s)", c.Storage.Backend, strings.Join(Backends, ", "))
	}

	if c.Assets.BaseURL != "" {
		if err := errors.ValidateURL(c.Assets.BaseURL); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "[assets] base_url")
		}
	}
	if c.Assets.Timeout.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "[assets] timeout must not be negative")
	}

	switch c.Cache.Backend {
	case "", CacheNone, CacheFile:
	case CacheRedis:
		if c.Storage.Redis.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "[cache] redis backend needs [storage.redis] addr")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "[cache] unknown backend %q (must be none, file or redis)", c.Cache.Backend)
	}
	return nil
}

// Encode renders c as TOML.
func (c Config) Encode() ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write saves c to path, creating parent directories.
func Write(path string, c Config) error {
	data, err := c.Encode()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
