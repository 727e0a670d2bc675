package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/gridlayout/pkg/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
[canvas]
width = 800
height = 600
cell_size = 10

[placement]
scan_step = 1
scan_limit = 40

[storage]
backend = "sqlite"
dsn = "/tmp/layouts.db"

[assets]
base_url = "https://assets.example.com"
timeout = "2s"

[server]
addr = ":9000"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c, err := cfg.Canvas.Grid()
	if err != nil {
		t.Fatal(err)
	}
	if c.Cols() != 80 || c.Rows() != 60 {
		t.Errorf("grid = %dx%d, want 80x60", c.Cols(), c.Rows())
	}
	if cfg.Placement.Step != 1 || cfg.Placement.Limit != 40 {
		t.Errorf("placement = %+v", cfg.Placement)
	}
	if cfg.Storage.Backend != BackendSQLite || cfg.Storage.DSN != "/tmp/layouts.db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Assets.Timeout.Duration != 2*time.Second {
		t.Errorf("timeout = %v", cfg.Assets.Timeout)
	}
	if cfg.Server.Addr != ":9000" {
		t.Errorf("addr = %q", cfg.Server.Addr)
	}
	// Untouched sections keep their defaults.
	if cfg.Storage.Mongo.Database != DefaultMongoDB {
		t.Errorf("mongo database = %q, want default", cfg.Storage.Mongo.Database)
	}
}

func TestLoadMissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load(\"\") = %v", err)
	}
	if cfg.Canvas.Width != DefaultCanvasWidth {
		t.Errorf("width = %d, want default", cfg.Canvas.Width)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"syntax", "[canvas\nwidth = 1"},
		{"unknown key", "[canvas]\ncolour = 3"},
		{"bad canvas", "[canvas]\nwidth = 0"},
		{"bad backend", "[storage]\nbackend = \"s3\""},
		{"http without url", "[storage]\nbackend = \"http\""},
		{"bad asset url", "[assets]\nbase_url = \"ftp://x\""},
		{"bad duration", "[assets]\ntimeout = \"soon\""},
		{"bad cache", "[cache]\nbackend = \"memcached\""},
		{"negative scan", "[placement]\nscan_step = -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, errors.ErrCodeInvalidConfig) {
				t.Errorf("code = %v, want %v", errors.GetCode(err), errors.ErrCodeInvalidConfig)
			}
		})
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Error("expected error for explicit missing file")
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Storage.Backend = BackendRedis
	cfg.Assets.Timeout = Duration{3 * time.Second}

	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := Write(path, cfg); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Storage.Backend != BackendRedis || got.Assets.Timeout.Duration != 3*time.Second {
		t.Errorf("round trip = %+v", got)
	}
}
