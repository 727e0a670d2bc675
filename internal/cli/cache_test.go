package cli

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/gridlayout/pkg/cache"
	"github.com/matzehuels/gridlayout/pkg/config"
)

func TestCacheDir(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if !strings.HasSuffix(dir, "gridlayout") {
		t.Errorf("cacheDir() = %q, should end with 'gridlayout'", dir)
	}

	c.cfg.Cache.Dir = "/tmp/custom-cache"
	if dir, _ := c.cacheDir(); dir != "/tmp/custom-cache" {
		t.Errorf("cacheDir() = %q, want configured dir", dir)
	}
}

func TestOpenCache(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	c.cfg.Cache = config.Cache{Backend: config.CacheNone}
	bc, err := c.openCache(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := bc.(*cache.NullCache); !ok {
		t.Errorf("cache = %T, want *NullCache", bc)
	}

	c.cfg.Cache = config.Cache{Backend: config.CacheFile, Dir: t.TempDir()}
	bc, err = c.openCache(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if fc, ok := bc.(*cache.FileCache); !ok || fc.Dir() != c.cfg.Cache.Dir {
		t.Errorf("cache = %T, want *FileCache in configured dir", bc)
	}
}

func TestCacheCommands(t *testing.T) {
	env := newTestEnv(t)
	fc, err := cache.NewFileCache(env.cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	for _, k := range []string{"a", "b", "c"} {
		if err := fc.Set(ctx, k, []byte(k), time.Hour); err != nil {
			t.Fatal(err)
		}
	}

	out := env.run(t, "cache", "path")
	if strings.TrimSpace(out) != env.cacheDir {
		t.Errorf("cache path = %q, want %q", out, env.cacheDir)
	}

	out = env.run(t, "cache", "clear")
	if !strings.Contains(out, "Cleared 3 cached entries") {
		t.Errorf("cache clear output = %q", out)
	}
	if _, ok, _ := fc.Get(ctx, "a"); ok {
		t.Error("entry survived cache clear")
	}

	os.RemoveAll(env.cacheDir)
	out = env.run(t, "cache", "clear")
	if !strings.Contains(out, "Cache is empty") {
		t.Errorf("cache clear on missing dir = %q", out)
	}
}
