package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/matzehuels/gridlayout/pkg/config"
	"github.com/matzehuels/gridlayout/pkg/errors"
	"github.com/matzehuels/gridlayout/pkg/grid"
	"github.com/matzehuels/gridlayout/pkg/render"
	"github.com/matzehuels/gridlayout/pkg/storage"
)

// testEnv is a config file with file storage and a file cache under one
// temp directory.
type testEnv struct {
	dir        string
	configPath string
	layoutDir  string
	cacheDir   string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "config.toml"),
		layoutDir:  filepath.Join(dir, "layouts"),
		cacheDir:   filepath.Join(dir, "cache"),
	}
	cfg := config.Default()
	cfg.Canvas = config.Canvas{Width: 400, Height: 200, CellSize: 20}
	cfg.Storage.Backend = config.BackendFile
	cfg.Storage.Path = env.layoutDir
	cfg.Storage.DSN = filepath.Join(dir, "layouts.db")
	cfg.Cache = config.Cache{Backend: config.CacheFile, Dir: env.cacheDir}
	if err := config.Write(env.configPath, cfg); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

// exec runs one command line and returns stdout and the command error.
func (e *testEnv) exec(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	c := New(&stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs(append([]string{"--config", e.configPath}, args...))
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(""))
	err := root.ExecuteContext(context.Background())
	return stdout.String(), err
}

func (e *testEnv) run(t *testing.T, args ...string) string {
	t.Helper()
	out, err := e.exec(t, args...)
	if err != nil {
		t.Fatalf("%s: %v", strings.Join(args, " "), err)
	}
	return out
}

func (e *testEnv) runErr(t *testing.T, wantCode errors.Code, args ...string) {
	t.Helper()
	_, err := e.exec(t, args...)
	if err == nil {
		t.Fatalf("%s: expected error %s", strings.Join(args, " "), wantCode)
	}
	if got := errors.GetCode(err); got != wantCode {
		t.Fatalf("%s: code = %s, want %s (%v)", strings.Join(args, " "), got, wantCode, err)
	}
}

func (e *testEnv) layout(t *testing.T, id string) *grid.Layout {
	t.Helper()
	s, err := storage.NewFileStore(e.layoutDir)
	if err != nil {
		t.Fatal(err)
	}
	l, err := s.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get %s: %v", id, err)
	}
	return l
}

func TestNewAndList(t *testing.T) {
	env := newTestEnv(t)

	out := env.run(t, "list")
	if !strings.Contains(out, "No layouts") {
		t.Errorf("empty list output = %q", out)
	}

	env.run(t, "new", "home", "--name", "Home page")
	l := env.layout(t, "home")
	if l.Name != "Home page" || l.Canvas.Cols() != 20 || l.Canvas.Rows() != 10 {
		t.Errorf("new layout = %+v", l)
	}

	env.run(t, "new", "wide", "--width", "800", "--cell", "40")
	if c := env.layout(t, "wide").Canvas; c.Width != 800 || c.Height != 200 || c.CellSize != 40 {
		t.Errorf("canvas flags ignored: %+v", c)
	}

	env.runErr(t, errors.ErrCodeInvalidInput, "new", "home")
	env.run(t, "new", "home", "--force")
	env.runErr(t, errors.ErrCodeInvalidID, "new", "../escape")
	env.runErr(t, errors.ErrCodeInvalidCanvas, "new", "bad", "--width", "0")

	out = env.run(t, "list")
	if !strings.Contains(out, "home") || !strings.Contains(out, "wide") {
		t.Errorf("list output = %q", out)
	}

	env.run(t, "rm", "wide")
	_, err := env.exec(t, "show", "wide")
	if !storage.IsNotFound(err) {
		t.Errorf("show after rm: %v", err)
	}
}

func TestItemCommands(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, "new", "home")

	env.run(t, "add", "home", "text", "--text", "Hello", "--w", "4", "--h", "2")
	env.run(t, "add", "home", "block", "--type", "hero", "--w", "6", "--h", "3", "--set", "columns=3", "--set", "title=Hi")

	l := env.layout(t, "home")
	if len(l.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(l.Items))
	}
	a, b := l.Items[0], l.Items[1]
	if a.Kind != grid.KindText || a.Inline == nil || a.Inline.Text != "Hello" || a.X != 0 || a.Y != 0 {
		t.Errorf("text item = %+v", a)
	}
	if b.Block == nil || b.Block.Type != grid.BlockHero || b.X != 4 || b.Y != 0 {
		t.Errorf("hero item = %+v", b)
	}
	if b.Block.Config["title"] != "Hi" {
		t.Errorf("block config = %v", b.Block.Config)
	}

	env.run(t, "move", "home", a.ID, "2", "3")
	env.run(t, "resize", "home", a.ID, "5", "2")
	env.run(t, "nudge", "home", a.ID, "--dx=1")
	env.run(t, "move", "home", a.ID, "0", "0", "-b", "mobile")

	got, _ := env.layout(t, "home").Item(a.ID)
	if got.X != 3 || got.Y != 3 || got.W != 5 || got.H != 2 {
		t.Errorf("desktop geometry = %+v", got.Rect())
	}
	if o, ok := got.Overrides[grid.Mobile]; !ok || o.X != 0 || o.Y != 0 || o.W != 5 {
		t.Errorf("mobile override = %+v (%v)", o, ok)
	}

	env.run(t, "z", "home", a.ID, "front")
	if got, _ := env.layout(t, "home").Item(a.ID); got.Z != 2 {
		t.Errorf("z = %d, want 2", got.Z)
	}

	env.run(t, "duplicate", "home", a.ID)
	l = env.layout(t, "home")
	if len(l.Items) != 3 {
		t.Fatalf("items after duplicate = %d", len(l.Items))
	}
	dup := l.Items[2]
	if !strings.HasPrefix(dup.ID, a.ID+"-") || dup.X != 4 || dup.Y != 4 {
		t.Errorf("copy = %s at (%d, %d)", dup.ID, dup.X, dup.Y)
	}

	out := env.run(t, "delete", "home", dup.ID, "missing")
	if !strings.Contains(out, "Deleted 1 items") {
		t.Errorf("delete output = %q", out)
	}
	if n := len(env.layout(t, "home").Items); n != 2 {
		t.Errorf("items after delete = %d", n)
	}
}

func TestAddKeepsGlobalConfigFlag(t *testing.T) {
	root := New(&bytes.Buffer{}, LogInfo).RootCommand()
	add, _, err := root.Find([]string{"add"})
	if err != nil {
		t.Fatal(err)
	}
	if f := add.LocalNonPersistentFlags().Lookup("config"); f != nil {
		t.Fatalf("add defines its own --config flag: %s", f.Usage)
	}

	// The layout only exists in the store the config file points at.
	env := newTestEnv(t)
	env.run(t, "new", "home")
	env.run(t, "add", "home", "block", "--type", "spacer", "--set", "gap=wide")
	l := env.layout(t, "home")
	if len(l.Items) != 1 || l.Items[0].Block.Config["gap"] != "wide" {
		t.Errorf("items = %+v", l.Items)
	}
}

func TestItemCommandErrors(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, "new", "home")

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"unknown layout", []string{"add", "nope", "text"}, errors.ErrCodeLayoutNotFound},
		{"unknown kind", []string{"add", "home", "video"}, errors.ErrCodeInvalidKind},
		{"bad config pair", []string{"add", "home", "block", "--set", "novalue"}, errors.ErrCodeInvalidInput},
		{"unknown item", []string{"move", "home", "ghost", "1", "1"}, errors.ErrCodeItemNotFound},
		{"bad number", []string{"resize", "home", "ghost", "wide", "1"}, errors.ErrCodeInvalidInput},
		{"bad breakpoint", []string{"move", "home", "ghost", "1", "1", "-b", "watch"}, errors.ErrCodeInvalidBreakpoint},
		{"bad direction", []string{"z", "home", "ghost", "sideways"}, errors.ErrCodeInvalidInput},
		{"nudge unknown", []string{"nudge", "home", "ghost", "--dx=1"}, errors.ErrCodeItemNotFound},
		{"desktop override", []string{"override", "set", "home", "ghost", "-b", "desktop"}, errors.ErrCodeInvalidBreakpoint},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env.runErr(t, tt.code, tt.args...)
		})
	}

	// Failed edits leave the stored layout untouched.
	if l := env.layout(t, "home"); len(l.Items) != 0 {
		t.Errorf("items = %d after failed edits", len(l.Items))
	}
}

func TestOverrideAndResolve(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, "new", "home")
	env.run(t, "add", "home", "text", "--w", "6", "--h", "3")
	env.run(t, "add", "home", "image", "--image", "https://example.com/a.png", "--alt", "A", "--w", "6", "--h", "3")
	l := env.layout(t, "home")
	a, b := l.Items[0].ID, l.Items[1].ID

	// Stack b on a at mobile only.
	env.run(t, "override", "set", "home", b, "-b", "mobile", "--x", "0", "--y", "1")
	env.run(t, "override", "hide", "home", a, "-b", "tablet")

	l = env.layout(t, "home")
	it, _ := l.Item(b)
	if o := it.Overrides[grid.Mobile]; o.X != 0 || o.Y != 1 || o.W != 6 || !o.Visible {
		t.Errorf("mobile override = %+v", o)
	}
	it, _ = l.Item(a)
	if o, ok := it.Overrides[grid.Tablet]; !ok || o.Visible {
		t.Errorf("tablet override = %+v", o)
	}

	out := env.run(t, "resolve", "home", "-b", "mobile")
	if !strings.Contains(out, "Resolved mobile: 1 moved") {
		t.Errorf("resolve output = %q", out)
	}
	it, _ = env.layout(t, "home").Item(b)
	if o := it.Overrides[grid.Mobile]; o.Y != 3 {
		t.Errorf("resolved mobile y = %d, want 3", o.Y)
	}
	if it.X != 6 || it.Y != 0 {
		t.Errorf("desktop geometry changed: %+v", it.Rect())
	}

	env.run(t, "override", "clear", "home", b, "-b", "mobile")
	env.run(t, "override", "show", "home", a, "-b", "tablet")
	it, _ = env.layout(t, "home").Item(b)
	if _, ok := it.Overrides[grid.Mobile]; ok {
		t.Error("mobile override survived clear")
	}
	it, _ = env.layout(t, "home").Item(a)
	if !grid.ResolvePosition(it, grid.Tablet).Visible {
		t.Error("item still hidden at tablet")
	}

	out = env.run(t, "resolve", "home", "--all")
	if strings.Count(out, "Resolved") != 3 {
		t.Errorf("resolve --all output = %q", out)
	}
}

func TestShow(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, "new", "home", "--name", "Home")
	env.run(t, "add", "home", "ref", "--ref", "asset-42", "--w", "4", "--h", "4")

	out := env.run(t, "show", "home")
	for _, want := range []string{"Home (home)", "400x200 px", "asset-42", "ref"} {
		if !strings.Contains(out, want) {
			t.Errorf("show output missing %q:\n%s", want, out)
		}
	}

	out = env.run(t, "show", "home", "--json")
	var l grid.Layout
	if err := json.Unmarshal([]byte(out), &l); err != nil {
		t.Fatalf("show --json: %v", err)
	}
	if len(l.Items) != 1 || l.Items[0].Ref.ID != "asset-42" {
		t.Errorf("json items = %+v", l.Items)
	}

	out = env.run(t, "show", "home", "--previews")
	if !strings.Contains(out, "No asset service configured") {
		t.Errorf("previews without asset service = %q", out)
	}
}

func TestShowPreviews(t *testing.T) {
	assets := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/assets/hero-1":
			fmt.Fprint(w, `{"url":"https://cdn.test/hero-1.png","content_type":"image"}`)
		case "/assets/hero-2":
			fmt.Fprint(w, `{"url":"https://cdn.test/hero-2.mp4","content_type":"video"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	defer assets.Close()

	env := newTestEnv(t)
	cfg, err := config.Load(env.configPath)
	if err != nil {
		t.Fatal(err)
	}
	cfg.Assets.BaseURL = assets.URL
	if err := config.Write(env.configPath, cfg); err != nil {
		t.Fatal(err)
	}

	env.run(t, "new", "home")
	for _, ref := range []string{"hero-1", "hero-2", "gone"} {
		env.run(t, "add", "home", "ref", "--ref", ref, "--w", "2", "--h", "2")
	}

	out := env.run(t, "show", "home", "--previews")
	for _, want := range []string{"hero-1.png", "hero-2.mp4", "no preview", "2 of 3 references resolved"} {
		if !strings.Contains(out, want) {
			t.Errorf("show --previews missing %q:\n%s", want, out)
		}
	}

	out = env.run(t, "show", "home", "--previews", "--content-type", "video")
	if strings.Contains(out, "hero-1.png") || !strings.Contains(out, "hero-2.mp4") {
		t.Errorf("content-type filter:\n%s", out)
	}

	out = env.run(t, "show", "home", "--previews", "--page", "1", "--page-size", "1")
	if strings.Contains(out, "hero-1.png") || !strings.Contains(out, "hero-2.mp4") {
		t.Errorf("second page:\n%s", out)
	}

	// Absurd pages list nothing instead of failing.
	out = env.run(t, "show", "home", "--previews", "--page", "4611686018427387903", "--page-size", "4")
	if strings.Contains(out, "hero-1.png") || strings.Contains(out, "hero-2.mp4") {
		t.Errorf("page past the end:\n%s", out)
	}
}

func TestRenderCommand(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, "new", "home")
	env.run(t, "add", "home", "text", "--text", "Hello", "--w", "8", "--h", "4")

	out := env.run(t, "render", "home")
	if !strings.HasPrefix(out, "<svg") {
		t.Errorf("svg output = %.80q", out)
	}

	out = env.run(t, "render", "home", "-f", "text", "--cols", "20", "--rows", "10")
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 10 || !strings.HasPrefix(lines[0], "+------+") || !strings.Contains(lines[1], "Hello") {
		t.Errorf("text output:\n%s", out)
	}

	path := filepath.Join(env.dir, "home.json")
	env.run(t, "render", "home", "-f", "json", "-b", "tablet", "-o", path)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var doc render.ViewDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatal(err)
	}
	if doc.Breakpoint != grid.Tablet || len(doc.Items) != 1 {
		t.Errorf("view document = %+v", doc)
	}

	env.runErr(t, errors.ErrCodeInvalidInput, "render", "home", "-f", "gif")
}

func TestWatchPath(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	c.cfg.Storage = config.Storage{Backend: config.BackendFile, Path: "/data/layouts"}
	if p, err := c.watchPath("home"); err != nil || p != "/data/layouts/home.json" {
		t.Errorf("file watch path = %q, %v", p, err)
	}
	c.cfg.Storage = config.Storage{Backend: config.BackendSQLite, DSN: "/data/layouts.db"}
	if p, err := c.watchPath("home"); err != nil || p != "/data/layouts.db" {
		t.Errorf("sqlite watch path = %q, %v", p, err)
	}
	c.cfg.Storage = config.Storage{Backend: config.BackendRedis}
	if _, err := c.watchPath("home"); !errors.Is(err, errors.ErrCodeUnsupported) {
		t.Errorf("redis watch path error = %v", err)
	}
}

func TestWatchLoop(t *testing.T) {
	events := make(chan fsnotify.Event)
	errs := make(chan error)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	path, _ := filepath.Abs("layouts/home.json")
	changes := make(chan struct{}, 10)
	done := make(chan error, 1)
	go func() {
		done <- watchLoop(ctx, events, errs, path, 20*time.Millisecond,
			func() { changes <- struct{}{} },
			func(error) {})
	}()

	// A burst of events for the watched file fires once.
	events <- fsnotify.Event{Name: path, Op: fsnotify.Create}
	events <- fsnotify.Event{Name: path, Op: fsnotify.Write}
	events <- fsnotify.Event{Name: path, Op: fsnotify.Write}
	// Other files and other ops are ignored.
	events <- fsnotify.Event{Name: path + ".tmp", Op: fsnotify.Write}
	events <- fsnotify.Event{Name: path, Op: fsnotify.Chmod}

	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("no change reported")
	}
	select {
	case <-changes:
		t.Fatal("burst reported more than once")
	case <-time.After(100 * time.Millisecond):
	}

	events <- fsnotify.Event{Name: path, Op: fsnotify.Write}
	select {
	case <-changes:
	case <-time.After(2 * time.Second):
		t.Fatal("second change not reported")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watchLoop returned %v", err)
	}
}

func TestConfigCommands(t *testing.T) {
	env := newTestEnv(t)

	out := env.run(t, "config", "show")
	if !strings.Contains(out, `backend = "file"`) || !strings.Contains(out, env.layoutDir) {
		t.Errorf("config show = %q", out)
	}

	path := filepath.Join(env.dir, "fresh", "config.toml")
	var stdout bytes.Buffer
	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()
	root.SetOut(&stdout)
	root.SetArgs([]string{"--config", path, "config", "init"})
	if err := root.Execute(); err != nil {
		t.Fatalf("config init: %v", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load written config: %v", err)
	}
	if cfg.Canvas.Width != config.DefaultCanvasWidth {
		t.Errorf("written canvas = %+v", cfg.Canvas)
	}

	root = New(&bytes.Buffer{}, LogInfo).RootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", path, "config", "init"})
	if err := root.Execute(); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("second init error = %v", err)
	}
}

func TestConfigErrors(t *testing.T) {
	env := newTestEnv(t)
	if err := os.WriteFile(env.configPath, []byte("[canvas]\nwdth = 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	env.runErr(t, errors.ErrCodeInvalidConfig, "list")

	// Commands that skip config still work.
	if out := env.run(t, "version"); !strings.Contains(out, "version:") {
		t.Errorf("version output = %q", out)
	}
}

func TestStoreOverride(t *testing.T) {
	env := newTestEnv(t)
	env.run(t, "--store", "sqlite", "new", "home")
	env.run(t, "--store", "sqlite", "add", "home", "text")

	out := env.run(t, "--store", "sqlite", "list")
	if !strings.Contains(out, "home") {
		t.Errorf("sqlite list = %q", out)
	}
	if out := env.run(t, "list"); !strings.Contains(out, "No layouts") {
		t.Errorf("file store should be empty, got %q", out)
	}
	env.runErr(t, errors.ErrCodeInvalidConfig, "--store", "ftp", "list")
}

func TestParseConfigPairs(t *testing.T) {
	got, err := parseConfigPairs([]string{"columns=3", "ratio=1.5", "autoplay=true", "title=a=b"})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"columns": 3, "ratio": 1.5, "autoplay": true, "title": "a=b"}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %#v, want %#v", k, got[k], v)
		}
	}
	if m, _ := parseConfigPairs(nil); m != nil {
		t.Errorf("nil pairs = %v", m)
	}
	if _, err := parseConfigPairs([]string{"=x"}); err == nil {
		t.Error("empty key accepted")
	}
}
