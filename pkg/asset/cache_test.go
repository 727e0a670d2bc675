package asset

import (
	"math"
	"slices"
	"testing"

	"github.com/matzehuels/gridlayout/pkg/grid"
)

func img(url string) grid.Preview { return grid.Preview{URL: url, ContentType: "image"} }

func TestCacheMerge(t *testing.T) {
	c := NewCache()

	d := c.Merge([]Entry{{"a", img("a1")}, {"b", img("b1")}})
	if !slices.Equal(d.Added, []string{"a", "b"}) || len(d.Updated) != 0 {
		t.Errorf("first merge diff = %+v", d)
	}

	d = c.Merge([]Entry{{"b", img("b2")}, {"a", img("a1")}, {"c", img("c1")}})
	if !slices.Equal(d.Added, []string{"c"}) || !slices.Equal(d.Updated, []string{"b"}) {
		t.Errorf("second merge diff = %+v", d)
	}
	if p, _ := c.Get("b"); p.URL != "b2" {
		t.Errorf("b = %+v, want updated", p)
	}

	if d := c.Merge([]Entry{{"a", img("a1")}}); !d.Empty() {
		t.Errorf("unchanged merge diff = %+v", d)
	}

	var ids []string
	for _, e := range c.Snapshot() {
		ids = append(ids, e.RefID)
	}
	if !slices.Equal(ids, []string{"a", "b", "c"}) {
		t.Errorf("order = %v, want insertion order", ids)
	}
}

func TestCacheReplace(t *testing.T) {
	c := NewCache()
	c.Merge([]Entry{{"a", img("a")}, {"b", img("b")}, {"c", img("c")}})

	d := c.Replace([]Entry{{"c", img("c")}, {"d", img("d")}})
	if !slices.Equal(d.Removed, []string{"a", "b"}) || !slices.Equal(d.Added, []string{"d"}) {
		t.Errorf("diff = %+v", d)
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("removed entry still present")
	}
}

func TestDeriveView(t *testing.T) {
	c := NewCache()
	c.Merge([]Entry{
		{"hero-1", img("h1")},
		{"hero-2", grid.Preview{URL: "h2", ContentType: "video"}},
		{"hero-3", img("h3")},
		{"logo", img("l")},
		{"hero-4", img("h4")},
	})

	tests := []struct {
		name   string
		filter Filter
		page   Page
		want   []string
	}{
		{"all", Filter{}, Page{}, []string{"hero-1", "hero-2", "hero-3", "logo", "hero-4"}},
		{"type", Filter{ContentType: "image"}, Page{}, []string{"hero-1", "hero-3", "logo", "hero-4"}},
		{"prefix", Filter{Prefix: "hero"}, Page{}, []string{"hero-1", "hero-2", "hero-3", "hero-4"}},
		{"both", Filter{ContentType: "image", Prefix: "hero"}, Page{}, []string{"hero-1", "hero-3", "hero-4"}},
		{"first page", Filter{}, Page{Number: 0, Size: 2}, []string{"hero-1", "hero-2"}},
		{"last page", Filter{}, Page{Number: 2, Size: 2}, []string{"hero-4"}},
		{"past end", Filter{}, Page{Number: 3, Size: 2}, nil},
		{"huge page", Filter{}, Page{Number: math.MaxInt / 2, Size: 4}, nil},
		{"huge size", Filter{}, Page{Number: 1, Size: math.MaxInt}, nil},
		{"negative page", Filter{}, Page{Number: -3, Size: 2}, []string{"hero-1", "hero-2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, e := range DeriveView(c, tt.filter, tt.page) {
				got = append(got, e.RefID)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("DeriveView = %v, want %v", got, tt.want)
			}
		})
	}

	// Deriving twice gives the same answer and leaves the cache alone.
	a := DeriveView(c, Filter{Prefix: "hero"}, Page{Size: 3})
	b := DeriveView(c, Filter{Prefix: "hero"}, Page{Size: 3})
	if !slices.Equal(a, b) || c.Len() != 5 {
		t.Error("DeriveView is not pure")
	}
}
