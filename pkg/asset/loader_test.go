package asset

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/matzehuels/gridlayout/pkg/grid"
)

func refItem(id, ref string) grid.Item {
	return grid.Item{ID: id, Kind: grid.KindContentRef, Ref: &grid.ContentRef{ID: ref}, W: 2, H: 2}
}

func TestLoaderLoad(t *testing.T) {
	r := ResolverFunc(func(_ context.Context, refID string) (grid.Preview, error) {
		if refID == "bad" {
			return grid.Preview{}, ErrNoPreview
		}
		return img("https://cdn.example/" + refID), nil
	})
	results := NewCache()
	l := NewLoader(r, WithResultCache(results))

	items := []grid.Item{
		refItem("i1", "good"),
		refItem("i2", "bad"),
		{ID: "text", Kind: grid.KindText},
	}

	got := map[string]Result{}
	for res := range l.Load(context.Background(), items) {
		got[res.ItemID] = res
	}
	if len(got) != 2 {
		t.Fatalf("results = %d, want 2 (text items are skipped)", len(got))
	}
	if got["i1"].Err != nil || got["i1"].Preview.URL != "https://cdn.example/good" {
		t.Errorf("i1 = %+v", got["i1"])
	}
	if !errors.Is(got["i2"].Err, ErrNoPreview) {
		t.Errorf("i2 err = %v", got["i2"].Err)
	}
	if results.Len() != 1 {
		t.Errorf("result cache holds %d entries, want 1", results.Len())
	}
}

func TestLoaderSlowFetchDoesNotBlockOthers(t *testing.T) {
	release := make(chan struct{})
	r := ResolverFunc(func(ctx context.Context, refID string) (grid.Preview, error) {
		if refID == "slow" {
			<-release
		}
		return img(refID), nil
	})

	ch := NewLoader(r).Load(context.Background(), []grid.Item{refItem("s", "slow"), refItem("f", "fast")})
	select {
	case res := <-ch:
		if res.ItemID != "f" {
			t.Errorf("first result = %s, want f", res.ItemID)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("fast fetch blocked by slow fetch")
	}
	close(release)
	for range ch {
	}
}

func TestLoaderMaxParallel(t *testing.T) {
	var active, peak int32
	var mu sync.Mutex
	r := ResolverFunc(func(context.Context, string) (grid.Preview, error) {
		n := atomic.AddInt32(&active, 1)
		defer atomic.AddInt32(&active, -1)
		mu.Lock()
		peak = max(peak, n)
		mu.Unlock()
		time.Sleep(20 * time.Millisecond)
		return img("x"), nil
	})

	var items []grid.Item
	for i := range 10 {
		items = append(items, refItem(string(rune('a'+i)), "r"))
	}
	for range NewLoader(r, WithMaxParallel(2)).Load(context.Background(), items) {
	}
	if peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestApplyDiscardsDeletedItems(t *testing.T) {
	l := grid.NewLayout("a", grid.Canvas{Width: 400, Height: 400, CellSize: 20})
	ed := grid.NewEditor(l)
	keep := ed.InsertItem(refItem("keep", "r1"))
	gone := ed.InsertItem(refItem("gone", "r2"))

	release := make(chan struct{})
	r := ResolverFunc(func(context.Context, string) (grid.Preview, error) {
		<-release
		return img("x"), nil
	})
	ch := NewLoader(r).Load(context.Background(), ed.Layout().Items)

	ed.DeleteItems([]string{gone.ID})
	close(release)

	if n := Apply(ed, ch); n != 1 {
		t.Errorf("applied = %d, want 1", n)
	}
	if _, ok := ed.Preview(keep.ID); !ok {
		t.Error("surviving item has no preview")
	}
	if ed.Layout().Has(gone.ID) {
		t.Error("late result resurrected deleted item")
	}
}
