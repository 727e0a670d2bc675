package asset

import (
	"context"
	"sync"

	"github.com/matzehuels/gridlayout/pkg/grid"
)

// DefaultMaxParallel is the number of lookups a [Loader] runs at once.
const DefaultMaxParallel = 4

// Result is the outcome of one item's lookup. Err is non-nil when the item
// has no preview.
type Result struct {
	ItemID  string
	RefID   string
	Preview grid.Preview
	Err     error
}

// Loader fetches previews for content-reference items independently of
// each other.
type Loader struct {
	resolver Resolver
	cache    *Cache
	parallel int
}

// LoaderOption configures a [Loader].
type LoaderOption func(*Loader)

// WithResultCache merges every successful lookup into c.
func WithResultCache(c *Cache) LoaderOption { return func(l *Loader) { l.cache = c } }

// WithMaxParallel caps concurrent lookups.
func WithMaxParallel(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.parallel = n
		}
	}
}

// NewLoader creates a loader backed by r.
func NewLoader(r Resolver, opts ...LoaderOption) *Loader {
	l := &Loader{resolver: r, parallel: DefaultMaxParallel}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load starts one lookup per content-reference item and returns a channel
// that receives each result as it completes. The channel is closed after
// the last result. A failed or slow lookup affects only its own item.
//
// Results may arrive after the item was deleted; apply them through
// [grid.Editor.ApplyPreview], which discards those.
func (l *Loader) Load(ctx context.Context, items []grid.Item) <-chan Result {
	var refs []grid.Item
	for _, it := range items {
		if it.Kind == grid.KindContentRef && it.Ref != nil && it.Ref.ID != "" {
			refs = append(refs, it)
		}
	}

	out := make(chan Result, len(refs))
	sem := make(chan struct{}, l.parallel)
	var wg sync.WaitGroup
	for _, it := range refs {
		wg.Add(1)
		go func(itemID, refID string) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				out <- Result{ItemID: itemID, RefID: refID, Err: ctx.Err()}
				return
			}
			defer func() { <-sem }()

			p, err := l.resolver.Resolve(ctx, refID)
			if err == nil && l.cache != nil {
				l.cache.Merge([]Entry{{RefID: refID, Preview: p}})
			}
			out <- Result{ItemID: itemID, RefID: refID, Preview: p, Err: err}
		}(it.ID, it.Ref.ID)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Apply drains results into ed and reports how many previews were
// attached. Failed lookups and results for deleted items are skipped.
func Apply(ed *grid.Editor, results <-chan Result) (applied int) {
	for res := range results {
		if res.Err != nil {
			continue
		}
		if ed.ApplyPreview(res.ItemID, res.Preview) {
			applied++
		}
	}
	return applied
}
