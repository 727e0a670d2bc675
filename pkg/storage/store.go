// Package storage persists layout documents.
//
// Every backend implements [Store]: whole-document reads and writes keyed by
// layout id. There are no partial updates, no optimistic locking and no
// merge; the last save wins.
//
// # Backends
//
//   - [FileStore]: one JSON file per layout, for local CLI use
//   - [SQLiteStore]: an embedded database with one row per item
//   - [RedisStore]: JSON documents in Redis with an id index set
//   - [MongoStore]: one MongoDB document per layout
//   - [HTTPStore]: a remote `gridlayout serve` instance
//
// [Open] builds the backend named by the configuration.
package storage

import (
	"context"
	"time"

	"github.com/matzehuels/gridlayout/pkg/errors"
	"github.com/matzehuels/gridlayout/pkg/grid"
	"github.com/matzehuels/gridlayout/pkg/observability"
)

// Store reads and writes whole layout documents.
type Store interface {
	// Get returns the layout with the given id, or an error with code
	// LAYOUT_NOT_FOUND.
	Get(ctx context.Context, id string) (*grid.Layout, error)

	// Save writes the full document and returns it as stored. Stores
	// normalize items and fill in CreatedAt; the argument is not modified.
	Save(ctx context.Context, l *grid.Layout) (*grid.Layout, error)

	// Delete removes a layout. Deleting a missing layout is not an error.
	Delete(ctx context.Context, id string) error

	// List returns a summary of every stored layout, most recently updated
	// first.
	List(ctx context.Context) ([]Summary, error)

	Close() error
}

// Summary describes a stored layout without its items.
type Summary struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Items     int       `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Summarize returns the summary of l.
func Summarize(l *grid.Layout) Summary {
	return Summary{ID: l.ID, Name: l.Name, Items: len(l.Items), UpdatedAt: l.UpdatedAt}
}

// NotFound returns the error stores report for a missing layout.
func NotFound(id string) error {
	return errors.New(errors.ErrCodeLayoutNotFound, "layout %q not found", id)
}

// IsNotFound reports whether err means the layout does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, errors.ErrCodeLayoutNotFound) || errors.Is(err, errors.ErrCodeNotFound)
}

// prepare validates l and returns the normalized copy to be written.
func prepare(l *grid.Layout) (*grid.Layout, error) {
	if l == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "layout is nil")
	}
	if err := errors.ValidateLayoutID(l.ID); err != nil {
		return nil, err
	}
	if err := l.Canvas.Validate(); err != nil {
		return nil, err
	}
	out := l.Clone()
	if out.Items == nil {
		out.Items = []grid.Item{}
	}
	grid.NormalizeAll(out)
	now := time.Now().UTC()
	if out.CreatedAt.IsZero() {
		out.CreatedAt = now
	}
	if out.UpdatedAt.IsZero() {
		out.UpdatedAt = now
	}
	return out, nil
}

// storageError wraps a backend failure so callers can surface it as a
// failed save or load.
func storageError(err error, op, id string) error {
	if err == nil {
		return nil
	}
	if errors.GetCode(err) != "" {
		return err
	}
	return errors.Wrap(errors.ErrCodeStorage, err, "%s layout %q", op, id)
}

func observeLoad(ctx context.Context, backend, id string, start time.Time, err error) {
	observability.Store().OnLoad(ctx, backend, id, time.Since(start), err)
}

func observeSave(ctx context.Context, backend, id string, start time.Time, err error) {
	observability.Store().OnSave(ctx, backend, id, time.Since(start), err)
}
