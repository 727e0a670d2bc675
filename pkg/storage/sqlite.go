package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/matzehuels/gridlayout/pkg/errors"
	"github.com/matzehuels/gridlayout/pkg/grid"
)

const backendSQLite = "sqlite"

// SQLiteStore keeps layouts in an embedded SQLite database: one row per
// layout and one row per item, in insertion order.
type SQLiteStore struct {
	conn *sql.DB
}

// NewSQLiteStore opens (or creates) the database file at path and applies
// migrations.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfig, "sqlite store needs a database path")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer.
	conn.SetMaxOpenConns(1)

	s := &SQLiteStore{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS layouts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL DEFAULT '',
			canvas_json TEXT NOT NULL,
			style_json TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			layout_id TEXT NOT NULL REFERENCES layouts(id) ON DELETE CASCADE,
			id TEXT NOT NULL,
			position INTEGER NOT NULL,
			kind TEXT NOT NULL,
			x INTEGER NOT NULL,
			y INTEGER NOT NULL,
			w INTEGER NOT NULL,
			h INTEGER NOT NULL,
			z INTEGER NOT NULL,
			item_json TEXT NOT NULL,
			PRIMARY KEY (layout_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_layout ON items(layout_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_layouts_updated ON layouts(updated_at)`,
	}
	for _, m := range migrations {
		if _, err := s.conn.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %s: %w", m[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (l *grid.Layout, err error) {
	start := time.Now()
	defer func() { observeLoad(ctx, backendSQLite, id, start, err) }()
	if err := errors.ValidateLayoutID(id); err != nil {
		return nil, err
	}

	var (
		out                  grid.Layout
		canvasJSON, styleJSON string
		created, updated     string
	)
	row := s.conn.QueryRowContext(ctx,
		`SELECT id, name, canvas_json, style_json, created_at, updated_at FROM layouts WHERE id = ?`, id)
	if err := row.Scan(&out.ID, &out.Name, &canvasJSON, &styleJSON, &created, &updated); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, NotFound(id)
		}
		return nil, storageError(err, "read", id)
	}
	if err := json.Unmarshal([]byte(canvasJSON), &out.Canvas); err != nil {
		return nil, storageError(err, "decode canvas of", id)
	}
	if err := json.Unmarshal([]byte(styleJSON), &out.Style); err != nil {
		return nil, storageError(err, "decode style of", id)
	}
	if out.CreatedAt, err = parseTime(created); err != nil {
		return nil, storageError(err, "decode", id)
	}
	if out.UpdatedAt, err = parseTime(updated); err != nil {
		return nil, storageError(err, "decode", id)
	}

	rows, err := s.conn.QueryContext(ctx,
		`SELECT item_json FROM items WHERE layout_id = ? ORDER BY position ASC`, id)
	if err != nil {
		return nil, storageError(err, "read items of", id)
	}
	defer rows.Close()

	out.Items = []grid.Item{}
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, storageError(err, "scan item of", id)
		}
		var it grid.Item
		if err := json.Unmarshal([]byte(raw), &it); err != nil {
			return nil, storageError(err, "decode item of", id)
		}
		out.Items = append(out.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, storageError(err, "read items of", id)
	}
	return &out, nil
}

// Save replaces the layout row and all of its item rows in one
// transaction.
func (s *SQLiteStore) Save(ctx context.Context, l *grid.Layout) (out *grid.Layout, err error) {
	start := time.Now()
	defer func() { observeSave(ctx, backendSQLite, layoutID(l), start, err) }()

	out, err = prepare(l)
	if err != nil {
		return nil, err
	}
	canvasJSON, _ := json.Marshal(out.Canvas)
	styleJSON, _ := json.Marshal(out.Style)

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, storageError(err, "begin save of", out.ID)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO layouts (id, name, canvas_json, style_json, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			canvas_json = excluded.canvas_json,
			style_json = excluded.style_json,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		out.ID, out.Name, string(canvasJSON), string(styleJSON),
		formatTime(out.CreatedAt), formatTime(out.UpdatedAt),
	); err != nil {
		return nil, storageError(err, "save", out.ID)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE layout_id = ?`, out.ID); err != nil {
		return nil, storageError(err, "clear items of", out.ID)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO items (layout_id, id, position, kind, x, y, w, h, z, item_json)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, storageError(err, "save items of", out.ID)
	}
	defer stmt.Close()

	for i, it := range out.Items {
		raw, err := json.Marshal(it)
		if err != nil {
			return nil, storageError(err, "encode item of", out.ID)
		}
		if _, err := stmt.ExecContext(ctx, out.ID, it.ID, i, string(it.Kind), it.X, it.Y, it.W, it.H, it.Z, string(raw)); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "insert item %s", it.ID)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, storageError(err, "commit", out.ID)
	}
	return out, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	if err := errors.ValidateLayoutID(id); err != nil {
		return err
	}
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return storageError(err, "delete", id)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE layout_id = ?`, id); err != nil {
		return storageError(err, "delete items of", id)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM layouts WHERE id = ?`, id); err != nil {
		return storageError(err, "delete", id)
	}
	return tx.Commit()
}

func (s *SQLiteStore) List(ctx context.Context) ([]Summary, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT l.id, l.name, l.updated_at, COUNT(i.id)
		 FROM layouts l LEFT JOIN items i ON i.layout_id = l.id
		 GROUP BY l.id
		 ORDER BY l.updated_at DESC, l.id ASC`)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "list layouts")
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var updated string
		if err := rows.Scan(&sum.ID, &sum.Name, &updated, &sum.Items); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "scan layout summary")
		}
		if sum.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStorage, err, "decode layout summary")
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error { return s.conn.Close() }

// Timestamps are stored as fixed-width UTC text so they sort correctly.
const sqliteTimeFormat = "2006-01-02T15:04:05.000000000Z"

func formatTime(t time.Time) string { return t.UTC().Format(sqliteTimeFormat) }

func parseTime(s string) (time.Time, error) { return time.Parse(sqliteTimeFormat, s) }

var _ Store = (*SQLiteStore)(nil)
