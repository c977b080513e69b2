package results

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"octopusstream/internal/models"
)

// Import is one stored import session
type Import struct {
	ID        string
	Dir       string
	Stem      string
	Title     string
	Width     int
	Height    int
	Frames    int
	Chunks    []int
	CreatedAt time.Time
}

// SQLiteExporter stores metadata tables in a SQLite database.
type SQLiteExporter struct {
	db *sql.DB
}

// OpenSQLite opens or creates a SQLite database at the given path.
func OpenSQLite(dbPath string) (*SQLiteExporter, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	e := &SQLiteExporter{db: db}
	if err := e.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return e, nil
}

func (e *SQLiteExporter) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS imports (
		id          TEXT PRIMARY KEY,
		dir         TEXT NOT NULL,
		stem        TEXT NOT NULL,
		title       TEXT NOT NULL,
		width       INTEGER NOT NULL,
		height      INTEGER NOT NULL,
		frames      INTEGER NOT NULL,
		chunks      TEXT NOT NULL,
		created_at  TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS frame_values (
		import_id   TEXT NOT NULL REFERENCES imports(id) ON DELETE CASCADE,
		row_idx     INTEGER NOT NULL,
		col_idx     INTEGER NOT NULL,
		field       TEXT NOT NULL,
		value       REAL,
		PRIMARY KEY (import_id, row_idx, col_idx)
	);
	CREATE INDEX IF NOT EXISTS idx_frame_values_field ON frame_values(import_id, field);
	`
	_, err := e.db.Exec(schema)
	return err
}

// Close releases the database.
func (e *SQLiteExporter) Close() error {
	return e.db.Close()
}

// Export stores a stream summary and its metadata table in one transaction
// and returns the new import id.
func (e *SQLiteExporter) Export(ctx context.Context, stream *models.AssembledStream, t *Table) (string, error) {
	id := uuid.NewString()

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	chunkList := make([]string, len(stream.Chunks))
	for i, c := range stream.Chunks {
		chunkList[i] = strconv.Itoa(c)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO imports (id, dir, stem, title, width, height, frames, chunks, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, stream.Locator.Dir, stream.Locator.Stem, stream.Title,
		stream.Width, stream.Height, stream.Len(), strings.Join(chunkList, ","),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert import: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO frame_values (import_id, row_idx, col_idx, field, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for i, row := range t.Rows {
		for j, v := range row {
			var value any = v
			if math.IsNaN(v) {
				value = nil
			}
			if _, err := stmt.ExecContext(ctx, id, i, j, t.Columns[j], value); err != nil {
				return "", fmt.Errorf("insert row %d: %w", i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// GetImport returns the stored summary of an import.
func (e *SQLiteExporter) GetImport(ctx context.Context, id string) (*Import, error) {
	var (
		imp       Import
		chunks    string
		createdAt string
	)
	err := e.db.QueryRowContext(ctx,
		`SELECT id, dir, stem, title, width, height, frames, chunks, created_at FROM imports WHERE id = ?`, id,
	).Scan(&imp.ID, &imp.Dir, &imp.Stem, &imp.Title, &imp.Width, &imp.Height, &imp.Frames, &chunks, &createdAt)
	if err != nil {
		return nil, fmt.Errorf("get import %s: %w", id, err)
	}

	if chunks != "" {
		for _, s := range strings.Split(chunks, ",") {
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("parse chunk list %q: %w", chunks, err)
			}
			imp.Chunks = append(imp.Chunks, n)
		}
	}
	imp.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at of import %s: %w", id, err)
	}
	return &imp, nil
}

// LoadTable reads back the metadata table of an import.
func (e *SQLiteExporter) LoadTable(ctx context.Context, id string) (*Table, error) {
	rows, err := e.db.QueryContext(ctx,
		`SELECT row_idx, col_idx, field, value FROM frame_values WHERE import_id = ? ORDER BY row_idx, col_idx`, id)
	if err != nil {
		return nil, fmt.Errorf("query values: %w", err)
	}
	defer rows.Close()

	t := &Table{}
	for rows.Next() {
		var (
			row, col int
			field    string
			value    sql.NullFloat64
		)
		if err := rows.Scan(&row, &col, &field, &value); err != nil {
			return nil, fmt.Errorf("scan value: %w", err)
		}
		if row == 0 && col == len(t.Columns) {
			t.Columns = append(t.Columns, field)
		}
		for len(t.Rows) <= row {
			t.Rows = append(t.Rows, make([]float64, 0, len(t.Columns)))
		}
		v := math.NaN()
		if value.Valid {
			v = value.Float64
		}
		t.Rows[row] = append(t.Rows[row], v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return t, nil
}
