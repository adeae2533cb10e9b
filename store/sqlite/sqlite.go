/*
Package sqlite provides a SQLite-backed implementation of the tabular
storage port.

PURPOSE:
  Persists the backend's sheets in SQLite while keeping the exact
  spreadsheet surface: named sheets, positional rows, string cells.
  The core never sees SQL; it sees tabular.Store.

SCHEMA:
  sheets:     sheet registry (one row per tab)
  sheet_rows: (sheet, position, cells_json), one row per data row,
              cells stored as a JSON string array

POSITION SEMANTICS:
  position is a dense zero-based index within a sheet. Append assigns
  max(position)+1; WriteRange patches the JSON cell array of one
  existing position. Nothing reorders rows server-side; reordering is
  something human editors do to real spreadsheets, which is exactly why
  the core re-reads before writing by key.

CONCURRENCY:
  sync.RWMutex plus WAL mode: multiple readers, single writer.

USAGE:
  st, err := sqlite.New("./data/vip.db")
  if err != nil { ... }
  defer st.Close()

SEE ALSO:
  - tabular/tabular.go: the port this implements
  - tabular/store/memory.go: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/grandstrand/vip-backend/tabular"
)

// Store implements tabular.Store on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) a sheet database at the given path. Use
// ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sheets (
		name TEXT PRIMARY KEY,
		created_at TEXT NOT NULL DEFAULT (datetime('now'))
	);

	CREATE TABLE IF NOT EXISTS sheet_rows (
		sheet TEXT NOT NULL REFERENCES sheets(name),
		position INTEGER NOT NULL,
		cells_json TEXT NOT NULL,
		PRIMARY KEY (sheet, position)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Init creates every backend sheet that does not exist yet. Called once
// at startup; safe to call repeatedly.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, name := range tabular.AllSheets {
		if _, err := s.db.ExecContext(ctx,
			"INSERT INTO sheets (name) VALUES (?) ON CONFLICT(name) DO NOTHING", name,
		); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	return nil
}

// CreateSheet adds a single sheet. Creating an existing sheet is a no-op.
func (s *Store) CreateSheet(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sheets (name) VALUES (?) ON CONFLICT(name) DO NOTHING", name)
	return err
}

// =============================================================================
// TABULAR STORE (tabular.Store interface)
// =============================================================================

// ReadAll returns every data row of a sheet ordered by position.
func (s *Store) ReadAll(ctx context.Context, sheet string) ([][]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := s.sheetExists(ctx, sheet); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT cells_json FROM sheet_rows WHERE sheet = ? ORDER BY position ASC", sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to query rows: %w", err)
	}
	defer rows.Close()

	var result [][]string
	for rows.Next() {
		var cellsJSON string
		if err := rows.Scan(&cellsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(cellsJSON), &cells); err != nil {
			return nil, fmt.Errorf("corrupt row in sheet %s: %w", sheet, err)
		}
		result = append(result, cells)
	}
	return result, rows.Err()
}

// Append adds a row after the last data row of the sheet.
func (s *Store) Append(ctx context.Context, sheet string, row []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sheetExists(ctx, sheet); err != nil {
		return err
	}

	cellsJSON, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sheet_rows (sheet, position, cells_json)
		VALUES (?, (SELECT COALESCE(MAX(position) + 1, 0) FROM sheet_rows WHERE sheet = ?), ?)`,
		sheet, sheet, string(cellsJSON))
	if err != nil {
		return fmt.Errorf("failed to append row: %w", err)
	}
	return nil
}

// WriteRange overwrites len(values) cells of one existing row starting
// at column col, growing the row if the write extends past its width.
func (s *Store) WriteRange(ctx context.Context, sheet string, row, col int, values []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sheetExists(ctx, sheet); err != nil {
		return err
	}

	var cellsJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT cells_json FROM sheet_rows WHERE sheet = ? AND position = ?",
		sheet, row,
	).Scan(&cellsJSON)
	if err == sql.ErrNoRows {
		return tabular.ErrRowOutOfRange
	}
	if err != nil {
		return fmt.Errorf("failed to read row: %w", err)
	}

	var cells []string
	if err := json.Unmarshal([]byte(cellsJSON), &cells); err != nil {
		return fmt.Errorf("corrupt row in sheet %s: %w", sheet, err)
	}

	need := col + len(values)
	for len(cells) < need {
		cells = append(cells, "")
	}
	copy(cells[col:need], values)

	updated, err := json.Marshal(cells)
	if err != nil {
		return fmt.Errorf("failed to encode row: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"UPDATE sheet_rows SET cells_json = ? WHERE sheet = ? AND position = ?",
		string(updated), sheet, row)
	if err != nil {
		return fmt.Errorf("failed to update row: %w", err)
	}
	return nil
}

func (s *Store) sheetExists(ctx context.Context, sheet string) error {
	var count int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sheets WHERE name = ?", sheet,
	).Scan(&count); err != nil {
		return fmt.Errorf("failed to check sheet: %w", err)
	}
	if count == 0 {
		return fmt.Errorf("%s: %w", sheet, tabular.ErrSheetNotFound)
	}
	return nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all row data but keeps the sheets (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, "DELETE FROM sheet_rows")
	return err
}
