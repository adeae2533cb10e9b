// Package store provides tabular.Store implementations.
package store

import (
	"context"
	"sync"

	"github.com/grandstrand/vip-backend/tabular"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory holds sheets as plain row slices guarded by a RWMutex. Rows are
// copied on the way in and out so callers never alias internal state.
type Memory struct {
	mu     sync.RWMutex
	sheets map[string][][]string
}

// NewMemory creates an empty store with no sheets. Sheets must be created
// explicitly (CreateSheet) or via Seed; reading a missing sheet is an error
// so tests exercise the same initialization path as production.
func NewMemory() *Memory {
	return &Memory{sheets: make(map[string][][]string)}
}

// NewSeededMemory creates a store with every backend sheet present and empty.
func NewSeededMemory() *Memory {
	m := NewMemory()
	for _, name := range tabular.AllSheets {
		m.sheets[name] = nil
	}
	return m
}

// CreateSheet adds an empty sheet. Creating an existing sheet is a no-op.
func (m *Memory) CreateSheet(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sheets[name]; !ok {
		m.sheets[name] = nil
	}
}

// Seed replaces a sheet's contents wholesale. Test fixture helper.
func (m *Memory) Seed(name string, rows [][]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make([][]string, len(rows))
	for i, r := range rows {
		copied[i] = append([]string(nil), r...)
	}
	m.sheets[name] = copied
}

func (m *Memory) ReadAll(_ context.Context, sheet string) ([][]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rows, ok := m.sheets[sheet]
	if !ok {
		return nil, tabular.ErrSheetNotFound
	}

	result := make([][]string, len(rows))
	for i, r := range rows {
		result[i] = append([]string(nil), r...)
	}
	return result, nil
}

func (m *Memory) Append(_ context.Context, sheet string, row []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.sheets[sheet]
	if !ok {
		return tabular.ErrSheetNotFound
	}
	m.sheets[sheet] = append(rows, append([]string(nil), row...))
	return nil
}

func (m *Memory) WriteRange(_ context.Context, sheet string, row, col int, values []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.sheets[sheet]
	if !ok {
		return tabular.ErrSheetNotFound
	}
	if row < 0 || row >= len(rows) {
		return tabular.ErrRowOutOfRange
	}

	// Grow the row if the write extends past its current width.
	need := col + len(values)
	target := rows[row]
	for len(target) < need {
		target = append(target, "")
	}
	copy(target[col:need], values)
	rows[row] = target
	return nil
}

// Reorder replaces a sheet's rows with the given permutation of row indices.
// Test helper for simulating a human re-sorting a dashboard sheet between
// reconciliation runs.
func (m *Memory) Reorder(sheet string, perm []int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rows, ok := m.sheets[sheet]
	if !ok || len(perm) != len(rows) {
		return
	}
	reordered := make([][]string, len(rows))
	for i, p := range perm {
		reordered[i] = rows[p]
	}
	m.sheets[sheet] = reordered
}
