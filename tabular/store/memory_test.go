package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grandstrand/vip-backend/tabular"
)

func TestMemory_MissingSheet(t *testing.T) {
	m := NewMemory()

	_, err := m.ReadAll(context.Background(), tabular.SheetSignups)
	assert.ErrorIs(t, err, tabular.ErrSheetNotFound)
}

func TestMemory_ReadAllCopies(t *testing.T) {
	m := NewSeededMemory()
	ctx := context.Background()
	require.NoError(t, m.Append(ctx, tabular.SheetBarSyncLog, []string{"o", "b", "t"}))

	rows, err := m.ReadAll(ctx, tabular.SheetBarSyncLog)
	require.NoError(t, err)
	rows[0][0] = "mutated"

	again, err := m.ReadAll(ctx, tabular.SheetBarSyncLog)
	require.NoError(t, err)
	assert.Equal(t, "o", again[0][0], "callers must not alias internal rows")
}

func TestMemory_WriteRangeGrowsRow(t *testing.T) {
	m := NewSeededMemory()
	ctx := context.Background()
	require.NoError(t, m.Append(ctx, tabular.SheetOwners, []string{"johns-bars"}))

	require.NoError(t, m.WriteRange(ctx, tabular.SheetOwners, 0, 3, []string{"bar1,bar2"}))

	rows, _ := m.ReadAll(ctx, tabular.SheetOwners)
	assert.Equal(t, []string{"johns-bars", "", "", "bar1,bar2"}, rows[0])
}

func TestMemory_WriteRangeOutOfRange(t *testing.T) {
	m := NewSeededMemory()

	err := m.WriteRange(context.Background(), tabular.SheetOwners, 0, 0, []string{"x"})
	assert.ErrorIs(t, err, tabular.ErrRowOutOfRange)
}

func TestMemory_Reorder(t *testing.T) {
	m := NewSeededMemory()
	ctx := context.Background()
	m.Seed(tabular.SheetTotalSpend, [][]string{{"a"}, {"b"}, {"c"}})

	m.Reorder(tabular.SheetTotalSpend, []int{2, 1, 0})

	rows, _ := m.ReadAll(ctx, tabular.SheetTotalSpend)
	assert.Equal(t, [][]string{{"c"}, {"b"}, {"a"}}, rows)
}
