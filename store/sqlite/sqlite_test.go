package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grandstrand/vip-backend/tabular"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	require.NoError(t, st.Init(context.Background()))
	return st
}

func TestAppendAndReadAll_PreservesOrder(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Append(ctx, tabular.SheetVisitLog,
		[]string{"2026-03-01T20:00:00Z", "8435551234", "A100", "bar1", "johns-bars", "SCAN"}))
	require.NoError(t, st.Append(ctx, tabular.SheetVisitLog,
		[]string{"2026-03-02T20:00:00Z", "8435551234", "A100", "bar1", "johns-bars", "SCAN"}))

	rows, err := st.ReadAll(ctx, tabular.SheetVisitLog)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "2026-03-01T20:00:00Z", rows[0][tabular.ColVisitTimestamp])
	assert.Equal(t, "2026-03-02T20:00:00Z", rows[1][tabular.ColVisitTimestamp])
}

func TestWriteRange_PatchesCellsInPlace(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Append(ctx, tabular.SheetSignups,
		[]string{"8435551234", "James", "Carter", "A100", "bar1", "johns-bars", "3", "", ""}))

	// Patch scan count and last-scan (two adjacent cells).
	require.NoError(t, st.WriteRange(ctx, tabular.SheetSignups, 0, tabular.ColSignupTotalScans,
		[]string{"4", "2026-03-14T19:30:00Z"}))

	rows, err := st.ReadAll(ctx, tabular.SheetSignups)
	require.NoError(t, err)
	assert.Equal(t, "4", rows[0][tabular.ColSignupTotalScans])
	assert.Equal(t, "2026-03-14T19:30:00Z", rows[0][tabular.ColSignupLastScan])
	assert.Equal(t, "James", rows[0][tabular.ColSignupFirstName], "untouched cells survive")
}

func TestWriteRange_GrowsShortRow(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	// Ragged row, shorter than the layout.
	require.NoError(t, st.Append(ctx, tabular.SheetOwners, []string{"johns-bars", "pw", "John"}))

	require.NoError(t, st.WriteRange(ctx, tabular.SheetOwners, 0, tabular.ColOwnerLastCSVSync,
		[]string{"2026-03-14T19:30:00Z"}))

	rows, err := st.ReadAll(ctx, tabular.SheetOwners)
	require.NoError(t, err)
	assert.Equal(t, "2026-03-14T19:30:00Z", rows[0][tabular.ColOwnerLastCSVSync])
	assert.Equal(t, "", rows[0][tabular.ColOwnerStatus])
}

func TestWriteRange_MissingRow(t *testing.T) {
	st := newTestStore(t)

	err := st.WriteRange(context.Background(), tabular.SheetConfig, 7, 0, []string{"x"})
	assert.ErrorIs(t, err, tabular.ErrRowOutOfRange)
}

func TestMissingSheet(t *testing.T) {
	st, err := New(":memory:")
	require.NoError(t, err)
	defer st.Close()
	// No Init: no sheets exist.

	_, err = st.ReadAll(context.Background(), tabular.SheetBarSyncLog)
	assert.ErrorIs(t, err, tabular.ErrSheetNotFound)

	err = st.Append(context.Background(), tabular.SheetBarSyncLog, []string{"o", "b", "t"})
	assert.ErrorIs(t, err, tabular.ErrSheetNotFound)
}

func TestInit_Idempotent(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.Init(context.Background()))

	for _, sheet := range tabular.AllSheets {
		rows, err := st.ReadAll(context.Background(), sheet)
		require.NoError(t, err, "sheet %s", sheet)
		assert.Empty(t, rows)
	}
}

func TestReset_KeepsSheets(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.Append(ctx, tabular.SheetRedemptions,
		[]string{"2026-03-14T19:30:00Z", "8435551234", "A100", "tier1", "5", "bar1", "johns-bars"}))
	require.NoError(t, st.Reset(ctx))

	rows, err := st.ReadAll(ctx, tabular.SheetRedemptions)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
