/*
barsync.go - Per-bar last-sync tracking

One row per (owner, bar) in Bar_Sync_Log holding the last POS upload
timestamp for that bar. The owner portal uses it for stale detection.
Last-writer-wins; the service's per-owner lock is the only guard, which
is enough for operator-driven sequential uploads.
*/
package loyalty

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/grandstrand/vip-backend/tabular"
)

// UpsertBarSyncs records a sync timestamp for every bar in the set,
// overwriting existing (owner, bar) rows and appending new ones.
func (s *Service) UpsertBarSyncs(ctx context.Context, owner OwnerID, bars map[BarID]bool, ts time.Time) error {
	if len(bars) == 0 {
		return nil
	}

	rows, err := s.tables.ReadAll(ctx, tabular.SheetBarSyncLog)
	if err != nil {
		return fmt.Errorf("read bar sync log: %w", err)
	}

	for bar := range bars {
		idx := -1
		for i, row := range rows {
			if OwnerID(tabular.Cell(row, tabular.ColBarSyncOwnerID)) == owner &&
				NormalizeBarID(tabular.Cell(row, tabular.ColBarSyncBarID)) == bar {
				idx = i
				break
			}
		}

		if idx >= 0 {
			if err := s.tables.WriteRange(ctx, tabular.SheetBarSyncLog, idx,
				tabular.ColBarSyncLastSync, []string{FormatCellTime(ts)}); err != nil {
				return fmt.Errorf("update bar sync for %s: %w", bar, err)
			}
		} else {
			row := []string{string(owner), string(bar), FormatCellTime(ts)}
			if err := s.tables.Append(ctx, tabular.SheetBarSyncLog, row); err != nil {
				return fmt.Errorf("append bar sync for %s: %w", bar, err)
			}
			rows = append(rows, row)
		}
	}
	return nil
}

// GetBarSyncs returns bar -> last sync time for an owner. A bar whose
// timestamp cell is unreadable maps to nil. A store that has never
// created the sheet yields an empty map, not an error: "never synced"
// is a normal initial state.
func (s *Service) GetBarSyncs(ctx context.Context, owner OwnerID) (map[BarID]*time.Time, error) {
	syncs := make(map[BarID]*time.Time)

	rows, err := s.tables.ReadAll(ctx, tabular.SheetBarSyncLog)
	if errors.Is(err, tabular.ErrSheetNotFound) {
		return syncs, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read bar sync log: %w", err)
	}

	for _, row := range rows {
		if OwnerID(tabular.Cell(row, tabular.ColBarSyncOwnerID)) != owner {
			continue
		}
		bar := NormalizeBarID(tabular.Cell(row, tabular.ColBarSyncBarID))
		if bar == "" {
			continue
		}
		if t := ParseCellTime(tabular.Cell(row, tabular.ColBarSyncLastSync)); !t.IsZero() {
			syncs[bar] = &t
		} else {
			syncs[bar] = nil
		}
	}
	return syncs, nil
}
