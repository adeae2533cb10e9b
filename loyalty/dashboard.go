/*
dashboard.go - Owner dashboard mirroring

PURPOSE:
  Mirrors each owner's rows of the five customer-facing sheets from the
  master workbook into the owner's own workbook, so owners see only their
  slice. The owner workbook is resolved through the WorkbookOpener port
  from the reference stored on their Owners row.

MIRROR SEMANTICS:
  Destructive per-tab replace: the owner-side tab is rebuilt from the
  filtered master rows on every sync. A tab that fails to mirror is
  logged and skipped; the remaining tabs still sync. The mirror is a
  convenience export, not a system of record.

FLEET SYNC:
  SyncAllOwners walks ACTIVE owners sequentially with a deliberate pause
  between them, respecting the sheet engine's external rate limit. It is
  invoked from a scheduler outside this module.
*/
package loyalty

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/grandstrand/vip-backend/tabular"
)

// WorkbookOpener resolves an owner workbook reference to a tabular store.
type WorkbookOpener interface {
	Open(ctx context.Context, ref string) (MirrorTarget, error)
}

// MirrorTarget is the write side of a dashboard mirror: replace a tab's
// contents wholesale.
type MirrorTarget interface {
	ReplaceSheet(ctx context.Context, sheet string, rows [][]string) error
}

// mirrorTabs lists the sheets mirrored to owner dashboards and the column
// carrying the owner id in each.
var mirrorTabs = []struct {
	sheet    string
	ownerCol int
}{
	{tabular.SheetSignups, tabular.ColSignupOwnerID},
	{tabular.SheetVisitLog, tabular.ColVisitOwnerID},
	{tabular.SheetConfig, tabular.ColConfigOwnerID},
	{tabular.SheetRedemptions, tabular.ColRedemptionOwnerID},
	{tabular.SheetTotalSpend, tabular.ColSpendOwnerID},
}

// SyncOwnerDashboard mirrors one owner's rows into their workbook.
func (s *Service) SyncOwnerDashboard(ctx context.Context, owner OwnerID) error {
	if s.Workbooks == nil {
		s.log.Debug("dashboard sync disabled, no workbook opener configured")
		return nil
	}

	o, err := s.getOwner(ctx, owner)
	if err != nil {
		return err
	}
	if o.WorkbookRef == "" {
		s.log.Warn("owner has no workbook reference", zap.String("owner_id", string(owner)))
		return nil
	}

	target, err := s.Workbooks.Open(ctx, o.WorkbookRef)
	if err != nil {
		return fmt.Errorf("open owner workbook: %w", err)
	}

	log := s.log.With(zap.String("owner_id", string(owner)))
	log.Info("dashboard sync started")

	for _, tab := range mirrorTabs {
		rows, err := s.tables.ReadAll(ctx, tab.sheet)
		if err != nil {
			log.Warn("mirror tab read failed", zap.String("sheet", tab.sheet), zap.Error(err))
			continue
		}

		var filtered [][]string
		for _, row := range rows {
			if OwnerID(tabular.Cell(row, tab.ownerCol)) == owner {
				filtered = append(filtered, row)
			}
		}

		if err := target.ReplaceSheet(ctx, tab.sheet, filtered); err != nil {
			log.Warn("mirror tab write failed", zap.String("sheet", tab.sheet), zap.Error(err))
			continue
		}
		log.Info("tab mirrored", zap.String("sheet", tab.sheet), zap.Int("rows", len(filtered)))
	}

	log.Info("dashboard sync complete")
	return nil
}

// SyncAllOwners mirrors every ACTIVE owner's dashboard, sequentially,
// pausing FleetSyncPause between owners. Returns how many owners synced
// and how many were skipped.
func (s *Service) SyncAllOwners(ctx context.Context) (synced, skipped int, err error) {
	rows, err := s.tables.ReadAll(ctx, tabular.SheetOwners)
	if err != nil {
		return 0, 0, fmt.Errorf("read owners: %w", err)
	}

	for _, row := range rows {
		id := OwnerID(tabular.Cell(row, tabular.ColOwnerID))
		if id == "" || tabular.Cell(row, tabular.ColOwnerStatus) != OwnerStatusActive {
			skipped++
			continue
		}

		if err := s.SyncOwnerDashboard(ctx, id); err != nil {
			// One owner's broken workbook must not stop the fleet.
			s.log.Error("owner dashboard sync failed",
				zap.String("owner_id", string(id)), zap.Error(err))
			skipped++
		} else {
			synced++
		}

		select {
		case <-ctx.Done():
			return synced, skipped, ctx.Err()
		case <-time.After(s.FleetSyncPause):
		}
	}
	return synced, skipped, nil
}
