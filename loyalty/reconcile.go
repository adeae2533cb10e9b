/*
reconcile.go - POS upload reconciliation engine

PURPOSE:
  Matches a batch of uploaded POS transactions to registered customers via
  their matching codes, aggregates monetary totals per customer, recomputes
  visit counts from the visit log, and upserts the results back into the
  spend aggregate sheet without duplicating or corrupting rows.

ALGORITHM:
  1. Build the customer directory (code -> phone/name), owner-scoped,
     once per call.
  2. Seed the spend ledger from the current aggregate sheet, keyed by
     phone. Row positions are NOT retained.
  3. Walk the batch in order. Unknown code -> recorded as unmatched and
     skipped; this is an expected business condition (walk-ins, corrupted
     codes), not a failure. Known code -> accumulate the parsed amount into
     the customer's ledger entry, creating it if needed.
  4. Recompute visit counts from the visit log and overwrite every ledger
     entry's count. The recomputation is authoritative: entries absent
     from the log go to zero. Spend is additive across runs; visit counts
     are not.
  5. Upsert each entry by (phone, owner) against a FRESH re-read of the
     aggregate sheet. A row index captured before step 1 could point at
     the wrong row if a human reordered the sheet mid-run.
  6. Stamp the owner's last-CSV-sync column and the per-bar sync log for
     every distinct bar in the batch.

INVARIANTS:
  - matched + unmatched == len(batch)
  - rows of other owners are never read into the ledger or written
  - the engine holds no durable row handles across calls

NOT TRANSACTIONAL:
  A failure mid-upsert leaves earlier writes in place. Acceptable for an
  operator-driven upload that can be re-run; spend totals are additive so
  the operator reviews before re-uploading.
*/
package loyalty

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/grandstrand/vip-backend/tabular"
)

// =============================================================================
// INPUT / OUTPUT TYPES
// =============================================================================

// Transaction is one uploaded POS record.
type Transaction struct {
	Code             string `json:"code"`
	TransactionTotal string `json:"transactionTotal"`
	LocationID       string `json:"locationID"`
	TransactionID    string `json:"transactionID"`
}

// UnmatchedTransaction is an uploaded record whose code resolved to no
// registered customer of the owner. Reported verbatim for operator review.
type UnmatchedTransaction struct {
	Code       string `json:"code"`
	LocationID string `json:"locationID"`
	TxnID      string `json:"transactionID"`
}

// ReconcileResult is the outcome of one POS upload.
type ReconcileResult struct {
	UploadID    string
	Matched     int
	Unmatched   int
	UnmatchedTx []UnmatchedTransaction
	TouchedBars map[BarID]bool
	SyncedAt    time.Time
}

// =============================================================================
// ENGINE
// =============================================================================

// Reconcile processes one POS upload for an owner. Calls for the same
// owner are serialized; calls for different owners may run concurrently.
func (s *Service) Reconcile(ctx context.Context, owner OwnerID, batch []Transaction) (*ReconcileResult, error) {
	lock := s.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	uploadID := uuid.NewString()
	log := s.log.With(
		zap.String("upload_id", uploadID),
		zap.String("owner_id", string(owner)),
		zap.Int("transactions", len(batch)),
	)
	log.Info("pos upload started")

	signups, err := s.tables.ReadAll(ctx, tabular.SheetSignups)
	if err != nil {
		return nil, fmt.Errorf("read signups: %w", err)
	}
	spend, err := s.tables.ReadAll(ctx, tabular.SheetTotalSpend)
	if err != nil {
		return nil, fmt.Errorf("read total spend: %w", err)
	}

	directory := BuildDirectory(signups, owner)
	ledger := BuildSpendLedger(spend, owner)

	result := &ReconcileResult{
		UploadID:    uploadID,
		TouchedBars: make(map[BarID]bool),
	}

	for _, txn := range batch {
		entry, ok := directory[NormalizeCode(txn.Code)]
		if !ok {
			result.Unmatched++
			result.UnmatchedTx = append(result.UnmatchedTx, UnmatchedTransaction{
				Code:       txn.Code,
				LocationID: txn.LocationID,
				TxnID:      txn.TransactionID,
			})
			continue
		}

		result.Matched++

		le, ok := ledger[entry.Phone]
		if !ok {
			le = &LedgerEntry{Name: entry.Name}
			ledger[entry.Phone] = le
		}
		le.TotalSpend = le.TotalSpend.Add(ParseMoney(txn.TransactionTotal))
	}

	// Visit counts come from the log alone. Whatever the sheet held
	// before is replaced, and entries the log never mentions go to zero.
	visits, err := s.tables.ReadAll(ctx, tabular.SheetVisitLog)
	if err != nil {
		return nil, fmt.Errorf("read visit log: %w", err)
	}
	counts := CountVisits(visits, owner)
	for phone, le := range ledger {
		le.TotalVisits = counts[phone]
	}

	now := s.now()
	result.SyncedAt = now

	if err := s.upsertLedger(ctx, owner, ledger, now); err != nil {
		return nil, err
	}

	if err := s.stampLastCSVSync(ctx, owner, now); err != nil {
		// The upload itself succeeded; a missing Owners row only costs
		// the freshness stamp.
		log.Warn("last csv sync stamp failed", zap.Error(err))
	}

	for _, txn := range batch {
		if bar := NormalizeBarID(txn.LocationID); bar != "" {
			result.TouchedBars[bar] = true
		}
	}
	if err := s.UpsertBarSyncs(ctx, owner, result.TouchedBars, now); err != nil {
		return nil, fmt.Errorf("update bar sync log: %w", err)
	}

	// Owners check their dashboard right after uploading, so mirror the
	// fresh totals now instead of waiting for the daily fleet sync. The
	// upload already succeeded; a mirror failure only costs freshness.
	if err := s.SyncOwnerDashboard(ctx, owner); err != nil {
		log.Warn("post-upload dashboard sync failed", zap.Error(err))
	}

	log.Info("pos upload complete",
		zap.Int("matched", result.Matched),
		zap.Int("unmatched", result.Unmatched),
		zap.Int("bars", len(result.TouchedBars)),
	)
	return result, nil
}

// upsertLedger writes every ledger entry back into the spend sheet by
// (phone, owner) lookup against a fresh read.
func (s *Service) upsertLedger(ctx context.Context, owner OwnerID, ledger map[Phone]*LedgerEntry, now time.Time) error {
	// Fresh re-read: positions from the pre-reconciliation snapshot are
	// stale the moment a human edits the sheet.
	fresh, err := s.tables.ReadAll(ctx, tabular.SheetTotalSpend)
	if err != nil {
		return fmt.Errorf("re-read total spend: %w", err)
	}

	for phone, le := range ledger {
		row := []string{
			string(phone),
			le.Name,
			fmt.Sprintf("%d", le.TotalVisits),
			FormatMoney(le.TotalSpend),
			string(owner),
			FormatCellTime(now),
		}

		idx := findSpendRow(fresh, phone, owner)
		if idx >= 0 {
			if err := s.tables.WriteRange(ctx, tabular.SheetTotalSpend, idx, 0, row); err != nil {
				return fmt.Errorf("overwrite spend row for %s: %w", phone, err)
			}
		} else {
			if err := s.tables.Append(ctx, tabular.SheetTotalSpend, row); err != nil {
				return fmt.Errorf("append spend row for %s: %w", phone, err)
			}
			// Track the append locally so a later entry cannot collide
			// with it; positions of existing rows are unchanged.
			fresh = append(fresh, row)
		}
	}
	return nil
}

// findSpendRow locates a spend aggregate row by its natural key.
func findSpendRow(rows [][]string, phone Phone, owner OwnerID) int {
	for i, row := range rows {
		if NormalizePhone(tabular.Cell(row, tabular.ColSpendPhone)) == phone &&
			OwnerID(tabular.Cell(row, tabular.ColSpendOwnerID)) == owner {
			return i
		}
	}
	return -1
}

// stampLastCSVSync records the upload time on the owner's row.
func (s *Service) stampLastCSVSync(ctx context.Context, owner OwnerID, now time.Time) error {
	owners, err := s.tables.ReadAll(ctx, tabular.SheetOwners)
	if err != nil {
		return fmt.Errorf("read owners: %w", err)
	}
	for i, row := range owners {
		if OwnerID(tabular.Cell(row, tabular.ColOwnerID)) == owner {
			return s.tables.WriteRange(ctx, tabular.SheetOwners, i, tabular.ColOwnerLastCSVSync,
				[]string{FormatCellTime(now)})
		}
	}
	return ErrOwnerNotFound
}
