/*
Package tabular defines the storage port for the VIP backend.

PURPOSE:
  All persistent state lives in a spreadsheet-like tabular store: named
  sheets of string-cell rows, read by full scans and mutated by position.
  This package defines the interface the core consumes and the sheet
  layouts shared by every implementation.

DESIGN:
  The Store interface is deliberately tiny: read-all, append, and
  write-range are the only primitives the backing sheet engine offers.
  Everything with an actual invariant (key lookup, owner scoping, upsert)
  lives above this port in the loyalty package, which means the stale
  row-position bug class cannot exist below it: no implementation hands
  out durable row handles.

ROW INDEXING:
  Row and column indices are zero-based over data rows. Header rows are a
  presentation concern of the sheet engine and never appear in ReadAll.

SEE ALSO:
  - tabular/store: in-memory implementation for tests and dev mode
  - store/sqlite: SQLite-backed implementation
*/
package tabular

import (
	"context"
	"errors"
)

// Store is the tabular storage port. Implementations must be safe for
// concurrent use; the core still serializes writes per owner above this.
type Store interface {
	// ReadAll returns every data row of the named sheet. The returned
	// slices are owned by the caller.
	ReadAll(ctx context.Context, sheet string) ([][]string, error)

	// Append adds a row after the last data row of the sheet.
	Append(ctx context.Context, sheet string, row []string) error

	// WriteRange overwrites len(values) cells of one row, starting at
	// column col. The row must already exist.
	WriteRange(ctx context.Context, sheet string, row, col int, values []string) error
}

// ErrSheetNotFound is returned when the named sheet does not exist.
// Most callers treat this as fatal; the bar sync tracker treats it as
// "never synced yet" and returns an empty result.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrRowOutOfRange is returned by WriteRange when the row index does not
// refer to an existing data row.
var ErrRowOutOfRange = errors.New("row index out of range")

// =============================================================================
// SHEET LAYOUTS
// =============================================================================

// Sheet names. These match the master workbook tabs one-for-one.
const (
	SheetSignups     = "Customer_Signups"
	SheetVisitLog    = "Visit_Log"
	SheetRedemptions = "Redemptions"
	SheetTotalSpend  = "Customer_Total_Spend"
	SheetBarSyncLog  = "Bar_Sync_Log"
	SheetConfig      = "Config"
	SheetOwners      = "Owners"
)

// Customer_Signups columns.
const (
	ColSignupPhone = iota
	ColSignupFirstName
	ColSignupLastName
	ColSignupCode
	ColSignupBarID
	ColSignupOwnerID
	ColSignupTotalScans
	ColSignupLastScan
	ColSignupRegisteredAt
	SignupWidth
)

// Visit_Log columns.
const (
	ColVisitTimestamp = iota
	ColVisitPhone
	ColVisitCode
	ColVisitBarID
	ColVisitOwnerID
	ColVisitKind
	VisitWidth
)

// Redemptions columns.
const (
	ColRedemptionTimestamp = iota
	ColRedemptionPhone
	ColRedemptionCode
	ColRedemptionTier
	ColRedemptionVisits
	ColRedemptionBarID
	ColRedemptionOwnerID
	RedemptionWidth
)

// Customer_Total_Spend columns.
const (
	ColSpendPhone = iota
	ColSpendName
	ColSpendTotalVisits
	ColSpendTotalSpend
	ColSpendOwnerID
	ColSpendUpdatedAt
	SpendWidth
)

// Bar_Sync_Log columns.
const (
	ColBarSyncOwnerID = iota
	ColBarSyncBarID
	ColBarSyncLastSync
	BarSyncWidth
)

// Config columns. The redemption PIN lives in the last column and must be
// preserved when a config save omits it.
const (
	ColConfigOwnerID = iota
	ColConfigBarID
	ColConfigExpirationHours
	ColConfigDailyLimit
	ColConfigTier1Visits
	ColConfigTier1Reward
	ColConfigTier2Visits
	ColConfigTier2Reward
	ColConfigTier3Visits
	ColConfigTier3Reward
	ColConfigUpdatedAt
	ColConfigRedemptionPIN
	ConfigWidth
)

// Owners columns.
const (
	ColOwnerID = iota
	ColOwnerPassword
	ColOwnerName
	ColOwnerBarIDs
	ColOwnerWorkbookRef
	ColOwnerCreatedAt
	ColOwnerStatus
	ColOwnerLastCSVSync
	OwnerWidth
)

// AllSheets lists every sheet the backend owns, in creation order.
var AllSheets = []string{
	SheetSignups,
	SheetVisitLog,
	SheetRedemptions,
	SheetTotalSpend,
	SheetBarSyncLog,
	SheetConfig,
	SheetOwners,
}

// Cell returns row[col], or "" when the row is too short. Sheets edited by
// humans routinely have ragged rows; reads must tolerate that.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
