/*
directory.go - Read-side builders for reconciliation

Pure functions over already-read sheet rows. Each produces one map from a
single pass, filtered to the requesting owner, so the engine body never
repeats a filter predicate and never re-scans per transaction.
*/
package loyalty

import (
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/grandstrand/vip-backend/tabular"
)

// =============================================================================
// CUSTOMER DIRECTORY
// =============================================================================

// DirectoryEntry resolves a POS matching code to a registered customer.
type DirectoryEntry struct {
	Phone Phone
	Name  string
}

// BuildDirectory maps code -> (phone, display name) for one owner's
// customers from the signups sheet. One scan, O(registered customers).
func BuildDirectory(signups [][]string, owner OwnerID) map[Code]DirectoryEntry {
	dir := make(map[Code]DirectoryEntry)
	for _, row := range signups {
		if OwnerID(tabular.Cell(row, tabular.ColSignupOwnerID)) != owner {
			continue
		}
		code := NormalizeCode(tabular.Cell(row, tabular.ColSignupCode))
		if code == "" {
			continue
		}
		dir[code] = DirectoryEntry{
			Phone: NormalizePhone(tabular.Cell(row, tabular.ColSignupPhone)),
			Name: tabular.Cell(row, tabular.ColSignupFirstName) + " " +
				tabular.Cell(row, tabular.ColSignupLastName),
		}
	}
	return dir
}

// =============================================================================
// SPEND LEDGER
// =============================================================================

// LedgerEntry is one customer's working aggregate during reconciliation.
// No row position is kept: the entry is written back by (phone, owner)
// lookup against a fresh read of the sheet.
type LedgerEntry struct {
	Name        string
	TotalVisits int
	TotalSpend  decimal.Decimal
}

// BuildSpendLedger seeds phone -> aggregate from the current spend sheet,
// restricted to the given owner.
func BuildSpendLedger(spend [][]string, owner OwnerID) map[Phone]*LedgerEntry {
	ledger := make(map[Phone]*LedgerEntry)
	for _, row := range spend {
		if OwnerID(tabular.Cell(row, tabular.ColSpendOwnerID)) != owner {
			continue
		}
		phone := NormalizePhone(tabular.Cell(row, tabular.ColSpendPhone))
		if phone == "" {
			continue
		}
		// Bad or blank counts read as zero; reconciliation overwrites
		// them from the visit log anyway.
		visits, _ := strconv.Atoi(tabular.Cell(row, tabular.ColSpendTotalVisits))
		ledger[phone] = &LedgerEntry{
			Name:        tabular.Cell(row, tabular.ColSpendName),
			TotalVisits: visits,
			TotalSpend:  ParseMoney(tabular.Cell(row, tabular.ColSpendTotalSpend)),
		}
	}
	return ledger
}

// =============================================================================
// VISIT COUNTER
// =============================================================================

// CountVisits recomputes visits per phone for one owner from the visit
// log. Registration and scan records both count as visits, matching how
// the log is written (one record per visit or registration event).
func CountVisits(visits [][]string, owner OwnerID) map[Phone]int {
	counts := make(map[Phone]int)
	for _, row := range visits {
		if OwnerID(tabular.Cell(row, tabular.ColVisitOwnerID)) != owner {
			continue
		}
		phone := NormalizePhone(tabular.Cell(row, tabular.ColVisitPhone))
		if phone == "" {
			continue
		}
		counts[phone]++
	}
	return counts
}
