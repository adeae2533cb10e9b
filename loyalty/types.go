/*
Package loyalty implements the VIP loyalty program core: customer
registration, visit scans, reward redemption, per-bar configuration, and
the POS-upload reconciliation engine.

PURPOSE:
  Everything with a real invariant lives here. The tabular store below
  this package only knows read-all/append/write-range; this package owns
  key lookup, owner scoping, aggregation, and upsert-by-key semantics.

IDENTIFIERS:
  Phone, Code, OwnerID and BarID are newtypes normalized once at the
  boundary so every internal comparison is on canonical form:
  - Phone: digits only
  - Code:  upper-cased, trimmed
  - BarID: lower-cased, trimmed

  A phone number (normalized) is the unique natural key for a customer
  and for its spend aggregate row. Row positions are never remembered
  across reads: the aggregate sheet may be reordered by a human editor
  between reconciliation runs.

MONEY:
  Transaction totals use decimal.Decimal. A non-numeric or absent amount
  contributes zero to a batch rather than failing it; POS exports are
  messy and a bad cell must not sink an upload.

SEE ALSO:
  - reconcile.go: the reconciliation engine
  - directory.go: read-side builders (directory, ledger, visit counts)
  - members.go:   registration / visit / redemption operations
*/
package loyalty

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STATUSES
// =============================================================================

// Status is the outcome classification carried by every response. Business
// conditions (duplicate visit, unknown phone, existing registration) are
// statuses, never Go errors.
type Status string

const (
	StatusSuccess       Status = "SUCCESS"
	StatusError         Status = "ERROR"
	StatusNotFound      Status = "NOT_FOUND"
	StatusAlreadyExists Status = "ALREADY_EXISTS"
	StatusDuplicate     Status = "DUPLICATE"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// Phone is a customer phone number in canonical form: digits only.
type Phone string

// NormalizePhone strips every non-digit character.
func NormalizePhone(raw string) Phone {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return Phone(b.String())
}

// Code is a customer's POS matching code in canonical form: trimmed and
// upper-cased.
type Code string

// NormalizeCode trims whitespace and upper-cases.
func NormalizeCode(raw string) Code {
	return Code(strings.ToUpper(strings.TrimSpace(raw)))
}

// OwnerID identifies a bar owner. Owner ids are compared verbatim.
type OwnerID string

// BarID identifies one of an owner's locations, canonical form: trimmed
// and lower-cased.
type BarID string

// NormalizeBarID trims whitespace and lower-cases.
func NormalizeBarID(raw string) BarID {
	return BarID(strings.ToLower(strings.TrimSpace(raw)))
}

// =============================================================================
// VISIT KINDS
// =============================================================================

// Visit log record kinds.
const (
	VisitKindRegistration = "REGISTRATION"
	VisitKindScan         = "SCAN"
)

// =============================================================================
// MONEY
// =============================================================================

// ParseMoney parses a monetary cell. Unparseable input yields zero; a
// corrupted POS amount degrades one transaction, never the whole batch.
func ParseMoney(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FormatMoney renders an amount the way the spend sheet stores it.
func FormatMoney(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// =============================================================================
// TIME
// =============================================================================

// Timestamps in sheet cells are RFC3339. Human-edited sheets occasionally
// carry other layouts, so parsing falls back before giving up.
var cellTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseCellTime parses a timestamp cell. Returns the zero time when the
// cell is empty or unreadable.
func ParseCellTime(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}
	for _, layout := range cellTimeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	return time.Time{}
}

// FormatCellTime renders a timestamp for a sheet cell.
func FormatCellTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
