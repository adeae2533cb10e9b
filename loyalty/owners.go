/*
owners.go - Owner portal validation

The Owners sheet is operator-maintained: one row per bar owner with their
portal password, workbook reference, ACTIVE/INACTIVE status, and the
last-CSV-sync stamp reconciliation maintains. A failed validation is a
business condition surfaced as a status; only an unreadable sheet is an
error.
*/
package loyalty

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/grandstrand/vip-backend/tabular"
)

// Owner statuses as stored on the sheet.
const OwnerStatusActive = "ACTIVE"

// Owner is a bar owner account.
type Owner struct {
	ID          OwnerID
	Name        string
	BarIDs      []BarID
	WorkbookRef string
	LastCSVSync time.Time
}

// ValidateOwner checks portal credentials against the Owners sheet. Only
// ACTIVE owners validate. A bad id/password pair returns (nil, nil); the
// handler turns that into an ERROR status without detail.
func (s *Service) ValidateOwner(ctx context.Context, id OwnerID, password string) (*Owner, error) {
	rows, err := s.tables.ReadAll(ctx, tabular.SheetOwners)
	if err != nil {
		return nil, fmt.Errorf("read owners: %w", err)
	}

	for _, row := range rows {
		if OwnerID(tabular.Cell(row, tabular.ColOwnerID)) != id ||
			tabular.Cell(row, tabular.ColOwnerPassword) != password ||
			tabular.Cell(row, tabular.ColOwnerStatus) != OwnerStatusActive {
			continue
		}
		return ownerFromRow(row), nil
	}
	return nil, nil
}

// getOwner finds an owner row by id regardless of status.
func (s *Service) getOwner(ctx context.Context, id OwnerID) (*Owner, error) {
	rows, err := s.tables.ReadAll(ctx, tabular.SheetOwners)
	if err != nil {
		return nil, fmt.Errorf("read owners: %w", err)
	}
	for _, row := range rows {
		if OwnerID(tabular.Cell(row, tabular.ColOwnerID)) == id {
			return ownerFromRow(row), nil
		}
	}
	return nil, ErrOwnerNotFound
}

func ownerFromRow(row []string) *Owner {
	o := &Owner{
		ID:          OwnerID(tabular.Cell(row, tabular.ColOwnerID)),
		Name:        tabular.Cell(row, tabular.ColOwnerName),
		WorkbookRef: tabular.Cell(row, tabular.ColOwnerWorkbookRef),
		LastCSVSync: ParseCellTime(tabular.Cell(row, tabular.ColOwnerLastCSVSync)),
	}
	for _, raw := range strings.Split(tabular.Cell(row, tabular.ColOwnerBarIDs), ",") {
		if bar := NormalizeBarID(raw); bar != "" {
			o.BarIDs = append(o.BarIDs, bar)
		}
	}
	return o
}
