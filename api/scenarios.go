/*
scenarios.go - Demo data seeding for testing and demonstrations

PURPOSE:
  Populates the tabular store with a realistic demo owner: three bars,
  ten customers with varied visit histories, reconciled spend totals,
  and a per-bar config. Gives the portal and POS clients something to
  show without a live workbook.

HOW SEEDING WORKS:
 1. Reset the store if the backing implementation supports it
 2. Write the demo owner, config, and customer signups
 3. Replay each customer's visit history into the visit log
 4. Write spend totals as if a POS upload had already reconciled them

NOTE:
  Seeding resets the store. Only wire this route in development/demo
  environments.

SEE ALSO:
  - server.go: route registration
  - handlers.go: the production operations
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/grandstrand/vip-backend/loyalty"
	"github.com/grandstrand/vip-backend/tabular"
)

// resetter is implemented by stores that can wipe their data rows.
type resetter interface {
	Reset(ctx context.Context) error
}

type demoCustomer struct {
	phone  string
	first  string
	last   string
	code   string
	bar    string
	visits int
	spend  string
}

var demoCustomers = []demoCustomer{
	{"8435550101", "Mike", "Torres", "M4821", "marshwalk", 8, "178.75"},
	{"8435550102", "Sarah", "Bennett", "S7350", "marshwalk", 12, "264.75"},
	{"8435550103", "Dave", "Kowalski", "D1196", "murphys", 3, "28.50"},
	{"8435550104", "Linda", "Reyes", "L8042", "murphys", 6, "108.25"},
	{"8435550105", "Tom", "Whitfield", "T6613", "tikibar", 15, "439.25"},
	{"8435550106", "Angela", "Pruitt", "A2907", "tikibar", 2, "15.00"},
	{"8435550107", "Chris", "Delaney", "C5478", "marshwalk", 9, "197.75"},
	{"8435550108", "Beth", "Nakamura", "B3159", "murphys", 4, "61.50"},
	{"8435550109", "Ray", "Gustafson", "R9024", "tikibar", 11, "279.00"},
	{"8435550110", "Nina", "Calloway", "N7786", "marshwalk", 7, "134.50"},
}

// SeedDemoData resets the store and loads the demo owner.
func (h *Handler) SeedDemoData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if rs, ok := h.Tables.(resetter); ok {
		if err := rs.Reset(ctx); err != nil {
			h.serviceError(w, "seed reset", err)
			return
		}
	}

	if err := h.seedDemoOwner(ctx); err != nil {
		h.serviceError(w, "seed demo data", err)
		return
	}

	h.log.Info("demo data seeded",
		zap.String("owner", "johns-bars"),
		zap.Int("customers", len(demoCustomers)))
	h.writeStatus(w, http.StatusOK, loyalty.StatusSuccess, "demo data loaded")
}

func (h *Handler) seedDemoOwner(ctx context.Context) error {
	const owner = "johns-bars"
	now := time.Now().UTC()

	ownerRow := make([]string, tabular.OwnerWidth)
	ownerRow[tabular.ColOwnerID] = owner
	ownerRow[tabular.ColOwnerPassword] = "demo123"
	ownerRow[tabular.ColOwnerName] = "John's Bars"
	ownerRow[tabular.ColOwnerBarIDs] = "marshwalk,murphys,tikibar"
	ownerRow[tabular.ColOwnerWorkbookRef] = ""
	ownerRow[tabular.ColOwnerCreatedAt] = now.AddDate(0, -6, 0).Format(time.RFC3339)
	ownerRow[tabular.ColOwnerStatus] = loyalty.OwnerStatusActive
	if err := h.Tables.Append(ctx, tabular.SheetOwners, ownerRow); err != nil {
		return fmt.Errorf("seed owner: %w", err)
	}

	for _, bar := range []string{"marshwalk", "murphys", "tikibar"} {
		cfg := loyalty.DefaultBarConfig()
		if err := h.Service.SaveConfig(ctx, owner, loyalty.BarID(bar), cfg); err != nil {
			return fmt.Errorf("seed config %s: %w", bar, err)
		}
	}

	for i, c := range demoCustomers {
		// Space registrations over the past weeks, oldest customer first.
		registered := now.AddDate(0, 0, -(len(demoCustomers)-i)*7)
		lastVisit := registered.AddDate(0, 0, c.visits-1)

		signup := make([]string, tabular.SignupWidth)
		signup[tabular.ColSignupPhone] = c.phone
		signup[tabular.ColSignupFirstName] = c.first
		signup[tabular.ColSignupLastName] = c.last
		signup[tabular.ColSignupCode] = c.code
		signup[tabular.ColSignupBarID] = c.bar
		signup[tabular.ColSignupOwnerID] = owner
		signup[tabular.ColSignupTotalScans] = strconv.Itoa(c.visits)
		signup[tabular.ColSignupLastScan] = lastVisit.Format(time.RFC3339)
		signup[tabular.ColSignupRegisteredAt] = registered.Format(time.RFC3339)
		if err := h.Tables.Append(ctx, tabular.SheetSignups, signup); err != nil {
			return fmt.Errorf("seed signup %s: %w", c.phone, err)
		}

		for v := 0; v < c.visits; v++ {
			kind := loyalty.VisitKindScan
			if v == 0 {
				kind = loyalty.VisitKindRegistration
			}
			visit := make([]string, tabular.VisitWidth)
			visit[tabular.ColVisitTimestamp] = registered.AddDate(0, 0, v).Format(time.RFC3339)
			visit[tabular.ColVisitPhone] = c.phone
			visit[tabular.ColVisitCode] = c.code
			visit[tabular.ColVisitBarID] = c.bar
			visit[tabular.ColVisitOwnerID] = owner
			visit[tabular.ColVisitKind] = kind
			if err := h.Tables.Append(ctx, tabular.SheetVisitLog, visit); err != nil {
				return fmt.Errorf("seed visits %s: %w", c.phone, err)
			}
		}

		spend := make([]string, tabular.SpendWidth)
		spend[tabular.ColSpendPhone] = c.phone
		spend[tabular.ColSpendName] = c.first + " " + c.last
		spend[tabular.ColSpendTotalVisits] = strconv.Itoa(c.visits)
		spend[tabular.ColSpendTotalSpend] = c.spend
		spend[tabular.ColSpendOwnerID] = owner
		spend[tabular.ColSpendUpdatedAt] = lastVisit.Format(time.RFC3339)
		if err := h.Tables.Append(ctx, tabular.SheetTotalSpend, spend); err != nil {
			return fmt.Errorf("seed spend %s: %w", c.phone, err)
		}
	}

	return nil
}
