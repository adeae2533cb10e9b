/*
members.go - Registration, lookup, visit logging, redemption

These operations are thin next to reconciliation but carry the program's
day-to-day traffic. The visit log they append to is the authoritative
source the reconciliation engine later recomputes visit counts from, so
every visit and registration writes exactly one log record.
*/
package loyalty

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/grandstrand/vip-backend/tabular"
)

// Customer is a registered member as stored on the signups sheet.
type Customer struct {
	Phone        Phone
	FirstName    string
	LastName     string
	Code         Code
	BarID        BarID
	OwnerID      OwnerID
	TotalScans   int
	LastScan     time.Time
	RegisteredAt time.Time
}

// =============================================================================
// REGISTRATION
// =============================================================================

// RegistrationResult reports the outcome of a registration attempt.
type RegistrationResult struct {
	Status  Status
	Code    Code
	OwnerID OwnerID
}

// Register creates a customer. Registration is idempotent from the
// caller's perspective: an already-registered phone returns the existing
// code and owner under ALREADY_EXISTS rather than an error. When code is
// empty the server generates one (first initial + four digits), unique
// within the owner's directory.
func (s *Service) Register(ctx context.Context, owner OwnerID, bar BarID, phone Phone, firstName, lastName string, code Code) (*RegistrationResult, error) {
	lock := s.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	signups, err := s.tables.ReadAll(ctx, tabular.SheetSignups)
	if err != nil {
		return nil, fmt.Errorf("read signups: %w", err)
	}

	for _, row := range signups {
		if NormalizePhone(tabular.Cell(row, tabular.ColSignupPhone)) == phone {
			return &RegistrationResult{
				Status:  StatusAlreadyExists,
				Code:    NormalizeCode(tabular.Cell(row, tabular.ColSignupCode)),
				OwnerID: OwnerID(tabular.Cell(row, tabular.ColSignupOwnerID)),
			}, nil
		}
	}

	if code == "" {
		code, err = generateCode(signups, owner, firstName)
		if err != nil {
			return nil, err
		}
	}

	now := s.now()
	if err := s.tables.Append(ctx, tabular.SheetSignups, []string{
		string(phone), firstName, lastName, string(code),
		string(bar), string(owner), "1",
		FormatCellTime(now), FormatCellTime(now),
	}); err != nil {
		return nil, fmt.Errorf("append signup: %w", err)
	}

	if err := s.appendVisit(ctx, now, phone, code, bar, owner, VisitKindRegistration); err != nil {
		return nil, err
	}

	s.log.Info("new registration",
		zap.String("phone", string(phone)),
		zap.String("code", string(code)),
		zap.String("owner_id", string(owner)),
	)
	return &RegistrationResult{Status: StatusSuccess, Code: code, OwnerID: owner}, nil
}

// generateCode picks a code of the form <first initial><4 digits> that no
// customer of the owner already holds.
func generateCode(signups [][]string, owner OwnerID, firstName string) (Code, error) {
	initial := byte('V')
	if firstName != "" {
		c := firstName[0]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c >= 'A' && c <= 'Z' {
			initial = c
		}
	}

	taken := BuildDirectory(signups, owner)
	for attempt := 0; attempt < 50; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10000))
		if err != nil {
			return "", fmt.Errorf("generate code: %w", err)
		}
		code := Code(fmt.Sprintf("%c%04d", initial, n.Int64()))
		if _, exists := taken[code]; !exists {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}

// =============================================================================
// LOOKUP
// =============================================================================

// LookupByPhone finds a customer by normalized phone and counts their
// visits at the requesting bar from the visit log.
func (s *Service) LookupByPhone(ctx context.Context, phone Phone, bar BarID) (*Customer, int, error) {
	signups, err := s.tables.ReadAll(ctx, tabular.SheetSignups)
	if err != nil {
		return nil, 0, fmt.Errorf("read signups: %w", err)
	}

	var customer *Customer
	for _, row := range signups {
		if NormalizePhone(tabular.Cell(row, tabular.ColSignupPhone)) != phone {
			continue
		}
		scans, _ := strconv.Atoi(tabular.Cell(row, tabular.ColSignupTotalScans))
		customer = &Customer{
			Phone:        phone,
			FirstName:    tabular.Cell(row, tabular.ColSignupFirstName),
			LastName:     tabular.Cell(row, tabular.ColSignupLastName),
			Code:         NormalizeCode(tabular.Cell(row, tabular.ColSignupCode)),
			BarID:        NormalizeBarID(tabular.Cell(row, tabular.ColSignupBarID)),
			OwnerID:      OwnerID(tabular.Cell(row, tabular.ColSignupOwnerID)),
			TotalScans:   scans,
			LastScan:     ParseCellTime(tabular.Cell(row, tabular.ColSignupLastScan)),
			RegisteredAt: ParseCellTime(tabular.Cell(row, tabular.ColSignupRegisteredAt)),
		}
		break
	}
	if customer == nil {
		return nil, 0, ErrCustomerNotFound
	}

	visits, err := s.tables.ReadAll(ctx, tabular.SheetVisitLog)
	if err != nil {
		return nil, 0, fmt.Errorf("read visit log: %w", err)
	}
	visitsAtBar := 0
	for _, row := range visits {
		if NormalizePhone(tabular.Cell(row, tabular.ColVisitPhone)) == phone &&
			NormalizeBarID(tabular.Cell(row, tabular.ColVisitBarID)) == bar {
			visitsAtBar++
		}
	}

	return customer, visitsAtBar, nil
}

// =============================================================================
// VISIT LOGGING
// =============================================================================

// LogVisit records a scan. A second visit for the same phone and bar on
// the same calendar day is a DUPLICATE, a business condition, not an
// error. Otherwise the customer's lifetime scan count and last-scan are
// updated by key lookup and a SCAN record is appended.
func (s *Service) LogVisit(ctx context.Context, owner OwnerID, bar BarID, phone Phone, code Code) (Status, error) {
	lock := s.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	visits, err := s.tables.ReadAll(ctx, tabular.SheetVisitLog)
	if err != nil {
		return StatusError, fmt.Errorf("read visit log: %w", err)
	}

	now := s.now()
	today := now.UTC().Truncate(24 * time.Hour)
	for _, row := range visits {
		if NormalizePhone(tabular.Cell(row, tabular.ColVisitPhone)) != phone ||
			NormalizeBarID(tabular.Cell(row, tabular.ColVisitBarID)) != bar {
			continue
		}
		ts := ParseCellTime(tabular.Cell(row, tabular.ColVisitTimestamp))
		if !ts.IsZero() && ts.UTC().Truncate(24*time.Hour).Equal(today) {
			return StatusDuplicate, nil
		}
	}

	signups, err := s.tables.ReadAll(ctx, tabular.SheetSignups)
	if err != nil {
		return StatusError, fmt.Errorf("read signups: %w", err)
	}
	for i, row := range signups {
		if NormalizePhone(tabular.Cell(row, tabular.ColSignupPhone)) != phone {
			continue
		}
		scans, _ := strconv.Atoi(tabular.Cell(row, tabular.ColSignupTotalScans))
		if err := s.tables.WriteRange(ctx, tabular.SheetSignups, i, tabular.ColSignupTotalScans,
			[]string{strconv.Itoa(scans + 1), FormatCellTime(now)}); err != nil {
			return StatusError, fmt.Errorf("update scan count: %w", err)
		}
		break
	}

	if err := s.appendVisit(ctx, now, phone, code, bar, owner, VisitKindScan); err != nil {
		return StatusError, err
	}

	s.log.Info("visit logged",
		zap.String("phone", string(phone)),
		zap.String("bar_id", string(bar)),
	)
	return StatusSuccess, nil
}

func (s *Service) appendVisit(ctx context.Context, ts time.Time, phone Phone, code Code, bar BarID, owner OwnerID, kind string) error {
	if err := s.tables.Append(ctx, tabular.SheetVisitLog, []string{
		FormatCellTime(ts), string(phone), string(code),
		string(bar), string(owner), kind,
	}); err != nil {
		return fmt.Errorf("append visit record: %w", err)
	}
	return nil
}

// =============================================================================
// REDEMPTION
// =============================================================================

// Redeem appends a write-once audit record. Tier qualification is the
// client's responsibility; the backend only keeps the trail.
func (s *Service) Redeem(ctx context.Context, owner OwnerID, bar BarID, phone Phone, code Code, tier string, visitsAtRedemption int) error {
	if err := s.tables.Append(ctx, tabular.SheetRedemptions, []string{
		FormatCellTime(s.now()), string(phone), string(code),
		tier, strconv.Itoa(visitsAtRedemption),
		string(bar), string(owner),
	}); err != nil {
		return fmt.Errorf("append redemption: %w", err)
	}

	s.log.Info("reward redeemed",
		zap.String("phone", string(phone)),
		zap.String("tier", tier),
	)
	return nil
}
