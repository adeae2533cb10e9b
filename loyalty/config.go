/*
config.go - Per-bar configuration

One Config row per (owner, bar): reward tier thresholds and descriptions,
the daily scan limit, the redemption expiration window, and the redemption
PIN. Saves write the full row; the PIN is read back first and preserved
when the update omits it, so an admin-UI save cannot wipe it.
*/
package loyalty

import (
	"context"
	"fmt"
	"strconv"

	"github.com/grandstrand/vip-backend/tabular"
)

// BarConfig is the per-location program configuration.
type BarConfig struct {
	ExpirationHours int    `json:"expirationHours"`
	DailyLimit      int    `json:"dailyLimit"`
	Tier1Visits     int    `json:"tier1Visits"`
	Tier1Reward     string `json:"tier1Reward"`
	Tier2Visits     int    `json:"tier2Visits"`
	Tier2Reward     string `json:"tier2Reward"`
	Tier3Visits     int    `json:"tier3Visits"`
	Tier3Reward     string `json:"tier3Reward"`
	RedemptionPIN   string `json:"redemptionPin"`
}

// DefaultBarConfig is served for bars that have never saved a config.
func DefaultBarConfig() BarConfig {
	return BarConfig{
		ExpirationHours: 12,
		DailyLimit:      1,
		Tier1Visits:     5,
		Tier1Reward:     "Free Appetizer (up to $12)",
		Tier2Visits:     10,
		Tier2Reward:     "Free Well Drink",
		Tier3Visits:     20,
		Tier3Reward:     "10% Off Entire Check",
		RedemptionPIN:   "0000",
	}
}

// GetConfig returns the configuration for (owner, bar), falling back to
// the package defaults when no row exists.
func (s *Service) GetConfig(ctx context.Context, owner OwnerID, bar BarID) (BarConfig, error) {
	rows, err := s.tables.ReadAll(ctx, tabular.SheetConfig)
	if err != nil {
		return BarConfig{}, fmt.Errorf("read config: %w", err)
	}

	for _, row := range rows {
		if OwnerID(tabular.Cell(row, tabular.ColConfigOwnerID)) != owner ||
			NormalizeBarID(tabular.Cell(row, tabular.ColConfigBarID)) != bar {
			continue
		}
		return configFromRow(row), nil
	}
	return DefaultBarConfig(), nil
}

// SaveConfig upserts the full config row for (owner, bar). An empty PIN
// in the update preserves whatever PIN the row already holds.
func (s *Service) SaveConfig(ctx context.Context, owner OwnerID, bar BarID, cfg BarConfig) error {
	lock := s.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	rows, err := s.tables.ReadAll(ctx, tabular.SheetConfig)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	idx := -1
	existingPIN := "0000"
	for i, row := range rows {
		if OwnerID(tabular.Cell(row, tabular.ColConfigOwnerID)) == owner &&
			NormalizeBarID(tabular.Cell(row, tabular.ColConfigBarID)) == bar {
			idx = i
			if pin := tabular.Cell(row, tabular.ColConfigRedemptionPIN); pin != "" {
				existingPIN = pin
			}
			break
		}
	}

	pin := cfg.RedemptionPIN
	if pin == "" {
		pin = existingPIN
	}

	row := []string{
		string(owner), string(bar),
		strconv.Itoa(cfg.ExpirationHours), strconv.Itoa(cfg.DailyLimit),
		strconv.Itoa(cfg.Tier1Visits), cfg.Tier1Reward,
		strconv.Itoa(cfg.Tier2Visits), cfg.Tier2Reward,
		strconv.Itoa(cfg.Tier3Visits), cfg.Tier3Reward,
		FormatCellTime(s.now()),
		pin,
	}

	if idx >= 0 {
		if err := s.tables.WriteRange(ctx, tabular.SheetConfig, idx, 0, row); err != nil {
			return fmt.Errorf("overwrite config row: %w", err)
		}
		return nil
	}
	if err := s.tables.Append(ctx, tabular.SheetConfig, row); err != nil {
		return fmt.Errorf("append config row: %w", err)
	}
	return nil
}

func configFromRow(row []string) BarConfig {
	cfg := DefaultBarConfig()
	if n, err := strconv.Atoi(tabular.Cell(row, tabular.ColConfigExpirationHours)); err == nil {
		cfg.ExpirationHours = n
	}
	if n, err := strconv.Atoi(tabular.Cell(row, tabular.ColConfigDailyLimit)); err == nil {
		cfg.DailyLimit = n
	}
	if n, err := strconv.Atoi(tabular.Cell(row, tabular.ColConfigTier1Visits)); err == nil {
		cfg.Tier1Visits = n
	}
	if n, err := strconv.Atoi(tabular.Cell(row, tabular.ColConfigTier2Visits)); err == nil {
		cfg.Tier2Visits = n
	}
	if n, err := strconv.Atoi(tabular.Cell(row, tabular.ColConfigTier3Visits)); err == nil {
		cfg.Tier3Visits = n
	}
	if v := tabular.Cell(row, tabular.ColConfigTier1Reward); v != "" {
		cfg.Tier1Reward = v
	}
	if v := tabular.Cell(row, tabular.ColConfigTier2Reward); v != "" {
		cfg.Tier2Reward = v
	}
	if v := tabular.Cell(row, tabular.ColConfigTier3Reward); v != "" {
		cfg.Tier3Reward = v
	}
	if v := tabular.Cell(row, tabular.ColConfigRedemptionPIN); v != "" {
		cfg.RedemptionPIN = v
	}
	return cfg
}
