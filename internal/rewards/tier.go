// Package rewards holds the pure calculations behind VIP tiers, check-in
// and task bonuses, withdrawal tax, the spin wheel and blog rewards.
package rewards

import "github.com/shopspring/decimal"

// TierThresholds are the cumulative recharge amounts unlocking VIP levels 0..6
var TierThresholds = []decimal.Decimal{
	decimal.NewFromInt(0),
	decimal.NewFromInt(390),
	decimal.NewFromInt(4770),
	decimal.NewFromInt(11770),
	decimal.NewFromInt(22770),
	decimal.NewFromInt(44770),
	decimal.NewFromInt(55770),
}

// MaxTier is the highest VIP level
var MaxTier = len(TierThresholds) - 1

// Tier maps a cumulative recharge amount to a VIP level: the index of the
// largest threshold not exceeding the amount. Negative amounts are level 0.
func Tier(cumulativeRecharge decimal.Decimal) int {
	level := 0
	for i, threshold := range TierThresholds {
		if cumulativeRecharge.LessThan(threshold) {
			break
		}
		level = i
	}
	return level
}

// NextTierThreshold returns the amount needed for the next level, or false at max tier
func NextTierThreshold(level int) (decimal.Decimal, bool) {
	if level < 0 || level >= MaxTier {
		return decimal.Zero, false
	}
	return TierThresholds[level+1], true
}

// CheckinTable maps a product tier level to a daily check-in reward
type CheckinTable map[int]decimal.Decimal

// DefaultCheckinTable pays level 1 and level 2 holders only
func DefaultCheckinTable() CheckinTable {
	return CheckinTable{
		1: decimal.NewFromInt(10),
		2: decimal.NewFromInt(20),
	}
}

// CheckinReward returns the reward for the account's highest active product
// tier. Levels missing from the table earn nothing.
func CheckinReward(level int, table CheckinTable) decimal.Decimal {
	if reward, ok := table[level]; ok && reward.IsPositive() {
		return reward
	}
	return decimal.Zero
}
