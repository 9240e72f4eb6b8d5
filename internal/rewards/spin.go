package rewards

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// SpinPrize is one weighted outcome of the wheel
type SpinPrize struct {
	Amount decimal.Decimal `json:"amount"`
	Weight int             `json:"weight"`
}

// SpinDistribution is the configurable payout table of the wheel. The
// displayed wheel segments are kept separately in Wheel.
type SpinDistribution struct {
	Prizes []SpinPrize
	total  int
}

// DefaultWheel are the segments rendered by clients
var DefaultWheel = []decimal.Decimal{
	decimal.NewFromInt(10),
	decimal.NewFromInt(20),
	decimal.NewFromInt(30),
	decimal.NewFromInt(50),
	decimal.NewFromInt(100),
	decimal.NewFromInt(200),
	decimal.NewFromInt(500),
	decimal.NewFromInt(1000),
}

// NewSpinDistribution validates weights. At least one prize must have a positive weight.
func NewSpinDistribution(prizes []SpinPrize) (*SpinDistribution, error) {
	total := 0
	for _, p := range prizes {
		if p.Weight < 0 {
			return nil, fmt.Errorf("negative weight for prize %s", p.Amount)
		}
		if p.Amount.IsNegative() {
			return nil, fmt.Errorf("negative prize %s", p.Amount)
		}
		total += p.Weight
	}
	if total == 0 {
		return nil, errors.New("spin distribution has no weight")
	}
	return &SpinDistribution{Prizes: prizes, total: total}, nil
}

// ParseSpinDistribution reads "amount:weight,amount:weight", e.g. "10:1" or
// "10:60,20:25,50:10,100:5".
func ParseSpinDistribution(raw string) (*SpinDistribution, error) {
	var prizes []SpinPrize
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		amountStr, weightStr, ok := strings.Cut(part, ":")
		if !ok {
			weightStr = "1"
		}
		amount, err := decimal.NewFromString(strings.TrimSpace(amountStr))
		if err != nil {
			return nil, fmt.Errorf("invalid prize amount %q: %w", amountStr, err)
		}
		weight, err := strconv.Atoi(strings.TrimSpace(weightStr))
		if err != nil {
			return nil, fmt.Errorf("invalid prize weight %q: %w", weightStr, err)
		}
		prizes = append(prizes, SpinPrize{Amount: amount, Weight: weight})
	}
	return NewSpinDistribution(prizes)
}

// Draw picks a prize. intn must return a value in [0, n).
func (d *SpinDistribution) Draw(intn func(n int) int) decimal.Decimal {
	pick := intn(d.total)
	for _, p := range d.Prizes {
		if pick < p.Weight {
			return p.Amount
		}
		pick -= p.Weight
	}
	return d.Prizes[len(d.Prizes)-1].Amount
}

// BlogReward pays for a testimonial based on the latest successful
// withdrawal: 106..200 earns 20..25, above 200 up to 1000 earns 30..50.
func BlogReward(lastWithdrawal decimal.Decimal, intn func(n int) int) decimal.Decimal {
	switch {
	case lastWithdrawal.GreaterThanOrEqual(decimal.NewFromInt(106)) && lastWithdrawal.LessThanOrEqual(decimal.NewFromInt(200)):
		return decimal.NewFromInt(int64(20 + intn(6)))
	case lastWithdrawal.GreaterThan(decimal.NewFromInt(200)) && lastWithdrawal.LessThanOrEqual(decimal.NewFromInt(1000)):
		return decimal.NewFromInt(int64(30 + intn(21)))
	}
	return decimal.Zero
}
