package rewards

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTierBoundaries(t *testing.T) {
	for i, threshold := range TierThresholds {
		if got := Tier(threshold); got != i {
			t.Errorf("Tier(%s) = %d, want %d", threshold, got, i)
		}
		if i == 0 {
			continue
		}
		below := threshold.Sub(decimal.NewFromInt(1))
		if got := Tier(below); got != i-1 {
			t.Errorf("Tier(%s) = %d, want %d", below, got, i-1)
		}
	}
}

func TestTierOutsideRange(t *testing.T) {
	if got := Tier(decimal.NewFromInt(-5)); got != 0 {
		t.Errorf("negative amount: got tier %d, want 0", got)
	}
	if got := Tier(decimal.NewFromInt(1000000)); got != MaxTier {
		t.Errorf("large amount: got tier %d, want %d", got, MaxTier)
	}
	if got := Tier(decimal.RequireFromString("389.99")); got != 0 {
		t.Errorf("389.99: got tier %d, want 0", got)
	}
}

func TestNextTierThreshold(t *testing.T) {
	next, ok := NextTierThreshold(0)
	if !ok || !next.Equal(decimal.NewFromInt(390)) {
		t.Errorf("NextTierThreshold(0) = %s, %v", next, ok)
	}
	if _, ok := NextTierThreshold(MaxTier); ok {
		t.Error("expected no threshold above max tier")
	}
}

func TestCheckinReward(t *testing.T) {
	table := DefaultCheckinTable()
	tests := []struct {
		level int
		want  int64
	}{
		{0, 0},
		{1, 10},
		{2, 20},
		{3, 0},
		{6, 0},
	}
	for _, tt := range tests {
		if got := CheckinReward(tt.level, table); !got.Equal(decimal.NewFromInt(tt.want)) {
			t.Errorf("CheckinReward(%d) = %s, want %d", tt.level, got, tt.want)
		}
	}
}

func TestQuoteWithdrawal(t *testing.T) {
	policy := DefaultWithdrawalPolicy()

	quote, err := QuoteWithdrawal(decimal.NewFromInt(1000), policy)
	if err != nil {
		t.Fatalf("QuoteWithdrawal failed: %v", err)
	}
	if quote.Tax.StringFixed(2) != "50.00" {
		t.Errorf("tax = %s, want 50.00", quote.Tax.StringFixed(2))
	}
	if quote.FinalAmount.StringFixed(2) != "950.00" {
		t.Errorf("final = %s, want 950.00", quote.FinalAmount.StringFixed(2))
	}

	amounts := []string{"106", "107.33", "333.33", "999.99", "12345.67", "100000"}
	for _, raw := range amounts {
		amount := decimal.RequireFromString(raw)
		quote, err := QuoteWithdrawal(amount, policy)
		if err != nil {
			t.Fatalf("QuoteWithdrawal(%s) failed: %v", raw, err)
		}
		want := amount.Mul(decimal.RequireFromString("0.95")).Round(2)
		if !quote.FinalAmount.Equal(want) {
			t.Errorf("final(%s) = %s, want %s", raw, quote.FinalAmount, want)
		}
		if !quote.Tax.Add(quote.FinalAmount).Equal(amount) {
			t.Errorf("tax + final != amount for %s", raw)
		}
	}
}

func TestQuoteWithdrawalBounds(t *testing.T) {
	policy := DefaultWithdrawalPolicy()
	if _, err := QuoteWithdrawal(decimal.RequireFromString("105.99"), policy); err != ErrBelowMinimum {
		t.Errorf("expected ErrBelowMinimum, got %v", err)
	}
	if _, err := QuoteWithdrawal(decimal.RequireFromString("100000.01"), policy); err != ErrAboveMaximum {
		t.Errorf("expected ErrAboveMaximum, got %v", err)
	}
}

func TestQuoteWithdrawalCents(t *testing.T) {
	policy := DefaultWithdrawalPolicy()

	for _, raw := range []string{"106.005", "250.001", "1000.999"} {
		if _, err := QuoteWithdrawal(decimal.RequireFromString(raw), policy); err != ErrInvalidAmount {
			t.Errorf("QuoteWithdrawal(%s): expected ErrInvalidAmount, got %v", raw, err)
		}
	}

	// the 5% fee lands on a half cent; final rounds up and tax takes the rest
	quote, err := QuoteWithdrawal(decimal.RequireFromString("106.10"), policy)
	if err != nil {
		t.Fatalf("QuoteWithdrawal failed: %v", err)
	}
	if quote.FinalAmount.StringFixed(2) != "100.80" {
		t.Errorf("final = %s, want 100.80", quote.FinalAmount.StringFixed(2))
	}
	if quote.Tax.StringFixed(2) != "5.30" {
		t.Errorf("tax = %s, want 5.30", quote.Tax.StringFixed(2))
	}
	if !quote.Tax.Add(quote.FinalAmount).Equal(quote.Amount) {
		t.Errorf("tax + final = %s, want %s", quote.Tax.Add(quote.FinalAmount), quote.Amount)
	}

	if _, err := QuoteWithdrawal(decimal.RequireFromString("106.100"), policy); err != nil {
		t.Errorf("trailing zeros rejected: %v", err)
	}
}

func TestIsCents(t *testing.T) {
	tests := []struct {
		raw  string
		want bool
	}{
		{"0", true},
		{"1", true},
		{"1.5", true},
		{"1.55", true},
		{"1.550", true},
		{"-3.20", true},
		{"1.555", false},
		{"0.001", false},
	}
	for _, tt := range tests {
		if got := IsCents(decimal.RequireFromString(tt.raw)); got != tt.want {
			t.Errorf("IsCents(%s) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestSpinDistribution(t *testing.T) {
	dist, err := ParseSpinDistribution("10:1")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	for i := 0; i < 5; i++ {
		if got := dist.Draw(func(n int) int { return n - 1 }); !got.Equal(decimal.NewFromInt(10)) {
			t.Errorf("fixed distribution drew %s", got)
		}
	}

	dist, err = ParseSpinDistribution("10:60, 20:30, 100:10")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	tests := []struct {
		pick int
		want int64
	}{
		{0, 10},
		{59, 10},
		{60, 20},
		{89, 20},
		{90, 100},
		{99, 100},
	}
	for _, tt := range tests {
		got := dist.Draw(func(n int) int {
			if n != 100 {
				t.Fatalf("total weight = %d, want 100", n)
			}
			return tt.pick
		})
		if !got.Equal(decimal.NewFromInt(tt.want)) {
			t.Errorf("pick %d drew %s, want %d", tt.pick, got, tt.want)
		}
	}
}

func TestParseSpinDistributionErrors(t *testing.T) {
	for _, raw := range []string{"", "10:0", "abc:1", "10:x", "10:-1"} {
		if _, err := ParseSpinDistribution(raw); err == nil {
			t.Errorf("expected error for %q", raw)
		}
	}
}

func TestBlogReward(t *testing.T) {
	low := func(int) int { return 0 }
	high := func(n int) int { return n - 1 }

	if got := BlogReward(decimal.NewFromInt(150), low); !got.Equal(decimal.NewFromInt(20)) {
		t.Errorf("got %s, want 20", got)
	}
	if got := BlogReward(decimal.NewFromInt(150), high); !got.Equal(decimal.NewFromInt(25)) {
		t.Errorf("got %s, want 25", got)
	}
	if got := BlogReward(decimal.NewFromInt(500), high); !got.Equal(decimal.NewFromInt(50)) {
		t.Errorf("got %s, want 50", got)
	}
	if got := BlogReward(decimal.NewFromInt(5000), high); !got.IsZero() {
		t.Errorf("got %s, want 0", got)
	}
}

func TestTasks(t *testing.T) {
	task, ok := FindTask("task_3")
	if !ok {
		t.Fatal("task_3 not found")
	}
	if task.Unlocked(2) || !task.Unlocked(3) {
		t.Error("task_3 should unlock at exactly 3 active referrals")
	}
	if task.ClaimKey("2026-01-02") != "task_3" {
		t.Errorf("one-time claim key = %s", task.ClaimKey("2026-01-02"))
	}

	daily, _ := FindTask("daily_1")
	if daily.ClaimKey("2026-01-02") != "daily_1:2026-01-02" {
		t.Errorf("daily claim key = %s", daily.ClaimKey("2026-01-02"))
	}
	if _, ok := FindTask("nope"); ok {
		t.Error("unexpected task")
	}
}

func BenchmarkTier(b *testing.B) {
	amount := decimal.NewFromInt(30000)
	for i := 0; i < b.N; i++ {
		Tier(amount)
	}
}
