package account

import (
	"testing"

	"github.com/xraph/streampay/types"
)

// 2023-11-14T22:13:20Z in microseconds.
const baseTime types.Timestamp = 1_700_000_000_000_000

func TestFirstClaimSucceeds(t *testing.T) {
	b := NewDailyBonus(DefaultBonusAmount)

	if !b.CanClaim(baseTime) {
		t.Fatal("fresh record should be claimable")
	}
	got := b.Claim(baseTime)
	if got != DefaultBonusAmount {
		t.Errorf("Claim: got %v, want %v", got, DefaultBonusAmount)
	}
	if b.LastClaim != baseTime {
		t.Errorf("LastClaim: got %v, want %v", b.LastClaim, baseTime)
	}
}

func TestClaimCooldown(t *testing.T) {
	cooldown := types.Timestamp(types.BonusCooldown)

	tests := []struct {
		name    string
		elapsed types.Timestamp
		want    bool
	}{
		{"Immediately", 0, false},
		{"OneMicroBefore", cooldown - 1, false},
		{"ExactlyCooldown", cooldown, true},
		{"WellAfter", 3 * cooldown, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewDailyBonus(DefaultBonusAmount)
			if b.Claim(baseTime).IsZero() {
				t.Fatal("first claim failed")
			}

			now := baseTime + tt.elapsed
			if got := b.CanClaim(now); got != tt.want {
				t.Errorf("CanClaim after %v µs: got %v, want %v", tt.elapsed, got, tt.want)
			}

			claimed := b.Claim(now)
			if tt.want && claimed != DefaultBonusAmount {
				t.Errorf("Claim: got %v, want %v", claimed, DefaultBonusAmount)
			}
			if !tt.want && !claimed.IsZero() {
				t.Errorf("Claim within cooldown: got %v, want zero", claimed)
			}
		})
	}
}

func TestFailedClaimLeavesRecordUntouched(t *testing.T) {
	b := NewDailyBonus(DefaultBonusAmount)
	b.Claim(baseTime)

	later := baseTime + 100
	if got := b.Claim(later); !got.IsZero() {
		t.Fatalf("expected zero claim, got %v", got)
	}
	if b.LastClaim != baseTime {
		t.Errorf("failed claim moved LastClaim to %v", b.LastClaim)
	}
}

func TestGrantAmountIsFixed(t *testing.T) {
	// The grant never compounds: repeated claims over many cooldowns
	// always pay the construction-time amount.
	b := NewDailyBonus(42)

	now := baseTime
	for i := 0; i < 5; i++ {
		if got := b.Claim(now); got != 42 {
			t.Fatalf("claim %d: got %v, want 42", i, got)
		}
		now = now + types.Timestamp(types.BonusCooldown)
	}
}

func TestClockRegressionBlocksClaim(t *testing.T) {
	// A claim timestamp before LastClaim saturates the delta to zero
	// rather than wrapping around the cooldown.
	b := NewDailyBonus(DefaultBonusAmount)
	b.Claim(baseTime)

	if b.CanClaim(baseTime - 1) {
		t.Error("claim before LastClaim should be blocked")
	}
}
