// Package account defines the fungible-token account ledger models:
// per-owner balances and the cooldown-gated daily bonus record.
package account

import (
	"github.com/xraph/streampay/id"
	"github.com/xraph/streampay/types"
)

// DefaultBonusAmount is the flat grant credited by a successful bonus
// claim, in smallest units.
const DefaultBonusAmount types.Amount = 1_000_000

// DailyBonus is the per-account bonus record. The grant Amount is fixed at
// construction and never grows or resets through claims; only LastClaim
// advances. Records are created lazily on the first claim attempt and are
// never deleted.
type DailyBonus struct {
	Amount    types.Amount    `json:"amount"`
	LastClaim types.Timestamp `json:"last_claim"`
}

// NewDailyBonus creates a bonus record with LastClaim at epoch zero, so
// the very first claim always succeeds.
func NewDailyBonus(amount types.Amount) *DailyBonus {
	return &DailyBonus{Amount: amount, LastClaim: 0}
}

// CanClaim reports whether the 24-hour cooldown has elapsed at now.
func (b *DailyBonus) CanClaim(now types.Timestamp) bool {
	return now.DeltaSince(b.LastClaim) >= types.BonusCooldown
}

// Claim attempts a claim at now. On success it advances LastClaim and
// returns the fixed grant; otherwise it returns zero and leaves the record
// untouched.
func (b *DailyBonus) Claim(now types.Timestamp) types.Amount {
	if !b.CanClaim(now) {
		return types.ZeroAmount
	}
	b.LastClaim = now
	return b.Amount
}

// BalanceUpdate is one account-balance write. Grouped updates commit
// atomically so a transfer never debits without the matching credit.
type BalanceUpdate struct {
	Owner   id.AccountID
	Balance types.Amount
}
