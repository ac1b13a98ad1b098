package account

import (
	"context"

	"github.com/xraph/streampay/id"
	"github.com/xraph/streampay/types"
)

// Store is the account-ledger slice of the storage contract. Missing
// entries are absences, not errors: GetBalance returns zero and GetBonus
// returns nil for owners the store has never seen.
type Store interface {
	GetBalance(ctx context.Context, owner id.AccountID) (types.Amount, error)
	SaveBalances(ctx context.Context, updates []BalanceUpdate) error
	GetBonus(ctx context.Context, owner id.AccountID) (*DailyBonus, error)
	SaveBonusClaim(ctx context.Context, owner id.AccountID, bonus *DailyBonus, balance types.Amount) error
	TotalSupply(ctx context.Context) (types.Amount, error)
}
