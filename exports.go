package streampay

import (
	"github.com/xraph/streampay/id"
	"github.com/xraph/streampay/types"
)

// Re-export common types for convenience so users don't have to import the
// types package.

// Amount is re-exported from types package.
type Amount = types.Amount

// Timestamp is re-exported from types package.
type Timestamp = types.Timestamp

// Clock is re-exported from types package.
type Clock = types.Clock

// AccountID is re-exported from id package.
type AccountID = id.AccountID

// Re-export constructors and parsers
var (
	NewAmount      = types.NewAmount
	ParseAmount    = types.ParseAmount
	SumAmounts     = types.SumAmounts
	NewAccountID   = id.NewAccountID
	ParseAccountID = id.ParseAccountID
)
