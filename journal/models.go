// Package journal records an append-only trail of ledger operations.
// Entries are buffered in the engine and flushed to the store in batches.
package journal

import (
	"github.com/xraph/streampay/id"
	"github.com/xraph/streampay/types"
)

// Kind labels the operation a journal entry describes.
type Kind string

const (
	KindTransfer      Kind = "transfer"
	KindBonusClaim    Kind = "bonus_claim"
	KindStreamCreated Kind = "stream_created"
	KindStreamPaused  Kind = "stream_paused"
	KindStreamResumed Kind = "stream_resumed"
	KindStreamStopped Kind = "stream_stopped"
	KindWithdrawal    Kind = "withdrawal"
	KindTopUp         Kind = "top_up"
)

// Entry is one journaled operation. StreamID is zero for pure account
// operations; Counterparty is Nil where no second party exists.
type Entry struct {
	ID           id.JournalID    `json:"id"`
	Kind         Kind            `json:"kind"`
	Owner        id.AccountID    `json:"owner"`
	Counterparty id.AccountID    `json:"counterparty,omitempty"`
	StreamID     uint64          `json:"stream_id,omitempty"`
	Amount       types.Amount    `json:"amount"`
	Timestamp    types.Timestamp `json:"timestamp"`
}

// QueryOpts filters journal reads.
type QueryOpts struct {
	Kind     Kind
	Owner    id.AccountID
	StreamID uint64
	Limit    int
}
