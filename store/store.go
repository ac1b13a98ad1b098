package store

import (
	"context"

	"github.com/xraph/streampay/account"
	"github.com/xraph/streampay/id"
	"github.com/xraph/streampay/journal"
	"github.com/xraph/streampay/stream"
	"github.com/xraph/streampay/types"
)

// Store is the unified storage interface for all Streampay state.
// Instead of embedding the sub-interfaces, we explicitly declare all methods
// to avoid naming conflicts.
//
// Mutators that span logically separate records are grouped into a single
// method (CreateStream, SaveBalances, SaveBonusClaim) so that each commits
// atomically: a storage fault aborts the whole group and the caller
// observes no new state. Methods fail only on storage-layer faults, never
// on business-logic conditions, except where a named sentinel documents a
// missing record (GetStream).
type Store interface {
	// Account methods. Missing balances read as zero; a missing bonus
	// record reads as nil (lazily constructed by the engine).
	GetBalance(ctx context.Context, owner id.AccountID) (types.Amount, error)
	SaveBalances(ctx context.Context, updates []account.BalanceUpdate) error
	GetBonus(ctx context.Context, owner id.AccountID) (*account.DailyBonus, error)
	SaveBonusClaim(ctx context.Context, owner id.AccountID, bonus *account.DailyBonus, balance types.Amount) error
	TotalSupply(ctx context.Context) (types.Amount, error)
	SetTotalSupply(ctx context.Context, supply types.Amount) error

	// Stream methods. CreateStream assigns the next ID from the persistent
	// counter (starting at 1), writes the stream and appends both party
	// indices in one commit. GetStream returns streampay.ErrStreamNotFound
	// for unassigned IDs; ListAllStreams tolerates holes.
	CreateStream(ctx context.Context, s *stream.Stream) (uint64, error)
	GetStream(ctx context.Context, streamID uint64) (*stream.Stream, error)
	UpdateStream(ctx context.Context, s *stream.Stream) error
	StreamIDsBySender(ctx context.Context, sender id.AccountID) ([]uint64, error)
	StreamIDsByRecipient(ctx context.Context, recipient id.AccountID) ([]uint64, error)
	ListAllStreams(ctx context.Context) ([]*stream.Stream, error)

	// Journal methods
	AppendJournal(ctx context.Context, entries []*journal.Entry) error
	QueryJournal(ctx context.Context, opts journal.QueryOpts) ([]*journal.Entry, error)

	// Core methods
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}
