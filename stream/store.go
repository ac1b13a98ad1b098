package stream

import (
	"context"

	"github.com/xraph/streampay/id"
)

// Store is the stream-ledger slice of the storage contract.
//
// Create assigns the next ID from the persistent counter, writes the
// stream and appends it to both party indices as one atomic group: a
// storage fault mid-sequence must leave no dangling stream/index mismatch.
// Index sequences are append-only and entries are never removed, even
// after a stream stops.
//
// ListAll scans every assigned ID up to the current counter and must
// tolerate holes, treating a missing record as absence rather than an
// error.
type Store interface {
	Create(ctx context.Context, s *Stream) (uint64, error)
	Get(ctx context.Context, streamID uint64) (*Stream, error)
	Update(ctx context.Context, s *Stream) error
	IDsBySender(ctx context.Context, sender id.AccountID) ([]uint64, error)
	IDsByRecipient(ctx context.Context, recipient id.AccountID) ([]uint64, error)
	ListAll(ctx context.Context) ([]*Stream, error)
}
