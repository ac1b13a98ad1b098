package journal

import "context"

// Store is the journal slice of the storage contract. AppendBatch writes
// a whole flush batch in one commit.
type Store interface {
	AppendBatch(ctx context.Context, entries []*Entry) error
	Query(ctx context.Context, opts QueryOpts) ([]*Entry, error)
}
