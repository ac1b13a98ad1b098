// Package memory provides an in-memory Store implementation, primarily
// for tests and demos. All grouped mutations commit under one lock.
package memory

import (
	"context"
	"sync"

	"github.com/xraph/streampay"
	"github.com/xraph/streampay/account"
	"github.com/xraph/streampay/id"
	"github.com/xraph/streampay/journal"
	"github.com/xraph/streampay/store"
	"github.com/xraph/streampay/stream"
	"github.com/xraph/streampay/types"
)

// compile-time interface check
var _ store.Store = (*Store)(nil)

type Store struct {
	mu sync.RWMutex

	// Account storage
	balances    map[string]types.Amount
	bonuses     map[string]account.DailyBonus
	totalSupply types.Amount

	// Stream storage
	streams            map[uint64]stream.Stream
	nextStreamID       uint64
	streamsBySender    map[string][]uint64
	streamsByRecipient map[string][]uint64

	// Journal storage
	entries []journal.Entry
}

func New() *Store {
	return &Store{
		balances:           make(map[string]types.Amount),
		bonuses:            make(map[string]account.DailyBonus),
		streams:            make(map[uint64]stream.Stream),
		nextStreamID:       1,
		streamsBySender:    make(map[string][]uint64),
		streamsByRecipient: make(map[string][]uint64),
		entries:            make([]journal.Entry, 0),
	}
}

// Account Store implementation

func (s *Store) GetBalance(_ context.Context, owner id.AccountID) (types.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Missing accounts read as zero
	return s.balances[owner.String()], nil
}

func (s *Store) SaveBalances(_ context.Context, updates []account.BalanceUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range updates {
		s.balances[u.Owner.String()] = u.Balance
	}
	return nil
}

func (s *Store) GetBonus(_ context.Context, owner id.AccountID) (*account.DailyBonus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if b, ok := s.bonuses[owner.String()]; ok {
		copied := b
		return &copied, nil
	}
	return nil, nil
}

func (s *Store) SaveBonusClaim(_ context.Context, owner id.AccountID, bonus *account.DailyBonus, balance types.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.bonuses[owner.String()] = *bonus
	s.balances[owner.String()] = balance
	return nil
}

func (s *Store) TotalSupply(_ context.Context) (types.Amount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalSupply, nil
}

func (s *Store) SetTotalSupply(_ context.Context, supply types.Amount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.totalSupply = supply
	return nil
}

// Stream Store implementation

func (s *Store) CreateStream(_ context.Context, st *stream.Stream) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	streamID := s.nextStreamID
	st.ID = streamID
	s.streams[streamID] = *st
	s.nextStreamID = streamID + 1

	// Whole-sequence read-modify-write append; entries are never removed
	sender := st.Sender.String()
	recipient := st.Recipient.String()
	s.streamsBySender[sender] = append(s.streamsBySender[sender], streamID)
	s.streamsByRecipient[recipient] = append(s.streamsByRecipient[recipient], streamID)

	return streamID, nil
}

func (s *Store) GetStream(_ context.Context, streamID uint64) (*stream.Stream, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if st, ok := s.streams[streamID]; ok {
		copied := st
		return &copied, nil
	}
	return nil, streampay.ErrStreamNotFound
}

func (s *Store) UpdateStream(_ context.Context, st *stream.Stream) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.streams[st.ID]; !ok {
		return streampay.ErrStreamNotFound
	}
	s.streams[st.ID] = *st
	return nil
}

func (s *Store) StreamIDsBySender(_ context.Context, sender id.AccountID) ([]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.streamsBySender[sender.String()]
	result := make([]uint64, len(ids))
	copy(result, ids)
	return result, nil
}

func (s *Store) StreamIDsByRecipient(_ context.Context, recipient id.AccountID) ([]uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := s.streamsByRecipient[recipient.String()]
	result := make([]uint64, len(ids))
	copy(result, ids)
	return result, nil
}

func (s *Store) ListAllStreams(_ context.Context) ([]*stream.Stream, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Scan assigned IDs up to the counter; holes are absences, not errors
	result := make([]*stream.Stream, 0, len(s.streams))
	for streamID := uint64(1); streamID < s.nextStreamID; streamID++ {
		if st, ok := s.streams[streamID]; ok {
			copied := st
			result = append(result, &copied)
		}
	}
	return result, nil
}

// Journal Store implementation

func (s *Store) AppendJournal(_ context.Context, entries []*journal.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		s.entries = append(s.entries, *e)
	}
	return nil
}

func (s *Store) QueryJournal(_ context.Context, opts journal.QueryOpts) ([]*journal.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*journal.Entry, 0)
	for i := range s.entries {
		e := &s.entries[i]
		if opts.Kind != "" && e.Kind != opts.Kind {
			continue
		}
		if !opts.Owner.IsNil() && e.Owner != opts.Owner {
			continue
		}
		if opts.StreamID != 0 && e.StreamID != opts.StreamID {
			continue
		}
		copied := *e
		result = append(result, &copied)
		if opts.Limit > 0 && len(result) >= opts.Limit {
			break
		}
	}
	return result, nil
}

// Store management

func (s *Store) Migrate(_ context.Context) error {
	return nil // No migration needed for memory store
}

func (s *Store) Ping(_ context.Context) error {
	return nil // Always available
}

func (s *Store) Close() error {
	return nil // Nothing to close
}
