package streampay

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/xraph/streampay/account"
	"github.com/xraph/streampay/id"
	"github.com/xraph/streampay/journal"
	"github.com/xraph/streampay/plugin"
	"github.com/xraph/streampay/store"
	"github.com/xraph/streampay/stream"
	"github.com/xraph/streampay/types"
)

// InitialSupply is the token supply registered on first migration.
const InitialSupply types.Amount = 1_000_000_000

// Ledger is the main accounting engine. It owns two coupled ledgers over
// one store: the fungible-token account ledger and the payment-streaming
// ledger. The two share only the account-identity type; stream operations
// never move token balances.
//
// The execution model is one operation at a time: the hosting caller
// serializes operations against a Ledger instance, so check-then-write
// sequences need no additional locking. A caller driving a Ledger from
// multiple goroutines must reintroduce per-account and per-stream mutual
// exclusion to preserve the same guarantee.
type Ledger struct {
	store   store.Store
	plugins *plugin.Registry
	logger  *slog.Logger
	clock   types.Clock

	// Background workers
	journalBuffer chan *journal.Entry
	stopChan      chan struct{}
	wg            sync.WaitGroup

	// Configuration
	bonusAmount          types.Amount
	journalBatchSize     int
	journalFlushInterval time.Duration
}

// New creates a new Ledger instance.
func New(s store.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store:                s,
		plugins:              plugin.NewRegistry(),
		logger:               slog.Default(),
		clock:                types.SystemClock{},
		journalBuffer:        make(chan *journal.Entry, 10000),
		stopChan:             make(chan struct{}),
		bonusAmount:          account.DefaultBonusAmount,
		journalBatchSize:     100,
		journalFlushInterval: 5 * time.Second,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Option configures a Ledger instance.
type Option func(*Ledger)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Ledger) {
		l.logger = logger
		l.plugins.WithLogger(logger)
	}
}

// WithPlugin registers a plugin.
func WithPlugin(p plugin.Plugin) Option {
	return func(l *Ledger) {
		_ = l.plugins.Register(p) //nolint:errcheck // best-effort plugin registration during init
	}
}

// WithClock sets the logical clock consulted once per operation.
func WithClock(c types.Clock) Option {
	return func(l *Ledger) {
		l.clock = c
	}
}

// WithBonusAmount sets the flat daily bonus grant.
func WithBonusAmount(amount types.Amount) Option {
	return func(l *Ledger) {
		l.bonusAmount = amount
	}
}

// WithJournalConfig configures journal batching parameters.
func WithJournalConfig(batchSize int, flushInterval time.Duration) Option {
	return func(l *Ledger) {
		l.journalBatchSize = batchSize
		l.journalFlushInterval = flushInterval
	}
}

// Start begins background workers.
func (l *Ledger) Start(ctx context.Context) error {
	// Migrate database
	if err := l.store.Migrate(ctx); err != nil {
		return err
	}

	// Register the initial supply once
	supply, err := l.store.TotalSupply(ctx)
	if err != nil {
		return err
	}
	if supply.IsZero() {
		if err := l.store.SetTotalSupply(ctx, InitialSupply); err != nil {
			return err
		}
	}

	// Initialize plugins
	l.plugins.EmitInit(ctx, l)

	// Start journal flush worker
	l.wg.Add(1)
	go l.journalFlushWorker(ctx)

	l.logger.Info("streampay started",
		"bonus_amount", l.bonusAmount,
		"journal_batch_size", l.journalBatchSize,
		"journal_flush_interval", l.journalFlushInterval,
	)

	return nil
}

// Stop shuts down the Ledger.
func (l *Ledger) Stop() error {
	close(l.stopChan)
	l.wg.Wait()

	ctx := context.Background()
	l.plugins.EmitShutdown(ctx)

	return l.store.Close()
}

// ──────────────────────────────────────────────────
// Account Ledger
// ──────────────────────────────────────────────────

// Balance returns the stored balance for owner, or zero if the account has
// no entry. Pure read, no side effect.
func (l *Ledger) Balance(ctx context.Context, owner id.AccountID) (types.Amount, error) {
	return l.store.GetBalance(ctx, owner)
}

// TotalSupply returns the registered token supply.
func (l *Ledger) TotalSupply(ctx context.Context) (types.Amount, error) {
	return l.store.TotalSupply(ctx)
}

// Transfer moves amount from owner to target. The authenticated signer
// must be the debited owner. The sufficiency check and both balance
// writes commit as one group; a transfer that would overdraw fails with
// ErrInsufficientBalance and mutates nothing.
//
// The credit side saturates at MaxAmount instead of overflowing. Debits
// never rely on saturation: the explicit check runs first, because a
// clamp-to-zero debit would silently destroy value.
func (l *Ledger) Transfer(ctx context.Context, owner, target id.AccountID, amount types.Amount) error {
	if err := l.requireSigner(ctx, owner); err != nil {
		return err
	}
	if owner == target {
		return ErrSameAccount
	}

	from, err := l.store.GetBalance(ctx, owner)
	if err != nil {
		return err
	}
	if from.LessThan(amount) {
		return ErrInsufficientBalance
	}

	to, err := l.store.GetBalance(ctx, target)
	if err != nil {
		return err
	}

	updates := []account.BalanceUpdate{
		{Owner: owner, Balance: from.SaturatingSub(amount)},
		{Owner: target, Balance: to.SaturatingAdd(amount)},
	}
	if err := l.store.SaveBalances(ctx, updates); err != nil {
		return err
	}

	l.record(&journal.Entry{
		Kind:         journal.KindTransfer,
		Owner:        owner,
		Counterparty: target,
		Amount:       amount,
		Timestamp:    l.clock.Now(),
	})
	l.plugins.EmitTransfer(ctx, owner.String(), target.String(), amount.Units())
	return nil
}

// Credit adds amount to owner's balance, saturating at MaxAmount. It is
// the defined entry point for minting value into the account ledger and
// never fails on business conditions.
func (l *Ledger) Credit(ctx context.Context, owner id.AccountID, amount types.Amount) error {
	balance, err := l.store.GetBalance(ctx, owner)
	if err != nil {
		return err
	}
	return l.store.SaveBalances(ctx, []account.BalanceUpdate{
		{Owner: owner, Balance: balance.SaturatingAdd(amount)},
	})
}

// ClaimBonus claims the daily bonus for owner. The bonus record is lazily
// constructed on first use, so a first claim always succeeds. Within the
// 24-hour cooldown the claim fails with ErrBonusNotAvailable and persists
// nothing — an expected outcome, not a fault. On success the updated
// record and the credited balance commit as one group.
func (l *Ledger) ClaimBonus(ctx context.Context, owner id.AccountID) (types.Amount, error) {
	if err := l.requireSigner(ctx, owner); err != nil {
		return types.ZeroAmount, err
	}

	now := l.clock.Now()

	bonus, err := l.store.GetBonus(ctx, owner)
	if err != nil {
		return types.ZeroAmount, err
	}
	if bonus == nil {
		bonus = account.NewDailyBonus(l.bonusAmount)
	}

	claimed := bonus.Claim(now)
	if claimed.IsZero() {
		return types.ZeroAmount, ErrBonusNotAvailable
	}

	balance, err := l.store.GetBalance(ctx, owner)
	if err != nil {
		return types.ZeroAmount, err
	}

	if err := l.store.SaveBonusClaim(ctx, owner, bonus, balance.SaturatingAdd(claimed)); err != nil {
		return types.ZeroAmount, err
	}

	l.record(&journal.Entry{
		Kind:      journal.KindBonusClaim,
		Owner:     owner,
		Amount:    claimed,
		Timestamp: now,
	})
	l.plugins.EmitBonusClaimed(ctx, owner.String(), claimed.Units())
	return claimed, nil
}

// ──────────────────────────────────────────────────
// Stream Ledger
// ──────────────────────────────────────────────────

// CreateStream opens a stream from the authenticated signer to recipient.
// ratePerSecond must be positive; this is enforced once at creation and
// never revalidated. A non-nil durationSeconds fixes the end time at
// start + duration. The stream record, its ID assignment from the
// persistent counter and both index appends commit as one group.
func (l *Ledger) CreateStream(ctx context.Context, recipient id.AccountID, ratePerSecond types.Amount, durationSeconds *uint64) (uint64, error) {
	sender, err := l.signer(ctx)
	if err != nil {
		return 0, err
	}
	if ratePerSecond.IsZero() {
		return 0, ErrInvalidRate
	}

	now := l.clock.Now()

	var endTime *types.Timestamp
	if durationSeconds != nil {
		t := now.AddSeconds(*durationSeconds)
		endTime = &t
	}

	s := &stream.Stream{
		Sender:         sender,
		Recipient:      recipient,
		RatePerSecond:  ratePerSecond,
		StartTime:      now,
		EndTime:        endTime,
		TotalDeposited: types.ZeroAmount,
		TotalWithdrawn: types.ZeroAmount,
		Status:         stream.StatusActive,
	}

	streamID, err := l.store.CreateStream(ctx, s)
	if err != nil {
		return 0, err
	}
	s.ID = streamID

	l.record(&journal.Entry{
		Kind:         journal.KindStreamCreated,
		Owner:        sender,
		Counterparty: recipient,
		StreamID:     streamID,
		Amount:       ratePerSecond,
		Timestamp:    now,
	})
	l.plugins.EmitStreamCreated(ctx, s)

	l.logger.Debug("stream created",
		"stream_id", streamID,
		"sender", sender,
		"recipient", recipient,
		"rate_per_second", ratePerSecond,
	)

	return streamID, nil
}

// PauseStream pauses an active stream. Only the sender may pause; accrual
// freezes at the pause instant.
func (l *Ledger) PauseStream(ctx context.Context, streamID uint64) error {
	sender, err := l.signer(ctx)
	if err != nil {
		return err
	}

	now := l.clock.Now()

	s, err := l.store.GetStream(ctx, streamID)
	if err != nil {
		return err
	}
	if s.Sender != sender {
		return ErrNotSender
	}
	if s.Status != stream.StatusActive {
		return ErrStreamNotActive
	}

	s.Status = stream.StatusPaused
	s.PausedAt = &now
	if err := l.store.UpdateStream(ctx, s); err != nil {
		return err
	}

	l.record(&journal.Entry{
		Kind:      journal.KindStreamPaused,
		Owner:     sender,
		StreamID:  streamID,
		Timestamp: now,
	})
	l.plugins.EmitStreamPaused(ctx, s)
	return nil
}

// ResumeStream resumes a paused stream. Only the sender may resume.
// Time spent paused never accrues: the pause instant keeps contributing
// to elapsed time as if the pause duration were removed from the clock —
// elapsed is always measured from StartTime to the effective instant, and
// while paused that instant does not advance.
func (l *Ledger) ResumeStream(ctx context.Context, streamID uint64) error {
	sender, err := l.signer(ctx)
	if err != nil {
		return err
	}

	s, err := l.store.GetStream(ctx, streamID)
	if err != nil {
		return err
	}
	if s.Sender != sender {
		return ErrNotSender
	}
	if s.Status != stream.StatusPaused {
		return ErrStreamNotPaused
	}

	s.Status = stream.StatusActive
	s.PausedAt = nil
	if err := l.store.UpdateStream(ctx, s); err != nil {
		return err
	}

	l.record(&journal.Entry{
		Kind:      journal.KindStreamResumed,
		Owner:     sender,
		StreamID:  streamID,
		Timestamp: l.clock.Now(),
	})
	l.plugins.EmitStreamResumed(ctx, s)
	return nil
}

// StopStream terminates a stream from any status, freezing accrual at the
// stop instant. EndTime is overwritten even if the stream was created with
// a fixed duration. Stopping does not forfeit earned, unwithdrawn value:
// the recipient may still withdraw up to the frozen accrual.
func (l *Ledger) StopStream(ctx context.Context, streamID uint64) error {
	sender, err := l.signer(ctx)
	if err != nil {
		return err
	}

	now := l.clock.Now()

	s, err := l.store.GetStream(ctx, streamID)
	if err != nil {
		return err
	}
	if s.Sender != sender {
		return ErrNotSender
	}

	s.Status = stream.StatusStopped
	s.EndTime = &now
	s.PausedAt = nil
	if err := l.store.UpdateStream(ctx, s); err != nil {
		return err
	}

	l.record(&journal.Entry{
		Kind:      journal.KindStreamStopped,
		Owner:     sender,
		StreamID:  streamID,
		Timestamp: now,
	})
	l.plugins.EmitStreamStopped(ctx, s)
	return nil
}

// Withdraw takes value out of a stream. Only the recipient may withdraw.
// A nil amount withdraws everything currently available. The requested
// amount must not exceed the accrual at the operation's instant;
// withdrawals are not idempotent — repeating a successful withdrawal
// without new accrual fails with ErrInsufficientEarned.
//
// Withdrawals are bookkeeping against TotalWithdrawn; no token balance
// moves between the two ledgers.
func (l *Ledger) Withdraw(ctx context.Context, streamID uint64, amount *types.Amount) (types.Amount, error) {
	recipient, err := l.signer(ctx)
	if err != nil {
		return types.ZeroAmount, err
	}

	now := l.clock.Now()

	s, err := l.store.GetStream(ctx, streamID)
	if err != nil {
		return types.ZeroAmount, err
	}
	if s.Recipient != recipient {
		return types.ZeroAmount, ErrNotRecipient
	}

	available := s.Earned(now)

	requested := available
	if amount != nil {
		requested = *amount
	}
	if requested.GreaterThan(available) {
		return types.ZeroAmount, ErrInsufficientEarned
	}

	s.TotalWithdrawn = s.TotalWithdrawn.SaturatingAdd(requested)
	if err := l.store.UpdateStream(ctx, s); err != nil {
		return types.ZeroAmount, err
	}

	l.record(&journal.Entry{
		Kind:      journal.KindWithdrawal,
		Owner:     recipient,
		StreamID:  streamID,
		Amount:    requested,
		Timestamp: now,
	})
	l.plugins.EmitWithdrawal(ctx, s, requested.Units())
	return requested, nil
}

// TopUp records a deposit against a stream. Only the sender may top up.
// This is bookkeeping on TotalDeposited; it moves no funds from the
// account ledger.
func (l *Ledger) TopUp(ctx context.Context, streamID uint64, amount types.Amount) error {
	sender, err := l.signer(ctx)
	if err != nil {
		return err
	}

	s, err := l.store.GetStream(ctx, streamID)
	if err != nil {
		return err
	}
	if s.Sender != sender {
		return ErrNotSender
	}

	s.TotalDeposited = s.TotalDeposited.SaturatingAdd(amount)
	if err := l.store.UpdateStream(ctx, s); err != nil {
		return err
	}

	l.record(&journal.Entry{
		Kind:      journal.KindTopUp,
		Owner:     sender,
		StreamID:  streamID,
		Amount:    amount,
		Timestamp: l.clock.Now(),
	})
	l.plugins.EmitTopUp(ctx, s, amount.Units())
	return nil
}

// ──────────────────────────────────────────────────
// Queries
// ──────────────────────────────────────────────────

// GetStream retrieves a stream by ID.
func (l *Ledger) GetStream(ctx context.Context, streamID uint64) (*stream.Stream, error) {
	return l.store.GetStream(ctx, streamID)
}

// EarnedAmount returns the accrued-but-unwithdrawn value of a stream at
// the current logical time.
func (l *Ledger) EarnedAmount(ctx context.Context, streamID uint64) (types.Amount, error) {
	s, err := l.store.GetStream(ctx, streamID)
	if err != nil {
		return types.ZeroAmount, err
	}
	return s.Earned(l.clock.Now()), nil
}

// StreamsBySender returns every stream the owner created, in creation
// order. Index entries whose stream record is missing are skipped.
func (l *Ledger) StreamsBySender(ctx context.Context, sender id.AccountID) ([]*stream.Stream, error) {
	ids, err := l.store.StreamIDsBySender(ctx, sender)
	if err != nil {
		return nil, err
	}
	return l.resolveStreams(ctx, ids)
}

// StreamsByRecipient returns every stream addressed to the owner, in
// creation order. Index entries whose stream record is missing are skipped.
func (l *Ledger) StreamsByRecipient(ctx context.Context, recipient id.AccountID) ([]*stream.Stream, error) {
	ids, err := l.store.StreamIDsByRecipient(ctx, recipient)
	if err != nil {
		return nil, err
	}
	return l.resolveStreams(ctx, ids)
}

// AllStreams scans every assigned stream ID up to the current counter,
// tolerating holes.
func (l *Ledger) AllStreams(ctx context.Context) ([]*stream.Stream, error) {
	return l.store.ListAllStreams(ctx)
}

// Journal queries the persisted operation journal. Buffered entries not
// yet flushed are not visible.
func (l *Ledger) Journal(ctx context.Context, opts journal.QueryOpts) ([]*journal.Entry, error) {
	return l.store.QueryJournal(ctx, opts)
}

func (l *Ledger) resolveStreams(ctx context.Context, ids []uint64) ([]*stream.Stream, error) {
	streams := make([]*stream.Stream, 0, len(ids))
	for _, streamID := range ids {
		s, err := l.store.GetStream(ctx, streamID)
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			return nil, err
		}
		streams = append(streams, s)
	}
	return streams, nil
}

// ──────────────────────────────────────────────────
// Journal worker
// ──────────────────────────────────────────────────

// record buffers a journal entry without blocking the operation. A full
// buffer drops the entry with a warning; the journal is an audit aid, not
// part of the ledgers' state.
func (l *Ledger) record(e *journal.Entry) {
	e.ID = id.NewJournalID()

	select {
	case l.journalBuffer <- e:
	default:
		l.logger.Warn("journal buffer full, dropping entry", "kind", e.Kind)
	}
}

// journalFlushWorker flushes journal entries to the store.
func (l *Ledger) journalFlushWorker(ctx context.Context) {
	defer l.wg.Done()

	batch := make([]*journal.Entry, 0, l.journalBatchSize)
	ticker := time.NewTicker(l.journalFlushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-l.stopChan:
			// Drain the buffer, then final flush. The Start context may
			// already be canceled during shutdown, so the final flush
			// runs on its own context, like EmitShutdown in Stop.
			for {
				select {
				case e := <-l.journalBuffer:
					batch = append(batch, e)
					continue
				default:
				}
				break
			}
			if len(batch) > 0 {
				l.flushJournalBatch(context.Background(), batch)
			}
			return

		case e := <-l.journalBuffer:
			batch = append(batch, e)
			if len(batch) >= l.journalBatchSize {
				l.flushJournalBatch(ctx, batch)
				batch = make([]*journal.Entry, 0, l.journalBatchSize)
			}

		case <-ticker.C:
			if len(batch) > 0 {
				l.flushJournalBatch(ctx, batch)
				batch = make([]*journal.Entry, 0, l.journalBatchSize)
			}
		}
	}
}

func (l *Ledger) flushJournalBatch(ctx context.Context, batch []*journal.Entry) {
	start := time.Now()

	if err := l.store.AppendJournal(ctx, batch); err != nil {
		l.logger.Error("failed to flush journal batch",
			"error", err,
			"batch_size", len(batch),
		)
		return
	}

	elapsed := time.Since(start)
	l.plugins.EmitJournalFlushed(ctx, len(batch), elapsed)

	l.logger.Debug("flushed journal batch",
		"batch_size", len(batch),
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// ──────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────

type signerKey struct{}

// WithSigner returns a context carrying the authenticated caller identity
// for one operation. The hosting environment resolves the identity; the
// engine only compares it.
func WithSigner(ctx context.Context, signer id.AccountID) context.Context {
	return context.WithValue(ctx, signerKey{}, signer)
}

// signer extracts the authenticated identity, failing the operation when
// none is presented.
func (l *Ledger) signer(ctx context.Context) (id.AccountID, error) {
	v, ok := ctx.Value(signerKey{}).(id.AccountID)
	if !ok || v.IsNil() {
		return id.Nil, ErrNotAuthenticated
	}
	return v, nil
}

// requireSigner ensures the authenticated identity matches owner. Account
// operations may only be performed by the account's owner.
func (l *Ledger) requireSigner(ctx context.Context, owner id.AccountID) error {
	s, err := l.signer(ctx)
	if err != nil {
		return err
	}
	if s != owner {
		return ErrNotAuthenticated
	}
	return nil
}
