// Package sqlite provides a Store implementation over database/sql with
// the modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/xraph/streampay"
	"github.com/xraph/streampay/account"
	"github.com/xraph/streampay/id"
	"github.com/xraph/streampay/journal"
	ledgerstore "github.com/xraph/streampay/store"
	"github.com/xraph/streampay/stream"
	"github.com/xraph/streampay/types"
)

// compile-time interface check
var _ ledgerstore.Store = (*Store)(nil)

// Store implements store.Store using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new SQLite store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open opens a SQLite database at path and returns a store over it.
// Use ":memory:" for an ephemeral database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("streampay/sqlite: open %q: %w", path, err)
	}
	// Serialized access keeps grouped transactions simple
	db.SetMaxOpenConns(1)
	return New(db), nil
}

// DB returns the underlying database for direct access.
func (s *Store) DB() *sql.DB { return s.db }

// Migrate applies the embedded schema migrations in order, recording each
// applied version in sp_migrations.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS sp_migrations (
    version    TEXT PRIMARY KEY,
    name       TEXT NOT NULL,
    applied_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`)
	if err != nil {
		return fmt.Errorf("%w: create sp_migrations: %v", streampay.ErrMigrationFailed, err)
	}

	for _, m := range migrations {
		var exists int
		err := s.db.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM sp_migrations WHERE version = ?`, m.Version).Scan(&exists)
		if err != nil {
			return fmt.Errorf("%w: check %s: %v", streampay.ErrMigrationFailed, m.Version, err)
		}
		if exists > 0 {
			continue
		}

		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("%w: begin %s: %v", streampay.ErrMigrationFailed, m.Version, err)
		}
		if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%w: apply %s (%s): %v", streampay.ErrMigrationFailed, m.Version, m.Name, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sp_migrations (version, name) VALUES (?, ?)`, m.Version, m.Name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%w: record %s: %v", streampay.ErrMigrationFailed, m.Version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("%w: commit %s: %v", streampay.ErrMigrationFailed, m.Version, err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Account Store ====================

func (s *Store) GetBalance(ctx context.Context, owner id.AccountID) (types.Amount, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT balance FROM sp_accounts WHERE owner = ?`, owner.String()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ZeroAmount, nil
	}
	if err != nil {
		return types.ZeroAmount, err
	}
	return types.ParseAmount(raw)
}

func (s *Store) SaveBalances(ctx context.Context, updates []account.BalanceUpdate) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, u := range updates {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO sp_accounts (owner, balance) VALUES (?, ?)
ON CONFLICT (owner) DO UPDATE SET balance = excluded.balance`,
			u.Owner.String(), u.Balance.String()); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) GetBonus(ctx context.Context, owner id.AccountID) (*account.DailyBonus, error) {
	var amount, lastClaim string
	err := s.db.QueryRowContext(ctx,
		`SELECT amount, last_claim FROM sp_bonuses WHERE owner = ?`, owner.String()).
		Scan(&amount, &lastClaim)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil //nolint:nilnil // absence, not an error
	}
	if err != nil {
		return nil, err
	}

	a, err := types.ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	lc, err := parseTimestamp(lastClaim)
	if err != nil {
		return nil, err
	}
	return &account.DailyBonus{Amount: a, LastClaim: lc}, nil
}

func (s *Store) SaveBonusClaim(ctx context.Context, owner id.AccountID, bonus *account.DailyBonus, balance types.Amount) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO sp_bonuses (owner, amount, last_claim) VALUES (?, ?, ?)
ON CONFLICT (owner) DO UPDATE SET amount = excluded.amount, last_claim = excluded.last_claim`,
		owner.String(), bonus.Amount.String(), bonus.LastClaim.String()); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.ExecContext(ctx, `
INSERT INTO sp_accounts (owner, balance) VALUES (?, ?)
ON CONFLICT (owner) DO UPDATE SET balance = excluded.balance`,
		owner.String(), balance.String()); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (s *Store) TotalSupply(ctx context.Context) (types.Amount, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM sp_registers WHERE name = 'total_supply'`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return types.ZeroAmount, nil
	}
	if err != nil {
		return types.ZeroAmount, err
	}
	return types.ParseAmount(raw)
}

func (s *Store) SetTotalSupply(ctx context.Context, supply types.Amount) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO sp_registers (name, value) VALUES ('total_supply', ?)
ON CONFLICT (name) DO UPDATE SET value = excluded.value`, supply.String())
	return err
}

// ==================== Stream Store ====================

func (s *Store) CreateStream(ctx context.Context, st *stream.Stream) (uint64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}

	var raw string
	if err := tx.QueryRowContext(ctx,
		`SELECT value FROM sp_registers WHERE name = 'next_stream_id'`).Scan(&raw); err != nil {
		_ = tx.Rollback()
		return 0, err
	}
	streamID, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("streampay/sqlite: next_stream_id: %w", err)
	}

	st.ID = streamID
	r := toStreamRow(st)
	if _, err := tx.ExecContext(ctx, `
INSERT INTO sp_streams
    (id, sender, recipient, rate_per_second, start_time, end_time, paused_at,
     total_deposited, total_withdrawn, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Sender, r.Recipient, r.RatePerSecond, r.StartTime,
		r.EndTime, r.PausedAt, r.TotalDeposited, r.TotalWithdrawn, r.Status); err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	for _, idx := range []struct {
		owner string
		role  string
	}{
		{r.Sender, "sender"},
		{r.Recipient, "recipient"},
	} {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sp_stream_index (owner, role, stream_id) VALUES (?, ?, ?)`,
			idx.owner, idx.role, streamID); err != nil {
			_ = tx.Rollback()
			return 0, err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE sp_registers SET value = ? WHERE name = 'next_stream_id'`,
		strconv.FormatUint(streamID+1, 10)); err != nil {
		_ = tx.Rollback()
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return streamID, nil
}

const streamColumns = `id, sender, recipient, rate_per_second, start_time, end_time, paused_at,
       total_deposited, total_withdrawn, status`

func (s *Store) GetStream(ctx context.Context, streamID uint64) (*stream.Stream, error) {
	r := new(streamRow)
	err := s.db.QueryRowContext(ctx,
		`SELECT `+streamColumns+` FROM sp_streams WHERE id = ?`, streamID).
		Scan(&r.ID, &r.Sender, &r.Recipient, &r.RatePerSecond, &r.StartTime,
			&r.EndTime, &r.PausedAt, &r.TotalDeposited, &r.TotalWithdrawn, &r.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, streampay.ErrStreamNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromStreamRow(r)
}

func (s *Store) UpdateStream(ctx context.Context, st *stream.Stream) error {
	r := toStreamRow(st)
	res, err := s.db.ExecContext(ctx, `
UPDATE sp_streams SET
    end_time = ?, paused_at = ?, total_deposited = ?, total_withdrawn = ?, status = ?
WHERE id = ?`,
		r.EndTime, r.PausedAt, r.TotalDeposited, r.TotalWithdrawn, r.Status, r.ID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return streampay.ErrStreamNotFound
	}
	return nil
}

func (s *Store) StreamIDsBySender(ctx context.Context, sender id.AccountID) ([]uint64, error) {
	return s.streamIDsFor(ctx, sender, "sender")
}

func (s *Store) StreamIDsByRecipient(ctx context.Context, recipient id.AccountID) ([]uint64, error) {
	return s.streamIDsFor(ctx, recipient, "recipient")
}

func (s *Store) streamIDsFor(ctx context.Context, owner id.AccountID, role string) ([]uint64, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT stream_id FROM sp_stream_index
WHERE owner = ? AND role = ?
ORDER BY stream_id ASC`, owner.String(), role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]uint64, 0)
	for rows.Next() {
		var streamID uint64
		if err := rows.Scan(&streamID); err != nil {
			return nil, err
		}
		ids = append(ids, streamID)
	}
	return ids, rows.Err()
}

func (s *Store) ListAllStreams(ctx context.Context) ([]*stream.Stream, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+streamColumns+` FROM sp_streams ORDER BY id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*stream.Stream, 0)
	for rows.Next() {
		r := new(streamRow)
		if err := rows.Scan(&r.ID, &r.Sender, &r.Recipient, &r.RatePerSecond, &r.StartTime,
			&r.EndTime, &r.PausedAt, &r.TotalDeposited, &r.TotalWithdrawn, &r.Status); err != nil {
			return nil, err
		}
		st, err := fromStreamRow(r)
		if err != nil {
			return nil, err
		}
		result = append(result, st)
	}
	return result, rows.Err()
}

// ==================== Journal Store ====================

func (s *Store) AppendJournal(ctx context.Context, entries []*journal.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO sp_journal (id, kind, owner, counterparty, stream_id, amount, ts)
VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.ID.String(), string(e.Kind), e.Owner.String(), e.Counterparty.String(),
			e.StreamID, e.Amount.String(), e.Timestamp.String()); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) QueryJournal(ctx context.Context, opts journal.QueryOpts) ([]*journal.Entry, error) {
	query := `SELECT id, kind, owner, counterparty, stream_id, amount, ts FROM sp_journal WHERE 1=1`
	args := make([]any, 0, 4)

	if opts.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(opts.Kind))
	}
	if !opts.Owner.IsNil() {
		query += ` AND owner = ?`
		args = append(args, opts.Owner.String())
	}
	if opts.StreamID != 0 {
		query += ` AND stream_id = ?`
		args = append(args, opts.StreamID)
	}
	query += ` ORDER BY ts ASC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]*journal.Entry, 0)
	for rows.Next() {
		var (
			rawID, kind, owner, counterparty, amount, ts string
			streamID                                     uint64
		)
		if err := rows.Scan(&rawID, &kind, &owner, &counterparty, &streamID, &amount, &ts); err != nil {
			return nil, err
		}
		e, err := scanJournalEntry(rawID, kind, owner, counterparty, streamID, amount, ts)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

func scanJournalEntry(rawID, kind, owner, counterparty string, streamID uint64, amount, ts string) (*journal.Entry, error) {
	entryID, err := id.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("streampay/sqlite: journal id: %w", err)
	}
	ownerID, err := id.Parse(owner)
	if err != nil {
		return nil, fmt.Errorf("streampay/sqlite: journal owner: %w", err)
	}
	var counterpartyID id.AccountID
	if counterparty != "" {
		counterpartyID, err = id.Parse(counterparty)
		if err != nil {
			return nil, fmt.Errorf("streampay/sqlite: journal counterparty: %w", err)
		}
	}
	a, err := types.ParseAmount(amount)
	if err != nil {
		return nil, err
	}
	t, err := parseTimestamp(ts)
	if err != nil {
		return nil, err
	}
	return &journal.Entry{
		ID:           entryID,
		Kind:         journal.Kind(kind),
		Owner:        ownerID,
		Counterparty: counterpartyID,
		StreamID:     streamID,
		Amount:       a,
		Timestamp:    t,
	}, nil
}
