package sqlite

// migration is one ordered schema step. Versions are applied in slice
// order and recorded in sp_migrations.
type migration struct {
	Version string
	Name    string
	SQL     string
}

// Amounts and timestamps are stored as decimal TEXT because SQLite
// integers are signed 64-bit and ledger amounts are unsigned 64-bit.
var migrations = []migration{
	{
		Version: "20240101000001",
		Name:    "create_sp_accounts",
		SQL: `
CREATE TABLE IF NOT EXISTS sp_accounts (
    owner   TEXT PRIMARY KEY,
    balance TEXT NOT NULL DEFAULT '0'
);
`,
	},
	{
		Version: "20240101000002",
		Name:    "create_sp_bonuses",
		SQL: `
CREATE TABLE IF NOT EXISTS sp_bonuses (
    owner      TEXT PRIMARY KEY,
    amount     TEXT NOT NULL DEFAULT '0',
    last_claim TEXT NOT NULL DEFAULT '0'
);
`,
	},
	{
		Version: "20240101000003",
		Name:    "create_sp_registers",
		SQL: `
CREATE TABLE IF NOT EXISTS sp_registers (
    name  TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

INSERT OR IGNORE INTO sp_registers (name, value) VALUES ('next_stream_id', '1');
INSERT OR IGNORE INTO sp_registers (name, value) VALUES ('total_supply', '0');
`,
	},
	{
		Version: "20240101000004",
		Name:    "create_sp_streams",
		SQL: `
CREATE TABLE IF NOT EXISTS sp_streams (
    id              INTEGER PRIMARY KEY,
    sender          TEXT NOT NULL,
    recipient       TEXT NOT NULL,
    rate_per_second TEXT NOT NULL,
    start_time      TEXT NOT NULL,
    end_time        TEXT,
    paused_at       TEXT,
    total_deposited TEXT NOT NULL DEFAULT '0',
    total_withdrawn TEXT NOT NULL DEFAULT '0',
    status          TEXT NOT NULL DEFAULT 'active'
);

CREATE INDEX IF NOT EXISTS idx_sp_streams_sender ON sp_streams (sender);
CREATE INDEX IF NOT EXISTS idx_sp_streams_recipient ON sp_streams (recipient);
`,
	},
	{
		Version: "20240101000005",
		Name:    "create_sp_stream_index",
		SQL: `
CREATE TABLE IF NOT EXISTS sp_stream_index (
    owner     TEXT NOT NULL,
    role      TEXT NOT NULL,
    stream_id INTEGER NOT NULL,
    PRIMARY KEY (owner, role, stream_id)
);
`,
	},
	{
		Version: "20240101000006",
		Name:    "create_sp_journal",
		SQL: `
CREATE TABLE IF NOT EXISTS sp_journal (
    id           TEXT PRIMARY KEY,
    kind         TEXT NOT NULL,
    owner        TEXT NOT NULL,
    counterparty TEXT,
    stream_id    INTEGER NOT NULL DEFAULT 0,
    amount       TEXT NOT NULL DEFAULT '0',
    ts           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sp_journal_owner ON sp_journal (owner);
CREATE INDEX IF NOT EXISTS idx_sp_journal_stream ON sp_journal (stream_id);
`,
	},
}
