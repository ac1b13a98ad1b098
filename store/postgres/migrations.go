package postgres

// migration is one ordered schema step. Versions are applied in slice
// order and recorded in sp_migrations.
type migration struct {
	Version string
	Name    string
	SQL     string
}

// Amounts and timestamps are stored as NUMERIC(20,0): ledger quantities
// are unsigned 64-bit and BIGINT is signed.
var migrations = []migration{
	{
		Version: "20240101000001",
		Name:    "create_sp_accounts",
		SQL: `
CREATE TABLE IF NOT EXISTS sp_accounts (
    owner   TEXT PRIMARY KEY,
    balance NUMERIC(20,0) NOT NULL DEFAULT 0
);
`,
	},
	{
		Version: "20240101000002",
		Name:    "create_sp_bonuses",
		SQL: `
CREATE TABLE IF NOT EXISTS sp_bonuses (
    owner      TEXT PRIMARY KEY,
    amount     NUMERIC(20,0) NOT NULL DEFAULT 0,
    last_claim NUMERIC(20,0) NOT NULL DEFAULT 0
);
`,
	},
	{
		Version: "20240101000003",
		Name:    "create_sp_registers",
		SQL: `
CREATE TABLE IF NOT EXISTS sp_registers (
    name  TEXT PRIMARY KEY,
    value NUMERIC(20,0) NOT NULL
);

INSERT INTO sp_registers (name, value) VALUES ('next_stream_id', 1)
ON CONFLICT (name) DO NOTHING;
INSERT INTO sp_registers (name, value) VALUES ('total_supply', 0)
ON CONFLICT (name) DO NOTHING;
`,
	},
	{
		Version: "20240101000004",
		Name:    "create_sp_streams",
		SQL: `
CREATE TABLE IF NOT EXISTS sp_streams (
    id              NUMERIC(20,0) PRIMARY KEY,
    sender          TEXT NOT NULL,
    recipient       TEXT NOT NULL,
    rate_per_second NUMERIC(20,0) NOT NULL,
    start_time      NUMERIC(20,0) NOT NULL,
    end_time        NUMERIC(20,0),
    paused_at       NUMERIC(20,0),
    total_deposited NUMERIC(20,0) NOT NULL DEFAULT 0,
    total_withdrawn NUMERIC(20,0) NOT NULL DEFAULT 0,
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
    stream_id NUMERIC(20,0) NOT NULL,
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
    stream_id    NUMERIC(20,0) NOT NULL DEFAULT 0,
    amount       NUMERIC(20,0) NOT NULL DEFAULT 0,
    ts           NUMERIC(20,0) NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sp_journal_owner ON sp_journal (owner);
CREATE INDEX IF NOT EXISTS idx_sp_journal_stream ON sp_journal (stream_id);
`,
	},
}
