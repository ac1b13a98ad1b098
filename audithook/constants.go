package audithook

// Action constants for audit events.
const (
	// Account actions
	ActionTransfer     = "account.transfer"
	ActionBonusClaimed = "account.bonus_claimed"

	// Stream actions
	ActionStreamCreated = "stream.created"
	ActionStreamPaused  = "stream.paused"
	ActionStreamResumed = "stream.resumed"
	ActionStreamStopped = "stream.stopped"
	ActionWithdrawal    = "stream.withdrawal"
	ActionTopUp         = "stream.top_up"

	// Journal actions
	ActionJournalFlushed = "journal.flushed"
)

// Resource constants for audit events.
const (
	ResourceAccount = "account"
	ResourceStream  = "stream"
	ResourceJournal = "journal"
)

// Category constants for audit events.
const (
	CategoryToken     = "token"
	CategoryStreaming = "streaming"
	CategoryLedger    = "ledger"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
