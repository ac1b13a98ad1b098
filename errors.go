package streampay

import "errors"

// Sentinel errors for common failure scenarios. Caller errors (wrong
// identity, wrong state, insufficient funds, malformed input) are expected
// and recoverable; store errors indicate environment-level faults that
// abort the current operation without committing any mutation.
var (
	// General errors
	ErrNotFound         = errors.New("streampay: not found")
	ErrInvalidInput     = errors.New("streampay: invalid input")
	ErrNotAuthenticated = errors.New("streampay: not authenticated")

	// Account ledger errors
	ErrInsufficientBalance = errors.New("streampay: insufficient balance")
	ErrBonusNotAvailable   = errors.New("streampay: bonus not available yet")
	ErrSameAccount         = errors.New("streampay: sender and recipient are the same account")

	// Stream ledger errors
	ErrStreamNotFound     = errors.New("streampay: stream not found")
	ErrNotSender          = errors.New("streampay: only the stream sender may perform this operation")
	ErrNotRecipient       = errors.New("streampay: only the stream recipient may withdraw")
	ErrStreamNotActive    = errors.New("streampay: stream not active")
	ErrStreamNotPaused    = errors.New("streampay: stream not paused")
	ErrInvalidRate        = errors.New("streampay: rate must be > 0")
	ErrInvalidAmount      = errors.New("streampay: invalid amount")
	ErrInsufficientEarned = errors.New("streampay: insufficient earned amount")

	// Journal errors
	ErrJournalBufferFull = errors.New("streampay: journal buffer full")

	// Store errors
	ErrStoreClosed       = errors.New("streampay: store is closed")
	ErrTransactionFailed = errors.New("streampay: transaction failed")
	ErrMigrationFailed   = errors.New("streampay: migration failed")
)

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrStreamNotFound)
}

// IsCallerError returns true for expected, recoverable failures caused by
// the caller: wrong identity, wrong party, wrong state, malformed input,
// or insufficient funds. Everything else is treated as a storage or
// infrastructure fault.
func IsCallerError(err error) bool {
	return IsNotFound(err) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrBonusNotAvailable) ||
		errors.Is(err, ErrSameAccount) ||
		errors.Is(err, ErrNotSender) ||
		errors.Is(err, ErrNotRecipient) ||
		errors.Is(err, ErrStreamNotActive) ||
		errors.Is(err, ErrStreamNotPaused) ||
		errors.Is(err, ErrInvalidRate) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInsufficientEarned)
}

// IsRetryable returns true if the error is temporary and the operation can
// be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrJournalBufferFull) ||
		errors.Is(err, ErrTransactionFailed)
}
