// Package plugin provides an extensible plugin system for Streampay.
// Plugins can hook into ledger lifecycle events to extend functionality.
package plugin

import (
	"context"
	"time"
)

// Plugin is the base interface that all plugins must implement.
type Plugin interface {
	Name() string
}

// ──────────────────────────────────────────────────
// Lifecycle hooks
// ──────────────────────────────────────────────────

// OnInit is called when the plugin is initialized.
type OnInit interface {
	Plugin
	OnInit(ctx context.Context, l interface{}) error
}

// OnShutdown is called when the plugin is shutting down.
type OnShutdown interface {
	Plugin
	OnShutdown(ctx context.Context) error
}

// ──────────────────────────────────────────────────
// Account ledger hooks
// ──────────────────────────────────────────────────

// OnTransfer is called after a successful token transfer.
type OnTransfer interface {
	Plugin
	OnTransfer(ctx context.Context, from, to string, amount uint64) error
}

// OnBonusClaimed is called after a successful daily bonus claim.
type OnBonusClaimed interface {
	Plugin
	OnBonusClaimed(ctx context.Context, owner string, amount uint64) error
}

// ──────────────────────────────────────────────────
// Stream ledger hooks
// ──────────────────────────────────────────────────

// OnStreamCreated is called when a new stream is created.
type OnStreamCreated interface {
	Plugin
	OnStreamCreated(ctx context.Context, stream interface{}) error
}

// OnStreamPaused is called when a stream is paused.
type OnStreamPaused interface {
	Plugin
	OnStreamPaused(ctx context.Context, stream interface{}) error
}

// OnStreamResumed is called when a paused stream resumes.
type OnStreamResumed interface {
	Plugin
	OnStreamResumed(ctx context.Context, stream interface{}) error
}

// OnStreamStopped is called when a stream is stopped.
type OnStreamStopped interface {
	Plugin
	OnStreamStopped(ctx context.Context, stream interface{}) error
}

// OnWithdrawal is called after a successful withdrawal from a stream.
type OnWithdrawal interface {
	Plugin
	OnWithdrawal(ctx context.Context, stream interface{}, amount uint64) error
}

// OnTopUp is called after a stream top-up.
type OnTopUp interface {
	Plugin
	OnTopUp(ctx context.Context, stream interface{}, amount uint64) error
}

// ──────────────────────────────────────────────────
// Journal hooks
// ──────────────────────────────────────────────────

// OnJournalFlushed is called after a journal batch is persisted.
type OnJournalFlushed interface {
	Plugin
	OnJournalFlushed(ctx context.Context, count int, elapsed time.Duration) error
}
