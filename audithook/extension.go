// Package audithook bridges Streampay lifecycle events to an audit
// trail backend.
//
// It defines a local Recorder interface so the package does not depend
// on any particular audit system. Callers inject a RecorderFunc adapter
// that bridges to their backend at wiring time.
package audithook

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/xraph/streampay/plugin"
	"github.com/xraph/streampay/stream"
)

// Compile-time interface checks.
var (
	_ plugin.Plugin           = (*Extension)(nil)
	_ plugin.OnTransfer       = (*Extension)(nil)
	_ plugin.OnBonusClaimed   = (*Extension)(nil)
	_ plugin.OnStreamCreated  = (*Extension)(nil)
	_ plugin.OnStreamPaused   = (*Extension)(nil)
	_ plugin.OnStreamResumed  = (*Extension)(nil)
	_ plugin.OnStreamStopped  = (*Extension)(nil)
	_ plugin.OnWithdrawal     = (*Extension)(nil)
	_ plugin.OnTopUp          = (*Extension)(nil)
	_ plugin.OnJournalFlushed = (*Extension)(nil)
)

// Recorder is the interface that audit backends must implement.
type Recorder interface {
	Record(ctx context.Context, event *AuditEvent) error
}

// AuditEvent is a local representation of an audit event.
type AuditEvent struct {
	ID         string         `json:"id"`
	Action     string         `json:"action"`
	Resource   string         `json:"resource"`
	Category   string         `json:"category"`
	ResourceID string         `json:"resource_id,omitempty"`
	Metadata   map[string]any `json:"metadata,omitempty"`
	Outcome    string         `json:"outcome"`
	Severity   string         `json:"severity"`
	Reason     string         `json:"reason,omitempty"`
}

// RecorderFunc is an adapter to use a plain function as a Recorder.
type RecorderFunc func(ctx context.Context, event *AuditEvent) error

// Record implements Recorder.
func (f RecorderFunc) Record(ctx context.Context, event *AuditEvent) error {
	return f(ctx, event)
}

// Extension bridges Streampay lifecycle events to an audit trail backend.
type Extension struct {
	recorder Recorder
	enabled  map[string]bool // nil = all enabled
	logger   *slog.Logger
}

// New creates an Extension that emits audit events through the provided Recorder.
func New(r Recorder, opts ...Option) *Extension {
	e := &Extension{
		recorder: r,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements plugin.Plugin.
func (e *Extension) Name() string { return "audit-hook" }

// ──────────────────────────────────────────────────
// Account ledger hooks
// ──────────────────────────────────────────────────

// OnTransfer implements plugin.OnTransfer.
func (e *Extension) OnTransfer(ctx context.Context, from, to string, amount uint64) error {
	return e.record(ctx, ActionTransfer, SeverityInfo, OutcomeSuccess,
		ResourceAccount, from, CategoryToken, nil,
		"from", from,
		"to", to,
		"amount", strconv.FormatUint(amount, 10),
	)
}

// OnBonusClaimed implements plugin.OnBonusClaimed.
func (e *Extension) OnBonusClaimed(ctx context.Context, owner string, amount uint64) error {
	return e.record(ctx, ActionBonusClaimed, SeverityInfo, OutcomeSuccess,
		ResourceAccount, owner, CategoryToken, nil,
		"owner", owner,
		"amount", strconv.FormatUint(amount, 10),
	)
}

// ──────────────────────────────────────────────────
// Stream ledger hooks
// ──────────────────────────────────────────────────

// OnStreamCreated implements plugin.OnStreamCreated.
func (e *Extension) OnStreamCreated(ctx context.Context, st interface{}) error {
	streamID, sender, recipient := streamDetails(st)
	return e.record(ctx, ActionStreamCreated, SeverityInfo, OutcomeSuccess,
		ResourceStream, streamID, CategoryStreaming, nil,
		"sender", sender,
		"recipient", recipient,
	)
}

// OnStreamPaused implements plugin.OnStreamPaused.
func (e *Extension) OnStreamPaused(ctx context.Context, st interface{}) error {
	streamID, sender, _ := streamDetails(st)
	return e.record(ctx, ActionStreamPaused, SeverityInfo, OutcomeSuccess,
		ResourceStream, streamID, CategoryStreaming, nil,
		"sender", sender,
	)
}

// OnStreamResumed implements plugin.OnStreamResumed.
func (e *Extension) OnStreamResumed(ctx context.Context, st interface{}) error {
	streamID, sender, _ := streamDetails(st)
	return e.record(ctx, ActionStreamResumed, SeverityInfo, OutcomeSuccess,
		ResourceStream, streamID, CategoryStreaming, nil,
		"sender", sender,
	)
}

// OnStreamStopped implements plugin.OnStreamStopped.
func (e *Extension) OnStreamStopped(ctx context.Context, st interface{}) error {
	streamID, sender, _ := streamDetails(st)
	return e.record(ctx, ActionStreamStopped, SeverityWarning, OutcomeSuccess,
		ResourceStream, streamID, CategoryStreaming, nil,
		"sender", sender,
	)
}

// OnWithdrawal implements plugin.OnWithdrawal.
func (e *Extension) OnWithdrawal(ctx context.Context, st interface{}, amount uint64) error {
	streamID, _, recipient := streamDetails(st)
	return e.record(ctx, ActionWithdrawal, SeverityInfo, OutcomeSuccess,
		ResourceStream, streamID, CategoryStreaming, nil,
		"recipient", recipient,
		"amount", strconv.FormatUint(amount, 10),
	)
}

// OnTopUp implements plugin.OnTopUp.
func (e *Extension) OnTopUp(ctx context.Context, st interface{}, amount uint64) error {
	streamID, sender, _ := streamDetails(st)
	return e.record(ctx, ActionTopUp, SeverityInfo, OutcomeSuccess,
		ResourceStream, streamID, CategoryStreaming, nil,
		"sender", sender,
		"amount", strconv.FormatUint(amount, 10),
	)
}

// ──────────────────────────────────────────────────
// Journal hooks
// ──────────────────────────────────────────────────

// OnJournalFlushed implements plugin.OnJournalFlushed.
func (e *Extension) OnJournalFlushed(ctx context.Context, count int, elapsed time.Duration) error {
	return e.record(ctx, ActionJournalFlushed, SeverityInfo, OutcomeSuccess,
		ResourceJournal, "", CategoryLedger, nil,
		"count", count,
		"elapsed_ms", elapsed.Milliseconds(),
	)
}

// ──────────────────────────────────────────────────
// Internal helpers
// ──────────────────────────────────────────────────

func streamDetails(v interface{}) (streamID, sender, recipient string) {
	st, ok := v.(*stream.Stream)
	if !ok {
		return "", "", ""
	}
	return strconv.FormatUint(st.ID, 10), st.Sender.String(), st.Recipient.String()
}

// record builds and sends an audit event if the action is enabled.
func (e *Extension) record(
	ctx context.Context,
	action, severity, outcome string,
	resource, resourceID, category string,
	err error,
	kvPairs ...any,
) error {
	if e.enabled != nil && !e.enabled[action] {
		return nil
	}

	meta := make(map[string]any, len(kvPairs)/2+1)
	for i := 0; i+1 < len(kvPairs); i += 2 {
		key, ok := kvPairs[i].(string)
		if !ok {
			key = fmt.Sprintf("%v", kvPairs[i])
		}
		meta[key] = kvPairs[i+1]
	}

	var reason string
	if err != nil {
		reason = err.Error()
		meta["error"] = err.Error()
	}

	evt := &AuditEvent{
		ID:         uuid.NewString(),
		Action:     action,
		Resource:   resource,
		Category:   category,
		ResourceID: resourceID,
		Metadata:   meta,
		Outcome:    outcome,
		Severity:   severity,
		Reason:     reason,
	}

	if recErr := e.recorder.Record(ctx, evt); recErr != nil {
		e.logger.Warn("audithook: failed to record audit event",
			"action", action,
			"resource_id", resourceID,
			"error", recErr,
		)
	}
	return nil
}
