// Package stream defines the payment-streaming ledger models and the
// accrual computation at the heart of the engine.
package stream

import (
	"github.com/xraph/streampay/id"
	"github.com/xraph/streampay/types"
)

// Status is the lifecycle state of a stream.
type Status string

const (
	StatusActive Status = "active"
	StatusPaused Status = "paused"
	// StatusCompleted is a declared terminal state with no producing
	// transition: no operation sets it, even when a fixed duration
	// elapses. Streams terminate only through StatusStopped. Kept so the
	// wire format stays compatible with histories that may carry it.
	StatusCompleted Status = "completed"
	StatusStopped   Status = "stopped"
)

// Stream is one continuous-rate payment agreement between a sender and a
// recipient. Records persist indefinitely; no stream is ever deleted.
//
// No running "earned so far" counter is stored. Accrual is recomputed from
// these fields on every read, which keeps pause/resume correct without any
// reconciliation step.
type Stream struct {
	ID             uint64           `json:"id"`
	Sender         id.AccountID     `json:"sender"`
	Recipient      id.AccountID     `json:"recipient"`
	RatePerSecond  types.Amount     `json:"rate_per_second"`
	StartTime      types.Timestamp  `json:"start_time"`
	EndTime        *types.Timestamp `json:"end_time,omitempty"`
	PausedAt       *types.Timestamp `json:"paused_at,omitempty"`
	TotalDeposited types.Amount     `json:"total_deposited"`
	TotalWithdrawn types.Amount     `json:"total_withdrawn"`
	Status         Status           `json:"status"`
}

// Earned returns the accrued-but-unwithdrawn amount at now. It is a pure
// function of the stored fields:
//
//  1. The effective accrual instant is now while Active, the pause instant
//     while Paused, and the (frozen) end time once Stopped or Completed.
//     A terminal stream therefore keeps its already-earned value
//     withdrawable after stopping.
//  2. Nothing accrues unless the effective instant is strictly after
//     StartTime.
//  3. Elapsed time is truncated to whole seconds. The lost fraction never
//     accrues later; a withdrawal 0.999s after start earns nothing.
//  4. rate × seconds and the subtraction of TotalWithdrawn both saturate.
func (s *Stream) Earned(now types.Timestamp) types.Amount {
	effective := now
	switch s.Status {
	case StatusPaused:
		if s.PausedAt != nil {
			effective = *s.PausedAt
		}
	case StatusCompleted, StatusStopped:
		// Terminal streams written by this engine always carry an end
		// time; a record missing one accrues to now.
		if s.EndTime != nil {
			effective = *s.EndTime
		}
	}

	if !effective.After(s.StartTime) {
		return types.ZeroAmount
	}

	elapsed := effective.DeltaSince(s.StartTime)
	seconds := elapsed / types.MicrosPerSecond

	total := s.RatePerSecond.SaturatingMul(seconds)
	return total.SaturatingSub(s.TotalWithdrawn)
}

// ShouldComplete reports whether a fixed-duration stream has outlived its
// end time. No operation currently acts on this predicate; the Completed
// status stays unreachable (see Earned and the lifecycle tests).
func (s *Stream) ShouldComplete(now types.Timestamp) bool {
	return s.EndTime != nil && !now.Before(*s.EndTime)
}

// IsTerminal reports whether the stream can no longer accrue.
func (s *Stream) IsTerminal() bool {
	return s.Status == StatusStopped || s.Status == StatusCompleted
}
