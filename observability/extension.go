// Package observability provides a metrics extension for Streampay that
// records lifecycle event counts through a pluggable MetricFactory.
package observability

import (
	"context"
	"time"

	"github.com/xraph/streampay/plugin"
)

// Ensure MetricsExtension implements required interfaces.
var (
	_ plugin.Plugin           = (*MetricsExtension)(nil)
	_ plugin.OnInit           = (*MetricsExtension)(nil)
	_ plugin.OnTransfer       = (*MetricsExtension)(nil)
	_ plugin.OnBonusClaimed   = (*MetricsExtension)(nil)
	_ plugin.OnStreamCreated  = (*MetricsExtension)(nil)
	_ plugin.OnStreamPaused   = (*MetricsExtension)(nil)
	_ plugin.OnStreamResumed  = (*MetricsExtension)(nil)
	_ plugin.OnStreamStopped  = (*MetricsExtension)(nil)
	_ plugin.OnWithdrawal     = (*MetricsExtension)(nil)
	_ plugin.OnTopUp          = (*MetricsExtension)(nil)
	_ plugin.OnJournalFlushed = (*MetricsExtension)(nil)
)

// Counter interface for metric counters.
type Counter interface {
	Inc()
	Add(float64)
}

// Histogram interface for metric histograms.
type Histogram interface {
	Observe(float64)
}

// MetricFactory creates metrics.
type MetricFactory interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// MetricsExtension records system-wide lifecycle metrics.
// Register it as a Ledger plugin to automatically track ledger activity.
type MetricsExtension struct {
	factory MetricFactory

	// Account metrics
	Transfers      Counter
	TransferVolume Counter
	BonusesClaimed Counter
	BonusVolume    Counter

	// Stream metrics
	StreamsCreated Counter
	StreamsPaused  Counter
	StreamsResumed Counter
	StreamsStopped Counter
	Withdrawals    Counter
	WithdrawVolume Counter
	TopUps         Counter
	TopUpVolume    Counter

	// Journal metrics
	JournalBatchSize    Histogram
	JournalFlushLatency Histogram
}

// NewMetricsExtension creates a MetricsExtension with the provided MetricFactory.
func NewMetricsExtension(factory MetricFactory) *MetricsExtension {
	return &MetricsExtension{
		factory: factory,

		// Account metrics
		Transfers:      factory.Counter("streampay_transfers_total"),
		TransferVolume: factory.Counter("streampay_transfer_volume_total"),
		BonusesClaimed: factory.Counter("streampay_bonuses_claimed_total"),
		BonusVolume:    factory.Counter("streampay_bonus_volume_total"),

		// Stream metrics
		StreamsCreated: factory.Counter("streampay_streams_created_total"),
		StreamsPaused:  factory.Counter("streampay_streams_paused_total"),
		StreamsResumed: factory.Counter("streampay_streams_resumed_total"),
		StreamsStopped: factory.Counter("streampay_streams_stopped_total"),
		Withdrawals:    factory.Counter("streampay_withdrawals_total"),
		WithdrawVolume: factory.Counter("streampay_withdraw_volume_total"),
		TopUps:         factory.Counter("streampay_topups_total"),
		TopUpVolume:    factory.Counter("streampay_topup_volume_total"),

		// Journal metrics
		JournalBatchSize:    factory.Histogram("streampay_journal_batch_size"),
		JournalFlushLatency: factory.Histogram("streampay_journal_flush_latency_ms"),
	}
}

// Name implements plugin.Plugin.
func (m *MetricsExtension) Name() string { return "observability-metrics" }

// OnInit implements plugin.OnInit.
func (m *MetricsExtension) OnInit(_ context.Context, _ interface{}) error {
	return nil
}

// ──────────────────────────────────────────────────
// Account ledger hooks
// ──────────────────────────────────────────────────

// OnTransfer implements plugin.OnTransfer.
func (m *MetricsExtension) OnTransfer(_ context.Context, _, _ string, amount uint64) error {
	m.Transfers.Inc()
	m.TransferVolume.Add(float64(amount))
	return nil
}

// OnBonusClaimed implements plugin.OnBonusClaimed.
func (m *MetricsExtension) OnBonusClaimed(_ context.Context, _ string, amount uint64) error {
	m.BonusesClaimed.Inc()
	m.BonusVolume.Add(float64(amount))
	return nil
}

// ──────────────────────────────────────────────────
// Stream ledger hooks
// ──────────────────────────────────────────────────

// OnStreamCreated implements plugin.OnStreamCreated.
func (m *MetricsExtension) OnStreamCreated(_ context.Context, _ interface{}) error {
	m.StreamsCreated.Inc()
	return nil
}

// OnStreamPaused implements plugin.OnStreamPaused.
func (m *MetricsExtension) OnStreamPaused(_ context.Context, _ interface{}) error {
	m.StreamsPaused.Inc()
	return nil
}

// OnStreamResumed implements plugin.OnStreamResumed.
func (m *MetricsExtension) OnStreamResumed(_ context.Context, _ interface{}) error {
	m.StreamsResumed.Inc()
	return nil
}

// OnStreamStopped implements plugin.OnStreamStopped.
func (m *MetricsExtension) OnStreamStopped(_ context.Context, _ interface{}) error {
	m.StreamsStopped.Inc()
	return nil
}

// OnWithdrawal implements plugin.OnWithdrawal.
func (m *MetricsExtension) OnWithdrawal(_ context.Context, _ interface{}, amount uint64) error {
	m.Withdrawals.Inc()
	m.WithdrawVolume.Add(float64(amount))
	return nil
}

// OnTopUp implements plugin.OnTopUp.
func (m *MetricsExtension) OnTopUp(_ context.Context, _ interface{}, amount uint64) error {
	m.TopUps.Inc()
	m.TopUpVolume.Add(float64(amount))
	return nil
}

// ──────────────────────────────────────────────────
// Journal hooks
// ──────────────────────────────────────────────────

// OnJournalFlushed implements plugin.OnJournalFlushed.
func (m *MetricsExtension) OnJournalFlushed(_ context.Context, count int, elapsed time.Duration) error {
	m.JournalBatchSize.Observe(float64(count))
	m.JournalFlushLatency.Observe(float64(elapsed.Milliseconds()))
	return nil
}
