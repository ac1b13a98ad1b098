package plugin

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Registry manages all registered plugins and provides efficient dispatch.
// It uses type-cached discovery for O(1) dispatch performance.
type Registry struct {
	mu      sync.RWMutex
	plugins []Plugin
	logger  *slog.Logger

	// Type-cached plugin lists for efficient dispatch
	onInit           []OnInit
	onShutdown       []OnShutdown
	onTransfer       []OnTransfer
	onBonusClaimed   []OnBonusClaimed
	onStreamCreated  []OnStreamCreated
	onStreamPaused   []OnStreamPaused
	onStreamResumed  []OnStreamResumed
	onStreamStopped  []OnStreamStopped
	onWithdrawal     []OnWithdrawal
	onTopUp          []OnTopUp
	onJournalFlushed []OnJournalFlushed
}

// NewRegistry creates a new plugin registry.
func NewRegistry() *Registry {
	return &Registry{
		logger: slog.Default(),
	}
}

// WithLogger sets the logger for the registry.
func (r *Registry) WithLogger(logger *slog.Logger) *Registry {
	r.logger = logger
	return r
}

// Register adds a plugin to the registry and caches its interfaces.
func (r *Registry) Register(p Plugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// Check for duplicate
	for _, existing := range r.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin: duplicate registration: %s", p.Name())
		}
	}

	r.plugins = append(r.plugins, p)

	// Type-switch to cache interfaces
	if v, ok := p.(OnInit); ok {
		r.onInit = append(r.onInit, v)
	}
	if v, ok := p.(OnShutdown); ok {
		r.onShutdown = append(r.onShutdown, v)
	}
	if v, ok := p.(OnTransfer); ok {
		r.onTransfer = append(r.onTransfer, v)
	}
	if v, ok := p.(OnBonusClaimed); ok {
		r.onBonusClaimed = append(r.onBonusClaimed, v)
	}
	if v, ok := p.(OnStreamCreated); ok {
		r.onStreamCreated = append(r.onStreamCreated, v)
	}
	if v, ok := p.(OnStreamPaused); ok {
		r.onStreamPaused = append(r.onStreamPaused, v)
	}
	if v, ok := p.(OnStreamResumed); ok {
		r.onStreamResumed = append(r.onStreamResumed, v)
	}
	if v, ok := p.(OnStreamStopped); ok {
		r.onStreamStopped = append(r.onStreamStopped, v)
	}
	if v, ok := p.(OnWithdrawal); ok {
		r.onWithdrawal = append(r.onWithdrawal, v)
	}
	if v, ok := p.(OnTopUp); ok {
		r.onTopUp = append(r.onTopUp, v)
	}
	if v, ok := p.(OnJournalFlushed); ok {
		r.onJournalFlushed = append(r.onJournalFlushed, v)
	}

	r.logger.Info("plugin registered", "name", p.Name())

	return nil
}

// Get returns a plugin by name.
func (r *Registry) Get(name string) Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, p := range r.plugins {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// List returns all registered plugins.
func (r *Registry) List() []Plugin {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Plugin, len(r.plugins))
	copy(result, r.plugins)
	return result
}

// Count returns the number of registered plugins.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}

// ──────────────────────────────────────────────────
// Event emission methods
// ──────────────────────────────────────────────────

// EmitInit calls OnInit for all plugins that implement it.
func (r *Registry) EmitInit(ctx context.Context, ledger interface{}) {
	r.mu.RLock()
	plugins := r.onInit
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnInit(ctx, ledger)
		}); err != nil {
			r.logger.Warn("plugin OnInit failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitShutdown calls OnShutdown for all plugins that implement it.
func (r *Registry) EmitShutdown(ctx context.Context) {
	r.mu.RLock()
	plugins := r.onShutdown
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnShutdown(ctx)
		}); err != nil {
			r.logger.Warn("plugin OnShutdown failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitTransfer emits a token transfer event.
func (r *Registry) EmitTransfer(ctx context.Context, from, to string, amount uint64) {
	r.mu.RLock()
	plugins := r.onTransfer
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTransfer(ctx, from, to, amount)
		}); err != nil {
			r.logger.Warn("plugin OnTransfer failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitBonusClaimed emits a bonus claimed event.
func (r *Registry) EmitBonusClaimed(ctx context.Context, owner string, amount uint64) {
	r.mu.RLock()
	plugins := r.onBonusClaimed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnBonusClaimed(ctx, owner, amount)
		}); err != nil {
			r.logger.Warn("plugin OnBonusClaimed failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitStreamCreated emits a stream created event.
func (r *Registry) EmitStreamCreated(ctx context.Context, stream interface{}) {
	r.mu.RLock()
	plugins := r.onStreamCreated
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnStreamCreated(ctx, stream)
		}); err != nil {
			r.logger.Warn("plugin OnStreamCreated failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitStreamPaused emits a stream paused event.
func (r *Registry) EmitStreamPaused(ctx context.Context, stream interface{}) {
	r.mu.RLock()
	plugins := r.onStreamPaused
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnStreamPaused(ctx, stream)
		}); err != nil {
			r.logger.Warn("plugin OnStreamPaused failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitStreamResumed emits a stream resumed event.
func (r *Registry) EmitStreamResumed(ctx context.Context, stream interface{}) {
	r.mu.RLock()
	plugins := r.onStreamResumed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnStreamResumed(ctx, stream)
		}); err != nil {
			r.logger.Warn("plugin OnStreamResumed failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitStreamStopped emits a stream stopped event.
func (r *Registry) EmitStreamStopped(ctx context.Context, stream interface{}) {
	r.mu.RLock()
	plugins := r.onStreamStopped
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnStreamStopped(ctx, stream)
		}); err != nil {
			r.logger.Warn("plugin OnStreamStopped failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitWithdrawal emits a withdrawal event.
func (r *Registry) EmitWithdrawal(ctx context.Context, stream interface{}, amount uint64) {
	r.mu.RLock()
	plugins := r.onWithdrawal
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnWithdrawal(ctx, stream, amount)
		}); err != nil {
			r.logger.Warn("plugin OnWithdrawal failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitTopUp emits a top-up event.
func (r *Registry) EmitTopUp(ctx context.Context, stream interface{}, amount uint64) {
	r.mu.RLock()
	plugins := r.onTopUp
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnTopUp(ctx, stream, amount)
		}); err != nil {
			r.logger.Warn("plugin OnTopUp failed", "plugin", p.Name(), "error", err)
		}
	}
}

// EmitJournalFlushed emits a journal flushed event.
func (r *Registry) EmitJournalFlushed(ctx context.Context, count int, elapsed time.Duration) {
	r.mu.RLock()
	plugins := r.onJournalFlushed
	r.mu.RUnlock()

	for _, p := range plugins {
		if err := r.callWithTimeout(ctx, p.Name(), func() error {
			return p.OnJournalFlushed(ctx, count, elapsed)
		}); err != nil {
			r.logger.Warn("plugin OnJournalFlushed failed", "plugin", p.Name(), "error", err)
		}
	}
}

// callWithTimeout calls a plugin function with a timeout.
// Plugins should never block the ledger pipeline.
func (r *Registry) callWithTimeout(ctx context.Context, pluginName string, fn func() error) error {
	done := make(chan error, 1)

	go func() {
		done <- fn()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return fmt.Errorf("plugin timeout: %s", pluginName)
	case <-ctx.Done():
		return ctx.Err()
	}
}
