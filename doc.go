// Package streampay provides a deterministic token and payment-streaming
// ledger engine for Go applications.
//
// Streampay is designed as a library, not a service. Import it directly
// into your Go application. It provides two coupled ledgers sharing one
// store:
//
//   - A fungible-token account ledger with credit, checked debit/transfer
//     and a cooldown-gated daily bonus faucet
//   - A continuous-rate payment-streaming ledger with the full stream
//     lifecycle: create, pause, resume, stop, withdraw, top up
//   - Append-only sender/recipient stream indices for queries
//   - A batched operation journal for audit trails
//
// # Quick Start
//
// Create a ledger instance with your preferred store:
//
//	import (
//	    "github.com/xraph/streampay"
//	    "github.com/xraph/streampay/store/memory"
//	)
//
//	l := streampay.New(memory.New())
//
//	ctx := context.Background()
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
// Operations authenticate through the context:
//
//	alice := streampay.NewAccountID()
//	bob := streampay.NewAccountID()
//	ctx = streampay.WithSigner(ctx, alice)
//
//	streamID, err := l.CreateStream(ctx, bob, streampay.NewAmount(500), nil)
//
// The recipient withdraws accrued value:
//
//	earned, err := l.Withdraw(streampay.WithSigner(ctx, bob), streamID, nil)
//
// # Determinism
//
// Every operation reads the logical clock exactly once and derives all
// state from stored fields. Replaying the same operation history against
// the same clock values reproduces identical state: stream IDs come from a
// persistent counter, accrual is recomputed from the stream record rather
// than cached, and all arithmetic is saturating integer math — no floating
// point, no overflow wraparound.
//
// Elapsed stream time is truncated to whole seconds. Ten seconds at rate R
// earns exactly 10*R; 10.999 seconds also earns exactly 10*R, and the
// fraction is never recovered.
//
// # Stores
//
// Four store drivers ship with the engine: memory (testing), sqlite,
// postgres and mongo. All grouped mutations (stream creation with index
// updates, transfers, bonus claims) commit atomically per driver.
package streampay
