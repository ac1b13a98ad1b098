package streampay_test

import (
	"context"
	"testing"

	"github.com/xraph/streampay"
	"github.com/xraph/streampay/store/memory"
)

// TestDocumentationExamples verifies that the examples in the package
// documentation compile and run.
func TestDocumentationExamples(t *testing.T) {
	t.Run("QuickStartExample", func(t *testing.T) {
		l := streampay.New(memory.New())

		ctx := context.Background()
		if err := l.Start(ctx); err != nil {
			t.Fatal(err)
		}
		defer l.Stop()

		alice := streampay.NewAccountID()
		bob := streampay.NewAccountID()
		ctx = streampay.WithSigner(ctx, alice)

		streamID, err := l.CreateStream(ctx, bob, streampay.NewAmount(500), nil)
		if err != nil {
			t.Fatal(err)
		}

		earned, err := l.Withdraw(streampay.WithSigner(ctx, bob), streamID, nil)
		if err != nil {
			t.Fatal(err)
		}
		if !earned.IsZero() {
			t.Errorf("no time elapsed, earned should be zero: got %v", earned)
		}
	})

	t.Run("ReExports", func(t *testing.T) {
		a, err := streampay.ParseAmount("2500000")
		if err != nil {
			t.Fatal(err)
		}
		if streampay.SumAmounts(a, streampay.NewAmount(1)).String() != "2500001" {
			t.Error("re-exported helpers disagree with types package")
		}

		owner := streampay.NewAccountID()
		parsed, err := streampay.ParseAccountID(owner.String())
		if err != nil {
			t.Fatal(err)
		}
		if parsed != owner {
			t.Error("account ID round trip failed")
		}
	})
}
