package memory

import (
	"context"
	"testing"

	"github.com/xraph/streampay"
	"github.com/xraph/streampay/account"
	"github.com/xraph/streampay/id"
	"github.com/xraph/streampay/journal"
	"github.com/xraph/streampay/stream"
	"github.com/xraph/streampay/types"
)

func newStream(sender, recipient id.AccountID) *stream.Stream {
	return &stream.Stream{
		Sender:        sender,
		Recipient:     recipient,
		RatePerSecond: 100,
		StartTime:     1_700_000_000_000_000,
		Status:        stream.StatusActive,
	}
}

func TestBalances(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := id.NewAccountID()
	bob := id.NewAccountID()

	// Missing accounts read as zero.
	got, err := s.GetBalance(ctx, alice)
	if err != nil {
		t.Fatal(err)
	}
	if got != 0 {
		t.Errorf("fresh balance: got %v, want 0", got)
	}

	updates := []account.BalanceUpdate{
		{Owner: alice, Balance: 700},
		{Owner: bob, Balance: 300},
	}
	if err := s.SaveBalances(ctx, updates); err != nil {
		t.Fatal(err)
	}

	for _, tt := range []struct {
		owner id.AccountID
		want  types.Amount
	}{{alice, 700}, {bob, 300}} {
		got, err := s.GetBalance(ctx, tt.owner)
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("balance: got %v, want %v", got, tt.want)
		}
	}
}

func TestBonusLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()
	owner := id.NewAccountID()

	// Absence is nil, not an error.
	b, err := s.GetBonus(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if b != nil {
		t.Fatalf("fresh bonus: got %+v, want nil", b)
	}

	record := account.NewDailyBonus(1_000_000)
	record.LastClaim = 42
	if err := s.SaveBonusClaim(ctx, owner, record, 1_000_000); err != nil {
		t.Fatal(err)
	}

	// The claim writes the record and the balance together.
	b, err = s.GetBonus(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if b == nil || b.LastClaim != 42 || b.Amount != 1_000_000 {
		t.Errorf("bonus after claim: got %+v", b)
	}
	balance, err := s.GetBalance(ctx, owner)
	if err != nil {
		t.Fatal(err)
	}
	if balance != 1_000_000 {
		t.Errorf("balance after claim: got %v", balance)
	}

	// The returned record is a copy.
	b.LastClaim = 99
	again, _ := s.GetBonus(ctx, owner)
	if again.LastClaim != 42 {
		t.Error("GetBonus leaked internal state")
	}
}

func TestTotalSupply(t *testing.T) {
	ctx := context.Background()
	s := New()

	supply, err := s.TotalSupply(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if supply != 0 {
		t.Errorf("initial supply: got %v, want 0", supply)
	}

	if err := s.SetTotalSupply(ctx, streampay.InitialSupply); err != nil {
		t.Fatal(err)
	}
	supply, _ = s.TotalSupply(ctx)
	if supply != streampay.InitialSupply {
		t.Errorf("supply: got %v, want %v", supply, streampay.InitialSupply)
	}
}

func TestCreateStreamAssignsSequentialIDs(t *testing.T) {
	ctx := context.Background()
	s := New()
	sender := id.NewAccountID()
	recipient := id.NewAccountID()

	for want := uint64(1); want <= 3; want++ {
		got, err := s.CreateStream(ctx, newStream(sender, recipient))
		if err != nil {
			t.Fatal(err)
		}
		if got != want {
			t.Errorf("stream ID: got %d, want %d", got, want)
		}
	}
}

func TestStreamIndices(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := id.NewAccountID()
	bob := id.NewAccountID()
	carol := id.NewAccountID()

	// alice -> bob, alice -> carol, bob -> carol
	if _, err := s.CreateStream(ctx, newStream(alice, bob)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateStream(ctx, newStream(alice, carol)); err != nil {
		t.Fatal(err)
	}
	if _, err := s.CreateStream(ctx, newStream(bob, carol)); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		query func() ([]uint64, error)
		want  []uint64
	}{
		{"AliceSent", func() ([]uint64, error) { return s.StreamIDsBySender(ctx, alice) }, []uint64{1, 2}},
		{"BobSent", func() ([]uint64, error) { return s.StreamIDsBySender(ctx, bob) }, []uint64{3}},
		{"CarolSent", func() ([]uint64, error) { return s.StreamIDsBySender(ctx, carol) }, []uint64{}},
		{"BobReceived", func() ([]uint64, error) { return s.StreamIDsByRecipient(ctx, bob) }, []uint64{1}},
		{"CarolReceived", func() ([]uint64, error) { return s.StreamIDsByRecipient(ctx, carol) }, []uint64{2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.query()
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("ids: got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("ids: got %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestGetAndUpdateStream(t *testing.T) {
	ctx := context.Background()
	s := New()
	sender := id.NewAccountID()
	recipient := id.NewAccountID()

	if _, err := s.GetStream(ctx, 1); !streampay.IsNotFound(err) {
		t.Errorf("missing stream: got %v, want not-found", err)
	}

	streamID, err := s.CreateStream(ctx, newStream(sender, recipient))
	if err != nil {
		t.Fatal(err)
	}

	st, err := s.GetStream(ctx, streamID)
	if err != nil {
		t.Fatal(err)
	}

	st.TotalWithdrawn = 500
	if err := s.UpdateStream(ctx, st); err != nil {
		t.Fatal(err)
	}
	back, _ := s.GetStream(ctx, streamID)
	if back.TotalWithdrawn != 500 {
		t.Errorf("update lost: got %v", back.TotalWithdrawn)
	}

	missing := newStream(sender, recipient)
	missing.ID = 999
	if err := s.UpdateStream(ctx, missing); !streampay.IsNotFound(err) {
		t.Errorf("update missing: got %v, want not-found", err)
	}
}

func TestListAllStreams(t *testing.T) {
	ctx := context.Background()
	s := New()
	sender := id.NewAccountID()
	recipient := id.NewAccountID()

	for i := 0; i < 3; i++ {
		if _, err := s.CreateStream(ctx, newStream(sender, recipient)); err != nil {
			t.Fatal(err)
		}
	}

	streams, err := s.ListAllStreams(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(streams) != 3 {
		t.Fatalf("got %d streams, want 3", len(streams))
	}
	for i, st := range streams {
		if st.ID != uint64(i+1) {
			t.Errorf("position %d: got ID %d", i, st.ID)
		}
	}
}

func TestJournal(t *testing.T) {
	ctx := context.Background()
	s := New()
	alice := id.NewAccountID()
	bob := id.NewAccountID()

	entries := []*journal.Entry{
		{ID: id.NewJournalID(), Kind: journal.KindTransfer, Owner: alice, Counterparty: bob, Amount: 100, Timestamp: 1},
		{ID: id.NewJournalID(), Kind: journal.KindBonusClaim, Owner: alice, Amount: 50, Timestamp: 2},
		{ID: id.NewJournalID(), Kind: journal.KindStreamCreated, Owner: bob, StreamID: 7, Timestamp: 3},
	}
	if err := s.AppendJournal(ctx, entries); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		opts journal.QueryOpts
		want int
	}{
		{"All", journal.QueryOpts{}, 3},
		{"ByKind", journal.QueryOpts{Kind: journal.KindTransfer}, 1},
		{"ByOwner", journal.QueryOpts{Owner: alice}, 2},
		{"ByStream", journal.QueryOpts{StreamID: 7}, 1},
		{"Limit", journal.QueryOpts{Limit: 2}, 2},
		{"NoMatch", journal.QueryOpts{Kind: journal.KindTopUp}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.QueryJournal(ctx, tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != tt.want {
				t.Errorf("got %d entries, want %d", len(got), tt.want)
			}
		})
	}
}
