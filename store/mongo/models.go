package mongo

import (
	"fmt"

	"github.com/xraph/streampay/id"
	"github.com/xraph/streampay/journal"
	"github.com/xraph/streampay/stream"
	"github.com/xraph/streampay/types"
)

// Amounts are stored as decimal strings because BSON integers are signed
// 64-bit and ledger amounts are unsigned 64-bit. Timestamps fit in int64
// microseconds and stay numeric so they sort correctly.

// ==================== Account models ====================

type accountModel struct {
	Owner   string `bson:"_id"`
	Balance string `bson:"balance"`
}

type bonusModel struct {
	Owner     string `bson:"_id"`
	Amount    string `bson:"amount"`
	LastClaim int64  `bson:"last_claim"`
}

// ==================== Register models ====================

type counterModel struct {
	Name string `bson:"_id"`
	Seq  int64  `bson:"seq"`
}

type supplyModel struct {
	Name   string `bson:"_id"`
	Amount string `bson:"amount"`
}

// ==================== Stream models ====================

type streamModel struct {
	ID             int64  `bson:"_id"`
	Sender         string `bson:"sender"`
	Recipient      string `bson:"recipient"`
	RatePerSecond  string `bson:"rate_per_second"`
	StartTime      int64  `bson:"start_time"`
	EndTime        *int64 `bson:"end_time,omitempty"`
	PausedAt       *int64 `bson:"paused_at,omitempty"`
	TotalDeposited string `bson:"total_deposited"`
	TotalWithdrawn string `bson:"total_withdrawn"`
	Status         string `bson:"status"`
}

func toStreamModel(s *stream.Stream) *streamModel {
	m := &streamModel{
		ID:             int64(s.ID),
		Sender:         s.Sender.String(),
		Recipient:      s.Recipient.String(),
		RatePerSecond:  s.RatePerSecond.String(),
		StartTime:      int64(s.StartTime),
		TotalDeposited: s.TotalDeposited.String(),
		TotalWithdrawn: s.TotalWithdrawn.String(),
		Status:         string(s.Status),
	}
	if s.EndTime != nil {
		v := int64(*s.EndTime)
		m.EndTime = &v
	}
	if s.PausedAt != nil {
		v := int64(*s.PausedAt)
		m.PausedAt = &v
	}
	return m
}

func fromStreamModel(m *streamModel) (*stream.Stream, error) {
	sender, err := id.Parse(m.Sender)
	if err != nil {
		return nil, fmt.Errorf("streampay/mongo: stream %d sender: %w", m.ID, err)
	}
	recipient, err := id.Parse(m.Recipient)
	if err != nil {
		return nil, fmt.Errorf("streampay/mongo: stream %d recipient: %w", m.ID, err)
	}
	rate, err := types.ParseAmount(m.RatePerSecond)
	if err != nil {
		return nil, fmt.Errorf("streampay/mongo: stream %d rate: %w", m.ID, err)
	}
	deposited, err := types.ParseAmount(m.TotalDeposited)
	if err != nil {
		return nil, fmt.Errorf("streampay/mongo: stream %d total_deposited: %w", m.ID, err)
	}
	withdrawn, err := types.ParseAmount(m.TotalWithdrawn)
	if err != nil {
		return nil, fmt.Errorf("streampay/mongo: stream %d total_withdrawn: %w", m.ID, err)
	}

	s := &stream.Stream{
		ID:             uint64(m.ID),
		Sender:         sender,
		Recipient:      recipient,
		RatePerSecond:  rate,
		StartTime:      types.Timestamp(m.StartTime),
		TotalDeposited: deposited,
		TotalWithdrawn: withdrawn,
		Status:         stream.Status(m.Status),
	}
	if m.EndTime != nil {
		t := types.Timestamp(*m.EndTime)
		s.EndTime = &t
	}
	if m.PausedAt != nil {
		t := types.Timestamp(*m.PausedAt)
		s.PausedAt = &t
	}
	return s, nil
}

// ==================== Journal models ====================

type journalModel struct {
	ID           string `bson:"_id"`
	Kind         string `bson:"kind"`
	Owner        string `bson:"owner"`
	Counterparty string `bson:"counterparty,omitempty"`
	StreamID     int64  `bson:"stream_id"`
	Amount       string `bson:"amount"`
	Timestamp    int64  `bson:"ts"`
}

func toJournalModel(e *journal.Entry) *journalModel {
	return &journalModel{
		ID:           e.ID.String(),
		Kind:         string(e.Kind),
		Owner:        e.Owner.String(),
		Counterparty: e.Counterparty.String(),
		StreamID:     int64(e.StreamID),
		Amount:       e.Amount.String(),
		Timestamp:    int64(e.Timestamp),
	}
}

func fromJournalModel(m *journalModel) (*journal.Entry, error) {
	entryID, err := id.Parse(m.ID)
	if err != nil {
		return nil, fmt.Errorf("streampay/mongo: journal id: %w", err)
	}
	owner, err := id.Parse(m.Owner)
	if err != nil {
		return nil, fmt.Errorf("streampay/mongo: journal owner: %w", err)
	}
	var counterparty id.AccountID
	if m.Counterparty != "" {
		counterparty, err = id.Parse(m.Counterparty)
		if err != nil {
			return nil, fmt.Errorf("streampay/mongo: journal counterparty: %w", err)
		}
	}
	amount, err := types.ParseAmount(m.Amount)
	if err != nil {
		return nil, fmt.Errorf("streampay/mongo: journal amount: %w", err)
	}
	return &journal.Entry{
		ID:           entryID,
		Kind:         journal.Kind(m.Kind),
		Owner:        owner,
		Counterparty: counterparty,
		StreamID:     uint64(m.StreamID),
		Amount:       amount,
		Timestamp:    types.Timestamp(m.Timestamp),
	}, nil
}
