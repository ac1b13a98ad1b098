package sqlite

import (
	"database/sql"
	"fmt"

	"github.com/xraph/streampay/id"
	"github.com/xraph/streampay/stream"
	"github.com/xraph/streampay/types"
)

// streamRow is the sp_streams scan target. Unsigned 64-bit quantities
// travel as decimal TEXT.
type streamRow struct {
	ID             uint64
	Sender         string
	Recipient      string
	RatePerSecond  string
	StartTime      string
	EndTime        sql.NullString
	PausedAt       sql.NullString
	TotalDeposited string
	TotalWithdrawn string
	Status         string
}

func toStreamRow(s *stream.Stream) *streamRow {
	r := &streamRow{
		ID:             s.ID,
		Sender:         s.Sender.String(),
		Recipient:      s.Recipient.String(),
		RatePerSecond:  s.RatePerSecond.String(),
		StartTime:      s.StartTime.String(),
		TotalDeposited: s.TotalDeposited.String(),
		TotalWithdrawn: s.TotalWithdrawn.String(),
		Status:         string(s.Status),
	}
	if s.EndTime != nil {
		r.EndTime = sql.NullString{String: s.EndTime.String(), Valid: true}
	}
	if s.PausedAt != nil {
		r.PausedAt = sql.NullString{String: s.PausedAt.String(), Valid: true}
	}
	return r
}

func fromStreamRow(r *streamRow) (*stream.Stream, error) {
	sender, err := id.Parse(r.Sender)
	if err != nil {
		return nil, fmt.Errorf("streampay/sqlite: stream %d sender: %w", r.ID, err)
	}
	recipient, err := id.Parse(r.Recipient)
	if err != nil {
		return nil, fmt.Errorf("streampay/sqlite: stream %d recipient: %w", r.ID, err)
	}
	rate, err := types.ParseAmount(r.RatePerSecond)
	if err != nil {
		return nil, fmt.Errorf("streampay/sqlite: stream %d rate: %w", r.ID, err)
	}
	start, err := parseTimestamp(r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("streampay/sqlite: stream %d start_time: %w", r.ID, err)
	}
	deposited, err := types.ParseAmount(r.TotalDeposited)
	if err != nil {
		return nil, fmt.Errorf("streampay/sqlite: stream %d total_deposited: %w", r.ID, err)
	}
	withdrawn, err := types.ParseAmount(r.TotalWithdrawn)
	if err != nil {
		return nil, fmt.Errorf("streampay/sqlite: stream %d total_withdrawn: %w", r.ID, err)
	}

	s := &stream.Stream{
		ID:             r.ID,
		Sender:         sender,
		Recipient:      recipient,
		RatePerSecond:  rate,
		StartTime:      start,
		TotalDeposited: deposited,
		TotalWithdrawn: withdrawn,
		Status:         stream.Status(r.Status),
	}
	if r.EndTime.Valid {
		t, err := parseTimestamp(r.EndTime.String)
		if err != nil {
			return nil, fmt.Errorf("streampay/sqlite: stream %d end_time: %w", r.ID, err)
		}
		s.EndTime = &t
	}
	if r.PausedAt.Valid {
		t, err := parseTimestamp(r.PausedAt.String)
		if err != nil {
			return nil, fmt.Errorf("streampay/sqlite: stream %d paused_at: %w", r.ID, err)
		}
		s.PausedAt = &t
	}
	return s, nil
}

func parseTimestamp(s string) (types.Timestamp, error) {
	a, err := types.ParseAmount(s)
	if err != nil {
		return 0, err
	}
	return types.Timestamp(a.Units()), nil
}
