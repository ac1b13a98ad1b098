package postgres

import (
	"database/sql"
	"fmt"

	"github.com/xraph/streampay/id"
	"github.com/xraph/streampay/stream"
	"github.com/xraph/streampay/types"
)

// streamRow is the sp_streams scan target. NUMERIC columns scan as
// decimal strings to keep the full unsigned 64-bit range.
type streamRow struct {
	ID             string
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
		ID:             fmt.Sprintf("%d", s.ID),
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
	streamID, err := parseUint(r.ID)
	if err != nil {
		return nil, fmt.Errorf("streampay/postgres: stream id: %w", err)
	}
	sender, err := id.Parse(r.Sender)
	if err != nil {
		return nil, fmt.Errorf("streampay/postgres: stream %d sender: %w", streamID, err)
	}
	recipient, err := id.Parse(r.Recipient)
	if err != nil {
		return nil, fmt.Errorf("streampay/postgres: stream %d recipient: %w", streamID, err)
	}
	rate, err := types.ParseAmount(r.RatePerSecond)
	if err != nil {
		return nil, fmt.Errorf("streampay/postgres: stream %d rate: %w", streamID, err)
	}
	start, err := parseTimestamp(r.StartTime)
	if err != nil {
		return nil, fmt.Errorf("streampay/postgres: stream %d start_time: %w", streamID, err)
	}
	deposited, err := types.ParseAmount(r.TotalDeposited)
	if err != nil {
		return nil, fmt.Errorf("streampay/postgres: stream %d total_deposited: %w", streamID, err)
	}
	withdrawn, err := types.ParseAmount(r.TotalWithdrawn)
	if err != nil {
		return nil, fmt.Errorf("streampay/postgres: stream %d total_withdrawn: %w", streamID, err)
	}

	s := &stream.Stream{
		ID:             streamID,
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
			return nil, fmt.Errorf("streampay/postgres: stream %d end_time: %w", streamID, err)
		}
		s.EndTime = &t
	}
	if r.PausedAt.Valid {
		t, err := parseTimestamp(r.PausedAt.String)
		if err != nil {
			return nil, fmt.Errorf("streampay/postgres: stream %d paused_at: %w", streamID, err)
		}
		s.PausedAt = &t
	}
	return s, nil
}

func parseUint(s string) (uint64, error) {
	a, err := types.ParseAmount(s)
	if err != nil {
		return 0, err
	}
	return a.Units(), nil
}

func parseTimestamp(s string) (types.Timestamp, error) {
	u, err := parseUint(s)
	if err != nil {
		return 0, err
	}
	return types.Timestamp(u), nil
}
