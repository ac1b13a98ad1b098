package types

import (
	"testing"
	"time"
)

func TestTimestampFromTime(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want Timestamp
	}{
		{"Epoch", time.Unix(0, 0), 0},
		{"OneSecond", time.Unix(1, 0), Timestamp(MicrosPerSecond)},
		{"Micros", time.Unix(0, 1500*1000), 1500},
		{"PreEpochClamps", time.Unix(-100, 0), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TimestampFromTime(tt.in); got != tt.want {
				t.Errorf("TimestampFromTime(%v): got %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDeltaSince(t *testing.T) {
	tests := []struct {
		name     string
		t, other Timestamp
		want     uint64
	}{
		{"Forward", 1_000_000, 400_000, 600_000},
		{"Same", 5, 5, 0},
		{"FutureClamps", 100, 200, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.t.DeltaSince(tt.other); got != tt.want {
				t.Errorf("%v.DeltaSince(%v): got %v, want %v", tt.t, tt.other, got, tt.want)
			}
		})
	}
}

func TestAddMicrosAndSeconds(t *testing.T) {
	base := Timestamp(10)

	if got := base.AddMicros(5); got != 15 {
		t.Errorf("AddMicros: got %v, want 15", got)
	}
	if got := base.AddSeconds(2); got != Timestamp(10+2*MicrosPerSecond) {
		t.Errorf("AddSeconds: got %v", got)
	}

	maxTS := Timestamp(^uint64(0))
	if got := maxTS.AddMicros(1); got != maxTS {
		t.Errorf("AddMicros overflow: got %v, want clamp", got)
	}
	if got := maxTS.AddSeconds(1); got != maxTS {
		t.Errorf("AddSeconds overflow: got %v, want clamp", got)
	}
	if got := base.AddSeconds(^uint64(0)); got != maxTS {
		t.Errorf("AddSeconds huge: got %v, want clamp", got)
	}
}

func TestBeforeAfter(t *testing.T) {
	a, b := Timestamp(100), Timestamp(200)

	if !a.Before(b) || b.Before(a) || a.Before(a) {
		t.Error("Before: strict ordering violated")
	}
	if !b.After(a) || a.After(b) || a.After(a) {
		t.Error("After: strict ordering violated")
	}
}

func TestBonusCooldownConstant(t *testing.T) {
	if BonusCooldown != 24*3600*MicrosPerSecond {
		t.Errorf("BonusCooldown: got %d", BonusCooldown)
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	wall := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	ts := TimestampFromTime(wall)
	if got := ts.Time(); !got.Equal(wall) {
		t.Errorf("Time round trip: got %v, want %v", got, wall)
	}
}

func TestSystemClockMonotonic(t *testing.T) {
	var clock SystemClock
	a := clock.Now()
	b := clock.Now()
	if b.Before(a) {
		t.Errorf("SystemClock went backwards: %v then %v", a, b)
	}
}
