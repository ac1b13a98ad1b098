package types

import (
	"strconv"
	"time"
)

// Timestamp is a microsecond-resolution logical instant. Operations receive
// exactly one Timestamp from the hosting environment's clock; ledger code
// never reads wall-clock time itself, which keeps replay deterministic.
type Timestamp uint64

// Time constants in microseconds.
const (
	MicrosPerSecond uint64 = 1_000_000
	BonusCooldown   uint64 = 86_400_000_000 // 24 hours
)

// TimestampFromTime converts a wall-clock time to a Timestamp.
// Times before the epoch map to zero.
func TimestampFromTime(t time.Time) Timestamp {
	us := t.UnixMicro()
	if us < 0 {
		return 0
	}
	return Timestamp(us)
}

// Micros returns the raw microsecond count.
func (t Timestamp) Micros() uint64 { return uint64(t) }

// DeltaSince returns the microseconds elapsed since other, saturating at
// zero when other is in the future.
func (t Timestamp) DeltaSince(other Timestamp) uint64 {
	if other > t {
		return 0
	}
	return uint64(t - other)
}

// AddMicros returns the instant micros later, clamping on overflow.
func (t Timestamp) AddMicros(micros uint64) Timestamp {
	sum := uint64(t) + micros
	if sum < uint64(t) {
		return Timestamp(^uint64(0))
	}
	return Timestamp(sum)
}

// AddSeconds returns the instant secs whole seconds later.
func (t Timestamp) AddSeconds(secs uint64) Timestamp {
	if secs > ^uint64(0)/MicrosPerSecond {
		return Timestamp(^uint64(0))
	}
	return t.AddMicros(secs * MicrosPerSecond)
}

// Before returns true if t is strictly before other.
func (t Timestamp) Before(other Timestamp) bool { return t < other }

// After returns true if t is strictly after other.
func (t Timestamp) After(other Timestamp) bool { return t > other }

// Time converts the Timestamp to a wall-clock time in UTC.
func (t Timestamp) Time() time.Time {
	return time.UnixMicro(int64(t)).UTC()
}

// String returns the decimal microsecond representation.
func (t Timestamp) String() string { return strconv.FormatUint(uint64(t), 10) }

// Clock supplies the logical time for each operation. Implementations must
// be monotonically non-decreasing across calls.
type Clock interface {
	Now() Timestamp
}

// SystemClock is the default Clock reading the OS time.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() Timestamp { return TimestampFromTime(time.Now()) }
