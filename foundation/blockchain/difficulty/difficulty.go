// Package difficulty implements the 256 bit target arithmetic used to decide
// if a block header satisfies the proof of work and how the target moves
// as the chain grows.
package difficulty

import (
	"math/big"
	"time"

	"github.com/holiman/uint256"
)

// Default retarget schedule.
const (
	DefaultInterval       = 50
	DefaultIdealBlockTime = 10 * time.Second
)

// maxAdjustment bounds how far a single retarget can move the target.
const maxAdjustment = 4

// Max returns the largest representable target. Any hash satisfies it which
// makes it the target used to bootstrap a new chain.
func Max() *uint256.Int {
	return new(uint256.Int).SetAllOne()
}

// =============================================================================

// History provides read access to the accepted chain so the required target
// can be calculated from the chain alone.
type History interface {
	Len() int
	TimeStamp(i int) uint64
	Target(i int) *uint256.Int
}

// Config represents the retarget schedule for a chain.
type Config struct {
	Initial        *uint256.Int
	Interval       uint64
	IdealBlockTime time.Duration
}

// DefaultConfig returns the schedule starting from the maximum target.
func DefaultConfig() Config {
	return Config{
		Initial:        Max(),
		Interval:       DefaultInterval,
		IdealBlockTime: DefaultIdealBlockTime,
	}
}

// Required returns the target the next block appended to the history must
// declare. The genesis block and the block after it use the initial target.
// Every Interval blocks the target of the last block is adjusted by the time
// it took to produce the last window of blocks, otherwise it carries over.
func (c Config) Required(history History) *uint256.Int {
	height := history.Len()

	if height < 2 {
		return c.initial()
	}

	last := history.Target(height - 1)

	if c.Interval == 0 || uint64(height)%c.Interval != 0 {
		return new(uint256.Int).Set(last)
	}

	start := 0
	if uint64(height) > c.Interval {
		start = height - int(c.Interval) - 1
	}
	gaps := height - 1 - start

	first := history.TimeStamp(start)
	end := history.TimeStamp(height - 1)

	var actual time.Duration
	if end > first {
		actual = time.Duration(end-first) * time.Second
	}
	expected := time.Duration(gaps) * c.IdealBlockTime

	return Retarget(last, actual, expected)
}

func (c Config) initial() *uint256.Int {
	if c.Initial == nil {
		return Max()
	}
	return new(uint256.Int).Set(c.Initial)
}

// =============================================================================

// Retarget scales the current target by the ratio of the actual time spent
// producing a window of blocks to the expected time. Taking longer than
// expected raises the target which makes blocks easier to find. The result
// moves by at most a factor of four and never exceeds Max.
func Retarget(current *uint256.Int, actual time.Duration, expected time.Duration) *uint256.Int {
	actualSecs := uint64(actual / time.Second)
	if actualSecs == 0 {
		actualSecs = 1
	}

	expectedSecs := uint64(expected / time.Second)
	if expectedSecs == 0 {
		expectedSecs = 1
	}

	next, overflow := new(uint256.Int).MulDivOverflow(current, uint256.NewInt(actualSecs), uint256.NewInt(expectedSecs))
	if overflow {
		next = Max()
	}

	lower := new(uint256.Int).Rsh(current, 2)
	upper, overflow := new(uint256.Int).MulOverflow(current, uint256.NewInt(maxAdjustment))
	if overflow {
		upper = Max()
	}

	switch {
	case next.Lt(lower):
		next.Set(lower)
	case next.Gt(upper):
		next.Set(upper)
	}

	if next.IsZero() {
		next.SetOne()
	}

	return next
}

// Work returns the expected number of hashes needed to find a header that
// satisfies the target, 2^256 / (target+1).
func Work(target *uint256.Int) *big.Int {
	denominator := new(big.Int).Add(target.ToBig(), big.NewInt(1))
	numerator := new(big.Int).Lsh(big.NewInt(1), 256)

	return numerator.Div(numerator, denominator)
}
