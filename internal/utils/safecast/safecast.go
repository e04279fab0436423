// Package safecast implements functions to safely cast types to avoid panics
package safecast

import (
	"fmt"
	"math/big"
	"time"

	"github.com/spf13/cast"
)

// Int64ToUint64 safely converts an int64 to uint64 using cast and checks for overflow
func Int64ToUint64(value int64) (uint64, error) {
	if value < 0 {
		return 0, fmt.Errorf("value %d is negative, cannot convert to uint64", value)
	}

	return cast.ToUint64E(value)
}

// BigToUint64 converts a non-negative big.Int that fits in 64 bits.
func BigToUint64(value *big.Int) (uint64, error) {
	if value == nil {
		return 0, nil
	}
	if value.Sign() < 0 {
		return 0, fmt.Errorf("value %s is negative, cannot convert to uint64", value)
	}
	if !value.IsUint64() {
		return 0, fmt.Errorf("value %s exceeds uint64 range", value)
	}

	return value.Uint64(), nil
}

// DurationToSeconds converts a non-negative duration to whole seconds.
func DurationToSeconds(d time.Duration) (uint64, error) {
	return Int64ToUint64(int64(d / time.Second))
}
