package timex

import (
	"time"

	"manchestertx-go/x/mathx"
)

// HalfBitTicks returns the number of timing-reference cycles per half-bit
// period, rounded to nearest: round(refHz / (2*bitRate)).
// bitRate==0 is coerced to 1 to avoid division by zero.
func HalfBitTicks(refHz, bitRate uint32) uint32 {
	if bitRate == 0 {
		bitRate = 1
	}
	return uint32(mathx.RoundDiv(uint64(refHz), 2*uint64(bitRate)))
}

// HalfBitPeriod returns the wall-clock duration of one half-bit period for
// the requested bit rate. bitRate==0 is coerced to 1.
func HalfBitPeriod(bitRate uint32) time.Duration {
	if bitRate == 0 {
		bitRate = 1
	}
	return time.Second / time.Duration(2*bitRate)
}

// PeriodFromHz returns a nanosecond period for a requested frequency.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint32) uint64 {
	if freqHz == 0 {
		freqHz = 1
	}
	return uint64(1_000_000_000 / uint64(freqHz))
}
