// Package payroll turns raw attendance timestamps into payable hours and
// amounts.
package payroll

import "math"

// RoundingMode selects how raw worked seconds become payable minutes.
type RoundingMode string

const (
	// Minute1 rounds to the nearest minute. Halves round away from zero.
	Minute1 RoundingMode = "minute1"
	// Quarter15 rounds to 15-minute blocks. Remainders of 7.5 minutes or
	// more round up to the next block, anything less rounds down.
	Quarter15 RoundingMode = "quarter15"
)

// ParseMode maps a mode name onto a RoundingMode, defaulting to Minute1.
func ParseMode(s string) RoundingMode {
	if s == string(Quarter15) {
		return Quarter15
	}
	return Minute1
}

// RoundedMinutes converts raw worked seconds into payable minutes.
func RoundedMinutes(seconds int64, mode RoundingMode) int {
	m := float64(seconds) / 60.0
	switch mode {
	case Quarter15:
		rem := math.Mod(m, 15)
		base := m - rem
		if rem >= 7.5 {
			return int(math.Round(base)) + 15
		}
		return int(math.Round(base))
	default:
		return int(math.Round(m))
	}
}
