package util

import (
    "math"
    "strconv"
)

// Round2 rounds to 2 decimal places, half up. All monetary values cross
// component boundaries already rounded so provider float noise never leaks.
func Round2(v float64) float64 {
    return math.Floor(v*100+0.5) / 100
}

// ParseFloat parses a string to float64, returning (0, false) on failure.
func ParseFloat(s string) (float64, bool) {
    v, err := strconv.ParseFloat(s, 64)
    if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
        return 0, false
    }
    return v, true
}
