package parking

import (
	"math"
	"time"
)

// BillableHours rounds elapsed up to whole hours with a one hour minimum.
// Zero or negative durations (clock skew) bill one hour.
func BillableHours(elapsed time.Duration) int64 {
	hours := int64(elapsed / time.Hour)
	if elapsed%time.Hour > 0 {
		hours++
	}
	if hours < 1 {
		hours = 1
	}
	return hours
}

func CalculateFee(elapsed time.Duration, ratePerHour float64) float64 {
	return float64(BillableHours(elapsed)) * ratePerHour
}

// ValidRate reports whether r can price a stay.
func ValidRate(r float64) bool {
	return !math.IsNaN(r) && !math.IsInf(r, 0) && r > 0
}
