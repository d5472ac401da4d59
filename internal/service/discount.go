package service

import "math"

// DiscountAmount is the whole-session discount in minor units:
// floor(subtotal * percentage / 100).
func DiscountAmount(subtotal, percentage int64) int64 {
	if percentage <= 0 || subtotal <= 0 {
		return 0
	}
	return subtotal * percentage / 100
}

// SplitAmounts charges each line its gross amount minus an equal share of
// the session discount, rounding each line independently. The split is
// deliberately equal across lines rather than proportional to value;
// downstream accounting depends on it. The rounded sum can drift from
// subtotal-discount by at most len(gross)-1 minor units.
func SplitAmounts(gross []int64, discountAmount int64) []int64 {
	amounts := make([]int64, len(gross))
	if len(gross) == 0 {
		return amounts
	}

	share := float64(discountAmount) / float64(len(gross))
	for i, g := range gross {
		amounts[i] = int64(math.Round(float64(g) - share))
	}
	return amounts
}
