package order

import (
	"cmp"
	"slices"
)

// SortByUrgency returns the orders ordered critical, urgent, standard, then
// anything else. Orders of the same tier keep their input order. The input
// slice is not modified.
func SortByUrgency(orders []Order) []Order {
	out := slices.Clone(orders)
	slices.SortStableFunc(out, func(a, b Order) int {
		return cmp.Compare(a.Urgency.Rank(), b.Urgency.Rank())
	})
	return out
}
