package pareto

import "math"

// BestSoFar returns the elements that strictly improve on the best value seen
// before them, in input order. The first element is always kept and seeds the
// running best. Ties with the running best are dropped.
//
// items must already be in the intended time order.
func BestSoFar[T any](items []T, f Accessor[T], o Orientation) []T {
	out := make([]T, 0)
	if len(items) == 0 {
		return out
	}
	out = append(out, items[0])
	best := value(items[0], f)
	for _, it := range items[1:] {
		v := value(it, f)
		// Comparisons against NaN are false, so missing values never win
		// and a missing seed is never improved on.
		if o.better(v, best) {
			out = append(out, it)
			best = v
		}
	}
	return out
}

func value[T any](it T, f Accessor[T]) float64 {
	v, ok := f(it)
	if !ok {
		return math.NaN()
	}
	return v
}
