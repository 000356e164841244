package pareto

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
)

// Accessor reads one objective value from an element.
type Accessor[T any] func(T) (v float64, ok bool)

// objectives caches both accessor results for one element so the quadratic
// scan calls the accessors n times rather than n² times.
type objectives struct {
	x, y float64
	hasX bool
	hasY bool
}

func evaluate[T any](items []T, fx, fy Accessor[T]) []objectives {
	out := make([]objectives, len(items))
	for i, it := range items {
		x, okX := fx(it)
		y, okY := fy(it)
		out[i] = objectives{
			x:    x,
			y:    y,
			hasX: okX && !math.IsNaN(x),
			hasY: okY && !math.IsNaN(y),
		}
	}
	return out
}

// dominatedBy reports whether a is dominated by b: both signed differences
// are >= 0 and at least one is > 0. The y axis is only read once the x axis
// has not ruled domination out.
func dominatedBy(a, b objectives, sign float64) bool {
	if !a.hasX || !b.hasX {
		return false
	}
	dx := sign * (a.x - b.x)
	if dx < 0 {
		return false
	}
	if !a.hasY || !b.hasY {
		return false
	}
	dy := sign * (a.y - b.y)
	if dy < 0 {
		return false
	}
	return dx > 0 || dy > 0
}

// Dominated reports whether a is dominated by b under o.
func Dominated[T any](a, b T, fx, fy Accessor[T], o Orientation) bool {
	vals := evaluate([]T{a, b}, fx, fy)
	return dominatedBy(vals[0], vals[1], o.sign())
}

// NonDominated returns the elements of items no other element dominates, in
// input order. Elements with identical objective values are all kept.
//
// The scan is O(n²); the inner loop stops at the first dominating element.
func NonDominated[T any](items []T, fx, fy Accessor[T], o Orientation) []T {
	vals := evaluate(items, fx, fy)
	keep := make([]bool, len(items))
	markFront(vals, keep, 0, len(items), o.sign())
	return collect(items, keep)
}

// NonDominatedParallel is NonDominated with the candidates split across
// workers goroutines. The result is identical to NonDominated. workers < 2
// runs the scan on the calling goroutine. Cancelling ctx abandons the scan.
func NonDominatedParallel[T any](ctx context.Context, items []T, fx, fy Accessor[T], o Orientation, workers int) ([]T, error) {
	if workers < 2 || len(items) < 2 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return NonDominated(items, fx, fy, o), nil
	}
	if workers > len(items) {
		workers = len(items)
	}

	vals := evaluate(items, fx, fy)
	keep := make([]bool, len(items))
	sign := o.sign()
	chunk := (len(items) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < len(items); lo += chunk {
		hi := min(lo+chunk, len(items))
		g.Go(func() error {
			// Each worker owns keep[lo:hi]; vals is read-only.
			for start := lo; start < hi; start += cancelCheckEvery {
				if err := gctx.Err(); err != nil {
					return err
				}
				markFront(vals, keep, start, min(start+cancelCheckEvery, hi), sign)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return collect(items, keep), nil
}

// cancelCheckEvery is how many candidates a worker scans between context checks.
const cancelCheckEvery = 256

// markFront sets keep[i] for each candidate i in [lo, hi) that no element of
// vals dominates.
func markFront(vals []objectives, keep []bool, lo, hi int, sign float64) {
	for i := lo; i < hi; i++ {
		dominated := false
		for j := range vals {
			if j == i {
				continue
			}
			if dominatedBy(vals[i], vals[j], sign) {
				dominated = true
				break
			}
		}
		keep[i] = !dominated
	}
}

func collect[T any](items []T, keep []bool) []T {
	out := make([]T, 0, len(items))
	for i, k := range keep {
		if k {
			out = append(out, items[i])
		}
	}
	return out
}
