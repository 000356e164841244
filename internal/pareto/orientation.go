package pareto

import "fmt"

// Orientation says whether lower or higher objective values are better.
type Orientation int

const (
	// Minimize prefers lower values.
	Minimize Orientation = iota
	// Maximize prefers higher values.
	Maximize
)

// ParseOrientation accepts "minimize", "maximize" and the empty string,
// which means Minimize.
func ParseOrientation(s string) (Orientation, error) {
	switch s {
	case "", "minimize", "min":
		return Minimize, nil
	case "maximize", "max":
		return Maximize, nil
	default:
		return Minimize, fmt.Errorf("unknown orientation %q: must be minimize or maximize", s)
	}
}

func (o Orientation) String() string {
	if o == Maximize {
		return "maximize"
	}
	return "minimize"
}

// sign turns a raw difference a-b into "how much worse a is than b".
func (o Orientation) sign() float64 {
	if o == Maximize {
		return -1
	}
	return 1
}

// better reports whether v strictly improves on best.
func (o Orientation) better(v, best float64) bool {
	if o == Maximize {
		return v > best
	}
	return v < best
}
