package signal

import (
	"github.com/mohamedkhairy/stock-analytics/internal/models"
)

// CrossOver is true at t when a moves from at-or-below b to strictly above it:
// a[t] > b[t] and a[t-1] <= b[t-1]. Bar 0 and bars where any of the four
// operands is undefined are false.
func CrossOver(a, b models.Series) []bool {
	return cross(a, b, func(cur, prev float64) bool { return cur > 0 && prev <= 0 })
}

// CrossUnder mirrors CrossOver: a[t] < b[t] and a[t-1] >= b[t-1]
func CrossUnder(a, b models.Series) []bool {
	return cross(a, b, func(cur, prev float64) bool { return cur < 0 && prev >= 0 })
}

// cross applies fn to the ordering of a against b (+1, 0, -1) at t and t-1
func cross(a, b models.Series, fn func(cur, prev float64) bool) []bool {
	out := make([]bool, len(a))
	for t := 1; t < len(a); t++ {
		a0, ok1 := a[t].Get()
		b0, ok2 := b.At(t).Get()
		a1, ok3 := a[t-1].Get()
		b1, ok4 := b.At(t - 1).Get()
		if !(ok1 && ok2 && ok3 && ok4) {
			continue
		}
		out[t] = fn(compare(a0, b0), compare(a1, b1))
	}
	return out
}

func compare(x, y float64) float64 {
	switch {
	case x > y:
		return 1
	case x < y:
		return -1
	default:
		return 0
	}
}

// Above is true where s is defined and strictly greater than level
func Above(s models.Series, level float64) []bool {
	out := make([]bool, len(s))
	for t, v := range s {
		if x, ok := v.Get(); ok {
			out[t] = x > level
		}
	}
	return out
}

// Below is true where s is defined and strictly less than level
func Below(s models.Series, level float64) []bool {
	out := make([]bool, len(s))
	for t, v := range s {
		if x, ok := v.Get(); ok {
			out[t] = x < level
		}
	}
	return out
}

// Exceeds is true where a and b are both defined and a > b
func Exceeds(a, b models.Series) []bool {
	out := make([]bool, len(a))
	for t := range a {
		x, okA := a[t].Get()
		y, okB := b.At(t).Get()
		out[t] = okA && okB && x > y
	}
	return out
}

// Undercuts is true where a and b are both defined and a < b
func Undercuts(a, b models.Series) []bool {
	out := make([]bool, len(a))
	for t := range a {
		x, okA := a[t].Get()
		y, okB := b.At(t).Get()
		out[t] = okA && okB && x < y
	}
	return out
}
