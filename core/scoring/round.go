package scoring

import "math"

// round2 rounds x to 2 decimal places, half away from zero.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// sanitize drops NaN/Inf values (treated as not entered) and clamps negatives to 0.
func sanitize(v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	x := *v
	if x < 0 {
		x = 0
	}
	return &x
}

// mean averages the present values. ok is false when none is present.
func mean(vals ...*float64) (avg float64, ok bool) {
	var sum float64
	var n int
	for _, v := range vals {
		if v != nil {
			sum += *v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func valueOr0(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

func anyPresent(vals ...*float64) bool {
	for _, v := range vals {
		if v != nil {
			return true
		}
	}
	return false
}

func ptr(x float64) *float64 { return &x }
