package funcs

import "math"

// Checked 64-bit signed arithmetic for compile-time evaluation. Each helper
// mirrors the run-time trap of the corresponding generated code.

func addChecked(a, b int64) (int64, bool) {
	s := a + b
	return s, (a^s)&(b^s) >= 0
}

func subChecked(a, b int64) (int64, bool) {
	s := a - b
	return s, (a^b)&(a^s) >= 0
}

func mulChecked(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if a == math.MinInt64 || b == math.MinInt64 {
		// MinInt64 survives multiplication only by 1.
		return a * b, a == 1 || b == 1
	}
	p := a * b
	return p, p/a == b
}

func negChecked(a int64) (int64, bool) {
	return -a, a != math.MinInt64
}

// powChecked raises base to a non-negative exponent, reporting overflow the
// same way the generated loop does.
func powChecked(base, exp int64) (int64, bool) {
	// Short-circuit the bases whose powers never grow, so that a huge
	// exponent cannot stall compile-time evaluation.
	switch base {
	case 0:
		if exp == 0 {
			return 1, true
		}
		return 0, true
	case 1:
		return 1, true
	case -1:
		if exp%2 == 0 {
			return 1, true
		}
		return -1, true
	}
	result := int64(1)
	for ; exp > 0; exp-- {
		var ok bool
		result, ok = mulChecked(result, base)
		if !ok {
			return 0, false
		}
	}
	return result, true
}
