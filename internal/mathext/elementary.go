package mathext

import "math"

// Hypot3 returns sqrt(x*x + y*y + z*z) without undue overflow.
func Hypot3(x, y, z float64) float64 {
	ax, ay, az := math.Abs(x), math.Abs(y), math.Abs(z)
	if math.IsInf(ax, 0) || math.IsInf(ay, 0) || math.IsInf(az, 0) {
		return math.Inf(1)
	}
	scale := math.Max(ax, math.Max(ay, az))
	if scale == 0 || math.IsNaN(scale) {
		return scale
	}
	xs, ys, zs := ax/scale, ay/scale, az/scale
	return scale * math.Sqrt(xs*xs+ys*ys+zs*zs)
}

// PowInt raises x to the integer power n by repeated squaring.
// Negative powers invert x first.
func PowInt(x float64, n int) float64 {
	if n < 0 {
		x = 1 / x
		n = -n
	}
	value := 1.0
	for n > 0 {
		if n&1 == 1 {
			value *= x
		}
		x *= x
		n >>= 1
	}
	return value
}

// Fcmp compares x1 and x2 to a relative accuracy of epsilon, returning
// 0 when they are approximately equal, -1 when x1 < x2 and +1 otherwise.
// The tolerance is scaled by the binary exponent of the larger magnitude.
func Fcmp(x1, x2, epsilon float64) int {
	max := math.Max(math.Abs(x1), math.Abs(x2))
	_, exponent := math.Frexp(max)
	delta := math.Ldexp(epsilon, exponent)
	difference := x1 - x2
	switch {
	case difference > delta:
		return 1
	case difference < -delta:
		return -1
	default:
		return 0
	}
}

// Trunc converts a float argument used as an integer parameter (an order or
// an exponent) the way a C cast does: toward zero. NaN and out-of-range
// values map to 0.
func Trunc(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) > math.MaxInt32 {
		return 0
	}
	return int(f)
}
