package mathext

import "math"

const (
	besselMaxTerms = 2000

	// beyond this argument e^x/sqrt(2 pi x) exceeds the float64 range
	besselOverflow = 720.0
)

// BesselI0 returns the regular modified cylindrical Bessel function of order 0.
func BesselI0(x float64) float64 { return BesselIn(0, x) }

// BesselI1 returns the regular modified cylindrical Bessel function of order 1.
func BesselI1(x float64) float64 { return BesselIn(1, x) }

// BesselIn returns the regular modified cylindrical Bessel function of
// integer order n, using I_{-n} = I_n and I_n(-x) = (-1)^n I_n(x).
// Results too large for float64 come back as +Inf.
func BesselIn(n int, x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	if n < 0 {
		n = -n
	}
	sign := 1.0
	if x < 0 {
		x = -x
		if n%2 == 1 {
			sign = -1
		}
	}
	if math.IsInf(x, 1) || (x > besselOverflow && float64(n) < x) {
		return sign * math.Inf(1)
	}
	if x == 0 {
		if n == 0 {
			return 1
		}
		return 0
	}

	// log of the leading term (x/2)^n / n! keeps large orders finite
	half := x / 2
	lgam, _ := math.Lgamma(float64(n) + 1)
	logLead := float64(n)*math.Log(half) - lgam
	q := half * half

	// sum the series relative to its leading term, rescaling the partial
	// sum whenever it grows large so the running value never overflows
	sum, term, logScale := 1.0, 1.0, 0.0
	for k := 1; k < besselMaxTerms+int(x); k++ {
		term *= q / (float64(k) * float64(k+n))
		sum += term
		if term < 1e-17*sum {
			break
		}
		if sum > 1e200 {
			logScale += math.Log(sum)
			term /= sum
			sum = 1
		}
	}
	return sign * math.Exp(logLead+logScale+math.Log(sum))
}
