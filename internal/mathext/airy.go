package mathext

import (
	"math"

	gmath "gonum.org/v1/gonum/mathext"
)

const (
	// airyC1 is Ai(0), airyC2 is -Ai'(0).
	airyC1 = 0.355028053887817239260
	airyC2 = 0.258819403792806798405

	airySeriesLimit = 7.0
	airyMaxTerms    = 200
)

// AiryAi returns the Airy function of the first kind for real x.
func AiryAi(x float64) float64 {
	if math.IsNaN(x) {
		return math.NaN()
	}
	return real(gmath.AiryAi(complex(x, 0)))
}

// AiryBi returns the Airy function of the second kind for real x.
func AiryBi(x float64) float64 {
	switch {
	case math.IsNaN(x):
		return math.NaN()
	case math.IsInf(x, 1):
		return math.Inf(1)
	case math.IsInf(x, -1):
		return 0
	case math.Abs(x) <= airySeriesLimit:
		f, g := airySeries(x)
		return math.Sqrt(3) * (airyC1*f + airyC2*g)
	case x > 0:
		return airyBiPositive(x)
	default:
		return airyBiNegative(-x)
	}
}

// airySeries evaluates the two Maclaurin series f and g with
// Ai = c1 f - c2 g and Bi = sqrt(3) (c1 f + c2 g).
func airySeries(x float64) (f, g float64) {
	x3 := x * x * x
	tf, tg := 1.0, x
	f, g = tf, tg
	for k := 0; k < airyMaxTerms; k++ {
		kk := float64(3 * k)
		tf *= x3 / ((kk + 2) * (kk + 3))
		tg *= x3 / ((kk + 3) * (kk + 4))
		f += tf
		g += tg
		if math.Abs(tf) <= 1e-17*math.Abs(f) && math.Abs(tg) <= 1e-17*math.Abs(g) {
			break
		}
	}
	return f, g
}

// airyU returns the asymptotic coefficients u_0..u_{n-1}.
func airyU(n int) []float64 {
	u := make([]float64, n)
	u[0] = 1
	for k := 1; k < n; k++ {
		kf := float64(k)
		u[k] = u[k-1] * (6*kf - 5) * (6*kf - 3) * (6*kf - 1) / ((2*kf - 1) * 216 * kf)
	}
	return u
}

func airyBiPositive(x float64) float64 {
	zeta := 2.0 / 3.0 * x * math.Sqrt(x)
	u := airyU(26)
	sum, p := 0.0, 1.0
	for k := range u {
		term := u[k] * p
		sum += term
		if math.Abs(term) < 1e-17*math.Abs(sum) {
			break
		}
		p /= zeta
	}
	// split the exponential so large x overflows only when the result does
	return math.Exp(zeta/2) * (math.Exp(zeta/2) * sum / (math.SqrtPi * math.Sqrt(math.Sqrt(x))))
}

func airyBiNegative(z float64) float64 {
	zeta := 2.0 / 3.0 * z * math.Sqrt(z)
	u := airyU(26)
	var even, odd float64
	sign, p := 1.0, 1.0
	for k := 0; k+1 < len(u); k += 2 {
		even += sign * u[k] * p
		p /= zeta
		odd += sign * u[k+1] * p
		p /= zeta
		sign = -sign
	}
	phase := zeta - math.Pi/4
	return (-math.Sin(phase)*even + math.Cos(phase)*odd) / (math.SqrtPi * math.Sqrt(math.Sqrt(z)))
}
