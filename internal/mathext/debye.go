package mathext

import (
	"math"

	"gonum.org/v1/gonum/integrate/quad"
)

const (
	// the integrand t^n/(e^t - 1) is below 1e-25 past this point for n <= 4
	debyeCutoff = 80.0
	debyeNodes  = 128
)

// debyeTotal[n] = ∫_0^∞ t^n/(e^t-1) dt = n! ζ(n+1).
var debyeTotal = [5]float64{
	0,
	math.Pi * math.Pi / 6,
	2 * 1.2020569031595942854,
	math.Pi * math.Pi * math.Pi * math.Pi / 15,
	24 * 1.0369277551433699263,
}

// Debye returns the Debye function D_n(x) = n/x^n ∫_0^x t^n/(e^t-1) dt
// for n in 1..4. Negative x is outside the domain and returns NaN.
func Debye(n int, x float64) float64 {
	if n < 1 || n > 4 || math.IsNaN(x) || x < 0 {
		return math.NaN()
	}
	if x == 0 {
		return 1
	}
	nf := float64(n)
	if math.IsInf(x, 1) {
		return 0
	}

	var integral float64
	if x >= debyeCutoff {
		integral = debyeTotal[n]
	} else {
		integrand := func(t float64) float64 {
			if t == 0 {
				if n == 1 {
					return 1
				}
				return 0
			}
			return math.Pow(t, nf) / math.Expm1(t)
		}
		integral = quad.Fixed(integrand, 0, x, debyeNodes, nil, 0)
	}
	return nf * integral / math.Pow(x, nf)
}

// Debye1 returns D_1(x).
func Debye1(x float64) float64 { return Debye(1, x) }

// Debye2 returns D_2(x).
func Debye2(x float64) float64 { return Debye(2, x) }

// Debye3 returns D_3(x).
func Debye3(x float64) float64 { return Debye(3, x) }

// Debye4 returns D_4(x).
func Debye4(x float64) float64 { return Debye(4, x) }
