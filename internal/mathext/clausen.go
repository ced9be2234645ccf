package mathext

import "math"

// clausenBernoulli holds |B_2k| for k = 1..15.
var clausenBernoulli = [...]float64{
	1.0 / 6,
	1.0 / 30,
	1.0 / 42,
	1.0 / 30,
	5.0 / 66,
	691.0 / 2730,
	7.0 / 6,
	3617.0 / 510,
	43867.0 / 798,
	174611.0 / 330,
	854513.0 / 138,
	236364091.0 / 2730,
	8553103.0 / 6,
	23749461029.0 / 870,
	8615841276005.0 / 14322,
}

// clausenNear0[k-1] = |B_2k| / (2k (2k+1)!), for
// Cl2(t) = t - t ln t + Σ c_k t^(2k+1).
//
// clausenNearPi[k-1] = (2^2k - 1) |B_2k| / (2k (2k+1)!), for
// Cl2(π-u) = u ln 2 - Σ c_k u^(2k+1).
var clausenNear0, clausenNearPi = func() (near0, nearPi []float64) {
	fact := 1.0 // (2k+1)!
	pow4 := 1.0 // 2^2k
	for i, b := range clausenBernoulli {
		k := float64(i + 1)
		fact *= (2 * k) * (2*k + 1)
		pow4 *= 4
		c := b / (2 * k * fact)
		near0 = append(near0, c)
		nearPi = append(nearPi, (pow4-1)*c)
	}
	return near0, nearPi
}()

// clausenSplit divides the two expansions; both converge with ratio 1/9
// per term at the split.
const clausenSplit = 2 * math.Pi / 3

// Clausen returns the Clausen integral Cl2(x) = -∫_0^x ln|2 sin(t/2)| dt.
func Clausen(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return math.NaN()
	}
	t := math.Mod(x, 2*math.Pi)
	if t > math.Pi {
		t -= 2 * math.Pi
	} else if t < -math.Pi {
		t += 2 * math.Pi
	}
	sign := 1.0
	if t < 0 {
		t, sign = -t, -1
	}
	if t == 0 {
		return 0
	}
	if t <= clausenSplit {
		return sign * (t - t*math.Log(t) + oddSeries(clausenNear0, t))
	}
	u := math.Pi - t
	return sign * (u*math.Ln2 - oddSeries(clausenNearPi, u))
}

// oddSeries returns Σ c[k-1] x^(2k+1) for k = 1..len(c).
func oddSeries(c []float64, x float64) float64 {
	x2 := x * x
	p := x * x2
	sum := 0.0
	for _, ck := range c {
		sum += ck * p
		p *= x2
	}
	return sum
}
