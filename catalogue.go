package psl

import (
	"fmt"
	"math"

	"github.com/comalice/psl/internal/mathext"
)

// Operation identifiers, in catalogue order.
const (
	OpAdd OpID = iota
	OpLog1p
	OpExpm1
	OpHypot
	OpHypot3
	OpAcosh
	OpAsinh
	OpAtanh
	OpLdexp
	OpPowInt
	OpPow2
	OpPow3
	OpPow4
	OpPow5
	OpPow6
	OpPow7
	OpPow8
	OpPow9
	OpRando
	OpFcmp
	OpAiryAi
	OpAiryBi
	OpBesselJ0
	OpBesselJ1
	OpBesselJn
	OpBesselY0
	OpBesselY1
	OpBesselYn
	OpBesselI0
	OpBesselI1
	OpBesselIn
	OpClausen
	OpDawson
	OpDebye1
	OpDebye2
	OpDebye3
	OpDebye4

	numOps
)

// DefaultOp is bound when a selector does not resolve.
const DefaultOp = OpBesselJ0

const (
	// DefaultMaxStreamCount bounds rando output unless a node overrides it.
	DefaultMaxStreamCount = 4096
	// HardMaxStreamCount is the largest limit a node may configure.
	HardMaxStreamCount = 1 << 20
)

var catalogue = [numOps]Descriptor{
	OpAdd:      {Name: "add", Arity: 2, Doc: "x + y", invoke: binary(func(x, y float64) float64 { return x + y })},
	OpLog1p:    {Name: "log1p", Arity: 1, Doc: "log(1 + x)", invoke: unary(math.Log1p)},
	OpExpm1:    {Name: "expm1", Arity: 1, Doc: "exp(x) - 1", invoke: unary(math.Expm1)},
	OpHypot:    {Name: "hypot", Arity: 2, Doc: "sqrt(x² + y²)", invoke: binary(math.Hypot)},
	OpHypot3:   {Name: "hypot3", Arity: 3, Doc: "sqrt(x² + y² + z²)", invoke: ternary(mathext.Hypot3)},
	OpAcosh:    {Name: "acosh", Arity: 1, Doc: "inverse hyperbolic cosine", invoke: unary(math.Acosh)},
	OpAsinh:    {Name: "asinh", Arity: 1, Doc: "inverse hyperbolic sine", invoke: unary(math.Asinh)},
	OpAtanh:    {Name: "atanh", Arity: 1, Doc: "inverse hyperbolic tangent", invoke: unary(math.Atanh)},
	OpLdexp:    {Name: "ldexp", Arity: 2, Doc: "x · 2^e", invoke: binary(func(x, e float64) float64 { return math.Ldexp(x, mathext.Trunc(e)) })},
	OpPowInt:   {Name: "pow_int", Arity: 2, Doc: "x^n for integer n", invoke: binary(func(x, n float64) float64 { return mathext.PowInt(x, mathext.Trunc(n)) })},
	OpPow2:     {Name: "pow_2", Arity: 1, Doc: "x²", invoke: unary(powN(2))},
	OpPow3:     {Name: "pow_3", Arity: 1, Doc: "x³", invoke: unary(powN(3))},
	OpPow4:     {Name: "pow_4", Arity: 1, Doc: "x⁴", invoke: unary(powN(4))},
	OpPow5:     {Name: "pow_5", Arity: 1, Doc: "x⁵", invoke: unary(powN(5))},
	OpPow6:     {Name: "pow_6", Arity: 1, Doc: "x⁶", invoke: unary(powN(6))},
	OpPow7:     {Name: "pow_7", Arity: 1, Doc: "x⁷", invoke: unary(powN(7))},
	OpPow8:     {Name: "pow_8", Arity: 1, Doc: "x⁸", invoke: unary(powN(8))},
	OpPow9:     {Name: "pow_9", Arity: 1, Doc: "x⁹", invoke: unary(powN(9))},
	OpRando:    {Name: "rando", Arity: 2, Stream: true, Doc: "count uniforms in [0,1) from MT19937 seeded with seed", invoke: randomStream},
	OpFcmp:     {Name: "fcmp", Arity: 3, Doc: "compare x and y to relative accuracy eps: -1, 0, 1", invoke: ternary(func(x, y, eps float64) float64 { return float64(mathext.Fcmp(x, y, eps)) })},
	OpAiryAi:   {Name: "airy_ai", Arity: 1, Doc: "Airy function Ai(x)", invoke: unary(mathext.AiryAi)},
	OpAiryBi:   {Name: "airy_bi", Arity: 1, Doc: "Airy function Bi(x)", invoke: unary(mathext.AiryBi)},
	OpBesselJ0: {Name: "bessel_j0", Arity: 1, Doc: "Bessel J0(x)", invoke: unary(math.J0)},
	OpBesselJ1: {Name: "bessel_j1", Arity: 1, Doc: "Bessel J1(x)", invoke: unary(math.J1)},
	OpBesselJn: {Name: "bessel_jn", Arity: 2, Doc: "Bessel Jn(x), order first", invoke: binary(func(n, x float64) float64 { return math.Jn(mathext.Trunc(n), x) })},
	OpBesselY0: {Name: "bessel_y0", Arity: 1, Doc: "Bessel Y0(x)", invoke: unary(math.Y0)},
	OpBesselY1: {Name: "bessel_y1", Arity: 1, Doc: "Bessel Y1(x)", invoke: unary(math.Y1)},
	OpBesselYn: {Name: "bessel_yn", Arity: 2, Doc: "Bessel Yn(x), order first", invoke: binary(func(n, x float64) float64 { return math.Yn(mathext.Trunc(n), x) })},
	OpBesselI0: {Name: "bessel_i0", Arity: 1, Doc: "modified Bessel I0(x)", invoke: unary(mathext.BesselI0)},
	OpBesselI1: {Name: "bessel_i1", Arity: 1, Doc: "modified Bessel I1(x)", invoke: unary(mathext.BesselI1)},
	OpBesselIn: {Name: "bessel_in", Arity: 2, Doc: "modified Bessel In(x), order first", invoke: binary(func(n, x float64) float64 { return mathext.BesselIn(mathext.Trunc(n), x) })},
	OpClausen:  {Name: "clausen", Arity: 1, Doc: "Clausen integral Cl2(x)", invoke: unary(mathext.Clausen)},
	OpDawson:   {Name: "dawson", Arity: 1, Doc: "Dawson integral F(x)", invoke: unary(mathext.Dawson)},
	OpDebye1:   {Name: "debye_1", Arity: 1, Doc: "Debye function D1(x)", invoke: unary(mathext.Debye1)},
	OpDebye2:   {Name: "debye_2", Arity: 1, Doc: "Debye function D2(x)", invoke: unary(mathext.Debye2)},
	OpDebye3:   {Name: "debye_3", Arity: 1, Doc: "Debye function D3(x)", invoke: unary(mathext.Debye3)},
	OpDebye4:   {Name: "debye_4", Arity: 1, Doc: "Debye function D4(x)", invoke: unary(mathext.Debye4)},
}

func init() {
	for i := range catalogue {
		d := &catalogue[i]
		d.ID = OpID(i)
		if d.Name == "" || d.invoke == nil || d.Arity < 1 || d.Arity > MaxArity {
			panic(fmt.Sprintf("psl: malformed catalogue entry %d", i))
		}
	}
}

func powN(n int) func(float64) float64 {
	return func(x float64) float64 { return mathext.PowInt(x, n) }
}

// randomStream emits count uniforms from a generator seeded for this call
// only. The count is validated before anything is allocated.
func randomStream(inv Invocation) error {
	count, seed := inv.Args[0], inv.Args[1]
	limit := inv.MaxStream
	if limit <= 0 {
		limit = DefaultMaxStreamCount
	}
	if math.IsNaN(count) || count < 0 || count != math.Trunc(count) || count > float64(limit) {
		return fmt.Errorf("rando: count %v not in 0..%d: %w", count, limit, ErrCountOutOfRange)
	}
	for _, u := range mathext.UniformStream(int(count), seedWord(seed)) {
		inv.Emit(u)
	}
	return nil
}

// seedWord converts a float seed to the generator's 32-bit seed word the way
// an unsigned long assignment does: truncate, then keep the low 32 bits.
func seedWord(seed float64) uint32 {
	if math.IsNaN(seed) || math.IsInf(seed, 0) {
		return 0
	}
	return uint32(int64(math.Trunc(math.Mod(seed, 1<<32))))
}
