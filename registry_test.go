package psl

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogue_Arities(t *testing.T) {
	want := map[string]int{
		"add": 2, "log1p": 1, "expm1": 1, "hypot": 2, "hypot3": 3,
		"acosh": 1, "asinh": 1, "atanh": 1, "ldexp": 2, "pow_int": 2,
		"pow_2": 1, "pow_3": 1, "pow_4": 1, "pow_5": 1, "pow_6": 1,
		"pow_7": 1, "pow_8": 1, "pow_9": 1, "rando": 2, "fcmp": 3,
		"airy_ai": 1, "airy_bi": 1, "bessel_j0": 1, "bessel_j1": 1,
		"bessel_jn": 2, "bessel_y0": 1, "bessel_y1": 1, "bessel_yn": 2,
		"bessel_i0": 1, "bessel_i1": 1, "bessel_in": 2, "clausen": 1,
		"dawson": 1, "debye_1": 1, "debye_2": 1, "debye_3": 1, "debye_4": 1,
	}
	ops := Catalogue()
	require.Len(t, ops, len(want))
	for i, d := range ops {
		assert.Equal(t, OpID(i), d.ID)
		arity, ok := want[d.Name]
		if assert.True(t, ok, "unexpected operation %q", d.Name) {
			assert.Equal(t, arity, d.Arity, d.Name)
		}
	}
}

func TestLookup(t *testing.T) {
	d, ok := Lookup(OpHypot)
	require.True(t, ok)
	assert.Equal(t, "hypot", d.Name)

	_, ok = Lookup(numOps)
	assert.False(t, ok)
	_, ok = Lookup(-1)
	assert.False(t, ok)
}

func TestDescriptor_InvokeScalar(t *testing.T) {
	tests := []struct {
		id   OpID
		args []float64
		want float64
	}{
		{OpAdd, []float64{7, 3}, 10},
		{OpHypot, []float64{3, 4}, 5},
		{OpHypot3, []float64{2, 3, 6}, 7},
		{OpLdexp, []float64{1.5, 3}, 12},
		{OpPowInt, []float64{2, 10}, 1024},
		{OpPow3, []float64{-2}, -8},
		{OpPow9, []float64{2}, 512},
		{OpFcmp, []float64{1, 2, 1e-9}, -1},
		{OpFcmp, []float64{2, 2, 1e-9}, 0},
		{OpBesselJ0, []float64{0}, 1},
		{OpBesselJn, []float64{0, 0}, 1},
		{OpBesselIn, []float64{0, 0}, 1},
		{OpDebye1, []float64{0}, 1},
		{OpLog1p, []float64{0}, 0},
	}
	for _, tt := range tests {
		d, _ := Lookup(tt.id)
		t.Run(d.Name, func(t *testing.T) {
			var got []float64
			err := d.Invoke(Invocation{Args: tt.args, Emit: func(v float64) { got = append(got, v) }})
			require.NoError(t, err)
			require.Len(t, got, 1)
			assert.InDelta(t, tt.want, got[0], 1e-12)
		})
	}
}

func TestDescriptor_InvokeWrongArity(t *testing.T) {
	d, _ := Lookup(OpHypot)
	err := d.Invoke(Invocation{Args: []float64{1}})
	assert.True(t, errors.Is(err, ErrArityMismatch))
}

func TestDescriptor_DomainErrorsPassThrough(t *testing.T) {
	tests := []struct {
		id   OpID
		args []float64
	}{
		{OpAcosh, []float64{0.5}},
		{OpDebye2, []float64{-1}},
		{OpLog1p, []float64{-2}},
	}
	for _, tt := range tests {
		d, _ := Lookup(tt.id)
		var got float64
		err := d.Invoke(Invocation{Args: tt.args, Emit: func(v float64) { got = v }})
		require.NoError(t, err, d.Name)
		assert.True(t, math.IsNaN(got), "%s(%v) = %v, want NaN", d.Name, tt.args, got)
	}
}

func TestRandomStream_Validation(t *testing.T) {
	d, _ := Lookup(OpRando)
	for _, count := range []float64{-1, 2.5, math.NaN(), math.Inf(1), DefaultMaxStreamCount + 1} {
		emitted := 0
		err := d.Invoke(Invocation{Args: []float64{count, 1}, Emit: func(float64) { emitted++ }})
		assert.ErrorIs(t, err, ErrCountOutOfRange, "count %v", count)
		assert.Zero(t, emitted, "count %v", count)
	}

	emitted := 0
	err := d.Invoke(Invocation{Args: []float64{0, 1}, Emit: func(float64) { emitted++ }})
	require.NoError(t, err)
	assert.Zero(t, emitted)

	err = d.Invoke(Invocation{Args: []float64{20, 1}, MaxStream: 10})
	assert.ErrorIs(t, err, ErrCountOutOfRange)
}

func TestSeedWord(t *testing.T) {
	assert.Equal(t, uint32(102), seedWord(102))
	assert.Equal(t, uint32(102), seedWord(102.9))
	assert.Equal(t, uint32(math.MaxUint32), seedWord(-1))
	assert.Equal(t, uint32(0), seedWord(math.NaN()))
	assert.Equal(t, uint32(5), seedWord(1<<32+5))
}
