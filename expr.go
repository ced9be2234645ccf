package psl

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// EscapeMarker precedes a reserved separator so the host tokenizer keeps an
// expression in one piece.
const EscapeMarker = '\\'

// Normalize removes every escape marker from raw. A space directly before a
// marker is removed with it, so "3 \, 4" and "3\, 4" both become "3, 4".
func Normalize(raw string) string {
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		c := raw[i]
		if c == EscapeMarker {
			if k := len(out); k > 0 && out[k-1] == ' ' {
				out = out[:k-1]
			}
			continue
		}
		out = append(out, c)
	}
	return string(out)
}

// Evaluator compiles normalized expression text.
type Evaluator interface {
	Compile(src string) (Program, error)
}

// Program is a compiled expression.
type Program interface {
	Run() (float64, error)
}

// ExprEvaluator compiles expressions with expr-lang/expr. The symbol table
// holds a single function, hypot(x, y).
type ExprEvaluator struct{}

type exprProgram struct {
	prog *vm.Program
}

var exprOptions = []expr.Option{
	expr.Function("hypot", func(params ...any) (any, error) {
		if len(params) != 2 {
			return nil, fmt.Errorf("hypot takes 2 arguments, got %d", len(params))
		}
		x, err := ToFloat(params[0])
		if err != nil {
			return nil, err
		}
		y, err := ToFloat(params[1])
		if err != nil {
			return nil, err
		}
		return math.Hypot(x, y), nil
	}),
}

// Compile implements Evaluator.
func (ExprEvaluator) Compile(src string) (Program, error) {
	prog, err := expr.Compile(src, exprOptions...)
	if err != nil {
		return nil, err
	}
	return exprProgram{prog: prog}, nil
}

func (p exprProgram) Run() (float64, error) {
	out, err := expr.Run(p.prog, nil)
	if err != nil {
		return 0, err
	}
	return ToFloat(out)
}

// ToFloat converts a numeric expression result to float64.
func ToFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int8:
		return float64(x), nil
	case int16:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	case uint8:
		return float64(x), nil
	case uint16:
		return float64(x), nil
	case uint32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	default:
		return 0, fmt.Errorf("non-numeric result %v (%T)", v, v)
	}
}
