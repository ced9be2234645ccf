package extensibility

import (
	"context"
	"fmt"
	"math"
	"time"

	lua "github.com/yuin/gopher-lua"

	"github.com/comalice/psl"
)

// DefaultLuaTimeout bounds one expression evaluation.
const DefaultLuaTimeout = time.Second

// LuaEvaluator compiles expressions as Lua chunks of the form
// "return <expr>". Each program gets its own state with only the base and
// math libraries open and a global hypot(x, y).
type LuaEvaluator struct {
	// Timeout bounds Run. Zero means DefaultLuaTimeout.
	Timeout time.Duration
}

type luaProgram struct {
	L       *lua.LState
	fn      *lua.LFunction
	timeout time.Duration
}

// Compile implements psl.Evaluator.
func (e LuaEvaluator) Compile(src string) (psl.Program, error) {
	L := newLuaState()
	fn, err := L.LoadString("return " + src)
	if err != nil {
		L.Close()
		return nil, err
	}
	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultLuaTimeout
	}
	return &luaProgram{L: L, fn: fn, timeout: timeout}, nil
}

// Run evaluates the chunk once and releases the state.
func (p *luaProgram) Run() (float64, error) {
	defer p.L.Close()

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	p.L.SetContext(ctx)

	p.L.Push(p.fn)
	if err := p.L.PCall(0, 1, nil); err != nil {
		return 0, err
	}
	ret := p.L.Get(-1)
	p.L.Pop(1)

	n, ok := ret.(lua.LNumber)
	if !ok {
		return 0, fmt.Errorf("result is %s, not a number", ret.Type())
	}
	return float64(n), nil
}

// newLuaState opens only the libraries an arithmetic expression needs.
func newLuaState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	lua.OpenBase(L)
	lua.OpenMath(L)
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	L.SetGlobal("hypot", L.NewFunction(luaHypot))
	return L
}

func luaHypot(L *lua.LState) int {
	x := L.CheckNumber(1)
	y := L.CheckNumber(2)
	L.Push(lua.LNumber(math.Hypot(float64(x), float64(y))))
	return 1
}
