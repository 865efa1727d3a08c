package evaluator

import (
	"fmt"
	"math"
	"sync"

	"github.com/leengari/hybrideval/internal/expr"
)

// Generic (slow-path) scalar evaluation. After the substitution pass has
// replaced accelerated subexpressions with their computed values, whatever
// structure remains is evaluated here, once per group.

// Env binds residual symbols to scalar values for one group. nil marks null.
type Env map[string]interface{}

// ScalarFunc is a host-level scalar function applied during generic
// evaluation of a residual expression.
type ScalarFunc func(args []interface{}) (interface{}, error)

var scalarMu sync.RWMutex

var scalarFuncs = map[string]ScalarFunc{
	"abs":   numericFunc("abs", math.Abs),
	"sqrt":  numericFunc("sqrt", math.Sqrt),
	"log":   numericFunc("log", math.Log),
	"exp":   numericFunc("exp", math.Exp),
	"round": numericFunc("round", math.Round),
	"floor": numericFunc("floor", math.Floor),
}

// RegisterScalar adds (or overwrites) a scalar function available to generic
// evaluation. Mirrors the handler registry policy: last write wins.
func RegisterScalar(name string, fn ScalarFunc) {
	scalarMu.Lock()
	defer scalarMu.Unlock()
	scalarFuncs[name] = fn
}

func lookupScalar(name string) (ScalarFunc, bool) {
	scalarMu.RLock()
	defer scalarMu.RUnlock()
	fn, ok := scalarFuncs[name]
	return fn, ok
}

func numericFunc(name string, fn func(float64) float64) ScalarFunc {
	return func(args []interface{}) (interface{}, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s expects 1 argument, got %d", name, len(args))
		}
		if args[0] == nil {
			return nil, nil
		}
		v, ok := asFloat(args[0])
		if !ok {
			return nil, fmt.Errorf("%s expects a numeric argument, got %T", name, args[0])
		}
		return fn(v), nil
	}
}

func asFloat(v interface{}) (float64, bool) {
	switch x := v.(type) {
	case int64:
		return float64(x), true
	case float64:
		return x, true
	default:
		return 0, false
	}
}

// evalScalar evaluates a residual expression against one group's environment.
func evalScalar(node expr.Node, env Env) (interface{}, error) {
	switch n := node.(type) {
	case *expr.Literal:
		return n.Value, nil

	case *expr.Symbol:
		v, ok := env[n.Name]
		if !ok {
			return nil, fmt.Errorf("symbol %q is not defined in aggregate context", n.Name)
		}
		return v, nil

	case *expr.Binary:
		left, err := evalScalar(n.Left, env)
		if err != nil {
			return nil, err
		}
		right, err := evalScalar(n.Right, env)
		if err != nil {
			return nil, err
		}
		return applyBinary(n.Operator, left, right)

	case *expr.Call:
		name, ok := n.FuncName()
		if !ok {
			return nil, fmt.Errorf("cannot call computed expression %s", n.Func.String())
		}
		fn, ok := lookupScalar(name)
		if !ok {
			return nil, fmt.Errorf("unknown function %q", name)
		}
		args := make([]interface{}, len(n.Args))
		for i, argNode := range n.Args {
			arg, err := evalScalar(argNode, env)
			if err != nil {
				return nil, err
			}
			args[i] = arg
		}
		return fn(args)

	default:
		return nil, fmt.Errorf("unsupported expression node %T", node)
	}
}

// applyBinary implements + - * / with numeric promotion. Integer operands
// stay integer except for division, which always produces a float. A null
// operand makes the whole result null.
func applyBinary(op string, left, right interface{}) (interface{}, error) {
	if left == nil || right == nil {
		return nil, nil
	}

	li, lInt := left.(int64)
	ri, rInt := right.(int64)
	if lInt && rInt && op != "/" {
		switch op {
		case "+":
			return li + ri, nil
		case "-":
			return li - ri, nil
		case "*":
			return li * ri, nil
		}
	}

	lf, lok := asFloat(left)
	rf, rok := asFloat(right)
	if !lok || !rok {
		return nil, fmt.Errorf("operator %q requires numeric operands, got %T and %T", op, left, right)
	}

	switch op {
	case "+":
		return lf + rf, nil
	case "-":
		return lf - rf, nil
	case "*":
		return lf * rf, nil
	case "/":
		// IEEE semantics: x/0 is Inf or NaN, never a runtime error.
		return lf / rf, nil
	default:
		return nil, fmt.Errorf("unsupported operator %q", op)
	}
}
