package evaluator

import (
	"fmt"

	"github.com/leengari/hybrideval/internal/accel"
	"github.com/leengari/hybrideval/internal/expr"
	"github.com/leengari/hybrideval/internal/table"
)

// Hybrid evaluation: intercept known function-call shapes, compute them on
// the accelerated path, substitute the results back into the expression,
// and hand the residual to generic evaluation.

// EvalGrouped evaluates node once per group, producing one value per group
// in group order.
func (s *Session) EvalGrouped(node expr.Node) (*table.Column, error) {
	if s.grouping == nil {
		return nil, fmt.Errorf("session has no grouping; call GroupBy first")
	}

	// Fast path: the whole expression is one accelerable call.
	if call, ok := node.(*expr.Call); ok {
		s.notify(Event{Type: EventDispatchStart, Data: call.String()})
		if result, matched := s.dispatch(call); matched {
			s.notify(Event{Type: EventHandlerMatch, Data: call.String()})
			return result.ProcessGrouped(s.grouping)
		}
		s.notify(Event{Type: EventNoMatch, Data: call.String()})
	}

	// Substitution pass: accelerate matching subexpressions, bind their
	// grouped values to generated symbols and keep the residual structure.
	bound := make(map[string]*table.Column)
	residual, err := rewrite(node, func(call *expr.Call) (expr.Node, error) {
		result, matched := s.dispatch(call)
		if !matched {
			return nil, nil
		}
		col, err := result.ProcessGrouped(s.grouping)
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("$%d", len(bound)+1)
		bound[name] = col
		s.notify(Event{Type: EventSubstitute, Data: call.String()})
		return &expr.Symbol{Name: name}, nil
	})
	if err != nil {
		return nil, err
	}

	// Generic evaluation of the residual, once per group, with the
	// substituted values in scope.
	numGroups := s.grouping.NumGroups()
	values := make([]interface{}, numGroups)
	env := make(Env, len(bound))
	for i := 0; i < numGroups; i++ {
		for name, col := range bound {
			env[name] = col.Value(i)
		}
		v, err := evalScalar(residual, env)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	return table.FromValues(node.String(), values)
}

// EvalTable evaluates node once over the whole ungrouped table.
func (s *Session) EvalTable(node expr.Node) (interface{}, error) {
	if call, ok := node.(*expr.Call); ok {
		s.notify(Event{Type: EventDispatchStart, Data: call.String()})
		if result, matched := s.dispatch(call); matched {
			s.notify(Event{Type: EventHandlerMatch, Data: call.String()})
			return result.ProcessTable(s.tbl)
		}
		s.notify(Event{Type: EventNoMatch, Data: call.String()})
	}

	env := make(Env)
	residual, err := rewrite(node, func(call *expr.Call) (expr.Node, error) {
		result, matched := s.dispatch(call)
		if !matched {
			return nil, nil
		}
		v, err := result.ProcessTable(s.tbl)
		if err != nil {
			return nil, err
		}
		name := fmt.Sprintf("$%d", len(env)+1)
		env[name] = v
		s.notify(Event{Type: EventSubstitute, Data: call.String()})
		return &expr.Symbol{Name: name}, nil
	})
	if err != nil {
		return nil, err
	}

	return evalScalar(residual, env)
}

// dispatch asks the registry for an accelerated result and applies the
// session's parallelism settings to it.
func (s *Session) dispatch(call *expr.Call) (accel.Result, bool) {
	result, ok := s.registry.GetHandler(call, s.resolver)
	if !ok {
		return nil, false
	}
	if s.config.Parallel {
		if pr, isParallel := result.(accel.ParallelResult); isParallel {
			pr.SetMaxParallel(s.config.MaxWorkers)
		}
	}
	return result, true
}

// rewrite walks an expression top-down. accelerate returns the replacement
// node for a matched call, or nil for NoMatch. Matching is greedy and local:
// a matched call's internal structure is not inspected further.
func rewrite(node expr.Node, accelerate func(*expr.Call) (expr.Node, error)) (expr.Node, error) {
	switch n := node.(type) {
	case *expr.Call:
		replacement, err := accelerate(n)
		if err != nil {
			return nil, err
		}
		if replacement != nil {
			return replacement, nil
		}
		args := make([]expr.Node, len(n.Args))
		for i, arg := range n.Args {
			args[i], err = rewrite(arg, accelerate)
			if err != nil {
				return nil, err
			}
		}
		return &expr.Call{Func: n.Func, Args: args}, nil

	case *expr.Binary:
		left, err := rewrite(n.Left, accelerate)
		if err != nil {
			return nil, err
		}
		right, err := rewrite(n.Right, accelerate)
		if err != nil {
			return nil, err
		}
		return &expr.Binary{Left: left, Operator: n.Operator, Right: right}, nil

	default:
		return node, nil
	}
}
