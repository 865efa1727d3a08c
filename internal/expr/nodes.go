package expr

import (
	"bytes"
	"fmt"
)

// Node is the base interface for all expression nodes
type Node interface {
	String() string
	exprNode()
}

// Symbol references a variable or function by name
type Symbol struct {
	Name string
}

func (s *Symbol) exprNode()      {}
func (s *Symbol) String() string { return s.Name }

// Literal is a fixed scalar value (int64, float64, string or bool)
type Literal struct {
	Value interface{}
}

func (l *Literal) exprNode() {}
func (l *Literal) String() string {
	if s, ok := l.Value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", l.Value)
}

// Call is a function applied to an ordered argument list. The function
// position is itself a node: it is usually a Symbol, but may be any
// expression, in which case no handler dispatch applies.
type Call struct {
	Func Node
	Args []Node
}

func (c *Call) exprNode() {}
func (c *Call) String() string {
	var out bytes.Buffer
	out.WriteString(c.Func.String())
	out.WriteString("(")
	for i, arg := range c.Args {
		out.WriteString(arg.String())
		if i < len(c.Args)-1 {
			out.WriteString(", ")
		}
	}
	out.WriteString(")")
	return out.String()
}

// FuncName returns the called function's name when the function position is
// a plain Symbol. Calls through computed expressions return false and are
// never dispatched to handlers.
func (c *Call) FuncName() (string, bool) {
	sym, ok := c.Func.(*Symbol)
	if !ok {
		return "", false
	}
	return sym.Name, true
}

// Binary applies an infix operator: Left Operator Right (e.g. sum(x) / n())
type Binary struct {
	Left     Node
	Operator string
	Right    Node
}

func (b *Binary) exprNode() {}
func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left.String(), b.Operator, b.Right.String())
}
