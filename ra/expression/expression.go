// Package expression implements the RA value-expression vocabulary:
// the target tree every front end's value-expression lowering builds,
// regardless of which notation (TRC attribute reference, SQL expression,
// native RA-AST expression) it started from.
package expression

import (
	"fmt"
	"strings"

	"github.com/relq/relq/ra"
)

// ColumnValue references a column, optionally qualified by the relation
// (or alias) it came from. An unqualified ColumnValue carries a nil Type
// until the translator that built it has resolved which relation binds it.
type ColumnValue struct {
	Column string
	Alias  string
	typ    ra.Type
}

// NewColumnValue returns a resolved column reference.
func NewColumnValue(column, alias string, typ ra.Type) *ColumnValue {
	return &ColumnValue{Column: column, Alias: alias, typ: typ}
}

// Type implements ra.Expression.
func (c *ColumnValue) Type() ra.Type { return c.typ }

// Children implements ra.Expression.
func (c *ColumnValue) Children() []ra.Expression { return nil }

func (c *ColumnValue) String() string {
	if c.Alias == "" {
		return c.Column
	}
	return c.Alias + "." + c.Column
}

// Constant is a literal value already coerced to one of the four scalar
// Types; the "null" type denotes "unknown", and is only ever legal on a
// ColumnValue, never here.
type Constant struct {
	Value interface{}
	typ   ra.Type
}

// NewConstant returns a literal expression node.
func NewConstant(value interface{}, typ ra.Type) *Constant {
	return &Constant{Value: value, typ: typ}
}

// Type implements ra.Expression.
func (c *Constant) Type() ra.Type { return c.typ }

// Children implements ra.Expression.
func (c *Constant) Children() []ra.Expression { return nil }

func (c *Constant) String() string {
	if c.typ == ra.StringType {
		return fmt.Sprintf("%q", c.Value)
	}
	return fmt.Sprintf("%v", c.Value)
}

// Operator applies a named function or infix operator (comparison,
// boolean connective, arithmetic, scalar function call) to its arguments.
type Operator struct {
	Name string
	Args []ra.Expression
	typ  ra.Type
}

// NewOperator returns an operator-application expression node.
func NewOperator(typ ra.Type, name string, args ...ra.Expression) *Operator {
	return &Operator{Name: name, Args: args, typ: typ}
}

// Type implements ra.Expression.
func (o *Operator) Type() ra.Type { return o.typ }

// Children implements ra.Expression.
func (o *Operator) Children() []ra.Expression { return o.Args }

func (o *Operator) String() string {
	switch len(o.Args) {
	case 1:
		return fmt.Sprintf("%s(%s)", o.Name, o.Args[0])
	case 2:
		return fmt.Sprintf("(%s %s %s)", o.Args[0], o.Name, o.Args[1])
	default:
		parts := make([]string, len(o.Args))
		for i, a := range o.Args {
			parts[i] = a.String()
		}
		return fmt.Sprintf("%s(%s)", o.Name, strings.Join(parts, ", "))
	}
}

// Not wraps expr in a boolean negation operator, the idiom
// convertPredicate uses to build the "negated form" of a comparison.
func Not(expr ra.Expression) *Operator {
	return NewOperator(ra.BooleanType, "not", expr)
}

// And combines two boolean expressions with conjunction.
func And(left, right ra.Expression) *Operator {
	return NewOperator(ra.BooleanType, "and", left, right)
}

// Or combines two boolean expressions with disjunction.
func Or(left, right ra.Expression) *Operator {
	return NewOperator(ra.BooleanType, "or", left, right)
}

// Comparison builds a binary comparison operator ("=", "!=", "<", ">",
// "<=", ">=") between two value expressions.
func Comparison(op string, left, right ra.Expression) *Operator {
	return NewOperator(ra.BooleanType, op, left, right)
}

// ExpressionsResolved reports whether every expression in exprs carries a
// resolved (non-nil) type.
func ExpressionsResolved(exprs ...ra.Expression) bool {
	for _, e := range exprs {
		if e.Type() == nil {
			return false
		}
	}
	return true
}
