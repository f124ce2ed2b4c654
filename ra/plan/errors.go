package plan

import errors "gopkg.in/src-d/go-errors.v1"

var (
	// ErrNilChild is returned by Check when a node's child pointer is nil.
	ErrNilChild = errors.NewKind("plan: node has a nil child")

	// ErrSchemaMismatch is returned by Check on a set operator (Union,
	// Intersect, Difference) whose operands' schemas are not
	// union-compatible, and on a Division whose right schema is not a
	// subset of its left.
	ErrSchemaMismatch = errors.NewKind("%s: operand schemas are not compatible: %v vs %v")

	// ErrUnresolvedExpression is returned by Check when a node's output
	// depends on an expression whose type has not been resolved.
	ErrUnresolvedExpression = errors.NewKind("unresolved expression in %v")
)
