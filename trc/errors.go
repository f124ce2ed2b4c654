package trc

import errors "gopkg.in/src-d/go-errors.v1"

// The terminal, typed error kinds translation can end with. Every one
// carries the offending node's code region so an editor-facing caller
// can highlight the source span, as a %s-formatted region argument
// baked into the message.
var (
	// ErrUnknownRelation is raised when an R(v) binding or an E[v] lookup
	// names a relation absent from the catalog.
	ErrUnknownRelation = errors.NewKind("unknown relation %q at %s")

	// ErrUnboundVariable is raised when a Predicate references a
	// variable with no E[v] binding.
	ErrUnboundVariable = errors.NewKind("unbound variable %q at %s")

	// ErrNullBase is raised when a correlated quantifier or predicate is
	// reached with a nil base, indicating a malformed AST.
	ErrNullBase = errors.NewKind("nil base relation at %s")

	// ErrUnsupportedNode is raised for an AST node outside the grammar.
	ErrUnsupportedNode = errors.NewKind("unsupported node %T at %s")

	// ErrNegatedRelationPredicate is a safety-invariant violation: a
	// RelationPredicate reached rec with negated=true. The three
	// LogicalExpression normalisation rules and the pre-pass should make
	// this unreachable; raised defensively if they somehow didn't.
	ErrNegatedRelationPredicate = errors.NewKind("negation of a relation predicate at %s")

	// ErrDuplicateBinding is raised by the pre-pass when the same tuple
	// variable is bound to two different relations.
	ErrDuplicateBinding = errors.NewKind("variable %q rebound from %q to %q at %s")
)
