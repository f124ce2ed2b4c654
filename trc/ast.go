// Package trc implements the reference-environment pre-pass
// and the recursive TRC-to-RA translator. This is the load-bearing
// package of the whole module — the external SQL and RA-AST front ends
// are thin structural walks by comparison.
package trc

import "github.com/relq/relq/ra"

// Node is one variant of the TRC AST union. It is
// modeled as a closed sum type — one Go type per shape — rather than a
// dynamically-dispatched string tag, so the translator's switch over
// concrete types is exhaustive and total.
type Node interface {
	// Region is the code-region tag this AST node carries, copied onto
	// every RA node the translator derives from it.
	Region() ra.CodeRegion
}

type region struct {
	r ra.CodeRegion
}

// Region implements Node.
func (n region) Region() ra.CodeRegion { return n.r }

// SetExpr is the top-level `{ t.p1,…,pk | Φ }` set constructor.
type SetExpr struct {
	region
	Variable    string
	Projections []string
	Formula     Node
}

// NewSetExpr returns a set constructor over variable, projecting
// projections (empty for "no projection, keep base's schema") from formula.
func NewSetExpr(variable string, projections []string, formula Node, r ra.CodeRegion) *SetExpr {
	return &SetExpr{region: region{r}, Variable: variable, Projections: projections, Formula: formula}
}

// RelationPredicate is the `R(v)` atom: binds variable to relation.
type RelationPredicate struct {
	region
	Variable string
	Relation string
}

// NewRelationPredicate returns an R(v) binding atom.
func NewRelationPredicate(variable, relation string, r ra.CodeRegion) *RelationPredicate {
	return &RelationPredicate{region: region{r}, Variable: variable, Relation: relation}
}

// AttrRef is a `v.attribute` reference appearing on either side of a
// Predicate.
type AttrRef struct {
	Variable  string
	Attribute string
}

// Predicate is a comparison `lhs op rhs`, where rhs is either another
// AttrRef or a literal Go scalar value.
type Predicate struct {
	region
	Left     AttrRef
	Operator string
	Right    interface{} // AttrRef or a literal scalar
}

// NewPredicate returns a comparison predicate.
func NewPredicate(left AttrRef, op string, right interface{}, r ra.CodeRegion) *Predicate {
	return &Predicate{region: region{r}, Left: left, Operator: op, Right: right}
}

// Negation is `¬Φ`.
type Negation struct {
	region
	Formula Node
}

// NewNegation returns ¬formula.
func NewNegation(formula Node, r ra.CodeRegion) *Negation {
	return &Negation{region: region{r}, Formula: formula}
}

// Quantifier distinguishes ∃ from ∀.
type Quantifier int

const (
	// Exists is the existential quantifier ∃.
	Exists Quantifier = iota
	// ForAll is the universal quantifier ∀.
	ForAll
)

// QuantifiedExpression is `∃v Φ` or `∀v Φ`.
type QuantifiedExpression struct {
	region
	Quantifier Quantifier
	Variable   string
	Formula    Node
}

// NewQuantifiedExpression returns a quantified formula over variable.
func NewQuantifiedExpression(q Quantifier, variable string, formula Node, r ra.CodeRegion) *QuantifiedExpression {
	return &QuantifiedExpression{region: region{r}, Quantifier: q, Variable: variable, Formula: formula}
}

// LogicalOperator distinguishes the three binary connectives.
type LogicalOperator int

const (
	// And is ∧.
	And LogicalOperator = iota
	// Or is ∨.
	Or
	// Implies is →.
	Implies
)

// LogicalExpression is `Φ op Ψ` for op ∈ {∧, ∨, →}.
type LogicalExpression struct {
	region
	Operator LogicalOperator
	Left     Node
	Right    Node
}

// NewLogicalExpression returns left op right.
func NewLogicalExpression(op LogicalOperator, left, right Node, r ra.CodeRegion) *LogicalExpression {
	return &LogicalExpression{region: region{r}, Operator: op, Left: left, Right: right}
}
