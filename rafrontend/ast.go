// Package rafrontend is the identity lowering of a native RA AST into
// the shared RA vocabulary. A parser for the RA notation produces this
// package's AST; Translate walks it into ra/plan nodes via the shared
// value-expression lowering and the shared join-condition decoder. Next
// to the TRC translator this path is trivial; it exists so all three
// notations meet in one node vocabulary.
package rafrontend

import "github.com/relq/relq/ra"

// Node is one variant of the RA AST union: a closed sum type, one Go
// type per operator shape, mirroring how the TRC AST is modeled.
type Node interface {
	// Region is the code-region tag this AST node carries, copied onto
	// the RA node it lowers to.
	Region() ra.CodeRegion
}

type meta struct {
	r ra.CodeRegion
	// Paren records that the source wrapped this operator in parentheses,
	// carried through for round-tripping.
	Paren bool
}

// Region implements Node.
func (m meta) Region() ra.CodeRegion { return m.r }

// Relation is a leaf: a catalog lookup by name.
type Relation struct {
	meta
	Name string
}

// NewRelation returns a relation leaf.
func NewRelation(name string, r ra.CodeRegion) *Relation {
	return &Relation{meta: meta{r: r}, Name: name}
}

// Projection is π exprs (child).
type Projection struct {
	meta
	Child Node
	Exprs []Expr
}

// NewProjection returns a projection of exprs over child.
func NewProjection(child Node, exprs []Expr, r ra.CodeRegion) *Projection {
	return &Projection{meta: meta{r: r}, Child: child, Exprs: exprs}
}

// Selection is σ predicate (child).
type Selection struct {
	meta
	Child     Node
	Predicate Expr
}

// NewSelection returns a selection of predicate over child.
func NewSelection(child Node, predicate Expr, r ra.CodeRegion) *Selection {
	return &Selection{meta: meta{r: r}, Child: child, Predicate: predicate}
}

// RenameRelation is ρ alias (child).
type RenameRelation struct {
	meta
	Child Node
	Alias string
}

// NewRenameRelation returns child renamed to alias.
func NewRenameRelation(child Node, alias string, r ra.CodeRegion) *RenameRelation {
	return &RenameRelation{meta: meta{r: r}, Child: child, Alias: alias}
}

// RenameColumns is ρ old→new,… (child).
type RenameColumns struct {
	meta
	Child   Node
	Mapping map[string]string
}

// NewRenameColumns returns child with columns renamed per mapping.
func NewRenameColumns(child Node, mapping map[string]string, r ra.CodeRegion) *RenameColumns {
	return &RenameColumns{meta: meta{r: r}, Child: child, Mapping: mapping}
}

// SortField is one ORDER BY key of an OrderBy node.
type SortField struct {
	Expr      Expr
	Ascending bool
}

// OrderBy is τ fields (child).
type OrderBy struct {
	meta
	Child  Node
	Fields []SortField
}

// NewOrderBy returns child ordered by fields.
func NewOrderBy(child Node, fields []SortField, r ra.CodeRegion) *OrderBy {
	return &OrderBy{meta: meta{r: r}, Child: child, Fields: fields}
}

// GroupBy is γ groupCols; aggregates (child).
type GroupBy struct {
	meta
	Child      Node
	GroupCols  []Expr
	Aggregates []Expr
}

// NewGroupBy returns child grouped by groupCols, selecting aggregates.
func NewGroupBy(child Node, groupCols, aggregates []Expr, r ra.CodeRegion) *GroupBy {
	return &GroupBy{meta: meta{r: r}, Child: child, GroupCols: groupCols, Aggregates: aggregates}
}

// JoinOperator distinguishes the join shapes the RA notation can name.
type JoinOperator int

const (
	// Cross is the Cartesian product ×; it takes no condition.
	Cross JoinOperator = iota
	// Inner is ⋈, natural or theta depending on the condition clause.
	Inner
	// LeftOuter is ⟕.
	LeftOuter
	// RightOuter is ⟖.
	RightOuter
	// FullOuter is ⟗.
	FullOuter
	// SemiLeft is ⋉: left-side tuples with at least one natural match.
	SemiLeft
	// SemiRight is ⋊.
	SemiRight
	// Anti is ▷: left-side tuples with no match under the condition.
	Anti
)

// JoinClause is the optional condition a join carries in the source
// notation, in the raw three-shaped form the decoder normalises:
// a nil *JoinClause means a plain natural join, Columns restricts the
// natural join to those columns, Theta makes it a theta join. At most
// one of Columns/Theta may be set.
type JoinClause struct {
	Columns []string
	Theta   Expr
}

// Join is a binary join of any JoinOperator kind.
type Join struct {
	meta
	Kind      JoinOperator
	Left      Node
	Right     Node
	Condition *JoinClause
}

// NewJoin returns left kind-joined with right under condition (nil for
// natural, and for the condition-less Cross/SemiLeft/SemiRight kinds).
func NewJoin(kind JoinOperator, left, right Node, condition *JoinClause, r ra.CodeRegion) *Join {
	return &Join{meta: meta{r: r}, Kind: kind, Left: left, Right: right, Condition: condition}
}

// SetOperator distinguishes the four set-operator shapes.
type SetOperator int

const (
	// Union is ∪.
	Union SetOperator = iota
	// Intersect is ∩.
	Intersect
	// Difference is −.
	Difference
	// Division is ÷.
	Division
)

// SetOp is a binary set operation over schema-compatible operands.
type SetOp struct {
	meta
	Kind  SetOperator
	Left  Node
	Right Node
}

// NewSetOp returns left kind right.
func NewSetOp(kind SetOperator, left, right Node, r ra.CodeRegion) *SetOp {
	return &SetOp{meta: meta{r: r}, Kind: kind, Left: left, Right: right}
}

// Expr is one variant of the raw value-expression union a parser tags:
// a column reference, a literal, or an operator application. The walk
// lowers these into ra/expression nodes, resolving column types against
// the child operator's schema.
type Expr interface {
	exprNode()
}

// ColumnRef references a column, optionally qualified by relation or alias.
type ColumnRef struct {
	Column   string
	Relation string
}

func (ColumnRef) exprNode() {}

// Literal is a raw scalar literal; its Type tag is inferred from the Go
// value the parser produced.
type Literal struct {
	Value interface{}
}

func (Literal) exprNode() {}

// Apply applies a named operator or function to argument expressions.
type Apply struct {
	Name string
	Args []Expr
}

func (Apply) exprNode() {}
