package ra

import (
	"fmt"

	errors "gopkg.in/src-d/go-errors.v1"
)

// ErrInvalidChildrenNumber is returned by a node's WithChildren-style
// constructor helper when called with the wrong arity.
var ErrInvalidChildrenNumber = errors.NewKind("%T: invalid children number, got %d, expected %d")

// CodeRegion is the byte span of the AST node an RA node was derived from,
// copied onto every RA node the translator builds from it, so a caller can
// point an editor at the offending query text.
type CodeRegion struct {
	StartOffset int
	EndOffset   int
	Text        string
}

// String renders the span for error messages and log lines.
func (r CodeRegion) String() string {
	if r == (CodeRegion{}) {
		return "unknown position"
	}
	if r.Text == "" {
		return fmt.Sprintf("offsets %d-%d", r.StartOffset, r.EndOffset)
	}
	return fmt.Sprintf("offsets %d-%d (%q)", r.StartOffset, r.EndOffset, r.Text)
}

// Warning is a non-fatal diagnostic attached to a node via AddWarning.
// The TRC translator never raises one; the SQL and RA-AST front ends do
// (non-DISTINCT SELECT, oversized cross join).
type Warning struct {
	Message string
	Region  CodeRegion
}

// NodeMeta carries the code-region tag, the "was parenthesized in source"
// round-tripping flag, and the accumulated warnings every RA node exposes.
// Concrete node types embed it rather than implementing Annotatable by hand.
type NodeMeta struct {
	region   CodeRegion
	paren    bool
	warnings []Warning
}

// Region returns the code-region tag attached to this node, if any.
func (m *NodeMeta) Region() CodeRegion { return m.region }

// SetRegion attaches a code-region tag, typically copied from the source
// AST node this RA node was derived from.
func (m *NodeMeta) SetRegion(r CodeRegion) { m.region = r }

// Parenthesized reports whether the source wrapped this node in parens.
func (m *NodeMeta) Parenthesized() bool { return m.paren }

// SetParenthesized records that the source wrapped this node in parens.
func (m *NodeMeta) SetParenthesized(p bool) { m.paren = p }

// AddWarning records a non-fatal diagnostic against this node.
func (m *NodeMeta) AddWarning(message string, region CodeRegion) {
	m.warnings = append(m.warnings, Warning{Message: message, Region: region})
}

// Warnings returns the diagnostics recorded so far.
func (m *NodeMeta) Warnings() []Warning { return m.warnings }

// Annotatable is implemented by every Node via an embedded NodeMeta.
type Annotatable interface {
	Region() CodeRegion
	SetRegion(CodeRegion)
	Parenthesized() bool
	SetParenthesized(bool)
	AddWarning(message string, region CodeRegion)
	Warnings() []Warning
}

// Node is one operator of the relational-algebra tree: a leaf Relation, a
// unary operator over one child, or a binary operator over two.
type Node interface {
	Annotatable
	// Schema is this node's output schema. Only guaranteed fully resolved
	// once Check has returned nil.
	Schema() Schema
	// Children returns this node's operands, nil for a leaf.
	Children() []Node
	// Check validates this node (and, transitively, its children) against
	// the schema-compatibility rules of its operator kind.
	Check() error
	String() string
}

// UnaryNode is embedded by every operator with exactly one child.
type UnaryNode struct {
	NodeMeta
	Child Node
}

// Children implements Node.
func (n *UnaryNode) Children() []Node { return []Node{n.Child} }

// BinaryNode is embedded by every operator with exactly two children.
type BinaryNode struct {
	NodeMeta
	Left  Node
	Right Node
}

// Children implements Node.
func (n *BinaryNode) Children() []Node { return []Node{n.Left, n.Right} }

// IsLeaf reports whether node has no children.
func IsLeaf(node Node) bool { return len(node.Children()) == 0 }

// Expression is a value-expression tree: a ColumnValue, a Constant, or an
// Operator applied to argument expressions. Shared by all three front ends.
type Expression interface {
	// Type is the expression's static type tag; nil ("null") only ever
	// legal for an unresolved ColumnValue.
	Type() Type
	Children() []Expression
	String() string
}
