package plan

import (
	"github.com/relq/relq/ra"
)

// CrossJoin is the unrestricted Cartesian product of two operands.
type CrossJoin struct {
	ra.BinaryNode
}

// NewCrossJoin creates a cross join of left and right.
func NewCrossJoin(left, right ra.Node) *CrossJoin {
	j := &CrossJoin{}
	j.Left, j.Right = left, right
	return j
}

// Schema implements ra.Node.
func (j *CrossJoin) Schema() ra.Schema {
	return append(append(ra.Schema{}, j.Left.Schema()...), j.Right.Schema()...)
}

// Check implements ra.Node.
func (j *CrossJoin) Check() error { return checkChildren(j.Left, j.Right) }

func (j *CrossJoin) String() string {
	p := ra.NewTreePrinter()
	p.WriteNode("CrossJoin")
	p.WriteChildren(j.Left.String(), j.Right.String())
	return p.String()
}

// thetaJoin is embedded by every binary join parametric on a JoinCondition.
type thetaJoin struct {
	ra.BinaryNode
	Cond ra.JoinCondition
}

func (j *thetaJoin) Check() error { return checkChildren(j.Left, j.Right) }

func (j *thetaJoin) schema() ra.Schema {
	return append(append(ra.Schema{}, j.Left.Schema()...), j.Right.Schema()...)
}

// InnerJoin keeps only the combinations of left and right rows satisfying
// Cond.
type InnerJoin struct{ thetaJoin }

// NewInnerJoin creates an inner join of left and right restricted by cond.
func NewInnerJoin(left, right ra.Node, cond ra.JoinCondition) *InnerJoin {
	j := &InnerJoin{}
	j.Left, j.Right, j.Cond = left, right, cond
	return j
}

// Schema implements ra.Node.
func (j *InnerJoin) Schema() ra.Schema { return j.schema() }

func (j *InnerJoin) String() string {
	p := ra.NewTreePrinter()
	p.WriteNode("InnerJoin(%v)", j.Cond)
	p.WriteChildren(j.Left.String(), j.Right.String())
	return p.String()
}

// LeftOuterJoin keeps every left row, padding unmatched ones with nulls
// on the right.
type LeftOuterJoin struct{ thetaJoin }

// NewLeftOuterJoin creates a left outer join of left and right.
func NewLeftOuterJoin(left, right ra.Node, cond ra.JoinCondition) *LeftOuterJoin {
	j := &LeftOuterJoin{}
	j.Left, j.Right, j.Cond = left, right, cond
	return j
}

// Schema implements ra.Node: right-side columns become nullable.
func (j *LeftOuterJoin) Schema() ra.Schema {
	out := j.schema()
	for _, c := range out[len(j.Left.Schema()):] {
		c.Nullable = true
	}
	return out
}

func (j *LeftOuterJoin) String() string {
	p := ra.NewTreePrinter()
	p.WriteNode("LeftOuterJoin(%v)", j.Cond)
	p.WriteChildren(j.Left.String(), j.Right.String())
	return p.String()
}

// RightOuterJoin keeps every right row, padding unmatched ones with
// nulls on the left.
type RightOuterJoin struct{ thetaJoin }

// NewRightOuterJoin creates a right outer join of left and right.
func NewRightOuterJoin(left, right ra.Node, cond ra.JoinCondition) *RightOuterJoin {
	j := &RightOuterJoin{}
	j.Left, j.Right, j.Cond = left, right, cond
	return j
}

// Schema implements ra.Node: left-side columns become nullable.
func (j *RightOuterJoin) Schema() ra.Schema {
	out := j.schema()
	for _, c := range out[:len(j.Left.Schema())] {
		c.Nullable = true
	}
	return out
}

func (j *RightOuterJoin) String() string {
	p := ra.NewTreePrinter()
	p.WriteNode("RightOuterJoin(%v)", j.Cond)
	p.WriteChildren(j.Left.String(), j.Right.String())
	return p.String()
}

// FullOuterJoin keeps every row from both sides, padding unmatched rows
// on either side with nulls.
type FullOuterJoin struct{ thetaJoin }

// NewFullOuterJoin creates a full outer join of left and right.
func NewFullOuterJoin(left, right ra.Node, cond ra.JoinCondition) *FullOuterJoin {
	j := &FullOuterJoin{}
	j.Left, j.Right, j.Cond = left, right, cond
	return j
}

// Schema implements ra.Node: every column becomes nullable.
func (j *FullOuterJoin) Schema() ra.Schema {
	out := j.schema()
	for _, c := range out {
		c.Nullable = true
	}
	return out
}

func (j *FullOuterJoin) String() string {
	p := ra.NewTreePrinter()
	p.WriteNode("FullOuterJoin(%v)", j.Cond)
	p.WriteChildren(j.Left.String(), j.Right.String())
	return p.String()
}

// Side names which operand's schema a SemiJoin preserves.
type Side int

const (
	// LeftSide preserves the left operand's schema (the usual case: every
	// SemiJoin the TRC translator builds keeps base's schema).
	LeftSide Side = iota
	RightSide
)

// SemiJoin returns the rows of the preserved side that have at least one
// natural-join match on the other side, keeping only the preserved side's
// schema.
type SemiJoin struct {
	ra.BinaryNode
	Preserve Side
}

// NewSemiJoin creates a semi join of left and right, keeping preserve's
// schema. The join condition is always the implicit natural join on the
// attributes the two sides have in common; every use in the TRC
// translator relies on exactly that.
func NewSemiJoin(left, right ra.Node, preserve Side) *SemiJoin {
	j := &SemiJoin{Preserve: preserve}
	j.Left, j.Right = left, right
	return j
}

// Schema implements ra.Node.
func (j *SemiJoin) Schema() ra.Schema {
	if j.Preserve == RightSide {
		return j.Right.Schema()
	}
	return j.Left.Schema()
}

// Check implements ra.Node.
func (j *SemiJoin) Check() error { return checkChildren(j.Left, j.Right) }

func (j *SemiJoin) String() string {
	p := ra.NewTreePrinter()
	side := "left"
	if j.Preserve == RightSide {
		side = "right"
	}
	p.WriteNode("SemiJoin(%s)", side)
	p.WriteChildren(j.Left.String(), j.Right.String())
	return p.String()
}

// AntiJoin returns the left-side rows with no match on the right under
// Cond, which unlike SemiJoin's condition is always explicit.
type AntiJoin struct{ thetaJoin }

// NewAntiJoin creates an anti join of left and right restricted by cond.
func NewAntiJoin(left, right ra.Node, cond ra.JoinCondition) *AntiJoin {
	j := &AntiJoin{}
	j.Left, j.Right, j.Cond = left, right, cond
	return j
}

// Schema implements ra.Node — AntiJoin always preserves the left schema.
func (j *AntiJoin) Schema() ra.Schema { return j.Left.Schema() }

func (j *AntiJoin) String() string {
	p := ra.NewTreePrinter()
	p.WriteNode("AntiJoin(%v)", j.Cond)
	p.WriteChildren(j.Left.String(), j.Right.String())
	return p.String()
}
