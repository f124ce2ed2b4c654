package plan

import (
	"github.com/relq/relq/ra"
)

// setOp is embedded by the three union-compatible set operators.
type setOp struct {
	ra.BinaryNode
}

func (s *setOp) check(name string) error {
	if err := checkChildren(s.Left, s.Right); err != nil {
		return err
	}
	ls, rs := s.Left.Schema(), s.Right.Schema()
	if !ls.UnionCompatible(rs) {
		return ErrSchemaMismatch.New(name, ls, rs)
	}
	return nil
}

// Union returns every row present in either operand, duplicates removed.
// TRC works under set semantics, so duplicate removal is not optional
// here the way it is for SQL's UNION ALL, which this node vocabulary has
// no node for.
type Union struct{ setOp }

// NewUnion creates the union of left and right.
func NewUnion(left, right ra.Node) *Union {
	u := &Union{}
	u.Left, u.Right = left, right
	return u
}

// Schema implements ra.Node — a set operator's schema is its left
// operand's, by convention (the operands are union-compatible, so either
// would do).
func (u *Union) Schema() ra.Schema { return u.Left.Schema() }

// Check implements ra.Node.
func (u *Union) Check() error { return u.check("Union") }

func (u *Union) String() string {
	p := ra.NewTreePrinter()
	p.WriteNode("Union")
	p.WriteChildren(u.Left.String(), u.Right.String())
	return p.String()
}

// Intersect returns every row present in both operands.
type Intersect struct{ setOp }

// NewIntersect creates the intersection of left and right.
func NewIntersect(left, right ra.Node) *Intersect {
	i := &Intersect{}
	i.Left, i.Right = left, right
	return i
}

// Schema implements ra.Node.
func (i *Intersect) Schema() ra.Schema { return i.Left.Schema() }

// Check implements ra.Node.
func (i *Intersect) Check() error { return i.check("Intersect") }

func (i *Intersect) String() string {
	p := ra.NewTreePrinter()
	p.WriteNode("Intersect")
	p.WriteChildren(i.Left.String(), i.Right.String())
	return p.String()
}

// Difference returns every row of left that is not also in right
// (traditionally left - right, or left \ right).
type Difference struct{ setOp }

// NewDifference creates the difference left minus right.
func NewDifference(left, right ra.Node) *Difference {
	d := &Difference{}
	d.Left, d.Right = left, right
	return d
}

// Schema implements ra.Node.
func (d *Difference) Schema() ra.Schema { return d.Left.Schema() }

// Check implements ra.Node.
func (d *Difference) Check() error { return d.check("Difference") }

func (d *Difference) String() string {
	p := ra.NewTreePrinter()
	p.WriteNode("Difference")
	p.WriteChildren(d.Left.String(), d.Right.String())
	return p.String()
}

// Division returns every tuple t of left's non-shared attributes such
// that, for every row of right, t paired with that row's attributes
// appears in left — the relational-algebra ÷ operator, the dual of the
// "for all" quantifier. The TRC translator's ∀ rewrite never needs to
// emit it directly (it goes through ¬∃¬ instead); the RA front end does.
type Division struct {
	ra.BinaryNode
}

// NewDivision creates the division of left by right.
func NewDivision(left, right ra.Node) *Division {
	d := &Division{}
	d.Left, d.Right = left, right
	return d
}

// Schema implements ra.Node: the attributes of left not present in right.
func (d *Division) Schema() ra.Schema {
	rs := d.Right.Schema()
	var out ra.Schema
	for _, c := range d.Left.Schema() {
		if !rs.Contains(c.Name, c.Source) {
			out = append(out, c)
		}
	}
	return out
}

// Check implements ra.Node: right's schema must be a subset of left's.
func (d *Division) Check() error {
	if err := checkChildren(d.Left, d.Right); err != nil {
		return err
	}
	ls := d.Left.Schema()
	for _, c := range d.Right.Schema() {
		if !ls.Contains(c.Name, c.Source) {
			return ErrSchemaMismatch.New("Division", ls, d.Right.Schema())
		}
	}
	return nil
}

func (d *Division) String() string {
	p := ra.NewTreePrinter()
	p.WriteNode("Division")
	p.WriteChildren(d.Left.String(), d.Right.String())
	return p.String()
}
