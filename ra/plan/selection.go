package plan

import (
	"github.com/relq/relq/ra"
)

// Selection keeps only the child's rows for which predicate evaluates
// true, traditionally written σ in relational algebra.
type Selection struct {
	ra.UnaryNode
	Predicate ra.Expression
}

// NewSelection creates a selection of child restricted by predicate.
func NewSelection(child ra.Node, predicate ra.Expression) *Selection {
	s := &Selection{Predicate: predicate}
	s.Child = child
	return s
}

// Schema implements ra.Node — a selection never changes its child's schema.
func (s *Selection) Schema() ra.Schema { return s.Child.Schema() }

// Check implements ra.Node.
func (s *Selection) Check() error {
	if err := checkChild(s.Child); err != nil {
		return err
	}
	if s.Predicate == nil || s.Predicate.Type() != ra.BooleanType {
		return ErrUnresolvedExpression.New(s.Predicate)
	}
	return nil
}

func (s *Selection) String() string {
	p := ra.NewTreePrinter()
	p.WriteNode("Selection(%s)", s.Predicate)
	p.WriteChildren(s.Child.String())
	return p.String()
}
