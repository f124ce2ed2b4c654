package plan

import (
	"strings"

	"github.com/relq/relq/ra"
	"github.com/relq/relq/ra/expression"
)

// Projection restricts the child's rows to the listed value expressions —
// in the common case a list of bare ColumnValue references (what the TRC
// translator ever builds), but a SQL SELECT list may project arbitrary
// computed expressions too, so Exprs is general.
type Projection struct {
	ra.UnaryNode
	Exprs []ra.Expression
}

// NewProjection creates a projection of exprs over child.
func NewProjection(child ra.Node, exprs []ra.Expression) *Projection {
	p := &Projection{Exprs: exprs}
	p.Child = child
	return p
}

// Schema implements ra.Node.
func (p *Projection) Schema() ra.Schema {
	schema := make(ra.Schema, len(p.Exprs))
	for i, e := range p.Exprs {
		switch v := e.(type) {
		case *expression.ColumnValue:
			schema[i] = &ra.Column{Name: v.Column, Source: v.Alias, Type: v.Type()}
		default:
			schema[i] = &ra.Column{Name: e.String(), Type: e.Type()}
		}
	}
	return schema
}

// Check implements ra.Node.
func (p *Projection) Check() error {
	if err := checkChild(p.Child); err != nil {
		return err
	}
	if !expression.ExpressionsResolved(p.Exprs...) {
		return ErrUnresolvedExpression.New(p.Exprs)
	}
	return nil
}

func (p *Projection) String() string {
	names := make([]string, len(p.Exprs))
	for i, e := range p.Exprs {
		names[i] = e.String()
	}
	tp := ra.NewTreePrinter()
	tp.WriteNode("Projection(%s)", strings.Join(names, ", "))
	tp.WriteChildren(p.Child.String())
	return tp.String()
}
