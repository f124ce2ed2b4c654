package plan

import (
	"strings"

	"github.com/relq/relq/ra"
	"github.com/relq/relq/ra/expression"
)

// GroupBy groups the child's rows by GroupCols and computes Aggregates
// over each group. TRC works under set semantics with no aggregation,
// and the SQL front end rejects GROUP BY/HAVING, so GroupBy is only ever
// built by the RA-AST front end (rafrontend).
type GroupBy struct {
	ra.UnaryNode
	GroupCols  []ra.Expression
	Aggregates []ra.Expression
}

// NewGroupBy groups child by groupCols, selecting aggregates per group.
func NewGroupBy(child ra.Node, groupCols, aggregates []ra.Expression) *GroupBy {
	g := &GroupBy{GroupCols: groupCols, Aggregates: aggregates}
	g.Child = child
	return g
}

// Schema implements ra.Node: the GroupBy's output is its Aggregates
// list.
func (g *GroupBy) Schema() ra.Schema {
	schema := make(ra.Schema, len(g.Aggregates))
	for i, e := range g.Aggregates {
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
func (g *GroupBy) Check() error {
	if err := checkChild(g.Child); err != nil {
		return err
	}
	if !expression.ExpressionsResolved(g.Aggregates...) {
		return ErrUnresolvedExpression.New(g.Aggregates)
	}
	return nil
}

func (g *GroupBy) String() string {
	names := make([]string, len(g.Aggregates))
	for i, e := range g.Aggregates {
		names[i] = e.String()
	}
	groups := make([]string, len(g.GroupCols))
	for i, e := range g.GroupCols {
		groups[i] = e.String()
	}
	p := ra.NewTreePrinter()
	p.WriteNode("GroupBy(%s; group by %s)", strings.Join(names, ", "), strings.Join(groups, ", "))
	p.WriteChildren(g.Child.String())
	return p.String()
}
