package plan

import (
	"strings"

	"github.com/relq/relq/ra"
)

// SortField pairs a sort key expression with its direction.
type SortField struct {
	Column    ra.Expression
	Ascending bool
}

func (f SortField) String() string {
	if f.Ascending {
		return f.Column.String() + " asc"
	}
	return f.Column.String() + " desc"
}

// OrderBy sorts the child's rows by Fields, in order. Under pure set
// semantics order is not observable in a query's *result*, so it is
// carried as a thin pass-through node, kept for round-tripping a SQL
// ORDER BY.
type OrderBy struct {
	ra.UnaryNode
	Fields []SortField
}

// NewOrderBy sorts child by fields.
func NewOrderBy(child ra.Node, fields []SortField) *OrderBy {
	o := &OrderBy{Fields: fields}
	o.Child = child
	return o
}

// Schema implements ra.Node — sorting does not change the schema.
func (o *OrderBy) Schema() ra.Schema { return o.Child.Schema() }

// Check implements ra.Node.
func (o *OrderBy) Check() error {
	return checkChild(o.Child)
}

func (o *OrderBy) String() string {
	parts := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		parts[i] = f.String()
	}
	p := ra.NewTreePrinter()
	p.WriteNode("OrderBy(%s)", strings.Join(parts, ", "))
	p.WriteChildren(o.Child.String())
	return p.String()
}
