package plan

import (
	"github.com/relq/relq/ra"
)

// RenameRelation re-qualifies every column of child under a new alias,
// the "AS" of a SQL table reference or a TRC tuple-variable binding's own
// relation.
type RenameRelation struct {
	ra.UnaryNode
	Alias string
}

// NewRenameRelation aliases child as alias.
func NewRenameRelation(child ra.Node, alias string) *RenameRelation {
	r := &RenameRelation{Alias: alias}
	r.Child = child
	return r
}

// Schema implements ra.Node.
func (r *RenameRelation) Schema() ra.Schema {
	return r.Child.Schema().WithSource(r.Alias)
}

// Check implements ra.Node.
func (r *RenameRelation) Check() error {
	return checkChild(r.Child)
}

func (r *RenameRelation) String() string {
	p := ra.NewTreePrinter()
	p.WriteNode("RenameRelation(%s)", r.Alias)
	p.WriteChildren(r.Child.String())
	return p.String()
}

// RenameColumns renames a subset of child's columns per Mapping (old name
// -> new name); columns absent from Mapping pass through unchanged.
type RenameColumns struct {
	ra.UnaryNode
	Mapping map[string]string
}

// NewRenameColumns renames child's columns per mapping.
func NewRenameColumns(child ra.Node, mapping map[string]string) *RenameColumns {
	r := &RenameColumns{Mapping: mapping}
	r.Child = child
	return r
}

// Schema implements ra.Node.
func (r *RenameColumns) Schema() ra.Schema {
	return r.Child.Schema().Rename(r.Mapping)
}

// Check implements ra.Node.
func (r *RenameColumns) Check() error {
	return checkChild(r.Child)
}

func (r *RenameColumns) String() string {
	p := ra.NewTreePrinter()
	p.WriteNode("RenameColumns(%v)", r.Mapping)
	p.WriteChildren(r.Child.String())
	return p.String()
}
