package plan

import (
	"github.com/relq/relq/catalog"
	"github.com/relq/relq/ra"
)

// Relation is the leaf RA node: a catalog lookup result, already copied
// defensively so the RA tree owns an independent snapshot of its schema
// and rows.
type Relation struct {
	ra.NodeMeta
	handle *catalog.Relation
}

// NewRelation wraps an already-copied catalog handle as a tree leaf.
func NewRelation(handle *catalog.Relation) *Relation {
	return &Relation{handle: handle}
}

// Handle returns the underlying catalog relation, e.g. for raeval to read
// inline rows from.
func (r *Relation) Handle() *catalog.Relation { return r.handle }

// Name is the relation's catalog name.
func (r *Relation) Name() string { return r.handle.Name() }

// Schema implements ra.Node.
func (r *Relation) Schema() ra.Schema { return r.handle.Schema() }

// Children implements ra.Node.
func (r *Relation) Children() []ra.Node { return nil }

// Check implements ra.Node.
func (r *Relation) Check() error {
	if r.handle == nil {
		return ErrNilChild.New()
	}
	return nil
}

func (r *Relation) String() string {
	p := ra.NewTreePrinter()
	p.WriteNode("Relation(%s)", r.handle.Name())
	return p.String()
}
