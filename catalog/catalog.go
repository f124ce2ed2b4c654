// Package catalog is the read-only mapping from relation name to a
// copyable relation handle that the translator looks up as it binds
// tuple variables and table references.
package catalog

import (
	errors "gopkg.in/src-d/go-errors.v1"

	"github.com/relq/relq/ra"
)

// ErrRelationNotFound is returned by Catalog.Relation when name is absent.
var ErrRelationNotFound = errors.NewKind("relation not found: %s")

// Relation is an immutable handle identifying a relation in the catalog:
// a schema and, for test fixtures, an inline row set.
type Relation struct {
	name   string
	schema ra.Schema
	rows   []ra.Row
}

// NewRelation returns a relation handle with the given name, schema and
// (optionally empty) inline rows.
func NewRelation(name string, schema ra.Schema, rows []ra.Row) *Relation {
	return &Relation{name: name, schema: schema, rows: rows}
}

// Name is the relation's catalog name.
func (r *Relation) Name() string { return r.name }

// Schema is the relation's column list.
func (r *Relation) Schema() ra.Schema { return r.schema }

// Rows returns the relation's inline tuples, if any were loaded as test
// fixtures. Evaluation (raeval) is the only consumer; the translator
// itself never reads rows directly.
func (r *Relation) Rows() []ra.Row { return r.rows }

// Copy returns a fresh, independently-owned handle with the same schema
// and rows, safe to embed as a leaf of an RA tree: mutating the catalog
// after Copy does not affect the copy.
func (r *Relation) Copy() *Relation {
	schema := make(ra.Schema, len(r.schema))
	for i, c := range r.schema {
		cc := *c
		schema[i] = &cc
	}

	rows := make([]ra.Row, len(r.rows))
	for i, row := range r.rows {
		rows[i] = row.Copy()
	}

	return &Relation{name: r.name, schema: schema, rows: rows}
}

// Catalog is the read-only mapping translators consult to resolve a
// relation name, e.g. an R(t) binding or a SQL FROM-clause table.
type Catalog interface {
	// Relation returns the named relation's handle, or ErrRelationNotFound.
	Relation(name string) (*Relation, error)
}

// MapCatalog is the simplest Catalog: a fixed name-to-relation map,
// suitable for test fixtures and examples.
type MapCatalog map[string]*Relation

// Relation implements Catalog.
func (c MapCatalog) Relation(name string) (*Relation, error) {
	r, ok := c[name]
	if !ok {
		return nil, ErrRelationNotFound.New(name)
	}
	return r, nil
}
