package ra

// Row is a tuple of values, positional against a Schema.
type Row []interface{}

// NewRow creates a row from the given values.
func NewRow(values ...interface{}) Row {
	row := make(Row, len(values))
	copy(row, values)
	return row
}

// Copy returns an independent copy of the row.
func (r Row) Copy() Row {
	return NewRow(r...)
}

// Equals checks whether two rows are equal under the given schema's
// column-wise comparison.
func (r Row) Equals(other Row, schema Schema) bool {
	if len(r) != len(other) || len(r) != len(schema) {
		return false
	}

	for i, v := range r {
		if schema[i].Type.Compare(v, other[i]) != 0 {
			return false
		}
	}

	return true
}

// Column is a single qualified column in a Schema.
type Column struct {
	// Name is the column's own name.
	Name string
	// Source is the name of the relation (or alias) this column is
	// qualified by. Empty when the column has not yet been qualified.
	Source string
	// Type is the column's declared type. The zero Type denotes "unknown" —
	// only ever valid on a ColumnValue expression, never on a materialized
	// relation's schema.
	Type Type
	// Nullable is true if the column may hold NULL, e.g. the non-preserved
	// side of an outer join.
	Nullable bool
}

// QualifiedName returns "source.name", or just "name" if unqualified.
func (c *Column) QualifiedName() string {
	if c.Source == "" {
		return c.Name
	}
	return c.Source + "." + c.Name
}

// Equals reports whether two columns describe the same attribute.
func (c *Column) Equals(other *Column) bool {
	return c.Name == other.Name &&
		c.Source == other.Source &&
		c.Nullable == other.Nullable &&
		sameType(c.Type, other.Type)
}

// Schema is the ordered list of columns produced by a relation or RA node.
type Schema []*Column

// IndexOf returns the position of the named column (optionally qualified
// by source) or -1 if it is not present.
func (s Schema) IndexOf(name, source string) int {
	for i, c := range s {
		if c.Name == name && (source == "" || c.Source == source) {
			return i
		}
	}
	return -1
}

// Contains reports whether the schema has a column with the given name
// (and, if non-empty, source).
func (s Schema) Contains(name, source string) bool {
	return s.IndexOf(name, source) >= 0
}

// Equals reports whether two schemas list the same columns in the same order.
func (s Schema) Equals(other Schema) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if !s[i].Equals(other[i]) {
			return false
		}
	}
	return true
}

// UnionCompatible reports whether two schemas have the same arity and
// pairwise-compatible (not necessarily identically-named) column types,
// as Union/Intersect/Difference require of their operands. SemiJoin and
// AntiJoin do not check it.
func (s Schema) UnionCompatible(other Schema) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if !sameType(s[i].Type, other[i].Type) {
			return false
		}
	}
	return true
}

// Rename returns a copy of the schema with columns renamed per mapping
// (old name -> new name); columns absent from mapping are left untouched.
func (s Schema) Rename(mapping map[string]string) Schema {
	out := make(Schema, len(s))
	for i, c := range s {
		nc := *c
		if newName, ok := mapping[c.Name]; ok {
			nc.Name = newName
		}
		out[i] = &nc
	}
	return out
}

// WithSource returns a copy of the schema with every column's Source set
// to alias, as produced by RenameRelation.
func (s Schema) WithSource(alias string) Schema {
	out := make(Schema, len(s))
	for i, c := range s {
		nc := *c
		nc.Source = alias
		out[i] = &nc
	}
	return out
}
