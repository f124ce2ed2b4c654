package catalog

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v2"

	"github.com/relq/relq/ra"
)

// fixtureFile is the YAML shape a catalog fixture file is decoded into:
// one entry per relation, each with an ordered column list and, for test
// scenarios, inline tuples.
//
//	R:
//	  columns:
//	    - {name: a, type: number}
//	    - {name: b, type: string}
//	    - {name: c, type: string}
//	  rows:
//	    - [1, a, d]
//	    - [3, c, c]
type fixtureFile map[string]fixtureRelation

type fixtureRelation struct {
	Columns []fixtureColumn `yaml:"columns"`
	Rows    [][]interface{} `yaml:"rows"`
}

type fixtureColumn struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

// LoadFixtures decodes a YAML catalog description into a MapCatalog, the
// way a test or tool seeds the catalog the translator consults.
func LoadFixtures(r io.Reader) (MapCatalog, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	var file fixtureFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode catalog fixtures: %w", err)
	}

	cat := make(MapCatalog, len(file))
	for name, def := range file {
		schema := make(ra.Schema, len(def.Columns))
		for i, c := range def.Columns {
			typ, err := typeByName(c.Type)
			if err != nil {
				return nil, fmt.Errorf("relation %s: %w", name, err)
			}
			schema[i] = &ra.Column{Name: c.Name, Source: name, Type: typ}
		}

		rows := make([]ra.Row, len(def.Rows))
		for i, raw := range def.Rows {
			if len(raw) != len(schema) {
				return nil, fmt.Errorf("relation %s: row %d has %d values, want %d", name, i, len(raw), len(schema))
			}
			row := make(ra.Row, len(raw))
			for j, v := range raw {
				converted, err := schema[j].Type.Convert(v)
				if err != nil {
					return nil, fmt.Errorf("relation %s: row %d column %s: %w", name, i, schema[j].Name, err)
				}
				row[j] = converted
			}
			rows[i] = row
		}

		cat[name] = NewRelation(name, schema, rows)
	}

	return cat, nil
}

func typeByName(name string) (ra.Type, error) {
	switch name {
	case "string":
		return ra.StringType, nil
	case "number":
		return ra.NumberType, nil
	case "boolean":
		return ra.BooleanType, nil
	case "date":
		return ra.DateType, nil
	default:
		return nil, fmt.Errorf("unknown column type %q", name)
	}
}
