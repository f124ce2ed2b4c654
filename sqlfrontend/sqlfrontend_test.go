package sqlfrontend

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/src-d/go-vitess.v0/vt/sqlparser"

	"github.com/relq/relq/catalog"
	"github.com/relq/relq/ra"
	"github.com/relq/relq/ra/plan"
	"github.com/relq/relq/raeval"
)

func fixtureCatalog() catalog.MapCatalog {
	r := catalog.NewRelation("R", ra.Schema{
		{Name: "a", Source: "R", Type: ra.NumberType},
		{Name: "b", Source: "R", Type: ra.StringType},
		{Name: "c", Source: "R", Type: ra.StringType},
	}, []ra.Row{
		ra.NewRow(1.0, "a", "d"),
		ra.NewRow(3.0, "c", "c"),
		ra.NewRow(4.0, "d", "f"),
		ra.NewRow(5.0, "d", "b"),
		ra.NewRow(6.0, "e", "f"),
		ra.NewRow(1000.0, "e", "k"),
	})

	s := catalog.NewRelation("S", ra.Schema{
		{Name: "b", Source: "S", Type: ra.StringType},
		{Name: "d", Source: "S", Type: ra.NumberType},
	}, []ra.Row{
		ra.NewRow("a", 100.0),
		ra.NewRow("b", 300.0),
		ra.NewRow("c", 400.0),
		ra.NewRow("d", 200.0),
		ra.NewRow("e", 150.0),
	})

	return catalog.MapCatalog{"R": r, "S": s}
}

func parseSelect(t *testing.T, query string) *sqlparser.Select {
	t.Helper()
	stmt, err := sqlparser.Parse(query)
	require.NoError(t, err)
	sel, ok := stmt.(*sqlparser.Select)
	require.True(t, ok, "expected a SELECT statement")
	return sel
}

func sortedFloats(rows []ra.Row, col int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r[col].(float64)
	}
	sort.Float64s(out)
	return out
}

func TestSelectStarWhere(t *testing.T) {
	cat := fixtureCatalog()
	sel := parseSelect(t, "SELECT * FROM R WHERE a > 3")

	node, err := Translate(sel, cat)
	require.NoError(t, err)
	require.NoError(t, node.Check())

	rows, err := raeval.Eval(node, cat)
	require.NoError(t, err)
	require.Equal(t, []float64{4, 5, 6, 1000}, sortedFloats(rows, 0))
}

func TestSelectProjectionList(t *testing.T) {
	cat := fixtureCatalog()
	sel := parseSelect(t, "SELECT a, b FROM R WHERE a < 5")

	node, err := Translate(sel, cat)
	require.NoError(t, err)
	require.NoError(t, node.Check())
	require.Len(t, node.Schema(), 2)
	require.Equal(t, "a", node.Schema()[0].Name)
	require.Equal(t, "b", node.Schema()[1].Name)

	rows, err := raeval.Eval(node, cat)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 3, 4}, sortedFloats(rows, 0))
}

func TestSelectNonDistinctWarns(t *testing.T) {
	cat := fixtureCatalog()
	sel := parseSelect(t, "SELECT a FROM R")

	node, err := Translate(sel, cat)
	require.NoError(t, err)
	require.NotEmpty(t, node.Warnings())
}

func TestSelectDistinctNoWarning(t *testing.T) {
	cat := fixtureCatalog()
	sel := parseSelect(t, "SELECT DISTINCT a FROM R")

	node, err := Translate(sel, cat)
	require.NoError(t, err)
	require.Empty(t, node.Warnings())
}

func TestSelectInnerJoinOn(t *testing.T) {
	cat := fixtureCatalog()
	sel := parseSelect(t, "SELECT * FROM R JOIN S ON R.b = S.b")

	node, err := Translate(sel, cat)
	require.NoError(t, err)
	require.NoError(t, node.Check())

	// Every R row's b value occurs in S, and S.b is unique, so each R row
	// joins exactly once.
	rows, err := raeval.Eval(node, cat)
	require.NoError(t, err)
	require.Len(t, rows, 6)
}

func TestSelectNaturalJoin(t *testing.T) {
	cat := fixtureCatalog()
	sel := parseSelect(t, "SELECT * FROM R NATURAL JOIN S")

	node, err := Translate(sel, cat)
	require.NoError(t, err)
	require.NoError(t, node.Check())

	rows, err := raeval.Eval(node, cat)
	require.NoError(t, err)
	require.Len(t, rows, 6)
}

func TestSelectOrderByAscDesc(t *testing.T) {
	cat := fixtureCatalog()
	sel := parseSelect(t, "SELECT a FROM R ORDER BY a DESC")

	node, err := Translate(sel, cat)
	require.NoError(t, err)
	require.NoError(t, node.Check())

	ob, ok := node.(*plan.OrderBy)
	require.True(t, ok, "expected the root node to be an OrderBy")
	require.Len(t, ob.Fields, 1)
	require.False(t, ob.Fields[0].Ascending)
}

func TestSelectLimitOffsetToRownum(t *testing.T) {
	cat := fixtureCatalog()
	sel := parseSelect(t, "SELECT a FROM R LIMIT 2 OFFSET 1")

	node, err := Translate(sel, cat)
	require.NoError(t, err)
	require.NoError(t, node.Check())
}

func TestSelectHavingUnsupported(t *testing.T) {
	cat := fixtureCatalog()
	sel := parseSelect(t, "SELECT a FROM R GROUP BY a HAVING a > 3")

	_, err := Translate(sel, cat)
	require.Error(t, err)
}

func TestSelectUnknownTable(t *testing.T) {
	cat := fixtureCatalog()
	sel := parseSelect(t, "SELECT * FROM missing")

	_, err := Translate(sel, cat)
	require.Error(t, err)
}

func TestSelectAliasedTable(t *testing.T) {
	cat := fixtureCatalog()
	sel := parseSelect(t, "SELECT r.a FROM R AS r WHERE r.a > 3")

	node, err := Translate(sel, cat)
	require.NoError(t, err)
	require.NoError(t, node.Check())

	rows, err := raeval.Eval(node, cat)
	require.NoError(t, err)
	require.Equal(t, []float64{4, 5, 6, 1000}, sortedFloats(rows, 0))
}
