package relq_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/src-d/go-vitess.v0/vt/sqlparser"

	"github.com/relq/relq"
	"github.com/relq/relq/catalog"
	"github.com/relq/relq/ra"
	"github.com/relq/relq/raeval"
	"github.com/relq/relq/rafrontend"
	"github.com/relq/relq/trc"
)

func fixtureCatalog(t *testing.T) catalog.MapCatalog {
	t.Helper()

	rSchema := ra.Schema{
		{Name: "a", Source: "R", Type: ra.NumberType},
		{Name: "b", Source: "R", Type: ra.StringType},
		{Name: "c", Source: "R", Type: ra.StringType},
	}
	rRows := []ra.Row{
		ra.NewRow(1.0, "a", "d"),
		ra.NewRow(3.0, "c", "c"),
		ra.NewRow(4.0, "d", "f"),
		ra.NewRow(5.0, "d", "b"),
		ra.NewRow(6.0, "e", "f"),
		ra.NewRow(1000.0, "e", "k"),
	}

	sSchema := ra.Schema{
		{Name: "b", Source: "S", Type: ra.StringType},
		{Name: "d", Source: "S", Type: ra.NumberType},
	}
	sRows := []ra.Row{
		ra.NewRow("a", 100.0),
		ra.NewRow("b", 300.0),
		ra.NewRow("c", 400.0),
		ra.NewRow("d", 200.0),
		ra.NewRow("e", 150.0),
	}

	return catalog.MapCatalog{
		"R": catalog.NewRelation("R", rSchema, rRows),
		"S": catalog.NewRelation("S", sSchema, sRows),
	}
}

func sortedFloats(rows []ra.Row, col int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r[col].(float64)
	}
	sort.Float64s(out)
	return out
}

var noRegion = ra.CodeRegion{}

func TestDispatchTRC(t *testing.T) {
	cat := fixtureCatalog(t)

	formula := trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("t", "R", noRegion),
		trc.NewPredicate(trc.AttrRef{Variable: "t", Attribute: "a"}, ">", 3.0, noRegion),
		noRegion,
	)
	root := trc.NewSetExpr("t", nil, formula, noRegion)

	node, warnings, err := relq.Translate(root, cat)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.NoError(t, node.Check())

	rows, err := raeval.Eval(node, cat)
	require.NoError(t, err)
	require.Equal(t, []float64{4, 5, 6, 1000}, sortedFloats(rows, 0))
}

func TestDispatchSQL(t *testing.T) {
	cat := fixtureCatalog(t)

	stmt, err := sqlparser.Parse("SELECT DISTINCT a FROM R WHERE a > 3")
	require.NoError(t, err)
	sel, ok := stmt.(*sqlparser.Select)
	require.True(t, ok)

	node, warnings, err := relq.Translate(sel, cat)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.NoError(t, node.Check())

	rows, err := raeval.Eval(node, cat)
	require.NoError(t, err)
	require.Equal(t, []float64{4, 5, 6, 1000}, sortedFloats(rows, 0))
}

func TestDispatchSQLCollectsWarnings(t *testing.T) {
	cat := fixtureCatalog(t)

	stmt, err := sqlparser.Parse("SELECT a FROM R")
	require.NoError(t, err)
	sel, ok := stmt.(*sqlparser.Select)
	require.True(t, ok)

	_, warnings, err := relq.Translate(sel, cat)
	require.NoError(t, err)
	require.NotEmpty(t, warnings)
}

func TestDispatchRAAST(t *testing.T) {
	cat := fixtureCatalog(t)

	ast := rafrontend.NewSelection(
		rafrontend.NewRelation("R", noRegion),
		rafrontend.Apply{Name: ">", Args: []rafrontend.Expr{
			rafrontend.ColumnRef{Column: "a"},
			rafrontend.Literal{Value: 3.0},
		}},
		noRegion,
	)

	node, warnings, err := relq.Translate(ast, cat)
	require.NoError(t, err)
	require.Empty(t, warnings)
	require.NoError(t, node.Check())

	rows, err := raeval.Eval(node, cat)
	require.NoError(t, err)
	require.Equal(t, []float64{4, 5, 6, 1000}, sortedFloats(rows, 0))
}

func TestDispatchUnsupportedAST(t *testing.T) {
	cat := fixtureCatalog(t)

	_, _, err := relq.Translate(42, cat)
	require.Error(t, err)
	require.True(t, relq.ErrUnsupportedAST.Is(err))
}

func TestDispatchPropagatesTranslationErrors(t *testing.T) {
	cat := fixtureCatalog(t)

	root := trc.NewSetExpr("t", nil,
		trc.NewRelationPredicate("t", "Missing", noRegion), noRegion)

	_, _, err := relq.Translate(root, cat)
	require.Error(t, err)
	require.True(t, trc.ErrUnknownRelation.Is(err))
}
