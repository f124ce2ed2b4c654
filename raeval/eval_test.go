package raeval_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relq/relq/catalog"
	"github.com/relq/relq/ra"
	"github.com/relq/relq/ra/expression"
	"github.com/relq/relq/ra/plan"
	"github.com/relq/relq/raeval"
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

func relation(t *testing.T, cat catalog.MapCatalog, name string) *plan.Relation {
	t.Helper()
	handle, err := cat.Relation(name)
	require.NoError(t, err)
	return plan.NewRelation(handle.Copy())
}

func theta(op string, left, right ra.Expression) ra.JoinCondition {
	return ra.JoinCondition{Kind: ra.ThetaJoin, Expression: expression.Comparison(op, left, right)}
}

func sortedFloats(rows []ra.Row, col int) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = r[col].(float64)
	}
	sort.Float64s(out)
	return out
}

func countNilAt(rows []ra.Row, col int) int {
	n := 0
	for _, r := range rows {
		if r[col] == nil {
			n++
		}
	}
	return n
}

func TestLeftOuterJoinPadsUnmatchedLeft(t *testing.T) {
	cat := fixtureCatalog(t)

	// Only a=1000 exceeds every S.d, so it pairs with all five S rows and
	// the other five R rows survive null-padded.
	node := plan.NewLeftOuterJoin(
		relation(t, cat, "R"),
		relation(t, cat, "S"),
		theta(">",
			expression.NewColumnValue("a", "R", ra.NumberType),
			expression.NewColumnValue("d", "S", ra.NumberType),
		),
	)

	rows, err := raeval.Eval(node, cat)
	require.NoError(t, err)
	require.Len(t, rows, 10)
	require.Equal(t, 5, countNilAt(rows, 3))
	require.Equal(t, 5, countNilAt(rows, 4))

	var padded []float64
	for _, r := range rows {
		if r[3] == nil {
			padded = append(padded, r[0].(float64))
		}
	}
	sort.Float64s(padded)
	require.Equal(t, []float64{1, 3, 4, 5, 6}, padded)
}

func TestRightOuterJoinNaturalPadsUnmatchedRight(t *testing.T) {
	cat := fixtureCatalog(t)

	// Every R.b occurs in S and S.b is unique, so each R row matches once;
	// the S row with b='b' has no R counterpart and is preserved.
	node := plan.NewRightOuterJoin(
		relation(t, cat, "R"),
		relation(t, cat, "S"),
		ra.Natural(),
	)

	rows, err := raeval.Eval(node, cat)
	require.NoError(t, err)
	require.Len(t, rows, 7)
	require.Equal(t, 1, countNilAt(rows, 0))

	for _, r := range rows {
		if r[0] == nil {
			require.Nil(t, r[1])
			require.Nil(t, r[2])
			require.Equal(t, "b", r[3])
			require.Equal(t, 300.0, r[4])
		}
	}
}

func TestFullOuterJoinWithoutMatches(t *testing.T) {
	cat := fixtureCatalog(t)

	// No R.a equals any S.d, so both sides are preserved in full.
	node := plan.NewFullOuterJoin(
		relation(t, cat, "R"),
		relation(t, cat, "S"),
		theta("=",
			expression.NewColumnValue("a", "R", ra.NumberType),
			expression.NewColumnValue("d", "S", ra.NumberType),
		),
	)

	rows, err := raeval.Eval(node, cat)
	require.NoError(t, err)
	require.Len(t, rows, 11)
	require.Equal(t, 5, countNilAt(rows, 0))
	require.Equal(t, 6, countNilAt(rows, 3))
}

func TestUnionDeduplicates(t *testing.T) {
	cat := fixtureCatalog(t)

	node := plan.NewUnion(relation(t, cat, "R"), relation(t, cat, "R"))

	rows, err := raeval.Eval(node, cat)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 3, 4, 5, 6, 1000}, sortedFloats(rows, 0))
}

func TestOrderByPassesRowsThrough(t *testing.T) {
	cat := fixtureCatalog(t)

	node := plan.NewOrderBy(relation(t, cat, "R"), []plan.SortField{
		{Column: expression.NewColumnValue("a", "R", ra.NumberType), Ascending: false},
	})

	rows, err := raeval.Eval(node, cat)
	require.NoError(t, err)
	require.Equal(t, []float64{1, 3, 4, 5, 6, 1000}, sortedFloats(rows, 0))
}

func TestGroupByIsNotEvaluated(t *testing.T) {
	cat := fixtureCatalog(t)

	node := plan.NewGroupBy(relation(t, cat, "R"), nil, nil)

	_, err := raeval.Eval(node, cat)
	require.Error(t, err)
}
