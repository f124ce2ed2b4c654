package trc_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/relq/relq/catalog"
	"github.com/relq/relq/ra"
	"github.com/relq/relq/ra/plan"
	"github.com/relq/relq/raeval"
	"github.com/relq/relq/trc"
)

// fixtureCatalog builds the two-relation R/S catalog every test shares.
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

func evalNode(t *testing.T, node ra.Node, cat catalog.Catalog) []ra.Row {
	t.Helper()
	require.NoError(t, node.Check())
	rows, err := raeval.Eval(node, cat)
	require.NoError(t, err)
	return rows
}

var noRegion = ra.CodeRegion{}

// { t | R(t) ∧ t.a > 3 } ≡ σ a>3 (R)
func TestGreaterThanSelection(t *testing.T) {
	cat := fixtureCatalog(t)

	formula := trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("t", "R", noRegion),
		trc.NewPredicate(trc.AttrRef{Variable: "t", Attribute: "a"}, ">", 3.0, noRegion),
		noRegion,
	)
	root := trc.NewSetExpr("t", nil, formula, noRegion)

	got, err := trc.Translate(root, cat)
	require.NoError(t, err)

	rows := evalNode(t, got, cat)
	require.ElementsMatch(t, []float64{4, 5, 6, 1000}, sortedFloats(rows, 0))
}

// { t | R(t) ∧ ¬(t.a < 5 ∧ t.a > 3) } ≡ σ a≥5 ∨ a≤3 (R)
func TestNegatedConjunction(t *testing.T) {
	cat := fixtureCatalog(t)

	inner := trc.NewLogicalExpression(trc.And,
		trc.NewPredicate(trc.AttrRef{Variable: "t", Attribute: "a"}, "<", 5.0, noRegion),
		trc.NewPredicate(trc.AttrRef{Variable: "t", Attribute: "a"}, ">", 3.0, noRegion),
		noRegion,
	)
	formula := trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("t", "R", noRegion),
		trc.NewNegation(inner, noRegion),
		noRegion,
	)
	root := trc.NewSetExpr("t", nil, formula, noRegion)

	got, err := trc.Translate(root, cat)
	require.NoError(t, err)

	rows := evalNode(t, got, cat)
	require.ElementsMatch(t, []float64{1, 3, 5, 6, 1000}, sortedFloats(rows, 0))
}

// { t | R(t) ∧ ¬(t.a < 3 ∨ t.a < 5) } ≡ σ a≥3 ∧ a≥5 (R)
func TestNegatedDisjunction(t *testing.T) {
	cat := fixtureCatalog(t)

	inner := trc.NewLogicalExpression(trc.Or,
		trc.NewPredicate(trc.AttrRef{Variable: "t", Attribute: "a"}, "<", 3.0, noRegion),
		trc.NewPredicate(trc.AttrRef{Variable: "t", Attribute: "a"}, "<", 5.0, noRegion),
		noRegion,
	)
	formula := trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("t", "R", noRegion),
		trc.NewNegation(inner, noRegion),
		noRegion,
	)
	root := trc.NewSetExpr("t", nil, formula, noRegion)

	got, err := trc.Translate(root, cat)
	require.NoError(t, err)

	rows := evalNode(t, got, cat)
	require.ElementsMatch(t, []float64{5, 6, 1000}, sortedFloats(rows, 0))
}

// { r | R(r) ∧ (r.a > 5 → r.b = 'e') } ≡ σ (a≤5 ∨ b='e') (R)
func TestImplicationLowering(t *testing.T) {
	cat := fixtureCatalog(t)

	implication := trc.NewLogicalExpression(trc.Implies,
		trc.NewPredicate(trc.AttrRef{Variable: "r", Attribute: "a"}, ">", 5.0, noRegion),
		trc.NewPredicate(trc.AttrRef{Variable: "r", Attribute: "b"}, "=", "e", noRegion),
		noRegion,
	)
	formula := trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("r", "R", noRegion),
		implication,
		noRegion,
	)
	root := trc.NewSetExpr("r", nil, formula, noRegion)

	got, err := trc.Translate(root, cat)
	require.NoError(t, err)

	rows := evalNode(t, got, cat)
	require.ElementsMatch(t, []float64{1, 3, 4, 5, 6, 1000}, sortedFloats(rows, 0))
}

// { t | R(t) ∧ ∃s(S(s) ∧ s.b = t.b) } ≡ π R.a,R.b,R.c (R ⋈ R.b=S.b S)
func TestCorrelatedExists(t *testing.T) {
	cat := fixtureCatalog(t)

	exists := trc.NewQuantifiedExpression(trc.Exists, "s",
		trc.NewLogicalExpression(trc.And,
			trc.NewRelationPredicate("s", "S", noRegion),
			trc.NewPredicate(trc.AttrRef{Variable: "s", Attribute: "b"}, "=", trc.AttrRef{Variable: "t", Attribute: "b"}, noRegion),
			noRegion,
		),
		noRegion,
	)
	formula := trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("t", "R", noRegion),
		exists,
		noRegion,
	)
	root := trc.NewSetExpr("t", nil, formula, noRegion)

	got, err := trc.Translate(root, cat)
	require.NoError(t, err)

	rows := evalNode(t, got, cat)
	// Every b value in R ({a,c,d,d,e,e}) has a matching S row, so every
	// R tuple is retained.
	require.Len(t, rows, 6)
}

// { t | R(t) ∧ ¬∃s(S(s) ∧ s.d<200 ∧ t.a<3) } ≡ σ a≥3 (R)
func TestNegatedCorrelatedExists(t *testing.T) {
	cat := fixtureCatalog(t)

	inner := trc.NewLogicalExpression(trc.And,
		trc.NewLogicalExpression(trc.And,
			trc.NewRelationPredicate("s", "S", noRegion),
			trc.NewPredicate(trc.AttrRef{Variable: "s", Attribute: "d"}, "<", 200.0, noRegion),
			noRegion,
		),
		trc.NewPredicate(trc.AttrRef{Variable: "t", Attribute: "a"}, "<", 3.0, noRegion),
		noRegion,
	)
	exists := trc.NewQuantifiedExpression(trc.Exists, "s", inner, noRegion)
	formula := trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("t", "R", noRegion),
		trc.NewNegation(exists, noRegion),
		noRegion,
	)
	root := trc.NewSetExpr("t", nil, formula, noRegion)

	got, err := trc.Translate(root, cat)
	require.NoError(t, err)

	rows := evalNode(t, got, cat)
	require.ElementsMatch(t, []float64{3, 4, 5, 6, 1000}, sortedFloats(rows, 0))
}

// { r | R(r) ∧ ∀s(S(s) → s.d < r.a) } ≡ σ a=1000 (R)
func TestUniversalQuantifier(t *testing.T) {
	cat := fixtureCatalog(t)

	implication := trc.NewLogicalExpression(trc.Implies,
		trc.NewRelationPredicate("s", "S", noRegion),
		trc.NewPredicate(trc.AttrRef{Variable: "s", Attribute: "d"}, "<", trc.AttrRef{Variable: "r", Attribute: "a"}, noRegion),
		noRegion,
	)
	forAll := trc.NewQuantifiedExpression(trc.ForAll, "s", implication, noRegion)
	formula := trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("r", "R", noRegion),
		forAll,
		noRegion,
	)
	root := trc.NewSetExpr("r", nil, formula, noRegion)

	got, err := trc.Translate(root, cat)
	require.NoError(t, err)

	rows := evalNode(t, got, cat)
	require.ElementsMatch(t, []float64{1000}, sortedFloats(rows, 0))
}

// { t | R(t) ∧ ¬∃s(S(s) ∧ s.d > 1000) } ≡ R (uncorrelated ∃ is false).
func TestUncorrelatedExistsGate(t *testing.T) {
	cat := fixtureCatalog(t)

	inner := trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("s", "S", noRegion),
		trc.NewPredicate(trc.AttrRef{Variable: "s", Attribute: "d"}, ">", 1000.0, noRegion),
		noRegion,
	)
	exists := trc.NewQuantifiedExpression(trc.Exists, "s", inner, noRegion)
	formula := trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("t", "R", noRegion),
		trc.NewNegation(exists, noRegion),
		noRegion,
	)
	root := trc.NewSetExpr("t", nil, formula, noRegion)

	got, err := trc.Translate(root, cat)
	require.NoError(t, err)

	rows := evalNode(t, got, cat)
	require.ElementsMatch(t, []float64{1, 3, 4, 5, 6, 1000}, sortedFloats(rows, 0))
}

// Double negation cancels.
func TestDoubleNegation(t *testing.T) {
	cat := fixtureCatalog(t)

	p := func() *trc.Predicate {
		return trc.NewPredicate(trc.AttrRef{Variable: "t", Attribute: "a"}, ">", 3.0, noRegion)
	}

	plain := trc.NewSetExpr("t", nil, trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("t", "R", noRegion), p(), noRegion), noRegion)

	doubleNegated := trc.NewSetExpr("t", nil, trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("t", "R", noRegion),
		trc.NewNegation(trc.NewNegation(p(), noRegion), noRegion),
		noRegion), noRegion)

	gotPlain, err := trc.Translate(plain, cat)
	require.NoError(t, err)
	gotDouble, err := trc.Translate(doubleNegated, cat)
	require.NoError(t, err)

	rowsPlain := evalNode(t, gotPlain, cat)
	rowsDouble := evalNode(t, gotDouble, cat)
	require.ElementsMatch(t, sortedFloats(rowsPlain, 0), sortedFloats(rowsDouble, 0))
}

// No projection means the result schema
// equals the outer variable's bound relation's schema.
func TestSchemaPreservation(t *testing.T) {
	cat := fixtureCatalog(t)

	formula := trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("t", "R", noRegion),
		trc.NewPredicate(trc.AttrRef{Variable: "t", Attribute: "a"}, ">", 3.0, noRegion),
		noRegion,
	)
	root := trc.NewSetExpr("t", nil, formula, noRegion)

	got, err := trc.Translate(root, cat)
	require.NoError(t, err)

	rRelation, err := cat.Relation("R")
	require.NoError(t, err)
	require.True(t, got.Schema().UnionCompatible(rRelation.Schema()))
}

// With a projection list, the listed attributes determine the schema.
func TestSchemaProjected(t *testing.T) {
	cat := fixtureCatalog(t)

	formula := trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("t", "R", noRegion),
		trc.NewPredicate(trc.AttrRef{Variable: "t", Attribute: "a"}, ">", 3.0, noRegion),
		noRegion,
	)
	root := trc.NewSetExpr("t", []string{"a", "b"}, formula, noRegion)

	got, err := trc.Translate(root, cat)
	require.NoError(t, err)
	require.Len(t, got.Schema(), 2)
	require.Equal(t, "a", got.Schema()[0].Name)
	require.Equal(t, "b", got.Schema()[1].Name)
}

// Mutating the catalog after Translate returns does not affect the
// returned tree's evaluation, because every Relation leaf holds its own
// defensively-copied handle.
func TestCatalogIsolation(t *testing.T) {
	cat := fixtureCatalog(t)

	formula := trc.NewRelationPredicate("t", "R", noRegion)
	root := trc.NewSetExpr("t", nil, formula, noRegion)

	got, err := trc.Translate(root, cat)
	require.NoError(t, err)

	before := evalNode(t, got, cat)

	rRelation, err := cat.Relation("R")
	require.NoError(t, err)
	rRelation.Rows()[0][0] = -999.0

	after, err := raeval.Eval(got, cat)
	require.NoError(t, err)
	require.Equal(t, sortedFloats(before, 0), sortedFloats(after, 0))
}

func TestUnknownRelationError(t *testing.T) {
	cat := fixtureCatalog(t)

	formula := trc.NewRelationPredicate("t", "NoSuchRelation", noRegion)
	root := trc.NewSetExpr("t", nil, formula, noRegion)

	_, err := trc.Translate(root, cat)
	require.Error(t, err)
	require.True(t, trc.ErrUnboundVariable.Is(err) || trc.ErrUnknownRelation.Is(err))
}

func TestPlanTreeString(t *testing.T) {
	cat := fixtureCatalog(t)

	formula := trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("t", "R", noRegion),
		trc.NewPredicate(trc.AttrRef{Variable: "t", Attribute: "a"}, ">", 3.0, noRegion),
		noRegion,
	)
	root := trc.NewSetExpr("t", nil, formula, noRegion)

	got, err := trc.Translate(root, cat)
	require.NoError(t, err)
	require.IsType(t, &plan.Difference{}, got)
	require.NotEmpty(t, got.String())
}

// De Morgan: ¬(P ∧ Q) and ¬P ∨ ¬Q evaluate to the same result.
func TestDeMorganEquivalence(t *testing.T) {
	cat := fixtureCatalog(t)

	p := func() *trc.Predicate {
		return trc.NewPredicate(trc.AttrRef{Variable: "t", Attribute: "a"}, "<", 5.0, noRegion)
	}
	q := func() *trc.Predicate {
		return trc.NewPredicate(trc.AttrRef{Variable: "t", Attribute: "a"}, ">", 3.0, noRegion)
	}

	negatedConjunction := trc.NewSetExpr("t", nil, trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("t", "R", noRegion),
		trc.NewNegation(trc.NewLogicalExpression(trc.And, p(), q(), noRegion), noRegion),
		noRegion), noRegion)

	disjoinedNegations := trc.NewSetExpr("t", nil, trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("t", "R", noRegion),
		trc.NewLogicalExpression(trc.Or,
			trc.NewNegation(p(), noRegion),
			trc.NewNegation(q(), noRegion),
			noRegion),
		noRegion), noRegion)

	gotConj, err := trc.Translate(negatedConjunction, cat)
	require.NoError(t, err)
	gotDisj, err := trc.Translate(disjoinedNegations, cat)
	require.NoError(t, err)

	rowsConj := evalNode(t, gotConj, cat)
	rowsDisj := evalNode(t, gotDisj, cat)
	require.Equal(t, sortedFloats(rowsConj, 0), sortedFloats(rowsDisj, 0))
	require.Equal(t, []float64{1, 3, 5, 6, 1000}, sortedFloats(rowsConj, 0))
}

// ∀/∃ duality: ∀s Φ and ¬∃s ¬Φ evaluate to the same result.
func TestForAllExistsDuality(t *testing.T) {
	cat := fixtureCatalog(t)

	phi := func() trc.Node {
		return trc.NewLogicalExpression(trc.Implies,
			trc.NewRelationPredicate("s", "S", noRegion),
			trc.NewPredicate(trc.AttrRef{Variable: "s", Attribute: "d"}, "<",
				trc.AttrRef{Variable: "r", Attribute: "a"}, noRegion),
			noRegion)
	}

	universal := trc.NewSetExpr("r", nil, trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("r", "R", noRegion),
		trc.NewQuantifiedExpression(trc.ForAll, "s", phi(), noRegion),
		noRegion), noRegion)

	dual := trc.NewSetExpr("r", nil, trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("r", "R", noRegion),
		trc.NewNegation(
			trc.NewQuantifiedExpression(trc.Exists, "s",
				trc.NewNegation(phi(), noRegion), noRegion),
			noRegion),
		noRegion), noRegion)

	gotUniversal, err := trc.Translate(universal, cat)
	require.NoError(t, err)
	gotDual, err := trc.Translate(dual, cat)
	require.NoError(t, err)

	rowsUniversal := evalNode(t, gotUniversal, cat)
	rowsDual := evalNode(t, gotDual, cat)
	require.Equal(t, sortedFloats(rowsUniversal, 0), sortedFloats(rowsDual, 0))
	require.Equal(t, []float64{1000}, sortedFloats(rowsUniversal, 0))
}

// Implication rewrite: p → q and ¬p ∨ q evaluate to the same result.
func TestImplicationEquivalence(t *testing.T) {
	cat := fixtureCatalog(t)

	p := func() *trc.Predicate {
		return trc.NewPredicate(trc.AttrRef{Variable: "t", Attribute: "a"}, ">", 5.0, noRegion)
	}
	q := func() *trc.Predicate {
		return trc.NewPredicate(trc.AttrRef{Variable: "t", Attribute: "b"}, "=", "e", noRegion)
	}

	implication := trc.NewSetExpr("t", nil, trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("t", "R", noRegion),
		trc.NewLogicalExpression(trc.Implies, p(), q(), noRegion),
		noRegion), noRegion)

	rewritten := trc.NewSetExpr("t", nil, trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("t", "R", noRegion),
		trc.NewLogicalExpression(trc.Or, trc.NewNegation(p(), noRegion), q(), noRegion),
		noRegion), noRegion)

	gotImplication, err := trc.Translate(implication, cat)
	require.NoError(t, err)
	gotRewritten, err := trc.Translate(rewritten, cat)
	require.NoError(t, err)

	rowsImplication := evalNode(t, gotImplication, cat)
	rowsRewritten := evalNode(t, gotRewritten, cat)
	require.Equal(t, sortedFloats(rowsImplication, 0), sortedFloats(rowsRewritten, 0))
}

// != is normalised to ¬(lhs = rhs) and re-entered.
func TestNotEqualsNormalisation(t *testing.T) {
	cat := fixtureCatalog(t)

	formula := trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("t", "R", noRegion),
		trc.NewPredicate(trc.AttrRef{Variable: "t", Attribute: "b"}, "!=", "e", noRegion),
		noRegion,
	)
	root := trc.NewSetExpr("t", nil, formula, noRegion)

	got, err := trc.Translate(root, cat)
	require.NoError(t, err)

	rows := evalNode(t, got, cat)
	require.Equal(t, []float64{1, 3, 4, 5}, sortedFloats(rows, 0))
}

func TestDuplicateBindingError(t *testing.T) {
	cat := fixtureCatalog(t)

	formula := trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("t", "R", noRegion),
		trc.NewRelationPredicate("t", "S", noRegion),
		noRegion,
	)
	root := trc.NewSetExpr("t", nil, formula, noRegion)

	_, err := trc.Translate(root, cat)
	require.Error(t, err)
	require.True(t, trc.ErrDuplicateBinding.Is(err))
}

func TestUnboundVariableError(t *testing.T) {
	cat := fixtureCatalog(t)

	formula := trc.NewLogicalExpression(trc.And,
		trc.NewRelationPredicate("t", "R", noRegion),
		trc.NewPredicate(trc.AttrRef{Variable: "u", Attribute: "a"}, ">", 3.0, noRegion),
		noRegion,
	)
	root := trc.NewSetExpr("t", nil, formula, noRegion)

	_, err := trc.Translate(root, cat)
	require.Error(t, err)
	require.True(t, trc.ErrUnboundVariable.Is(err))
}
