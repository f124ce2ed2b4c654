// Package raeval implements a batch, in-memory evaluator for the RA tree
// the translators emit. RA evaluation as a server is out of scope for
// this module, but two things still need a working evaluator: the
// uncorrelated-existential gate inside the TRC translator, which must
// know a subformula's result cardinality at translation time, and the
// test suite, which needs an oracle to check translated trees against
// hand-written RA expressions known equivalent to them.
package raeval

import (
	"github.com/mitchellh/hashstructure"
	"github.com/pkg/errors"

	"github.com/relq/relq/catalog"
	"github.com/relq/relq/ra"
	"github.com/relq/relq/ra/expression"
	"github.com/relq/relq/ra/plan"
)

// Eval materializes node's result under set semantics, walking the tree
// bottom-up. cat is not consulted for lookups: every Relation leaf
// carries its own defensively-copied handle and its rows are read from
// that handle, so a correct tree never needs a catalog lookup here — cat
// is accepted for interface symmetry with the translators.
func Eval(node ra.Node, cat catalog.Catalog) ([]ra.Row, error) {
	switch n := node.(type) {
	case *plan.Relation:
		return n.Handle().Rows(), nil

	case *plan.Projection:
		rows, err := Eval(n.Child, cat)
		if err != nil {
			return nil, err
		}
		schema := n.Child.Schema()
		out := make([]ra.Row, 0, len(rows))
		for _, row := range rows {
			projected := make(ra.Row, len(n.Exprs))
			for i, e := range n.Exprs {
				v, err := evalExpr(row, schema, e)
				if err != nil {
					return nil, err
				}
				projected[i] = v
			}
			out = append(out, projected)
		}
		return dedupe(out)

	case *plan.Selection:
		rows, err := Eval(n.Child, cat)
		if err != nil {
			return nil, err
		}
		schema := n.Child.Schema()
		var out []ra.Row
		for _, row := range rows {
			ok, err := evalBool(row, schema, n.Predicate)
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, row)
			}
		}
		return out, nil

	case *plan.RenameRelation:
		return Eval(n.Child, cat)

	case *plan.RenameColumns:
		return Eval(n.Child, cat)

	case *plan.OrderBy:
		return evalOrderBy(n, cat)

	case *plan.GroupBy:
		return nil, errors.Errorf("raeval: GroupBy has no TRC meaning and is not evaluated")

	case *plan.CrossJoin:
		return evalCrossJoin(n.Left, n.Right, cat)

	case *plan.InnerJoin:
		left, right, err := evalSides(n.Left, n.Right, cat)
		if err != nil {
			return nil, err
		}
		return joinRows(left, n.Left.Schema(), right, n.Right.Schema(), n.Cond, func(l, r bool) bool { return l && r })

	case *plan.LeftOuterJoin:
		return evalOuterJoin(n.Left, n.Right, n.Cond, cat, true, false)

	case *plan.RightOuterJoin:
		return evalOuterJoin(n.Left, n.Right, n.Cond, cat, false, true)

	case *plan.FullOuterJoin:
		return evalOuterJoin(n.Left, n.Right, n.Cond, cat, true, true)

	case *plan.SemiJoin:
		return evalSemiJoin(n, cat)

	case *plan.AntiJoin:
		return evalAntiJoin(n, cat)

	case *plan.Union:
		return evalSetOp(n.Left, n.Right, cat, setUnion)

	case *plan.Intersect:
		return evalSetOp(n.Left, n.Right, cat, setIntersect)

	case *plan.Difference:
		return evalSetOp(n.Left, n.Right, cat, setDifference)

	case *plan.Division:
		return evalDivision(n, cat)

	default:
		return nil, errors.Errorf("raeval: unsupported node %T", node)
	}
}

func evalSides(left, right ra.Node, cat catalog.Catalog) ([]ra.Row, []ra.Row, error) {
	l, err := Eval(left, cat)
	if err != nil {
		return nil, nil, err
	}
	r, err := Eval(right, cat)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

func evalOrderBy(n *plan.OrderBy, cat catalog.Catalog) ([]ra.Row, error) {
	rows, err := Eval(n.Child, cat)
	if err != nil {
		return nil, err
	}
	// Order is not part of a set-semantics result; returned as-is.
	return rows, nil
}

func evalCrossJoin(left, right ra.Node, cat catalog.Catalog) ([]ra.Row, error) {
	l, r, err := evalSides(left, right, cat)
	if err != nil {
		return nil, err
	}
	out := make([]ra.Row, 0, len(l)*len(r))
	for _, lr := range l {
		for _, rr := range r {
			out = append(out, concatRows(lr, rr))
		}
	}
	return out, nil
}

func concatRows(l, r ra.Row) ra.Row {
	row := make(ra.Row, 0, len(l)+len(r))
	row = append(row, l...)
	row = append(row, r...)
	return row
}

// matchPair is one pair of (left index, right index) columns a natural
// join equates.
type matchPair struct {
	li, ri int
}

// naturalMatches finds the column pairs a natural join (optionally
// restricted to restrict) equates between left and right. Pairs whose
// Source (qualifying relation) also agrees take precedence: when the
// right side carries any of left's very same qualified columns — as it
// does in the semi-join trees the TRC translator builds, whose right
// operand descends from a CrossJoin containing the left relation itself
// — only those identity pairs are equated, for every left column.
// Pairing on bare Name there would additionally equate any unrelated
// relation that happens to share an attribute name (as R and S do on
// "b") and corrupt the match. Only when no column pair of the two
// schemas shares a Source does the match fall back to bare-Name pairing,
// which is the ordinary cross-relation natural join.
func naturalMatches(left, right ra.Schema, restrict []string) []matchPair {
	anySame := false
	for _, lc := range left {
		for _, rc := range right {
			if lc.Name == rc.Name && lc.Source == rc.Source && (restrict == nil || contains(restrict, lc.Name)) {
				anySame = true
			}
		}
	}

	var pairs []matchPair
	for li, lc := range left {
		if restrict != nil && !contains(restrict, lc.Name) {
			continue
		}
		var byName []matchPair
		sameSource := false
		for ri, rc := range right {
			if lc.Name != rc.Name {
				continue
			}
			if lc.Source == rc.Source {
				if !sameSource {
					byName = nil
					sameSource = true
				}
				byName = append(byName, matchPair{li, ri})
			} else if !sameSource && !anySame {
				byName = append(byName, matchPair{li, ri})
			}
		}
		pairs = append(pairs, byName...)
	}
	return pairs
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func rowsMatch(l ra.Row, r ra.Row, pairs []matchPair) (bool, error) {
	for _, p := range pairs {
		eq, err := valuesEqual(l[p.li], r[p.ri])
		if err != nil {
			return false, err
		}
		if !eq {
			return false, nil
		}
	}
	return true, nil
}

// joinRows evaluates a theta or natural join between left and right
// under cond, keeping combination (l,r) under combine(natural-ok, theta-ok).
func joinRows(left []ra.Row, leftSchema ra.Schema, right []ra.Row, rightSchema ra.Schema, cond ra.JoinCondition, combine func(natOK, thetaOK bool) bool) ([]ra.Row, error) {
	pairs := naturalMatches(leftSchema, rightSchema, cond.RestrictToColumns)
	combined := append(append(ra.Schema{}, leftSchema...), rightSchema...)

	var out []ra.Row
	for _, lr := range left {
		for _, rr := range right {
			natOK := true
			if cond.Kind == ra.NaturalJoin {
				ok, err := rowsMatch(lr, rr, pairs)
				if err != nil {
					return nil, err
				}
				natOK = ok
			}

			thetaOK := true
			if cond.Kind == ra.ThetaJoin {
				row := concatRows(lr, rr)
				ok, err := evalBool(row, combined, cond.Expression)
				if err != nil {
					return nil, err
				}
				thetaOK = ok
			}

			if combine(natOK, thetaOK) {
				out = append(out, concatRows(lr, rr))
			}
		}
	}
	return out, nil
}

func evalOuterJoin(left, right ra.Node, cond ra.JoinCondition, cat catalog.Catalog, keepLeft, keepRight bool) ([]ra.Row, error) {
	l, r, err := evalSides(left, right, cat)
	if err != nil {
		return nil, err
	}
	leftSchema, rightSchema := left.Schema(), right.Schema()

	matched, err := joinRows(l, leftSchema, r, rightSchema, cond, func(nat, theta bool) bool { return nat && theta })
	if err != nil {
		return nil, err
	}

	out := append([]ra.Row{}, matched...)

	if keepLeft {
		for _, lr := range l {
			hasMatch, err := hasAnyMatch(lr, leftSchema, r, rightSchema, cond)
			if err != nil {
				return nil, err
			}
			if !hasMatch {
				out = append(out, concatRows(lr, nullRow(len(rightSchema))))
			}
		}
	}
	if keepRight {
		for _, rr := range r {
			hasMatch, err := hasAnyMatch(rr, rightSchema, l, leftSchema, cond)
			if err != nil {
				return nil, err
			}
			if !hasMatch {
				out = append(out, concatRows(nullRow(len(leftSchema)), rr))
			}
		}
	}
	return out, nil
}

func nullRow(n int) ra.Row {
	row := make(ra.Row, n)
	return row
}

func hasAnyMatch(one ra.Row, oneSchema ra.Schema, many []ra.Row, manySchema ra.Schema, cond ra.JoinCondition) (bool, error) {
	pairs := naturalMatches(oneSchema, manySchema, cond.RestrictToColumns)
	for _, other := range many {
		if cond.Kind == ra.NaturalJoin {
			ok, err := rowsMatch(one, other, pairs)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
			continue
		}
		combined := append(append(ra.Schema{}, oneSchema...), manySchema...)
		ok, err := evalBool(concatRows(one, other), combined, cond.Expression)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// evalSemiJoin evaluates a natural-join semi-join: rows of the preserved
// side that have at least one match on the other side.
func evalSemiJoin(n *plan.SemiJoin, cat catalog.Catalog) ([]ra.Row, error) {
	l, r, err := evalSides(n.Left, n.Right, cat)
	if err != nil {
		return nil, err
	}
	leftSchema, rightSchema := n.Left.Schema(), n.Right.Schema()

	if n.Preserve == plan.RightSide {
		var out []ra.Row
		for _, rr := range r {
			ok, err := hasAnyMatch(rr, rightSchema, l, leftSchema, ra.Natural())
			if err != nil {
				return nil, err
			}
			if ok {
				out = append(out, rr)
			}
		}
		return out, nil
	}

	var out []ra.Row
	for _, lr := range l {
		ok, err := hasAnyMatch(lr, leftSchema, r, rightSchema, ra.Natural())
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, lr)
		}
	}
	return out, nil
}

func evalAntiJoin(n *plan.AntiJoin, cat catalog.Catalog) ([]ra.Row, error) {
	l, r, err := evalSides(n.Left, n.Right, cat)
	if err != nil {
		return nil, err
	}
	leftSchema, rightSchema := n.Left.Schema(), n.Right.Schema()

	var out []ra.Row
	for _, lr := range l {
		ok, err := hasAnyMatch(lr, leftSchema, r, rightSchema, n.Cond)
		if err != nil {
			return nil, err
		}
		if !ok {
			out = append(out, lr)
		}
	}
	return out, nil
}

type setCombine func(inLeft, inRight bool) bool

func setUnion(inLeft, inRight bool) bool      { return inLeft || inRight }
func setIntersect(inLeft, inRight bool) bool  { return inLeft && inRight }
func setDifference(inLeft, inRight bool) bool { return inLeft && !inRight }

func evalSetOp(left, right ra.Node, cat catalog.Catalog, combine setCombine) ([]ra.Row, error) {
	l, r, err := evalSides(left, right, cat)
	if err != nil {
		return nil, err
	}
	lHashes, err := hashSet(l)
	if err != nil {
		return nil, err
	}
	rHashes, err := hashSet(r)
	if err != nil {
		return nil, err
	}

	seen := map[uint64]bool{}
	var out []ra.Row
	for h, row := range lHashes {
		if combine(true, rHashes[h] != nil) && !seen[h] {
			seen[h] = true
			out = append(out, row)
		}
	}
	for h, row := range rHashes {
		if combine(lHashes[h] != nil, true) && !seen[h] {
			seen[h] = true
			out = append(out, row)
		}
	}
	return out, nil
}

func hashSet(rows []ra.Row) (map[uint64]ra.Row, error) {
	out := make(map[uint64]ra.Row, len(rows))
	for _, row := range rows {
		h, err := hashRow(row)
		if err != nil {
			return nil, err
		}
		out[h] = row
	}
	return out, nil
}

func hashRow(row ra.Row) (uint64, error) {
	h, err := hashstructure.Hash(row, nil)
	if err != nil {
		return 0, errors.Wrap(err, "raeval: hash row")
	}
	return h, nil
}

func dedupe(rows []ra.Row) ([]ra.Row, error) {
	seen := make(map[uint64]bool, len(rows))
	out := make([]ra.Row, 0, len(rows))
	for _, row := range rows {
		h, err := hashRow(row)
		if err != nil {
			return nil, err
		}
		if seen[h] {
			continue
		}
		seen[h] = true
		out = append(out, row)
	}
	return out, nil
}

func evalDivision(n *plan.Division, cat catalog.Catalog) ([]ra.Row, error) {
	l, r, err := evalSides(n.Left, n.Right, cat)
	if err != nil {
		return nil, err
	}
	leftSchema, rightSchema := n.Left.Schema(), n.Right.Schema()
	outSchema := n.Schema()

	outIdx := make([]int, len(outSchema))
	for i, c := range outSchema {
		outIdx[i] = leftSchema.IndexOf(c.Name, c.Source)
	}
	divisorIdx := make([]int, len(rightSchema))
	for i, c := range rightSchema {
		divisorIdx[i] = leftSchema.IndexOf(c.Name, c.Source)
	}

	groups := map[uint64][]ra.Row{}
	groupRow := map[uint64]ra.Row{}
	for _, row := range l {
		key := make(ra.Row, len(outIdx))
		for i, idx := range outIdx {
			key[i] = row[idx]
		}
		h, err := hashRow(key)
		if err != nil {
			return nil, err
		}
		groups[h] = append(groups[h], row)
		groupRow[h] = key
	}

	var out []ra.Row
	for h, rows := range groups {
		present := map[uint64]bool{}
		for _, row := range rows {
			divRow := make(ra.Row, len(divisorIdx))
			for i, idx := range divisorIdx {
				divRow[i] = row[idx]
			}
			dh, err := hashRow(divRow)
			if err != nil {
				return nil, err
			}
			present[dh] = true
		}

		matchesAll := true
		for _, rr := range r {
			dh, err := hashRow(rr)
			if err != nil {
				return nil, err
			}
			if !present[dh] {
				matchesAll = false
				break
			}
		}
		if matchesAll {
			out = append(out, groupRow[h])
		}
	}
	return out, nil
}

func evalExpr(row ra.Row, schema ra.Schema, expr ra.Expression) (interface{}, error) {
	switch e := expr.(type) {
	case *expression.ColumnValue:
		idx := schema.IndexOf(e.Column, e.Alias)
		if idx < 0 {
			idx = schema.IndexOf(e.Column, "")
		}
		if idx < 0 {
			return nil, errors.Errorf("raeval: column %s not found in schema", e)
		}
		return row[idx], nil
	case *expression.Constant:
		return e.Value, nil
	case *expression.Operator:
		return evalOperator(row, schema, e)
	default:
		return nil, errors.Errorf("raeval: unsupported expression %T", expr)
	}
}

func evalBool(row ra.Row, schema ra.Schema, expr ra.Expression) (bool, error) {
	v, err := evalExpr(row, schema, expr)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, errors.Errorf("raeval: expression %v did not evaluate to a boolean", expr)
	}
	return b, nil
}

func evalOperator(row ra.Row, schema ra.Schema, op *expression.Operator) (interface{}, error) {
	switch op.Name {
	case "not":
		v, err := evalBool(row, schema, op.Args[0])
		if err != nil {
			return nil, err
		}
		return !v, nil
	case "and":
		l, err := evalBool(row, schema, op.Args[0])
		if err != nil {
			return nil, err
		}
		if !l {
			return false, nil
		}
		return evalBool(row, schema, op.Args[1])
	case "or":
		l, err := evalBool(row, schema, op.Args[0])
		if err != nil {
			return nil, err
		}
		if l {
			return true, nil
		}
		return evalBool(row, schema, op.Args[1])
	case "=", "!=", "<", ">", "<=", ">=":
		lv, err := evalExpr(row, schema, op.Args[0])
		if err != nil {
			return nil, err
		}
		rv, err := evalExpr(row, schema, op.Args[1])
		if err != nil {
			return nil, err
		}
		cmp, err := compareValues(lv, rv)
		if err != nil {
			return nil, err
		}
		switch op.Name {
		case "=":
			return cmp == 0, nil
		case "!=":
			return cmp != 0, nil
		case "<":
			return cmp < 0, nil
		case ">":
			return cmp > 0, nil
		case "<=":
			return cmp <= 0, nil
		case ">=":
			return cmp >= 0, nil
		}
	}
	return nil, errors.Errorf("raeval: unsupported operator %q", op.Name)
}

func valuesEqual(a, b interface{}) (bool, error) {
	cmp, err := compareValues(a, b)
	if err != nil {
		return false, err
	}
	return cmp == 0, nil
}

func compareValues(a, b interface{}) (int, error) {
	t, err := ra.TypeOf(a)
	if err != nil {
		return 0, err
	}
	bb, err := t.Convert(b)
	if err != nil {
		return 0, err
	}
	return t.Compare(a, bb), nil
}
