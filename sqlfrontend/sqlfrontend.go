// Package sqlfrontend is a structural walk of a SQL SELECT statement's
// vitess sqlparser AST into the shared RA vocabulary via the shared
// value-expression lowering. It is a thin collaborator next to the TRC
// translator (package trc) and never builds its own parallel node or
// expression types, only ra/plan and ra/expression ones.
package sqlfrontend

import (
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/src-d/go-vitess.v0/vt/sqlparser"

	"github.com/relq/relq/catalog"
	"github.com/relq/relq/ra"
	"github.com/relq/relq/ra/expression"
	"github.com/relq/relq/ra/plan"
)

// maxCrossJoinProduct is the row-product threshold past which a cross
// join's estimated cardinality earns a warning rather than an error;
// the translator still produces the tree.
const maxCrossJoinProduct = 1000000

var comparisonOperators = map[string]string{
	sqlparser.EqualStr:       "=",
	sqlparser.NotEqualStr:    "!=",
	sqlparser.LessThanStr:    "<",
	sqlparser.GreaterThanStr: ">",
	sqlparser.LessEqualStr:   "<=",
	sqlparser.GreaterEqualStr: ">=",
}

// Translate lowers a parsed SELECT statement into an RA tree against
// cat. Aggregation, subqueries, and set operators (UNION/INTERSECT/
// EXCEPT at the SQL level) are out of scope: only the AST shapes the
// TRC-equivalent subset of SQL produces are walked.
func Translate(stmt *sqlparser.Select, cat catalog.Catalog) (ra.Node, error) {
	if stmt.Having != nil {
		return nil, errors.New("unsupported feature: HAVING")
	}
	if len(stmt.GroupBy) > 0 {
		return nil, errors.New("unsupported feature: GROUP BY")
	}

	node, err := tableExprsToTable(cat, stmt.From)
	if err != nil {
		return nil, errors.Wrap(err, "FROM clause")
	}

	if stmt.Where != nil {
		node, err = whereToSelection(stmt.Where, node)
		if err != nil {
			return nil, errors.Wrap(err, "WHERE clause")
		}
	}

	node, err = selectExprsToProjection(stmt.SelectExprs, node)
	if err != nil {
		return nil, errors.Wrap(err, "SELECT list")
	}

	if stmt.Distinct == "" {
		node.AddWarning(
			"SELECT without DISTINCT cannot preserve bag semantics under this translator's set-semantics evaluation",
			node.Region(),
		)
	}

	if len(stmt.OrderBy) > 0 {
		node, err = orderByToOrderBy(stmt.OrderBy, node)
		if err != nil {
			return nil, errors.Wrap(err, "ORDER BY clause")
		}
	}

	if stmt.Limit != nil {
		node, err = limitToSelection(stmt.Limit, node)
		if err != nil {
			return nil, errors.Wrap(err, "LIMIT/OFFSET clause")
		}
	}

	return node, nil
}

func tableExprsToTable(cat catalog.Catalog, te sqlparser.TableExprs) (ra.Node, error) {
	if len(te) == 0 {
		return nil, errors.New("unsupported feature: zero tables in FROM")
	}

	nodes := make([]ra.Node, len(te))
	for i, t := range te {
		n, err := tableExprToTable(cat, t)
		if err != nil {
			return nil, err
		}
		nodes[i] = n
	}

	node := nodes[0]
	for i := 1; i < len(nodes); i++ {
		join := plan.NewCrossJoin(node, nodes[i])
		warnOnCrossJoinSize(join)
		node = join
	}
	return node, nil
}

func tableExprToTable(cat catalog.Catalog, te sqlparser.TableExpr) (ra.Node, error) {
	switch t := te.(type) {
	case *sqlparser.AliasedTableExpr:
		name, ok := t.Expr.(sqlparser.TableName)
		if !ok {
			return nil, errors.Errorf("unsupported table expression: %#v", t.Expr)
		}

		handle, err := cat.Relation(name.Name.String())
		if err != nil {
			return nil, errors.Wrapf(err, "table %q", name.Name.String())
		}

		var node ra.Node = plan.NewRelation(handle.Copy())
		if !t.As.IsEmpty() {
			node = plan.NewRenameRelation(node, t.As.String())
		}
		return node, nil

	case *sqlparser.JoinTableExpr:
		left, err := tableExprToTable(cat, t.LeftExpr)
		if err != nil {
			return nil, err
		}
		right, err := tableExprToTable(cat, t.RightExpr)
		if err != nil {
			return nil, err
		}

		if t.Join == sqlparser.NaturalJoinStr {
			return plan.NewInnerJoin(left, right, ra.Natural()), nil
		}

		if t.Condition.On == nil {
			return nil, errors.New("unsupported feature: join without an ON condition")
		}

		schema := append(append(ra.Schema{}, left.Schema()...), right.Schema()...)
		cond, err := exprToExpression(t.Condition.On, schema)
		if err != nil {
			return nil, err
		}
		thetaCond := ra.JoinCondition{Kind: ra.ThetaJoin, Expression: cond}

		switch t.Join {
		case sqlparser.JoinStr, sqlparser.StraightJoinStr:
			return plan.NewInnerJoin(left, right, thetaCond), nil
		case sqlparser.LeftJoinStr:
			return plan.NewLeftOuterJoin(left, right, thetaCond), nil
		case sqlparser.RightJoinStr:
			return plan.NewRightOuterJoin(left, right, thetaCond), nil
		default:
			return nil, errors.Errorf("unsupported join type: %s", t.Join)
		}

	default:
		return nil, errors.Errorf("unsupported table expression: %#v", te)
	}
}

func whereToSelection(w *sqlparser.Where, child ra.Node) (ra.Node, error) {
	cond, err := exprToExpression(w.Expr, child.Schema())
	if err != nil {
		return nil, err
	}
	return plan.NewSelection(child, cond), nil
}

func selectExprsToProjection(se sqlparser.SelectExprs, child ra.Node) (ra.Node, error) {
	if len(se) == 1 {
		if _, ok := se[0].(*sqlparser.StarExpr); ok {
			return child, nil
		}
	}

	exprs := make([]ra.Expression, len(se))
	for i, e := range se {
		aliased, ok := e.(*sqlparser.AliasedExpr)
		if !ok {
			return nil, errors.Errorf("unsupported select expression: %#v", e)
		}
		expr, err := exprToExpression(aliased.Expr, child.Schema())
		if err != nil {
			return nil, err
		}
		exprs[i] = expr
	}
	return plan.NewProjection(child, exprs), nil
}

func orderByToOrderBy(ob sqlparser.OrderBy, child ra.Node) (ra.Node, error) {
	fields := make([]plan.SortField, len(ob))
	for i, o := range ob {
		e, err := exprToExpression(o.Expr, child.Schema())
		if err != nil {
			return nil, err
		}
		fields[i] = plan.SortField{Column: e, Ascending: o.Direction != sqlparser.DescScr}
	}
	return plan.NewOrderBy(child, fields), nil
}

// limitToSelection lowers LIMIT n OFFSET k to a selection on a synthetic
// rownum value expression: rownum > k ∧ rownum ≤ n+k, with n = -1 meaning
// "no upper bound".
func limitToSelection(lim *sqlparser.Limit, child ra.Node) (ra.Node, error) {
	n := int64(-1)
	if lim.Rowcount != nil {
		parsed, err := intLiteral(lim.Rowcount)
		if err != nil {
			return nil, errors.Wrap(err, "LIMIT")
		}
		n = parsed
	}

	k := int64(0)
	if lim.Offset != nil {
		parsed, err := intLiteral(lim.Offset)
		if err != nil {
			return nil, errors.Wrap(err, "OFFSET")
		}
		k = parsed
	}

	rownum := expression.NewColumnValue("rownum", "", ra.NumberType)
	lowerBound := expression.Comparison(">", rownum, expression.NewConstant(float64(k), ra.NumberType))
	if n < 0 {
		return plan.NewSelection(child, lowerBound), nil
	}

	upperBound := expression.Comparison("<=", rownum, expression.NewConstant(float64(n+k), ra.NumberType))
	return plan.NewSelection(child, expression.And(lowerBound, upperBound)), nil
}

func intLiteral(e sqlparser.Expr) (int64, error) {
	v, ok := e.(*sqlparser.SQLVal)
	if !ok || v.Type != sqlparser.IntVal {
		return 0, errors.New("expected an integer literal")
	}
	return strconv.ParseInt(string(v.Val), 10, 64)
}

func exprToExpression(e sqlparser.Expr, schema ra.Schema) (ra.Expression, error) {
	switch v := e.(type) {
	case *sqlparser.ParenExpr:
		return exprToExpression(v.Expr, schema)

	case *sqlparser.AndExpr:
		left, err := exprToExpression(v.Left, schema)
		if err != nil {
			return nil, err
		}
		right, err := exprToExpression(v.Right, schema)
		if err != nil {
			return nil, err
		}
		return expression.And(left, right), nil

	case *sqlparser.OrExpr:
		left, err := exprToExpression(v.Left, schema)
		if err != nil {
			return nil, err
		}
		right, err := exprToExpression(v.Right, schema)
		if err != nil {
			return nil, err
		}
		return expression.Or(left, right), nil

	case *sqlparser.NotExpr:
		inner, err := exprToExpression(v.Expr, schema)
		if err != nil {
			return nil, err
		}
		return expression.Not(inner), nil

	case *sqlparser.ComparisonExpr:
		return comparisonExprToExpression(v, schema)

	case *sqlparser.ColName:
		return colNameToColumnValue(v, schema)

	case *sqlparser.SQLVal:
		return sqlValToConstant(v)

	default:
		return nil, errors.Errorf("unsupported expression: %#v", e)
	}
}

func comparisonExprToExpression(c *sqlparser.ComparisonExpr, schema ra.Schema) (ra.Expression, error) {
	left, err := exprToExpression(c.Left, schema)
	if err != nil {
		return nil, err
	}
	right, err := exprToExpression(c.Right, schema)
	if err != nil {
		return nil, err
	}

	op, ok := comparisonOperators[c.Operator]
	if !ok {
		return nil, errors.Errorf("unsupported comparison operator: %s", c.Operator)
	}
	return expression.Comparison(op, left, right), nil
}

func colNameToColumnValue(c *sqlparser.ColName, schema ra.Schema) (ra.Expression, error) {
	name := c.Name.String()
	qualifier := c.Qualifier.Name.String()

	idx := schema.IndexOf(name, qualifier)
	if idx < 0 {
		idx = schema.IndexOf(name, "")
	}
	if idx < 0 {
		return nil, errors.Errorf("unknown column %q", name)
	}

	col := schema[idx]
	return expression.NewColumnValue(col.Name, col.Source, col.Type), nil
}

func sqlValToConstant(v *sqlparser.SQLVal) (ra.Expression, error) {
	switch v.Type {
	case sqlparser.StrVal:
		return expression.NewConstant(string(v.Val), ra.StringType), nil
	case sqlparser.IntVal, sqlparser.FloatVal:
		n, err := strconv.ParseFloat(string(v.Val), 64)
		if err != nil {
			return nil, errors.Wrap(err, "numeric literal")
		}
		return expression.NewConstant(n, ra.NumberType), nil
	default:
		return nil, errors.Errorf("unsupported literal type: %d", v.Type)
	}
}

func warnOnCrossJoinSize(join *plan.CrossJoin) {
	left := estimateRows(join.Left)
	right := estimateRows(join.Right)
	if left < 0 || right < 0 {
		return
	}
	if left*right > maxCrossJoinProduct {
		join.AddWarning("cross join row product exceeds the 1,000,000-row advisory threshold", join.Region())
	}
}

// estimateRows gives a best-effort cardinality estimate for the row-product
// warning, walking down through the node shapes that preserve a leaf
// relation's row count exactly. It returns -1 ("unknown") for anything
// else rather than guess.
func estimateRows(n ra.Node) int {
	switch t := n.(type) {
	case *plan.Relation:
		return len(t.Handle().Rows())
	case *plan.RenameRelation:
		return estimateRows(t.Child)
	case *plan.CrossJoin:
		l, r := estimateRows(t.Left), estimateRows(t.Right)
		if l < 0 || r < 0 {
			return -1
		}
		return l * r
	default:
		return -1
	}
}
