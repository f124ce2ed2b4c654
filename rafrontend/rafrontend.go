package rafrontend

import (
	"github.com/pkg/errors"

	"github.com/relq/relq/catalog"
	"github.com/relq/relq/ra"
	"github.com/relq/relq/ra/expression"
	"github.com/relq/relq/ra/plan"
)

// maxCrossJoinProduct is the row-product threshold past which a cross
// join's estimated cardinality earns an advisory warning; the translator
// still produces the tree.
const maxCrossJoinProduct = 1000000

var booleanOperators = map[string]bool{
	"=": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"and": true, "or": true, "not": true,
}

// Translate lowers a native RA AST into the shared node vocabulary
// against cat. Each lowered node carries the source node's code region
// and parenthesization flag.
func Translate(ast Node, cat catalog.Catalog) (ra.Node, error) {
	return lower(ast, cat)
}

func lower(ast Node, cat catalog.Catalog) (ra.Node, error) {
	node, paren, err := lowerNode(ast, cat)
	if err != nil {
		return nil, err
	}
	node.SetRegion(ast.Region())
	node.SetParenthesized(paren)
	return node, nil
}

func lowerNode(ast Node, cat catalog.Catalog) (ra.Node, bool, error) {
	switch a := ast.(type) {
	case *Relation:
		handle, err := cat.Relation(a.Name)
		if err != nil {
			return nil, false, errors.Wrapf(err, "relation %q", a.Name)
		}
		return plan.NewRelation(handle.Copy()), a.Paren, nil

	case *Projection:
		child, err := lower(a.Child, cat)
		if err != nil {
			return nil, false, err
		}
		exprs, err := lowerExprs(a.Exprs, child.Schema())
		if err != nil {
			return nil, false, errors.Wrap(err, "projection list")
		}
		return plan.NewProjection(child, exprs), a.Paren, nil

	case *Selection:
		child, err := lower(a.Child, cat)
		if err != nil {
			return nil, false, err
		}
		predicate, err := lowerExpr(a.Predicate, child.Schema())
		if err != nil {
			return nil, false, errors.Wrap(err, "selection predicate")
		}
		return plan.NewSelection(child, predicate), a.Paren, nil

	case *RenameRelation:
		child, err := lower(a.Child, cat)
		if err != nil {
			return nil, false, err
		}
		return plan.NewRenameRelation(child, a.Alias), a.Paren, nil

	case *RenameColumns:
		child, err := lower(a.Child, cat)
		if err != nil {
			return nil, false, err
		}
		return plan.NewRenameColumns(child, a.Mapping), a.Paren, nil

	case *OrderBy:
		child, err := lower(a.Child, cat)
		if err != nil {
			return nil, false, err
		}
		fields := make([]plan.SortField, len(a.Fields))
		for i, f := range a.Fields {
			e, err := lowerExpr(f.Expr, child.Schema())
			if err != nil {
				return nil, false, errors.Wrap(err, "order-by key")
			}
			fields[i] = plan.SortField{Column: e, Ascending: f.Ascending}
		}
		return plan.NewOrderBy(child, fields), a.Paren, nil

	case *GroupBy:
		child, err := lower(a.Child, cat)
		if err != nil {
			return nil, false, err
		}
		groupCols, err := lowerExprs(a.GroupCols, child.Schema())
		if err != nil {
			return nil, false, errors.Wrap(err, "group-by columns")
		}
		aggregates, err := lowerExprs(a.Aggregates, child.Schema())
		if err != nil {
			return nil, false, errors.Wrap(err, "aggregate list")
		}
		return plan.NewGroupBy(child, groupCols, aggregates), a.Paren, nil

	case *Join:
		return lowerJoin(a, cat)

	case *SetOp:
		left, err := lower(a.Left, cat)
		if err != nil {
			return nil, false, err
		}
		right, err := lower(a.Right, cat)
		if err != nil {
			return nil, false, err
		}
		switch a.Kind {
		case Union:
			return plan.NewUnion(left, right), a.Paren, nil
		case Intersect:
			return plan.NewIntersect(left, right), a.Paren, nil
		case Difference:
			return plan.NewDifference(left, right), a.Paren, nil
		case Division:
			return plan.NewDivision(left, right), a.Paren, nil
		default:
			return nil, false, errors.Errorf("unsupported set operator: %d", a.Kind)
		}

	default:
		return nil, false, errors.Errorf("unsupported RA AST node: %#v", ast)
	}
}

func lowerJoin(a *Join, cat catalog.Catalog) (ra.Node, bool, error) {
	left, err := lower(a.Left, cat)
	if err != nil {
		return nil, false, err
	}
	right, err := lower(a.Right, cat)
	if err != nil {
		return nil, false, err
	}

	switch a.Kind {
	case Cross, SemiLeft, SemiRight:
		if a.Condition != nil {
			return nil, false, errors.Errorf("join kind %d takes no condition", a.Kind)
		}
	}

	switch a.Kind {
	case Cross:
		join := plan.NewCrossJoin(left, right)
		warnOnCrossJoinSize(join)
		return join, a.Paren, nil
	case SemiLeft:
		return plan.NewSemiJoin(left, right, plan.LeftSide), a.Paren, nil
	case SemiRight:
		return plan.NewSemiJoin(left, right, plan.RightSide), a.Paren, nil
	}

	cond, err := decodeClause(a.Condition, left, right)
	if err != nil {
		return nil, false, errors.Wrap(err, "join condition")
	}

	switch a.Kind {
	case Inner:
		return plan.NewInnerJoin(left, right, cond), a.Paren, nil
	case LeftOuter:
		return plan.NewLeftOuterJoin(left, right, cond), a.Paren, nil
	case RightOuter:
		return plan.NewRightOuterJoin(left, right, cond), a.Paren, nil
	case FullOuter:
		return plan.NewFullOuterJoin(left, right, cond), a.Paren, nil
	case Anti:
		return plan.NewAntiJoin(left, right, cond), a.Paren, nil
	default:
		return nil, false, errors.Errorf("unsupported join operator: %d", a.Kind)
	}
}

// decodeClause lowers a raw source-notation join clause into the
// normalised JoinCondition via the shared decoder. A theta clause
// is lowered against the concatenation of both sides' schemas, since
// the predicate may mention columns of either.
func decodeClause(clause *JoinClause, left, right ra.Node) (ra.JoinCondition, error) {
	raw := ra.RawJoinCondition{IsNull: clause == nil}
	if clause != nil {
		raw.Columns = clause.Columns
		if clause.Theta != nil {
			if len(clause.Columns) > 0 {
				return ra.JoinCondition{}, errors.New("a join clause may restrict columns or carry a theta predicate, not both")
			}
			schema := append(append(ra.Schema{}, left.Schema()...), right.Schema()...)
			theta, err := lowerExpr(clause.Theta, schema)
			if err != nil {
				return ra.JoinCondition{}, err
			}
			raw.Theta = theta
		}
	}
	return ra.DecodeJoinCondition(raw), nil
}

func lowerExprs(exprs []Expr, schema ra.Schema) ([]ra.Expression, error) {
	out := make([]ra.Expression, len(exprs))
	for i, e := range exprs {
		lowered, err := lowerExpr(e, schema)
		if err != nil {
			return nil, err
		}
		out[i] = lowered
	}
	return out, nil
}

func lowerExpr(e Expr, schema ra.Schema) (ra.Expression, error) {
	switch v := e.(type) {
	case ColumnRef:
		idx := schema.IndexOf(v.Column, v.Relation)
		if idx < 0 {
			idx = schema.IndexOf(v.Column, "")
		}
		if idx < 0 {
			return nil, errors.Errorf("unknown column %q", v.Column)
		}
		col := schema[idx]
		return expression.NewColumnValue(col.Name, col.Source, col.Type), nil

	case Literal:
		typ, err := ra.TypeOf(v.Value)
		if err != nil {
			return nil, errors.Wrap(err, "literal")
		}
		converted, err := typ.Convert(v.Value)
		if err != nil {
			return nil, errors.Wrap(err, "literal")
		}
		return expression.NewConstant(converted, typ), nil

	case Apply:
		args, err := lowerExprs(v.Args, schema)
		if err != nil {
			return nil, err
		}
		typ, err := applyType(v, args)
		if err != nil {
			return nil, err
		}
		return expression.NewOperator(typ, v.Name, args...), nil

	default:
		return nil, errors.Errorf("unsupported value expression: %#v", e)
	}
}

// applyType tags an operator application: comparisons and connectives
// are boolean, anything else takes its first argument's type (the RA
// notation has no other sources of type information at this point).
func applyType(a Apply, args []ra.Expression) (ra.Type, error) {
	if booleanOperators[a.Name] {
		return ra.BooleanType, nil
	}
	if len(args) == 0 {
		return nil, errors.Errorf("operator %q has no arguments to infer a type from", a.Name)
	}
	return args[0].Type(), nil
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

// estimateRows walks down the node shapes that preserve a leaf
// relation's row count exactly, returning -1 ("unknown") for anything
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
