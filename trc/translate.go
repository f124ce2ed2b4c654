package trc

import (
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"

	"github.com/relq/relq/catalog"
	"github.com/relq/relq/ra"
	"github.com/relq/relq/ra/expression"
	"github.com/relq/relq/ra/plan"
	"github.com/relq/relq/raeval"
)

// Translate implements the public contract of 4.1.1: lowering a TRC set
// expression into an RA tree against cat. It fails when a referenced
// relation is absent, a tuple variable is used without a binding, or
// negation is applied to a node that cannot carry it.
func Translate(root *SetExpr, cat catalog.Catalog) (ra.Node, error) {
	e, err := buildEnv(root.Formula)
	if err != nil {
		return nil, err
	}

	id := uuid.NewV4()
	corrID := id.String()

	t := &translator{
		cat: cat,
		env: e,
		log: logrus.WithField("correlation_id", corrID),
	}
	return t.translateSetExpr(root)
}

// translator carries the state one Translate call threads through its
// recursion: the catalog, the write-once reference environment built by
// the pre-pass, the outer tuple variable t* (fixed once the root set
// expression is entered), and a correlation-tagged logger.
type translator struct {
	cat      catalog.Catalog
	env      env
	outerVar string
	log      *logrus.Entry
}

func (t *translator) translateSetExpr(root *SetExpr) (ra.Node, error) {
	t.outerVar = root.Variable

	baseName, ok := t.env[root.Variable]
	if !ok {
		return nil, ErrUnboundVariable.New(root.Variable, root.Region())
	}

	base, err := t.lookup(baseName, root.Region())
	if err != nil {
		return nil, err
	}

	a, err := t.rec(root.Formula, base, false)
	if err != nil {
		return nil, err
	}

	if len(root.Projections) == 0 {
		return a, nil
	}

	exprs := make([]ra.Expression, len(root.Projections))
	for i, col := range root.Projections {
		typ, err := t.attrType(root.Variable, col, root.Region())
		if err != nil {
			return nil, err
		}
		exprs[i] = expression.NewColumnValue(col, baseName, typ)
	}
	return plan.NewProjection(a, exprs), nil
}

// lookup resolves relName through the catalog and wraps a defensive copy
// of its handle as a fresh Relation leaf.
func (t *translator) lookup(relName string, r ra.CodeRegion) (ra.Node, error) {
	handle, err := t.cat.Relation(relName)
	if err != nil {
		return nil, ErrUnknownRelation.New(relName, r)
	}
	node := plan.NewRelation(handle.Copy())
	node.SetRegion(r)
	return node, nil
}

// rec is the recursive heart of the TRC-to-RA translation. base is the
// current universe of tuples; negated is whether an odd number of
// pending negations sit above node.
func (t *translator) rec(node Node, base ra.Node, negated bool) (ra.Node, error) {
	t.log.WithFields(logrus.Fields{
		"node":    typeName(node),
		"negated": negated,
		"outer":   t.outerVar,
	}).Debug("trc: rec")

	switch n := node.(type) {
	case *RelationPredicate:
		if negated {
			return nil, ErrNegatedRelationPredicate.New(n.Region())
		}
		return t.lookup(n.Relation, n.Region())

	case *Negation:
		return t.rec(n.Formula, base, !negated)

	case *LogicalExpression:
		return t.recLogical(n, base, negated)

	case *QuantifiedExpression:
		return t.recQuantified(n, base, negated)

	case *Predicate:
		return t.recPredicate(n, base, negated)

	default:
		return nil, ErrUnsupportedNode.New(node, node.Region())
	}
}

func typeName(n Node) string {
	switch n.(type) {
	case *RelationPredicate:
		return "RelationPredicate"
	case *Negation:
		return "Negation"
	case *LogicalExpression:
		return "LogicalExpression"
	case *QuantifiedExpression:
		return "QuantifiedExpression"
	case *Predicate:
		return "Predicate"
	default:
		return "unknown"
	}
}

// recLogical implements the three De Morgan normalisation rules that run
// before descending into `Φ op Ψ`, so the recursion never needs to
// represent a negated relation predicate.
func (t *translator) recLogical(n *LogicalExpression, base ra.Node, negated bool) (ra.Node, error) {
	if _, ok := n.Left.(*RelationPredicate); ok {
		return t.rec(n.Right, base, negated)
	}

	switch n.Operator {
	case Implies:
		if negated {
			rewritten := NewLogicalExpression(And, n.Left, NewNegation(n.Right, n.Region()), n.Region())
			return t.rec(rewritten, base, false)
		}
		rewritten := NewLogicalExpression(Or, NewNegation(n.Left, n.Region()), n.Right, n.Region())
		return t.rec(rewritten, base, false)

	case Or:
		if negated {
			rewritten := NewLogicalExpression(And, NewNegation(n.Left, n.Region()), NewNegation(n.Right, n.Region()), n.Region())
			return t.rec(rewritten, base, false)
		}
		left, err := t.rec(n.Left, base, false)
		if err != nil {
			return nil, err
		}
		right, err := t.rec(n.Right, base, false)
		if err != nil {
			return nil, err
		}
		return plan.NewUnion(left, right), nil

	case And:
		if negated {
			rewritten := NewLogicalExpression(Or, NewNegation(n.Left, n.Region()), NewNegation(n.Right, n.Region()), n.Region())
			return t.rec(rewritten, base, false)
		}
		left, err := t.rec(n.Left, base, false)
		if err != nil {
			return nil, err
		}
		right, err := t.rec(n.Right, base, false)
		if err != nil {
			return nil, err
		}
		return plan.NewIntersect(left, right), nil

	default:
		return nil, ErrUnsupportedNode.New(n, n.Region())
	}
}

// recQuantified implements QuantifiedExpression's ∀→¬∃¬ rewrite and
// splits ∃ into its uncorrelated and correlated cases.
func (t *translator) recQuantified(n *QuantifiedExpression, base ra.Node, negated bool) (ra.Node, error) {
	if n.Quantifier == ForAll {
		inner := NewQuantifiedExpression(Exists, n.Variable, NewNegation(n.Formula, n.Region()), n.Region())
		return t.rec(inner, base, !negated)
	}

	if base == nil {
		return nil, ErrNullBase.New(n.Region())
	}

	relName, ok := t.env[n.Variable]
	if !ok {
		return nil, ErrUnboundVariable.New(n.Variable, n.Region())
	}

	q, err := t.lookup(relName, n.Region())
	if err != nil {
		return nil, err
	}

	bPrime := plan.NewCrossJoin(q, base)
	if err := bPrime.Check(); err != nil {
		return nil, err
	}

	if !mentionsVar(n.Formula, t.outerVar) {
		return t.recUncorrelatedExists(n, bPrime, base, negated)
	}
	return t.recCorrelatedExists(n, bPrime, base, negated)
}

// recUncorrelatedExists handles the uncorrelated case: Φ does not
// mention t*. The existential's truth value is the same for every tuple
// of base, so the translator live-evaluates the subformula's cardinality
// and produces a schema-preserving all-or-nothing gate.
func (t *translator) recUncorrelatedExists(n *QuantifiedExpression, bPrime, base ra.Node, negated bool) (ra.Node, error) {
	r, err := t.rec(n.Formula, bPrime, false)
	if err != nil {
		return nil, err
	}
	if err := r.Check(); err != nil {
		return nil, err
	}

	rows, err := raeval.Eval(r, t.cat)
	if err != nil {
		return nil, err
	}

	zero := plan.NewDifference(base, base)
	all := plan.NewUnion(base, plan.NewSemiJoin(base, r, plan.LeftSide))

	if (len(rows) > 0) != negated {
		return all, nil
	}
	return zero, nil
}

// recCorrelatedExists implements Case B: Φ mentions t*.
func (t *translator) recCorrelatedExists(n *QuantifiedExpression, bPrime, base ra.Node, negated bool) (ra.Node, error) {
	r, err := t.rec(n.Formula, bPrime, false)
	if err != nil {
		return nil, err
	}

	if !negated {
		return plan.NewSemiJoin(base, r, plan.LeftSide), nil
	}
	return plan.NewDifference(base, plan.NewSemiJoin(base, r, plan.LeftSide)), nil
}

// recPredicate implements the comparison-predicate rule. The
// negated=false branch is expressed as
// Difference(base, Selection(base, ¬p)) rather than a direct
// Selection(base, p): rewritten this way, every leaf of the translator's
// output goes through the same "remove matching tuples" idiom, positive
// or negated, which is what keeps the two-step semi-join below a uniform
// generalisation rather than a special case.
func (t *translator) recPredicate(p *Predicate, base ra.Node, negated bool) (ra.Node, error) {
	if base == nil {
		return nil, ErrNullBase.New(p.Region())
	}

	if p.Operator == "!=" {
		normalized := NewPredicate(p.Left, "=", p.Right, p.Region())
		return t.rec(NewNegation(normalized, p.Region()), base, negated)
	}

	if _, ok := t.env[p.Left.Variable]; !ok {
		return nil, ErrUnboundVariable.New(p.Left.Variable, p.Region())
	}
	if ar, ok := p.Right.(AttrRef); ok {
		if _, ok := t.env[ar.Variable]; !ok {
			return nil, ErrUnboundVariable.New(ar.Variable, p.Region())
		}
	}

	if !negated {
		negatedExpr, err := t.convertPredicate(p, true)
		if err != nil {
			return nil, err
		}
		sel := plan.NewSelection(base, negatedExpr)
		return plan.NewDifference(base, sel), nil
	}

	positiveExpr, err := t.convertPredicate(p, false)
	if err != nil {
		return nil, err
	}
	sel := plan.NewSelection(base, positiveExpr)

	outerRelation, err := t.lookup(t.env[t.outerVar], p.Region())
	if err != nil {
		return nil, err
	}
	t1 := plan.NewSemiJoin(outerRelation, sel, plan.LeftSide)
	j2 := plan.NewSemiJoin(base, t1, plan.LeftSide)

	if mentionsOuter(p, t.outerVar) {
		return plan.NewDifference(base, j2), nil
	}
	return plan.NewDifference(base, sel), nil
}

func mentionsOuter(p *Predicate, outerVar string) bool {
	if p.Left.Variable == outerVar {
		return true
	}
	if ar, ok := p.Right.(AttrRef); ok {
		return ar.Variable == outerVar
	}
	return false
}

// mentionsVar reports whether formula contains an attribute reference to
// variable, the test that distinguishes Case A (uncorrelated) from Case
// B (correlated) for a quantified expression.
func mentionsVar(formula Node, v string) bool {
	switch n := formula.(type) {
	case *RelationPredicate:
		return false
	case *Negation:
		return mentionsVar(n.Formula, v)
	case *QuantifiedExpression:
		return mentionsVar(n.Formula, v)
	case *LogicalExpression:
		return mentionsVar(n.Left, v) || mentionsVar(n.Right, v)
	case *Predicate:
		return mentionsOuter(n, v)
	default:
		return false
	}
}

// convertPredicate implements 4.1.5: lowering a TRC comparison into a
// boolean value-expression tree, optionally wrapped in its own negation.
func (t *translator) convertPredicate(p *Predicate, negate bool) (ra.Expression, error) {
	leftType, err := t.attrType(p.Left.Variable, p.Left.Attribute, p.Region())
	if err != nil {
		return nil, err
	}
	left := expression.NewColumnValue(p.Left.Attribute, t.env[p.Left.Variable], leftType)

	var right ra.Expression
	switch rhs := p.Right.(type) {
	case AttrRef:
		rightType, err := t.attrType(rhs.Variable, rhs.Attribute, p.Region())
		if err != nil {
			return nil, err
		}
		right = expression.NewColumnValue(rhs.Attribute, t.env[rhs.Variable], rightType)
	default:
		typ, err := ra.TypeOf(rhs)
		if err != nil {
			return nil, err
		}
		converted, err := typ.Convert(rhs)
		if err != nil {
			return nil, err
		}
		right = expression.NewConstant(converted, typ)
	}

	cmp := expression.Comparison(p.Operator, left, right)
	if negate {
		return expression.Not(cmp), nil
	}
	return cmp, nil
}

// attrType resolves the declared type of variable.attribute via the
// catalog relation variable is bound to.
func (t *translator) attrType(variable, attribute string, r ra.CodeRegion) (ra.Type, error) {
	relName, ok := t.env[variable]
	if !ok {
		return nil, ErrUnboundVariable.New(variable, r)
	}
	rel, err := t.cat.Relation(relName)
	if err != nil {
		return nil, ErrUnknownRelation.New(relName, r)
	}
	idx := rel.Schema().IndexOf(attribute, relName)
	if idx < 0 {
		idx = rel.Schema().IndexOf(attribute, "")
	}
	if idx < 0 {
		return nil, ErrUnboundVariable.New(variable+"."+attribute, r)
	}
	return rel.Schema()[idx].Type, nil
}
