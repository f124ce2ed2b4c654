package trc

// env is the reference environment E: a write-once map from tuple
// variable to relation name, built by a pre-pass over the TRC AST
// before translation proper begins.
type env map[string]string

// buildEnv walks formula and records E[v] = R for every RelationPredicate
// it finds. A later repeat of the same pair is idempotent; a second,
// different relation for an already-bound variable is an error.
func buildEnv(formula Node) (env, error) {
	e := env{}
	if err := walkEnv(formula, e); err != nil {
		return nil, err
	}
	return e, nil
}

func walkEnv(n Node, e env) error {
	switch node := n.(type) {
	case *RelationPredicate:
		if existing, ok := e[node.Variable]; ok && existing != node.Relation {
			return ErrDuplicateBinding.New(node.Variable, existing, node.Relation, node.Region())
		}
		e[node.Variable] = node.Relation
		return nil
	case *Negation:
		return walkEnv(node.Formula, e)
	case *QuantifiedExpression:
		return walkEnv(node.Formula, e)
	case *LogicalExpression:
		if err := walkEnv(node.Left, e); err != nil {
			return err
		}
		return walkEnv(node.Right, e)
	case *Predicate:
		return nil
	default:
		return ErrUnsupportedNode.New(n, n.Region())
	}
}
