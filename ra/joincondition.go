package ra

// JoinKind distinguishes a natural join (equates like-named columns, or a
// restricted subset of them) from a theta join (parametric on an arbitrary
// boolean predicate).
type JoinKind int

const (
	// NaturalJoin equates columns of the same name on both sides, or, if
	// RestrictToColumns is non-nil, just that subset of them.
	NaturalJoin JoinKind = iota
	// ThetaJoin is parametric on Expression, an arbitrary boolean-typed
	// value expression over both sides' columns.
	ThetaJoin
)

// JoinCondition is the normalised form of a join's ON-clause, decoded from
// any of the three shapes a front end may carry: a null (plain
// natural join), a list of column names (natural join restricted to those
// columns), or a boolean expression (theta join).
type JoinCondition struct {
	Kind              JoinKind
	RestrictToColumns []string
	Expression        Expression
}

// Natural is the implicit, unrestricted natural-join condition every
// SemiJoin the TRC translator builds uses.
func Natural() JoinCondition {
	return JoinCondition{Kind: NaturalJoin}
}

// RawJoinCondition is the three-shaped input the join-condition decoder
// normalises: IsNull for a bare natural join, Columns for a
// column-restricted natural join, or Theta for a boolean-expression
// theta join. Exactly one of
// Columns/Theta should be set; IsNull takes precedence if both are empty.
type RawJoinCondition struct {
	IsNull  bool
	Columns []string
	Theta   Expression
}

// DecodeJoinCondition normalises the optional condition syntax a SQL or
// RA-AST join clause carries into a JoinCondition.
func DecodeJoinCondition(raw RawJoinCondition) JoinCondition {
	if raw.Theta != nil {
		return JoinCondition{Kind: ThetaJoin, Expression: raw.Theta}
	}
	if len(raw.Columns) > 0 {
		return JoinCondition{Kind: NaturalJoin, RestrictToColumns: raw.Columns}
	}
	return Natural()
}
