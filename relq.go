// Package relq is the module's public entry point: a single Translate
// that accepts any of the three supported source notations' ASTs — TRC,
// SQL, or native RA — and dispatches to the matching translator. All
// three emit the same RA node vocabulary, so callers downstream of
// Translate never care which notation a tree came from.
package relq

import (
	"github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"
	errors "gopkg.in/src-d/go-errors.v1"
	"gopkg.in/src-d/go-vitess.v0/vt/sqlparser"

	"github.com/relq/relq/catalog"
	"github.com/relq/relq/ra"
	"github.com/relq/relq/rafrontend"
	"github.com/relq/relq/sqlfrontend"
	"github.com/relq/relq/trc"
)

// ErrUnsupportedAST is returned by Translate for an AST type none of the
// three front ends accepts.
var ErrUnsupportedAST = errors.NewKind("unsupported AST type: %T")

// Translate lowers ast into an RA tree against cat, dispatching on the
// concrete AST type: *trc.SetExpr to the TRC translator, a parsed
// *sqlparser.Select to the SQL front end, and any rafrontend.Node to the
// RA-AST identity lowering. The returned warnings are the non-fatal
// diagnostics the front end attached anywhere in the tree, flattened so
// a caller need not walk the tree to find them.
func Translate(ast interface{}, cat catalog.Catalog) (ra.Node, []ra.Warning, error) {
	log := dispatchLogger()

	var node ra.Node
	var err error
	switch a := ast.(type) {
	case *trc.SetExpr:
		log.WithField("notation", "trc").Debug("relq: dispatch")
		node, err = trc.Translate(a, cat)
	case *sqlparser.Select:
		log.WithField("notation", "sql").Debug("relq: dispatch")
		node, err = sqlfrontend.Translate(a, cat)
	case rafrontend.Node:
		log.WithField("notation", "ra").Debug("relq: dispatch")
		node, err = rafrontend.Translate(a, cat)
	default:
		return nil, nil, ErrUnsupportedAST.New(ast)
	}
	if err != nil {
		return nil, nil, err
	}
	return node, collectWarnings(node), nil
}

// dispatchLogger tags this call's log lines with a fresh correlation id,
// so a caller chaining many translations can grep one call's lines out
// of a shared log stream.
func dispatchLogger() *logrus.Entry {
	id := uuid.NewV4()
	corrID := id.String()
	return logrus.WithField("correlation_id", corrID)
}

func collectWarnings(n ra.Node) []ra.Warning {
	warnings := append([]ra.Warning(nil), n.Warnings()...)
	for _, c := range n.Children() {
		warnings = append(warnings, collectWarnings(c)...)
	}
	return warnings
}
