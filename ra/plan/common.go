// Package plan is the tagged-variant RA node vocabulary: one Go type per
// operator, each carrying child pointers, an attached code region and a
// Check method validating the schema rules of that operator kind.
package plan

import (
	"github.com/relq/relq/ra"
)

// IsUnary reports whether node has exactly one child.
func IsUnary(node ra.Node) bool {
	return len(node.Children()) == 1
}

// IsBinary reports whether node has exactly two children.
func IsBinary(node ra.Node) bool {
	return len(node.Children()) == 2
}

func checkChild(child ra.Node) error {
	if child == nil {
		return ErrNilChild.New()
	}
	return child.Check()
}

func checkChildren(left, right ra.Node) error {
	if left == nil || right == nil {
		return ErrNilChild.New()
	}
	if err := left.Check(); err != nil {
		return err
	}
	return right.Check()
}
