package ra

import (
	"fmt"
	"strings"
)

// TreePrinter renders a Node tree as indented ASCII art. Every node's
// String method builds one of these and writes itself and its children.
type TreePrinter struct {
	node     string
	children []string
}

// NewTreePrinter returns an empty printer.
func NewTreePrinter() *TreePrinter {
	return &TreePrinter{}
}

// WriteNode sets this printer's own node label.
func (p *TreePrinter) WriteNode(format string, args ...interface{}) {
	p.node = fmt.Sprintf(format, args...)
}

// WriteChildren appends the already-rendered String() of each child.
func (p *TreePrinter) WriteChildren(children ...string) {
	p.children = append(p.children, children...)
}

func (p *TreePrinter) String() string {
	if len(p.children) == 0 {
		return p.node
	}

	var sb strings.Builder
	sb.WriteString(p.node)
	for i, c := range p.children {
		lines := strings.Split(c, "\n")
		for j, line := range lines {
			sb.WriteByte('\n')
			if j == 0 {
				sb.WriteString(" ├─ ")
			} else if i == len(p.children)-1 {
				sb.WriteString("    ")
			} else {
				sb.WriteString(" │  ")
			}
			sb.WriteString(line)
		}
	}
	return sb.String()
}
