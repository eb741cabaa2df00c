package css

import (
	"cmp"
	"io"
	"strings"

	"brandcss/utils/debug"
)

// WriteTo writes the stylesheet to w in document order, implementing
// io.WriterTo. Parsed nodes are written with their source formatting. Nodes
// created in code use two-space indentation, one declaration per line and a
// blank line between top-level items.
func (r *Root) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	writeChildren(cw, r.Nodes, 0)
	switch {
	case r.Raws != nil:
		cw.print(r.Raws.After)
	case len(r.Nodes) > 0:
		cw.print("\n")
	}
	return cw.n, cw.err
}

// String returns the CSS text of the stylesheet.
func (r *Root) String() string {
	var sb strings.Builder
	r.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

// Dump returns indented human readable representation of the tree.
func (r *Root) Dump() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "root %q (%d nodes)", r.Source, len(r.Nodes))
	for _, n := range r.Nodes {
		dumpNode(tw, n, 1)
	}
	for _, w := range r.Warnings {
		tw.TextBlock(1, "warning", w)
	}
	return tw.String()
}

// countingWriter remembers first error and stops writing after it.
type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (cw *countingWriter) print(parts ...string) {
	for _, s := range parts {
		if cw.err != nil {
			return
		}
		n, err := io.WriteString(cw.w, s)
		cw.n += int64(n)
		cw.err = err
	}
}

// defaultRaws returns formatting for node created in code, i is its position
// among siblings.
func defaultRaws(n Node, i, depth int) *Raws {
	indent := strings.Repeat("  ", depth)
	r := &Raws{Before: "\n" + indent, After: "\n" + indent, Between: " ", Semicolon: ";"}
	switch {
	case depth == 0 && i == 0:
		r.Before = ""
	case depth == 0:
		r.Before = "\n\n"
	case i > 0 && n.Type() == RuleNode:
		// blank line between nested blocks, declarations stay together
		r.Before = "\n\n" + indent
	}
	switch n := n.(type) {
	case *Decl:
		r.Between = ": "
		r.Important = " !important"
	case *AtRule:
		if n.Params != "" {
			r.AfterName = " "
		}
		if !n.HasBlock {
			r.Between = ""
		}
	}
	return r
}

func writeChildren(cw *countingWriter, nodes []Node, depth int) {
	for i, n := range nodes {
		writeNode(cw, n, i, depth)
	}
}

func writeNode(cw *countingWriter, n Node, i, depth int) {
	def := defaultRaws(n, i, depth)

	switch n := n.(type) {
	case *Comment:
		r := pick(n.Raws, def)
		cw.print(r.Before, n.Text)
	case *Decl:
		r := pick(n.Raws, def)
		cw.print(r.Before, n.Prop, r.Between, n.Value)
		if n.Important {
			cw.print(cmp.Or(r.Important, def.Important))
		}
		cw.print(r.Semicolon)
	case *Rule:
		r := pick(n.Raws, def)
		cw.print(r.Before, n.Selector, r.Between, "{")
		writeChildren(cw, n.Nodes, depth+1)
		cw.print(r.After, "}")
	case *AtRule:
		r := pick(n.Raws, def)
		cw.print(r.Before, n.Name, r.AfterName, n.Params, r.Between)
		if !n.HasBlock {
			cw.print(r.Semicolon)
			return
		}
		cw.print("{")
		writeChildren(cw, n.Nodes, depth+1)
		cw.print(r.After, "}")
	}
}

func pick(r, def *Raws) *Raws {
	if r != nil {
		return r
	}
	return def
}

func dumpNode(tw *debug.TreeWriter, n Node, depth int) {
	switch n := n.(type) {
	case *Comment:
		tw.TextBlock(depth, "comment", n.Text)
	case *Decl:
		tw.Line(depth, "decl %s important=%t", n.Prop, n.Important)
		tw.TextBlock(depth+1, "value", n.Value)
	case *Rule:
		tw.Line(depth, "rule (%d nodes)", len(n.Nodes))
		tw.TextBlock(depth+1, "selector", n.Selector)
		for _, c := range n.Nodes {
			dumpNode(tw, c, depth+1)
		}
	case *AtRule:
		tw.Line(depth, "atrule %s block=%t (%d nodes)", n.Name, n.HasBlock, len(n.Nodes))
		tw.TextBlock(depth+1, "params", n.Params)
		for _, c := range n.Nodes {
			dumpNode(tw, c, depth+1)
		}
	}
}
