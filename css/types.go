package css

import (
	"slices"
	"strings"
)

// NodeType identifies the kind of stylesheet node.
type NodeType int

const (
	RootNode    NodeType = iota // Whole stylesheet
	RuleNode                    // Selector + declaration block
	AtRuleNode                  // @media, @import, @font-face, ...
	DeclNode                    // property: value
	CommentNode                 // /* ... */
)

// String returns the short name of the node type.
func (t NodeType) String() string {
	switch t {
	case RootNode:
		return "root"
	case RuleNode:
		return "rule"
	case AtRuleNode:
		return "atrule"
	case DeclNode:
		return "decl"
	case CommentNode:
		return "comment"
	default:
		return "unknown"
	}
}

// CustomPropertyPrefix starts the name of every custom property declaration.
const CustomPropertyPrefix = "--"

// Node is a single unit of parsed stylesheet structure.
type Node interface {
	Type() NodeType
	Parent() Container
	setParent(Container)
}

// Container is a node which owns an ordered list of child nodes.
type Container interface {
	Node
	Children() []Node
	Append(nodes ...Node)
	InsertBefore(mark Node, nodes ...Node) bool
	Remove(n Node) bool
}

// Texter is implemented by nodes exposing a value-like text field: rule
// selectors, at-rule parameters and declaration values. Structural fields
// are never reachable through it.
type Texter interface {
	Node
	Text() string
	SetText(string)
}

// Raws keeps source text around the value-like fields of a parsed node, so
// writing the tree back reproduces input byte for byte. Nodes created in code
// have nil Raws and are written in default format.
type Raws struct {
	Before    string // whitespace and stray text before the node
	AfterName string // at-rule: between name and parameters
	Between   string // decl: from property up to value; rule and at-rule: before '{' or ';'
	Important string // decl: "!important" as written, with space in front of it
	Semicolon string // decl and block-less at-rule: trailing text up to and including ';'
	After     string // containers: text after the last child
}

// Clone returns a copy of r, nil stays nil.
func (r *Raws) Clone() *Raws {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

type base struct {
	parent Container
}

func (b *base) Parent() Container     { return b.parent }
func (b *base) setParent(c Container) { b.parent = c }

// block keeps children of a container node in document order.
type block struct {
	Nodes []Node
}

func (b *block) Children() []Node { return b.Nodes }

func (b *block) index(n Node) int {
	return slices.IndexFunc(b.Nodes, func(c Node) bool { return c == n })
}

// Root is the top of a parsed stylesheet.
type Root struct {
	base
	block
	Source   string   // Name of the stylesheet source, for diagnostics
	Warnings []string // Recoverable problems found while parsing
	Raws     *Raws
}

// NewRoot returns an empty stylesheet.
func NewRoot(source string) *Root {
	return &Root{Source: source}
}

func (r *Root) Type() NodeType { return RootNode }

func (r *Root) Append(nodes ...Node)                       { appendTo(r, &r.block, nodes) }
func (r *Root) InsertBefore(mark Node, nodes ...Node) bool { return insertInto(r, &r.block, mark, nodes) }
func (r *Root) Remove(n Node) bool                         { return removeFrom(&r.block, n) }

// Rule is a qualified rule: selector followed by a declaration block.
type Rule struct {
	base
	block
	Selector string
	Raws     *Raws
}

func (r *Rule) Type() NodeType   { return RuleNode }
func (r *Rule) Text() string     { return r.Selector }
func (r *Rule) SetText(s string) { r.Selector = s }

func (r *Rule) Append(nodes ...Node)                       { appendTo(r, &r.block, nodes) }
func (r *Rule) InsertBefore(mark Node, nodes ...Node) bool { return insertInto(r, &r.block, mark, nodes) }
func (r *Rule) Remove(n Node) bool                         { return removeFrom(&r.block, n) }

// AtRule is an at-rule with optional block. Name includes the leading '@'.
type AtRule struct {
	base
	block
	Name     string
	Params   string
	HasBlock bool
	Raws     *Raws
}

func (a *AtRule) Type() NodeType   { return AtRuleNode }
func (a *AtRule) Text() string     { return a.Params }
func (a *AtRule) SetText(s string) { a.Params = s }

func (a *AtRule) Append(nodes ...Node) {
	a.HasBlock = true
	appendTo(a, &a.block, nodes)
}

func (a *AtRule) InsertBefore(mark Node, nodes ...Node) bool {
	return insertInto(a, &a.block, mark, nodes)
}

func (a *AtRule) Remove(n Node) bool { return removeFrom(&a.block, n) }

// Decl is a single property declaration.
type Decl struct {
	base
	Prop      string
	Value     string
	Important bool
	Raws      *Raws
}

func (d *Decl) Type() NodeType   { return DeclNode }
func (d *Decl) Text() string     { return d.Value }
func (d *Decl) SetText(s string) { d.Value = s }

// IsCustomProperty returns true for "--name: value" declarations.
func (d *Decl) IsCustomProperty() bool {
	return strings.HasPrefix(d.Prop, CustomPropertyPrefix)
}

// CloneAs returns detached copy of the declaration under another property
// name. Source formatting is kept and the copy is always terminated, so it may
// be inserted in front of d.
func (d *Decl) CloneAs(prop string) *Decl {
	c := &Decl{Prop: prop, Value: d.Value, Important: d.Important, Raws: d.Raws.Clone()}
	if c.Raws != nil && !strings.Contains(c.Raws.Semicolon, ";") {
		c.Raws.Semicolon = ";"
	}
	return c
}

// String returns declaration text without trailing semicolon.
func (d *Decl) String() string {
	var sb strings.Builder
	sb.WriteString(d.Prop)
	sb.WriteString(": ")
	sb.WriteString(d.Value)
	if d.Important {
		sb.WriteString(" !important")
	}
	return sb.String()
}

// Comment keeps a comment with its delimiters.
type Comment struct {
	base
	Text string
	Raws *Raws
}

func (c *Comment) Type() NodeType { return CommentNode }

func appendTo(owner Container, b *block, nodes []Node) {
	for _, n := range nodes {
		detach(n)
		n.setParent(owner)
		b.Nodes = append(b.Nodes, n)
	}
}

func insertInto(owner Container, b *block, mark Node, nodes []Node) bool {
	for _, n := range nodes {
		detach(n)
	}
	i := b.index(mark)
	if i < 0 {
		return false
	}
	for _, n := range nodes {
		n.setParent(owner)
	}
	b.Nodes = slices.Insert(b.Nodes, i, nodes...)
	return true
}

func removeFrom(b *block, n Node) bool {
	i := b.index(n)
	if i < 0 {
		return false
	}
	b.Nodes = slices.Delete(b.Nodes, i, i+1)
	n.setParent(nil)
	return true
}

// detach removes node from its current parent if any, so a node is never
// owned by two containers.
func detach(n Node) {
	if p := n.Parent(); p != nil {
		p.Remove(n)
	}
}
