// Package prefix adds vendor-prefixed declarations next to standard ones.
package prefix

import (
	"slices"
	"strings"

	"go.uber.org/zap"

	"brandcss/css"
)

// PluginName identifies the stage in the stylesheet pipeline.
const PluginName = "vendor-prefix"

// DefaultRules returns properties which still need prefixes in browsers
// supported by the design system, with vendors in output order.
func DefaultRules() map[string][]string {
	return map[string][]string{
		"appearance":               {"webkit", "moz"},
		"user-select":              {"webkit", "moz"},
		"backdrop-filter":          {"webkit"},
		"text-size-adjust":         {"webkit", "moz"},
		"mask-image":               {"webkit"},
		"mask-size":                {"webkit"},
		"mask-position":            {"webkit"},
		"mask-repeat":              {"webkit"},
		"hyphens":                  {"webkit"},
		"clip-path":                {"webkit"},
		"text-decoration-skip-ink": {"webkit"},
		"box-decoration-break":     {"webkit"},
		"print-color-adjust":       {"webkit"},
	}
}

// Prefixer is a stylesheet pipeline stage. For every declaration of a known
// property it inserts missing "-<vendor>-<property>" declarations with the
// same value right before the standard one. Custom properties are never
// prefixed and running it twice changes nothing.
type Prefixer struct {
	rules map[string][]string
	log   *zap.Logger
}

// New creates prefixer for the table. When rules is nil DefaultRules is used.
func New(rules map[string][]string, log *zap.Logger) *Prefixer {
	if rules == nil {
		rules = DefaultRules()
	}
	if log == nil {
		log = zap.NewNop()
	}
	normalized := make(map[string][]string, len(rules))
	for prop, vendors := range rules {
		vs := make([]string, 0, len(vendors))
		for _, v := range vendors {
			v = strings.Trim(strings.ToLower(v), "-")
			if v != "" && !slices.Contains(vs, v) {
				vs = append(vs, v)
			}
		}
		normalized[strings.ToLower(prop)] = vs
	}
	return &Prefixer{rules: normalized, log: log.Named("prefix")}
}

func (p *Prefixer) Name() string { return PluginName }

// Once walks the tree and adds prefixed declarations.
func (p *Prefixer) Once(root *css.Root) error {
	added := 0
	err := css.WalkDecls(root, func(d *css.Decl) error {
		added += p.prefixDecl(d)
		return nil
	})
	p.log.Debug("Vendor prefixes added", zap.String("source", root.Source), zap.Int("declarations", added))
	return err
}

func (p *Prefixer) prefixDecl(d *css.Decl) int {
	if d.IsCustomProperty() || strings.HasPrefix(d.Prop, "-") {
		return 0
	}
	vendors, ok := p.rules[strings.ToLower(d.Prop)]
	if !ok {
		return 0
	}
	parent := d.Parent()
	if parent == nil {
		return 0
	}

	var fresh []css.Node
	for _, v := range vendors {
		name := "-" + v + "-" + d.Prop
		if hasDecl(parent, name) {
			continue
		}
		fresh = append(fresh, d.CloneAs(name))
	}
	if len(fresh) == 0 {
		return 0
	}
	parent.InsertBefore(d, fresh...)
	return len(fresh)
}

func hasDecl(c css.Container, prop string) bool {
	for _, n := range c.Children() {
		if d, ok := n.(*css.Decl); ok && strings.EqualFold(d.Prop, prop) {
			return true
		}
	}
	return false
}
