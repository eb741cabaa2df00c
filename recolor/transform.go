package recolor

import (
	"sort"

	"github.com/maruel/natural"
	"go.uber.org/zap"

	"brandcss/css"
)

// PluginName identifies the transform in the stylesheet pipeline.
const PluginName = "recolor-brand"

// Transform is a stylesheet pipeline stage replacing source colors with
// target colors in every value-like text field of the tree.
//
// NOTE: not to be used concurrently, it keeps replacement statistics.
type Transform struct {
	cm    *ColorMap
	log   *zap.Logger
	stats map[string]int
}

// New creates transform for the given table. When cm is nil the built-in
// brand table is used.
func New(cm *ColorMap, log *zap.Logger) *Transform {
	if cm == nil {
		cm = DefaultColorMap()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Transform{
		cm:    cm,
		log:   log.Named("recolor"),
		stats: make(map[string]int),
	}
}

func (t *Transform) Name() string { return PluginName }

// ColorMap returns table used by the transform.
func (t *Transform) ColorMap() *ColorMap { return t.cm }

// Once recolors every node reachable from root in document order.
func (t *Transform) Once(root *css.Root) error {
	before := t.total()
	// Visit never fails
	_ = css.Walk(root, func(n css.Node) error {
		t.Visit(n)
		return nil
	})
	t.log.Debug("Stylesheet recolored", zap.String("source", root.Source), zap.Int("replacements", t.total()-before))
	return nil
}

// Visit recolors a single node. Only value-like text (selector, at-rule
// parameters, declaration value) is touched, structure of the node is not.
//
// Custom property values are always reachable through the generic value
// scan. They are scanned once more to cover traversals which could skip the
// generic step for some node kinds; the second scan finds nothing because
// targets are not source tokens.
func (t *Transform) Visit(n css.Node) {
	if tx, ok := n.(css.Texter); ok {
		t.apply(tx)
	}
	if d, ok := n.(*css.Decl); ok && d.IsCustomProperty() {
		t.apply(d)
	}
}

func (t *Transform) apply(tx css.Texter) {
	text := tx.Text()
	out, n := t.cm.replace(text, func(from string) { t.stats[from]++ })
	if n == 0 {
		return
	}
	tx.SetText(out)
	if ce := t.log.Check(zap.DebugLevel, "Recolored"); ce != nil {
		ce.Write(zap.Stringer("node", tx.Type()), zap.String("was", text), zap.String("now", out))
	}
}

// Stats returns number of replacements made so far per source token.
func (t *Transform) Stats() map[string]int {
	out := make(map[string]int, len(t.stats))
	for k, v := range t.stats {
		out[k] = v
	}
	return out
}

// LogStats reports accumulated statistics, tokens in natural order.
func (t *Transform) LogStats() {
	keys := make([]string, 0, len(t.stats))
	for k := range t.stats {
		keys = append(keys, k)
	}
	sort.Sort(natural.StringSlice(keys))
	for _, k := range keys {
		to, _ := t.cm.Lookup(k)
		t.log.Debug("Color replaced", zap.String("from", k), zap.String("to", to), zap.Int("count", t.stats[k]))
	}
}

func (t *Transform) total() int {
	var n int
	for _, v := range t.stats {
		n += v
	}
	return n
}
