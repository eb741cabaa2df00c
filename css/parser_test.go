package css_test

import (
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"brandcss/css"
)

// decls collects all declarations from the tree in document order.
func decls(root *css.Root) []*css.Decl {
	var out []*css.Decl
	_ = css.WalkDecls(root, func(d *css.Decl) error {
		out = append(out, d)
		return nil
	})
	return out
}

func mustParse(t *testing.T, input string) *css.Root {
	t.Helper()
	p := css.NewParser(zaptest.NewLogger(t))
	root, err := p.Parse([]byte(input), "test.css")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return root
}

func TestParser_SimpleRule(t *testing.T) {
	root := mustParse(t, `a { color: #0176d3; }`)

	if len(root.Nodes) != 1 {
		t.Fatalf("expected 1 top-level node, got %d", len(root.Nodes))
	}
	rule, ok := root.Nodes[0].(*css.Rule)
	if !ok {
		t.Fatalf("expected *css.Rule, got %T", root.Nodes[0])
	}
	if rule.Selector != "a" {
		t.Errorf("Selector = %q, want %q", rule.Selector, "a")
	}
	if len(rule.Nodes) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(rule.Nodes))
	}
	d := rule.Nodes[0].(*css.Decl)
	if d.Prop != "color" || d.Value != "#0176d3" {
		t.Errorf("decl = %q, want %q", d.String(), "color: #0176d3")
	}
	if d.Parent() != rule {
		t.Error("declaration parent is not the rule")
	}
	if rule.Parent() != root {
		t.Error("rule parent is not the root")
	}
	if root.Source != "test.css" {
		t.Errorf("Source = %q, want %q", root.Source, "test.css")
	}
}

func TestParser_MultiTokenValue(t *testing.T) {
	root := mustParse(t, `.x { border: 1px solid #1B96FF; }`)

	ds := decls(root)
	if len(ds) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(ds))
	}
	if ds[0].Value != "1px solid #1B96FF" {
		t.Errorf("Value = %q, want %q", ds[0].Value, "1px solid #1B96FF")
	}
}

func TestParser_FunctionValue(t *testing.T) {
	root := mustParse(t, `.x { background: linear-gradient(#0176d3, #1b96ff); }`)

	ds := decls(root)
	if len(ds) != 1 {
		t.Fatalf("expected 1 declaration, got %d", len(ds))
	}
	if ds[0].Value != "linear-gradient(#0176d3, #1b96ff)" {
		t.Errorf("Value = %q", ds[0].Value)
	}
}

func TestParser_CustomProperty(t *testing.T) {
	root := mustParse(t, `:root { --brand-accent: #418fde; color: red; }`)

	ds := decls(root)
	if len(ds) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(ds))
	}
	if ds[0].Prop != "--brand-accent" {
		t.Errorf("Prop = %q, want %q", ds[0].Prop, "--brand-accent")
	}
	if !ds[0].IsCustomProperty() {
		t.Error("expected custom property")
	}
	if ds[0].Value != "#418fde" {
		t.Errorf("Value = %q, want %q", ds[0].Value, "#418fde")
	}
	if ds[1].IsCustomProperty() {
		t.Error("color must not be custom property")
	}
}

func TestParser_Important(t *testing.T) {
	root := mustParse(t, `a { color: #0176d3 !important; margin: 0; }`)

	ds := decls(root)
	if len(ds) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(ds))
	}
	if !ds[0].Important {
		t.Error("expected !important flag")
	}
	if ds[0].Value != "#0176d3" {
		t.Errorf("Value = %q, want %q", ds[0].Value, "#0176d3")
	}
	if ds[1].Important {
		t.Error("unexpected !important flag on margin")
	}
	if got := ds[0].String(); got != "color: #0176d3 !important" {
		t.Errorf("String() = %q", got)
	}
}

func TestParser_MediaBlock(t *testing.T) {
	root := mustParse(t, `@media (min-width: 48em) { .slds-button { color: #0176d3; } }`)

	if len(root.Nodes) != 1 {
		t.Fatalf("expected 1 top-level node, got %d", len(root.Nodes))
	}
	at, ok := root.Nodes[0].(*css.AtRule)
	if !ok {
		t.Fatalf("expected *css.AtRule, got %T", root.Nodes[0])
	}
	if at.Name != "@media" {
		t.Errorf("Name = %q, want @media", at.Name)
	}
	if !strings.Contains(at.Params, "min-width") {
		t.Errorf("Params = %q, expected media condition", at.Params)
	}
	if !at.HasBlock {
		t.Error("expected @media to have block")
	}
	if len(at.Nodes) != 1 {
		t.Fatalf("expected 1 nested rule, got %d", len(at.Nodes))
	}
	rule, ok := at.Nodes[0].(*css.Rule)
	if !ok {
		t.Fatalf("expected nested *css.Rule, got %T", at.Nodes[0])
	}
	if rule.Selector != ".slds-button" {
		t.Errorf("Selector = %q", rule.Selector)
	}
	if rule.Parent() != at {
		t.Error("nested rule parent is not the at-rule")
	}
}

func TestParser_BlocklessAtRule(t *testing.T) {
	root := mustParse(t, `@import url("salesforce-lightning-design-system.css");
a { color: red; }`)

	if len(root.Nodes) != 2 {
		t.Fatalf("expected 2 top-level nodes, got %d", len(root.Nodes))
	}
	at, ok := root.Nodes[0].(*css.AtRule)
	if !ok {
		t.Fatalf("expected *css.AtRule, got %T", root.Nodes[0])
	}
	if at.Name != "@import" || at.HasBlock {
		t.Errorf("unexpected at-rule %q block=%t", at.Name, at.HasBlock)
	}
	if !strings.Contains(at.Params, "salesforce-lightning-design-system.css") {
		t.Errorf("Params = %q", at.Params)
	}
}

func TestParser_FontFaceDeclarations(t *testing.T) {
	root := mustParse(t, `@font-face { font-family: "Salesforce Sans"; src: url(sans.woff2); }`)

	at, ok := root.Nodes[0].(*css.AtRule)
	if !ok {
		t.Fatalf("expected *css.AtRule, got %T", root.Nodes[0])
	}
	ds := decls(root)
	if len(ds) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(ds))
	}
	if ds[0].Parent() != at {
		t.Error("font-face declaration parent is not the at-rule")
	}
	if ds[0].Prop != "font-family" {
		t.Errorf("Prop = %q", ds[0].Prop)
	}
}

func TestParser_Keyframes(t *testing.T) {
	root := mustParse(t, `@keyframes pulse { from { color: #0176d3; } to { color: #1b96ff; } }`)

	at := root.Nodes[0].(*css.AtRule)
	if at.Name != "@keyframes" || at.Params != "pulse" {
		t.Errorf("at-rule = %q %q", at.Name, at.Params)
	}
	if len(at.Nodes) != 2 {
		t.Fatalf("expected 2 keyframe rules, got %d", len(at.Nodes))
	}
	if len(decls(root)) != 2 {
		t.Errorf("expected 2 declarations")
	}
}

func TestParser_Comment(t *testing.T) {
	root := mustParse(t, `/* brand */
a { color: red; }`)

	if len(root.Nodes) != 2 {
		t.Fatalf("expected 2 top-level nodes, got %d", len(root.Nodes))
	}
	c, ok := root.Nodes[0].(*css.Comment)
	if !ok {
		t.Fatalf("expected *css.Comment, got %T", root.Nodes[0])
	}
	if c.Text != "/* brand */" {
		t.Errorf("Text = %q", c.Text)
	}
}

func TestParser_Empty(t *testing.T) {
	p := css.NewParser(nil)
	root, err := p.Parse(nil)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(root.Nodes) != 0 {
		t.Errorf("expected no nodes, got %d", len(root.Nodes))
	}
	if root.String() != "" {
		t.Errorf("String() = %q, want empty", root.String())
	}
}

func TestParser_RoundTripExact(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"minified", `a{color:red}b{margin:0;padding:0}`},
		{"comment in value", `a{margin:0 /* x */ auto}`},
		{"upper case", `A{COLOR:Red}`},
		{"important spelling", "a{color: red  !IMPORTANT ;}"},
		{"spacing kept", "a   {\n\tcolor :  red ;\n\n\n  margin:0\n}\n\n\n"},
		{"custom property", `:root{--x:  { a: b }; --empty:;--y:#fff}`},
		{"at-rules", `@charset "UTF-8";@import url(x.css) screen;@media (min-width:48em){.x{color:blue}}`},
		{"comments", "/* a */\n/* b */a{/* c */color:red/* d */}/* e */"},
		{"selector list", "a,\nb > c:hover::before ,[data-x=\"}\"] { color : red }"},
		{"nested rule", `.a{color:red;&:hover{color:blue}}`},
		{"stray semicolons", `;;a{;color:red;;};`},
		{"unknown word", `a{*zoom:1;color:red}`},
		{"stray closing brace", `} a{color:red}`},
		{"block-less at end", `@import "x.css"`},
		{"data uri", `a{background:url(data:image/png;base64,AAAA)}`},
		{"function with semicolon string", `a{content:attr(x, ";")}`},
		{"crlf", "a {\r\n  color: red;\r\n}\r\n"},
		{"empty", ""},
		{"whitespace only", " \n\t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := mustParse(t, tt.input)
			if got := root.String(); got != tt.input {
				t.Errorf("String() = %q, want %q", got, tt.input)
			}
		})
	}
}

func TestParser_RawFields(t *testing.T) {
	root := mustParse(t, "a{margin:0 /* x */ auto}B{ COLOR : Red  !IMPORTANT }")

	ds := decls(root)
	if len(ds) != 2 {
		t.Fatalf("expected 2 declarations, got %d", len(ds))
	}
	if ds[0].Value != "0 /* x */ auto" {
		t.Errorf("Value = %q, want comment kept", ds[0].Value)
	}
	if ds[1].Prop != "COLOR" || ds[1].Value != "Red" || !ds[1].Important {
		t.Errorf("decl = %q %q important=%t", ds[1].Prop, ds[1].Value, ds[1].Important)
	}
	if ds[1].Raws.Important != "  !IMPORTANT" {
		t.Errorf("Raws.Important = %q", ds[1].Raws.Important)
	}
	if rule := root.Nodes[1].(*css.Rule); rule.Selector != "B" {
		t.Errorf("Selector = %q", rule.Selector)
	}
}

func TestParser_Warnings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown word", `a{*zoom:1}`, "unknown word"},
		{"stray brace", `}`, "unexpected closing brace"},
		{"unclosed rule", `a{color:red`, "unclosed block"},
		{"unclosed at-rule", `@media print{a{color:red}`, "unclosed block of @media"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := mustParse(t, tt.input)
			if len(root.Warnings) == 0 || !strings.Contains(strings.Join(root.Warnings, "\n"), tt.want) {
				t.Errorf("Warnings = %v, want %q", root.Warnings, tt.want)
			}
		})
	}
}

func TestParser_UnclosedBlockIsClosed(t *testing.T) {
	root := mustParse(t, `a{color:red`)
	if got := root.String(); got != `a{color:red}` {
		t.Errorf("String() = %q", got)
	}
}

func TestParser_EditedValueOnly(t *testing.T) {
	input := "/* head */\na {\n\tcolor:#0176D3 ;\n  margin : 0 /* keep */ auto\n}\n"
	root := mustParse(t, input)

	ds := decls(root)
	ds[0].SetText("#05878a")

	want := "/* head */\na {\n\tcolor:#05878a ;\n  margin : 0 /* keep */ auto\n}\n"
	if got := root.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestParser_RoundTripStable(t *testing.T) {
	input := `/* header */
@charset "UTF-8";
:root { --slds-c-button-brand-color-background: #0176d3; }
.slds-button_brand { background-color: #0176d3; border: 1px solid #0176d3 !important; }
@media (min-width: 48em) {
  .slds-card { box-shadow: 0 2px 2px rgba(0, 0, 0, 0.1); }
  .slds-card__header { padding: 0.75rem 1rem 0; }
}
`
	p := css.NewParser(zap.NewNop())

	first, err := p.Parse([]byte(input))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if out := first.String(); out != input {
		t.Errorf("serialization changed input:\n%s\nwant:\n%s", out, input)
	}
}
