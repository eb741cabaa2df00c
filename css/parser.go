package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser parses CSS stylesheets into node trees.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a tree rooted at Root. Document order, comments,
// custom properties and nesting of at-rules are preserved together with all
// source text around nodes, so serializing the tree gives back data unchanged.
// Recoverable syntax problems are collected in Root.Warnings, anything else is
// returned as error. The optional source parameter identifies what's being
// parsed.
func (p *Parser) Parse(data []byte, source ...string) (*Root, error) {
	var name string
	if len(source) > 0 {
		name = source[0]
	}
	root := NewRoot(name)
	root.Raws = &Raws{}

	if name != "" {
		p.log.Debug("Parsing CSS", zap.String("source", name), zap.Int("bytes", len(data)))
	}

	toks, err := tokenize(data)
	if err != nil {
		return nil, fmt.Errorf("unable to parse stylesheet %q: %w", name, err)
	}

	b := &builder{toks: toks, root: root}
	b.block(root, root.Raws, true)
	for _, w := range root.Warnings {
		p.log.Debug("CSS syntax problem", zap.String("source", name), zap.String("warning", w))
	}
	return root, nil
}

type token struct {
	tt   css.TokenType
	data string
}

// tokenize splits data into lexer tokens. Concatenated tokens are equal to
// data.
func tokenize(data []byte) ([]token, error) {
	lex := css.NewLexer(parse.NewInput(bytes.NewReader(data)))
	var toks []token
	for {
		tt, text := lex.Next()
		if tt == css.ErrorToken {
			if err := lex.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, err
			}
			return toks, nil
		}
		toks = append(toks, token{tt: tt, data: string(text)})
	}
}

func concat(toks []token) string {
	var sb strings.Builder
	for _, t := range toks {
		sb.WriteString(t.data)
	}
	return sb.String()
}

// trimSpace splits whitespace tokens off both ends of toks.
func trimSpace(toks []token) (lead, body, trail []token) {
	i, j := 0, len(toks)
	for i < j && toks[i].tt == css.WhitespaceToken {
		i++
	}
	for j > i && toks[j-1].tt == css.WhitespaceToken {
		j--
	}
	return toks[:i], toks[i:j], toks[j:]
}

// builder turns token stream into a tree.
type builder struct {
	toks []token
	pos  int
	root *Root
}

func (b *builder) warn(format string, args ...any) {
	b.root.Warnings = append(b.root.Warnings, fmt.Sprintf(format, args...))
}

// block fills c with statements until the closing brace or end of input.
// Text after the last child ends up in raws.After. It returns false when end
// of input was reached first.
func (b *builder) block(c Container, raws *Raws, top bool) bool {
	var before strings.Builder
	for b.pos < len(b.toks) {
		t := b.toks[b.pos]
		switch t.tt {
		case css.WhitespaceToken, css.SemicolonToken, css.CDOToken, css.CDCToken:
			before.WriteString(t.data)
			b.pos++

		case css.CommentToken:
			c.Append(&Comment{Text: t.data, Raws: &Raws{Before: before.String()}})
			before.Reset()
			b.pos++

		case css.RightBraceToken:
			b.pos++
			if top {
				b.warn("unexpected closing brace")
				before.WriteString(t.data)
				continue
			}
			raws.After = before.String()
			return true

		case css.AtKeywordToken:
			b.atRule(c, before.String())
			before.Reset()

		default:
			if junk, ok := b.statement(c, before.String()); ok {
				before.Reset()
			} else {
				before.WriteString(junk)
			}
		}
	}
	raws.After = before.String()
	return top
}

// scan returns index of the first token ending a statement which starts at
// from: ';' outside of parentheses, '{' or '}'. With braces set curly blocks
// are part of the statement (custom property values). When nothing is found
// length of the token stream is returned.
func (b *builder) scan(from int, braces bool) int {
	parens, curly := 0, 0
	for i := from; i < len(b.toks); i++ {
		switch b.toks[i].tt {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			parens++
		case css.RightParenthesisToken, css.RightBracketToken:
			if parens > 0 {
				parens--
			}
		case css.LeftBraceToken:
			if !braces {
				return i
			}
			curly++
		case css.RightBraceToken:
			if curly == 0 {
				return i
			}
			curly--
		case css.SemicolonToken:
			if parens == 0 && curly == 0 {
				return i
			}
		}
	}
	return len(b.toks)
}

// colonAt returns index of the colon following property name at from,
// skipping whitespace and comments, or -1.
func (b *builder) colonAt(from, end int) int {
	for i := from + 1; i < end; i++ {
		switch b.toks[i].tt {
		case css.WhitespaceToken, css.CommentToken:
		case css.ColonToken:
			return i
		default:
			return -1
		}
	}
	return -1
}

// statement parses declaration or qualified rule starting at current
// position. When neither could be recognized the statement text is consumed
// and returned with false.
func (b *builder) statement(c Container, before string) (string, bool) {
	start := b.pos
	first := b.toks[start]

	if first.tt == css.CustomPropertyNameToken {
		end := b.scan(start, true)
		if colon := b.colonAt(start, end); colon > 0 {
			b.decl(c, before, colon, end)
			return "", true
		}
	}

	end := b.scan(start, false)
	if end < len(b.toks) && b.toks[end].tt == css.LeftBraceToken {
		b.rule(c, before, end)
		return "", true
	}
	if first.tt == css.IdentToken {
		if colon := b.colonAt(start, end); colon > 0 {
			b.decl(c, before, colon, end)
			return "", true
		}
	}

	junk := concat(b.toks[start:end])
	b.warn("unknown word %q", strings.TrimSpace(junk))
	b.pos = end
	if end < len(b.toks) && b.toks[end].tt == css.SemicolonToken {
		junk += b.toks[end].data
		b.pos++
	}
	return junk, false
}

// decl builds declaration from tokens between current position and end,
// colon is the index of the colon after property name.
func (b *builder) decl(c Container, before string, colon, end int) {
	prop := b.toks[b.pos]
	raws := &Raws{Before: before}

	rest := b.toks[colon+1 : end]
	lead, body, trail := trimSpace(rest)
	raws.Between = concat(b.toks[b.pos+1:colon+1]) + concat(lead)

	d := &Decl{Prop: prop.data, Raws: raws}
	if value, important, ok := splitImportant(body); ok {
		d.Important = true
		raws.Important = concat(important)
		body = value
	}
	d.Value = concat(body)
	raws.Semicolon = concat(trail)

	b.pos = end
	if end < len(b.toks) && b.toks[end].tt == css.SemicolonToken {
		raws.Semicolon += b.toks[end].data
		b.pos++
	}
	c.Append(d)
}

// rule builds qualified rule with selector between current position and the
// opening brace at open.
func (b *builder) rule(c Container, before string, open int) {
	_, sel, trail := trimSpace(b.toks[b.pos:open])
	raws := &Raws{Before: before, Between: concat(trail)}
	r := &Rule{Selector: concat(sel), Raws: raws}
	c.Append(r)

	b.pos = open + 1
	if !b.block(r, raws, false) {
		b.warn("unclosed block of %q", r.Selector)
	}
}

// atRule builds at-rule starting at current position.
func (b *builder) atRule(c Container, before string) {
	name := b.toks[b.pos].data
	b.pos++

	end := b.scan(b.pos, false)
	lead, params, trail := trimSpace(b.toks[b.pos:end])
	raws := &Raws{Before: before, AfterName: concat(lead), Between: concat(trail)}
	at := &AtRule{Name: name, Params: concat(params), Raws: raws}
	c.Append(at)

	b.pos = end
	if end == len(b.toks) {
		return
	}
	switch b.toks[end].tt {
	case css.SemicolonToken:
		raws.Semicolon = b.toks[end].data
		b.pos++
	case css.LeftBraceToken:
		at.HasBlock = true
		b.pos++
		if !b.block(at, raws, false) {
			b.warn("unclosed block of %s", at.Name)
		}
	}
}

// splitImportant splits trailing "!important" off declaration value tokens.
// Returned important part starts with the whitespace in front of '!'.
func splitImportant(toks []token) (value, important []token, ok bool) {
	end := len(toks)
	if end < 2 {
		return toks, nil, false
	}
	last := toks[end-1]
	if last.tt != css.IdentToken || !strings.EqualFold(last.data, "important") {
		return toks, nil, false
	}
	i := end - 2
	for i >= 0 && toks[i].tt == css.WhitespaceToken {
		i--
	}
	if i < 0 || toks[i].tt != css.DelimToken || toks[i].data != "!" {
		return toks, nil, false
	}
	for i > 0 && toks[i-1].tt == css.WhitespaceToken {
		i--
	}
	return toks[:i], toks[i:], true
}
