package css

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// Parser imports existing CSS into a StyleSheet so it can be subset rendered.
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

// Parse parses CSS text into a StyleSheet. Rules keep their order, grouped
// selectors become separate styles sharing declarations, selectors this
// package does not model are kept as raw selectors. @import, @charset,
// @layer statements and @font-face are kept verbatim, @keyframes become
// animations. @supports, @layer and @container blocks become groups next to
// media ones. The source identifies what's being parsed in logs and errors.
func (p *Parser) Parse(data []byte, source string, opts ...Option) (*StyleSheet, error) {
	sheet := NewStyleSheet(p.log, append([]Option{WithPreamble(false)}, opts...)...)
	p.log.Debug("Parsing CSS", zap.String("source", source), zap.Int("bytes", len(data)))

	segments, blocks := splitOpaqueBlocks(data)
	for i, seg := range segments {
		if err := p.parseRules(sheet, css.NewParser(parse.NewInput(bytes.NewReader(seg)), false), source); err != nil {
			return nil, err
		}
		if i < len(blocks) {
			p.parseOpaqueBlock(sheet, blocks[i])
		}
	}
	p.resolveAnimations(sheet)
	return sheet, nil
}

// parseRules parses top-level rules from parser into sheet.
func (p *Parser) parseRules(sheet *StyleSheet, parser *css.Parser, source string) error {
	var selectors []string
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if err := parser.Err(); err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("unable to parse css from %s: %w", source, err)
			}
			return nil

		case css.BeginAtRuleGrammar:
			switch name := strings.ToLower(string(data)); name {
			case "@media":
				cond := tokensText(parser.Values())
				m := sheet.Media(Condition(cond))
				n := p.parseMediaBlock(parser, m)
				p.log.Debug("Parsed @media block", zap.String("query", cond), zap.Int("rules", n))
			case "@keyframes":
				// keyframe names are case-sensitive identifiers, keep them as is
				a := &Animation{name: strings.Trim(tokensText(parser.Values()), `"'`)}
				p.parseKeyframes(parser, a)
				if a.name == "" {
					p.log.Warn("Skipping unnamed keyframes", zap.String("source", source))
				} else if err := sheet.AddAnimation(a); err != nil {
					p.log.Warn("Skipping keyframes", zap.String("source", source), zap.Error(err))
				}
			case "@font-face", "@page":
				head := joinHead(name, tokensText(parser.Values()))
				decls := p.parseDeclarations(parser)
				sheet.AddAtRule(strings.TrimSuffix(declBlock("", head, decls), "\n"))
			case "@supports", "@document":
				prelude := tokensText(parser.Values())
				n := p.parseMediaBlock(parser, sheet.group(name, prelude))
				p.log.Debug("Parsed group block", zap.String("rule", name), zap.String("prelude", prelude), zap.Int("rules", n))
			default:
				p.skipAtRuleBlock(parser)
				p.log.Debug("Skipping @-rule", zap.String("rule", name))
			}

		case css.AtRuleGrammar:
			switch name := strings.ToLower(string(data)); name {
			case "@import", "@charset", "@namespace", "@layer":
				sheet.AddAtRule(name + " " + tokensText(parser.Values()) + ";")
			default:
				p.log.Debug("Skipping @-rule", zap.String("rule", name))
			}

		case css.QualifiedRuleGrammar:
			selectors = append(selectors, parseSelectors(data, parser.Values())...)

		case css.BeginRulesetGrammar:
			selectors = append(selectors, parseSelectors(data, parser.Values())...)
			decls := p.parseDeclarations(parser)
			sheet.styles = append(sheet.styles, p.buildStyles(selectors, decls)...)
			selectors = nil
		}
	}
}

// parseSelectors extracts selector strings from token data. Only commas
// outside of parentheses and brackets separate selectors.
func parseSelectors(data []byte, values []css.Token) []string {
	var (
		selectors []string
		sb        strings.Builder
		depth     int
	)
	flush := func() {
		if s := strings.TrimSpace(sb.String()); s != "" {
			selectors = append(selectors, s)
		}
		sb.Reset()
	}

	sb.Write(data)
	for _, v := range values {
		switch v.TokenType {
		case css.FunctionToken, css.LeftParenthesisToken, css.LeftBracketToken:
			depth++
		case css.RightParenthesisToken, css.RightBracketToken:
			depth = max(0, depth-1)
		case css.CommaToken:
			if depth == 0 {
				flush()
				continue
			}
		}
		sb.Write(v.Data)
	}
	flush()
	return selectors
}

// buildStyles makes one style per selector. Selectors outside of the
// structured subset are kept as raw ones, those cascadia cannot parse
// either (":is()", ":where()") are kept verbatim so they survive subsetting.
func (p *Parser) buildStyles(selectors []string, decls []Declaration) []*Style {
	var styles []*Style
	for _, text := range selectors {
		sel, err := ParseSelector(text)
		if err != nil {
			raw, rerr := RawSelector(text)
			if rerr != nil {
				p.log.Debug("Keeping selector verbatim", zap.String("selector", text), zap.Error(rerr))
				raw = &Selector{raw: text}
			} else {
				p.log.Debug("Keeping raw selector", zap.String("selector", text), zap.Error(err))
			}
			sel = raw
		}
		st := newStyle(sel)
		for _, d := range decls {
			st.set(d.Property, d.Value)
		}
		styles = append(styles, st)
	}
	return styles
}

// parseDeclarations parses property declarations until end of the block.
func (p *Parser) parseDeclarations(parser *css.Parser) []Declaration {
	var decls []Declaration
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndRulesetGrammar, css.EndAtRuleGrammar:
			return decls

		case css.DeclarationGrammar:
			if values := parser.Values(); len(values) > 0 {
				decls = append(decls, Declaration{Property: NormalizeProperty(string(data)), Value: tokensText(values)})
			}

		case css.CustomPropertyGrammar:
			decls = append(decls, Declaration{Property: string(data), Value: tokensText(parser.Values())})
		}
	}
}

// tokensText joins tokens collapsing whitespace runs into single spaces.
func tokensText(tokens []css.Token) string {
	var sb strings.Builder
	space := false
	for _, t := range tokens {
		if t.TokenType == css.WhitespaceToken {
			space = sb.Len() > 0
			continue
		}
		if space {
			sb.WriteByte(' ')
			space = false
		}
		sb.Write(t.Data)
	}
	return strings.TrimSpace(sb.String())
}

// parseMediaBlock parses rulesets inside @media or other group block into m and returns
// number of styles added.
func (p *Parser) parseMediaBlock(parser *css.Parser, m *MediaQuery) int {
	var (
		selectors []string
		count     int
	)
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar:
			return count

		case css.BeginAtRuleGrammar:
			p.log.Warn("Skipping nested @-rule", zap.String("group", m.head()), zap.String("rule", string(data)))
			p.skipAtRuleBlock(parser)

		case css.QualifiedRuleGrammar:
			selectors = append(selectors, parseSelectors(data, parser.Values())...)

		case css.BeginRulesetGrammar:
			selectors = append(selectors, parseSelectors(data, parser.Values())...)
			styles := p.buildStyles(selectors, p.parseDeclarations(parser))
			m.styles = append(m.styles, styles...)
			count += len(styles)
			selectors = nil
		}
	}
}

// opaqueBlock is a top-level block at-rule the css grammar hands out as
// bare tokens, e.g. @layer or @container.
type opaqueBlock struct {
	name    string
	prelude string
	body    []byte
}

// structured lists block at-rules the css grammar parses itself.
var structured = map[string]bool{
	"@media": true, "@supports": true, "@document": true,
	"@keyframes": true, "@font-face": true, "@page": true,
}

// declarationRules hold declarations rather than rulesets.
var declarationRules = map[string]bool{
	"@property": true, "@counter-style": true, "@font-palette-values": true, "@viewport": true,
}

// splitOpaqueBlocks cuts opaque blocks out of src. Segments keep the text
// around them, segments[i] precedes blocks[i] and there is always one
// segment more than blocks.
func splitOpaqueBlocks(src []byte) ([][]byte, []opaqueBlock) {
	var (
		segments [][]byte
		blocks   []opaqueBlock
		prelude  []css.Token

		pos, last, start, bodyStart int
		depth                       int
		name                        string
		inPrelude, inBody           bool
	)

	lexer := css.NewLexer(parse.NewInput(bytes.NewReader(src)))
	for {
		tt, data := lexer.Next()
		if tt == css.ErrorToken {
			break
		}
		end := pos + len(data)

		switch {
		case inBody:
			switch tt {
			case css.LeftBraceToken:
				depth++
			case css.RightBraceToken:
				if depth--; depth == 0 {
					segments = append(segments, src[last:start])
					blocks = append(blocks, opaqueBlock{name: name, prelude: tokensText(prelude), body: src[bodyStart:pos]})
					last, inBody = end, false
				}
			}

		case inPrelude:
			switch tt {
			case css.SemicolonToken:
				inPrelude = false
			case css.LeftBraceToken:
				inPrelude, inBody = false, true
				depth, bodyStart = 1, end
			case css.CommentToken:
			default:
				prelude = append(prelude, css.Token{TokenType: tt, Data: bytes.Clone(data)})
			}

		case tt == css.AtKeywordToken && depth == 0:
			name = strings.ToLower(string(data))
			if !structured[unprefixed(name)] {
				inPrelude, start, prelude = true, pos, nil
			}

		case tt == css.LeftBraceToken:
			depth++
		case tt == css.RightBraceToken:
			depth = max(0, depth-1)
		}
		pos = end
	}

	if inBody {
		segments = append(segments, src[last:start])
		blocks = append(blocks, opaqueBlock{name: name, prelude: tokensText(prelude), body: src[bodyStart:pos]})
		last = pos
	}
	return append(segments, src[min(last, len(src)):]), blocks
}

// unprefixed drops vendor prefix from at-rule name, "@-webkit-keyframes"
// becomes "@keyframes".
func unprefixed(name string) string {
	if rest, ok := strings.CutPrefix(name, "@-"); ok {
		if i := strings.IndexByte(rest, '-'); i >= 0 {
			return "@" + rest[i+1:]
		}
	}
	return name
}

// parseOpaqueBlock keeps declaration at-rules verbatim and turns the rest
// into groups holding their rulesets.
func (p *Parser) parseOpaqueBlock(sheet *StyleSheet, b opaqueBlock) {
	if declarationRules[unprefixed(b.name)] {
		decls := p.parseDeclarations(css.NewParser(parse.NewInput(bytes.NewReader(b.body)), true))
		sheet.AddAtRule(strings.TrimSuffix(declBlock("", joinHead(b.name, b.prelude), decls), "\n"))
		return
	}
	n := p.parseMediaBlock(css.NewParser(parse.NewInput(bytes.NewReader(b.body)), false), sheet.group(b.name, b.prelude))
	p.log.Debug("Parsed group block", zap.String("rule", b.name), zap.String("prelude", b.prelude), zap.Int("rules", n))
}

func joinHead(name, prelude string) string {
	if prelude == "" {
		return name
	}
	return name + " " + prelude
}

// parseKeyframes parses "from", "to" and "N%" blocks of @keyframes.
func (p *Parser) parseKeyframes(parser *css.Parser, a *Animation) {
	var selectors []string
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar, css.EndAtRuleGrammar:
			return

		case css.QualifiedRuleGrammar:
			selectors = append(selectors, parseSelectors(data, parser.Values())...)

		case css.BeginRulesetGrammar:
			selectors = append(selectors, parseSelectors(data, parser.Values())...)
			st := NewStyle()
			for _, d := range p.parseDeclarations(parser) {
				st.set(d.Property, d.Value)
			}
			for _, sel := range selectors {
				percent, ok := keyframePercent(sel)
				if !ok {
					p.log.Debug("Skipping keyframe", zap.String("animation", a.Name()), zap.String("selector", sel))
					continue
				}
				a.At(percent, st)
			}
			selectors = nil
		}
	}
}

func keyframePercent(sel string) (float64, bool) {
	switch strings.ToLower(sel) {
	case "from":
		return 0, true
	case "to":
		return 100, true
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(sel, "%"), 64)
	if err != nil || !strings.HasSuffix(sel, "%") {
		return 0, false
	}
	return v, true
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			return
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

// resolveAnimations records references from animation declarations to
// keyframes defined in the same stylesheet.
func (p *Parser) resolveAnimations(sheet *StyleSheet) {
	if len(sheet.animations) == 0 {
		return
	}
	resolve := func(st *Style) {
		for _, prop := range []string{"animation", "animation-name"} {
			value, ok := st.Get(prop)
			if !ok {
				continue
			}
			for _, word := range strings.FieldsFunc(value, func(r rune) bool { return r == ',' || r == ' ' }) {
				if _, ok := sheet.Animation(word); ok {
					st.AnimationName(word)
				}
			}
		}
	}
	for _, st := range sheet.styles {
		resolve(st)
	}
	for _, m := range sheet.media {
		for _, st := range m.styles {
			resolve(st)
		}
	}
}
