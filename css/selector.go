package css

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/andybalholm/cascadia"
	"github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

// Relation connects a selector compound to its parent.
type Relation int

const (
	// Descendant is the whitespace combinator: "parent child".
	Descendant Relation = iota
	// Child is the ">" combinator: "parent>child".
	Child
)

// Attr is a single attribute condition. Empty Value means presence test.
type Attr struct {
	Key   string
	Value string
}

func (a Attr) String() string {
	if a.Value == "" {
		return "[" + a.Key + "]"
	}
	return "[" + a.Key + "=" + a.Value + "]"
}

// Selector is an immutable CSS selector: a compound of tag, id, classes,
// pseudo-states and attribute conditions, optionally attached to a parent
// selector. Raw selectors carry verbatim text instead.
type Selector struct {
	tag      string
	id       string
	classes  []string
	states   []string
	attrs    []Attr
	parent   *Selector
	relation Relation

	raw   string
	group cascadia.SelectorGroup
}

// ParseSelector parses selector text made of compounds joined by whitespace
// or ">" combinators.
func ParseSelector(text string) (*Selector, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty selector: %w", ErrSelectorSyntax)
	}
	tokens, err := tokenizeSelector(text)
	if err != nil {
		return nil, fmt.Errorf("selector %q: %w", text, err)
	}

	p := &selectorParser{text: text, tokens: tokens}
	var (
		sel *Selector
		rel = Descendant
	)
	for {
		compound, err := p.parseCompound()
		if err != nil {
			return nil, err
		}
		if sel != nil {
			compound.parent, compound.relation = sel, rel
		}
		sel = compound
		if p.done() {
			break
		}
		if rel, err = p.parseCombinator(); err != nil {
			return nil, err
		}
	}

	if sel.degenerate() {
		return nil, fmt.Errorf("selector %q: %w", text, ErrDegenerateSelector)
	}
	return sel, nil
}

// MustParseSelector is like ParseSelector but panics on error.
func MustParseSelector(text string) *Selector {
	sel, err := ParseSelector(text)
	if err != nil {
		panic(err)
	}
	return sel
}

// RawSelector accepts any selector group cascadia understands and keeps its
// text verbatim. Raw selectors are never filtered out of subsets.
func RawSelector(text string) (*Selector, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty selector: %w", ErrSelectorSyntax)
	}
	group, err := cascadia.ParseGroup(text)
	if err != nil {
		return nil, fmt.Errorf("selector %q: %w: %w", text, ErrSelectorSyntax, err)
	}
	return &Selector{raw: text, group: group}, nil
}

// NewSelector builds a single compound selector from its parts.
func NewSelector(tag, id string, classes ...string) (*Selector, error) {
	sel := &Selector{tag: tag, id: id}
	for _, c := range classes {
		if c != "" && !slices.Contains(sel.classes, c) {
			sel.classes = append(sel.classes, c)
		}
	}
	if sel.degenerate() {
		return nil, ErrDegenerateSelector
	}
	return sel, nil
}

func (s *Selector) degenerate() bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.tag != "" || cur.id != "" || len(cur.classes) > 0 {
			return false
		}
	}
	return true
}

// IsRaw reports whether selector was created with RawSelector.
func (s *Selector) IsRaw() bool { return s.raw != "" }

// Tag returns tag of the last compound.
func (s *Selector) Tag() string { return s.tag }

// ID returns id of the last compound.
func (s *Selector) ID() string { return s.id }

// States returns pseudo-states of the last compound.
func (s *Selector) States() []string { return slices.Clone(s.states) }

// Attrs returns attribute conditions of the last compound.
func (s *Selector) Attrs() []Attr { return slices.Clone(s.attrs) }

// Parent returns parent selector and relation to it, nil for a single compound.
func (s *Selector) Parent() (*Selector, Relation) { return s.parent, s.relation }

// Classes returns every class required by the selector chain, ancestors
// first, in declared order without duplicates.
func (s *Selector) Classes() []string {
	var chain []*Selector
	for cur := s; cur != nil; cur = cur.parent {
		chain = append(chain, cur)
	}
	var out []string
	for i := len(chain) - 1; i >= 0; i-- {
		for _, c := range chain[i].classes {
			if !slices.Contains(out, c) {
				out = append(out, c)
			}
		}
	}
	return out
}

// MatchesClasses reports whether every class the selector requires is
// present in used. Selectors requiring no class and raw selectors always match.
func (s *Selector) MatchesClasses(used ClassSet) bool {
	if s.IsRaw() {
		return true
	}
	for cur := s; cur != nil; cur = cur.parent {
		if !used.HasAll(cur.classes) {
			return false
		}
	}
	return true
}

// Specificity returns (ids, classes+attributes+pseudo-classes, tags).
func (s *Selector) Specificity() [3]int {
	var out [3]int
	if s.IsRaw() {
		for _, sel := range s.group {
			var cur [3]int
			for i, v := range sel.Specificity() {
				cur[i] = int(v)
			}
			if slices.Compare(cur[:], out[:]) > 0 {
				out = cur
			}
		}
		return out
	}
	for cur := s; cur != nil; cur = cur.parent {
		if cur.id != "" {
			out[0]++
		}
		out[1] += len(cur.classes) + len(cur.states) + len(cur.attrs)
		if cur.tag != "" && cur.tag != "*" {
			out[2]++
		}
	}
	return out
}

// On returns a copy of the selector with pseudo-states added to the last compound.
func (s *Selector) On(states ...string) *Selector {
	out := s.clone()
	for _, st := range states {
		if st = strings.TrimLeft(strings.TrimSpace(st), ":"); st != "" {
			out.states = append(out.states, st)
		}
	}
	return out
}

// With returns a copy of the selector with an attribute condition added.
func (s *Selector) With(key, value string) *Selector {
	out := s.clone()
	out.attrs = append(out.attrs, Attr{Key: key, Value: value})
	return out
}

// Children returns selector for direct children matching text.
func (s *Selector) Children(text string) (*Selector, error) {
	return s.nest(text, Child)
}

// Descendant returns selector for descendants matching text.
func (s *Selector) Descendant(text string) (*Selector, error) {
	return s.nest(text, Descendant)
}

// NthChild returns selector for n-th direct child matching text (1 based).
func (s *Selector) NthChild(text string, n int) (*Selector, error) {
	child, err := s.nest(text, Child)
	if err != nil {
		return nil, err
	}
	child.states = append(child.states, "nth-child("+strconv.Itoa(n)+")")
	return child, nil
}

func (s *Selector) nest(text string, rel Relation) (*Selector, error) {
	if s.IsRaw() {
		return nil, fmt.Errorf("cannot nest %q under raw selector %q: %w", text, s.raw, ErrUnsupportedSelector)
	}
	child, err := ParseSelector(text)
	if err != nil {
		return nil, err
	}
	// attach at the root of the parsed chain so "a b" nested under p becomes "p>a b"
	root := child
	for root.parent != nil {
		root = root.parent
	}
	root.parent, root.relation = s, rel
	return child, nil
}

func (s *Selector) clone() *Selector {
	out := *s
	out.classes = slices.Clone(s.classes)
	out.states = slices.Clone(s.states)
	out.attrs = slices.Clone(s.attrs)
	return &out
}

// CSS returns canonical selector text.
func (s *Selector) CSS() string {
	if s.IsRaw() {
		return s.raw
	}
	var b strings.Builder
	s.write(&b)
	return b.String()
}

func (s *Selector) String() string {
	return s.CSS()
}

func (s *Selector) write(b *strings.Builder) {
	if s.parent != nil {
		s.parent.write(b)
		if s.relation == Child {
			b.WriteByte('>')
		} else {
			b.WriteByte(' ')
		}
	}
	b.WriteString(s.tag)
	if s.id != "" {
		b.WriteString("#" + s.id)
	}
	for _, c := range s.classes {
		b.WriteString("." + c)
	}
	for _, st := range s.states {
		b.WriteString(":" + st)
	}
	for _, a := range s.attrs {
		b.WriteString(a.String())
	}
}

// Markup returns attribute text for an element matched by the last compound,
// e.g. `id="main" class="btn primary"`.
func (s *Selector) Markup() string {
	var parts []string
	if s.id != "" {
		parts = append(parts, `id="`+s.id+`"`)
	}
	if len(s.classes) > 0 {
		parts = append(parts, `class="`+strings.Join(s.classes, " ")+`"`)
	}
	for _, a := range s.attrs {
		parts = append(parts, a.Key+`="`+strings.Trim(a.Value, `"'`)+`"`)
	}
	return strings.Join(parts, " ")
}

type selectorToken struct {
	tt   css.TokenType
	data string
}

func tokenizeSelector(text string) ([]selectorToken, error) {
	lexer := css.NewLexer(parse.NewInputString(text))
	var tokens []selectorToken
	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			if err := lexer.Err(); err != nil && err != io.EOF {
				return nil, fmt.Errorf("%w: %w", ErrSelectorSyntax, err)
			}
			return tokens, nil
		case css.CommentToken:
			continue
		}
		tokens = append(tokens, selectorToken{tt: tt, data: string(data)})
	}
}

type selectorParser struct {
	text   string
	tokens []selectorToken
	pos    int
}

func (p *selectorParser) done() bool {
	return p.pos >= len(p.tokens)
}

func (p *selectorParser) peek() selectorToken {
	if p.done() {
		return selectorToken{tt: css.ErrorToken}
	}
	return p.tokens[p.pos]
}

func (p *selectorParser) next() selectorToken {
	t := p.peek()
	p.pos++
	return t
}

func (p *selectorParser) fail(sentinel error, format string, args ...any) error {
	return fmt.Errorf("selector %q: %s: %w", p.text, fmt.Sprintf(format, args...), sentinel)
}

func isDelim(t selectorToken, c string) bool {
	return t.tt == css.DelimToken && t.data == c
}

func (p *selectorParser) parseCompound() (*Selector, error) {
	sel := &Selector{}
	start := p.pos
	for !p.done() {
		t := p.peek()
		switch {
		case t.tt == css.IdentToken && p.pos == start:
			sel.tag = p.next().data
		case isDelim(t, "*") && p.pos == start:
			p.next()
			sel.tag = "*"
		case t.tt == css.HashToken:
			if sel.id != "" {
				return nil, p.fail(ErrSelectorSyntax, "more than one id")
			}
			sel.id = p.next().data[1:]
		case isDelim(t, "."):
			p.next()
			if name := p.next(); name.tt == css.IdentToken {
				sel.classes = appendUnique(sel.classes, name.data)
			} else {
				return nil, p.fail(ErrSelectorSyntax, "class name expected after '.'")
			}
		case (t.tt == css.NumberToken || t.tt == css.DimensionToken) && strings.HasPrefix(t.data, "."):
			// digit-leading classes like ".2xl" lex as numbers
			sel.classes = appendUnique(sel.classes, p.next().data[1:])
		case t.tt == css.ColonToken:
			state, err := p.parsePseudo()
			if err != nil {
				return nil, err
			}
			sel.states = append(sel.states, state)
		case t.tt == css.LeftBracketToken:
			attr, err := p.parseAttr()
			if err != nil {
				return nil, err
			}
			sel.attrs = append(sel.attrs, attr)
		default:
			if p.pos == start {
				return nil, p.fail(unexpectedSentinel(t), "unexpected %q", t.data)
			}
			return sel, nil
		}
	}
	if p.pos == start {
		return nil, p.fail(ErrSelectorSyntax, "selector expected")
	}
	return sel, nil
}

func (p *selectorParser) parsePseudo() (string, error) {
	p.next()
	t := p.next()
	switch t.tt {
	case css.IdentToken:
		return t.data, nil
	case css.ColonToken:
		return "", p.fail(ErrUnsupportedSelector, "pseudo-elements are not supported")
	case css.FunctionToken:
		var b strings.Builder
		b.WriteString(t.data)
		depth := 1
		for depth > 0 {
			if p.done() {
				return "", p.fail(ErrSelectorSyntax, "unterminated %q", t.data)
			}
			arg := p.next()
			switch arg.tt {
			case css.FunctionToken, css.LeftParenthesisToken:
				depth++
			case css.RightParenthesisToken:
				depth--
			}
			b.WriteString(arg.data)
		}
		return b.String(), nil
	}
	return "", p.fail(ErrSelectorSyntax, "pseudo-class name expected after ':'")
}

func (p *selectorParser) parseAttr() (Attr, error) {
	p.next()
	p.skipSpace()
	key := p.next()
	if key.tt != css.IdentToken {
		return Attr{}, p.fail(ErrSelectorSyntax, "attribute name expected")
	}
	attr := Attr{Key: key.data}
	p.skipSpace()
	t := p.next()
	switch {
	case t.tt == css.RightBracketToken:
		return attr, nil
	case isDelim(t, "="):
	case t.tt == css.ErrorToken:
		return Attr{}, p.fail(ErrSelectorSyntax, "unterminated attribute %q", key.data)
	case t.tt == css.IncludeMatchToken, t.tt == css.DashMatchToken, t.tt == css.PrefixMatchToken,
		t.tt == css.SuffixMatchToken, t.tt == css.SubstringMatchToken:
		return Attr{}, p.fail(ErrUnsupportedSelector, "attribute operator %q", t.data)
	default:
		return Attr{}, p.fail(ErrSelectorSyntax, "unexpected %q in attribute", t.data)
	}
	p.skipSpace()
	value := p.next()
	switch value.tt {
	case css.IdentToken, css.StringToken, css.NumberToken, css.DimensionToken:
		attr.Value = value.data
	default:
		return Attr{}, p.fail(ErrSelectorSyntax, "attribute value expected for %q", key.data)
	}
	p.skipSpace()
	if p.next().tt != css.RightBracketToken {
		return Attr{}, p.fail(ErrSelectorSyntax, "unterminated attribute %q", key.data)
	}
	return attr, nil
}

func (p *selectorParser) skipSpace() bool {
	skipped := false
	for p.peek().tt == css.WhitespaceToken {
		p.next()
		skipped = true
	}
	return skipped
}

func (p *selectorParser) parseCombinator() (Relation, error) {
	spaced := p.skipSpace()
	rel := Descendant
	t := p.peek()
	if !spaced && !isDelim(t, ">") && !p.done() {
		// compound ended on a token it cannot take
		return rel, p.fail(unexpectedSentinel(t), "unexpected %q", t.data)
	}
	if isDelim(t, ">") {
		p.next()
		p.skipSpace()
		rel = Child
	}
	if p.done() {
		return rel, p.fail(ErrSelectorSyntax, "dangling combinator")
	}
	if t := p.peek(); isDelim(t, ">") {
		return rel, p.fail(ErrSelectorSyntax, "doubled combinator")
	}
	if t := p.peek(); unexpectedSentinel(t) == ErrUnsupportedSelector {
		return rel, p.fail(ErrUnsupportedSelector, "combinator %q", t.data)
	}
	return rel, nil
}

func unexpectedSentinel(t selectorToken) error {
	if t.tt == css.CommaToken || isDelim(t, "+") || isDelim(t, "~") {
		return ErrUnsupportedSelector
	}
	return ErrSelectorSyntax
}

func appendUnique(list []string, s string) []string {
	if slices.Contains(list, s) {
		return list
	}
	return append(list, s)
}
