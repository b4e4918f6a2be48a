package css

import (
	_ "embed"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"stylegen/utils/debug"
)

//go:embed normalize.css
var normalizeCSS string

// Option configures StyleSheet.
type Option func(*StyleSheet)

// WithNormalize prepends embedded normalize.css to rendered output.
func WithNormalize(on bool) Option {
	return func(s *StyleSheet) { s.normalize = on }
}

// WithPreamble controls the leading "generated" comment.
func WithPreamble(on bool) Option {
	return func(s *StyleSheet) { s.preamble = on }
}

// WithClock sets time source for the preamble timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *StyleSheet) { s.now = now }
}

// StyleSheet is an ordered collection of styles, media groups and animations.
type StyleSheet struct {
	log *zap.Logger

	normalize bool
	preamble  bool
	now       func() time.Time

	atRules    []string
	styles     []*Style
	media      []*MediaQuery
	names      map[string]*Style
	animations []*Animation
}

// NewStyleSheet creates empty stylesheet. Preamble is on and normalize.css
// is off by default.
func NewStyleSheet(log *zap.Logger, opts ...Option) *StyleSheet {
	if log == nil {
		log = zap.NewNop()
	}
	s := &StyleSheet{
		log:      log.Named("css"),
		preamble: true,
		now:      time.Now,
		names:    make(map[string]*Style),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Select returns top-level style for selector text, creating it when there
// is none yet. Use Redefine to get a second style for the same selector.
func (s *StyleSheet) Select(text string) (*Style, error) {
	sel, err := ParseSelector(text)
	if err != nil {
		return nil, err
	}
	return s.selectParsed(sel), nil
}

// MustSelect is like Select but panics on error.
func (s *StyleSheet) MustSelect(text string) *Style {
	st, err := s.Select(text)
	if err != nil {
		panic(err)
	}
	return st
}

// SelectRaw is like Select for selectors accepted by RawSelector.
func (s *StyleSheet) SelectRaw(text string) (*Style, error) {
	sel, err := RawSelector(text)
	if err != nil {
		return nil, err
	}
	return s.selectParsed(sel), nil
}

func (s *StyleSheet) selectParsed(sel *Selector) *Style {
	if st := findStyle(s.styles, sel); st != nil {
		return st
	}
	st := newStyle(sel)
	s.styles = append(s.styles, st)
	return st
}

// Add appends externally built styles at top level.
func (s *StyleSheet) Add(styles ...*Style) error {
	for _, st := range styles {
		if st == nil || st.selector == nil {
			return fmt.Errorf("add style: %w", ErrDegenerateSelector)
		}
		s.styles = append(s.styles, st)
	}
	return nil
}

// Redefine appends a new top-level style with selector of st.
func (s *StyleSheet) Redefine(st *Style) (*Style, error) {
	if st == nil || st.selector == nil {
		return nil, fmt.Errorf("redefine: %w", ErrDegenerateSelector)
	}
	out := newStyle(st.selector)
	s.styles = append(s.styles, out)
	return out, nil
}

// Media returns media group for the condition, creating it on first use.
func (s *StyleSheet) Media(opts ...MediaOption) *MediaQuery {
	var c mediaCondition
	for _, opt := range opts {
		opt(&c)
	}
	return s.group("@media", c.String())
}

// Group returns group of styles rendered inside "rule prelude { ... }"
// block, e.g. Group("@supports", "(display: grid)"), creating it on first
// use. Groups render after keyframes together with media groups.
func (s *StyleSheet) Group(rule, prelude string) *MediaQuery {
	return s.group(strings.ToLower(strings.TrimSpace(rule)), strings.TrimSpace(prelude))
}

func (s *StyleSheet) group(rule, cond string) *MediaQuery {
	for _, m := range s.media {
		if m.rule == rule && m.condition == cond {
			return m
		}
	}
	m := &MediaQuery{rule: rule, condition: cond, sheet: s}
	s.media = append(s.media, m)
	return m
}

// Register maps logical name to style, replacing previous mapping.
func (s *StyleSheet) Register(name string, st *Style) {
	if prev, ok := s.names[name]; ok && prev != st {
		s.log.Debug("Style name re-registered", zap.String("name", name))
	}
	s.names[name] = st
}

// Named selects top-level style and registers it under name.
func (s *StyleSheet) Named(name, text string) (*Style, error) {
	st, err := s.Select(text)
	if err != nil {
		return nil, err
	}
	s.Register(name, st)
	return st, nil
}

// Get returns style registered under name. Misses are logged.
func (s *StyleSheet) Get(name string) (*Style, bool) {
	st, ok := s.names[name]
	if !ok {
		s.log.Warn("Unknown style name", zap.String("name", name))
	}
	return st, ok
}

// Lookup is like Get but returns ErrUnknownName on miss.
func (s *StyleSheet) Lookup(name string) (*Style, error) {
	st, ok := s.Get(name)
	if !ok {
		return nil, fmt.Errorf("style %q: %w", name, ErrUnknownName)
	}
	return st, nil
}

// MustGet is like Get but panics on miss.
func (s *StyleSheet) MustGet(name string) *Style {
	st, err := s.Lookup(name)
	if err != nil {
		panic(err)
	}
	return st
}

// Names returns registered names in sorted order.
func (s *StyleSheet) Names() []string {
	out := make([]string, 0, len(s.names))
	for name := range s.names {
		out = append(out, name)
	}
	slices.Sort(out)
	return out
}

// AddAnimation registers animations. Registering the same animation twice
// is a no-op, registering a different one under a used name is an error.
func (s *StyleSheet) AddAnimation(anims ...*Animation) error {
	for _, a := range anims {
		if prev, ok := s.Animation(a.Name()); ok {
			if prev != a {
				return fmt.Errorf("animation %q: %w", a.Name(), ErrDuplicateAnimation)
			}
			continue
		}
		s.animations = append(s.animations, a)
	}
	return nil
}

// Animation returns registered animation by name.
func (s *StyleSheet) Animation(name string) (*Animation, bool) {
	for _, a := range s.animations {
		if a.name == name {
			return a, true
		}
	}
	return nil, false
}

// AddAtRule keeps at-rule text (@import, @font-face, @charset) to be
// emitted verbatim before any style.
func (s *StyleSheet) AddAtRule(text string) {
	text = strings.TrimSpace(text)
	if text != "" && !slices.Contains(s.atRules, text) {
		s.atRules = append(s.atRules, text)
	}
}

// Styles returns top-level styles in registration order.
func (s *StyleSheet) Styles() []*Style { return slices.Clone(s.styles) }

// MediaGroups returns media groups in registration order.
func (s *StyleSheet) MediaGroups() []*MediaQuery { return slices.Clone(s.media) }

// Animations returns registered animations in registration order.
func (s *StyleSheet) Animations() []*Animation { return slices.Clone(s.animations) }

// Extend appends content of other: at-rules, styles, media groups merged by
// condition, animations and names.
// Nothing is merged when other carries a conflicting animation.
func (s *StyleSheet) Extend(other *StyleSheet) error {
	for _, a := range other.animations {
		if prev, ok := s.Animation(a.Name()); ok && prev != a {
			return fmt.Errorf("animation %q: %w", a.Name(), ErrDuplicateAnimation)
		}
	}
	for _, r := range other.atRules {
		s.AddAtRule(r)
	}
	s.styles = append(s.styles, other.styles...)
	for _, m := range other.media {
		mine := s.group(m.rule, m.condition)
		mine.styles = append(mine.styles, m.styles...)
	}
	if err := s.AddAnimation(other.animations...); err != nil {
		return err
	}
	for name, st := range other.names {
		s.Register(name, st)
	}
	return nil
}

// Render returns complete stylesheet text.
func (s *StyleSheet) Render() (string, error) {
	return s.render(nil)
}

// RenderSubset returns only styles whose selectors are satisfied by used
// classes, plus keyframes those styles reference. Media groups left empty
// are omitted.
func (s *StyleSheet) RenderSubset(used ClassSet) (string, error) {
	return s.render(func(st *Style) bool { return st.selector == nil || st.selector.MatchesClasses(used) })
}

// WriteTo writes complete stylesheet to w.
func (s *StyleSheet) WriteTo(w io.Writer) (int64, error) {
	text, err := s.Render()
	if err != nil {
		return 0, err
	}
	n, err := io.WriteString(w, text)
	return int64(n), err
}

// WriteSubsetTo writes subset stylesheet to w.
func (s *StyleSheet) WriteSubsetTo(w io.Writer, used ClassSet) (int64, error) {
	text, err := s.RenderSubset(used)
	if err != nil {
		return 0, err
	}
	n, err := io.WriteString(w, text)
	return int64(n), err
}

// RenderFile writes complete stylesheet to path, replacing its content.
func (s *StyleSheet) RenderFile(path string) error {
	text, err := s.Render()
	if err != nil {
		return err
	}
	return writeFile(path, text)
}

// RenderSubsetFile writes subset stylesheet to path, replacing its content.
func (s *StyleSheet) RenderSubsetFile(path string, used ClassSet) error {
	text, err := s.RenderSubset(used)
	if err != nil {
		return err
	}
	return writeFile(path, text)
}

func writeFile(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("unable to write stylesheet: %w", err)
	}
	return nil
}

// render emits preamble, normalize, at-rules, top-level styles, keyframes and
// media groups. With filter set only accepted styles are emitted and only
// keyframes referenced by them.
func (s *StyleSheet) render(filter func(*Style) bool) (string, error) {
	included := func(st *Style) bool {
		return !st.Empty() && (filter == nil || filter(st))
	}

	var (
		err    error
		marked = make(map[string]bool)
	)
	check := func(st *Style) {
		if !included(st) {
			return
		}
		for _, name := range st.animRefs {
			if marked[name] {
				continue
			}
			if _, ok := s.Animation(name); !ok {
				err = multierr.Append(err, fmt.Errorf("style %q references %q: %w", st.selector, name, ErrMissingAnimation))
			}
			marked[name] = true
		}
	}
	for _, st := range s.styles {
		st.walk(check)
	}
	for _, m := range s.media {
		for _, st := range m.styles {
			st.walk(check)
		}
	}
	if err != nil {
		return "", err
	}

	var blocks []string
	if s.preamble {
		blocks = append(blocks, "/* Generated by stylegen on "+s.now().UTC().Format(time.RFC3339)+" */\n")
	}
	if s.normalize {
		blocks = append(blocks, strings.TrimSpace(normalizeCSS)+"\n")
	}
	for _, r := range s.atRules {
		blocks = append(blocks, r+"\n")
	}
	for _, st := range s.styles {
		blocks = append(blocks, st.blocks("", filter)...)
	}
	for _, a := range s.animations {
		if filter == nil || marked[a.name] {
			blocks = append(blocks, a.CSS())
		}
	}
	for _, m := range s.media {
		var inner []string
		for _, st := range m.styles {
			inner = append(inner, st.blocks(indentUnit, filter)...)
		}
		if len(inner) == 0 {
			continue
		}
		blocks = append(blocks, m.head()+" {\n"+joinBlocks(inner)+"}\n")
	}
	return joinBlocks(blocks), nil
}

// Dump returns indented outline of the stylesheet for debugging.
func (s *StyleSheet) Dump() string {
	tw := debug.NewTreeWriter()
	tw.Line(0, "StyleSheet: %d styles, %d media groups, %d animations", len(s.styles), len(s.media), len(s.animations))
	for _, r := range s.atRules {
		tw.TextBlock(1, "at-rule", r)
	}
	for _, st := range s.styles {
		dumpStyle(tw, 1, st)
	}
	for _, a := range s.animations {
		tw.Line(1, "@keyframes %s %v", a.name, a.Percents())
	}
	for _, m := range s.media {
		tw.Line(1, "%s", m.head())
		for _, st := range m.styles {
			dumpStyle(tw, 2, st)
		}
	}
	for _, name := range s.Names() {
		tw.Line(1, "name %s -> %s", name, s.names[name].selector)
	}
	return tw.String()
}

func dumpStyle(tw *debug.TreeWriter, depth int, st *Style) {
	tw.Line(depth, "%s specificity=%v", st.selector, st.selector.Specificity())
	for _, d := range st.decls {
		tw.TextBlock(depth+1, d.Property, d.Value)
	}
	if len(st.animRefs) > 0 {
		tw.Line(depth+1, "animations %s", strings.Join(st.animRefs, ", "))
	}
	for _, c := range st.children {
		dumpStyle(tw, depth+1, c)
	}
}
