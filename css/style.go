package css

import (
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"
)

const indentUnit = "    "

// Declaration is a single "property: value" pair.
type Declaration struct {
	Property string
	Value    string
}

// Style is an ordered set of declarations bound to a selector, with child
// styles (pseudo-states, nested selectors) and animation references.
type Style struct {
	selector *Selector
	decls    []Declaration
	index    map[string]int
	children []*Style

	transitions [4][]string
	transforms  []string
	animations  [5][]string
	animRefs    []string
}

// NewStyle returns a free-standing style without selector, usable as a
// keyframe, inline style or mixin for Apply.
func NewStyle() *Style {
	return &Style{index: make(map[string]int)}
}

func newStyle(sel *Selector) *Style {
	st := NewStyle()
	st.selector = sel
	return st
}

// Selector returns the owning selector, nil for free-standing styles.
func (st *Style) Selector() *Selector { return st.selector }

// NormalizeProperty trims the name, converts underscores to hyphens and
// lowercases everything except custom properties.
func NormalizeProperty(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "_", "-")
	if strings.HasPrefix(name, "--") {
		return name
	}
	return strings.ToLower(name)
}

// Rule sets property to value. Re-setting a property keeps its original
// position.
func (st *Style) Rule(property string, value any) *Style {
	st.set(NormalizeProperty(property), strings.TrimSpace(formatValue(value)))
	return st
}

func (st *Style) set(name, value string) {
	if name == "" {
		return
	}
	if i, ok := st.index[name]; ok {
		st.decls[i].Value = value
		return
	}
	st.index[name] = len(st.decls)
	st.decls = append(st.decls, Declaration{Property: name, Value: value})
}

// Rules sets properties from property, value pairs. Panics on odd count.
func (st *Style) Rules(pairs ...string) *Style {
	if len(pairs)%2 != 0 {
		panic(fmt.Sprintf("css: Rules called with odd number of arguments (%d)", len(pairs)))
	}
	for i := 0; i < len(pairs); i += 2 {
		st.Rule(pairs[i], pairs[i+1])
	}
	return st
}

// Apply copies declarations and animation references of others in order.
// Transition, transform and animation entries are merged into the ones
// already configured, so later calls keep appending.
func (st *Style) Apply(others ...*Style) *Style {
	for _, o := range others {
		if o == nil {
			continue
		}
		for _, d := range o.decls {
			st.set(d.Property, d.Value)
		}
		if len(o.transitions[0]) > 0 {
			for i, name := range transitionProps {
				st.transitions[i] = append(st.transitions[i], o.transitions[i]...)
				st.set(name, strings.Join(st.transitions[i], ", "))
			}
		}
		if len(o.transforms) > 0 {
			st.transforms = append(st.transforms, o.transforms...)
			st.set("transform", strings.Join(st.transforms, " "))
		}
		if len(o.animations[0]) > 0 {
			for i, name := range animationProps {
				st.animations[i] = append(st.animations[i], o.animations[i]...)
				st.set(name, strings.Join(st.animations[i], ", "))
			}
		}
		for _, name := range o.animRefs {
			st.addAnimationRef(name)
		}
	}
	return st
}

// Get returns value of property.
func (st *Style) Get(property string) (string, bool) {
	i, ok := st.index[NormalizeProperty(property)]
	if !ok {
		return "", false
	}
	return st.decls[i].Value, true
}

// Properties returns declarations in insertion order.
func (st *Style) Properties() []Declaration {
	return slices.Clone(st.decls)
}

// Empty reports whether style has no declarations of its own.
func (st *Style) Empty() bool {
	return len(st.decls) == 0
}

// Animations returns names of referenced animations in reference order.
func (st *Style) Animations() []string {
	return slices.Clone(st.animRefs)
}

// ChildStyles returns child styles in creation order.
func (st *Style) ChildStyles() []*Style {
	return slices.Clone(st.children)
}

// TimingOption configures a transition or animation entry.
type TimingOption func(*timing)

type timing struct {
	duration   time.Duration
	function   string
	delay      time.Duration
	iterations string
}

// WithDuration sets transition or animation duration.
func WithDuration(d time.Duration) TimingOption {
	return func(t *timing) { t.duration = d }
}

// WithTiming sets timing function, e.g. "ease-in-out".
func WithTiming(fn string) TimingOption {
	return func(t *timing) { t.function = fn }
}

// WithDelay sets start delay.
func WithDelay(d time.Duration) TimingOption {
	return func(t *timing) { t.delay = d }
}

// WithIterations sets animation iteration count, zero or negative means infinite.
func WithIterations(n int) TimingOption {
	return func(t *timing) {
		if n <= 0 {
			t.iterations = "infinite"
			return
		}
		t.iterations = strconv.Itoa(n)
	}
}

func formatDuration(d time.Duration) string {
	if d != 0 && d%time.Second == 0 {
		return strconv.FormatInt(int64(d/time.Second), 10) + "s"
	}
	return formatFloat(float64(d)/float64(time.Millisecond)) + "ms"
}

var transitionProps = [4]string{
	"transition-property", "transition-duration", "transition-timing-function", "transition-delay",
}

// Transition adds a transition entry for property ("all" when empty).
// Entries accumulate into index-aligned transition-* lists.
func (st *Style) Transition(property string, opts ...TimingOption) *Style {
	t := timing{duration: 150 * time.Millisecond, function: "linear"}
	for _, opt := range opts {
		opt(&t)
	}
	if property = NormalizeProperty(property); property == "" {
		property = "all"
	}
	values := [4]string{property, formatDuration(t.duration), t.function, formatDuration(t.delay)}
	for i, name := range transitionProps {
		st.transitions[i] = append(st.transitions[i], values[i])
		st.set(name, strings.Join(st.transitions[i], ", "))
	}
	return st
}

var animationProps = [5]string{
	"animation-name", "animation-duration", "animation-iteration-count", "animation-timing-function", "animation-delay",
}

// Animate binds animation to the style. The animation has to be registered
// with the stylesheet the style is rendered from.
func (st *Style) Animate(a *Animation, opts ...TimingOption) *Style {
	t := timing{duration: time.Second, function: "ease", iterations: "1"}
	for _, opt := range opts {
		opt(&t)
	}
	values := [5]string{a.Name(), formatDuration(t.duration), t.iterations, t.function, formatDuration(t.delay)}
	for i, name := range animationProps {
		st.animations[i] = append(st.animations[i], values[i])
		st.set(name, strings.Join(st.animations[i], ", "))
	}
	st.addAnimationRef(a.Name())
	return st
}

// AnimationName records reference to animation by name without touching
// declarations. Used for styles whose animation properties were set verbatim.
func (st *Style) AnimationName(name string) *Style {
	st.addAnimationRef(name)
	return st
}

func (st *Style) addAnimationRef(name string) {
	if name != "" && !slices.Contains(st.animRefs, name) {
		st.animRefs = append(st.animRefs, name)
	}
}

// Transform appends raw transform function, e.g. "skewX(10deg)".
func (st *Style) Transform(fn string) *Style {
	st.transforms = append(st.transforms, fn)
	st.set("transform", strings.Join(st.transforms, " "))
	return st
}

func (st *Style) Scale(f float64) *Style { return st.ScaleXY(f, f) }

func (st *Style) ScaleXY(x, y float64) *Style {
	return st.Transform("scaleX(" + formatFloat(x) + ")").Transform("scaleY(" + formatFloat(y) + ")")
}

func (st *Style) TranslateX(v any) *Style {
	return st.Transform("translateX(" + InferUnit(v, nil) + ")")
}

func (st *Style) TranslateY(v any) *Style {
	return st.Transform("translateY(" + InferUnit(v, nil) + ")")
}

func (st *Style) Translate(x, y any) *Style {
	return st.TranslateX(x).TranslateY(y)
}

// Rotate appends rotation by deg degrees.
func (st *Style) Rotate(deg float64) *Style {
	return st.Transform("rotate(" + Deg(deg).String() + ")")
}

// On returns child style for the same selector with pseudo-states added.
// Panics for free-standing styles.
func (st *Style) On(states ...string) *Style {
	if st.selector == nil {
		panic("css: On called for style without selector")
	}
	return st.child(st.selector.On(states...))
}

// Children returns child style for direct children matching text.
func (st *Style) Children(text string) (*Style, error) {
	return st.nested(func(s *Selector) (*Selector, error) { return s.Children(text) })
}

// Descendant returns child style for descendants matching text.
func (st *Style) Descendant(text string) (*Style, error) {
	return st.nested(func(s *Selector) (*Selector, error) { return s.Descendant(text) })
}

// NthChild returns child style for n-th direct child matching text.
func (st *Style) NthChild(text string, n int) (*Style, error) {
	return st.nested(func(s *Selector) (*Selector, error) { return s.NthChild(text, n) })
}

func (st *Style) nested(build func(*Selector) (*Selector, error)) (*Style, error) {
	if st.selector == nil {
		return nil, fmt.Errorf("nested style for style without selector: %w", ErrSelectorSyntax)
	}
	sel, err := build(st.selector)
	if err != nil {
		return nil, err
	}
	return st.child(sel), nil
}

func (st *Style) child(sel *Selector) *Style {
	text := sel.CSS()
	for _, c := range st.children {
		if c.selector.CSS() == text {
			return c
		}
	}
	c := newStyle(sel)
	st.children = append(st.children, c)
	return c
}

// Inline returns declarations formatted for a style attribute.
func (st *Style) Inline() string {
	parts := make([]string, 0, len(st.decls))
	for _, d := range st.decls {
		parts = append(parts, d.Property+": "+d.Value)
	}
	return strings.Join(parts, "; ")
}

// CSS returns style block followed by blocks of its children.
func (st *Style) CSS() string {
	return joinBlocks(st.blocks("", nil))
}

func (st *Style) String() string {
	return st.CSS()
}

// WriteTo writes CSS of the style and its children to w.
func (st *Style) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, st.CSS())
	return int64(n), err
}

// blocks renders own block and then children blocks depth first. When filter
// is not nil each style is included only if filter accepts it.
func (st *Style) blocks(indent string, filter func(*Style) bool) []string {
	var out []string
	if !st.Empty() && (filter == nil || filter(st)) {
		out = append(out, st.block(indent))
	}
	for _, c := range st.children {
		out = append(out, c.blocks(indent, filter)...)
	}
	return out
}

// walk visits style and all its descendants depth first.
func (st *Style) walk(fn func(*Style)) {
	fn(st)
	for _, c := range st.children {
		c.walk(fn)
	}
}

func (st *Style) block(indent string) string {
	head := "*"
	if st.selector != nil {
		head = st.selector.CSS()
	}
	return declBlock(indent, head, st.decls)
}

func declBlock(indent, head string, decls []Declaration) string {
	var b strings.Builder
	b.WriteString(indent + head + " {\n")
	for _, d := range decls {
		b.WriteString(indent + indentUnit + d.Property + ": " + d.Value + ";\n")
	}
	b.WriteString(indent + "}\n")
	return b.String()
}

func joinBlocks(blocks []string) string {
	return strings.Join(blocks, "\n")
}
