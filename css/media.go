package css

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// MediaOption configures media query condition.
type MediaOption func(*mediaCondition)

type mediaCondition struct {
	minWidth, maxWidth int
	raw                string
}

// MinWidth limits media group to viewports at least px wide.
func MinWidth(px int) MediaOption {
	return func(c *mediaCondition) { c.minWidth = px }
}

// MaxWidth limits media group to viewports at most px wide.
func MaxWidth(px int) MediaOption {
	return func(c *mediaCondition) { c.maxWidth = px }
}

// Condition sets condition text verbatim, e.g. "print" or "(prefers-color-scheme: dark)".
func Condition(raw string) MediaOption {
	return func(c *mediaCondition) { c.raw = strings.TrimSpace(raw) }
}

func (c mediaCondition) String() string {
	if c.raw != "" {
		return c.raw
	}
	var parts []string
	if c.minWidth > 0 {
		parts = append(parts, "(min-width: "+strconv.Itoa(c.minWidth)+"px)")
	}
	if c.maxWidth > 0 {
		parts = append(parts, "(max-width: "+strconv.Itoa(c.maxWidth)+"px)")
	}
	if len(parts) == 0 {
		return "all"
	}
	return strings.Join(parts, " and ")
}

// MediaQuery is a group of styles rendered inside @media block. Imported
// conditional group rules like @supports or @container are kept as groups
// of their own kind.
type MediaQuery struct {
	rule      string
	condition string
	styles    []*Style
	sheet     *StyleSheet
}

// Condition returns media condition text.
func (m *MediaQuery) Condition() string { return m.condition }

// Rule returns group at-rule keyword, "@media" for media groups.
func (m *MediaQuery) Rule() string { return m.rule }

func (m *MediaQuery) head() string {
	if m.condition == "" {
		return m.rule
	}
	return m.rule + " " + m.condition
}

// Styles returns styles of the group in registration order.
func (m *MediaQuery) Styles() []*Style { return slices.Clone(m.styles) }

// Select returns style for selector text in this media group, creating it
// when the group has none yet.
func (m *MediaQuery) Select(text string) (*Style, error) {
	sel, err := ParseSelector(text)
	if err != nil {
		return nil, err
	}
	return m.selectParsed(sel), nil
}

// MustSelect is like Select but panics on error.
func (m *MediaQuery) MustSelect(text string) *Style {
	st, err := m.Select(text)
	if err != nil {
		panic(err)
	}
	return st
}

// SelectRaw is like Select for selectors accepted by RawSelector.
func (m *MediaQuery) SelectRaw(text string) (*Style, error) {
	sel, err := RawSelector(text)
	if err != nil {
		return nil, err
	}
	return m.selectParsed(sel), nil
}

func (m *MediaQuery) selectParsed(sel *Selector) *Style {
	if st := findStyle(m.styles, sel); st != nil {
		return st
	}
	st := newStyle(sel)
	m.styles = append(m.styles, st)
	return st
}

// Redefine creates a new style for the selector of st inside this group,
// used for responsive overrides.
func (m *MediaQuery) Redefine(st *Style) (*Style, error) {
	if st == nil || st.selector == nil {
		return nil, fmt.Errorf("redefine in %q: %w", m.condition, ErrDegenerateSelector)
	}
	out := newStyle(st.selector)
	m.styles = append(m.styles, out)
	return out, nil
}

// Add puts externally built styles into the group.
func (m *MediaQuery) Add(styles ...*Style) error {
	for _, st := range styles {
		if st == nil || st.selector == nil {
			return fmt.Errorf("add to %q: %w", m.condition, ErrDegenerateSelector)
		}
		m.styles = append(m.styles, st)
	}
	return nil
}

// Named selects style and registers it in the stylesheet under name.
func (m *MediaQuery) Named(name, text string) (*Style, error) {
	st, err := m.Select(text)
	if err != nil {
		return nil, err
	}
	m.sheet.Register(name, st)
	return st, nil
}

func findStyle(styles []*Style, sel *Selector) *Style {
	text := sel.CSS()
	for i := len(styles) - 1; i >= 0; i-- {
		if styles[i].selector != nil && styles[i].selector.CSS() == text {
			return styles[i]
		}
	}
	return nil
}
