// Package markup builds HTML element trees and documents and reports the
// classes they use, which drive subset rendering of stylesheets.
package markup

import (
	"slices"
	"strings"

	"stylegen/css"
)

// Node is a piece of markup. *Element is a node composing into itself, any
// other type implementing Compose is a component expanded when rendered or
// scanned.
type Node interface {
	Compose() *Element
}

// Attr is an element attribute.
type Attr struct {
	Key   string
	Value string
}

const bindingPrefix = "data-on-"

// Element is an HTML element with attributes and children. Element with
// empty tag is a text node.
type Element struct {
	tag      string
	id       string
	text     string
	raw      bool
	classes  []string
	style    *css.Style
	attrs    []Attr
	children []Node
}

// New creates element with given tag.
func New(tag string, children ...Node) *Element {
	return (&Element{tag: strings.ToLower(tag)}).Add(children...)
}

// Text creates text node, escaped when rendered.
func Text(text string) *Element {
	return &Element{text: text}
}

// Raw creates node with HTML inserted verbatim into HTML5 output.
func Raw(html string) *Element {
	return &Element{text: html, raw: true}
}

// FromSelector creates element matching the last compound of sel: its tag
// (div when none), id, classes and attribute conditions.
func FromSelector(sel *css.Selector) *Element {
	tag := sel.Tag()
	if tag == "" || tag == "*" {
		tag = "div"
	}
	e := New(tag).ID(sel.ID())
	if parent, _ := sel.Parent(); parent == nil {
		e.Class(sel.Classes()...)
	} else {
		own := sel.Classes()
		for _, c := range parent.Classes() {
			if i := slices.Index(own, c); i >= 0 {
				own = slices.Delete(own, i, i+1)
			}
		}
		e.Class(own...)
	}
	for _, a := range sel.Attrs() {
		e.Attr(a.Key, strings.Trim(a.Value, `"'`))
	}
	return e
}

// Compose implements Node.
func (e *Element) Compose() *Element { return e }

// Tag returns element tag, empty for text nodes.
func (e *Element) Tag() string { return e.tag }

// ID sets element id.
func (e *Element) ID(id string) *Element {
	e.id = id
	return e
}

// Class adds classes. Each argument may hold several space separated names.
func (e *Element) Class(classes ...string) *Element {
	for _, c := range classes {
		for _, name := range strings.Fields(c) {
			if !slices.Contains(e.classes, name) {
				e.classes = append(e.classes, name)
			}
		}
	}
	return e
}

// Classes returns element own classes.
func (e *Element) Classes() []string { return slices.Clone(e.classes) }

// Text sets element text content rendered before children.
func (e *Element) Text(text string) *Element {
	e.text = text
	return e
}

// Attr sets attribute, replacing previous value.
func (e *Element) Attr(key, value string) *Element {
	key = strings.ToLower(strings.TrimSpace(key))
	switch key {
	case "id":
		return e.ID(value)
	case "class":
		return e.Class(value)
	}
	if i := slices.IndexFunc(e.attrs, func(a Attr) bool { return a.Key == key }); i >= 0 {
		e.attrs[i].Value = value
		return e
	}
	e.attrs = append(e.attrs, Attr{Key: key, Value: value})
	return e
}

// Get returns attribute value.
func (e *Element) Get(key string) (string, bool) {
	for _, a := range e.attrs {
		if a.Key == key {
			return a.Value, true
		}
	}
	return "", false
}

// Style sets inline style. Later Rule calls modify the same style.
func (e *Element) Style(st *css.Style) *Element {
	e.style = st
	return e
}

// Rule sets inline style property.
func (e *Element) Rule(property string, value any) *Element {
	if e.style == nil {
		e.style = css.NewStyle()
	}
	e.style.Rule(property, value)
	return e
}

// On binds DOM event to a client side handler name, rendered as
// data-on-<event> attribute picked up by the client runtime.
func (e *Element) On(event, handler string) *Element {
	return e.Attr(bindingPrefix+strings.ToLower(event), handler)
}

// Add appends children.
func (e *Element) Add(children ...Node) *Element {
	for _, c := range children {
		if c != nil {
			e.children = append(e.children, c)
		}
	}
	return e
}

// Spawn creates child element and returns it.
func (e *Element) Spawn(tag string, children ...Node) *Element {
	child := New(tag, children...)
	e.children = append(e.children, child)
	return child
}

// Children returns child nodes.
func (e *Element) Children() []Node { return slices.Clone(e.children) }

// walk visits element and composed descendants depth first.
func (e *Element) walk(fn func(*Element)) {
	fn(e)
	for _, c := range e.children {
		if el := c.Compose(); el != nil {
			el.walk(fn)
		}
	}
}

// UsedClasses collects classes of the element and all its descendants,
// components included.
func (e *Element) UsedClasses() css.ClassSet {
	used := css.NewClassSet()
	e.walk(func(el *Element) { used.Add(el.classes...) })
	return used
}

// HasBindings reports whether element or any descendant has event bindings.
func (e *Element) HasBindings() bool {
	found := false
	e.walk(func(el *Element) {
		for _, a := range el.attrs {
			if strings.HasPrefix(a.Key, bindingPrefix) {
				found = true
			}
		}
	})
	return found
}

// attributes returns all attributes in output order: id, class, style, rest.
func (e *Element) attributes() []Attr {
	var out []Attr
	if e.id != "" {
		out = append(out, Attr{"id", e.id})
	}
	if len(e.classes) > 0 {
		out = append(out, Attr{"class", strings.Join(e.classes, " ")})
	}
	if e.style != nil && !e.style.Empty() {
		out = append(out, Attr{"style", e.style.Inline()})
	}
	return append(out, e.attrs...)
}
