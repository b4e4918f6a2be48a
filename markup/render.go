package markup

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Render writes document as HTML5.
func (d *Document) Render(w io.Writer) error {
	root, err := d.htmlTree()
	if err != nil {
		return err
	}
	if err := html.Render(w, root); err != nil {
		return fmt.Errorf("unable to render document: %w", err)
	}
	return nil
}

// String renders document into string.
func (d *Document) String() (string, error) {
	var buf bytes.Buffer
	if err := d.Render(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render writes element as HTML fragment.
func (e *Element) Render(w io.Writer) error {
	if err := html.Render(w, e.htmlNode()); err != nil {
		return fmt.Errorf("unable to render <%s>: %w", e.tag, err)
	}
	return nil
}

// HTML renders element into string, empty on error.
func (e *Element) HTML() string {
	var buf bytes.Buffer
	if err := e.Render(&buf); err != nil {
		return ""
	}
	return buf.String()
}

func newElementNode(tag string, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag)), Attr: attrs}
}

func (e *Element) htmlNode() *html.Node {
	switch {
	case e.tag == "" && e.raw:
		return &html.Node{Type: html.RawNode, Data: e.text}
	case e.tag == "":
		return &html.Node{Type: html.TextNode, Data: e.text}
	}
	n := newElementNode(e.tag)
	for _, a := range e.attributes() {
		n.Attr = append(n.Attr, html.Attribute{Key: a.Key, Val: a.Value})
	}
	if e.text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: e.text})
	}
	for _, c := range e.children {
		if el := c.Compose(); el != nil {
			n.AppendChild(el.htmlNode())
		}
	}
	return n
}

func (d *Document) htmlTree() (*html.Node, error) {
	doc := &html.Node{Type: html.DocumentNode}
	doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})

	root := newElementNode("html")
	if d.Lang != "" {
		root.Attr = append(root.Attr, html.Attribute{Key: "lang", Val: d.Lang})
	}
	doc.AppendChild(root)

	head, err := d.headNode()
	if err != nil {
		return nil, err
	}
	root.AppendChild(head)
	root.AppendChild(d.Body.htmlNode())
	return doc, nil
}

func (d *Document) headNode() (*html.Node, error) {
	head := newElementNode("head")
	if d.Head.Charset != "" {
		head.AppendChild(newElementNode("meta", html.Attribute{Key: "charset", Val: d.Head.Charset}))
	}
	head.AppendChild(newElementNode("meta",
		html.Attribute{Key: "name", Val: "viewport"},
		html.Attribute{Key: "content", Val: "width=device-width, initial-scale=1"}))
	for _, m := range d.Head.Meta {
		head.AppendChild(newElementNode("meta",
			html.Attribute{Key: "name", Val: m.Key},
			html.Attribute{Key: "content", Val: m.Value}))
	}
	if d.Head.Title != "" {
		title := newElementNode("title")
		title.AppendChild(&html.Node{Type: html.TextNode, Data: d.Head.Title})
		head.AppendChild(title)
	}
	if d.Head.Favicon != "" {
		head.AppendChild(newElementNode("link",
			html.Attribute{Key: "rel", Val: "icon"},
			html.Attribute{Key: "href", Val: d.Head.Favicon}))
	}
	for _, l := range d.Head.Links {
		head.AppendChild(newElementNode("link",
			html.Attribute{Key: "rel", Val: l.Rel},
			html.Attribute{Key: "href", Val: l.Href}))
	}
	for _, res := range d.Head.Styles {
		if !res.Inline {
			head.AppendChild(newElementNode("link",
				html.Attribute{Key: "rel", Val: "stylesheet"},
				html.Attribute{Key: "href", Val: res.Href}))
			continue
		}
		text, err := d.renderStyle(res)
		if err != nil {
			return nil, err
		}
		style := newElementNode("style")
		style.AppendChild(&html.Node{Type: html.TextNode, Data: text})
		head.AppendChild(style)
	}
	for _, res := range d.Head.Scripts {
		head.AppendChild(scriptNode(res))
	}
	return head, nil
}

func scriptNode(res ScriptResource) *html.Node {
	script := newElementNode("script")
	if res.Module {
		script.Attr = append(script.Attr, html.Attribute{Key: "type", Val: "module"})
	}
	if res.Src != "" {
		script.Attr = append(script.Attr, html.Attribute{Key: "src", Val: res.Src})
		if res.Defer {
			script.Attr = append(script.Attr, html.Attribute{Key: "defer"})
		}
		return script
	}
	script.AppendChild(&html.Node{Type: html.TextNode, Data: res.Content})
	return script
}
