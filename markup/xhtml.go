package markup

import (
	"fmt"
	"io"

	"github.com/beevik/etree"
)

// RenderXHTML writes document as XHTML. Raw nodes are escaped as text.
func (d *Document) RenderXHTML(w io.Writer) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateDirective("DOCTYPE html")

	root := doc.CreateElement("html")
	root.CreateAttr("xmlns", "http://www.w3.org/1999/xhtml")
	if d.Lang != "" {
		root.CreateAttr("xml:lang", d.Lang)
		root.CreateAttr("lang", d.Lang)
	}

	head := root.CreateElement("head")
	if d.Head.Charset != "" {
		head.CreateElement("meta").CreateAttr("charset", d.Head.Charset)
	}
	for _, m := range d.Head.Meta {
		meta := head.CreateElement("meta")
		meta.CreateAttr("name", m.Key)
		meta.CreateAttr("content", m.Value)
	}
	if d.Head.Title != "" {
		head.CreateElement("title").SetText(d.Head.Title)
	}
	if d.Head.Favicon != "" {
		link := head.CreateElement("link")
		link.CreateAttr("rel", "icon")
		link.CreateAttr("href", d.Head.Favicon)
	}
	for _, l := range d.Head.Links {
		link := head.CreateElement("link")
		link.CreateAttr("rel", l.Rel)
		link.CreateAttr("href", l.Href)
	}
	for _, res := range d.Head.Styles {
		if !res.Inline {
			link := head.CreateElement("link")
			link.CreateAttr("rel", "stylesheet")
			link.CreateAttr("type", "text/css")
			link.CreateAttr("href", res.Href)
			continue
		}
		text, err := d.renderStyle(res)
		if err != nil {
			return err
		}
		style := head.CreateElement("style")
		style.CreateAttr("type", "text/css")
		style.SetText(text)
	}
	for _, res := range d.Head.Scripts {
		script := head.CreateElement("script")
		if res.Src != "" {
			script.CreateAttr("src", res.Src)
		} else {
			script.SetText(res.Content)
		}
	}

	d.Body.xmlInto(root)

	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("unable to write xhtml: %w", err)
	}
	return nil
}

func (e *Element) xmlInto(parent *etree.Element) {
	if e.tag == "" {
		parent.CreateText(e.text)
		return
	}
	el := parent.CreateElement(e.tag)
	for _, a := range e.attributes() {
		el.CreateAttr(a.Key, a.Value)
	}
	if e.text != "" {
		el.CreateText(e.text)
	}
	for _, c := range e.children {
		if child := c.Compose(); child != nil {
			child.xmlInto(el)
		}
	}
}
