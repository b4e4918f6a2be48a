package markup

import (
	"errors"
	"fmt"

	"stylegen/css"
)

// ErrInvalidResource is returned for head resources that cannot be rendered.
var ErrInvalidResource = errors.New("invalid resource")

// StyleResource is a stylesheet referenced from document head. Inline
// resources are rendered into <style>, others into <link> to Href. Subset
// resources render only styles matching classes used by the document body
// and have to be inline.
type StyleResource struct {
	Sheet  *css.StyleSheet
	Href   string
	Inline bool
	Subset bool
}

// ScriptResource is a script referenced from document head by Src or
// embedded as Content.
type ScriptResource struct {
	Src     string
	Content string
	Module  bool
	Defer   bool
}

// Link is a generic <link rel=... href=...> in document head.
type Link struct {
	Rel  string
	Href string
}

// Head holds document metadata and resources.
type Head struct {
	Charset string
	Title   string
	Favicon string
	Meta    []Attr
	Links   []Link
	Styles  []StyleResource
	Scripts []ScriptResource
}

// Document is a complete HTML page.
type Document struct {
	Lang string
	Head Head
	Body *Element
}

// NewDocument creates utf-8 English document with given title and empty body.
func NewDocument(title string, body ...Node) *Document {
	return &Document{
		Lang: "en",
		Head: Head{Charset: "utf-8", Title: title},
		Body: New("body", body...),
	}
}

// Meta adds <meta name=... content=...> to head.
func (d *Document) Meta(name, content string) *Document {
	d.Head.Meta = append(d.Head.Meta, Attr{Key: name, Value: content})
	return d
}

// Link adds <link> with rel and href to head.
func (d *Document) Link(rel, href string) *Document {
	d.Head.Links = append(d.Head.Links, Link{Rel: rel, Href: href})
	return d
}

// Style adds stylesheet resource to head.
func (d *Document) Style(res StyleResource) error {
	switch {
	case res.Sheet == nil && res.Href == "":
		return fmt.Errorf("style without sheet and href: %w", ErrInvalidResource)
	case res.Sheet == nil && (res.Inline || res.Subset):
		return fmt.Errorf("inline or subset style %q without sheet: %w", res.Href, ErrInvalidResource)
	case res.Subset && !res.Inline:
		return fmt.Errorf("subset style %q must be inline: %w", res.Href, ErrInvalidResource)
	case !res.Inline && res.Href == "":
		return fmt.Errorf("linked style requires href: %w", ErrInvalidResource)
	}
	d.Head.Styles = append(d.Head.Styles, res)
	return nil
}

// Script adds script resource to head.
func (d *Document) Script(res ScriptResource) error {
	if (res.Src == "") == (res.Content == "") {
		return fmt.Errorf("script needs either src or content: %w", ErrInvalidResource)
	}
	d.Head.Scripts = append(d.Head.Scripts, res)
	return nil
}

// UsedClasses returns classes used by the document body.
func (d *Document) UsedClasses() css.ClassSet {
	return d.Body.UsedClasses()
}

// HasBindings reports whether body elements have event bindings.
func (d *Document) HasBindings() bool {
	return d.Body.HasBindings()
}

// renderStyle returns CSS text for inline style resource.
func (d *Document) renderStyle(res StyleResource) (string, error) {
	if res.Subset {
		return res.Sheet.RenderSubset(d.UsedClasses())
	}
	return res.Sheet.Render()
}
