package markup_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"stylegen/css"
	"stylegen/markup"
)

type card struct {
	title    string
	featured bool
}

func (c card) Compose() *markup.Element {
	e := markup.Div(markup.H2().Class("card-title").Text(c.title)).Class("card")
	if c.featured {
		e.Class("featured")
	}
	return e
}

func parseHTML(t *testing.T, text string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("html.Parse() error: %v", err)
	}
	return doc
}

func query(t *testing.T, doc *html.Node, sel string) *html.Node {
	t.Helper()
	return cascadia.MustCompile(sel).MatchFirst(doc)
}

func textOf(n *html.Node) string {
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	}
	return sb.String()
}

func TestElement_UsedClasses(t *testing.T) {
	root := markup.Main(
		card{title: "One"},
		card{title: "Two", featured: true},
		markup.P().Class("lead  muted", "lead"),
	)
	root.Spawn("footer").Class("site-footer")

	used := root.UsedClasses()
	for _, c := range []string{"card", "card-title", "featured", "lead", "muted", "site-footer"} {
		if !used.Has(c) {
			t.Errorf("UsedClasses() missing %q: %v", c, used.Sorted())
		}
	}
	if used.Len() != 6 {
		t.Errorf("UsedClasses() = %v", used.Sorted())
	}
}

func TestElement_HTML(t *testing.T) {
	e := markup.Button().
		ID("save").
		Class("btn primary").
		Attr("type", "submit").
		Rule("margin_top", 4).
		On("Click", "save_form").
		Text("Save <now>")

	want := `<button id="save" class="btn primary" style="margin-top: 4" type="submit" data-on-click="save_form">Save &lt;now&gt;</button>`
	if got := e.HTML(); got != want {
		t.Errorf("HTML() =\n%s\nwant\n%s", got, want)
	}
	if !e.HasBindings() {
		t.Error("HasBindings() = false")
	}
	if markup.Div(markup.Span()).HasBindings() {
		t.Error("HasBindings() = true for plain markup")
	}
}

func TestElement_FromSelector(t *testing.T) {
	sel := css.MustParseSelector(".menu > li#first.item.active[data-x=1]")
	got := markup.FromSelector(sel).HTML()
	want := `<li id="first" class="item active" data-x="1"></li>`
	if got != want {
		t.Errorf("FromSelector() = %s, want %s", got, want)
	}
	if got := markup.FromSelector(css.MustParseSelector(".box")).HTML(); got != `<div class="box"></div>` {
		t.Errorf("FromSelector(.box) = %s", got)
	}
}

func TestDocument_RenderSubsetInline(t *testing.T) {
	sheet := css.NewStyleSheet(nil, css.WithPreamble(false))
	sheet.MustSelect("body").Margin(0)
	sheet.MustSelect("body > main").Display("block")
	sheet.MustSelect(".card").Background("white")
	sheet.MustSelect(".card.featured").Border(2, css.Gold)
	sheet.MustSelect(".unused > .child").Color("red")

	doc := markup.NewDocument("Cards", card{title: "One"})
	doc.Head.Favicon = "/favicon.ico"
	doc.Meta("description", "card list")
	if err := doc.Style(markup.StyleResource{Sheet: sheet, Inline: true, Subset: true}); err != nil {
		t.Fatal(err)
	}
	if err := doc.Style(markup.StyleResource{Href: "/static/site.css"}); err != nil {
		t.Fatal(err)
	}
	if err := doc.Script(markup.ScriptResource{Src: "/app.js", Defer: true}); err != nil {
		t.Fatal(err)
	}

	out, err := doc.String()
	if err != nil {
		t.Fatalf("String() error: %v", err)
	}
	if !strings.HasPrefix(out, "<!DOCTYPE html><html lang=\"en\"><head><meta charset=\"utf-8\"/>") {
		t.Errorf("unexpected document start: %.80s", out)
	}

	parsed := parseHTML(t, out)
	style := query(t, parsed, "head > style")
	if style == nil {
		t.Fatalf("no inline style in:\n%s", out)
	}
	cssText := textOf(style)
	if !strings.Contains(cssText, ".card {") || !strings.Contains(cssText, "body {") {
		t.Errorf("inline css misses used styles:\n%s", cssText)
	}
	if strings.Contains(cssText, ".featured") || strings.Contains(cssText, ".unused") {
		t.Errorf("inline css contains unused styles:\n%s", cssText)
	}
	if !strings.Contains(out, "body>main {") || strings.Contains(out, "&gt;") {
		t.Error("style text must not be escaped")
	}
	if n := query(t, parsed, `link[rel="stylesheet"][href="/static/site.css"]`); n == nil {
		t.Error("linked stylesheet missing")
	}
	if n := query(t, parsed, `link[rel="icon"]`); n == nil {
		t.Error("favicon missing")
	}
	if n := query(t, parsed, `script[src="/app.js"][defer]`); n == nil {
		t.Error("script missing")
	}
	if n := query(t, parsed, "body > div.card > h2.card-title"); n == nil || textOf(n) != "One" {
		t.Error("component not rendered")
	}
	if n := query(t, parsed, "title"); n == nil || textOf(n) != "Cards" {
		t.Error("title missing")
	}
}

func TestDocument_ResourceValidation(t *testing.T) {
	doc := markup.NewDocument("x")
	sheet := css.NewStyleSheet(nil)
	tests := []struct {
		name string
		res  markup.StyleResource
		ok   bool
	}{
		{"nothing", markup.StyleResource{}, false},
		{"inline without sheet", markup.StyleResource{Href: "/a.css", Inline: true}, false},
		{"link without href", markup.StyleResource{Sheet: sheet}, false},
		{"link", markup.StyleResource{Sheet: sheet, Href: "/a.css"}, true},
		{"inline", markup.StyleResource{Sheet: sheet, Inline: true}, true},
		{"linked subset", markup.StyleResource{Sheet: sheet, Href: "/a.css", Subset: true}, false},
		{"inline subset", markup.StyleResource{Sheet: sheet, Inline: true, Subset: true}, true},
	}
	for _, tt := range tests {
		err := doc.Style(tt.res)
		if (err == nil) != tt.ok {
			t.Errorf("%s: Style() error = %v", tt.name, err)
		}
		if err != nil && !errors.Is(err, markup.ErrInvalidResource) {
			t.Errorf("%s: error = %v, want ErrInvalidResource", tt.name, err)
		}
	}
	if err := doc.Script(markup.ScriptResource{}); !errors.Is(err, markup.ErrInvalidResource) {
		t.Errorf("Script() error = %v", err)
	}
}

func TestDocument_RenderPropagatesStyleErrors(t *testing.T) {
	sheet := css.NewStyleSheet(nil)
	sheet.MustSelect(".x").Animate(css.NewAnimation("never-registered"))
	doc := markup.NewDocument("x", markup.Div().Class("x"))
	if err := doc.Style(markup.StyleResource{Sheet: sheet, Inline: true}); err != nil {
		t.Fatal(err)
	}
	if _, err := doc.String(); !errors.Is(err, css.ErrMissingAnimation) {
		t.Errorf("String() error = %v, want ErrMissingAnimation", err)
	}
}

func TestDocument_RenderXHTML(t *testing.T) {
	sheet := css.NewStyleSheet(nil, css.WithPreamble(false))
	sheet.MustSelect(".a > .b").Color("red")
	doc := markup.NewDocument("X & Y", markup.Div(markup.Text("a < b")).Class("a"))
	if err := doc.Style(markup.StyleResource{Sheet: sheet, Inline: true}); err != nil {
		t.Fatal(err)
	}

	var sb strings.Builder
	if err := doc.RenderXHTML(&sb); err != nil {
		t.Fatalf("RenderXHTML() error: %v", err)
	}
	out := sb.String()
	for _, want := range []string{
		`<?xml version="1.0" encoding="UTF-8"?>`,
		`<html xmlns="http://www.w3.org/1999/xhtml"`,
		`<title>X &amp; Y</title>`,
		`.a&gt;.b {`,
		`a &lt; b`,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderXHTML() missing %q:\n%s", want, out)
		}
	}
}

func TestScanHTML(t *testing.T) {
	src := `<html><body class="page"><div class=" card  featured "><img class="thumb" src="x.png"/>
<p>text with class="fake"</p><span class=''></span></div></body></html>`
	used, err := markup.ScanHTML(strings.NewReader(src))
	if err != nil {
		t.Fatalf("ScanHTML() error: %v", err)
	}
	want := []string{"card", "featured", "page", "thumb"}
	got := used.Sorted()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ScanHTML() = %v, want %v", got, want)
	}
}

func TestScanHTML_RoundTrip(t *testing.T) {
	doc := markup.NewDocument("t", card{title: "A", featured: true})
	out, err := doc.String()
	if err != nil {
		t.Fatal(err)
	}
	used, err := markup.ScanHTML(strings.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if got, want := strings.Join(used.Sorted(), ","), strings.Join(doc.UsedClasses().Sorted(), ","); got != want {
		t.Errorf("scanned %s, built %s", got, want)
	}
}

func TestDocument_Link(t *testing.T) {
	doc := markup.NewDocument("Links", markup.P().Text("x"))
	doc.Link("manifest", "/app/manifest.json")

	text, err := doc.String()
	if err != nil {
		t.Fatalf("String() error = %v", err)
	}
	root := parseHTML(t, text)
	link := cascadia.MustCompile(`head link[rel="manifest"]`).MatchFirst(root)
	if link == nil {
		t.Fatalf("manifest link missing:\n%s", text)
	}
	for _, a := range link.Attr {
		if a.Key == "href" && a.Val != "/app/manifest.json" {
			t.Errorf("href = %q", a.Val)
		}
	}
}
