package markup

// Shortcuts for common elements.

func Div(children ...Node) *Element     { return New("div", children...) }
func Span(children ...Node) *Element    { return New("span", children...) }
func P(children ...Node) *Element       { return New("p", children...) }
func H1(children ...Node) *Element      { return New("h1", children...) }
func H2(children ...Node) *Element      { return New("h2", children...) }
func H3(children ...Node) *Element      { return New("h3", children...) }
func H4(children ...Node) *Element      { return New("h4", children...) }
func H5(children ...Node) *Element      { return New("h5", children...) }
func H6(children ...Node) *Element      { return New("h6", children...) }
func Ul(children ...Node) *Element      { return New("ul", children...) }
func Ol(children ...Node) *Element      { return New("ol", children...) }
func Li(children ...Node) *Element      { return New("li", children...) }
func Section(children ...Node) *Element { return New("section", children...) }
func Article(children ...Node) *Element { return New("article", children...) }
func Header(children ...Node) *Element  { return New("header", children...) }
func Footer(children ...Node) *Element  { return New("footer", children...) }
func Main(children ...Node) *Element    { return New("main", children...) }
func Nav(children ...Node) *Element     { return New("nav", children...) }
func Form(children ...Node) *Element    { return New("form", children...) }
func Label(children ...Node) *Element   { return New("label", children...) }
func Button(children ...Node) *Element  { return New("button", children...) }
func Table(children ...Node) *Element   { return New("table", children...) }
func Tr(children ...Node) *Element      { return New("tr", children...) }
func Td(children ...Node) *Element      { return New("td", children...) }
func Th(children ...Node) *Element      { return New("th", children...) }

// A creates link to href.
func A(href string, children ...Node) *Element {
	return New("a", children...).Attr("href", href)
}

// Img creates image element.
func Img(src, alt string) *Element {
	return New("img").Attr("src", src).Attr("alt", alt)
}

// Input creates input element of given type.
func Input(typ, name string) *Element {
	return New("input").Attr("type", typ).Attr("name", name)
}
