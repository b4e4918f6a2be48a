package css

import (
	"strconv"
	"strings"
)

// Font and text.

func (st *Style) FontSize(size any) *Style { return st.Rule("font-size", InferUnit(size, Rem)) }

func (st *Style) FontWeight(weight any) *Style { return st.Rule("font-weight", weight) }

// FontFamily sets font stack, quoting families with spaces.
func (st *Style) FontFamily(families ...string) *Style {
	quoted := make([]string, 0, len(families))
	for _, f := range families {
		if strings.ContainsRune(f, ' ') && !strings.HasPrefix(f, `"`) {
			f = strconv.Quote(f)
		}
		quoted = append(quoted, f)
	}
	return st.Rule("font-family", strings.Join(quoted, ", "))
}

// Font sets size and optional weight and family.
func (st *Style) Font(size any, weight any, families ...string) *Style {
	st.FontSize(size)
	if weight != nil {
		st.FontWeight(weight)
	}
	if len(families) > 0 {
		st.FontFamily(families...)
	}
	return st
}

func (st *Style) TextAlign(align string) *Style { return st.Rule("text-align", align) }

func (st *Style) LineHeight(v any) *Style { return st.Rule("line-height", v) }

// Colors.

func (st *Style) Color(c any) *Style { return st.Rule("color", c) }

func (st *Style) Background(c any) *Style { return st.Rule("background", c) }

func (st *Style) Opacity(v float64) *Style { return st.Rule("opacity", v) }

// Visibility and display.

func (st *Style) Display(v string) *Style { return st.Rule("display", v) }

func (st *Style) Hidden() *Style { return st.Display("none") }

func (st *Style) Visibility(visible bool) *Style {
	if visible {
		return st.Rule("visibility", "visible")
	}
	return st.Rule("visibility", "hidden")
}

func (st *Style) Cursor(v string) *Style { return st.Rule("cursor", v) }

func (st *Style) Overflow(v string) *Style { return st.Rule("overflow", v) }

func (st *Style) ZIndex(n int) *Style { return st.Rule("z-index", n) }

// Sizing. Floats are fractions of the container.

func (st *Style) Width(v any) *Style     { return st.Rule("width", InferUnit(v, Fraction)) }
func (st *Style) Height(v any) *Style    { return st.Rule("height", InferUnit(v, Fraction)) }
func (st *Style) MinWidth(v any) *Style  { return st.Rule("min-width", InferUnit(v, Fraction)) }
func (st *Style) MaxWidth(v any) *Style  { return st.Rule("max-width", InferUnit(v, Fraction)) }
func (st *Style) MinHeight(v any) *Style { return st.Rule("min-height", InferUnit(v, Fraction)) }
func (st *Style) MaxHeight(v any) *Style { return st.Rule("max-height", InferUnit(v, Fraction)) }

// Size sets width and height at once.
func (st *Style) Size(w, h any) *Style { return st.Width(w).Height(h) }

// Spacing. Floats are rem.

func boxValue(values []any) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, InferUnit(v, Rem))
	}
	return strings.Join(parts, " ")
}

// Margin accepts one to four values in CSS order.
func (st *Style) Margin(values ...any) *Style  { return st.Rule("margin", boxValue(values)) }
func (st *Style) MarginTop(v any) *Style       { return st.Rule("margin-top", InferUnit(v, Rem)) }
func (st *Style) MarginRight(v any) *Style     { return st.Rule("margin-right", InferUnit(v, Rem)) }
func (st *Style) MarginBottom(v any) *Style    { return st.Rule("margin-bottom", InferUnit(v, Rem)) }
func (st *Style) MarginLeft(v any) *Style      { return st.Rule("margin-left", InferUnit(v, Rem)) }
func (st *Style) Padding(values ...any) *Style { return st.Rule("padding", boxValue(values)) }
func (st *Style) PaddingTop(v any) *Style      { return st.Rule("padding-top", InferUnit(v, Rem)) }
func (st *Style) PaddingRight(v any) *Style    { return st.Rule("padding-right", InferUnit(v, Rem)) }
func (st *Style) PaddingBottom(v any) *Style   { return st.Rule("padding-bottom", InferUnit(v, Rem)) }
func (st *Style) PaddingLeft(v any) *Style     { return st.Rule("padding-left", InferUnit(v, Rem)) }

func (st *Style) Gap(v any) *Style { return st.Rule("gap", InferUnit(v, Rem)) }

// Borders and decorations.

func (st *Style) Rounded(radius any) *Style { return st.Rule("border-radius", InferUnit(radius, Rem)) }

// Border sets solid border of given width and color.
func (st *Style) Border(width any, c any) *Style {
	return st.Rule("border", InferUnit(width, Px)+" solid "+formatValue(c))
}

// Shadow sets box shadow with offsets, blur and color.
func (st *Style) Shadow(x, y, blur any, c any) *Style {
	return st.Rule("box-shadow", boxValue([]any{x, y, blur})+" "+formatValue(c))
}

// Positioning.

func (st *Style) Position(kind string) *Style { return st.Rule("position", kind) }
func (st *Style) Top(v any) *Style            { return st.Rule("top", InferUnit(v, Rem)) }
func (st *Style) Right(v any) *Style          { return st.Rule("right", InferUnit(v, Rem)) }
func (st *Style) Bottom(v any) *Style         { return st.Rule("bottom", InferUnit(v, Rem)) }
func (st *Style) Left(v any) *Style           { return st.Rule("left", InferUnit(v, Rem)) }

// Flex and grid layout.

// Flexbox makes the style a flex container.
func (st *Style) Flexbox(direction string, wrap bool, align, justify string) *Style {
	st.Display("flex").Rule("flex-direction", direction)
	if wrap {
		st.Rule("flex-wrap", "wrap")
	}
	if align != "" {
		st.Rule("align-items", align)
	}
	if justify != "" {
		st.Rule("justify-content", justify)
	}
	return st
}

// Flex sets flex grow factor of an item.
func (st *Style) Flex(grow int) *Style { return st.Rule("flex", grow) }

// GridColumns makes the style a grid container with n equal columns.
func (st *Style) GridColumns(n int) *Style {
	return st.Display("grid").Rule("grid-template-columns", "repeat("+strconv.Itoa(n)+", "+Fr(1).String()+")")
}

// GridSpan makes grid item span n columns.
func (st *Style) GridSpan(n int) *Style {
	return st.Rule("grid-column", "span "+strconv.Itoa(n))
}
