package presets

import (
	"time"

	"stylegen/css"
)

// Size is a named font size in rem.
type Size struct {
	Name string
	Rem  float64
}

// Tone is a named color variant.
type Tone struct {
	Name  string
	Color css.Color
}

// SemanticDesign styles text and buttons with size and tone modifiers,
// e.g. "button large primary".
type SemanticDesign struct {
	TextClass   string
	ButtonClass string
	Sizes       []Size
	Tones       []Tone
}

// DefaultSemanticDesign returns three sizes and five tones.
func DefaultSemanticDesign() SemanticDesign {
	return SemanticDesign{
		TextClass:   "text",
		ButtonClass: "button",
		Sizes: []Size{
			{"small", 1.0},
			{"medium", 1.4},
			{"large", 2.0},
		},
		Tones: []Tone{
			{"normal", css.White.Lit(0.9)},
			{"primary", css.Blue.Lit(0.3)},
			{"success", css.Green.Lit(0.3)},
			{"warning", css.Orange.Lit(0.6)},
			{"error", css.Red.Lit(0.3)},
		},
	}
}

// Typography adds text styles.
func (d SemanticDesign) Typography(sheet *css.StyleSheet) error {
	text, err := sheet.Select("." + d.TextClass)
	if err != nil {
		return err
	}
	text.Color(css.Black.Lit(0.2))

	for _, size := range d.Sizes {
		st, err := sheet.Select("." + d.TextClass + "." + size.Name)
		if err != nil {
			return err
		}
		st.FontSize(css.Rem(size.Rem))
	}
	for _, tone := range d.Tones {
		st, err := sheet.Select("." + d.TextClass + "." + tone.Name)
		if err != nil {
			return err
		}
		st.Color(tone.Color.Lit(0.2))
	}
	return nil
}

// Buttons adds button styles with hover and active states per tone.
func (d SemanticDesign) Buttons(sheet *css.StyleSheet) error {
	btn, err := sheet.Select("." + d.ButtonClass)
	if err != nil {
		return err
	}
	btn.Cursor("pointer").
		Rounded(0.25).
		Shadow(2, 2, 4, css.Black.Transparent(0.8)).
		Transition("all", css.WithDuration(50*time.Millisecond))

	for _, size := range d.Sizes {
		st, err := sheet.Select("." + d.ButtonClass + "." + size.Name)
		if err != nil {
			return err
		}
		pad := css.Rem(size.Rem / 4)
		st.FontSize(css.Rem(size.Rem)).Padding(pad, pad.Scale(2))
	}

	for _, tone := range d.Tones {
		text, accent := tone.Color.Lit(0.1), css.Black
		if tone.Color.Lightness() < 0.4 {
			text, accent = tone.Color.Lit(0.9), css.White
		}
		st, err := sheet.Select("." + d.ButtonClass + "." + tone.Name)
		if err != nil {
			return err
		}
		st.Background(tone.Color).Color(text)
		st.On("hover").Background(tone.Color.Lighter(0.2)).Color(accent)
		st.On("active").
			Background(tone.Color.Darker(0.1)).
			Color(accent).
			Rule("box-shadow", "0 0 2px 1px "+tone.Color.Lit(0.2).Transparent(0.8).String())
	}
	return nil
}

// All adds typography and buttons.
func (d SemanticDesign) All(sheet *css.StyleSheet) error {
	if err := d.Typography(sheet); err != nil {
		return err
	}
	return d.Buttons(sheet)
}
