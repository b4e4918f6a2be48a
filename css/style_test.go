package css_test

import (
	"slices"
	"strings"
	"testing"
	"time"

	"stylegen/css"
)

func TestStyle_RuleNormalization(t *testing.T) {
	st := css.NewStyle().
		Rule(" Background_Color ", "red").
		Rule("--Main-Color", "#fff").
		Rule("margin", 0).
		Rule("background-color", "blue")

	want := []css.Declaration{
		{Property: "background-color", Value: "blue"},
		{Property: "--Main-Color", Value: "#fff"},
		{Property: "margin", Value: "0"},
	}
	if got := st.Properties(); !slices.Equal(got, want) {
		t.Errorf("Properties() = %v, want %v", got, want)
	}
	if v, ok := st.Get("BACKGROUND_COLOR"); !ok || v != "blue" {
		t.Errorf("Get() = %q, %v", v, ok)
	}
	if _, ok := st.Get("padding"); ok {
		t.Error("Get() found property never set")
	}
}

func TestStyle_Rules(t *testing.T) {
	st := css.NewStyle().Rules("color", "red", "display", "flex")
	if got := st.Inline(); got != "color: red; display: flex" {
		t.Errorf("Inline() = %q", got)
	}

	defer func() {
		if recover() == nil {
			t.Error("Rules() with odd arguments should panic")
		}
	}()
	st.Rules("color")
}

func TestStyle_TransitionMerging(t *testing.T) {
	st := css.NewStyle().
		Transition("background-color").
		Transition("color", css.WithDuration(300*time.Millisecond))

	want := map[string]string{
		"transition-property":        "background-color, color",
		"transition-duration":        "150ms, 300ms",
		"transition-timing-function": "linear, linear",
		"transition-delay":           "0ms, 0ms",
	}
	for prop, value := range want {
		if got, _ := st.Get(prop); got != value {
			t.Errorf("%s = %q, want %q", prop, got, value)
		}
	}
	if len(st.Properties()) != 4 {
		t.Errorf("expected 4 declarations, got %v", st.Properties())
	}
}

func TestStyle_ApplyKeepsAggregates(t *testing.T) {
	spin := css.NewAnimation("spin")
	mixin := css.NewStyle().Transition("color").Scale(2).Animate(spin)
	st := css.NewStyle().
		Apply(mixin).
		Transition("opacity").
		Rotate(90).
		Animate(css.NewAnimation("fade"))

	want := map[string]string{
		"transition-property": "color, opacity",
		"transition-duration": "150ms, 150ms",
		"transform":           "scaleX(2) scaleY(2) rotate(90deg)",
		"animation-name":      "spin, fade",
	}
	for prop, value := range want {
		if got, _ := st.Get(prop); got != value {
			t.Errorf("%s = %q, want %q", prop, got, value)
		}
	}
	if got, _ := mixin.Get("transition-property"); got != "color" {
		t.Errorf("mixin changed: transition-property = %q", got)
	}
	if got := st.Animations(); !slices.Equal(got, []string{"spin", "fade"}) {
		t.Errorf("Animations() = %v", got)
	}
}

func TestStyle_AggregatesAbsentByDefault(t *testing.T) {
	st := css.NewStyle().Color("red")
	for _, prop := range []string{"transition-property", "transform", "animation-name"} {
		if _, ok := st.Get(prop); ok {
			t.Errorf("%s present before configuration", prop)
		}
	}
}

func TestStyle_TransformComposition(t *testing.T) {
	st := css.NewStyle().Scale(1.1).TranslateY(-2).Rotate(45)
	want := "scaleX(1.1) scaleY(1.1) translateY(-2px) rotate(45deg)"
	if got, _ := st.Get("transform"); got != want {
		t.Errorf("transform = %q, want %q", got, want)
	}
}

func TestStyle_Animate(t *testing.T) {
	spin := css.NewAnimation("spin")
	fade := css.NewAnimation("fade")
	st := css.NewStyle().
		Animate(spin, css.WithIterations(0), css.WithTiming("linear")).
		Animate(fade, css.WithDuration(500*time.Millisecond), css.WithDelay(2*time.Second))

	want := map[string]string{
		"animation-name":            "spin, fade",
		"animation-duration":        "1s, 500ms",
		"animation-iteration-count": "infinite, 1",
		"animation-timing-function": "linear, ease",
		"animation-delay":           "0ms, 2s",
	}
	for prop, value := range want {
		if got, _ := st.Get(prop); got != value {
			t.Errorf("%s = %q, want %q", prop, got, value)
		}
	}
	if got := st.Animations(); !slices.Equal(got, []string{"spin", "fade"}) {
		t.Errorf("Animations() = %v", got)
	}
}

func TestStyle_CSSWithChildren(t *testing.T) {
	sheet := css.NewStyleSheet(nil)
	btn := sheet.MustSelect(".btn").Background("white").Padding(0.5, 1.0)
	btn.On("hover").Background(css.Black)
	if _, err := btn.Children("span"); err != nil {
		t.Fatalf("Children() error: %v", err)
	}
	icon, err := btn.NthChild("i", 1)
	if err != nil {
		t.Fatalf("NthChild() error: %v", err)
	}
	icon.MarginLeft(4)

	want := ".btn {\n" +
		"    background: white;\n" +
		"    padding: 0.5rem 1rem;\n" +
		"}\n" +
		"\n" +
		".btn:hover {\n" +
		"    background: #000000;\n" +
		"}\n" +
		"\n" +
		".btn>i:nth-child(1) {\n" +
		"    margin-left: 4px;\n" +
		"}\n"
	if got := btn.CSS(); got != want {
		t.Errorf("CSS() =\n%s\nwant\n%s", got, want)
	}
	if btn.On("hover") != btn.ChildStyles()[0] {
		t.Error("On() should return existing child style for the same state")
	}
}

func TestStyle_Shorthands(t *testing.T) {
	st := css.NewStyle().
		Width(0.5).
		Height(120).
		FontFamily("Fira Sans", "sans-serif").
		Border(1, css.Gold).
		Flexbox("column", true, "center", "").
		GridSpan(2)

	checks := map[string]string{
		"width":          "50%",
		"height":         "120px",
		"font-family":    `"Fira Sans", sans-serif`,
		"border":         "1px solid #ffd700",
		"display":        "flex",
		"flex-direction": "column",
		"flex-wrap":      "wrap",
		"align-items":    "center",
		"grid-column":    "span 2",
	}
	for prop, value := range checks {
		if got, _ := st.Get(prop); got != value {
			t.Errorf("%s = %q, want %q", prop, got, value)
		}
	}
	if _, ok := st.Get("justify-content"); ok {
		t.Error("empty justify should not be set")
	}
	if !strings.HasPrefix(st.Inline(), "width: 50%; height: 120px") {
		t.Errorf("Inline() = %q", st.Inline())
	}
}

func TestStyle_OnWithoutSelectorPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("On() for free-standing style should panic")
		}
	}()
	css.NewStyle().On("hover")
}
