package css_test

import (
	"errors"
	"slices"
	"testing"

	"stylegen/css"
)

func TestParseSelector_Canonical(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		classes []string
	}{
		{".btn.primary", ".btn.primary", []string{"btn", "primary"}},
		{"#title", "#title", nil},
		{"body", "body", nil},
		{".item:hover", ".item:hover", []string{"item"}},
		{"  ul#main > li:nth-child(2) ", "ul#main>li:nth-child(2)", nil},
		{"div .card  .title", "div .card .title", []string{"card", "title"}},
		{".toggle[state=on]", ".toggle[state=on]", []string{"toggle"}},
		{"input[disabled]", "input[disabled]", nil},
		{".b.a.b", ".b.a", []string{"b", "a"}},
		{".nav .nav.active", ".nav .nav.active", []string{"nav", "active"}},
		{"*", "*", nil},
		{".2xl", ".2xl", []string{"2xl"}},
		{"li:not(.done)", "li:not(.done)", nil},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			sel, err := css.ParseSelector(tt.in)
			if err != nil {
				t.Fatalf("ParseSelector(%q) error: %v", tt.in, err)
			}
			if got := sel.CSS(); got != tt.want {
				t.Errorf("CSS() = %q, want %q", got, tt.want)
			}
			if got := sel.Classes(); !slices.Equal(got, tt.classes) {
				t.Errorf("Classes() = %v, want %v", got, tt.classes)
			}
		})
	}
}

func TestParseSelector_Errors(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"", css.ErrSelectorSyntax},
		{".a >", css.ErrSelectorSyntax},
		{".a > > .b", css.ErrSelectorSyntax},
		{"> .a", css.ErrSelectorSyntax},
		{"li:nth-child(2", css.ErrSelectorSyntax},
		{".a[key=value", css.ErrSelectorSyntax},
		{". a", css.ErrSelectorSyntax},
		{".a:", css.ErrSelectorSyntax},
		{"#a#b", css.ErrSelectorSyntax},
		{".a*", css.ErrSelectorSyntax},
		{"a[x]b", css.ErrSelectorSyntax},
		{"#x.y*", css.ErrSelectorSyntax},
		{".a+.b", css.ErrUnsupportedSelector},
		{".a + .b", css.ErrUnsupportedSelector},
		{".a ~ .b", css.ErrUnsupportedSelector},
		{".a, .b", css.ErrUnsupportedSelector},
		{"p::before", css.ErrUnsupportedSelector},
		{"a[href^=http]", css.ErrUnsupportedSelector},
		{":hover", css.ErrDegenerateSelector},
		{"[state=on]", css.ErrDegenerateSelector},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			sel, err := css.ParseSelector(tt.in)
			if err == nil {
				t.Fatalf("ParseSelector(%q) = %q, want error", tt.in, sel)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseSelector(%q) error = %v, want %v", tt.in, err, tt.want)
			}
		})
	}
}

func TestSelector_MatchesClasses(t *testing.T) {
	tests := []struct {
		sel  string
		used []string
		want bool
	}{
		{".btn.primary", []string{"btn"}, false},
		{".btn.primary", []string{"btn", "primary"}, true},
		{".btn.primary", []string{"btn", "primary", "extra"}, true},
		{"body", nil, true},
		{"#header", nil, true},
		{"button.btn", nil, false},
		{"button.btn", []string{"btn"}, true},
		{".menu li", []string{"other"}, false},
		{".menu li", []string{"menu"}, true},
		{"nav > .item:hover", []string{"item"}, true},
	}
	for _, tt := range tests {
		sel := css.MustParseSelector(tt.sel)
		if got := sel.MatchesClasses(css.NewClassSet(tt.used...)); got != tt.want {
			t.Errorf("%q.MatchesClasses(%v) = %v, want %v", tt.sel, tt.used, got, tt.want)
		}
	}
}

func TestRawSelector(t *testing.T) {
	sel, err := css.RawSelector("h1 + p, .note ~ .tip")
	if err != nil {
		t.Fatalf("RawSelector() error: %v", err)
	}
	if !sel.IsRaw() {
		t.Error("expected raw selector")
	}
	if sel.CSS() != "h1 + p, .note ~ .tip" {
		t.Errorf("CSS() = %q", sel.CSS())
	}
	if !sel.MatchesClasses(nil) {
		t.Error("raw selectors must always match")
	}
	if got := sel.Specificity(); got != [3]int{0, 2, 0} {
		t.Errorf("Specificity() = %v, want [0 2 0]", got)
	}
	if _, err := sel.Children("li"); !errors.Is(err, css.ErrUnsupportedSelector) {
		t.Errorf("Children() on raw selector error = %v", err)
	}

	if _, err := css.RawSelector("a[href"); !errors.Is(err, css.ErrSelectorSyntax) {
		t.Errorf("RawSelector(invalid) error = %v, want ErrSelectorSyntax", err)
	}
}

func TestSelector_Derived(t *testing.T) {
	base := css.MustParseSelector("ul#main")

	nth, err := base.NthChild("li", 2)
	if err != nil {
		t.Fatalf("NthChild() error: %v", err)
	}
	if got := nth.CSS(); got != "ul#main>li:nth-child(2)" {
		t.Errorf("NthChild() = %q", got)
	}

	desc, err := base.Descendant(".item a")
	if err != nil {
		t.Fatalf("Descendant() error: %v", err)
	}
	if got := desc.CSS(); got != "ul#main .item a" {
		t.Errorf("Descendant() = %q", got)
	}

	hover := base.On("hover", ":focus")
	if got := hover.CSS(); got != "ul#main:hover:focus" {
		t.Errorf("On() = %q", got)
	}
	if base.CSS() != "ul#main" {
		t.Errorf("On() modified original selector: %q", base.CSS())
	}

	if got := base.With("data-state", "open").CSS(); got != "ul#main[data-state=open]" {
		t.Errorf("With() = %q", got)
	}
}

func TestSelector_Specificity(t *testing.T) {
	tests := []struct {
		sel  string
		want [3]int
	}{
		{"body", [3]int{0, 0, 1}},
		{"*", [3]int{0, 0, 0}},
		{"#header", [3]int{1, 0, 0}},
		{".btn.primary:hover", [3]int{0, 3, 0}},
		{"ul#main>li:nth-child(2)", [3]int{1, 1, 2}},
	}
	for _, tt := range tests {
		if got := css.MustParseSelector(tt.sel).Specificity(); got != tt.want {
			t.Errorf("%q.Specificity() = %v, want %v", tt.sel, got, tt.want)
		}
	}
}

func TestSelector_Markup(t *testing.T) {
	sel := css.MustParseSelector("div#main.btn.primary[role=button]")
	want := `id="main" class="btn primary" role="button"`
	if got := sel.Markup(); got != want {
		t.Errorf("Markup() = %q, want %q", got, want)
	}
}

func TestNewSelector(t *testing.T) {
	sel, err := css.NewSelector("", "", "card", "card", "wide")
	if err != nil {
		t.Fatalf("NewSelector() error: %v", err)
	}
	if sel.CSS() != ".card.wide" {
		t.Errorf("CSS() = %q", sel.CSS())
	}
	if _, err := css.NewSelector("", ""); !errors.Is(err, css.ErrDegenerateSelector) {
		t.Errorf("NewSelector() without parts error = %v", err)
	}
}

func TestClassSet_Sorted(t *testing.T) {
	cs := css.NewClassSet("span-10", "span-2", "", "card", "span-1")
	cs.Add("span-2")
	want := []string{"card", "span-1", "span-2", "span-10"}
	if got := cs.Sorted(); !slices.Equal(got, want) {
		t.Errorf("Sorted() = %v, want %v", got, want)
	}
	if cs.Len() != 4 {
		t.Errorf("Len() = %d, want 4", cs.Len())
	}
	var empty css.ClassSet
	if empty.Has("card") {
		t.Error("nil set must not contain anything")
	}
}
