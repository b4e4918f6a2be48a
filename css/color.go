package css

import (
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an RGBA color value. Zero value is opaque black.
type Color struct {
	rgb   colorful.Color
	alpha float64 // transparency, 0 is opaque
	name  string
}

var (
	Black   = named("black", RGB(0, 0, 0))
	White   = named("white", RGB(1, 1, 1))
	Red     = named("red", RGB(1, 0, 0))
	Green   = named("green", RGB(0, 0.5, 0))
	Blue    = named("blue", RGB(0, 0, 1))
	Yellow  = named("yellow", RGB(1, 1, 0))
	Orange  = named("orange", RGB(1, 165.0/255, 0))
	Purple  = named("purple", RGB(0.5, 0, 0.5))
	Gray    = named("gray", RGB(0.5, 0.5, 0.5))
	Gold    = named("gold", RGB(1, 215.0/255, 0))
	Navy    = named("navy", RGB(0, 0, 0.5))
	Teal    = named("teal", RGB(0, 0.5, 0.5))
	Crimson = named("crimson", RGB(220.0/255, 20.0/255, 60.0/255))
)

var namedColors = map[string]Color{}

func named(name string, c Color) Color {
	c.name = name
	namedColors[name] = c
	return c
}

// Named returns one of the basic palette colors by CSS name.
func Named(name string) (Color, bool) {
	c, ok := namedColors[strings.ToLower(name)]
	return c, ok
}

// RGB makes color from components in 0..1 range.
func RGB(r, g, b float64) Color {
	return Color{rgb: colorful.Color{R: r, G: g, B: b}.Clamped()}
}

// RGB255 makes color from byte components.
func RGB255(r, g, b uint8) Color {
	return RGB(float64(r)/255, float64(g)/255, float64(b)/255)
}

// HSL makes color from hue in degrees, saturation and lightness in 0..1.
func HSL(h, s, l float64) Color {
	return Color{rgb: colorful.Hsl(normHue(h), clamp01(s), clamp01(l)).Clamped()}
}

// HSV makes color from hue in degrees, saturation and value in 0..1.
func HSV(h, s, v float64) Color {
	return Color{rgb: colorful.Hsv(normHue(h), clamp01(s), clamp01(v)).Clamped()}
}

// Hex parses "#rgb", "#rrggbb" and "#rrggbbaa" notations.
func Hex(code string) (Color, error) {
	code = strings.TrimSpace(code)
	if !strings.HasPrefix(code, "#") {
		code = "#" + code
	}
	var alpha float64
	switch len(code) {
	case 4:
		code = "#" + strings.Repeat(code[1:2], 2) + strings.Repeat(code[2:3], 2) + strings.Repeat(code[3:4], 2)
	case 9:
		var a uint8
		if _, err := fmt.Sscanf(code[7:], "%02x", &a); err != nil {
			return Color{}, fmt.Errorf("bad alpha in color %q: %w", code, err)
		}
		alpha = 1 - float64(a)/255
		code = code[:7]
	}
	c, err := colorful.Hex(code)
	if err != nil {
		return Color{}, fmt.Errorf("bad color %q: %w", code, err)
	}
	return Color{rgb: c, alpha: alpha}, nil
}

// MustHex is like Hex but panics on error.
func MustHex(code string) Color {
	c, err := Hex(code)
	if err != nil {
		panic(err)
	}
	return c
}

// Name returns palette name of the color if it was not modified.
func (c Color) Name() string { return c.name }

// Alpha returns opacity in 0..1.
func (c Color) Alpha() float64 { return 1 - c.alpha }

// Lightness returns HSL lightness.
func (c Color) Lightness() float64 {
	_, _, l := c.rgb.Hsl()
	return l
}

func (c Color) hsl(f func(h, s, l float64) (float64, float64, float64)) Color {
	h, s, l := c.rgb.Hsl()
	return Color{rgb: colorful.Hsl(f(h, s, l)).Clamped(), alpha: c.alpha}
}

// Lit returns color with lightness set to l.
func (c Color) Lit(l float64) Color {
	return c.hsl(func(h, s, _ float64) (float64, float64, float64) { return h, s, clamp01(l) })
}

// Lighter increases lightness by d.
func (c Color) Lighter(d float64) Color { return c.Lit(c.Lightness() + d) }

// Darker decreases lightness by d.
func (c Color) Darker(d float64) Color { return c.Lit(c.Lightness() - d) }

// Saturated returns color with saturation set to s.
func (c Color) Saturated(s float64) Color {
	return c.hsl(func(h, _, l float64) (float64, float64, float64) { return h, clamp01(s), l })
}

// Shifted rotates hue by deg degrees.
func (c Color) Shifted(deg float64) Color {
	return c.hsl(func(h, s, l float64) (float64, float64, float64) { return normHue(h + deg), s, l })
}

// Transparent returns color with given transparency, 0 is opaque.
func (c Color) Transparent(t float64) Color {
	return Color{rgb: c.rgb, alpha: clamp01(t)}
}

// Towards blends color towards other by t in 0..1, in Lab space.
func (c Color) Towards(other Color, t float64) Color {
	t = clamp01(t)
	return Color{
		rgb:   c.rgb.BlendLab(other.rgb, t).Clamped(),
		alpha: c.alpha + (other.alpha-c.alpha)*t,
	}
}

// Palette returns n colors from c to other, both ends included.
func (c Color) Palette(other Color, n int) []Color {
	if n <= 1 {
		return []Color{c}
	}
	out := make([]Color, 0, n)
	for i := range n {
		out = append(out, c.Towards(other, float64(i)/float64(n-1)))
	}
	return out
}

// Hex returns "#rrggbb" without alpha.
func (c Color) Hex() string {
	return c.rgb.Hex()
}

// String returns hex notation for opaque colors and rgba() otherwise.
func (c Color) String() string {
	if c.alpha == 0 {
		return c.Hex()
	}
	r, g, b := c.rgb.RGB255()
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, formatFloat(c.Alpha()))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func normHue(h float64) float64 {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	return h
}
