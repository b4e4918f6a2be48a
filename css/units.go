package css

import (
	"fmt"
	"math"
	"strconv"
)

// Unit is a numeric CSS value with its unit suffix.
type Unit struct {
	Value float64
	Kind  string
}

func Px(v float64) Unit      { return Unit{v, "px"} }
func Em(v float64) Unit      { return Unit{v, "em"} }
func Rem(v float64) Unit     { return Unit{v, "rem"} }
func Pt(v float64) Unit      { return Unit{v, "pt"} }
func Percent(v float64) Unit { return Unit{v, "%"} }
func Vw(v float64) Unit      { return Unit{v, "vw"} }
func Vh(v float64) Unit      { return Unit{v, "vh"} }
func Fr(v float64) Unit      { return Unit{v, "fr"} }
func Deg(v float64) Unit     { return Unit{v, "deg"} }
func Sec(v float64) Unit     { return Unit{v, "s"} }
func Ms(v float64) Unit      { return Unit{v, "ms"} }

// Fraction converts 0..1 fraction into percentage.
func Fraction(v float64) Unit { return Percent(v * 100) }

func (u Unit) String() string {
	return formatFloat(u.Value) + u.Kind
}

// Scale returns unit multiplied by f.
func (u Unit) Scale(f float64) Unit {
	return Unit{u.Value * f, u.Kind}
}

// ScaleUnits produces count values starting with base, each next one
// multiplied by ratio, e.g. modular typographic scales.
func ScaleUnits(base Unit, ratio float64, count int) []Unit {
	out := make([]Unit, 0, count)
	for i := range count {
		out = append(out, base.Scale(math.Pow(ratio, float64(i))))
	}
	return out
}

// InferUnit converts builder arguments into CSS value text. Integers become
// pixels, floats are converted by onFloat (rem when nil), strings and
// Stringers pass through as is.
func InferUnit(v any, onFloat func(float64) Unit) string {
	if onFloat == nil {
		onFloat = Rem
	}
	switch x := v.(type) {
	case int:
		if x == 0 {
			return "0"
		}
		return Px(float64(x)).String()
	case float64:
		return onFloat(x).String()
	case float32:
		return onFloat(float64(x)).String()
	default:
		return formatValue(v)
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*1e4)/1e4, 'f', -1, 64)
}

func formatValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case fmt.Stringer:
		return x.String()
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	default:
		return fmt.Sprint(v)
	}
}
