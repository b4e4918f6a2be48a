package css

import (
	"io"
	"math"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/gosimple/slug"
)

var animationCounter atomic.Int64

type keyframe struct {
	percent float64
	style   *Style
}

// Animation is a named sequence of keyframes rendered as @keyframes block.
type Animation struct {
	name   string
	frames []keyframe
}

// NewAnimation creates animation with slugified name. Empty name gets
// process wide unique "animation-N".
func NewAnimation(name string) *Animation {
	name = slug.Make(name)
	if name == "" {
		name = "animation-" + strconv.FormatInt(animationCounter.Add(1), 10)
	}
	return &Animation{name: name}
}

// Name returns animation name used in animation-name declarations.
func (a *Animation) Name() string { return a.name }

// At sets keyframe at percent, clamped to [0,100] (NaN counts as 0). Style
// is copied, so later changes to it do not affect the keyframe. Setting
// existing percent replaces the keyframe in place.
func (a *Animation) At(percent float64, style *Style) *Animation {
	if math.IsNaN(percent) {
		percent = 0
	}
	percent = math.Max(0, math.Min(100, percent))
	style = NewStyle().Apply(style)
	if i := slices.IndexFunc(a.frames, func(k keyframe) bool { return k.percent == percent }); i >= 0 {
		a.frames[i].style = style
		return a
	}
	a.frames = append(a.frames, keyframe{percent: percent, style: style})
	return a
}

// Start sets the 0% keyframe.
func (a *Animation) Start(style *Style) *Animation { return a.At(0, style) }

// End sets the 100% keyframe.
func (a *Animation) End(style *Style) *Animation { return a.At(100, style) }

// Keyframe returns style at percent.
func (a *Animation) Keyframe(percent float64) (*Style, bool) {
	for _, k := range a.frames {
		if k.percent == percent {
			return k.style, true
		}
	}
	return nil, false
}

// Percents returns keyframe positions in insertion order.
func (a *Animation) Percents() []float64 {
	out := make([]float64, 0, len(a.frames))
	for _, k := range a.frames {
		out = append(out, k.percent)
	}
	return out
}

// CSS returns @keyframes block.
func (a *Animation) CSS() string {
	var b strings.Builder
	b.WriteString("@keyframes " + a.name + " {\n")
	for _, k := range a.frames {
		b.WriteString(declBlock(indentUnit, formatFloat(k.percent)+"%", k.style.decls))
	}
	b.WriteString("}\n")
	return b.String()
}

func (a *Animation) String() string {
	return a.CSS()
}

// WriteTo writes @keyframes block to w.
func (a *Animation) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, a.CSS())
	return int64(n), err
}
