package presets

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/gosimple/slug"

	"stylegen/css"
)

// Product yields cartesian product of dimensions, last dimension varying
// fastest. No dimensions or an empty one yield nothing.
func Product(dims ...[]any) iter.Seq[[]any] {
	return func(yield func([]any) bool) {
		if len(dims) == 0 {
			return
		}
		for _, d := range dims {
			if len(d) == 0 {
				return
			}
		}
		idx := make([]int, len(dims))
		for {
			combo := make([]any, len(dims))
			for i, d := range dims {
				combo[i] = d[idx[i]]
			}
			if !yield(combo) {
				return
			}
			i := len(dims) - 1
			for ; i >= 0; i-- {
				idx[i]++
				if idx[i] < len(dims[i]) {
					break
				}
				idx[i] = 0
			}
			if i < 0 {
				return
			}
		}
	}
}

// Utility generates one class per combination of variants.
type Utility struct {
	// Class is the common prefix of generated class names.
	Class string
	// Variants are dimensions combined with Product.
	Variants [][]any
	// Values, when set, are combined the same way and paired with variant
	// combinations by position; otherwise variants are the values.
	Values [][]any
	// Rule fills style for one combination of values.
	Rule func(st *css.Style, values ...any)
	// Name builds class name from variant combination. Defaults to
	// slugified Class and variants joined by "-".
	Name func(variant ...any) string
}

// DefaultName joins prefix and variant parts with "-" and slugifies result.
func DefaultName(prefix string) func(variant ...any) string {
	return func(variant ...any) string {
		parts := make([]string, 0, len(variant)+1)
		if prefix != "" {
			parts = append(parts, prefix)
		}
		for _, v := range variant {
			parts = append(parts, fmt.Sprint(v))
		}
		return slug.Make(strings.Join(parts, "-"))
	}
}

// Define adds utility classes to sheet and returns their names in
// generation order.
func Define(sheet *css.StyleSheet, u Utility) ([]string, error) {
	if u.Rule == nil {
		return nil, errors.New("utility rule is not set")
	}
	name := u.Name
	if name == nil {
		name = DefaultName(u.Class)
	}
	values := u.Values
	if values == nil {
		values = u.Variants
	}

	nextValue, stop := iter.Pull(Product(values...))
	defer stop()

	var names []string
	for variant := range Product(u.Variants...) {
		value, ok := nextValue()
		if !ok {
			break
		}
		class := name(variant...)
		st, err := sheet.Select("." + class)
		if err != nil {
			return names, fmt.Errorf("utility %q: %w", class, err)
		}
		u.Rule(st, value...)
		names = append(names, class)
	}
	return names, nil
}
