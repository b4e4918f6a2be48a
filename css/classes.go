package css

import (
	"slices"

	"github.com/maruel/natural"
)

// ClassSet is a set of class tokens observed in markup. Matching is exact
// and case-sensitive.
type ClassSet map[string]struct{}

// NewClassSet returns a set holding given classes. Empty names are ignored.
func NewClassSet(classes ...string) ClassSet {
	cs := make(ClassSet, len(classes))
	cs.Add(classes...)
	return cs
}

// Add puts classes into the set.
func (cs ClassSet) Add(classes ...string) {
	for _, c := range classes {
		if c != "" {
			cs[c] = struct{}{}
		}
	}
}

// Merge adds all classes from other.
func (cs ClassSet) Merge(other ClassSet) {
	for c := range other {
		cs[c] = struct{}{}
	}
}

// Has reports whether class is in the set. Safe on nil set.
func (cs ClassSet) Has(class string) bool {
	_, ok := cs[class]
	return ok
}

// HasAll reports whether every one of classes is in the set.
func (cs ClassSet) HasAll(classes []string) bool {
	for _, c := range classes {
		if !cs.Has(c) {
			return false
		}
	}
	return true
}

// Len returns number of classes in the set.
func (cs ClassSet) Len() int {
	return len(cs)
}

// Sorted returns classes in natural order ("span-2" before "span-10").
func (cs ClassSet) Sorted() []string {
	out := make([]string, 0, len(cs))
	for c := range cs {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b string) int {
		switch {
		case a == b:
			return 0
		case natural.Less(a, b):
			return -1
		default:
			return 1
		}
	})
	return out
}
